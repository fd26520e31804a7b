package services

import (
	"context"
	"errors"
	"strings"

	"github.com/princinho/elearnbackend/apperr"
	"github.com/princinho/elearnbackend/database"
	"github.com/princinho/elearnbackend/dto"
	"github.com/princinho/elearnbackend/logging"
	"github.com/princinho/elearnbackend/models"
	"github.com/princinho/elearnbackend/utils"
)

const layoutFolder = "layout"

type LayoutService struct {
	layouts LayoutStore
	images  ImageStore
	log     logging.Logger
}

func NewLayoutService(layouts LayoutStore, images ImageStore, log logging.Logger) *LayoutService {
	return &LayoutService{layouts: layouts, images: images, log: log}
}

func parseLayoutType(raw string) (models.LayoutType, error) {
	t, ok := models.ParseLayoutType(strings.TrimSpace(raw))
	if !ok {
		return "", apperr.New(apperr.Invalid, "Layout type must be Banner, FAQ or Categories")
	}
	return t, nil
}

func (s *LayoutService) Create(ctx context.Context, in dto.LayoutDTO) (models.Layout, error) {
	t, err := parseLayoutType(in.Type)
	if err != nil {
		return models.Layout{}, err
	}
	if _, err := s.layouts.FindByType(ctx, t); err == nil {
		return models.Layout{}, apperr.New(apperr.Conflict, string(t)+" already exists")
	} else if !errors.Is(err, database.ErrNotFound) {
		return models.Layout{}, storeErr(err, "Layout not found")
	}

	layout := models.Layout{Type: t}
	if err := s.fill(ctx, &layout, in, nil); err != nil {
		return models.Layout{}, err
	}
	if err := s.layouts.Create(ctx, &layout); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return models.Layout{}, apperr.Wrap(apperr.Conflict, string(t)+" already exists", err)
		}
		return models.Layout{}, storeErr(err, "Layout not found")
	}
	return layout, nil
}

func (s *LayoutService) Edit(ctx context.Context, in dto.LayoutDTO) (models.Layout, error) {
	t, err := parseLayoutType(in.Type)
	if err != nil {
		return models.Layout{}, err
	}
	layout, err := s.layouts.FindByType(ctx, t)
	if err != nil {
		return models.Layout{}, storeErr(err, "Layout not found")
	}

	previous := layout.Banner
	if err := s.fill(ctx, &layout, in, previous); err != nil {
		return models.Layout{}, err
	}
	if err := s.layouts.Save(ctx, &layout); err != nil {
		return models.Layout{}, storeErr(err, "Layout not found")
	}

	if previous != nil && layout.Banner != nil && previous.Image.PublicID != "" &&
		previous.Image.PublicID != layout.Banner.Image.PublicID {
		if err := s.images.DeleteImage(ctx, previous.Image.PublicID); err != nil {
			s.log.Warn(ctx, "old banner not deleted", "public_id", previous.Image.PublicID, "err", err)
		}
	}
	return layout, nil
}

func (s *LayoutService) Get(ctx context.Context, rawType string) (models.Layout, error) {
	t, err := parseLayoutType(rawType)
	if err != nil {
		return models.Layout{}, err
	}
	layout, err := s.layouts.FindByType(ctx, t)
	if err != nil {
		return models.Layout{}, storeErr(err, "Layout not found")
	}
	return layout, nil
}

// fill copies the fields relevant to the layout type. A banner image that is
// already a public URL keeps the previous upload.
func (s *LayoutService) fill(ctx context.Context, layout *models.Layout, in dto.LayoutDTO, previous *models.Banner) error {
	switch layout.Type {
	case models.LayoutBanner:
		banner := &models.Banner{Title: in.Title, SubTitle: in.SubTitle}
		switch {
		case strings.HasPrefix(in.Image, "https") && previous != nil:
			banner.Image = previous.Image
		case in.Image == "":
			return apperr.New(apperr.Invalid, "Banner image is required")
		default:
			if s.images == nil {
				return apperr.New(apperr.UpstreamFailure, "Image storage is not configured")
			}
			img, err := s.images.UploadImage(ctx, layoutFolder, in.Image)
			if err != nil {
				if errors.Is(err, utils.ErrInvalidImage) {
					return apperr.Wrap(apperr.Invalid, "Banner image must be a base64 encoded image", err)
				}
				return apperr.Upstream("Could not upload banner image", err)
			}
			banner.Image = img
		}
		layout.Banner = banner

	case models.LayoutFAQ:
		faq := make([]models.FaqItem, 0, len(in.FAQ))
		for _, item := range in.FAQ {
			faq = append(faq, models.FaqItem{
				Question: strings.TrimSpace(item.Question),
				Answer:   strings.TrimSpace(item.Answer),
			})
		}
		layout.FAQ = faq

	case models.LayoutCategories:
		categories := make([]models.Category, 0, len(in.Categories))
		for _, c := range in.Categories {
			title := strings.TrimSpace(c.Title)
			categories = append(categories, models.Category{Title: title, Slug: utils.GenerateSlug(title)})
		}
		layout.Categories = categories
	}
	return nil
}
