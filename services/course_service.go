package services

import (
	"context"
	"errors"
	"strings"

	"github.com/princinho/elearnbackend/apperr"
	"github.com/princinho/elearnbackend/dto"
	"github.com/princinho/elearnbackend/logging"
	"github.com/princinho/elearnbackend/models"
	"github.com/princinho/elearnbackend/utils"
)

const thumbnailFolder = "courses"

type CourseService struct {
	courses CourseStore
	images  ImageStore
	log     logging.Logger
}

func NewCourseService(courses CourseStore, images ImageStore, log logging.Logger) *CourseService {
	return &CourseService{courses: courses, images: images, log: log}
}

func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, storeErr(err, "Course not found")
	}
	return courses, nil
}

func (s *CourseService) Create(ctx context.Context, in dto.CreateCourseDTO) (models.Course, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Course{}, apperr.New(apperr.Invalid, "Course name is required")
	}
	if in.Price < 0 {
		return models.Course{}, apperr.New(apperr.Invalid, "Price must not be negative")
	}

	course := models.Course{
		Name:           name,
		Description:    strings.TrimSpace(in.Description),
		Price:          in.Price,
		EstimatedPrice: in.EstimatedPrice,
		Tags:           in.Tags,
		Level:          in.Level,
	}

	if in.Thumbnail != "" {
		if s.images == nil {
			return models.Course{}, apperr.New(apperr.UpstreamFailure, "Image storage is not configured")
		}
		img, err := s.images.UploadImage(ctx, thumbnailFolder, in.Thumbnail)
		if err != nil {
			if errors.Is(err, utils.ErrInvalidImage) {
				return models.Course{}, apperr.Wrap(apperr.Invalid, "Thumbnail must be a base64 encoded image", err)
			}
			return models.Course{}, apperr.Upstream("Could not upload thumbnail", err)
		}
		course.Thumbnail = &img
	}

	if err := s.courses.Create(ctx, &course); err != nil {
		return models.Course{}, storeErr(err, "Course not found")
	}
	s.log.Info(ctx, "course created", "course_id", course.ID.Hex())
	return course, nil
}
