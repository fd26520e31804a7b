package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/princinho/elearnbackend/config"
	"github.com/princinho/elearnbackend/models"
)

const maxImageBytes = 5 << 20

var ErrInvalidImage = errors.New("invalid image")

// ObjectAPI is the subset of the S3 client used for images.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// R2Client stores avatars, thumbnails and banner images in an S3 compatible
// bucket and hands back public URLs.
type R2Client struct {
	S3           ObjectAPI
	Bucket       string
	PublicDomain string
}

func NewR2Client(ctx context.Context, cfg config.Storage) (*R2Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("missing R2 env vars (R2_BUCKET, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_ENDPOINT)")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true // required for R2
	})

	return &R2Client{S3: client, Bucket: cfg.Bucket, PublicDomain: cfg.PublicDomain}, nil
}

// UploadImage stores a base64 image (plain or data URI) under folder.
func (r *R2Client) UploadImage(ctx context.Context, folder, encoded string) (models.Image, error) {
	data, err := DecodeImage(encoded)
	if err != nil {
		return models.Image{}, err
	}

	ct := http.DetectContentType(data)
	ext := ".bin"
	if exts, _ := mime.ExtensionsByType(ct); len(exts) > 0 {
		ext = exts[0]
	}
	objectName := fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), uuid.NewString(), ext)

	_, err = r.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(r.Bucket),
		Key:          aws.String(objectName),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(ct),
		CacheControl: aws.String("public, max-age=31536000"),
	})
	if err != nil {
		return models.Image{}, fmt.Errorf("upload %s: %w", objectName, err)
	}

	return models.Image{PublicID: objectName, URL: r.publicURL(objectName)}, nil
}

func (r *R2Client) DeleteImage(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := r.S3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.Bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", publicID, err)
	}
	return nil
}

func (r *R2Client) publicURL(objectName string) string {
	return fmt.Sprintf("%s/%s/%s", r.PublicDomain, r.Bucket, objectName)
}

// DecodeImage accepts "data:image/png;base64,...." or bare base64 and
// rejects anything that is not an image.
func DecodeImage(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		comma := strings.Index(encoded, ",")
		if comma == -1 || !strings.HasSuffix(encoded[:comma], ";base64") {
			return nil, ErrInvalidImage
		}
		encoded = encoded[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) == 0 || len(data) > maxImageBytes {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidImage, len(data))
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return nil, fmt.Errorf("%w: not an image", ErrInvalidImage)
	}
	return data, nil
}
