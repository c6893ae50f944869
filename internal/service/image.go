package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/foodgram/backend/config"
)

// ImageService stores recipe images in S3 and hands back public URLs.
type ImageService struct {
	s3cfg *config.S3Config
}

// NewImageService creates a new ImageService instance
func NewImageService(s3cfg *config.S3Config) *ImageService {
	return &ImageService{s3cfg: s3cfg}
}

// UploadRecipeImage stores the image under recipes/{recipeID}{ext} and
// returns its public URL.
func (s *ImageService) UploadRecipeImage(ctx context.Context, recipeID uuid.UUID, filename, contentType string, body io.Reader) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	key := fmt.Sprintf("recipes/%s%s", recipeID, ext)
	_, err := s.s3cfg.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3cfg.BucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return s.s3cfg.ObjectURL(key), nil
}
