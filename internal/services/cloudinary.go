package services

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryService uploads alert videos and returns retrievable URLs.
type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryService{
		cld: cld,
	}, nil
}

// UploadVideo uploads video bytes to Cloudinary and returns the secure URL.
func (s *CloudinaryService) UploadVideo(ctx context.Context, data []byte, folder string) (string, error) {
	uploadResult, err := s.cld.Upload.Upload(ctx, data, uploader.UploadParams{
		Folder:       folder,
		ResourceType: "video",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}

	return uploadResult.SecureURL, nil
}
