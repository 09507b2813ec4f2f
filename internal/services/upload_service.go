package services

import (
	"context"
	"fmt"
	"strings"

	"ballotbox/internal/storage"
	ballot_errors "ballotbox/pkg/errors"

	"github.com/google/uuid"
)

const maxCandidateImageBytes = 5 * 1024 * 1024

var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type UploadService struct {
	storage *storage.Client
}

func NewUploadService(storage *storage.Client) *UploadService {
	return &UploadService{storage: storage}
}

type PresignedUpload struct {
	UploadURL string            `json:"upload_url"`
	Headers   map[string]string `json:"headers,omitempty"`
	FileURL   string            `json:"file_url"`
	Key       string            `json:"key"`
}

// PresignCandidateImage returns a presigned PUT URL for a candidate image.
// The resulting FileURL is what the client should submit as
// candidate_image_url.
func (s *UploadService) PresignCandidateImage(ctx context.Context, uploaderID uuid.UUID, contentType string, sizeBytes int64) (PresignedUpload, error) {
	if uploaderID == uuid.Nil {
		return PresignedUpload{}, ballot_errors.ErrUnauthenticated
	}
	if s.storage == nil {
		return PresignedUpload{}, fmt.Errorf("image storage not configured")
	}

	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return PresignedUpload{}, ballot_errors.ErrInvalidInput
	}
	if sizeBytes <= 0 || sizeBytes > maxCandidateImageBytes {
		return PresignedUpload{}, ballot_errors.ErrInvalidInput
	}

	key := fmt.Sprintf("candidates/%s.%s", uuid.New().String(), ext)
	uploadURL, headers, err := s.storage.PresignPut(ctx, key, contentType, sizeBytes)
	if err != nil {
		return PresignedUpload{}, err
	}

	return PresignedUpload{
		UploadURL: uploadURL,
		Headers:   headers,
		FileURL:   s.storage.FileURL(key),
		Key:       key,
	}, nil
}
