package application

import (
	"context"
	"fmt"

	"github.com/dfryer1193/keta/catalog/domain"
	"github.com/dfryer1193/keta/shared/db"
	"github.com/rs/zerolog/log"
)

// TransferService moves the whole catalog in and out as a list of images.
type TransferService struct {
	repo domain.ImageRepository
}

func NewTransferService(repo domain.ImageRepository) *TransferService {
	return &TransferService{
		repo: repo,
	}
}

// Export returns every image in id order.
func (s *TransferService) Export(ctx context.Context) ([]domain.Image, error) {
	images, err := s.repo.ListImages(ctx, db.NoLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to export images: %w", err)
	}

	log.Info().Int("count", len(images)).Msg("Exported images")
	return images, nil
}

// Import saves images in order and stops at the first failure. Images
// saved before the failure stay saved; the count of them is returned
// either way.
func (s *TransferService) Import(ctx context.Context, images []domain.Image) (int, error) {
	for i := range images {
		img := images[i]
		if img.Tags == nil {
			img.Tags = []string{}
		}

		if err := s.repo.SaveImage(ctx, &img); err != nil {
			log.Error().Err(err).Int("index", i).Str("id", img.ID).Msg("Failed to import image")
			return i, fmt.Errorf("failed to import image %d: %w", i, err)
		}
	}

	log.Info().Int("count", len(images)).Msg("Imported images")
	return len(images), nil
}
