package persistence

import (
	"context"
	"fmt"

	"github.com/dfryer1193/keta/catalog/domain"
	"github.com/dfryer1193/keta/shared/db"
)

var _ domain.ImageRepository = (*KVImageRepository)(nil)

// KVImageRepository implements domain.ImageRepository on a typed store of
// JSON documents keyed by image id.
type KVImageRepository struct {
	store *db.Store[domain.Image]
}

// NewImageRepository creates a KVImageRepository on an already connected database.
func NewImageRepository(database db.Database) *KVImageRepository {
	return &KVImageRepository{
		store: db.NewStore[domain.Image](database, db.JSONCodec[domain.Image]{}),
	}
}

// SaveImage writes img under its id, replacing any earlier record.
func (r *KVImageRepository) SaveImage(ctx context.Context, img *domain.Image) error {
	if img == nil {
		return fmt.Errorf("image cannot be nil")
	}

	if err := img.Validate(); err != nil {
		return err
	}

	if err := r.store.Set(ctx, img.ID, *img); err != nil {
		return fmt.Errorf("failed to save image %q: %w", img.ID, err)
	}

	return nil
}

// GetImage retrieves a single image by id
func (r *KVImageRepository) GetImage(ctx context.Context, id string) (*domain.Image, error) {
	if id == "" {
		return nil, nil
	}

	img, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get image %q: %w", id, err)
	}

	return img, nil
}

func (r *KVImageRepository) ListImages(ctx context.Context, limit int) ([]domain.Image, error) {
	images, err := r.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	return images, nil
}
