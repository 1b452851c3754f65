// Package resolver implements the catalog's query and mutation operations.
// A Context is built per request around the process-wide repository.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/dfryer1193/keta/catalog/domain"
	"github.com/dfryer1193/keta/shared/db"
	"github.com/juju/clock"
	"github.com/rs/zerolog/log"
)

const APIVersion = "1.0"

var ErrInvalidLimit = errors.New("limit cannot be negative")

type Option func(*Context)

// WithClock replaces the wall clock used to stamp access dates.
func WithClock(clk clock.Clock) Option {
	return func(c *Context) {
		c.clock = clk
	}
}

// Context carries what a single request needs to resolve fields.
type Context struct {
	repo  domain.ImageRepository
	clock clock.Clock
}

func NewContext(repo domain.ImageRepository, opts ...Option) *Context {
	c := &Context{
		repo:  repo,
		clock: clock.WallClock,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Context) Query() *Query {
	return &Query{ctx: c}
}

func (c *Context) Mutation() *Mutation {
	return &Mutation{ctx: c}
}

type Query struct {
	ctx *Context
}

func (q *Query) Version() string {
	return APIVersion
}

// Images looks up each of ids in order, skipping ids with no record, and
// ignores limit. Without ids it lists records in id order, at most limit
// of them when limit is set.
func (q *Query) Images(ctx context.Context, ids []string, limit *int) ([]domain.Image, error) {
	if ids != nil {
		images := make([]domain.Image, 0, len(ids))
		for _, id := range ids {
			img, err := q.ctx.repo.GetImage(ctx, id)
			if err != nil {
				return nil, err
			}
			if img == nil {
				continue
			}
			images = append(images, *img)
		}
		return images, nil
	}

	n := db.NoLimit
	if limit != nil {
		if *limit < 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, *limit)
		}
		n = *limit
	}

	return q.ctx.repo.ListImages(ctx, n)
}

func (q *Query) Image(ctx context.Context, id string) (*domain.Image, error) {
	return q.ctx.repo.GetImage(ctx, id)
}

type Mutation struct {
	ctx *Context
}

func (m *Mutation) APIVersion() string {
	return APIVersion
}

// Image stores the new image, replacing any record with the same id, and
// returns what was stored.
func (m *Mutation) Image(ctx context.Context, newImage domain.NewImage) (*domain.Image, error) {
	img := newImage.ToImage()
	if err := m.ctx.repo.SaveImage(ctx, &img); err != nil {
		return nil, err
	}

	log.Debug().Str("id", img.ID).Msg("Stored image")
	return &img, nil
}

// Access records one access of the image and returns the updated record,
// or nil without writing anything when there is no such image.
//
// The read and the write are separate store operations. Two concurrent
// calls for the same id can both read the same count and one increment
// is then lost.
func (m *Mutation) Access(ctx context.Context, id string) (*domain.Image, error) {
	img, err := m.ctx.repo.GetImage(ctx, id)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, nil
	}

	img.RecordAccess(m.ctx.clock.Now())
	if err := m.ctx.repo.SaveImage(ctx, img); err != nil {
		return nil, err
	}

	log.Debug().Str("id", id).Int("accessCount", *img.AccessCount).Msg("Recorded image access")
	return img, nil
}
