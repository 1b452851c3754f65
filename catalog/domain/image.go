package domain

import (
	"context"
	"errors"
	"time"
)

// AccessDateLayout is RFC3339 with a fixed microsecond fraction. Stamps are
// always written in UTC, so the zone renders as "Z".
const AccessDateLayout = "2006-01-02T15:04:05.000000Z07:00"

var ErrInvalidID = errors.New("image id cannot be empty")

// Image is the catalog record. The id is also its storage key.
// Nil pointer fields are absent values, not zeroes.
//
// Stored shape, version 2: the fields below. Version 1 records also carried
// a filename; decoding ignores it along with any other unknown field.
type Image struct {
	ID          string   `json:"id"`
	Tags        []string `json:"tags"`
	AccessCount *int     `json:"accessCount"`
	AccessDate  *string  `json:"accessDate"`
	ReleaseDate *string  `json:"releaseDate"`
}

// NewImage is the creation payload. Tags may be omitted.
type NewImage struct {
	ID          string   `json:"id"`
	Tags        []string `json:"tags,omitempty"`
	AccessCount *int     `json:"accessCount"`
	AccessDate  *string  `json:"accessDate"`
	ReleaseDate *string  `json:"releaseDate"`
}

// ToImage copies every field. Missing tags become an empty list.
func (n NewImage) ToImage() Image {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}

	return Image{
		ID:          n.ID,
		Tags:        tags,
		AccessCount: n.AccessCount,
		AccessDate:  n.AccessDate,
		ReleaseDate: n.ReleaseDate,
	}
}

func (i *Image) Validate() error {
	if i.ID == "" {
		return ErrInvalidID
	}
	return nil
}

// RecordAccess bumps the access count, treating an absent count as zero,
// and stamps the access date with now in UTC.
func (i *Image) RecordAccess(now time.Time) {
	count := 1
	if i.AccessCount != nil {
		count = *i.AccessCount + 1
	}
	date := now.UTC().Format(AccessDateLayout)

	i.AccessCount = &count
	i.AccessDate = &date
}

type ImageRepository interface {
	// GetImage returns nil when no record has the id.
	GetImage(ctx context.Context, id string) (*Image, error)
	// SaveImage replaces whatever was stored under img.ID.
	SaveImage(ctx context.Context, img *Image) error
	// ListImages returns records in id order. A negative limit returns all of them.
	ListImages(ctx context.Context, limit int) ([]Image, error)
}
