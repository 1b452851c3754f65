package domain

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestNewImage_ToImage(t *testing.T) {
	tests := []struct {
		name string
		in   NewImage
		want Image
	}{
		{
			name: "nil tags become empty",
			in:   NewImage{ID: "img1"},
			want: Image{ID: "img1", Tags: []string{}},
		},
		{
			name: "all fields copied",
			in: NewImage{
				ID:          "img2",
				Tags:        []string{"b", "a"},
				AccessCount: intPtr(4),
				AccessDate:  strPtr("2024-05-01T10:00:00.000000Z"),
				ReleaseDate: strPtr("2023-01-01"),
			},
			want: Image{
				ID:          "img2",
				Tags:        []string{"b", "a"},
				AccessCount: intPtr(4),
				AccessDate:  strPtr("2024-05-01T10:00:00.000000Z"),
				ReleaseDate: strPtr("2023-01-01"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.ToImage()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ToImage() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestImage_Validate(t *testing.T) {
	if err := (&Image{}).Validate(); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Validate() error = %v, want ErrInvalidID", err)
	}
	if err := (&Image{ID: "x"}).Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestImage_RecordAccess(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2024, 3, 9, 14, 30, 5, 123456789, loc)

	tests := []struct {
		name      string
		count     *int
		wantCount int
	}{
		{name: "absent count", count: nil, wantCount: 1},
		{name: "zero count", count: intPtr(0), wantCount: 1},
		{name: "existing count", count: intPtr(41), wantCount: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := Image{ID: "img", Tags: []string{"t"}, AccessCount: tt.count, ReleaseDate: strPtr("2023-01-01")}
			img.RecordAccess(now)

			if img.AccessCount == nil || *img.AccessCount != tt.wantCount {
				t.Errorf("AccessCount = %v, want %d", img.AccessCount, tt.wantCount)
			}
			if img.AccessDate == nil || *img.AccessDate != "2024-03-09T12:30:05.123456Z" {
				t.Errorf("AccessDate = %v, want %q", img.AccessDate, "2024-03-09T12:30:05.123456Z")
			}
			if img.ReleaseDate == nil || *img.ReleaseDate != "2023-01-01" {
				t.Errorf("ReleaseDate = %v, want it untouched", img.ReleaseDate)
			}
		})
	}
}

func TestAccessDateLayout_ParsesAsRFC3339(t *testing.T) {
	stamp := time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC).Format(AccessDateLayout)

	parsed, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		t.Fatalf("time.Parse(%q) error = %v", stamp, err)
	}
	if parsed.Location() != time.UTC || parsed.Nanosecond() != 6000 {
		t.Errorf("parsed = %v, want 6µs past the second in UTC", parsed)
	}
}
