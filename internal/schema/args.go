package schema

import (
	"fmt"

	"github.com/dfryer1193/keta/catalog/domain"
)

// stringList converts a [String!] argument. A missing or null argument is nil.
func stringList(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}

	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of strings, got %T", v)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string, got %T", item)
		}
		out = append(out, s)
	}
	return out, nil
}

func optionalInt(v any) (*int, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case int:
		return &n, nil
	case float64:
		i := int(n)
		return &i, nil
	default:
		return nil, fmt.Errorf("expected an integer, got %T", v)
	}
}

func optionalStringArg(v any) (*string, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &s, nil
	default:
		return nil, fmt.Errorf("expected a string, got %T", v)
	}
}

// newImageArg converts the NewImage input object.
func newImageArg(v any) (domain.NewImage, error) {
	fields, ok := v.(map[string]any)
	if !ok {
		return domain.NewImage{}, fmt.Errorf("expected a NewImage object, got %T", v)
	}

	var (
		img domain.NewImage
		err error
	)

	img.ID, _ = fields["id"].(string)
	if img.Tags, err = stringList(fields["tags"]); err != nil {
		return domain.NewImage{}, fmt.Errorf("tags: %w", err)
	}
	if img.AccessCount, err = optionalInt(fields["accessCount"]); err != nil {
		return domain.NewImage{}, fmt.Errorf("accessCount: %w", err)
	}
	if img.AccessDate, err = optionalStringArg(fields["accessDate"]); err != nil {
		return domain.NewImage{}, fmt.Errorf("accessDate: %w", err)
	}
	if img.ReleaseDate, err = optionalStringArg(fields["releaseDate"]); err != nil {
		return domain.NewImage{}, fmt.Errorf("releaseDate: %w", err)
	}

	return img, nil
}
