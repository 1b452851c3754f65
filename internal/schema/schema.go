// Package schema binds the resolver layer to a GraphQL schema.
package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/dfryer1193/keta/api"
	"github.com/dfryer1193/keta/catalog/domain"
	"github.com/dfryer1193/keta/catalog/resolver"
	"github.com/graphql-go/graphql"
)

type resolverKey struct{}

var ErrNoResolver = errors.New("no resolver context in request")

// WithContext stores the per-request resolver context.
func WithContext(ctx context.Context, rc *resolver.Context) context.Context {
	return context.WithValue(ctx, resolverKey{}, rc)
}

// FromContext returns the resolver context stored by WithContext, if any.
func FromContext(ctx context.Context) (*resolver.Context, bool) {
	rc, ok := ctx.Value(resolverKey{}).(*resolver.Context)
	return rc, ok && rc != nil
}

// Schema is the compiled GraphQL schema. It holds no request state and is
// safe to share.
type Schema struct {
	schema graphql.Schema
}

func New() (*Schema, error) {
	imageType := newImageType()

	s, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    newQueryType(imageType),
		Mutation: newMutationType(imageType, newImageInputType()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build graphql schema: %w", err)
	}

	return &Schema{schema: s}, nil
}

// Execute runs one GraphQL operation with rc resolving its fields.
// Resolver failures come back as errors in the result, not as a Go error.
func (s *Schema) Execute(ctx context.Context, rc *resolver.Context, req api.GraphQLRequest) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        WithContext(ctx, rc),
	})
}

func resolverFrom(p graphql.ResolveParams) (*resolver.Context, error) {
	rc, ok := FromContext(p.Context)
	if !ok {
		return nil, ErrNoResolver
	}
	return rc, nil
}

func newImageType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name:        "Image",
		Description: "Catalog record for one image",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: imageField(func(img *domain.Image) any {
					return img.ID
				}),
			},
			"tags": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String))),
				Resolve: imageField(func(img *domain.Image) any {
					if img.Tags == nil {
						return []string{}
					}
					return img.Tags
				}),
			},
			"accessCount": &graphql.Field{
				Type: graphql.Int,
				Resolve: imageField(func(img *domain.Image) any {
					if img.AccessCount == nil {
						return nil
					}
					return *img.AccessCount
				}),
			},
			"accessDate": &graphql.Field{
				Type: graphql.String,
				Resolve: imageField(func(img *domain.Image) any {
					return optionalString(img.AccessDate)
				}),
			},
			"releaseDate": &graphql.Field{
				Type: graphql.String,
				Resolve: imageField(func(img *domain.Image) any {
					return optionalString(img.ReleaseDate)
				}),
			},
		},
	})
}

func imageField(get func(img *domain.Image) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		switch img := p.Source.(type) {
		case *domain.Image:
			if img == nil {
				return nil, nil
			}
			return get(img), nil
		case domain.Image:
			return get(&img), nil
		default:
			return nil, fmt.Errorf("unexpected image source %T", p.Source)
		}
	}
}

func optionalString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func newImageInputType() *graphql.InputObject {
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "NewImage",
		Fields: graphql.InputObjectConfigFieldMap{
			"id":          &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"tags":        &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
			"accessCount": &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"accessDate":  &graphql.InputObjectFieldConfig{Type: graphql.String},
			"releaseDate": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})
}

func newQueryType(imageType *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"version": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					rc, err := resolverFrom(p)
					if err != nil {
						return nil, err
					}
					return rc.Query().Version(), nil
				},
			},
			"images": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(imageType))),
				Args: graphql.FieldConfigArgument{
					"ids": &graphql.ArgumentConfig{
						Type:        graphql.NewList(graphql.NewNonNull(graphql.String)),
						Description: "list of the ids of the images",
					},
					"limit": &graphql.ArgumentConfig{
						Type:        graphql.Int,
						Description: "maximum number of images when listing without ids",
					},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					rc, err := resolverFrom(p)
					if err != nil {
						return nil, err
					}

					ids, err := stringList(p.Args["ids"])
					if err != nil {
						return nil, err
					}
					limit, err := optionalInt(p.Args["limit"])
					if err != nil {
						return nil, err
					}

					return rc.Query().Images(p.Context, ids, limit)
				},
			},
			"image": &graphql.Field{
				Type: imageType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(graphql.String),
						Description: "id of the image",
					},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					rc, err := resolverFrom(p)
					if err != nil {
						return nil, err
					}

					id, _ := p.Args["id"].(string)
					img, err := rc.Query().Image(p.Context, id)
					if err != nil || img == nil {
						return nil, err
					}
					return img, nil
				},
			},
		},
	})
}

func newMutationType(imageType *graphql.Object, imageInput *graphql.InputObject) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"apiVersion": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					rc, err := resolverFrom(p)
					if err != nil {
						return nil, err
					}
					return rc.Mutation().APIVersion(), nil
				},
			},
			"image": &graphql.Field{
				Type: graphql.NewNonNull(imageType),
				Args: graphql.FieldConfigArgument{
					"image": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(imageInput),
						Description: "set new image object",
					},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					rc, err := resolverFrom(p)
					if err != nil {
						return nil, err
					}

					newImage, err := newImageArg(p.Args["image"])
					if err != nil {
						return nil, err
					}
					return rc.Mutation().Image(p.Context, newImage)
				},
			},
			"access": &graphql.Field{
				Type: imageType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(graphql.String),
						Description: "id of the image",
					},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					rc, err := resolverFrom(p)
					if err != nil {
						return nil, err
					}

					id, _ := p.Args["id"].(string)
					img, err := rc.Mutation().Access(p.Context, id)
					if err != nil || img == nil {
						return nil, err
					}
					return img, nil
				},
			},
		},
	})
}
