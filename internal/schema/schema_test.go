package schema

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dfryer1193/keta/api"
	"github.com/dfryer1193/keta/catalog/persistence"
	"github.com/dfryer1193/keta/catalog/resolver"
	"github.com/dfryer1193/keta/shared/db"
	"github.com/dfryer1193/keta/shared/db/memory"
	json "github.com/goccy/go-json"
	"github.com/graphql-go/graphql"
	"github.com/juju/clock/testclock"
)

func setupTestSchema(t *testing.T) (*Schema, *resolver.Context, db.Database) {
	t.Helper()
	database := memory.NewMemoryDB()
	if err := database.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	s, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	clk := testclock.NewClock(time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC))
	rc := resolver.NewContext(persistence.NewImageRepository(database), resolver.WithClock(clk))
	return s, rc, database
}

func execute(t *testing.T, s *Schema, rc *resolver.Context, query string, variables map[string]any) *graphql.Result {
	t.Helper()
	return s.Execute(context.Background(), rc, api.GraphQLRequest{Query: query, Variables: variables})
}

// normalize round-trips data through JSON so results compare as plain maps.
func normalize(t *testing.T, v any) any {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	return out
}

func mustData(t *testing.T, result *graphql.Result) any {
	t.Helper()
	if result.HasErrors() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	return normalize(t, result.Data)
}

func TestSchema_Versions(t *testing.T) {
	s, rc, _ := setupTestSchema(t)

	got := mustData(t, execute(t, s, rc, `{ version }`, nil))
	if want := map[string]any{"version": "1.0"}; !reflect.DeepEqual(got, want) {
		t.Errorf("data = %v, want %v", got, want)
	}

	got = mustData(t, execute(t, s, rc, `mutation { apiVersion }`, nil))
	if want := map[string]any{"apiVersion": "1.0"}; !reflect.DeepEqual(got, want) {
		t.Errorf("data = %v, want %v", got, want)
	}
}

func TestSchema_CreateAndAccess(t *testing.T) {
	s, rc, _ := setupTestSchema(t)

	created := mustData(t, execute(t, s, rc, `
		mutation {
			image(image: {id: "img1", tags: ["a", "b"], releaseDate: "2023-01-01"}) {
				id tags accessCount accessDate releaseDate
			}
		}`, nil))
	want := map[string]any{"image": map[string]any{
		"id": "img1", "tags": []any{"a", "b"}, "accessCount": nil, "accessDate": nil, "releaseDate": "2023-01-01",
	}}
	if !reflect.DeepEqual(created, want) {
		t.Errorf("create data = %v, want %v", created, want)
	}

	accessed := mustData(t, execute(t, s, rc, `mutation { access(id: "img1") { id accessCount accessDate } }`, nil))
	want = map[string]any{"access": map[string]any{
		"id": "img1", "accessCount": float64(1), "accessDate": "2024-02-03T04:05:06.000000Z",
	}}
	if !reflect.DeepEqual(accessed, want) {
		t.Errorf("access data = %v, want %v", accessed, want)
	}

	missing := mustData(t, execute(t, s, rc, `mutation { access(id: "nope") { id } }`, nil))
	if want := map[string]any{"access": nil}; !reflect.DeepEqual(missing, want) {
		t.Errorf("missing access data = %v, want %v", missing, want)
	}
}

func TestSchema_Variables(t *testing.T) {
	s, rc, _ := setupTestSchema(t)

	variables := map[string]any{
		"image": map[string]any{"id": "v1", "accessCount": float64(3)},
	}
	got := mustData(t, execute(t, s, rc, `
		mutation Create($image: NewImage!) {
			image(image: $image) { id tags accessCount }
		}`, variables))
	want := map[string]any{"image": map[string]any{"id": "v1", "tags": []any{}, "accessCount": float64(3)}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("data = %v, want %v", got, want)
	}

	got = mustData(t, execute(t, s, rc, `query List($limit: Int) { images(limit: $limit) { id } }`,
		map[string]any{"limit": float64(1)}))
	want = map[string]any{"images": []any{map[string]any{"id": "v1"}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("data = %v, want %v", got, want)
	}
}

func TestSchema_Images(t *testing.T) {
	s, rc, _ := setupTestSchema(t)

	for _, id := range []string{"c", "a", "b"} {
		mustData(t, execute(t, s, rc, `mutation($id: String!) { image(image: {id: $id}) { id } }`, map[string]any{"id": id}))
	}

	tests := []struct {
		name  string
		query string
		want  []any
	}{
		{name: "all", query: `{ images { id } }`, want: []any{"a", "b", "c"}},
		{name: "limit", query: `{ images(limit: 2) { id } }`, want: []any{"a", "b"}},
		{name: "ids", query: `{ images(ids: ["c", "zz", "a"]) { id } }`, want: []any{"c", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := mustData(t, execute(t, s, rc, tt.query, nil)).(map[string]any)

			var ids []any
			for _, img := range data["images"].([]any) {
				ids = append(ids, img.(map[string]any)["id"])
			}
			if !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("ids = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestSchema_NullVariables(t *testing.T) {
	s, rc, _ := setupTestSchema(t)

	created := mustData(t, execute(t, s, rc, `
		mutation Create($image: NewImage!) {
			image(image: $image) { id tags }
		}`, map[string]any{"image": map[string]any{"id": "a", "tags": nil, "accessCount": nil}}))
	want := map[string]any{"image": map[string]any{"id": "a", "tags": []any{}}}
	if !reflect.DeepEqual(created, want) {
		t.Errorf("create data = %v, want %v", created, want)
	}

	listed := mustData(t, execute(t, s, rc, `query List($ids: [String!], $limit: Int) {
			images(ids: $ids, limit: $limit) { id }
		}`, map[string]any{"ids": nil, "limit": nil}))
	want = map[string]any{"images": []any{map[string]any{"id": "a"}}}
	if !reflect.DeepEqual(listed, want) {
		t.Errorf("list data = %v, want %v", listed, want)
	}

	result := execute(t, s, rc, `query List($ids: [String!]) { images(ids: $ids, limit: -1) { id } }`,
		map[string]any{"ids": nil})
	if !result.HasErrors() || !strings.Contains(result.Errors[0].Message, "limit cannot be negative") {
		t.Errorf("errors = %v, want a negative limit error", result.Errors)
	}
}

func TestSchema_Image(t *testing.T) {
	s, rc, _ := setupTestSchema(t)

	got := mustData(t, execute(t, s, rc, `{ image(id: "none") { id } }`, nil))
	if want := map[string]any{"image": nil}; !reflect.DeepEqual(got, want) {
		t.Errorf("data = %v, want %v", got, want)
	}
}

func TestSchema_FieldErrors(t *testing.T) {
	s, rc, database := setupTestSchema(t)

	if err := database.Put(context.Background(), []byte("bad"), []byte("not json")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	tests := []struct {
		name    string
		query   string
		wantMsg string
	}{
		{name: "undecodable record", query: `{ images { id } }`, wantMsg: "decoding error"},
		{name: "negative limit", query: `{ images(limit: -1) { id } }`, wantMsg: "limit cannot be negative"},
		{name: "empty id", query: `mutation { image(image: {id: ""}) { id } }`, wantMsg: "image id cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := execute(t, s, rc, tt.query, nil)
			if !result.HasErrors() {
				t.Fatalf("expected errors, got data %v", result.Data)
			}
			if msg := result.Errors[0].Message; !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestSchema_NoResolverContext(t *testing.T) {
	s, _, _ := setupTestSchema(t)

	result := graphql.Do(graphql.Params{Schema: s.schema, RequestString: `{ version }`, Context: context.Background()})
	if !result.HasErrors() || !strings.Contains(result.Errors[0].Message, ErrNoResolver.Error()) {
		t.Errorf("errors = %v, want %v", result.Errors, ErrNoResolver)
	}
}

func TestArgs(t *testing.T) {
	img, err := newImageArg(map[string]any{
		"id":          "x",
		"tags":        []any{"t1", "t2"},
		"accessCount": 2,
		"releaseDate": "2023-01-01",
	})
	if err != nil {
		t.Fatalf("newImageArg() error = %v", err)
	}
	if img.ID != "x" || !reflect.DeepEqual(img.Tags, []string{"t1", "t2"}) || *img.AccessCount != 2 || *img.ReleaseDate != "2023-01-01" || img.AccessDate != nil {
		t.Errorf("newImageArg() = %+v", img)
	}

	if _, err := newImageArg("nope"); err == nil {
		t.Error("newImageArg(string) should fail")
	}
	if _, err := stringList([]any{1}); err == nil {
		t.Error("stringList([1]) should fail")
	}
	if got, err := stringList(nil); err != nil || got != nil {
		t.Errorf("stringList(nil) = %v, %v, want nil, nil", got, err)
	}
}
