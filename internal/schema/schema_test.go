package schema

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SirClappington/cf-graphql-demo/internal/demo"
	"github.com/SirClappington/cf-graphql-demo/internal/models"
	"github.com/SirClappington/cf-graphql-demo/internal/services"
)

func demoSchema(t *testing.T) (graphql.Schema, Source) {
	t.Helper()
	data, err := demo.Load()
	require.NoError(t, err)
	src, err := services.NewDemoService(data, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	s, err := Create(data.SpaceGraph)
	require.NoError(t, err)
	return s, src
}

func run(s graphql.Schema, src Source, query string) *graphql.Result {
	ctx := context.Background()
	if src != nil {
		ctx = WithSource(ctx, src)
	}
	return graphql.Do(graphql.Params{Schema: s, RequestString: query, Context: ctx})
}

func dataJSON(t *testing.T, r *graphql.Result) string {
	t.Helper()
	require.Empty(t, r.Errors)
	b, err := json.Marshal(r.Data)
	require.NoError(t, err)
	return string(b)
}

func TestClientPageQuery(t *testing.T) {
	s, src := demoSchema(t)

	r := run(s, src, `{ brands { website } categories { title } products { productName } }`)

	assert.JSONEq(t, `{
		"brands": [
			{"website": "http://www.lemnos.jp/en/"},
			{"website": "http://www.playsam.com"},
			{"website": "http://www.normann-copenhagen.com/"}
		],
		"categories": [{"title": "Toys"}, {"title": "Home & Kitchen"}],
		"products": [
			{"productName": "Playsam Streamliner Classic Car, Espresso"},
			{"productName": "SoSo Wall Clock"},
			{"productName": "Hudson Wall Cup"},
			{"productName": "Whisk Beater"}
		]
	}`, dataJSON(t, r))
}

func TestLinksResolve(t *testing.T) {
	s, src := demoSchema(t)

	r := run(s, src, `{
		products(limit: 1) {
			sys { id contentTypeId }
			productName price quantity tags
			brand { companyName logo { url } }
			categories { title }
			image { title }
		}
	}`)

	assert.JSONEq(t, `{"products": [{
		"sys": {"id": "product-streamliner", "contentTypeId": "product"},
		"productName": "Playsam Streamliner Classic Car, Espresso",
		"price": 44,
		"quantity": 56,
		"tags": ["wood", "toy", "car", "sweden", "design"],
		"brand": {"companyName": "Playsam", "logo": {"url": "//images.ctfassets.net/demo/playsam-logo/playsam.png"}},
		"categories": [{"title": "Toys"}],
		"image": [{"title": "Playsam streamliner"}]
	}]}`, dataJSON(t, r))
}

func TestSingleEntryQuery(t *testing.T) {
	s, src := demoSchema(t)

	r := run(s, src, `{ brand(id: "brand-lemnos") { companyName } product(id: "brand-lemnos") { productName } category(id: "nope") { title } }`)
	assert.JSONEq(t, `{"brand": {"companyName": "Lemnos"}, "product": null, "category": null}`, dataJSON(t, r))
}

func TestCollectionArguments(t *testing.T) {
	s, src := demoSchema(t)

	r := run(s, src, `{ products(skip: 1, limit: 2) { productName } _productsMeta { count } filtered: _productsMeta(q: "clock") { count } }`)
	assert.JSONEq(t, `{
		"products": [{"productName": "SoSo Wall Clock"}, {"productName": "Hudson Wall Cup"}],
		"_productsMeta": {"count": 4},
		"filtered": {"count": 1}
	}`, dataJSON(t, r))

	r = run(s, src, `{ products(q: "WALL") { productName } }`)
	assert.JSONEq(t, `{"products": [{"productName": "SoSo Wall Clock"}, {"productName": "Hudson Wall Cup"}]}`, dataJSON(t, r))
}

func TestCollectionLimitBounds(t *testing.T) {
	s, src := demoSchema(t)

	for _, q := range []string{`{ brands(limit: 0) { website } }`, `{ brands(limit: 1001) { website } }`, `{ brands(skip: -1) { website } }`} {
		r := run(s, src, q)
		assert.NotEmpty(t, r.Errors, q)
	}
}

func TestMissingSourceIsAnError(t *testing.T) {
	s, _ := demoSchema(t)

	r := run(s, nil, `{ brands { website } }`)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0].Message, "no content source")
}

func TestCreateRejectsEmptyGraph(t *testing.T) {
	_, err := Create(nil)
	assert.Error(t, err)
}

type fakeSource struct {
	entries   map[string]*models.Entry
	entryGets int
}

func (f *fakeSource) GetEntries(_ context.Context, q services.EntryQuery) (*models.EntryCollection, error) {
	c := &models.EntryCollection{}
	for _, e := range f.entries {
		if e.ContentTypeID() == q.ContentType {
			c.Items = append(c.Items, *e)
		}
	}
	c.Total = len(c.Items)
	return c, nil
}

func (f *fakeSource) GetEntry(_ context.Context, id string) (*models.Entry, error) {
	f.entryGets++
	return f.entries[id], nil
}

func (f *fakeSource) GetAsset(context.Context, string) (*models.Asset, error) {
	return nil, nil
}

func entry(id, ct string, fields map[string]any) *models.Entry {
	return &models.Entry{
		Sys:    models.Sys{ID: id, ContentType: &models.Link{Sys: models.Sys{ID: ct}}},
		Fields: fields,
	}
}

func link(id string) map[string]any {
	return map[string]any{"sys": map[string]any{"type": "Link", "linkType": "Entry", "id": id}}
}

func TestUnrestrictedLinksUseEntryInterface(t *testing.T) {
	graph := models.SpaceGraph{
		{ID: "post", Names: models.GraphNames{Type: "Post", Field: "post", CollectionField: "posts"}, Fields: []models.GraphField{
			{ID: "title", Type: models.FieldTypeString},
			{ID: "related", Type: models.FieldTypeEntryLinkArray},
			{ID: "location", Type: models.FieldTypeLocation},
			{ID: "meta", Type: models.FieldTypeObject},
		}},
		{ID: "author", Names: models.GraphNames{Type: "Author", Field: "author", CollectionField: "authors"}, Fields: []models.GraphField{
			{ID: "name", Type: models.FieldTypeString},
		}},
	}
	s, err := Create(graph)
	require.NoError(t, err)

	src := &fakeSource{entries: map[string]*models.Entry{
		"p1": entry("p1", "post", map[string]any{
			"title":    "Hello",
			"related":  []any{link("a1"), link("a1"), link("missing"), link("x1")},
			"location": map[string]any{"lat": 52.5, "lon": 13.4},
			"meta":     map[string]any{"draft": false},
		}),
		"a1": entry("a1", "author", map[string]any{"name": "Ada"}),
		"x1": entry("x1", "unknown", map[string]any{}),
	}}

	r := run(s, src, `{ posts {
		title
		location { lat lon }
		meta
		related { __typename sys { id } ... on Author { name } }
	} }`)

	assert.JSONEq(t, `{"posts": [{
		"title": "Hello",
		"location": {"lat": 52.5, "lon": 13.4},
		"meta": {"draft": false},
		"related": [
			{"__typename": "Author", "sys": {"id": "a1"}, "name": "Ada"},
			{"__typename": "Author", "sys": {"id": "a1"}, "name": "Ada"}
		]
	}]}`, dataJSON(t, r))

	// a1 and p1 were primed by the collection or fetched once; misses are remembered.
	assert.Equal(t, 3, src.entryGets)
}
