package services

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SirClappington/cf-graphql-demo/internal/demo"
	"github.com/SirClappington/cf-graphql-demo/internal/errors"
	"github.com/SirClappington/cf-graphql-demo/internal/models"
)

var discard = log.New(io.Discard, "", 0)

func newDemoService(t *testing.T) *DemoService {
	t.Helper()
	data, err := demo.Load()
	require.NoError(t, err)
	ds, err := NewDemoService(data, discard)
	require.NoError(t, err)
	return ds
}

func ids(c *models.EntryCollection) []string {
	out := make([]string, 0, len(c.Items))
	for _, e := range c.Items {
		out = append(out, e.Sys.ID)
	}
	return out
}

func TestDemoServiceOrdersNewestFirst(t *testing.T) {
	ds := newDemoService(t)

	c, err := ds.GetEntries(context.Background(), EntryQuery{ContentType: "brand", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, c.Total)
	assert.Equal(t, []string{"brand-lemnos", "brand-playsam", "brand-normann"}, ids(c))

	c, err = ds.GetEntries(context.Background(), EntryQuery{ContentType: "brand", Order: "sys.createdAt", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"brand-normann", "brand-playsam", "brand-lemnos"}, ids(c))
}

func TestDemoServicePaging(t *testing.T) {
	ds := newDemoService(t)
	ctx := context.Background()

	c, err := ds.GetEntries(ctx, EntryQuery{ContentType: "brand", Skip: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, c.Total)
	assert.Equal(t, []string{"brand-playsam"}, ids(c))

	c, err = ds.GetEntries(ctx, EntryQuery{ContentType: "brand", Skip: 10, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 3, c.Total)
	assert.Empty(t, c.Items)

	// A zero limit only counts.
	c, err = ds.GetEntries(ctx, EntryQuery{})
	require.NoError(t, err)
	assert.Equal(t, 9, c.Total)
	assert.Empty(t, c.Items)
}

func TestDemoServiceFilters(t *testing.T) {
	ds := newDemoService(t)
	ctx := context.Background()

	c, err := ds.GetEntries(ctx, EntryQuery{Query: "CLOCK", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"product-clock", "brand-lemnos"}, ids(c))

	c, err = ds.GetEntries(ctx, EntryQuery{ContentType: "product", Query: "clock", Limit: 10})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "SoSo Wall Clock", c.Items[0].Fields["productName"])

	c, err = ds.GetEntries(ctx, EntryQuery{IDs: []string{"brand-playsam", "missing"}, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"brand-playsam"}, ids(c))
}

func TestDemoServiceRejectsBadQueries(t *testing.T) {
	ds := newDemoService(t)
	ctx := context.Background()

	_, err := ds.GetEntries(ctx, EntryQuery{Order: "fields.title"})
	assert.True(t, errors.Is(err, errors.ErrorTypeValidation))

	_, err = ds.GetEntries(ctx, EntryQuery{Skip: -1})
	assert.True(t, errors.Is(err, errors.ErrorTypeValidation))
}

func TestDemoServiceLookups(t *testing.T) {
	ds := newDemoService(t)
	ctx := context.Background()

	e, err := ds.GetEntry(ctx, "brand-lemnos")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "brand", e.ContentTypeID())

	e, err = ds.GetEntry(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, e)

	a, err := ds.GetAsset(ctx, "lemnos-logo")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.NotEmpty(t, a.Fields.File.URL)

	a, err = ds.GetAsset(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestNewDemoServiceValidates(t *testing.T) {
	_, err := NewDemoService(nil, discard)
	assert.True(t, errors.Is(err, errors.ErrorTypeValidation))

	_, err = NewDemoService(&models.DemoData{}, discard)
	assert.True(t, errors.Is(err, errors.ErrorTypeValidation))
}
