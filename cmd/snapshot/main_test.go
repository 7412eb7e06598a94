package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SirClappington/cf-graphql-demo/internal/demo"
)

func fakeSpace(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/content_types"):
			io.WriteString(w, `{"total": 1, "items": [{"sys": {"id": "post"}, "name": "Blog post",
				"fields": [{"id": "title", "name": "Title", "type": "Symbol"},
				           {"id": "cover", "name": "Cover", "type": "Link", "linkType": "Asset"}]}]}`)
		case strings.HasSuffix(r.URL.Path, "/entries"):
			assert.Equal(t, "sys.createdAt", r.URL.Query().Get("order"))
			io.WriteString(w, `{"total": 2, "items": [
				{"sys": {"id": "p1", "createdAt": "2024-01-01T00:00:00Z", "contentType": {"sys": {"id": "post"}}},
				 "fields": {"title": "Hello", "cover": {"sys": {"type": "Link", "linkType": "Asset", "id": "img"}}}},
				{"sys": {"id": "x1", "contentType": {"sys": {"id": "unknown"}}}, "fields": {}}
			]}`)
		case strings.HasSuffix(r.URL.Path, "/assets"):
			io.WriteString(w, `{"total": 1, "items": [{"sys": {"id": "img"},
				"fields": {"title": "Cover", "file": {"url": "//images.example.com/cover.png"}}}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSnapshotWritesDataset(t *testing.T) {
	srv := fakeSpace(t)
	out := filepath.Join(t.TempDir(), "snap", "space.json")

	cmd := newCommand()
	cmd.SetArgs([]string{
		"--space", "space1", "--cda-token", "cda", "--cma-token", "cma",
		"--cda-url", srv.URL, "--cma-url", srv.URL, "--out", out,
	})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	data, err := demo.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, "space1", data.SpaceID)
	assert.Equal(t, []string{"BlogPost"}, data.SpaceGraph.TypeNames())
	// Entries of content types outside the graph are dropped.
	require.Len(t, data.Entries, 1)
	assert.Equal(t, "p1", data.Entries[0].Sys.ID)
	require.Len(t, data.Assets, 1)
	assert.Equal(t, "//images.example.com/cover.png", data.Assets[0].Fields.File.URL)
}

func TestSnapshotNeedsCredentials(t *testing.T) {
	t.Setenv("SPACE_ID", "")
	t.Setenv("CDA_TOKEN", "")
	t.Setenv("CMA_TOKEN", "")

	cmd := newCommand()
	cmd.SetArgs([]string{"--space", "space1", "--out", filepath.Join(t.TempDir(), "x.json")})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "are all required")
}
