package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/SirClappington/cf-graphql-demo/internal/errors"
	"github.com/SirClappington/cf-graphql-demo/internal/models"
)

// DemoService serves entries and assets of a bundled space from memory.
type DemoService struct {
	data    *models.DemoData
	entries map[string]*models.Entry
	assets  map[string]*models.Asset
	ordered []*models.Entry
	logger  *log.Logger
}

func NewDemoService(data *models.DemoData, logger *log.Logger) (*DemoService, error) {
	if data == nil {
		return nil, errors.NewValidationError("demo data is required")
	}
	if err := data.Validate(); err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid demo data: %v", err))
	}

	ds := &DemoService{
		data:    data,
		entries: make(map[string]*models.Entry, len(data.Entries)),
		assets:  make(map[string]*models.Asset, len(data.Assets)),
		ordered: make([]*models.Entry, 0, len(data.Entries)),
		logger:  logger,
	}
	for i := range data.Entries {
		e := &data.Entries[i]
		ds.entries[e.Sys.ID] = e
		ds.ordered = append(ds.ordered, e)
	}
	for i := range data.Assets {
		ds.assets[data.Assets[i].Sys.ID] = &data.Assets[i]
	}

	// Timestamps are ISO 8601 UTC strings, so lexical order is chronological.
	sort.SliceStable(ds.ordered, func(i, j int) bool {
		return ds.ordered[i].Sys.CreatedAt > ds.ordered[j].Sys.CreatedAt
	})

	logger.Printf("Demo space %s loaded: %d entries, %d assets", data.SpaceID, len(ds.entries), len(ds.assets))
	return ds, nil
}

func (ds *DemoService) SpaceGraph() models.SpaceGraph {
	return ds.data.SpaceGraph
}

func (ds *DemoService) GetEntries(_ context.Context, q EntryQuery) (*models.EntryCollection, error) {
	var ascending bool
	switch q.Order {
	case "", defaultOrder:
	case "sys.createdAt":
		ascending = true
	default:
		return nil, errors.NewValidationError(fmt.Sprintf("unsupported order %q", q.Order))
	}
	if q.Skip < 0 || q.Limit < 0 {
		return nil, errors.NewValidationError("skip and limit must not be negative")
	}

	var ids map[string]bool
	if len(q.IDs) > 0 {
		ids = make(map[string]bool, len(q.IDs))
		for _, id := range q.IDs {
			ids[id] = true
		}
	}

	var matched []models.Entry
	for _, e := range ds.ordered {
		if q.ContentType != "" && e.ContentTypeID() != q.ContentType {
			continue
		}
		if ids != nil && !ids[e.Sys.ID] {
			continue
		}
		if q.Query != "" && !matchesQuery(e, q.Query) {
			continue
		}
		matched = append(matched, *e)
	}
	if ascending {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	total := len(matched)
	start := min(q.Skip, total)
	end := min(start+q.Limit, total)

	return &models.EntryCollection{
		Total: total,
		Skip:  q.Skip,
		Limit: q.Limit,
		Items: matched[start:end],
	}, nil
}

func (ds *DemoService) GetEntry(_ context.Context, id string) (*models.Entry, error) {
	e, ok := ds.entries[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (ds *DemoService) GetAsset(_ context.Context, id string) (*models.Asset, error) {
	a, ok := ds.assets[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

// matchesQuery mimics the CDA full-text "query" parameter with a
// case-insensitive substring match over string and string-list fields.
func matchesQuery(e *models.Entry, query string) bool {
	needle := strings.ToLower(query)
	for _, v := range e.Fields {
		switch val := v.(type) {
		case string:
			if strings.Contains(strings.ToLower(val), needle) {
				return true
			}
		case []any:
			for _, item := range val {
				if s, ok := item.(string); ok && strings.Contains(strings.ToLower(s), needle) {
					return true
				}
			}
		}
	}
	return false
}
