// Package schema builds a GraphQL schema over a prepared space graph.
//
// The schema does not hold a content source. Resolvers read it from the
// request context, see WithSource, so one schema serves live and demo spaces
// alike.
package schema

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/SirClappington/cf-graphql-demo/internal/models"
	"github.com/SirClappington/cf-graphql-demo/internal/services"
)

const (
	DefaultLimit = 50
	MaxLimit     = 1000
)

var jsonScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "JSON",
	Description: "Arbitrary JSON value of an Object field.",
	Serialize: func(value interface{}) interface{} {
		return value
	},
})

var entrySysType = graphql.NewObject(graphql.ObjectConfig{
	Name: "EntrySys",
	Fields: graphql.Fields{
		"id":            sysField(graphql.NewNonNull(graphql.ID), func(s models.Sys) interface{} { return s.ID }),
		"createdAt":     sysField(graphql.String, func(s models.Sys) interface{} { return s.CreatedAt }),
		"updatedAt":     sysField(graphql.String, func(s models.Sys) interface{} { return s.UpdatedAt }),
		"revision":      sysField(graphql.Int, func(s models.Sys) interface{} { return s.Revision }),
		"contentTypeId": sysField(graphql.String, contentTypeID),
	},
})

var assetSysType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AssetSys",
	Fields: graphql.Fields{
		"id":        sysField(graphql.NewNonNull(graphql.ID), func(s models.Sys) interface{} { return s.ID }),
		"createdAt": sysField(graphql.String, func(s models.Sys) interface{} { return s.CreatedAt }),
		"updatedAt": sysField(graphql.String, func(s models.Sys) interface{} { return s.UpdatedAt }),
	},
})

var assetType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Asset",
	Fields: graphql.Fields{
		"sys": &graphql.Field{
			Type: graphql.NewNonNull(assetSysType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.Asset).Sys, nil
			},
		},
		"title":       assetField(func(f models.AssetFields) string { return f.Title }),
		"description": assetField(func(f models.AssetFields) string { return f.Description }),
		"url": assetField(func(f models.AssetFields) string {
			if f.File == nil {
				return ""
			}
			return f.File.URL
		}),
		"fileName": assetField(func(f models.AssetFields) string {
			if f.File == nil {
				return ""
			}
			return f.File.FileName
		}),
		"contentType": assetField(func(f models.AssetFields) string {
			if f.File == nil {
				return ""
			}
			return f.File.ContentType
		}),
	},
})

var locationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Location",
	Fields: graphql.Fields{
		"lat": locationField("lat"),
		"lon": locationField("lon"),
	},
})

var collectionMetaType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CollectionMeta",
	Fields: graphql.Fields{
		"count": &graphql.Field{
			Type: graphql.Int,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*models.EntryCollection).Total, nil
			},
		},
	},
})

func sysField(t graphql.Output, get func(models.Sys) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: t,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return get(p.Source.(models.Sys)), nil
		},
	}
}

func contentTypeID(s models.Sys) interface{} {
	if s.ContentType == nil {
		return nil
	}
	return s.ContentType.Sys.ID
}

func assetField(get func(models.AssetFields) string) *graphql.Field {
	return &graphql.Field{
		Type: graphql.String,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if v := get(p.Source.(*models.Asset).Fields); v != "" {
				return v, nil
			}
			return nil, nil
		},
	}
}

func locationField(key string) *graphql.Field {
	return &graphql.Field{
		Type: graphql.Float,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			m, ok := p.Source.(map[string]any)
			if !ok {
				return nil, nil
			}
			return m[key], nil
		},
	}
}

// builder holds the types created for one space graph.
type builder struct {
	graph   models.SpaceGraph
	objects map[string]*graphql.Object
	entry   *graphql.Interface
}

// Create builds the schema: one object type per content type, all
// implementing Entry, plus single, collection and meta query fields.
func Create(graph models.SpaceGraph) (graphql.Schema, error) {
	if len(graph) == 0 {
		return graphql.Schema{}, fmt.Errorf("cannot create a schema from an empty space graph")
	}

	b := &builder{
		graph:   graph,
		objects: make(map[string]*graphql.Object, len(graph)),
	}

	b.entry = graphql.NewInterface(graphql.InterfaceConfig{
		Name: "Entry",
		Fields: graphql.Fields{
			"sys": &graphql.Field{Type: graphql.NewNonNull(entrySysType)},
		},
		ResolveType: func(p graphql.ResolveTypeParams) *graphql.Object {
			e, ok := p.Value.(*models.Entry)
			if !ok {
				return nil
			}
			return b.objects[e.ContentTypeID()]
		},
	})

	types := make([]graphql.Type, 0, len(graph))
	for i := range graph {
		obj := b.contentTypeObject(&graph[i])
		b.objects[graph[i].ID] = obj
		types = append(types, obj)
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: b.queryFields(),
	})

	s, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: query,
		Types: types,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("error creating schema: %w", err)
	}
	return s, nil
}

func (b *builder) contentTypeObject(ct *models.ContentTypeNode) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name:       ct.Names.Type,
		Interfaces: []*graphql.Interface{b.entry},
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			fields := graphql.Fields{
				"sys": &graphql.Field{
					Type: graphql.NewNonNull(entrySysType),
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						return p.Source.(*models.Entry).Sys, nil
					},
				},
			}
			for _, f := range ct.Fields {
				fields[f.ID] = b.entryField(f)
			}
			return fields
		}),
	})
}

// linkTarget is the type an entry link resolves to: the linked content
// type's object when the link is restricted to one, the Entry interface otherwise.
func (b *builder) linkTarget(f models.GraphField) graphql.Output {
	if obj, ok := b.objects[f.LinkedCT]; ok {
		return obj
	}
	return b.entry
}

func (b *builder) entryField(f models.GraphField) *graphql.Field {
	id := f.ID
	value := func(p graphql.ResolveParams) interface{} {
		return p.Source.(*models.Entry).Fields[id]
	}
	plain := func(t graphql.Output) *graphql.Field {
		return &graphql.Field{
			Type: t,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return value(p), nil
			},
		}
	}

	switch f.Type {
	case models.FieldTypeString:
		return plain(graphql.String)
	case models.FieldTypeInt:
		return plain(graphql.Int)
	case models.FieldTypeFloat:
		return plain(graphql.Float)
	case models.FieldTypeBool:
		return plain(graphql.Boolean)
	case models.FieldTypeLocation:
		return plain(locationType)
	case models.FieldTypeObject:
		return plain(jsonScalar)
	case models.FieldTypeStringArray:
		return plain(graphql.NewList(graphql.String))
	case models.FieldTypeAssetLink:
		return &graphql.Field{
			Type: assetType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return resolveAsset(p, value(p))
			},
		}
	case models.FieldTypeAssetLinkArray:
		return &graphql.Field{
			Type: graphql.NewList(assetType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return resolveList(p, value(p), resolveAsset)
			},
		}
	case models.FieldTypeEntryLink:
		return &graphql.Field{
			Type: b.linkTarget(f),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return b.resolveEntry(p, value(p), f.LinkedCT)
			},
		}
	case models.FieldTypeEntryLinkArray:
		return &graphql.Field{
			Type: graphql.NewList(b.linkTarget(f)),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return resolveList(p, value(p), func(p graphql.ResolveParams, v interface{}) (interface{}, error) {
					return b.resolveEntry(p, v, f.LinkedCT)
				})
			},
		}
	}
	// Prepare only emits the types above; anything else is exposed raw.
	return plain(jsonScalar)
}

func resolveAsset(p graphql.ResolveParams, v interface{}) (interface{}, error) {
	id, ok := models.LinkID(v, models.LinkTypeAsset)
	if !ok {
		return nil, nil
	}
	l, err := loaderFrom(p.Context)
	if err != nil {
		return nil, err
	}
	a, err := l.asset(p.Context, id)
	if err != nil || a == nil {
		return nil, err
	}
	return a, nil
}

// resolveEntry drops links to missing entries and to entries whose content
// type is not part of the schema or does not match linkedCT.
func (b *builder) resolveEntry(p graphql.ResolveParams, v interface{}, linkedCT string) (interface{}, error) {
	id, ok := models.LinkID(v, models.LinkTypeEntry)
	if !ok {
		return nil, nil
	}
	l, err := loaderFrom(p.Context)
	if err != nil {
		return nil, err
	}
	e, err := l.entry(p.Context, id)
	if err != nil || e == nil {
		return nil, err
	}
	if !b.accepts(e, linkedCT) {
		return nil, nil
	}
	return e, nil
}

func (b *builder) accepts(e *models.Entry, linkedCT string) bool {
	if _, ok := b.objects[e.ContentTypeID()]; !ok {
		return false
	}
	return linkedCT == "" || e.ContentTypeID() == linkedCT
}

func resolveList(p graphql.ResolveParams, v interface{}, resolve func(graphql.ResolveParams, interface{}) (interface{}, error)) (interface{}, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, nil
	}
	out := make([]interface{}, 0, len(items))
	for _, item := range items {
		r, err := resolve(p, item)
		if err != nil {
			return nil, err
		}
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (b *builder) queryFields() graphql.Fields {
	fields := graphql.Fields{}
	for i := range b.graph {
		ct := b.graph[i]
		obj := b.objects[ct.ID]

		fields[ct.Names.Field] = &graphql.Field{
			Type: obj,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				l, err := loaderFrom(p.Context)
				if err != nil {
					return nil, err
				}
				id, _ := p.Args["id"].(string)
				e, err := l.entry(p.Context, id)
				if err != nil || e == nil || e.ContentTypeID() != ct.ID {
					return nil, err
				}
				return e, nil
			},
		}

		fields[ct.Names.CollectionField] = &graphql.Field{
			Type: graphql.NewList(obj),
			Args: graphql.FieldConfigArgument{
				"q":     &graphql.ArgumentConfig{Type: graphql.String},
				"skip":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: DefaultLimit},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				q, err := collectionQuery(ct.ID, p.Args)
				if err != nil {
					return nil, err
				}
				l, err := loaderFrom(p.Context)
				if err != nil {
					return nil, err
				}
				collection, err := l.query(p.Context, q)
				if err != nil {
					return nil, err
				}
				out := make([]interface{}, 0, len(collection.Items))
				for i := range collection.Items {
					out = append(out, &collection.Items[i])
				}
				return out, nil
			},
		}

		fields["_"+ct.Names.CollectionField+"Meta"] = &graphql.Field{
			Type: collectionMetaType,
			Args: graphql.FieldConfigArgument{
				"q": &graphql.ArgumentConfig{Type: graphql.String},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				l, err := loaderFrom(p.Context)
				if err != nil {
					return nil, err
				}
				q, _ := p.Args["q"].(string)
				collection, err := l.count(p.Context, ct.ID, q)
				if err != nil {
					return nil, err
				}
				return collection, nil
			},
		}
	}
	return fields
}

func collectionQuery(contentType string, args map[string]interface{}) (services.EntryQuery, error) {
	q := services.EntryQuery{ContentType: contentType, Limit: DefaultLimit, Include: 1}
	if v, ok := args["q"].(string); ok {
		q.Query = v
	}
	if v, ok := args["skip"].(int); ok {
		q.Skip = v
	}
	if v, ok := args["limit"].(int); ok {
		q.Limit = v
	}
	if q.Skip < 0 {
		return q, fmt.Errorf("skip must not be negative")
	}
	if q.Limit < 1 || q.Limit > MaxLimit {
		return q, fmt.Errorf("limit must be between 1 and %d", MaxLimit)
	}
	return q, nil
}
