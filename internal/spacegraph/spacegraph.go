// Package spacegraph turns Contentful content types into the name-resolved
// graph the GraphQL schema is built from.
package spacegraph

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/gertd/go-pluralize"
	"github.com/iancoleman/strcase"

	"github.com/SirClappington/cf-graphql-demo/internal/models"
)

var (
	pluralizer   = pluralize.NewClient()
	nonAlnum     = regexp.MustCompile(`[^A-Za-z0-9]+`)
	graphqlName  = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)
	reservedType = map[string]bool{
		"Query": true, "Entry": true, "Asset": true, "Location": true,
		"Sys": true, "EntrySys": true, "AssetSys": true, "JSON": true, "CollectionMeta": true,
		"String": true, "Int": true, "Float": true, "Boolean": true, "ID": true,
	}
)

// Prepare resolves GraphQL names and field types for every content type.
// Omitted fields are left out.
func Prepare(contentTypes []models.ContentType) (models.SpaceGraph, error) {
	ids := make(map[string]bool, len(contentTypes))
	for _, ct := range contentTypes {
		ids[ct.Sys.ID] = true
	}

	typeOwners := make(map[string]string)
	queryOwners := make(map[string]string)
	graph := make(models.SpaceGraph, 0, len(contentTypes))

	for _, ct := range contentTypes {
		names, err := createNames(ct.Name)
		if err != nil {
			return nil, fmt.Errorf("content type %s: %w", ct.Sys.ID, err)
		}

		if reservedType[names.Type] {
			return nil, fmt.Errorf("content type %s: type name %q is reserved", ct.Sys.ID, names.Type)
		}
		if owner, ok := typeOwners[names.Type]; ok {
			return nil, fmt.Errorf("content types %s and %s both map to type %q", owner, ct.Sys.ID, names.Type)
		}
		typeOwners[names.Type] = ct.Sys.ID

		for _, q := range []string{names.Field, names.CollectionField, metaField(names.CollectionField)} {
			if owner, ok := queryOwners[q]; ok {
				return nil, fmt.Errorf("content types %s and %s both map to query field %q", owner, ct.Sys.ID, q)
			}
			queryOwners[q] = ct.Sys.ID
		}

		fields, err := prepareFields(ct, ids)
		if err != nil {
			return nil, fmt.Errorf("content type %s: %w", ct.Sys.ID, err)
		}

		graph = append(graph, models.ContentTypeNode{
			ID:     ct.Sys.ID,
			Names:  names,
			Fields: fields,
		})
	}

	return graph, nil
}

func metaField(collectionField string) string {
	return "_" + collectionField + "Meta"
}

func createNames(name string) (models.GraphNames, error) {
	words := strings.TrimSpace(nonAlnum.ReplaceAllString(name, " "))
	if words == "" {
		return models.GraphNames{}, fmt.Errorf("name %q has no usable characters", name)
	}
	if unicode.IsDigit(rune(words[0])) {
		return models.GraphNames{}, fmt.Errorf("name %q must not start with a digit", name)
	}

	names := models.GraphNames{
		Type:            strcase.ToCamel(words),
		Field:           strcase.ToLowerCamel(words),
		CollectionField: strcase.ToLowerCamel(pluralizer.Plural(words)),
	}
	if names.Field == names.CollectionField {
		return models.GraphNames{}, fmt.Errorf("name %q has the same singular and plural form", name)
	}
	return names, nil
}

func prepareFields(ct models.ContentType, ids map[string]bool) ([]models.GraphField, error) {
	fields := make([]models.GraphField, 0, len(ct.Fields))
	for _, f := range ct.Fields {
		if f.Omitted {
			continue
		}
		if f.ID == "sys" {
			return nil, fmt.Errorf("field id %q collides with the sys field", f.ID)
		}
		if !graphqlName.MatchString(f.ID) {
			return nil, fmt.Errorf("field id %q is not a valid GraphQL name", f.ID)
		}

		t, err := fieldType(f)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.ID, err)
		}

		gf := models.GraphField{ID: f.ID, Type: t}
		switch t {
		case models.FieldTypeEntryLink:
			gf.LinkedCT = linkedContentType(f.Validations, ids)
		case models.FieldTypeEntryLinkArray:
			gf.LinkedCT = linkedContentType(f.Items.Validations, ids)
		}
		fields = append(fields, gf)
	}
	return fields, nil
}

func fieldType(f models.Field) (models.FieldType, error) {
	switch f.Type {
	case "Symbol", "Text", "Date":
		return models.FieldTypeString, nil
	case "Integer":
		return models.FieldTypeInt, nil
	case "Number":
		return models.FieldTypeFloat, nil
	case "Boolean":
		return models.FieldTypeBool, nil
	case "Location":
		return models.FieldTypeLocation, nil
	case "Object", "RichText":
		return models.FieldTypeObject, nil
	case "Link":
		switch f.LinkType {
		case models.LinkTypeAsset:
			return models.FieldTypeAssetLink, nil
		case models.LinkTypeEntry:
			return models.FieldTypeEntryLink, nil
		}
		return "", fmt.Errorf("unsupported link type %q", f.LinkType)
	case "Array":
		if f.Items == nil {
			return "", fmt.Errorf("array field without items")
		}
		switch {
		case f.Items.Type == "Symbol":
			return models.FieldTypeStringArray, nil
		case f.Items.Type == "Link" && f.Items.LinkType == models.LinkTypeAsset:
			return models.FieldTypeAssetLinkArray, nil
		case f.Items.Type == "Link" && f.Items.LinkType == models.LinkTypeEntry:
			return models.FieldTypeEntryLinkArray, nil
		}
		return "", fmt.Errorf("unsupported array item type %q", f.Items.Type)
	}
	return "", fmt.Errorf("unsupported field type %q", f.Type)
}

// linkedContentType returns the only content type a link may point to, or ""
// when the validations allow several or name one outside the space.
func linkedContentType(validations []models.Validation, ids map[string]bool) string {
	for _, v := range validations {
		if len(v.LinkContentType) == 1 && ids[v.LinkContentType[0]] {
			return v.LinkContentType[0]
		}
	}
	return ""
}
