package models

// FieldType is the GraphQL-facing type of a content type field.
type FieldType string

const (
	FieldTypeString         FieldType = "String"
	FieldTypeInt            FieldType = "Int"
	FieldTypeFloat          FieldType = "Float"
	FieldTypeBool           FieldType = "Bool"
	FieldTypeLocation       FieldType = "Location"
	FieldTypeObject         FieldType = "Object"
	FieldTypeAssetLink      FieldType = "Link<Asset>"
	FieldTypeEntryLink      FieldType = "Link<Entry>"
	FieldTypeStringArray    FieldType = "Array<String>"
	FieldTypeAssetLinkArray FieldType = "Array<Link<Asset>>"
	FieldTypeEntryLinkArray FieldType = "Array<Link<Entry>>"
)

type GraphNames struct {
	Type            string `json:"type"`
	Field           string `json:"field"`
	CollectionField string `json:"collectionField"`
}

type GraphField struct {
	ID   string    `json:"id"`
	Type FieldType `json:"type"`
	// LinkedCT is set for entry links restricted to a single content type.
	LinkedCT string `json:"linkedCt,omitempty"`
}

// ContentTypeNode is a content type with its GraphQL names resolved.
type ContentTypeNode struct {
	ID     string       `json:"id"`
	Names  GraphNames   `json:"names"`
	Fields []GraphField `json:"fields"`
}

// SpaceGraph is the prepared list of content types a schema is built from.
type SpaceGraph []ContentTypeNode

// Node looks a content type up by ID.
func (g SpaceGraph) Node(id string) (*ContentTypeNode, bool) {
	for i := range g {
		if g[i].ID == id {
			return &g[i], true
		}
	}
	return nil, false
}

// TypeNames lists the GraphQL type names in graph order.
func (g SpaceGraph) TypeNames() []string {
	names := make([]string, 0, len(g))
	for _, ct := range g {
		names = append(names, ct.Names.Type)
	}
	return names
}
