package models

// Sys is the metadata block Contentful attaches to every resource and link.
type Sys struct {
	ID          string `json:"id"`
	Type        string `json:"type,omitempty"`
	LinkType    string `json:"linkType,omitempty"`
	ContentType *Link  `json:"contentType,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
	Revision    int    `json:"revision,omitempty"`
}

// Link points at another entry or asset by ID.
type Link struct {
	Sys Sys `json:"sys"`
}

// ContentType describes one category of entries in a space.
type ContentType struct {
	Sys          Sys     `json:"sys"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	DisplayField string  `json:"displayField,omitempty"`
	Fields       []Field `json:"fields"`
}

// Field is a single field definition of a content type.
type Field struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	LinkType    string       `json:"linkType,omitempty"`
	Items       *FieldItems  `json:"items,omitempty"`
	Validations []Validation `json:"validations,omitempty"`
	Required    bool         `json:"required,omitempty"`
	Localized   bool         `json:"localized,omitempty"`
	Disabled    bool         `json:"disabled,omitempty"`
	Omitted     bool         `json:"omitted,omitempty"`
}

// FieldItems describes the element type of an Array field.
type FieldItems struct {
	Type        string       `json:"type"`
	LinkType    string       `json:"linkType,omitempty"`
	Validations []Validation `json:"validations,omitempty"`
}

// Validation only carries the rules the space graph cares about.
type Validation struct {
	LinkContentType []string `json:"linkContentType,omitempty"`
}

type ContentTypeCollection struct {
	Total int           `json:"total"`
	Skip  int           `json:"skip"`
	Limit int           `json:"limit"`
	Items []ContentType `json:"items"`
}
