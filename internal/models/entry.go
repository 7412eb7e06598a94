package models

const (
	LinkTypeEntry = "Entry"
	LinkTypeAsset = "Asset"
)

// Entry is a single piece of content as returned by the Delivery API with a
// locale selected, so field values are plain JSON values.
type Entry struct {
	Sys    Sys            `json:"sys"`
	Fields map[string]any `json:"fields"`
}

// ContentTypeID returns the ID of the content type the entry belongs to.
func (e *Entry) ContentTypeID() string {
	if e.Sys.ContentType == nil {
		return ""
	}
	return e.Sys.ContentType.Sys.ID
}

type Asset struct {
	Sys    Sys         `json:"sys"`
	Fields AssetFields `json:"fields"`
}

type AssetFields struct {
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	File        *AssetFile `json:"file,omitempty"`
}

type AssetFile struct {
	URL         string `json:"url"`
	FileName    string `json:"fileName,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// Includes holds the linked resources the Delivery API resolved alongside a
// collection response.
type Includes struct {
	Entry []Entry `json:"Entry,omitempty"`
	Asset []Asset `json:"Asset,omitempty"`
}

type EntryCollection struct {
	Total    int      `json:"total"`
	Skip     int      `json:"skip"`
	Limit    int      `json:"limit"`
	Items    []Entry  `json:"items"`
	Includes Includes `json:"includes,omitempty"`
}

type AssetCollection struct {
	Total int     `json:"total"`
	Skip  int     `json:"skip"`
	Limit int     `json:"limit"`
	Items []Asset `json:"items"`
}

// LinkID extracts the target ID from a decoded link value such as
// {"sys": {"type": "Link", "linkType": "Entry", "id": "..."}}.
func LinkID(v any, linkType string) (string, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	sys, ok := m["sys"].(map[string]any)
	if !ok {
		return "", false
	}
	if sys["type"] != "Link" || sys["linkType"] != linkType {
		return "", false
	}
	id, ok := sys["id"].(string)
	return id, ok && id != ""
}
