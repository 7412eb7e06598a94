package models

import "fmt"

// DemoData is a captured space: the prepared graph plus every entry and asset.
// It is loaded once at startup and never mutated afterwards.
type DemoData struct {
	SpaceID    string     `json:"spaceId"`
	SpaceGraph SpaceGraph `json:"spaceGraph"`
	Entries    []Entry    `json:"entries"`
	Assets     []Asset    `json:"assets"`
}

// Validate checks that every entry belongs to a content type of the graph.
func (d *DemoData) Validate() error {
	if len(d.SpaceGraph) == 0 {
		return fmt.Errorf("demo data has an empty space graph")
	}
	for _, e := range d.Entries {
		if e.Sys.ID == "" {
			return fmt.Errorf("demo data contains an entry without an ID")
		}
		if _, ok := d.SpaceGraph.Node(e.ContentTypeID()); !ok {
			return fmt.Errorf("entry %s has unknown content type %q", e.Sys.ID, e.ContentTypeID())
		}
	}
	for _, a := range d.Assets {
		if a.Sys.ID == "" {
			return fmt.Errorf("demo data contains an asset without an ID")
		}
	}
	return nil
}
