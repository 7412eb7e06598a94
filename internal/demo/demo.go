// Package demo bundles a captured product catalogue space so the server can
// run without Contentful credentials.
package demo

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/SirClappington/cf-graphql-demo/internal/models"
)

//go:embed demo-data.json
var bundled []byte

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Load decodes the bundled dataset.
func Load() (*models.DemoData, error) {
	return Decode(bytes.NewReader(bundled))
}

// Decode reads and validates a dataset written by Encode.
func Decode(r io.Reader) (*models.DemoData, error) {
	var data models.DemoData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding demo data: %w", err)
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return &data, nil
}

// Encode writes data as indented JSON.
func Encode(w io.Writer, data *models.DemoData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("error encoding demo data: %w", err)
	}
	return nil
}
