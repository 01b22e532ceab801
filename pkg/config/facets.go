package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// All is the facet selection that disables a facet.
const All = "All"

//go:embed facets.yaml
var defaultFacets []byte

// Facet is one filter dimension of a listing page.
type Facet struct {
	Name   string   `yaml:"name" toml:"name" json:"name"`
	Label  string   `yaml:"label" toml:"label" json:"label"`
	Values []string `yaml:"values" toml:"values" json:"values"`
}

// Options returns the selectable values, "All" first.
func (f Facet) Options() []string {
	return append([]string{All}, f.Values...)
}

// FacetTable maps a collection name to its facets, in display order.
type FacetTable map[string][]Facet

func (t FacetTable) For(collection string) []Facet {
	return t[collection]
}

// DefaultFacets returns the built-in table.
func DefaultFacets() FacetTable {
	t, err := ParseFacets(defaultFacets, "yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded facets.yaml: %v", err))
	}
	return t
}

// LoadFacets reads a facet table from path, or the built-in table when
// path is empty. The format follows the extension: .toml or YAML.
func LoadFacets(path string) (FacetTable, error) {
	if path == "" {
		return DefaultFacets(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read facets: %w", err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = "toml"
	}
	t, err := ParseFacets(data, format)
	if err != nil {
		return nil, fmt.Errorf("parse facets %s: %w", path, err)
	}
	return t, nil
}

func ParseFacets(data []byte, format string) (FacetTable, error) {
	var t FacetTable
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, err
		}
	case "toml":
		if err := toml.Unmarshal(data, &t); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	for collection, facets := range t {
		seen := make(map[string]bool, len(facets))
		for _, f := range facets {
			if f.Name == "" {
				return nil, fmt.Errorf("%s: facet without a name", collection)
			}
			if seen[f.Name] {
				return nil, fmt.Errorf("%s: duplicate facet %q", collection, f.Name)
			}
			seen[f.Name] = true
			for _, v := range f.Values {
				if v == All {
					return nil, fmt.Errorf("%s.%s: %q is reserved", collection, f.Name, All)
				}
			}
		}
	}
	return t, nil
}
