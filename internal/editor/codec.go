package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"

	"github.com/dshills/tabular/internal/model"
)

// Decode parses a document in the format implied by name's extension.
// Names without an extension are read as JSON.
func Decode(schema *model.Schema, name string, data []byte) (*model.Node, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".json", "":
		return schema.NodeFromJSON(data)
	case ".yaml", ".yml":
		return schema.NodeFromYAML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// LoadDocument reads and decodes a document file.
func LoadDocument(schema *model.Schema, path string) (*model.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	doc, err := Decode(schema, path, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return doc, nil
}

// EncodeJSON encodes doc as JSON, indented when indent is true.
func EncodeJSON(doc *model.Node, indent bool) ([]byte, error) {
	data, err := doc.MarshalJSON()
	if err != nil {
		return nil, err
	}
	if indent {
		return pretty.Pretty(data), nil
	}
	return append(pretty.Ugly(data), '\n'), nil
}

// EncodeYAML encodes doc as YAML using the JSON field names.
func EncodeYAML(doc *model.Node) ([]byte, error) {
	data, err := doc.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(gjson.ParseBytes(data).Value())
}

// Encode encodes doc in the format implied by name's extension.
func Encode(doc *model.Node, name string, indent bool) ([]byte, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".json", "":
		return EncodeJSON(doc, indent)
	case ".yaml", ".yml":
		return EncodeYAML(doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
