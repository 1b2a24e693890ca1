// Package loader reads tree documents from JSON or YAML and watches them
// for changes.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/flexview/pkg/model"
)

// Format identifies a document encoding.
type Format int

const (
	JSON Format = iota
	YAML
)

func (f Format) String() string {
	if f == YAML {
		return "yaml"
	}
	return "json"
}

// FormatFor picks the document format from a file extension. Anything that
// is not .yaml/.yml is read as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}

// FormatError reports a document that does not have the tree shape. Path
// locates the offending value, e.g. "$[0].children[2]".
type FormatError struct {
	Path   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return "malformed document: " + e.Reason
	}
	return fmt.Sprintf("malformed document at %s: %s", e.Path, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ParseDocument decodes a document into raw trees. The top level must be
// an array of nodes or a single node object.
func ParseDocument(data []byte, format Format) ([]model.RawNode, error) {
	var doc any
	var err error
	switch format {
	case YAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, &FormatError{Reason: "invalid " + format.String(), Err: err}
	}

	switch top := doc.(type) {
	case []any:
		raws := make([]model.RawNode, 0, len(top))
		for i, v := range top {
			raw, err := toRawNode(v, "$["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, err
			}
			raws = append(raws, raw)
		}
		return raws, nil
	case map[string]any:
		raw, err := toRawNode(top, "$")
		if err != nil {
			return nil, err
		}
		return []model.RawNode{raw}, nil
	case nil:
		return nil, &FormatError{Reason: "empty document"}
	default:
		return nil, &FormatError{Path: "$", Reason: fmt.Sprintf("expected array or object, got %s", kind(doc))}
	}
}

func toRawNode(v any, path string) (model.RawNode, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return model.RawNode{}, &FormatError{Path: path, Reason: fmt.Sprintf("expected object, got %s", kind(v))}
	}
	name, ok := obj["name"].(string)
	if !ok {
		reason := "missing name"
		if _, present := obj["name"]; present {
			reason = fmt.Sprintf("name must be a string, got %s", kind(obj["name"]))
		}
		return model.RawNode{}, &FormatError{Path: path, Reason: reason}
	}

	raw := model.RawNode{Name: name}
	for k, val := range obj {
		switch k {
		case "name":
		case "children":
			if val == nil {
				continue
			}
			kids, ok := val.([]any)
			if !ok {
				return model.RawNode{}, &FormatError{Path: path + ".children", Reason: fmt.Sprintf("expected array, got %s", kind(val))}
			}
			raw.Children = make([]model.RawNode, 0, len(kids))
			for i, kid := range kids {
				child, err := toRawNode(kid, path+".children["+strconv.Itoa(i)+"]")
				if err != nil {
					return model.RawNode{}, err
				}
				raw.Children = append(raw.Children, child)
			}
		default:
			if raw.Fields == nil {
				raw.Fields = make(map[string]any)
			}
			raw.Fields[k] = val
		}
	}
	return raw, nil
}

func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "number"
	}
}

// LoadFile reads and parses a document, choosing the format from the file
// extension.
func LoadFile(path string) ([]model.RawNode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raws, err := ParseDocument(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return raws, nil
}

// IsFormatError reports whether err is caused by a malformed document,
// either at the shape level or at ingestion.
func IsFormatError(err error) bool {
	var fe *FormatError
	var ie *model.IngestError
	return errors.As(err, &fe) || errors.As(err, &ie)
}
