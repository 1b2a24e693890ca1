// Package config loads viewer options from YAML, TOML or JSON files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/flexview/pkg/arrange"
	"github.com/vanderheijden86/flexview/pkg/layout"
	"github.com/vanderheijden86/flexview/pkg/minimap"
	"github.com/vanderheijden86/flexview/pkg/model"
	"github.com/vanderheijden86/flexview/pkg/viewport"
)

// Options are the recognized viewer settings.
type Options struct {
	// Viewport is the canvas size in pixels
	Viewport model.Size `yaml:"viewport" json:"viewport" toml:"viewport"`

	// ScaleExtent bounds the zoom factor
	ScaleExtent viewport.ScaleExtent `yaml:"scale_extent" json:"scale_extent" toml:"scale_extent"`

	// NodeSize is the default node footprint
	NodeSize model.Size `yaml:"node_size" json:"node_size" toml:"node_size"`

	// DetailSize is the footprint of a node showing its details
	DetailSize model.Size `yaml:"detail_size" json:"detail_size" toml:"detail_size"`

	NodeMargin layout.Margin `yaml:"node_margin" json:"node_margin" toml:"node_margin"`

	// GapBetweenTrees is the horizontal space between neighbouring roots
	GapBetweenTrees float64 `yaml:"gap_between_trees" json:"gap_between_trees" toml:"gap_between_trees"`

	// MinimapScale is the minimap size relative to the viewport, in (0, 1]
	MinimapScale float64 `yaml:"minimap_scale" json:"minimap_scale" toml:"minimap_scale"`

	// Orientation is "horizontal" (default) or "vertical"
	Orientation string `yaml:"orientation,omitempty" json:"orientation,omitempty" toml:"orientation,omitempty"`
}

// Default returns the options used when no config file is found.
func Default() Options {
	sizes := model.DefaultSizes()
	return Options{
		Viewport:        model.Size{Width: 1200, Height: 800},
		ScaleExtent:     viewport.DefaultScaleExtent(),
		NodeSize:        sizes.Normal,
		DetailSize:      sizes.WithDetails,
		NodeMargin:      layout.DefaultMargin(),
		GapBetweenTrees: arrange.DefaultGap,
		MinimapScale:    minimap.DefaultScale,
		Orientation:     layout.Horizontal.String(),
	}
}

// Sizes returns the two node footprints.
func (o Options) Sizes() model.Sizes {
	return model.Sizes{Normal: o.NodeSize, WithDetails: o.DetailSize}
}

// LayoutOrientation parses Orientation.
func (o Options) LayoutOrientation() layout.Orientation {
	or, _ := layout.ParseOrientation(o.Orientation)
	return or
}

// Validate checks the options for errors
func (o Options) Validate() error {
	var errs []error
	if o.Viewport.Width < 0 || o.Viewport.Height < 0 {
		errs = append(errs, fmt.Errorf("viewport: negative size %gx%g", o.Viewport.Width, o.Viewport.Height))
	}
	if o.NodeSize.IsZero() {
		errs = append(errs, fmt.Errorf("node_size: must be positive, got %gx%g", o.NodeSize.Width, o.NodeSize.Height))
	}
	if o.DetailSize.IsZero() {
		errs = append(errs, fmt.Errorf("detail_size: must be positive, got %gx%g", o.DetailSize.Width, o.DetailSize.Height))
	}
	if o.ScaleExtent.Min <= 0 || o.ScaleExtent.Max < o.ScaleExtent.Min {
		errs = append(errs, fmt.Errorf("scale_extent: need 0 < min <= max, got [%g, %g]", o.ScaleExtent.Min, o.ScaleExtent.Max))
	}
	if o.NodeMargin.Sibling < 0 || o.NodeMargin.Children < 0 {
		errs = append(errs, errors.New("node_margin: margins cannot be negative"))
	}
	if o.GapBetweenTrees < 0 {
		errs = append(errs, fmt.Errorf("gap_between_trees: cannot be negative, got %g", o.GapBetweenTrees))
	}
	if o.MinimapScale <= 0 || o.MinimapScale > 1 {
		errs = append(errs, fmt.Errorf("minimap_scale: must be in (0, 1], got %g", o.MinimapScale))
	}
	if _, ok := layout.ParseOrientation(o.Orientation); !ok {
		errs = append(errs, fmt.Errorf("orientation: unknown value %q", o.Orientation))
	}
	return errors.Join(errs...)
}

// Format identifies a config file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported config extension %q", filepath.Ext(path))
}

// Load reads options from path. Keys missing from the file keep their
// defaults.
func Load(path string) (Options, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Options{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, err
	}
	opts, err := Decode(data, format)
	if err != nil {
		return Options{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return opts, nil
}

// Decode parses data over the defaults.
func Decode(data []byte, format Format) (Options, error) {
	opts := Default()
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &opts)
	case FormatTOML:
		_, err = toml.Decode(string(data), &opts)
	case FormatJSON:
		err = json.Unmarshal(data, &opts)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	return opts, err
}

// Encode renders options in the given format.
func Encode(opts Options, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(opts)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(opts); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return json.MarshalIndent(opts, "", "  ")
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// Save writes options to path, choosing the format from its extension.
func Save(path string, opts Options) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	data, err := Encode(opts, format)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
