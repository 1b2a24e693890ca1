package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/flexview/pkg/config"
	"github.com/vanderheijden86/flexview/pkg/diagram"
	"github.com/vanderheijden86/flexview/pkg/loader"
	"github.com/vanderheijden86/flexview/pkg/model"
)

var version = "0.1.0"

// Status colors
var (
	statusGood   = color.New(color.FgGreen)
	statusInfo   = color.New(color.FgCyan)
	statusSubtle = color.New(color.FgHiBlack)
	statusBad    = color.New(color.FgRed)
)

type rootOptions struct {
	configPath  string
	orientation string
	size        string
}

func newRootCmd() *cobra.Command {
	ro := &rootOptions{}
	root := &cobra.Command{
		Use:   "fv",
		Short: "fv renders and explores hierarchical diagrams",
		Long: "fv lays out one or more trees with a flexible tree layout and lets you\n" +
			"explore them in the terminal, in a live browser preview, or as SVG, PNG,\n" +
			"JSON and markdown exports.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("fv {{ .Version }}\n")
	root.PersistentFlags().StringVarP(&ro.configPath, "config", "c", "", "config file (default: nearest .flexview.{yaml,toml,json})")
	root.PersistentFlags().StringVar(&ro.orientation, "orientation", "", "layout orientation: horizontal or vertical")
	root.PersistentFlags().StringVar(&ro.size, "size", "", "canvas size in px, e.g. 1600x900")

	root.AddCommand(
		renderCmd(ro),
		viewCmd(ro),
		serveCmd(ro),
		initCmd(ro),
	)
	return root
}

// options resolves the config file and applies flag overrides.
func (ro *rootOptions) options() (config.Options, error) {
	opts, _, err := config.Resolve(ro.configPath)
	if err != nil {
		return config.Options{}, err
	}
	if ro.orientation != "" {
		opts.Orientation = ro.orientation
	}
	if ro.size != "" {
		size, err := parseSize(ro.size)
		if err != nil {
			return config.Options{}, err
		}
		opts.Viewport = size
	}
	return opts, opts.Validate()
}

// openViewer loads a document file into a new viewer. Node ids are n-0,
// n-1, ... in depth-first order so they can be named on the command line.
func openViewer(ctx context.Context, opts config.Options, path string) (*diagram.Viewer, error) {
	raws, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	v := diagram.New(opts, diagram.WithSequentialIDs("n"))
	if err := v.Load(ctx, raws...); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return v, nil
}

func titleOf(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// parseSize parses "WIDTHxHEIGHT".
func parseSize(s string) (model.Size, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return model.Size{}, fmt.Errorf("invalid size %q: want WIDTHxHEIGHT", s)
	}
	w, err := strconv.ParseFloat(ws, 64)
	if err != nil {
		return model.Size{}, fmt.Errorf("invalid size %q: %w", s, err)
	}
	h, err := strconv.ParseFloat(hs, 64)
	if err != nil {
		return model.Size{}, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return model.Size{}, fmt.Errorf("invalid size %q: must be positive", s)
	}
	return model.Size{Width: w, Height: h}, nil
}

func isTerminal(f any) bool {
	file, ok := f.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
