// Package export writes diagrams to files (SVG, PNG, layout JSON and a
// markdown outline) and serves a live-reloading browser preview.
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/flexview/pkg/model"
	"github.com/vanderheijden86/flexview/pkg/render"
)

// Kind is an output format.
type Kind string

const (
	KindSVG      Kind = "svg"
	KindPNG      Kind = "png"
	KindJSON     Kind = "json"
	KindMarkdown Kind = "md"
)

// KindOf picks the output format from a file extension.
func KindOf(path string) (Kind, error) {
	switch ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."); ext {
	case "svg", "png", "json":
		return Kind(ext), nil
	case "md", "markdown":
		return KindMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output extension %q", filepath.Ext(path))
	}
}

// Snapshot is a frozen view of a diagram.
type Snapshot struct {
	Title  string
	Forest *model.Forest
	Scene  render.Scene
}

// Write renders the snapshot in the given format.
func Write(w io.Writer, kind Kind, snap Snapshot) error {
	switch kind {
	case KindSVG:
		return render.SVG(w, snap.Scene)
	case KindPNG:
		return render.PNG(w, snap.Scene)
	case KindJSON:
		data, err := LayoutJSON(snap.Scene.Arrangement)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case KindMarkdown:
		_, err := io.WriteString(w, GenerateOutline(snap.Forest, snap.Title))
		return err
	}
	return fmt.Errorf("unknown output kind %q", kind)
}

// WriteFiles renders the snapshot to every path concurrently, choosing each
// format from the extension. All extensions are checked before anything is
// written.
func WriteFiles(ctx context.Context, snap Snapshot, paths ...string) error {
	kinds := make([]Kind, len(paths))
	for i, p := range paths {
		k, err := KindOf(p)
		if err != nil {
			return err
		}
		kinds[i] = k
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := Write(&buf, kinds[i], snap); err != nil {
				return fmt.Errorf("render %s: %w", p, err)
			}
			if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", p, err)
			}
			return nil
		})
	}
	return g.Wait()
}
