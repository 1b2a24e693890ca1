package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/vanderheijden86/flexview/pkg/diagram"
	"github.com/vanderheijden86/flexview/pkg/loader"
	"github.com/vanderheijden86/flexview/pkg/model"
	"github.com/vanderheijden86/flexview/pkg/render"
)

// PreviewServer serves the current diagram to a browser, applies clicks
// sent back from the page and reloads connected pages when the document
// or the view changes.
type PreviewServer struct {
	mu     sync.Mutex
	viewer *diagram.Viewer
	title  string
	err    error // Last load error, shown instead of the diagram

	reload *reloadBroker
}

// NewPreviewServer wraps a loaded viewer.
func NewPreviewServer(v *diagram.Viewer, title string) *PreviewServer {
	return &PreviewServer{viewer: v, title: title, reload: newReloadBroker()}
}

// Handler returns the HTTP routes of the preview.
func (s *PreviewServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /diagram.svg", s.handleSVG)
	mux.HandleFunc("GET /layout.json", s.handleLayout)
	mux.HandleFunc("GET /outline.md", s.handleOutline)
	mux.HandleFunc("POST /api/expand/{id}", s.handleToggle(func(ctx context.Context, v *diagram.Viewer, id string) error {
		return v.ToggleExpand(ctx, id)
	}))
	mux.HandleFunc("POST /api/detail/{id}", s.handleToggle(func(ctx context.Context, v *diagram.Viewer, id string) error {
		return v.ToggleDetail(ctx, id)
	}))
	mux.HandleFunc("POST /api/fit", s.handleToggle(func(_ context.Context, v *diagram.Viewer, _ string) error {
		v.Fit()
		return nil
	}))
	mux.Handle("GET /events", s.reload)
	return mux
}

// Update replaces the document, or records the load error so the page can
// show it. Connected pages are told to reload either way.
func (s *PreviewServer) Update(ctx context.Context, raws []model.RawNode, err error) {
	s.mu.Lock()
	if err == nil {
		err = s.viewer.Load(ctx, raws...)
	}
	if err != nil {
		log.Printf("warning: reload failed: %v", err)
	}
	s.err = err
	s.mu.Unlock()
	s.reload.Publish()
}

// Close ends the event streams of connected pages.
func (s *PreviewServer) Close() {
	s.reload.Close()
}

// Serve listens on addr until ctx is done. When w is not nil, file changes
// are applied through Update.
func (s *PreviewServer) Serve(ctx context.Context, addr string, w *loader.Watcher) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if w != nil {
		go w.Run(ctx, func(raws []model.RawNode, err error) {
			s.Update(ctx, raws, err)
		})
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown preview server: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *PreviewServer) snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Title: s.title, Forest: s.viewer.Forest(), Scene: s.viewer.Scene()}, s.err
}

func (s *PreviewServer) handlePage(w http.ResponseWriter, r *http.Request) {
	snap, loadErr := s.snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	var body bytes.Buffer
	if loadErr != nil {
		fmt.Fprintf(&body, `<pre class="error">%s</pre>`, html.EscapeString(loadErr.Error()))
	} else if err := render.SVG(&body, snap.Scene); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	fmt.Fprintf(w, pageTemplate, html.EscapeString(s.title), html.EscapeString(s.title), body.String(), reloadScript)
}

func (s *PreviewServer) handleSVG(w http.ResponseWriter, r *http.Request) {
	s.writeKind(w, KindSVG, "image/svg+xml")
}

func (s *PreviewServer) handleLayout(w http.ResponseWriter, r *http.Request) {
	s.writeKind(w, KindJSON, "application/json")
}

func (s *PreviewServer) handleOutline(w http.ResponseWriter, r *http.Request) {
	s.writeKind(w, KindMarkdown, "text/markdown; charset=utf-8")
}

func (s *PreviewServer) writeKind(w http.ResponseWriter, kind Kind, contentType string) {
	snap, loadErr := s.snapshot()
	if loadErr != nil {
		http.Error(w, loadErr.Error(), http.StatusUnprocessableEntity)
		return
	}
	var buf bytes.Buffer
	if err := Write(&buf, kind, snap); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(buf.Bytes())
}

func (s *PreviewServer) handleToggle(apply func(context.Context, *diagram.Viewer, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		err := apply(r.Context(), s.viewer, r.PathValue("id"))
		s.mu.Unlock()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.reload.Publish()
		w.WriteHeader(http.StatusNoContent)
	}
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { margin: 0; font-family: sans-serif; background: #fafbfd; }
header { padding: 8px 16px; border-bottom: 1px solid #dde2ec; }
.node, .expand { cursor: pointer; }
.error { color: #b3261e; padding: 16px; }
</style>
</head>
<body>
<header><strong>%s</strong> <button onclick="post('/api/fit')">Fit</button></header>
<main>%s</main>
<script>
function post(url) { fetch(url, { method: 'POST' }); }
document.querySelectorAll('.node').forEach(function(g) {
  g.addEventListener('click', function(ev) {
    var id = encodeURIComponent(g.dataset.id);
    post(ev.target.classList.contains('expand') ? '/api/expand/' + id : '/api/detail/' + id);
  });
});
</script>
%s
</body>
</html>
`
