package export

import (
	"fmt"
	"net/http"
	"sync"
)

// reloadBroker tells connected preview pages that the view changed. Each
// subscriber holds at most one pending version; a newer one replaces it.
type reloadBroker struct {
	mu      sync.Mutex
	version uint64
	subs    map[int]chan uint64
	nextID  int
	closed  bool
	done    chan struct{}
}

func newReloadBroker() *reloadBroker {
	return &reloadBroker{subs: make(map[int]chan uint64), done: make(chan struct{})}
}

func (b *reloadBroker) subscribe() (int, <-chan uint64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, nil, false
	}
	id := b.nextID
	b.nextID++
	ch := make(chan uint64, 1)
	b.subs[id] = ch
	return id, ch, true
}

func (b *reloadBroker) unsubscribe(id int) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

// Subscribers reports how many pages are listening.
func (b *reloadBroker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Publish bumps the version and offers it to every subscriber.
func (b *reloadBroker) Publish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.version++
	for _, ch := range b.subs {
		select {
		case <-ch:
		default:
		}
		ch <- b.version
	}
}

// Close ends every open stream. Later subscriptions are refused.
func (b *reloadBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
	clear(b.subs)
}

// ServeHTTP holds an event stream open and writes one reload event per
// published version.
func (b *reloadBroker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	id, updates, ok := b.subscribe()
	if !ok {
		http.Error(w, "preview is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer b.unsubscribe(id)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")

	b.mu.Lock()
	current := b.version
	b.mu.Unlock()
	writeEvent(w, "connected", current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-b.done:
			return
		case v := <-updates:
			writeEvent(w, "reload", v)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, version uint64) {
	fmt.Fprintf(w, "event: %s\ndata: {\"version\":%d}\n\n", name, version)
}

// reloadScript follows the event stream and reloads the page when a newer
// version arrives. Dropped streams are retried with a doubling delay.
const reloadScript = `<script>
(function() {
  if (!window.EventSource) return;
  var seen = -1, delay = 500;
  function listen() {
    var src = new EventSource('/events');
    src.addEventListener('connected', function(ev) {
      var v = JSON.parse(ev.data).version;
      if (seen >= 0 && v !== seen) location.reload();
      seen = v;
      delay = 500;
    });
    src.addEventListener('reload', function() { location.reload(); });
    src.onerror = function() {
      src.close();
      setTimeout(listen, delay);
      delay = Math.min(delay * 2, 15000);
    };
  }
  listen();
})();
</script>`
