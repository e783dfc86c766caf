// Package dashboard serves a single live-progress page over
// gorilla/mux and gorilla/websocket: a ranked responsibility table
// that updates as an engine run progresses, using fastview's
// ViewComponent/client publish mechanism to push updates.
package dashboard

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"sync"
	"time"

	"blame/log"
	"blame/progress"
	"blame/responsibility"
	"blame/server/fastview"
	"blame/server/resultviews"

	"github.com/gorilla/mux"
)

// progressPublishRate is how often WatchProgress pushes a fresh
// progress-only snapshot while an engine is between result updates.
const progressPublishRate = 150 * time.Millisecond

// Server serves one dashboard page, to any number of clients, over
// individual websockets fanned out from a single ranked-table view.
type Server struct {
	addr string
	ctx  context.Context

	mu        sync.RWMutex
	view      fastview.ViewComponent
	rankSlots []int
	snapshots chan resultviews.Snapshot
}

// NewServer returns a dashboard bound to addr. The page serves
// "dashboard not ready" until Attach is called with the player count,
// which a caller typically doesn't know until the game is built.
func NewServer(ctx context.Context, addr string) (*Server, error) {
	return &Server{addr: addr, ctx: ctx}, nil
}

// Attach reserves n rank-ordered row slots and wires a fresh
// ranked-table view to receive snapshots via Publish, through a
// fastview.ViewBuilder: the model is a ranked-table Snapshot and the
// view-model conversion is the identity, since RankedTable consumes
// Snapshot directly. Safe to call once per run before the run starts
// publishing.
func (s *Server) Attach(n int) {
	snapshots := make(chan resultviews.Snapshot, 1)

	views, err := fastview.NewViewBuilder[resultviews.Snapshot, resultviews.Snapshot]().
		WithContext(s.ctx).
		WithModel(snapshots, func(snap resultviews.Snapshot) resultviews.Snapshot { return snap }).
		WithView(func(done <-chan struct{}, vm <-chan resultviews.Snapshot) fastview.ViewComponent {
			return resultviews.NewRankedTable(done, vm, n)
		}).
		Build()
	if err != nil {
		log.L().Errorw("dashboard: view builder failed", "err", err)
		return
	}

	slots := make([]int, n)
	for i := range slots {
		slots[i] = i
	}

	s.mu.Lock()
	s.view = views[0]
	s.rankSlots = slots
	s.snapshots = snapshots
	s.mu.Unlock()
}

// Publish pushes snap to the view, best-effort: a snapshot nobody has
// drained yet is replaced rather than queued, since only the latest
// progress is ever worth showing.
func (s *Server) Publish(snap resultviews.Snapshot) {
	s.mu.RLock()
	ch := s.snapshots
	s.mu.RUnlock()
	if ch == nil {
		return
	}
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}

// WatchProgress publishes progress-only snapshots (no ranked rows yet)
// on a timer until ctx is cancelled, for engines whose intermediate
// state has nothing rankable to show.
func (s *Server) WatchProgress(ctx context.Context, reporter *progress.Reporter, names []string) {
	go func() {
		ticker := time.NewTicker(progressPublishRate)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Publish(resultviews.NewSnapshot(reporter.Read(), nil, names))
			}
		}
	}()
}

// PublishResults sends the final ranked table at 100% progress.
func (s *Server) PublishResults(stage string, results []*responsibility.Result, names []string) {
	s.Publish(resultviews.NewSnapshot(progress.Snapshot{Stage: stage, Fraction: 1}, results, names))
}

// Serve starts the http server and blocks until it exits.
func (s *Server) Serve() error {
	router := mux.NewRouter()
	router.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/ws", s.serveWebsocket)

	if err := http.ListenAndServe(s.addr, router); err != nil {
		return fmt.Errorf("dashboard: serve: %w", err)
	}
	return nil
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	view, slots := s.currentView()
	if view == nil {
		http.Error(w, "dashboard not ready: run hasn't built a game yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	if err := renderPage(w, view, slots); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// serveWebsocket hands the request off to fastview's client, which
// owns the ping-pong liveness check and the publish-rate throttling.
func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	view, _ := s.currentView()
	if view == nil {
		http.Error(w, "dashboard not ready", http.StatusServiceUnavailable)
		return
	}

	cli, err := fastview.NewClient(view.Updates(), w, r)
	if err != nil {
		log.L().Errorw("dashboard: websocket upgrade failed", "err", err)
		return
	}
	if err := cli.Sync(); err != nil {
		log.L().Debugw("dashboard: client disconnected", "err", err)
	}
}

func (s *Server) currentView() (fastview.ViewComponent, []int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view, s.rankSlots
}

// renderPage wraps vc's parsed template in the page shell: a websocket
// bootstrap script that applies incoming EleUpdates to the DOM.
func renderPage(w io.Writer, vc fastview.ViewComponent, data interface{}) error {
	t := template.New("dashboard.html")
	tname, err := vc.Parse(t)
	if err != nil {
		return err
	}
	if _, err := t.Parse(pageShell(tname)); err != nil {
		return err
	}
	return t.Execute(w, data)
}

func pageShell(viewTemplate string) string {
	return `
	<!DOCTYPE html>
	<html>
		<head>
			<link rel="icon" href="data:,">
			<script>
				const ws = new WebSocket("ws://" + window.location.host + "/ws");
				ws.onopen = function() { console.log("dashboard socket opened") };
				ws.onerror = function(event) { console.log("dashboard socket error: ", event) };
				ws.onmessage = function(event) {
					const items = JSON.parse(event.data);
					for (const update of items) {
						const ele = document.getElementById(update.EleId);
						if (!ele) { continue; }
						for (const op of update.Ops) {
							if (op.Key === "textContent") {
								ele.textContent = op.Value;
							} else {
								ele.setAttribute(op.Key, op.Value);
							}
						}
					}
				}
			</script>
		</head>
		<body>
			{{ template "` + viewTemplate + `" . }}
		</body>
	</html>
	`
}
