package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jpalmerr/finboard/dashboard"
	"github.com/jpalmerr/finboard/internal/store"
)

const (
	// sseWriteTimeout bounds a single SSE write so slow or disconnected
	// clients cannot pin a handler. Must be <= shutdown timeout.
	sseWriteTimeout = 5 * time.Second

	shutdownTimeout = 5 * time.Second

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "Financial Analysis"

	// notFoundMessage is shown on the home page when a search fails.
	notFoundMessage = "Company not found"
)

// Lookup returns a fresh snapshot for a search, fetching it if needed.
type Lookup interface {
	Lookup(ctx context.Context, symbol string) (store.Snapshot, error)
}

// LookupFunc adapts a function to [Lookup].
type LookupFunc func(ctx context.Context, symbol string) (store.Snapshot, error)

// Lookup calls f(ctx, symbol).
func (f LookupFunc) Lookup(ctx context.Context, symbol string) (store.Snapshot, error) {
	return f(ctx, symbol)
}

// Server handles HTTP requests for the finboard pages and API.
type Server struct {
	store      store.Store
	lookup     Lookup
	port       int
	httpServer *http.Server
	home       *template.Template
	company    *template.Template
	title      string
	logger     *slog.Logger
}

// pageData is the host page template input.
type pageData struct {
	Title     string
	Symbol    string
	Error     string
	Snapshots []store.Snapshot
	UpdatedAt time.Time
}

// NewServer creates a new HTTP [Server].
//
// Parameters:
//   - st: Store implementation for snapshots
//   - lookup: Resolves searched symbols (may be nil, then only stored snapshots are found)
//   - port: TCP port to listen on
//   - assets: Filesystem with the host page templates (may be nil)
//   - title: Page title (defaults to "Financial Analysis" if empty)
//   - logger: Logger for server events
//
// The server is not started until [Server.Start] is called.
func NewServer(st store.Store, lookup Lookup, port int, assets fs.FS, title string, logger *slog.Logger) *Server {
	if title == "" {
		title = defaultTitle
	}
	s := &Server{
		store:  st,
		lookup: lookup,
		port:   port,
		title:  title,
		logger: logger,
	}
	if assets != nil {
		var err error
		if s.home, err = parsePage(assets, "assets/home.html"); err != nil {
			logger.Error("failed to parse home page", "error", err)
		}
		if s.company, err = parsePage(assets, "assets/company.html"); err != nil {
			logger.Error("failed to parse company page", "error", err)
		}
	}
	return s
}

func parsePage(assets fs.FS, page string) (*template.Template, error) {
	return template.New("layout.html").
		Funcs(template.FuncMap{"since": humanize.Time}).
		ParseFS(assets, "assets/layout.html", page)
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("/api/metrics", s.handleMetrics)
	mux.HandleFunc("GET /api/metrics/{symbol}", s.handleSymbolMetrics)
	mux.HandleFunc("GET /api/dashboard/{symbol}", s.handleFragment)
	mux.HandleFunc("/api/sse", s.handleSSE)

	// pages
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/", s.handleHome)

	return mux
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns once the listener is bound. The server
// runs until ctx is cancelled, then shuts down gracefully with a 5-second
// timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts derive from ctx, so long-running handlers such
		// as SSE end on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// handleHome serves the home page with the watched symbols.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.renderHome(w, "")
}

func (s *Server) renderHome(w http.ResponseWriter, errMsg string) {
	if s.home == nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	data := pageData{Title: s.title, Error: errMsg, Snapshots: s.store.GetAll()}
	if err := s.home.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("failed to render home page", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("failed to write home page", "error", err)
	}
}

// handleSearch resolves ?symbol= and serves its company page.
//
// An empty symbol shows the home page; a symbol that cannot be resolved
// shows the home page with an error.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		s.renderHome(w, "")
		return
	}

	snapshot, err := s.resolve(r.Context(), symbol)
	if err != nil {
		s.logger.Info("company lookup failed", "symbol", symbol, "error", err)
		s.renderHome(w, notFoundMessage)
		return
	}
	if s.company == nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	var host bytes.Buffer
	data := pageData{Title: s.title, Symbol: snapshot.Symbol, UpdatedAt: snapshot.FetchedAt}
	if err := s.company.ExecuteTemplate(&host, "layout", data); err != nil {
		s.logger.Error("failed to render company page", "symbol", symbol, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var out bytes.Buffer
	if err := dashboard.RenderPage(&out, &host, snapshot.Metrics.Dashboard()); err != nil {
		s.logger.Error("failed to mount dashboard", "symbol", symbol, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := out.WriteTo(w); err != nil {
		s.logger.Error("failed to write company page", "error", err)
	}
}

// resolve returns a snapshot with metrics for symbol.
func (s *Server) resolve(ctx context.Context, symbol string) (store.Snapshot, error) {
	if s.lookup != nil {
		snapshot, err := s.lookup.Lookup(ctx, symbol)
		if err != nil {
			return store.Snapshot{}, err
		}
		if snapshot.Metrics == nil {
			return store.Snapshot{}, fmt.Errorf("no metrics for %s", symbol)
		}
		return snapshot, nil
	}

	snapshot, ok := s.store.Get(symbol)
	if !ok || snapshot.Metrics == nil {
		return store.Snapshot{}, fmt.Errorf("no metrics for %s", symbol)
	}
	return snapshot, nil
}

// handleMetrics returns all snapshots as JSON.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, s.store.GetAll())
}

// handleSymbolMetrics returns one snapshot as JSON, or 404.
func (s *Server) handleSymbolMetrics(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := s.store.Get(strings.ToUpper(r.PathValue("symbol")))
	if !ok {
		http.Error(w, "Symbol not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, snapshot)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// handleFragment returns the dashboard markup for a symbol. Unknown
// symbols and symbols without metrics render the loading placeholder.
func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	var metrics *dashboard.Metrics
	if snapshot, ok := s.store.Get(strings.ToUpper(r.PathValue("symbol"))); ok {
		metrics = snapshot.Metrics.Dashboard()
	}

	var buf bytes.Buffer
	if err := dashboard.New(metrics).Render(&buf); err != nil {
		s.logger.Error("failed to render dashboard fragment", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("failed to write dashboard fragment", "error", err)
	}
}

// handleSSE streams snapshot updates via Server-Sent Events.
//
// Writes carry a deadline so a blocked client cannot keep the handler from
// noticing cancellation or channel closure.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)

	// some ResponseWriter implementations do not support deadlines
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	// initial snapshots
	for _, snapshot := range s.store.GetAll() {
		data, err := json.Marshal(snapshot)
		if err != nil {
			continue
		}
		if err := writeAndFlush(data); err != nil {
			return
		}
	}

	for {
		select {
		case snapshot, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(snapshot)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}

		case <-r.Context().Done():
			// fires on client disconnect and, via BaseContext, on shutdown
			return
		}
	}
}
