// Package server serves governance scenes over HTTP.
//
// The REST endpoints return scene data built by a [pipeline.Runner]:
//
//	GET /api/graph            node-link graph
//	GET /api/tree             tree reduction
//	GET /api/layout?mode=     static layout in graph or tree mode
//	GET /api/nodes/{id}       hover detail of one node
//	GET /api/version          build information
//
// Each accepts active=true to drop inactive groups; /api/layout also takes
// width and height. GET /ws opens an interactive [scene.Scene] session
// that streams layout snapshots and accepts control messages, see
// [Inbound].
//
// The server never renders pixels; clients draw the data themselves.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/orgtower/pkg/buildinfo"
	"github.com/matzehuels/orgtower/pkg/dag"
	"github.com/matzehuels/orgtower/pkg/dag/transform"
	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/graph"
	"github.com/matzehuels/orgtower/pkg/layout/text"
	"github.com/matzehuels/orgtower/pkg/pipeline"
	"github.com/matzehuels/orgtower/pkg/rows"
	"github.com/matzehuels/orgtower/pkg/scene"
)

// shutdownTimeout bounds graceful shutdown in [Server.ListenAndServe].
const shutdownTimeout = 5 * time.Second

// Options configures a [Server].
type Options struct {
	// Rows is the initial data. It can be replaced with [Server.SetRows].
	Rows []rows.Row

	// Scene holds the engine settings shared by REST layouts and live
	// sessions.
	Scene scene.Config

	// Runner builds and lays out REST responses. Defaults to an uncached
	// runner.
	Runner *pipeline.Runner

	// Static is an optional directory served at /.
	Static string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Logger   *log.Logger
	Measurer text.Measurer
}

// Server is the HTTP front end. It is safe for concurrent use.
type Server struct {
	cfg      scene.Config
	runner   *pipeline.Runner
	logger   *log.Logger
	measurer text.Measurer
	router   chi.Router
	opts     Options

	mu       sync.Mutex
	rows     []rows.Row
	sessions map[string]*session
}

// New creates a server.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Measurer == nil {
		opts.Measurer = text.Approx{}
	}
	cfg := opts.Scene
	cfg.SetDefaults()

	s := &Server{
		cfg:      cfg,
		runner:   opts.Runner,
		logger:   opts.Logger,
		measurer: opts.Measurer,
		opts:     opts,
		rows:     append([]rows.Row{}, opts.Rows...),
		sessions: make(map[string]*session),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, buildinfo.Get())
		})
		r.Get("/graph", s.handleGraph)
		r.Get("/tree", s.handleTree)
		r.Get("/layout", s.handleLayout)
		r.Get("/nodes/*", s.handleNode)
	})
	r.Get("/ws", s.handleWS)

	if s.opts.Static != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.opts.Static)))
	}
	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.router }

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and closes every live session.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.closeSessions()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// SetRows replaces the data of the server and of every live session.
func (s *Server) SetRows(rs []rows.Row) {
	s.mu.Lock()
	s.rows = append([]rows.Row{}, rs...)
	live := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		live = append(live, sess)
	}
	s.mu.Unlock()

	for _, sess := range live {
		sess.scene.SetRows(rs)
	}
	s.logger.Info("replaced rows", "rows", len(rs), "sessions", len(live))
}

// Rows returns a copy of the current data.
func (s *Server) Rows() []rows.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]rows.Row{}, s.rows...)
}

// Sessions returns the number of live scene sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// =============================================================================
// REST handlers
// =============================================================================

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	opts, err := s.pipelineOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	g, _, err := s.runner.Build(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, graph.FromDAG(g))
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	opts, err := s.pipelineOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	g, _, err := s.runner.Build(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	t, ok := transform.ReduceTree(g, opts.RootID)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "root %q is not in the graph", opts.RootID))
		return
	}
	writeJSON(w, http.StatusOK, graph.FromTree(t))
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.pipelineOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	g, _, err := s.runner.Build(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	l, err := s.runner.Layout(r.Context(), g, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "*")
	if err := errors.ValidateNodeID(id); err != nil {
		writeError(w, err)
		return
	}
	opts, err := s.pipelineOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	g, _, err := s.runner.Build(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	d, ok := nodeDetail(g, id)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "node %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// nodeDetail mirrors [scene.Scene.Hover] for a graph built outside a
// scene.
func nodeDetail(g *dag.DAG, id string) (scene.Detail, bool) {
	n, ok := g.Node(id)
	if !ok {
		return scene.Detail{}, false
	}
	label := func(id string) string {
		if n, ok := g.Node(id); ok {
			return n.Label()
		}
		return id
	}
	d := scene.Detail{Node: graph.NodeFromDAG(n)}
	for _, p := range g.Parents(id) {
		d.Parents = append(d.Parents, label(p))
	}
	for _, c := range g.Children(id) {
		d.Children = append(d.Children, label(c))
	}
	return d, true
}

// pipelineOptions derives pipeline options from the server settings and
// the query parameters active, mode, width and height.
func (s *Server) pipelineOptions(r *http.Request) (pipeline.Options, error) {
	opts := pipeline.Options{
		Rows:       s.Rows(),
		ActiveOnly: s.cfg.ActiveOnly,
		RootID:     s.cfg.RootID,
		RootName:   s.cfg.RootName,
		Mode:       string(s.cfg.Mode),
		Width:      s.cfg.Width,
		Height:     s.cfg.Height,
		Force:      s.cfg.Force,
		Tree:       s.cfg.Tree,
		Logger:     s.logger,
		Measurer:   s.measurer,
	}

	q := r.URL.Query()
	if v := q.Get("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid active flag %q", v)
		}
		opts.ActiveOnly = b
	}
	if v := q.Get("mode"); v != "" {
		if err := errors.ValidateMode(v); err != nil {
			return opts, err
		}
		opts.Mode = strings.ToLower(strings.TrimSpace(v))
	}
	for name, dst := range map[string]*float64{"width": &opts.Width, "height": &opts.Height} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f > 1e5 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", name, v)
		}
		*dst = f
	}
	return opts, nil
}

// =============================================================================
// Responses
// =============================================================================

// errorBody is the JSON body of an error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, errors.HTTPStatus(err), errorBody{Code: string(code), Message: errors.UserMessage(err)})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
