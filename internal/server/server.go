// Package server exposes metadata inspection over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"metastat/internal/auth"
	"metastat/internal/config"
	"metastat/internal/filesystem"
	"metastat/internal/format"
	"metastat/internal/inspect"
	"metastat/internal/render"
)

const shutdownTimeout = 5 * time.Second

// Server represents the HTTP server
type Server struct {
	Config *config.Config
	VFS    *filesystem.VirtualFS
	Router *mux.Router
	log    zerolog.Logger

	// realFS maps symlink-resolved sources; used to keep followed links
	// inside the configured directories.
	realFS *filesystem.VirtualFS
}

// New creates a new server instance
func New(cfg *config.Config, logger zerolog.Logger) *Server {
	realDirs := make([]config.DirMapping, 0, len(cfg.Server.Directories))
	for _, dir := range cfg.Server.Directories {
		source := dir.Source
		if resolved, err := filepath.EvalSymlinks(source); err == nil {
			source = resolved
		}
		realDirs = append(realDirs, config.DirMapping{Source: source, Virtual: dir.Virtual})
	}

	s := &Server{
		Config: cfg,
		VFS:    filesystem.NewVirtualFS(cfg.Server.Directories),
		Router: mux.NewRouter(),
		log:    logger,
		realFS: filesystem.NewVirtualFS(realDirs),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.Router.Use(s.logRequests)

	api := s.Router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.health).Methods("GET")
	api.Handle("/inspect", s.protect(http.HandlerFunc(s.inspectPath))).Methods("GET")
	api.Handle("/inspect/{path:.*}", s.protect(http.HandlerFunc(s.inspectPath))).Methods("GET")
}

// protect wraps h with JWT validation when a secret is configured
func (s *Server) protect(h http.Handler) http.Handler {
	if s.Config.Server.JWTSecret == "" {
		return h
	}
	return auth.JWTMiddleware(s.Config.Server.JWTSecret)(h)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.Config.Server.Listen,
		Handler:      s.Router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.log.Info().Str("listen", s.Config.Server.Listen).
		Int("directories", len(s.VFS.Directories)).
		Bool("jwt_auth", s.Config.Server.JWTSecret != "").
		Msg("serving inspection API")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (s *Server) inspectPath(w http.ResponseWriter, r *http.Request) {
	virtualPath := filesystem.CleanVirtualPath(mux.Vars(r)["path"])

	if claims, ok := auth.GetClaimsFromContext(r.Context()); ok && claims.Dir != "" {
		if !filesystem.Within(virtualPath, claims.Dir) {
			http.Error(w, "access denied: path outside token directory", http.StatusForbidden)
			return
		}
	}

	opts, err := s.inspectOptions(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	physicalPath, found := s.VFS.ResolvePath(virtualPath)
	if !found {
		http.Error(w, "path not found: "+virtualPath, http.StatusNotFound)
		return
	}

	if !s.parentAllowed(physicalPath) {
		http.Error(w, "access denied: path outside managed directories", http.StatusForbidden)
		return
	}

	if opts.Follow && !s.targetAllowed(physicalPath) {
		http.Error(w, "access denied: link target outside managed directories", http.StatusForbidden)
		return
	}

	rep, err := inspect.Inspect(physicalPath, opts)
	if err != nil {
		status, message := inspectFailure(err, virtualPath)
		s.log.Debug().Err(err).Str("path", virtualPath).Int("status", status).Msg("inspection failed")
		http.Error(w, message, status)
		return
	}

	doc := render.NewDocument(rep)
	doc.Path = virtualPath
	doc.LinkTarget = s.publicLinkTarget(rep.LinkTarget)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// inspectOptions applies query overrides to the configured report defaults
func (s *Server) inspectOptions(q url.Values) (inspect.Options, error) {
	opts := inspect.Options{
		Follow:   s.Config.Report.Follow,
		Units:    s.Config.Report.UnitStyle,
		Extended: s.Config.Report.Extended,
	}

	if v := q.Get("follow"); v != "" {
		follow, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid follow value: %s", v)
		}
		opts.Follow = follow
	}

	if v := q.Get("units"); v != "" {
		units, err := format.ParseUnitStyle(v)
		if err != nil {
			return opts, err
		}
		opts.Units = units
	}

	if v := q.Get("extended"); v != "" {
		extended, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid extended value: %s", v)
		}
		opts.Extended = extended
	}

	return opts, nil
}

// parentAllowed reports whether physicalPath stays inside a configured
// directory once symlinks in its parent directories are resolved. The
// final component is not resolved; lstat does not follow it. Mapping
// sources themselves are always allowed.
func (s *Server) parentAllowed(physicalPath string) bool {
	physicalPath = filepath.Clean(physicalPath)
	for _, dir := range s.VFS.Directories {
		if physicalPath == filepath.Clean(dir.Source) {
			return true
		}
	}

	parent, err := filepath.EvalSymlinks(filepath.Dir(physicalPath))
	if err != nil {
		// Missing parents fail in Inspect with a not-found error
		return true
	}
	_, inside := s.realFS.GetVirtualPath(filepath.Join(parent, filepath.Base(physicalPath)))
	return inside
}

// targetAllowed reports whether physicalPath, with every symlink resolved,
// is still inside a configured directory. Missing targets are left to
// Inspect to report.
func (s *Server) targetAllowed(physicalPath string) bool {
	resolved, err := filepath.EvalSymlinks(physicalPath)
	if err != nil {
		return true
	}
	_, inside := s.realFS.GetVirtualPath(resolved)
	return inside
}

// publicLinkTarget hides physical link targets: absolute targets are
// translated to virtual paths or dropped, relative targets are kept.
func (s *Server) publicLinkTarget(target string) string {
	if target == "" || !filepath.IsAbs(target) {
		return target
	}
	if virtual, ok := s.VFS.GetVirtualPath(target); ok {
		return virtual
	}
	if virtual, ok := s.realFS.GetVirtualPath(target); ok {
		return virtual
	}
	return ""
}

// inspectFailure maps an inspection error to a status code and a message
// that names the virtual path instead of the physical one.
func inspectFailure(err error, virtualPath string) (int, string) {
	var ie *inspect.Error
	if !errors.As(err, &ie) {
		return http.StatusInternalServerError, "inspection failed"
	}

	public := &inspect.Error{Kind: ie.Kind, Path: virtualPath, Err: ie.Err}
	switch ie.Kind {
	case inspect.Inaccessible:
		return http.StatusNotFound, public.Error()
	case inspect.UnresolvableName:
		return http.StatusBadRequest, public.Error()
	default:
		return http.StatusInternalServerError, public.Error()
	}
}
