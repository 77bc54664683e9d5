// Package server is the optional local HTTP companion: it serves the current preview, streams
// status changes over SSE and exposes metrics.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/texpad/internal/artifact"
	"github.com/debemdeboas/texpad/internal/compile"
	"github.com/debemdeboas/texpad/internal/config"
	"github.com/debemdeboas/texpad/internal/routes"
	"github.com/debemdeboas/texpad/internal/sse"
)

//go:embed static/*
var content embed.FS

var serverLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	serverLogger = l
}

// Source is what the server reads state from.
type Source interface {
	Status() compile.Status
	PreviewArtifact() (artifact.Artifact, bool)
}

// Server also implements compile.Presenter, turning status changes into SSE events.
type Server struct {
	source  Source
	clients *sse.SSEClients
	metrics http.Handler
	http    *http.Server
}

// New builds a server listening on cfg.Addr(). metrics may be nil.
func New(cfg config.ServerConfig, source Source, metrics http.Handler) *Server {
	s := &Server{
		source:  source,
		clients: sse.NewSSEClients(),
		metrics: metrics,
	}
	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Shutdown waits for handlers, and event streams only end when their channel closes.
	s.http.RegisterOnShutdown(s.clients.CloseAll)
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc(routes.PreviewPath, s.servePreview)
	mux.HandleFunc(routes.EventsPath, s.eventsHandler)
	mux.HandleFunc(routes.HealthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCType, config.CTypeText)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		mux.Handle(routes.MetricsPath, s.metrics)
	}
	mux.HandleFunc(routes.RootPath, s.serveIndex)

	return noCache(secureHeaders(mux.ServeHTTP))
}

// Serve accepts connections on l until Shutdown.
func (s *Server) Serve(l net.Listener) error {
	serverLogger.Info().Str("addr", l.Addr().String()).Msg("Companion server listening")
	if err := s.http.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) ShowStatus(st compile.Status) {
	data, err := json.Marshal(st)
	if err != nil {
		serverLogger.Error().Err(err).Msg("Error encoding status")
		return
	}
	s.clients.Broadcast(sse.Event{Name: "status", Data: string(data)})
	if st.Phase == compile.Succeeded && st.Action == compile.Compile {
		s.clients.Broadcast(sse.Event{Name: "reload", Data: strconv.FormatUint(st.Seq, 10)})
	}
}

func (s *Server) ShowError(message string) {
	s.clients.Broadcast(sse.Event{Name: "error", Data: message})
}

func (s *Server) HideError() {
	s.clients.Broadcast(sse.Event{Name: "clear"})
}

func (s *Server) servePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, config.HTTPErrMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	art, ok := s.source.PreviewArtifact()
	if !ok {
		http.Error(w, "No preview yet", http.StatusNotFound)
		return
	}

	w.Header().Set(config.HCType, art.MediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		w.Write(art.Data)
	}
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != routes.RootPath {
		http.NotFound(w, r)
		return
	}

	page, err := content.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set(config.HCType, "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(config.HCType, config.CTypeSSE)
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Del("X-Content-Type-Options")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	client := sse.NewClient(16)
	s.clients.Add(client)

	serverLogger.Debug().Str("remote", r.RemoteAddr).Msg("New SSE client connected")

	defer func() {
		s.clients.Delete(client)
		serverLogger.Debug().Str("remote", r.RemoteAddr).Msg("SSE client disconnected")
	}()

	// Start every stream with the current state.
	if data, err := json.Marshal(s.source.Status()); err == nil {
		sse.Event{Name: "status", Data: string(data)}.WriteTo(w)
	}
	flusher.Flush()

	notify := r.Context().Done()
	for {
		select {
		case ev, ok := <-client.Msg:
			if !ok {
				return
			}
			if _, err := ev.WriteTo(w); err != nil {
				return
			}
			flusher.Flush()
		case <-notify:
			return
		}
	}
}

func noCache(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCacheControl, "no-cache")
		h(w, r)
	}
}

func secureHeaders(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "sameorigin")
		w.Header().Set("X-Content-Type-Options", "nosniff")

		h(w, r)
	}
}
