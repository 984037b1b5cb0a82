// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package viewer serves the location viewer page and the JSON API behind it.
package viewer

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/locview/geocoding"
	"github.com/jcodagnone/locview/locations"
	"github.com/jcodagnone/locview/mapview"
	"github.com/jcodagnone/locview/spatial"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	// SessionCookie holds the session id.
	SessionCookie = "locview_session"
	// DefaultSessionTTL is how long an idle session is kept.
	DefaultSessionTTL = 30 * time.Minute
	// DefaultAddr is where Run listens by default.
	DefaultAddr = "localhost:8080"
)

var errMapNotReady = errors.New("map is not ready")

// Options configures a Server.
type Options struct {
	Addr          string
	Credential    string
	MapStyle      string
	DefaultCenter spatial.Point
	SessionTTL    time.Duration
	Debounce      time.Duration
	SuggestLimit  int
}

// Server hosts one Page per browser session.
type Server struct {
	geocoder  geocoding.Geocoder
	opts      Options
	sessions  *sessions
	templates *template.Template
	baseCtx   context.Context
	cancel    context.CancelFunc
}

// NewServer creates a server answering lookups with g.
func NewServer(g geocoding.Geocoder, opts Options) (*Server, error) {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}

	if opts.MapStyle == "" {
		opts.MapStyle = mapview.DefaultStyle
	}

	if opts.DefaultCenter == (spatial.Point{}) {
		opts.DefaultCenter = mapview.DefaultCenter
	}

	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}

	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		geocoder:  &probeOnce{Geocoder: g},
		opts:      opts,
		sessions:  newSessions(opts.SessionTTL),
		templates: tmpl,
		baseCtx:   ctx,
		cancel:    cancel,
	}, nil
}

// probeOnce validates the credential once for all sessions. Only a success
// or a rejected credential is remembered; other failures are retried.
type probeOnce struct {
	geocoding.Geocoder

	mu   sync.Mutex
	done bool
	err  error
}

func (p *probeOnce) Probe(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return p.err
	}

	err := p.Geocoder.Probe(ctx)
	if err == nil || geocoding.IsCredentialError(err) {
		p.done, p.err = true, err
	}

	return err
}

// Router returns the HTTP handler.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(s.templates)

	r.GET("/", s.index)

	api := r.Group("/api")
	api.GET("/config", s.config)
	api.GET("/state", s.state)
	api.POST("/map/load", s.mapLoad)
	api.POST("/map/click", s.mapClick)
	api.POST("/map/error", s.mapError)
	api.POST("/device", s.device)
	api.PUT("/search", s.search)
	api.POST("/search/select", s.selectSuggestion)
	api.GET("/locations", s.listLocations)
	api.DELETE("/locations/:id", s.removeLocation)
	api.DELETE("/session", s.closeSession)

	return r
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweepLoop(ctx)

	errCh := make(chan error, 1)

	go func() {
		log.Printf("🗺️  serving on http://%s", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()

		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	s.Close()

	return err
}

func (s *Server) sweepLoop(ctx context.Context) {
	t := time.NewTicker(s.opts.SessionTTL / 4)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sessions.sweep()
		}
	}
}

// Close disposes every session.
func (s *Server) Close() {
	s.cancel()
	s.sessions.closeAll()
}

func (s *Server) newSession(ctx context.Context) *session {
	sess := &session{id: newSessionID(), slot: &mapview.SceneSlot{}}

	center := s.opts.DefaultCenter
	sess.widget = mapview.NewWidget(mapview.WidgetOptions{
		Factory:       sess.slot.Factory,
		Style:         s.opts.MapStyle,
		DefaultCenter: &center,
		OnClick:       sess.onClick(s.baseCtx),
		OnError: func(err error) {
			sess.page.Notify(locations.LevelWarning, "Map error: %v", err)
		},
	})
	sess.page = locations.NewPage(s.geocoder, sess.widget, locations.PageOptions{
		Credential:    s.opts.Credential,
		DefaultCenter: center,
		Suggest: locations.SuggesterOptions{
			Debounce: s.opts.Debounce,
			Limit:    s.opts.SuggestLimit,
		},
	})

	if err := sess.page.Start(ctx); err != nil {
		log.Printf("⚠️  session %s needs setup: %v", sess.id, err)
	}

	s.sessions.add(sess)

	return sess
}

// session returns the caller's session, creating one if needed.
func (s *Server) session(c *gin.Context) *session {
	if id, err := c.Cookie(SessionCookie); err == nil {
		if sess, ok := s.sessions.get(id); ok {
			return sess
		}
	}

	sess := s.newSession(c.Request.Context())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, sess.id, int(s.opts.SessionTTL.Seconds()), "/", "", false, true)

	return sess
}

// existing returns the caller's session or answers 404.
func (s *Server) existing(c *gin.Context) (*session, bool) {
	id, err := c.Cookie(SessionCookie)
	if err == nil {
		if sess, ok := s.sessions.get(id); ok {
			return sess, true
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "no session, reload the page"})

	return nil, false
}
