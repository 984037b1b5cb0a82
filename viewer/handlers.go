// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package viewer

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/locview/geocoding"
	"github.com/jcodagnone/locview/locations"
	"github.com/jcodagnone/locview/mapview"
	"github.com/jcodagnone/locview/spatial"
)

type pointRequest struct {
	Lng *float64 `json:"lng" binding:"required"`
	Lat *float64 `json:"lat" binding:"required"`
}

func (r pointRequest) point() (spatial.Point, error) {
	p := spatial.Point{Lat: *r.Lat, Lng: *r.Lng}

	return p, p.Validate()
}

type deviceRequest struct {
	Lng   *float64 `json:"lng"`
	Lat   *float64 `json:"lat"`
	Error string   `json:"error"`
}

type searchRequest struct {
	Text string `json:"text"`
}

type selectRequest struct {
	ID string `json:"id" binding:"required"`
}

type mapErrorRequest struct {
	Message string `json:"message"`
}

type searchState struct {
	Text        string              `json:"text"`
	Suggestions []geocoding.Feature `json:"suggestions"`
}

type stateResponse struct {
	SetupError    string                   `json:"setup_error,omitempty"`
	Locations     []locations.Record       `json:"locations"`
	Search        searchState              `json:"search"`
	Map           *mapview.Snapshot        `json:"map"`
	Notifications []locations.Notification `json:"notifications"`
}

type configResponse struct {
	AccessToken   string        `json:"access_token"`
	Style         string        `json:"style"`
	DefaultCenter spatial.Point `json:"default_center"`
	DefaultZoom   float64       `json:"default_zoom"`
	FollowZoom    float64       `json:"follow_zoom"`
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (s *Server) index(c *gin.Context) {
	sess := s.session(c)

	if err := sess.page.SetupError(); err != nil {
		c.HTML(http.StatusOK, "setup.html", gin.H{"Reason": err.Error()})

		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{"Style": s.opts.MapStyle})
}

func (s *Server) config(c *gin.Context) {
	sess := s.session(c)
	if err := sess.page.SetupError(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, configResponse{
		AccessToken:   s.opts.Credential,
		Style:         s.opts.MapStyle,
		DefaultCenter: s.opts.DefaultCenter,
		DefaultZoom:   mapview.DefaultZoom,
		FollowZoom:    mapview.FollowZoom,
	})
}

func (s *Server) state(c *gin.Context) {
	sess, ok := s.existing(c)
	if !ok {
		return
	}

	resp := stateResponse{
		Search: searchState{
			Text:        sess.page.SearchText(),
			Suggestions: sess.page.Suggestions(),
		},
	}

	if err := sess.page.SetupError(); err != nil {
		resp.SetupError = err.Error()
	}

	// The snapshot is taken under the page lock so markers and records agree.
	sess.page.View(func(records []locations.Record) {
		resp.Locations = records
		if sc := sess.slot.Scene(); sc != nil && sess.widget.Ready() {
			snap := sc.Snapshot()
			resp.Map = &snap
		}
	})

	resp.Notifications = sess.page.Notifications()

	c.JSON(http.StatusOK, resp)
}

func (s *Server) mapLoad(c *gin.Context) {
	sess, ok := s.existing(c)
	if !ok {
		return
	}

	if sc := sess.slot.Scene(); sc != nil {
		sc.Dispatch(mapview.EventLoad, mapview.EventData{})
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) mapClick(c *gin.Context) {
	sess, ok := s.existing(c)
	if !ok {
		return
	}

	var req pointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)

		return
	}

	p, err := req.point()
	if err != nil {
		badRequest(c, err)

		return
	}

	r, err := sess.click(p)
	if errors.Is(err, errMapNotReady) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

		return
	}

	if err != nil {
		badRequest(c, err)

		return
	}

	c.JSON(http.StatusCreated, r)
}

func (s *Server) mapError(c *gin.Context) {
	sess, ok := s.existing(c)
	if !ok {
		return
	}

	var req mapErrorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)

		return
	}

	if sc := sess.slot.Scene(); sc != nil {
		sc.Dispatch(mapview.EventError, mapview.EventData{Err: errors.New(req.Message)})
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) device(c *gin.Context) {
	sess, ok := s.existing(c)
	if !ok {
		return
	}

	var req deviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)

		return
	}

	if req.Lat == nil || req.Lng == nil {
		msg := req.Error
		if msg == "" {
			msg = "position unavailable"
		}

		sess.page.HandleDeviceError(msg)
		c.Status(http.StatusNoContent)

		return
	}

	r, err := sess.page.HandleDevicePosition(c.Request.Context(), spatial.Point{Lat: *req.Lat, Lng: *req.Lng})
	if err != nil {
		badRequest(c, err)

		return
	}

	c.JSON(http.StatusCreated, r)
}

func (s *Server) search(c *gin.Context) {
	sess, ok := s.existing(c)
	if !ok {
		return
	}

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)

		return
	}

	sess.page.SetSearchText(req.Text)
	c.Status(http.StatusAccepted)
}

func (s *Server) selectSuggestion(c *gin.Context) {
	sess, ok := s.existing(c)
	if !ok {
		return
	}

	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)

		return
	}

	r, err := sess.page.SelectSuggestion(req.ID)
	if errors.Is(err, locations.ErrUnknownSuggestion) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusCreated, r)
}

func (s *Server) listLocations(c *gin.Context) {
	sess, ok := s.existing(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, sess.page.Locations())
}

func (s *Server) removeLocation(c *gin.Context) {
	sess, ok := s.existing(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, err)

		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": sess.page.Remove(id)})
}

func (s *Server) closeSession(c *gin.Context) {
	id, err := c.Cookie(SessionCookie)
	if err != nil {
		c.Status(http.StatusNoContent)

		return
	}

	s.sessions.remove(id)
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}
