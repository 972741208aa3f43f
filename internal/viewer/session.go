package viewer

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/terrainview/internal/engine/input"
	"github.com/Faultbox/terrainview/internal/engine/shading"
	"github.com/Faultbox/terrainview/internal/tile"
)

type requester interface {
	Request(req tile.Request) error
}

type shadingSetter interface {
	SetShadingMode(mode shading.Mode) error
	ShadingMode() shading.Mode
}

// session reacts to key actions: shading changes, reloads and navigation.
type session struct {
	location tile.Request
	loader   requester
	terrain  shadingSetter
	log      *zap.Logger

	quit       bool
	screenshot bool // capture after the next frame is drawn
}

// apply handles one action. Navigation only moves the location once the
// loader accepts the request.
func (s *session) apply(a input.Action) {
	if mode, ok := a.ShadingMode(); ok {
		if err := s.terrain.SetShadingMode(mode); err != nil {
			s.log.Error("shading mode rejected", zap.Error(err))
			return
		}
		s.log.Debug("shading mode", zap.Stringer("mode", mode))
		return
	}

	if dx, dy, ok := a.Pan(); ok {
		lon, lat := s.location.Tile().Neighbor(dx, dy).Center()
		next := s.location
		next.Longitude, next.Latitude = lon, lat
		s.request(next)
		return
	}

	switch a {
	case input.ActionQuit:
		s.quit = true
	case input.ActionScreenshot:
		s.screenshot = true
	case input.ActionReload:
		s.request(s.location)
	case input.ActionZoomIn:
		s.zoom(1)
	case input.ActionZoomOut:
		s.zoom(-1)
	}
}

func (s *session) zoom(delta int) {
	next := s.location
	next.Zoom += delta
	if next.Zoom < 0 || next.Zoom > tile.MaxZoom {
		return
	}
	s.request(next)
}

func (s *session) request(next tile.Request) {
	err := s.loader.Request(next)
	if errors.Is(err, tile.ErrBusy) {
		s.log.Debug("tile fetch in flight, ignoring request")
		return
	}
	if err != nil {
		s.log.Error("tile request failed", zap.Error(err))
		return
	}
	s.location = next
}
