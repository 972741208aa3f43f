package viewer

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Faultbox/terrainview/internal/config"
	"github.com/Faultbox/terrainview/internal/engine/input"
	"github.com/Faultbox/terrainview/internal/engine/shading"
	"github.com/Faultbox/terrainview/internal/tile"
)

type fakeLoader struct {
	requests []tile.Request
	err      error
}

func (f *fakeLoader) Request(req tile.Request) error {
	if f.err != nil {
		return f.err
	}
	f.requests = append(f.requests, req)
	return nil
}

type fakeTerrain struct {
	mode shading.Mode
}

func (f *fakeTerrain) SetShadingMode(mode shading.Mode) error {
	if !mode.Valid() {
		return shading.ErrInvalidConfiguration
	}
	f.mode = mode
	return nil
}

func (f *fakeTerrain) ShadingMode() shading.Mode { return f.mode }

func newTestSession() (*session, *fakeLoader, *fakeTerrain) {
	l := &fakeLoader{}
	tr := &fakeTerrain{}
	return &session{
		location: tile.Request{Longitude: -75.527, Latitude: 39.791, Zoom: 14},
		loader:   l,
		terrain:  tr,
		log:      zap.NewNop(),
	}, l, tr
}

func TestSessionShading(t *testing.T) {
	s, l, tr := newTestSession()

	s.apply(input.ActionShadingLighting)
	if tr.mode != shading.Lighting {
		t.Errorf("expected lighting, got %v", tr.mode)
	}
	s.apply(input.ActionShadingSource)
	if tr.mode != shading.SourceTexture {
		t.Errorf("expected sourceTexture, got %v", tr.mode)
	}
	if len(l.requests) != 0 {
		t.Error("shading changes should not fetch tiles")
	}
}

func TestSessionReload(t *testing.T) {
	s, l, _ := newTestSession()
	start := s.location

	s.apply(input.ActionReload)
	if len(l.requests) != 1 || l.requests[0] != start {
		t.Fatalf("expected reload of %v, got %v", start, l.requests)
	}
	if s.location != start {
		t.Error("reload should not move the location")
	}
}

func TestSessionPan(t *testing.T) {
	tests := []struct {
		action input.Action
		dx, dy int
	}{
		{input.ActionPanEast, 1, 0},
		{input.ActionPanWest, -1, 0},
		{input.ActionPanNorth, 0, -1},
		{input.ActionPanSouth, 0, 1},
	}

	for _, tt := range tests {
		s, l, _ := newTestSession()
		start := s.location.Tile()

		s.apply(tt.action)
		if len(l.requests) != 1 {
			t.Fatalf("%d: expected 1 request, got %d", tt.action, len(l.requests))
		}
		want := tile.ID{X: start.X + tt.dx, Y: start.Y + tt.dy, Z: start.Z}
		if got := s.location.Tile(); got != want {
			t.Errorf("%d: moved to %v, want %v", tt.action, got, want)
		}
	}
}

func TestSessionZoom(t *testing.T) {
	s, l, _ := newTestSession()

	s.apply(input.ActionZoomIn)
	if s.location.Zoom != 15 {
		t.Errorf("expected zoom 15, got %d", s.location.Zoom)
	}
	s.apply(input.ActionZoomOut)
	s.apply(input.ActionZoomOut)
	if s.location.Zoom != 13 {
		t.Errorf("expected zoom 13, got %d", s.location.Zoom)
	}
	if len(l.requests) != 3 {
		t.Errorf("expected 3 requests, got %d", len(l.requests))
	}

	s.location.Zoom = 0
	s.apply(input.ActionZoomOut)
	if s.location.Zoom != 0 || len(l.requests) != 3 {
		t.Error("zooming out past 0 should be ignored")
	}

	s.location.Zoom = tile.MaxZoom
	s.apply(input.ActionZoomIn)
	if s.location.Zoom != tile.MaxZoom || len(l.requests) != 3 {
		t.Error("zooming in past max should be ignored")
	}
}

func TestSessionBusyKeepsLocation(t *testing.T) {
	s, l, _ := newTestSession()
	l.err = tile.ErrBusy
	start := s.location

	s.apply(input.ActionPanEast)
	s.apply(input.ActionZoomIn)
	if s.location != start {
		t.Errorf("location moved while loader was busy: %v", s.location)
	}

	l.err = errors.New("loader closed")
	s.apply(input.ActionReload)
	if s.location != start {
		t.Error("location moved after a failed request")
	}
}

func TestSessionQuit(t *testing.T) {
	s, _, _ := newTestSession()
	s.apply(input.ActionNone)
	if s.quit {
		t.Error("no-op action should not quit")
	}
	s.apply(input.ActionQuit)
	if !s.quit {
		t.Error("expected quit")
	}
}

func TestSessionScreenshot(t *testing.T) {
	s, l, _ := newTestSession()
	s.apply(input.ActionScreenshot)
	if !s.screenshot {
		t.Error("expected screenshot to be scheduled")
	}
	if len(l.requests) != 0 {
		t.Error("screenshot should not fetch tiles")
	}
}

func TestTerrainConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Render.Shading = "normals"
	cfg.Render.TextureSize = 128
	cfg.Render.MeshSegments = 64
	cfg.Render.PlaneLength = 8
	cfg.Render.Displacement = "absolute"
	cfg.Render.RotationSpeed = 0

	tc, err := terrainConfig(cfg)
	if err != nil {
		t.Fatalf("terrainConfig failed: %v", err)
	}
	if tc.Shading != shading.Normals {
		t.Errorf("expected normals, got %v", tc.Shading)
	}
	if tc.TextureSize != 128 || tc.Segments != 64 || tc.PlaneLength != 8 {
		t.Errorf("unexpected sizes %+v", tc)
	}
	if !tc.Absolute {
		t.Error("expected absolute displacement")
	}
	if tc.RotationSpeed != 0 {
		t.Errorf("expected rotation disabled, got %f", tc.RotationSpeed)
	}

	cfg.Render.Shading = "wireframe"
	if _, err := terrainConfig(cfg); !errors.Is(err, shading.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}
