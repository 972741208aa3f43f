// Package tile addresses, fetches and hands off slippy-map elevation tiles.
//
// A Loader runs at most one fetch at a time on a background goroutine. The
// render thread collects the result with Poll, which is the only place a
// fetched tile reaches the renderer.
package tile

import (
	"errors"
	"fmt"
	"math"
)

// MaxZoom is the deepest zoom level served by terrain-RGB sources.
const MaxZoom = 22

var (
	// ErrNetwork wraps transport, HTTP status and image decoding failures.
	ErrNetwork = errors.New("tile network error")

	// ErrBusy is returned by Loader.Request while a fetch is in flight.
	ErrBusy = errors.New("tile fetch already in flight")
)

// ID addresses a tile in the XYZ scheme. Y grows southward.
type ID struct {
	X, Y, Z int
}

func (id ID) String() string {
	return fmt.Sprintf("%d/%d/%d", id.Z, id.X, id.Y)
}

// Valid reports whether the address exists at its zoom level.
func (id ID) Valid() bool {
	if id.Z < 0 || id.Z > MaxZoom {
		return false
	}
	n := 1 << id.Z
	return id.X >= 0 && id.X < n && id.Y >= 0 && id.Y < n
}

// PointToTile returns the tile containing a WGS84 point.
// Longitude wraps and latitude is clamped to the Web Mercator extent.
func PointToTile(lon, lat float64, zoom int) ID {
	n := math.Exp2(float64(zoom))
	sin := math.Sin(lat * math.Pi / 180)

	x := n * (lon/360 + 0.5)
	y := n * (0.5 - 0.25*math.Log((1+sin)/(1-sin))/math.Pi)

	x = math.Mod(x, n)
	if x < 0 {
		x += n
	}
	// Poles map to +/-Inf
	if math.IsNaN(y) || y < 0 {
		y = 0
	}
	if y > n-1 {
		y = n - 1
	}

	id := ID{X: int(math.Floor(x)), Y: int(math.Floor(y)), Z: zoom}
	if id.X > int(n)-1 {
		id.X = int(n) - 1
	}
	return id
}

// Center returns the longitude and latitude of the tile center.
func (id ID) Center() (lon, lat float64) {
	n := math.Exp2(float64(id.Z))
	lon = (float64(id.X)+0.5)/n*360 - 180
	lat = tileLat(float64(id.Y)+0.5, n)
	return lon, lat
}

// Bounds returns the west, south, east and north edges in degrees.
func (id ID) Bounds() (west, south, east, north float64) {
	n := math.Exp2(float64(id.Z))
	west = float64(id.X)/n*360 - 180
	east = float64(id.X+1)/n*360 - 180
	north = tileLat(float64(id.Y), n)
	south = tileLat(float64(id.Y+1), n)
	return west, south, east, north
}

// Neighbor returns the tile offset by (dx, dy). X wraps around the
// antimeridian, Y stops at the poles.
func (id ID) Neighbor(dx, dy int) ID {
	n := 1 << id.Z
	x := ((id.X+dx)%n + n) % n
	y := id.Y + dy
	if y < 0 {
		y = 0
	}
	if y >= n {
		y = n - 1
	}
	return ID{X: x, Y: y, Z: id.Z}
}

func tileLat(y, n float64) float64 {
	r := math.Pi - 2*math.Pi*y/n
	return 180 / math.Pi * math.Atan(0.5*(math.Exp(r)-math.Exp(-r)))
}
