package tile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/Faultbox/terrainview/pkg/formats"
)

// Sink receives decoded tiles on the render thread.
type Sink interface {
	LoadHeightField(field *formats.HeightField, source *formats.RasterTile)
	Reset()
}

// Request names the location to fetch.
type Request struct {
	Longitude float64
	Latitude  float64
	Zoom      int
}

// Tile returns the address the request resolves to.
func (r Request) Tile() ID {
	return PointToTile(r.Longitude, r.Latitude, r.Zoom)
}

type result struct {
	req  Request
	tile *formats.RasterTile
	err  error
}

// Loader runs one tile fetch at a time in the background.
type Loader struct {
	source  Source
	timeout time.Duration
	log     *zap.Logger

	sem     *semaphore.Weighted
	results chan result

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLoader creates a Loader over source. A zero timeout means no deadline
// beyond the source's own.
func NewLoader(source Source, timeout time.Duration, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		source:  source,
		timeout: timeout,
		log:     log,
		sem:     semaphore.NewWeighted(1),
		results: make(chan result, 1),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Request starts a fetch. It returns ErrBusy if a previous fetch has not been
// consumed by Poll yet.
func (l *Loader) Request(req Request) error {
	if l.ctx.Err() != nil {
		return fmt.Errorf("loader closed: %w", l.ctx.Err())
	}
	if !l.sem.TryAcquire(1) {
		return ErrBusy
	}

	l.log.Info("requesting tile",
		zap.Stringer("tile", req.Tile()),
		zap.Float64("lon", req.Longitude),
		zap.Float64("lat", req.Latitude),
	)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		ctx := l.ctx
		if l.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, l.timeout)
			defer cancel()
		}

		tile, err := l.source.FetchTile(ctx, req.Longitude, req.Latitude, req.Zoom)
		l.results <- result{req: req, tile: tile, err: err}
	}()
	return nil
}

// Busy reports whether a fetch is in flight or waiting to be polled.
func (l *Loader) Busy() bool {
	if !l.sem.TryAcquire(1) {
		return true
	}
	l.sem.Release(1)
	return false
}

// Poll hands a completed fetch to sink. It never blocks and must be called
// from the render thread. It returns true when a result was consumed.
//
// A failed fetch resets the sink and is logged, not returned. A tile that
// fails to decode leaves the sink untouched and returns the decode error.
func (l *Loader) Poll(sink Sink) (bool, error) {
	var res result
	select {
	case res = <-l.results:
	default:
		return false, nil
	}
	defer l.sem.Release(1)

	id := res.req.Tile()
	if res.err != nil {
		l.log.Warn("tile fetch failed, resetting terrain",
			zap.Stringer("tile", id),
			zap.Error(res.err),
		)
		sink.Reset()
		return true, nil
	}

	field, err := formats.DecodeRasterTile(res.tile)
	if err != nil {
		return true, fmt.Errorf("tile %s: %w", id, err)
	}

	l.log.Info("tile loaded",
		zap.Stringer("tile", id),
		zap.Float64("rawMin", field.RawMin),
		zap.Float64("rawMax", field.RawMax),
	)
	if field.IsFlat() {
		l.log.Warn("tile has no elevation range, terrain will be flat", zap.Stringer("tile", id))
	}
	sink.LoadHeightField(field, res.tile)
	return true, nil
}

// Close cancels any in-flight fetch and waits for it to finish.
func (l *Loader) Close() {
	l.cancel()
	l.wg.Wait()
}
