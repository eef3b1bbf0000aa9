package contrast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"
)

// Source is a decoded background image.
type Source interface {
	// NaturalSize is the image's intrinsic pixel size.
	NaturalSize() Size

	// DisplaySize is the size the image reports for layout, which for a
	// detached image equals NaturalSize.
	DisplaySize() Size

	// Raster resamples the src rectangle (image pixels) into a width×height
	// buffer. surface may be nil.
	Raster(src Rect, width, height int, surface *Surface) (*RasterBuffer, error)
}

// SourceLoader fetches and decodes the background image. Failures are
// LoadError or ConfigurationError.
type SourceLoader interface {
	Load(ctx context.Context) (Source, error)
}

// Target is an element whose colour is computed.
type Target struct {
	ID   string `json:"id" yaml:"id"`
	Rect Rect   `json:"rect" yaml:"rect"`
}

// Layout measures the container and its targets in a shared (page)
// coordinate space.
type Layout interface {
	Measure(ctx context.Context) (container Rect, targets []Target, err error)
}

// Applier writes resolved colours to their targets. It receives the complete
// set of results of one recomputation, never a partial one.
type Applier interface {
	Apply(ctx context.Context, results []Result) error
}

// Result is the outcome for one target.
type Result struct {
	Target     Target `json:"target"`
	SourceRect Rect   `json:"source_rect"`
	Average    Color  `json:"average"`
	Color      string `json:"color"`
	Property   string `json:"property"`
}

// Compute runs the pipeline for a single target: container-local rect,
// source mapping, resampling, averaging and contrast resolution. cfg must
// already be resolved.
func Compute(cfg Config, src Source, container Rect, target Target, surface *Surface) (Result, error) {
	local := ToContainerLocal(target.Rect, container)

	srcRect, err := MapToSource(cfg.Fit, local, container.Size(), src.NaturalSize(), src.DisplaySize())
	if err != nil {
		return Result{}, err
	}

	// Destination dimensions truncate like integer canvas sizes do.
	width, height := math.Trunc(target.Rect.Width), math.Trunc(target.Rect.Height)
	if err := CheckRasterSize(width, height); err != nil {
		return Result{}, err
	}
	buf, err := src.Raster(srcRect, int(width), int(height), surface)
	if err != nil {
		return Result{}, err
	}

	avg, err := AverageColor(buf, cfg.StrideInPixels)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Target:     target,
		SourceRect: srcRect,
		Average:    avg,
		Color:      Resolve(avg, cfg.Theme),
		Property:   cfg.Property(),
	}, nil
}

// Engine recomputes target colours whenever asked.
//
// Recomputations are serialised. Each request takes a generation number; a
// request that finds a newer generation before it starts, between targets,
// or before applying returns ErrSuperseded without applying anything.
type Engine struct {
	cfg     Config
	loader  SourceLoader
	layout  Layout
	applier Applier
	log     hclog.Logger

	gen atomic.Uint64

	mu      sync.Mutex
	source  Source
	surface *Surface
	last    []Result
}

// New validates cfg and returns an engine. Invalid configuration is a
// ConfigurationError and no engine is created.
func New(cfg Config, loader SourceLoader, layout Layout, applier Applier) (*Engine, error) {
	if loader == nil || layout == nil || applier == nil {
		return nil, ConfigurationError("engine", "loader, layout and applier are required")
	}
	resolved, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:     resolved,
		loader:  loader,
		layout:  layout,
		applier: applier,
		log:     resolved.Logger.Named("engine"),
	}, nil
}

// Config returns the resolved configuration.
func (e *Engine) Config() Config { return e.cfg }

// Launch loads the image and performs the first recomputation.
func (e *Engine) Launch(ctx context.Context) error {
	gen := e.gen.Add(1)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.source = nil
	return e.recomputeLocked(ctx, gen)
}

// Recompute re-measures the layout and recomputes every target, loading the
// image first if no load has succeeded yet.
func (e *Engine) Recompute(ctx context.Context) error {
	gen := e.gen.Add(1)

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.recomputeLocked(ctx, gen)
}

// Run launches the engine and then recomputes on every trigger until ctx is
// done or triggers is closed. Triggers that pile up during a recomputation
// are coalesced into one. With Config.Once, Run returns after the launch.
func (e *Engine) Run(ctx context.Context, triggers <-chan struct{}) error {
	if err := e.handle(e.Launch(ctx)); err != nil {
		return err
	}
	if e.cfg.Once {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-triggers:
			if !ok {
				return nil
			}
			drain(triggers)
			if err := e.handle(e.Recompute(ctx)); err != nil {
				return err
			}
		}
	}
}

func (e *Engine) handle(err error) error {
	if err == nil || errors.Is(err, ErrSuperseded) {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	e.log.Warn("recomputation failed", "kind", KindOf(err).String(), "error", err)
	return e.cfg.OnError(err)
}

func drain(ch <-chan struct{}) {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// Last returns the results most recently applied.
func (e *Engine) Last() []Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Result, len(e.last))
	copy(out, e.last)
	return out
}

// Reset drops the loaded image and the cached surface. The next
// recomputation reloads the image.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.source = nil
	e.surface.Reset()
	e.surface = nil
}

func (e *Engine) superseded(gen uint64) bool {
	return e.gen.Load() != gen
}

func (e *Engine) recomputeLocked(ctx context.Context, gen uint64) error {
	if e.superseded(gen) {
		e.log.Trace("skipping superseded recomputation", "generation", gen)
		return ErrSuperseded
	}

	if e.source == nil {
		src, err := e.loader.Load(ctx)
		if err != nil {
			return err
		}
		e.source = src
		e.log.Debug("image loaded", "natural", src.NaturalSize())
	}
	if e.surface == nil {
		e.surface = NewSurface()
	}

	container, targets, err := e.layout.Measure(ctx)
	if err != nil {
		return fmt.Errorf("measure layout: %w", err)
	}

	results := make([]Result, 0, len(targets))
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.superseded(gen) {
			e.log.Trace("recomputation superseded", "generation", gen)
			return ErrSuperseded
		}
		res, err := Compute(e.cfg, e.source, container, t, e.surface)
		if err != nil {
			return fmt.Errorf("target %q: %w", t.ID, err)
		}
		results = append(results, res)
	}

	if e.superseded(gen) {
		e.log.Trace("recomputation superseded before apply", "generation", gen)
		return ErrSuperseded
	}
	if err := e.applier.Apply(ctx, results); err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	e.last = results
	e.log.Debug("recomputed", "generation", gen, "targets", len(results))
	return nil
}
