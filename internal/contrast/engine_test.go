package contrast

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

// solidSource is a Source whose every pixel has one colour.
type solidSource struct {
	size Size
	c    Color
	err  error

	mu    sync.Mutex
	calls []Rect
}

func (s *solidSource) NaturalSize() Size { return s.size }
func (s *solidSource) DisplaySize() Size { return s.size }

func (s *solidSource) Raster(src Rect, w, h int, surface *Surface) (*RasterBuffer, error) {
	s.mu.Lock()
	s.calls = append(s.calls, src)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	canvas := surface.Canvas(w, h)
	for i := 0; i < len(canvas.Pix); i += 4 {
		canvas.Pix[i], canvas.Pix[i+1], canvas.Pix[i+2] = s.c.R, s.c.G, s.c.B
	}
	return &RasterBuffer{Width: w, Height: h, Pix: canvas.Pix}, nil
}

// stubLoader hands out a source, optionally blocking until released.
type stubLoader struct {
	src     Source
	err     error
	started chan struct{}
	release chan struct{}

	mu    sync.Mutex
	loads int
}

func (l *stubLoader) Load(ctx context.Context) (Source, error) {
	l.mu.Lock()
	l.loads++
	l.mu.Unlock()
	if l.started != nil {
		close(l.started)
		l.started = nil
	}
	if l.release != nil {
		select {
		case <-l.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.src, nil
}

func (l *stubLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads
}

type staticLayout struct {
	mu        sync.Mutex
	container Rect
	targets   []Target
}

func (l *staticLayout) Measure(context.Context) (Rect, []Target, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.container, append([]Target(nil), l.targets...), nil
}

func (l *staticLayout) set(container Rect) {
	l.mu.Lock()
	l.container = container
	l.mu.Unlock()
}

type recordingApplier struct {
	mu      sync.Mutex
	batches [][]Result
}

func (a *recordingApplier) Apply(_ context.Context, results []Result) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.batches = append(a.batches, results)
	return nil
}

func (a *recordingApplier) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.batches)
}

func waitForApplies(t *testing.T, a *recordingApplier, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for a.count() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d applies, got %d", n, a.count())
		}
		time.Sleep(time.Millisecond)
	}
}

func newTestLayout() *staticLayout {
	return &staticLayout{
		container: Rect{X: 100, Y: 100, Width: 100, Height: 100},
		targets: []Target{
			{ID: "title", Rect: Rect{X: 110, Y: 110, Width: 20, Height: 20}},
			{ID: "caption", Rect: Rect{X: 150, Y: 160, Width: 40, Height: 10}},
		},
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	_, err := New(Config{StrideInPixels: -3}, &stubLoader{}, newTestLayout(), &recordingApplier{})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("New error = %v, want configuration error", err)
	}
	_, err = New(Config{}, nil, newTestLayout(), &recordingApplier{})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("New with nil loader error = %v, want configuration error", err)
	}
}

func TestEngine_Launch(t *testing.T) {
	src := &solidSource{size: Size{200, 100}, c: Color{255, 255, 255}}
	applier := &recordingApplier{}
	e, err := New(Config{Theme: &Theme{}}, &stubLoader{src: src}, newTestLayout(), applier)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := e.Launch(context.Background()); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	if applier.count() != 1 {
		t.Fatalf("Apply called %d times, want 1", applier.count())
	}

	results := e.Last()
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	title := results[0]
	if title.Target.ID != "title" {
		t.Errorf("first result is %q, want title", title.Target.ID)
	}
	if want := (Rect{X: 10, Y: 10, Width: 20, Height: 20}); title.SourceRect != want {
		t.Errorf("SourceRect = %+v, want %+v", title.SourceRect, want)
	}
	if title.Average != (Color{255, 255, 255}) {
		t.Errorf("Average = %v, want white", title.Average)
	}
	if title.Color != DefaultDark {
		t.Errorf("Color = %s, want %s", title.Color, DefaultDark)
	}
	if title.Property != "color" {
		t.Errorf("Property = %s, want color", title.Property)
	}
}

func TestEngine_RecomputeReusesSource(t *testing.T) {
	loader := &stubLoader{src: &solidSource{size: Size{100, 100}, c: Color{10, 20, 30}}}
	applier := &recordingApplier{}
	e, err := New(Config{}, loader, newTestLayout(), applier)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := e.Recompute(context.Background()); err != nil {
			t.Fatalf("Recompute %d failed: %v", i, err)
		}
	}
	if loader.count() != 1 {
		t.Errorf("image loaded %d times, want 1", loader.count())
	}
	if applier.count() != 3 {
		t.Errorf("Apply called %d times, want 3", applier.count())
	}
	if got := e.Last()[0].Color; got != "#f5ebe1" {
		t.Errorf("Color = %s, want #f5ebe1", got)
	}

	e.Reset()
	if err := e.Recompute(context.Background()); err != nil {
		t.Fatalf("Recompute after Reset failed: %v", err)
	}
	if loader.count() != 2 {
		t.Errorf("image loaded %d times after Reset, want 2", loader.count())
	}
}

func TestEngine_LoadErrorAppliesNothing(t *testing.T) {
	loader := &stubLoader{err: LoadError("fetch", errors.New("404"))}
	applier := &recordingApplier{}
	e, err := New(Config{}, loader, newTestLayout(), applier)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := e.Launch(context.Background()); !errors.Is(err, ErrLoad) {
		t.Errorf("Launch error = %v, want load error", err)
	}
	if applier.count() != 0 {
		t.Error("nothing should be applied after a load failure")
	}
}

func TestEngine_FailureKeepsPreviousColors(t *testing.T) {
	layout := newTestLayout()
	applier := &recordingApplier{}
	e, err := New(Config{}, &stubLoader{src: &solidSource{size: Size{100, 100}}}, layout, applier)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := e.Launch(context.Background()); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	before := e.Last()

	layout.set(Rect{X: 100, Y: 100, Width: 0, Height: 100})
	if err := e.Recompute(context.Background()); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Recompute error = %v, want configuration error", err)
	}
	if applier.count() != 1 {
		t.Errorf("Apply called %d times, want 1", applier.count())
	}
	after := e.Last()
	if len(after) != len(before) || after[0] != before[0] {
		t.Error("failed recomputation changed the last applied results")
	}
}

func TestEngine_AccessErrorSurfaced(t *testing.T) {
	src := &solidSource{size: Size{100, 100}, err: AccessError("raster", "tainted")}
	applier := &recordingApplier{}
	e, err := New(Config{}, &stubLoader{src: src}, newTestLayout(), applier)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = e.Run(context.Background(), nil)
	if !errors.Is(err, ErrAccess) {
		t.Errorf("Run error = %v, want access error", err)
	}
	if applier.count() != 0 {
		t.Error("nothing should be applied after an access failure")
	}
}

func TestEngine_SupersededLaunchAppliesNothing(t *testing.T) {
	loader := &stubLoader{
		src:     &solidSource{size: Size{100, 100}, c: Color{0, 0, 0}},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	started := loader.started
	applier := &recordingApplier{}
	e, err := New(Config{}, loader, newTestLayout(), applier)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	launchErr := make(chan error, 1)
	go func() { launchErr <- e.Launch(context.Background()) }()
	<-started

	recomputeErr := make(chan error, 1)
	go func() { recomputeErr <- e.Recompute(context.Background()) }()
	for e.gen.Load() < 2 {
		runtime.Gosched()
	}
	close(loader.release)

	if err := <-launchErr; !errors.Is(err, ErrSuperseded) {
		t.Errorf("Launch error = %v, want ErrSuperseded", err)
	}
	if err := <-recomputeErr; err != nil {
		t.Errorf("Recompute failed: %v", err)
	}
	if applier.count() != 1 {
		t.Errorf("Apply called %d times, want 1", applier.count())
	}
	if loader.count() != 1 {
		t.Errorf("image loaded %d times, want 1", loader.count())
	}
}

func TestEngine_RunOnce(t *testing.T) {
	applier := &recordingApplier{}
	e, err := New(Config{Once: true}, &stubLoader{src: &solidSource{size: Size{100, 100}}}, newTestLayout(), applier)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	triggers := make(chan struct{}, 1)
	triggers <- struct{}{}
	if err := e.Run(context.Background(), triggers); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if applier.count() != 1 {
		t.Errorf("Apply called %d times, want 1", applier.count())
	}
}

func TestEngine_RunRecomputesOnTrigger(t *testing.T) {
	applier := &recordingApplier{}
	e, err := New(Config{}, &stubLoader{src: &solidSource{size: Size{100, 100}}}, newTestLayout(), applier)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	triggers := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background(), triggers) }()

	waitForApplies(t, applier, 1)
	triggers <- struct{}{}
	waitForApplies(t, applier, 2)
	triggers <- struct{}{}
	waitForApplies(t, applier, 3)
	close(triggers)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after triggers closed")
	}
	if applier.count() != 3 {
		t.Errorf("Apply called %d times, want 3", applier.count())
	}
}

func TestEngine_RunStopsOnContext(t *testing.T) {
	e, err := New(Config{}, &stubLoader{src: &solidSource{size: Size{100, 100}}}, newTestLayout(), &recordingApplier{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, make(chan struct{})) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestCompute_ZeroSizeTarget(t *testing.T) {
	cfg, _ := Config{}.Resolve()
	src := &solidSource{size: Size{100, 100}}
	_, err := Compute(cfg, src, Rect{Width: 100, Height: 100}, Target{ID: "t", Rect: Rect{Width: 0.5, Height: 10}}, nil)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Compute error = %v, want validation error", err)
	}
}

func TestCompute_OversizedTarget(t *testing.T) {
	cfg, _ := Config{}.Resolve()

	tests := []struct {
		name string
		rect Rect
	}{
		{"overflowing area", Rect{Width: 3e9, Height: 3e9}},
		{"huge area", Rect{Width: 100000, Height: 100000}},
		{"huge width", Rect{Width: 1e18, Height: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &solidSource{size: Size{10, 10}}
			_, err := Compute(cfg, src, Rect{Width: 10, Height: 10}, Target{ID: "t", Rect: tt.rect}, NewSurface())
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Compute error = %v, want validation error", err)
			}
			if len(src.calls) != 0 {
				t.Error("oversized target should not reach the raster source")
			}
		})
	}
}

func TestCheckRasterSize(t *testing.T) {
	tests := []struct {
		w, h    float64
		wantErr bool
	}{
		{0, 0, false},
		{1920, 1080, false},
		{MaxRasterPixels, 1, false},
		{MaxRasterPixels + 1, 1, true},
		{8193, 8193, true},
		{-1, 10, true},
	}
	for _, tt := range tests {
		err := CheckRasterSize(tt.w, tt.h)
		if (err != nil) != tt.wantErr {
			t.Errorf("CheckRasterSize(%v, %v) = %v, wantErr %v", tt.w, tt.h, err, tt.wantErr)
		}
	}
}

func TestSurface_Reuse(t *testing.T) {
	s := NewSurface()
	c := s.Canvas(10, 10)
	if len(c.Pix) != 400 {
		t.Fatalf("canvas has %d bytes, want 400", len(c.Pix))
	}
	if c.Pix[3] != 0xff || c.Pix[0] != 0 {
		t.Error("canvas should start opaque black")
	}
	c.Pix[0] = 99
	small := s.Canvas(2, 2)
	if small.Pix[0] != 0 {
		t.Error("canvas should be cleared between uses")
	}
	if s.Cap() != 400 {
		t.Errorf("Cap = %d, want 400", s.Cap())
	}
	s.Reset()
	if s.Cap() != 0 {
		t.Errorf("Cap after Reset = %d, want 0", s.Cap())
	}
}
