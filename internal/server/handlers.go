package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"

	"github.com/ironsheep/contrast-mcp/internal/contrast"
	"github.com/ironsheep/contrast-mcp/internal/imaging"
	"github.com/ironsheep/contrast-mcp/internal/layout"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "contrast_compute").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.safeExecuteTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Debug("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// safeExecuteTool runs executeTool, turning a panic into an error so one bad
// request cannot take down the stdio session.
func (s *Server) safeExecuteTool(ctx context.Context, name string, args json.RawMessage) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("tool panicked", "tool", name, "panic", r)
			result, err = nil, fmt.Errorf("tool %s panicked: %v", name, r)
		}
	}()
	return s.executeTool(ctx, name, args)
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls into the contrast or imaging packages
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(ctx, args)
	case "image_dimensions":
		return s.handleImageDimensions(ctx, args)

	// Contrast Operations
	case "contrast_compute":
		return s.handleContrastCompute(ctx, args)
	case "contrast_preview":
		return s.handleContrastPreview(ctx, args)
	case "contrast_resolve":
		return s.handleContrastResolve(args)
	case "contrast_map_region":
		return s.handleContrastMapRegion(args)
	case "color_hex":
		return s.handleColorHex(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(ctx, s.cache, a.Path)
}

func (s *Server) handleImageDimensions(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(ctx, s.cache, a.Path)
}

// === Contrast Operation Handlers ===

type contrastComputeArgs struct {
	Path            string            `json:"path"`
	BackgroundImage string            `json:"background_image"`
	Container       contrast.Rect     `json:"container"`
	Targets         []contrast.Target `json:"targets"`
	Fit             string            `json:"fit"`
	Theme           *contrast.Theme   `json:"theme"`
	Stride          int               `json:"stride"`
	ColorTarget     string            `json:"color_target"`
	CustomProperty  string            `json:"custom_property"`
	Resampler       string            `json:"resampler"`
	Filter          string            `json:"filter"`
}

// TargetResult is one target's outcome in a contrast_compute response.
type TargetResult struct {
	ID         string               `json:"id"`
	Rect       contrast.Rect        `json:"rect"`
	SourceRect contrast.Rect        `json:"source_rect"`
	Average    imaging.ColorReport  `json:"average"`
	Color      string               `json:"color"`
	Property   string               `json:"property"`
	Resolved   *imaging.ColorReport `json:"resolved,omitempty"`
}

// ContrastComputeResult is the contrast_compute response.
type ContrastComputeResult struct {
	Image     string         `json:"image"`
	Fit       string         `json:"fit"`
	Resampler string         `json:"resampler"`
	Results   []TargetResult `json:"results"`
}

// collector is an Applier that keeps the last applied batch.
type collector struct {
	mu      sync.Mutex
	results []contrast.Result
}

func (c *collector) Apply(_ context.Context, results []contrast.Result) error {
	c.mu.Lock()
	c.results = results
	c.mu.Unlock()
	return nil
}

func (s *Server) handleContrastCompute(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a contrastComputeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	ref := a.Path
	if ref == "" {
		var err error
		if ref, err = contrast.ParseBackgroundImage(a.BackgroundImage); err != nil {
			return nil, err
		}
	}
	for i := range a.Targets {
		if a.Targets[i].ID == "" {
			a.Targets[i].ID = fmt.Sprintf("target-%d", i+1)
		}
	}

	fit, err := contrast.ParseFitMode(a.Fit)
	if err != nil {
		return nil, err
	}
	colorTarget, err := contrast.ParseColorTarget(a.ColorTarget)
	if err != nil {
		return nil, err
	}
	resampler, err := imaging.NewResampler(a.Resampler, a.Filter)
	if err != nil {
		return nil, err
	}

	cfg := contrast.Config{
		Fit:            fit,
		Theme:          a.Theme,
		StrideInPixels: a.Stride,
		ColorTarget:    colorTarget,
		CustomProperty: a.CustomProperty,
		Once:           true,
		Logger:         s.log,
	}
	applied := &collector{}
	engine, err := contrast.New(cfg,
		&imaging.Loader{Cache: s.cache, Ref: ref, Resampler: resampler},
		layout.Static{Container: a.Container, Targets: a.Targets},
		applied)
	if err != nil {
		return nil, err
	}
	if err := engine.Launch(ctx); err != nil {
		return nil, err
	}

	out := &ContrastComputeResult{
		Image:     ref,
		Fit:       fit.String(),
		Resampler: resampler.Name(),
		Results:   make([]TargetResult, 0, len(applied.results)),
	}
	for _, r := range applied.results {
		tr := TargetResult{
			ID:         r.Target.ID,
			Rect:       r.Target.Rect,
			SourceRect: r.SourceRect,
			Average:    imaging.Describe(r.Average),
			Color:      r.Color,
			Property:   r.Property,
		}
		if report, err := imaging.DescribeHex(r.Color); err == nil {
			tr.Resolved = &report
		}
		out.Results = append(out.Results, tr)
	}
	return out, nil
}

type contrastPreviewArgs struct {
	Path            string        `json:"path"`
	BackgroundImage string        `json:"background_image"`
	Container       contrast.Rect `json:"container"`
	Target          contrast.Rect `json:"target"`
	Fit             string        `json:"fit"`
	Resampler       string        `json:"resampler"`
	Filter          string        `json:"filter"`
	Stride          int           `json:"stride"`
	Scale           float64       `json:"scale"`
}

// ContrastPreviewResult is the contrast_preview response.
type ContrastPreviewResult struct {
	SourceRect contrast.Rect       `json:"source_rect"`
	Average    imaging.ColorReport `json:"average"`
	*imaging.PreviewResult
}

func (s *Server) handleContrastPreview(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a contrastPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	if a.Scale == 0 {
		a.Scale = 1.0
	}
	ref := a.Path
	if ref == "" {
		var err error
		if ref, err = contrast.ParseBackgroundImage(a.BackgroundImage); err != nil {
			return nil, err
		}
	}
	fit, err := contrast.ParseFitMode(a.Fit)
	if err != nil {
		return nil, err
	}
	resampler, err := imaging.NewResampler(a.Resampler, a.Filter)
	if err != nil {
		return nil, err
	}

	img, err := s.cache.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	src := imaging.NewSource(img, resampler)

	local := contrast.ToContainerLocal(a.Target, a.Container)
	srcRect, err := contrast.MapToSource(fit, local, a.Container.Size(), src.NaturalSize(), src.DisplaySize())
	if err != nil {
		return nil, err
	}
	width, height := math.Trunc(a.Target.Width), math.Trunc(a.Target.Height)
	if err := contrast.CheckRasterSize(width, height); err != nil {
		return nil, err
	}
	buf, err := src.Raster(srcRect, int(width), int(height), nil)
	if err != nil {
		return nil, err
	}
	if a.Stride < 0 {
		return nil, contrast.ConfigurationError("config",
			fmt.Sprintf("strideInPixels must be positive, got %d", a.Stride))
	}
	avg, err := contrast.AverageColor(buf, a.Stride)
	if err != nil {
		return nil, err
	}
	preview, err := imaging.Preview(buf, a.Scale)
	if err != nil {
		return nil, err
	}

	return &ContrastPreviewResult{
		SourceRect:    srcRect,
		Average:       imaging.Describe(avg),
		PreviewResult: preview,
	}, nil
}

type contrastResolveArgs struct {
	Color string          `json:"color"`
	Theme *contrast.Theme `json:"theme"`
}

// ContrastResolveResult is the contrast_resolve response.
type ContrastResolveResult struct {
	Background imaging.ColorReport `json:"background"`
	Color      string              `json:"color"`
	Themed     bool                `json:"themed"`
}

func (s *Server) handleContrastResolve(args json.RawMessage) (interface{}, error) {
	var a contrastResolveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	bg, err := imaging.DescribeHex(a.Color)
	if err != nil {
		return nil, err
	}
	cfg, err := contrast.Config{Theme: a.Theme}.Resolve()
	if err != nil {
		return nil, err
	}

	return &ContrastResolveResult{
		Background: bg,
		Color:      contrast.Resolve(bg.RGB, cfg.Theme),
		Themed:     cfg.Theme != nil,
	}, nil
}

type contrastMapRegionArgs struct {
	Container     contrast.Rect `json:"container"`
	Target        contrast.Rect `json:"target"`
	NaturalWidth  float64       `json:"natural_width"`
	NaturalHeight float64       `json:"natural_height"`
	DisplayWidth  float64       `json:"display_width"`
	DisplayHeight float64       `json:"display_height"`
	Fit           string        `json:"fit"`
}

// MapRegionResult is the contrast_map_region response.
type MapRegionResult struct {
	Fit        string        `json:"fit"`
	Local      contrast.Rect `json:"local"`
	SourceRect contrast.Rect `json:"source_rect"`
}

func (s *Server) handleContrastMapRegion(args json.RawMessage) (interface{}, error) {
	var a contrastMapRegionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	if a.DisplayWidth == 0 {
		a.DisplayWidth = a.NaturalWidth
	}
	if a.DisplayHeight == 0 {
		a.DisplayHeight = a.NaturalHeight
	}
	fit, err := contrast.ParseFitMode(a.Fit)
	if err != nil {
		return nil, err
	}

	local := contrast.ToContainerLocal(a.Target, a.Container)
	src, err := contrast.MapToSource(fit, local, a.Container.Size(),
		contrast.Size{Width: a.NaturalWidth, Height: a.NaturalHeight},
		contrast.Size{Width: a.DisplayWidth, Height: a.DisplayHeight})
	if err != nil {
		return nil, err
	}
	return &MapRegionResult{Fit: fit.String(), Local: local, SourceRect: src}, nil
}

type colorHexArgs struct {
	Hex string `json:"hex"`
	R   *int   `json:"r"`
	G   *int   `json:"g"`
	B   *int   `json:"b"`
}

func (s *Server) handleColorHex(args json.RawMessage) (interface{}, error) {
	var a colorHexArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	if a.Hex != "" {
		return imaging.DescribeHex(a.Hex)
	}
	if a.R == nil || a.G == nil || a.B == nil {
		return nil, contrast.ValidationError("color_hex", "either hex or all of r, g, b are required")
	}
	for _, v := range []int{*a.R, *a.G, *a.B} {
		if v < 0 || v > 255 {
			return nil, contrast.ValidationError("color_hex", fmt.Sprintf("component %d out of range 0-255", v))
		}
	}
	return imaging.Describe(contrast.Color{R: uint8(*a.R), G: uint8(*a.G), B: uint8(*a.B)}), nil
}
