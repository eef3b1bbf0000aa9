// Package layout describes where the container and its target elements sit
// on the page. It implements contrast.Layout for fixed rectangles and for
// YAML layout documents that are re-read on every measurement.
package layout

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/contrast-mcp/internal/contrast"
)

// Document is a layout file.
//
//	image: backgrounds/hero.jpg   # or background_image: url("hero.jpg")
//	fit: cover
//	theme: {light: "#fff", dark: "#111"}
//	container: {x: 0, y: 0, width: 1280, height: 720}
//	targets:
//	  - id: headline
//	    rect: {x: 80, y: 120, width: 600, height: 90}
type Document struct {
	Image           string `yaml:"image"`
	BackgroundImage string `yaml:"background_image"`
	Origin          string `yaml:"origin"`

	Container contrast.Rect     `yaml:"container"`
	Targets   []contrast.Target `yaml:"targets"`

	Fit            string          `yaml:"fit"`
	Theme          *contrast.Theme `yaml:"theme"`
	Stride         int             `yaml:"stride"`
	ColorTarget    string          `yaml:"color_target"`
	CustomProperty string          `yaml:"custom_property"`
	Once           bool            `yaml:"once"`

	Resampler string `yaml:"resampler"`
	Filter    string `yaml:"filter"`

	// dir is the directory of the file the document came from; relative
	// image paths resolve against it.
	dir string
}

// Parse decodes a YAML layout document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &contrast.Error{Kind: contrast.KindConfiguration, Op: "layout", Msg: "invalid layout document", Err: err}
	}
	for i, t := range doc.Targets {
		if t.ID == "" {
			doc.Targets[i].ID = fmt.Sprintf("target-%d", i+1)
		}
		if t.Rect.Width < 0 || t.Rect.Height < 0 {
			return nil, contrast.ConfigurationError("layout",
				fmt.Sprintf("target %q has negative dimensions", doc.Targets[i].ID))
		}
	}
	return &doc, nil
}

// LoadFile reads and parses the layout document at path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &contrast.Error{Kind: contrast.KindConfiguration, Op: "layout", Msg: "cannot read layout file", Err: err}
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.dir = filepath.Dir(path)
	return doc, nil
}

// ImageRef returns the image to sample: Image if set, otherwise the URL in
// BackgroundImage. Relative local paths are resolved against the layout
// file's directory.
func (d *Document) ImageRef() (string, error) {
	ref := d.Image
	if ref == "" {
		var err error
		ref, err = contrast.ParseBackgroundImage(d.BackgroundImage)
		if err != nil {
			return "", err
		}
	}
	if d.dir != "" && !strings.Contains(ref, "://") && !filepath.IsAbs(ref) {
		ref = filepath.Join(d.dir, ref)
	}
	return ref, nil
}

// Config converts the document's options into an engine configuration.
func (d *Document) Config() (contrast.Config, error) {
	fit, err := contrast.ParseFitMode(d.Fit)
	if err != nil {
		return contrast.Config{}, err
	}
	target, err := contrast.ParseColorTarget(d.ColorTarget)
	if err != nil {
		return contrast.Config{}, err
	}
	return contrast.Config{
		Fit:            fit,
		Theme:          d.Theme,
		StrideInPixels: d.Stride,
		ColorTarget:    target,
		CustomProperty: d.CustomProperty,
		Once:           d.Once,
	}, nil
}

// Static is a contrast.Layout with fixed rectangles.
type Static struct {
	Container contrast.Rect
	Targets   []contrast.Target
}

// Measure implements contrast.Layout.
func (s Static) Measure(context.Context) (contrast.Rect, []contrast.Target, error) {
	return s.Container, s.Targets, nil
}

// File is a contrast.Layout backed by a layout document on disk. Every
// measurement re-reads the file, so edits act like a re-layout.
type File struct {
	Path string
}

// Measure implements contrast.Layout.
func (f File) Measure(context.Context) (contrast.Rect, []contrast.Target, error) {
	doc, err := LoadFile(f.Path)
	if err != nil {
		return contrast.Rect{}, nil, err
	}
	return doc.Container, doc.Targets, nil
}
