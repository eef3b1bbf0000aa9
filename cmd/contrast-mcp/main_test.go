package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/ironsheep/contrast-mcp/internal/contrast"
	"github.com/ironsheep/contrast-mcp/internal/imaging"
	"github.com/ironsheep/contrast-mcp/internal/server"
)

func writePNG(t *testing.T, path string, width, height int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
}

const testLayout = `image: bg.png
container: {x: 0, y: 0, width: 40, height: 40}
targets:
  - id: title
    rect: {x: 0, y: 0, width: 20, height: 20}
  - rect: {x: 20, y: 20, width: 20, height: 20}
`

func writeLayout(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "layout.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write layout: %v", err)
	}
	return path
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		env     string
		want    hclog.Level
		wantErr bool
	}{
		{"default", "", "", hclog.Warn, false},
		{"flag", "debug", "", hclog.Debug, false},
		{"env", "", "trace", hclog.Trace, false},
		{"flag beats env", "error", "trace", hclog.Error, false},
		{"upper case", "INFO", "", hclog.Info, false},
		{"invalid", "loud", "", hclog.NoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(logLevelEnv, tt.env)
			logger, err := newLogger(tt.flag, &bytes.Buffer{})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("newLogger failed: %v", err)
			}
			if got := logger.GetLevel(); got != tt.want {
				t.Errorf("level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "contrast-mcp "+Version) {
		t.Errorf("output = %q", out.String())
	}
}

func TestJSONApplier(t *testing.T) {
	var out bytes.Buffer
	results := []contrast.Result{{
		Target:     contrast.Target{ID: "a"},
		SourceRect: contrast.Rect{Width: 2, Height: 2},
		Average:    contrast.Color{R: 255},
		Color:      "#00ffff",
		Property:   "color",
	}}

	if err := (jsonApplier{w: &out}).Apply(context.Background(), results); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	var got []appliedColor
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("bad output %q: %v", out.String(), err)
	}
	want := appliedColor{ID: "a", Property: "color", Color: "#00ffff", Average: "#ff0000", Source: contrast.Rect{Width: 2, Height: 2}}
	if len(got) != 1 || got[0] != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if strings.Count(out.String(), "\n") != 1 {
		t.Errorf("unindented output should be one line: %q", out.String())
	}
}

func TestComputeCmd(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "bg.png"), 40, 40, color.White)
	layoutPath := writeLayout(t, dir, testLayout)

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"compute", "--layout", layoutPath, "--filter", "nearest"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("compute failed: %v\n%s", err, errOut.String())
	}

	var got []appliedColor
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("bad output %q: %v", out.String(), err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	for i, id := range []string{"title", "target-2"} {
		if got[i].ID != id {
			t.Errorf("result %d: ID = %s, want %s", i, got[i].ID, id)
		}
		if got[i].Color != "#000000" || got[i].Average != "#ffffff" {
			t.Errorf("result %d: color %s over %s", i, got[i].Color, got[i].Average)
		}
	}
}

func TestComputeCmd_ImageOverride(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "bg.png"), 40, 40, color.White)
	other := filepath.Join(dir, "dark.png")
	writePNG(t, other, 40, 40, color.Black)
	layoutPath := writeLayout(t, dir, testLayout+"theme: {light: \"#eee\"}\n")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"compute", "-l", layoutPath, "-i", other, "--resampler", "bild"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	var got []appliedColor
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("bad output %q: %v", out.String(), err)
	}
	for _, r := range got {
		if r.Color != "#eeeeee" {
			t.Errorf("%s: color = %s, want #eeeeee", r.ID, r.Color)
		}
	}
}

func TestComputeCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "bg.png"), 40, 40, color.White)

	tests := []struct {
		name string
		args func() []string
	}{
		{"missing layout flag", func() []string { return []string{"compute"} }},
		{"missing layout file", func() []string { return []string{"compute", "--layout", filepath.Join(dir, "nope.yaml")} }},
		{"missing image", func() []string {
			return []string{"compute", "--layout", writeLayout(t, dir, strings.Replace(testLayout, "bg.png", "gone.png", 1))}
		}},
		{"bad fit", func() []string {
			return []string{"compute", "--layout", writeLayout(t, dir, testLayout), "--fit", "stretch"}
		}},
		{"bad log level", func() []string {
			return []string{"compute", "--layout", writeLayout(t, dir, testLayout), "--log-level", "loud"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tt.args())
			if err := cmd.Execute(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestServeCmd(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(`{"jsonrpc":"2.0","id":7,"method":"ping"}` + "\n"))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("serve failed: %v", err)
	}
	if !strings.Contains(out.String(), `"id":7`) {
		t.Errorf("output = %q", out.String())
	}
}

func TestServeCmd_HelpListsTools(t *testing.T) {
	long := strings.Join(strings.Fields(newServeCmd(&rootOptions{}).Long), " ")
	for _, tool := range server.GetToolDefinitions() {
		if !strings.Contains(long, tool.Name) {
			t.Errorf("serve help does not mention %s", tool.Name)
		}
	}
}

func TestWatchCmd_HelpNotesRestart(t *testing.T) {
	long := newWatchCmd(&rootOptions{}).Long
	for _, want := range []string{"rectangles only", "restarted"} {
		if !strings.Contains(long, want) {
			t.Errorf("watch help missing %q:\n%s", want, long)
		}
	}
}

func TestReloadOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bg.png")
	writePNG(t, path, 10, 10, color.White)

	cache := imaging.NewImageCache()
	if _, err := cache.Load(context.Background(), path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	engine, err := contrast.New(contrast.Config{},
		&imaging.Loader{Cache: cache, Ref: path},
		staticLayout{},
		jsonApplier{w: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	changes := make(chan struct{})
	out := reloadOnChange(changes, cache, path, engine)

	// Replace the image; the cached decode must be dropped on change.
	writePNG(t, path, 20, 20, color.Black)
	changes <- struct{}{}

	select {
	case <-out:
	case <-time.After(2 * time.Second):
		t.Fatal("change was not forwarded")
	}

	img, err := cache.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.Bounds().Dx() != 20 {
		t.Errorf("cache still holds the old image (%d wide)", img.Bounds().Dx())
	}

	close(changes)
	if _, ok := <-out; ok {
		t.Error("output channel should close with its input")
	}
}

type staticLayout struct{}

func (staticLayout) Measure(context.Context) (contrast.Rect, []contrast.Target, error) {
	return contrast.Rect{}, nil, nil
}

func TestIsLocal(t *testing.T) {
	for ref, want := range map[string]bool{
		"/tmp/a.png":            true,
		"rel/a.png":             true,
		"file:///tmp/a.png":     true,
		"http://example.com/a":  false,
		"https://example.com/a": false,
	} {
		if got := isLocal(ref); got != want {
			t.Errorf("isLocal(%q) = %v, want %v", ref, got, want)
		}
	}
}
