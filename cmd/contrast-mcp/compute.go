package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/ironsheep/contrast-mcp/internal/contrast"
	"github.com/ironsheep/contrast-mcp/internal/imaging"
	"github.com/ironsheep/contrast-mcp/internal/layout"
	"github.com/ironsheep/contrast-mcp/internal/watch"
)

// pipelineFlags are shared by compute and watch. Non-empty values override
// the layout document.
type pipelineFlags struct {
	layout    string
	image     string
	fit       string
	resampler string
	filter    string
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.layout, "layout", "l", "", "layout document (YAML)")
	cmd.Flags().StringVarP(&f.image, "image", "i", "", "background image path or URL (overrides the layout)")
	cmd.Flags().StringVar(&f.fit, "fit", "", "cover or contain (overrides the layout)")
	cmd.Flags().StringVar(&f.resampler, "resampler", "", "resampling backend: imaging or bild")
	cmd.Flags().StringVar(&f.filter, "filter", "", "resampling filter: nearest, box, linear, catmullrom, lanczos")
	_ = cmd.MarkFlagRequired("layout")
}

// pipeline is everything needed to build an engine from a layout document.
type pipeline struct {
	cfg    contrast.Config
	cache  *imaging.ImageCache
	loader *imaging.Loader
	layout layout.File
}

func (f *pipelineFlags) build(origin string, logger hclog.Logger) (*pipeline, error) {
	doc, err := layout.LoadFile(f.layout)
	if err != nil {
		return nil, err
	}
	if f.image != "" {
		doc.Image = f.image
		doc.BackgroundImage = ""
	}
	if f.fit != "" {
		doc.Fit = f.fit
	}
	if f.resampler != "" {
		doc.Resampler = f.resampler
	}
	if f.filter != "" {
		doc.Filter = f.filter
	}
	if origin == "" {
		origin = doc.Origin
	}

	cfg, err := doc.Config()
	if err != nil {
		return nil, err
	}
	cfg.Logger = logger

	ref, err := doc.ImageRef()
	if err != nil {
		return nil, err
	}
	resampler, err := imaging.NewResampler(doc.Resampler, doc.Filter)
	if err != nil {
		return nil, err
	}

	cache := imaging.NewImageCache()
	cache.Origin = origin
	return &pipeline{
		cfg:    cfg,
		cache:  cache,
		loader: &imaging.Loader{Cache: cache, Ref: ref, Resampler: resampler},
		layout: layout.File{Path: f.layout},
	}, nil
}

// jsonApplier prints every applied batch to w as JSON.
type jsonApplier struct {
	w      io.Writer
	indent bool
}

// appliedColor is one line of compute/watch output.
type appliedColor struct {
	ID       string        `json:"id"`
	Property string        `json:"property"`
	Color    string        `json:"color"`
	Average  string        `json:"average"`
	Source   contrast.Rect `json:"source_rect"`
}

func (a jsonApplier) Apply(_ context.Context, results []contrast.Result) error {
	out := make([]appliedColor, 0, len(results))
	for _, r := range results {
		out = append(out, appliedColor{
			ID:       r.Target.ID,
			Property: r.Property,
			Color:    r.Color,
			Average:  contrast.EncodeHex(r.Average),
			Source:   r.SourceRect,
		})
	}

	enc := json.NewEncoder(a.w)
	if a.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

func newComputeCmd(opts *rootOptions) *cobra.Command {
	flags := &pipelineFlags{}

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute target colours once and print them as JSON",
		Example: `  contrast-mcp compute --layout hero.yaml
  contrast-mcp compute --layout hero.yaml --image https://cdn.example/hero.jpg --origin https://example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(opts.logLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			p, err := flags.build(opts.origin, logger)
			if err != nil {
				return err
			}

			p.cfg.Once = true
			engine, err := contrast.New(p.cfg, p.loader, p.layout, jsonApplier{w: cmd.OutOrStdout(), indent: true})
			if err != nil {
				return err
			}
			return engine.Launch(cmd.Context())
		},
	}
	flags.register(cmd)
	return cmd
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	flags := &pipelineFlags{}
	var debounce = watch.DefaultDebounce

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Recompute target colours whenever the layout or image changes",
		Long: `Recompute target colours whenever the layout document or a local
background image changes. Each recomputation prints one JSON line.
Unless the layout sets once: true, watch runs until interrupted.

A layout change re-reads the target rectangles only. Edits to fit, theme,
strideInPixels, once or the background image reference take effect after
watch is restarted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(opts.logLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			p, err := flags.build(opts.origin, logger)
			if err != nil {
				return err
			}

			// Broken intermediate saves of the layout must not end the watch.
			p.cfg.OnError = func(err error) error {
				if errors.Is(err, contrast.ErrAccess) {
					return err
				}
				return nil
			}

			engine, err := contrast.New(p.cfg, p.loader, p.layout, jsonApplier{w: cmd.OutOrStdout()})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			paths := []string{flags.layout}
			if isLocal(p.loader.Ref) {
				paths = append(paths, strings.TrimPrefix(p.loader.Ref, "file://"))
			}
			changes, err := watch.Files(ctx, logger, debounce, paths...)
			if err != nil {
				return err
			}

			err = engine.Run(ctx, reloadOnChange(changes, p.cache, p.loader.Ref, engine))
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", debounce, "quiet period before recomputing after a change")
	return cmd
}

// reloadOnChange forwards change notifications after dropping the cached
// image, so a modified image file is decoded again.
func reloadOnChange(changes <-chan struct{}, cache *imaging.ImageCache, ref string, engine *contrast.Engine) <-chan struct{} {
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for range changes {
			cache.Evict(ref)
			engine.Reset()
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	return out
}

func isLocal(ref string) bool {
	return !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://")
}
