package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/netweave/netweave/pkg/codec"
	"github.com/netweave/netweave/pkg/errors"
	"github.com/netweave/netweave/pkg/layout/force"
	"github.com/netweave/netweave/pkg/network"
	"github.com/netweave/netweave/pkg/observability"
	"github.com/netweave/netweave/pkg/render"
	"github.com/netweave/netweave/pkg/store"
)

// Runner encapsulates pipeline execution with artifact caching.
//
// The Runner is stateless except for the store and logger - it doesn't
// keep pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Store  store.Store
	Logger *log.Logger
}

// NewRunner creates a runner with the given store.
// If st is nil, a NullStore is used (artifact caching disabled).
func NewRunner(st store.Store, logger *log.Logger) *Runner {
	if st == nil {
		st = store.NewNullStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:  st,
		Logger: logger,
	}
}

// Execute runs the complete parse → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts:   make(map[string][]byte),
		NetworkHash: store.Hash(opts.Data),
	}

	// Stage 1: Parse
	parseStart := time.Now()
	net, err := r.Parse(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Network = net
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.NodeCount = net.NodeCount()
	result.Stats.EdgeCount = net.EdgeCount()

	r.Logger.Info("parsed network",
		"format", opts.Format,
		"nodes", net.NodeCount(),
		"edges", net.EdgeCount(),
		"duration", result.Stats.ParseTime)

	// Stage 2: Layout
	if !opts.SkipLayout {
		layoutStart := time.Now()
		if err := r.Layout(ctx, net, opts); err != nil {
			return nil, err
		}
		result.Stats.LayoutTime = time.Since(layoutStart)

		r.Logger.Info("computed layout",
			"steps", opts.Steps,
			"duration", result.Stats.LayoutTime)
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, net, result.NetworkHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Parse decodes the input document into a network.
func (r *Runner) Parse(ctx context.Context, opts Options) (*network.Network, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	start := time.Now()
	observability.Pipeline().OnParseStart(ctx, opts.Format, opts.Source)

	net, err := codec.Parse(opts.Data, opts.Format)

	nodes := 0
	if net != nil {
		nodes = net.NodeCount()
	}
	observability.Pipeline().OnParseComplete(ctx, opts.Format, opts.Source, nodes, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return net, nil
}

// Layout runs the force simulation in place on the network.
func (r *Runner) Layout(ctx context.Context, net *network.Network, opts Options) error {
	opts.SetLayoutDefaults()
	r.applyLogger(&opts)

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, net.NodeCount(), opts.Steps)

	err := force.Run(ctx, net, opts.Steps, &force.Options{
		K:                 opts.K,
		Damping:           opts.Damping,
		RepulsionStrength: opts.Repulsion,
		Speed:             opts.Speed,
		Seed:              opts.Seed,
		ThreeD:            opts.ThreeD,
	})

	observability.Pipeline().OnLayoutComplete(ctx, time.Since(start), err)
	return err
}

// RenderWithCacheInfo renders all requested formats, reusing stored
// artifacts where possible, and reports whether everything came from the
// store.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, net *network.Network, hash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)

	// Try to serve every format from the store first.
	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		allCached := true
		for _, format := range opts.Formats {
			entry, err := r.Store.Load(ctx, r.artifactName(hash, format, opts))
			if err != nil {
				allCached = false
				break
			}
			artifacts[format] = entry.Data
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
			return artifacts, true, nil
		}
	}

	rendered, err := r.renderAll(ctx, net, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		name := r.artifactName(hash, format, opts)
		if err := r.Store.Save(ctx, store.NewEntry(name, format, data, net)); err != nil {
			r.Logger.Warn("failed to cache artifact", "format", format, "error", err)
		}
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, net *network.Network, hash string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, net, hash, opts)
	return artifacts, err
}

func (r *Runner) renderAll(ctx context.Context, net *network.Network, opts Options) (map[string][]byte, error) {
	dot := render.ToDOT(net, render.Options{
		Detailed:     opts.Detailed,
		UsePositions: opts.UsePositions,
	})

	// Pinned positions need an engine that honors them; dot recomputes
	// the layout and would discard the force simulation's result.
	engine := render.EngineDot
	if opts.UsePositions {
		engine = render.EngineNeato
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = render.RenderSVG(ctx, dot, engine)
		case FormatPNG:
			data, err = render.RenderPNG(ctx, dot, engine, opts.Scale)
		case FormatPDF:
			data, err = render.RenderPDF(ctx, dot, engine)
		default:
			err = ValidateFormat(format)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// artifactName builds a deterministic store name for a rendered artifact.
// The name covers the input hash plus every option that affects the output,
// so stale artifacts are never served for changed settings.
func (r *Runner) artifactName(hash, format string, opts Options) string {
	key := fmt.Sprintf("%s|%s|%d|%g|%g|%g|%g|%d|%t|%t|%t|%t|%g",
		hash, format, opts.Steps, opts.K, opts.Damping, opts.Repulsion, opts.Speed,
		opts.Seed, opts.ThreeD, opts.SkipLayout, opts.Detailed, opts.UsePositions, opts.Scale)
	return "artifact-" + store.Hash([]byte(key))[:16] + "-" + format
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
