// Package pipeline provides the core processing pipeline for netweave.
//
// This package implements the complete parse → layout → render pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Decode an interchange document (GEXF, GML, XNET) into a network
//  2. Layout: Run the force simulation to position nodes
//  3. Render: Generate output in various formats (DOT, SVG, PNG, PDF)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(st, logger)
//	opts := pipeline.Options{
//	    Source:  "karate.gexf",
//	    Data:    data,
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/netweave/netweave/pkg/codec"
	"github.com/netweave/netweave/pkg/errors"
	"github.com/netweave/netweave/pkg/network"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSteps is the number of simulation ticks for layout. Enough for
	// small and medium networks to settle.
	DefaultSteps = 500

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultScale is the default PNG export scale factor.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the processing pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Source string `json:"source,omitempty"` // Path or description of the input, used for format detection and logging
	Data   []byte `json:"data,omitempty"`   // Raw document bytes
	Format string `json:"format,omitempty"` // Input format; detected from Source when empty

	// Layout options
	Steps      int     `json:"steps,omitempty"`
	K          float64 `json:"k,omitempty"`
	Damping    float64 `json:"damping,omitempty"`
	Repulsion  float64 `json:"repulsion,omitempty"`
	Speed      float64 `json:"speed,omitempty"`
	Seed       uint64  `json:"seed,omitempty"`
	ThreeD     bool    `json:"three_d,omitempty"`
	SkipLayout bool    `json:"skip_layout,omitempty"` // Keep positions from the input document

	// Render options
	Formats      []string `json:"formats,omitempty"`
	Detailed     bool     `json:"detailed,omitempty"`
	UsePositions bool     `json:"use_positions,omitempty"`
	Scale        float64  `json:"scale,omitempty"`

	// Refresh bypasses cached artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Network is the parsed (and possibly laid out) network.
	Network *network.Network

	// NetworkHash is the content hash of the input document.
	NetworkHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which artifacts came from the store.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks artifact reuse for a pipeline run.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from the store
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that an output format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid output format %q (must be one of: dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all output formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks required fields for parsing and resolves the
// input format.
func (o *Options) ValidateForParse() error {
	if len(o.Data) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "input data is required")
	}
	if o.Format == "" {
		if o.Source == "" {
			return errors.New(errors.ErrCodeInvalidInput, "format or source path is required")
		}
		format, err := codec.Detect(o.Source)
		if err != nil {
			return err
		}
		o.Format = format
	}
	if _, err := codec.Get(o.Format); err != nil {
		return err
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Steps == 0 {
		o.Steps = DefaultSteps
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}
