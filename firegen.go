// Package firegen generates synthetic fire-damage training images by
// inpainting random regions of background photos through a locally hosted
// Stable Diffusion WebUI and writing a YOLO-format bounding-box annotation
// next to every output.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		"github.com/menta2k/firegen"
//		"github.com/menta2k/firegen/pkg/config"
//	)
//
//	func main() {
//		cfg := config.Default()
//		cfg.Output.InputDir = "backgrounds"
//		cfg.Output.OutputDir = "dataset"
//
//		gen, err := firegen.New(cfg)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		summary, err := gen.Run(context.Background(), 100)
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("generated=%d failed=%d", summary.Generated, summary.Failed)
//	}
//
// The package consists of four main components:
//
// 1. Mask (pkg/mask): random rectangular occlusion masks plus annotations
// 2. Prompt (pkg/prompt): prompt library loading and sampling
// 3. WebUI (pkg/webui): the AUTOMATIC1111 img2img + ControlNet client
// 4. Pipeline (pkg/pipeline): the batch loop tying them together
//
// Every generated image out_<n>.png is paired with out_<n>.txt holding one
// normalized record "class cx cy w h" describing the inpainted region.
package firegen

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/menta2k/firegen/pkg/annotation"
	"github.com/menta2k/firegen/pkg/client"
	"github.com/menta2k/firegen/pkg/config"
	"github.com/menta2k/firegen/pkg/mask"
	"github.com/menta2k/firegen/pkg/pipeline"
	"github.com/menta2k/firegen/pkg/processing"
	"github.com/menta2k/firegen/pkg/prompt"
	"github.com/menta2k/firegen/pkg/types"
	"github.com/menta2k/firegen/pkg/webui"
)

// Version of the firegen library
const Version = "1.0.0"

// FallbackPrompt is used when no prompt library can be loaded
const FallbackPrompt = "fire"

// Generator provides a high-level interface over the generation pipeline
type Generator struct {
	cfg       *config.Config
	processor *processing.Processor
	masks     *mask.Generator
	prompts   *prompt.Sampler
	backend   client.InpaintClient
	pipeline  *pipeline.Pipeline
}

// New creates a Generator from a configuration, wiring the default WebUI
// backend. Missing prompt files degrade to the fallback prompt.
func New(cfg *config.Config) (*Generator, error) {
	backend, err := webui.NewClient(cfg.Server.URL, time.Duration(cfg.Server.TimeoutSeconds)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to create webui client: %w", err)
	}
	return NewWithBackend(cfg, backend)
}

// NewWithBackend creates a Generator with a custom inpainting backend
func NewWithBackend(cfg *config.Config, backend client.InpaintClient) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	masks, err := mask.New(cfg.Mask.MinFrac, cfg.Mask.MaxFrac, cfg.Mask.BlurRadius, cfg.Mask.Seed)
	if err != nil {
		return nil, err
	}

	prompts, err := prompt.LoadFile(cfg.Prompt.PromptFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}
	if len(prompts) == 0 {
		prompts = []string{FallbackPrompt}
	}
	negatives, err := prompt.LoadFile(cfg.Prompt.NegativePromptFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load negative prompts: %w", err)
	}

	sampler, err := prompt.NewSampler(prompts, negatives, cfg.Prompt.Styles,
		cfg.Prompt.Suffix, cfg.Prompt.NegativeSuffix, cfg.Prompt.Seed)
	if err != nil {
		return nil, err
	}

	processor := processing.NewProcessor()
	return &Generator{
		cfg:       cfg,
		processor: processor,
		masks:     masks,
		prompts:   sampler,
		backend:   backend,
		pipeline:  pipeline.New(cfg, processor, masks, sampler, backend),
	}, nil
}

// Run executes the batch generation loop for count images
func (g *Generator) Run(ctx context.Context, count int) (pipeline.Summary, error) {
	return g.pipeline.Run(ctx, count)
}

// GenerateMask samples a mask and annotation for the given image dimensions
// without contacting the backend
func (g *Generator) GenerateMask(width, height int) (*image.Gray, annotation.Record, types.PixelBox, error) {
	return g.masks.Generate(width, height)
}

// Ping checks the configured backend is reachable
func (g *Generator) Ping(ctx context.Context) error {
	return g.backend.Ping(ctx)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
