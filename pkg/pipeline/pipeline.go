// Package pipeline composes the mask generator, prompt sampler, image
// processor, and inpainting backend into the batch generation loop.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/menta2k/firegen/internal/utils"
	"github.com/menta2k/firegen/pkg/client"
	"github.com/menta2k/firegen/pkg/config"
	"github.com/menta2k/firegen/pkg/mask"
	"github.com/menta2k/firegen/pkg/processing"
	"github.com/menta2k/firegen/pkg/prompt"
	"github.com/menta2k/firegen/pkg/types"
)

// Summary reports the outcome of a batch run
type Summary struct {
	Generated int
	Failed    int
}

// Pipeline drives the batch generation loop
type Pipeline struct {
	cfg       *config.Config
	processor *processing.Processor
	masks     *mask.Generator
	prompts   *prompt.Sampler
	backend   client.InpaintClient
	rng       *rand.Rand
}

// New creates a Pipeline from already-constructed collaborators
func New(cfg *config.Config, processor *processing.Processor, masks *mask.Generator,
	prompts *prompt.Sampler, backend client.InpaintClient) *Pipeline {
	seed := cfg.Mask.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Pipeline{
		cfg:       cfg,
		processor: processor,
		masks:     masks,
		prompts:   prompts,
		backend:   backend,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Run generates count images, distributing them across the background images
// found in the input directory. A failed job is logged and skipped; the
// batch continues. Returns early on context cancellation.
func (p *Pipeline) Run(ctx context.Context, count int) (Summary, error) {
	var summary Summary

	if count <= 0 {
		return summary, fmt.Errorf("pipeline: count must be positive, got %d", count)
	}

	inputs, err := utils.ListImageFiles(p.cfg.Output.InputDir)
	if err != nil {
		return summary, fmt.Errorf("pipeline: failed to list input images: %w", err)
	}
	if len(inputs) == 0 {
		return summary, fmt.Errorf("pipeline: no images found in %s", p.cfg.Output.InputDir)
	}

	var controls []string
	if p.cfg.Output.ControlDir != "" {
		controls, err = utils.ListImageFiles(p.cfg.Output.ControlDir)
		if err != nil {
			return summary, fmt.Errorf("pipeline: failed to list control images: %w", err)
		}
		if len(controls) == 0 {
			return summary, fmt.Errorf("pipeline: no control images found in %s", p.cfg.Output.ControlDir)
		}
	}

	if err := utils.EnsureDir(p.cfg.Output.OutputDir); err != nil {
		return summary, fmt.Errorf("pipeline: failed to create output directory: %w", err)
	}

	counts := utils.DistributeCounts(count, len(inputs))
	n := 0
	for i, path := range inputs {
		for j := 0; j < counts[i]; j++ {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			default:
			}

			n++
			if err := p.generateOne(ctx, path, controls, n); err != nil {
				log.Printf("job %d (%s) failed: %v", n, path, err)
				summary.Failed++
				continue
			}
			summary.Generated++
		}
	}

	return summary, nil
}

// generateOne runs a single background through mask sampling, prompt
// sampling, the backend call, and the output writes
func (p *Pipeline) generateOne(ctx context.Context, inputPath string, controls []string, n int) error {
	bg, err := p.processor.LoadImageSmart(inputPath)
	if err != nil {
		return fmt.Errorf("failed to load background: %v", err)
	}
	bounds := bg.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	maskImg, record, box, err := p.masks.Generate(width, height)
	if err != nil {
		return fmt.Errorf("mask generation failed: %v", err)
	}

	positive, negative := p.prompts.Sample()

	initB64, err := p.processor.EncodeBase64PNG(bg)
	if err != nil {
		return fmt.Errorf("failed to encode background: %v", err)
	}
	maskB64, err := p.processor.EncodeBase64PNG(maskImg)
	if err != nil {
		return fmt.Errorf("failed to encode mask: %v", err)
	}

	var controlB64 string
	if len(controls) > 0 {
		ctrlPath := controls[p.rng.Intn(len(controls))]
		ctrl, err := p.processor.LoadImageSmart(ctrlPath)
		if err != nil {
			return fmt.Errorf("failed to load control image %s: %v", ctrlPath, err)
		}
		if controlB64, err = p.processor.EncodeBase64PNG(ctrl); err != nil {
			return fmt.Errorf("failed to encode control image: %v", err)
		}
	}

	job := &types.InpaintJob{
		InitB64:        initB64,
		MaskB64:        maskB64,
		ControlB64:     controlB64,
		Prompt:         positive,
		NegativePrompt: negative,
		Width:          width,
		Height:         height,
		Sampler: types.SamplerParams{
			Name:                  p.cfg.Sampler.Name,
			Steps:                 p.cfg.Sampler.Steps,
			CFGScale:              p.cfg.Sampler.CFGScale,
			DenoisingStrength:     p.cfg.Sampler.DenoisingStrength,
			MaskBlur:              p.cfg.Sampler.MaskBlur,
			InpaintingFill:        p.cfg.Sampler.InpaintingFill,
			InpaintFullRes:        p.cfg.Sampler.InpaintFullRes,
			InpaintFullResPadding: p.cfg.Sampler.InpaintFullResPadding,
			BatchSize:             p.cfg.Sampler.BatchSize,
			BatchCount:            p.cfg.Sampler.BatchCount,
			Seed:                  p.cfg.Sampler.Seed,
		},
		ControlNet: types.ControlNetParams{
			Enabled:       p.cfg.ControlNet.Enabled,
			LineartModel:  p.cfg.ControlNet.LineartModel,
			ColorModel:    p.cfg.ControlNet.ColorModel,
			DepthModel:    p.cfg.ControlNet.DepthModel,
			LineartWeight: p.cfg.ControlNet.LineartWeight,
			ColorWeight:   p.cfg.ControlNet.ColorWeight,
			DepthWeight:   p.cfg.ControlNet.DepthWeight,
			LowVRAM:       p.cfg.ControlNet.LowVRAM,
		},
	}

	result, err := p.backend.Img2Img(ctx, job)
	if err != nil {
		return err
	}
	if len(result.ImagesB64) == 0 {
		return fmt.Errorf("backend returned no images")
	}

	generated, err := p.processor.DecodeBase64Image(result.ImagesB64[0])
	if err != nil {
		return fmt.Errorf("failed to decode generated image: %v", err)
	}

	outPath := utils.GenerateOutputFilename(p.cfg.Output.OutputDir, "out", n, p.cfg.Output.Format)
	if err := p.processor.SaveImage(generated, outPath, p.cfg.Output.Format, p.cfg.Output.Quality, false); err != nil {
		return fmt.Errorf("failed to save image: %v", err)
	}

	annPath := utils.GenerateOutputFilename(p.cfg.Output.OutputDir, "out", n, "txt")
	if err := record.Save(annPath); err != nil {
		return fmt.Errorf("failed to save annotation: %v", err)
	}

	if p.cfg.Output.SaveComparison {
		cmp := p.processor.SideBySide(bg, generated)
		cmpPath := utils.GenerateOutputFilename(p.cfg.Output.OutputDir, "cmp", n, p.cfg.Output.Format)
		if err := p.processor.SaveImage(cmp, cmpPath, p.cfg.Output.Format, p.cfg.Output.Quality, false); err != nil {
			return fmt.Errorf("failed to save comparison: %v", err)
		}
	}

	if p.cfg.Output.DebugOverlay {
		dbg := p.processor.DrawBox(bg, box)
		dbgPath := utils.GenerateOutputFilename(p.cfg.Output.OutputDir, "dbg", n, "png")
		if err := p.processor.SaveImage(dbg, dbgPath, "png", p.cfg.Output.Quality, false); err != nil {
			return fmt.Errorf("failed to save debug overlay: %v", err)
		}
	}

	log.Printf("wrote %s", outPath)
	return nil
}
