package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/menta2k/firegen"
	"github.com/menta2k/firegen/pkg/config"
)

func main() {
	var count int
	var inDir, outDir, ctrlDir string
	var promptFile, negPromptFile, styles string
	var cfgFile, url, format string
	var seed int64
	var minFrac, maxFrac float64
	var blur, timeout int
	var compare, debug, skipPing bool

	flag.IntVar(&count, "c", 0, "total number of images to generate (required)")
	flag.StringVar(&inDir, "i", "input", "directory of background images (jpg/png/webp)")
	flag.StringVar(&outDir, "o", "output", "output directory")
	flag.StringVar(&ctrlDir, "ci", "", "optional directory of control images for structural conditioning")
	flag.StringVar(&promptFile, "p", "prompt.txt", "prompt file (one entry per line)")
	flag.StringVar(&negPromptFile, "np", "negative_prompt.txt", "negative prompt file")
	flag.StringVar(&styles, "style", "", "comma-separated style keywords appended to every prompt")
	flag.StringVar(&cfgFile, "config", "", "JSON config file (flags override its values)")
	flag.StringVar(&url, "url", "", "WebUI server URL (default http://127.0.0.1:7860)")
	flag.StringVar(&format, "ext", "png", "output format: png|jpg|webp")
	flag.Int64Var(&seed, "seed", 0, "random seed for mask/prompt sampling, 0=time-based")
	flag.Float64Var(&minFrac, "minfrac", 0.20, "minimum mask size as a fraction of each dimension")
	flag.Float64Var(&maxFrac, "maxfrac", 0.50, "maximum mask size as a fraction of each dimension")
	flag.IntVar(&blur, "blur", 4, "Gaussian blur radius applied to the mask, 0=hard edges")
	flag.IntVar(&timeout, "timeout", 300, "per-request timeout in seconds")
	flag.BoolVar(&compare, "compare", false, "save side-by-side comparison images")
	flag.BoolVar(&debug, "debug", false, "save debug overlays of the sampled mask box")
	flag.BoolVar(&skipPing, "noping", false, "skip the startup server reachability check")

	flag.Parse()
	if count <= 0 {
		log.Fatalf("usage: %s -c count [-i indir] [-o outdir] [-p prompt.txt] [-url server_url]", filepath.Base(os.Args[0]))
	}

	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.LoadFromFile(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	cfg.Output.InputDir = inDir
	cfg.Output.OutputDir = outDir
	cfg.Output.ControlDir = ctrlDir
	cfg.Output.Format = format
	cfg.Output.SaveComparison = compare
	cfg.Output.DebugOverlay = debug
	cfg.Prompt.PromptFile = promptFile
	cfg.Prompt.NegativePromptFile = negPromptFile
	cfg.Mask.MinFrac = minFrac
	cfg.Mask.MaxFrac = maxFrac
	cfg.Mask.BlurRadius = blur
	cfg.Mask.Seed = seed
	cfg.Prompt.Seed = seed
	cfg.Server.TimeoutSeconds = timeout
	if url != "" {
		cfg.Server.URL = url
	}
	if styles != "" {
		for _, s := range strings.Split(styles, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Prompt.Styles = append(cfg.Prompt.Styles, s)
			}
		}
	}

	gen, err := firegen.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	ctx := context.Background()
	if !skipPing {
		if err := gen.Ping(ctx); err != nil {
			log.Fatalf("WebUI not reachable at %s: %v", cfg.Server.URL, err)
		}
	}

	summary, err := gen.Run(ctx, count)
	if err != nil {
		log.Fatalf("Batch failed: %v", err)
	}

	log.Printf("done: generated=%d failed=%d", summary.Generated, summary.Failed)
	if summary.Failed > 0 {
		os.Exit(1)
	}
}
