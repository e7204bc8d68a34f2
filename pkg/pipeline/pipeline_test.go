package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/menta2k/firegen/pkg/annotation"
	"github.com/menta2k/firegen/pkg/config"
	"github.com/menta2k/firegen/pkg/mask"
	"github.com/menta2k/firegen/pkg/processing"
	"github.com/menta2k/firegen/pkg/prompt"
	"github.com/menta2k/firegen/pkg/types"
)

// fakeBackend records jobs and returns a fixed generated image
type fakeBackend struct {
	jobs     []*types.InpaintJob
	response string
	err      error
}

func (f *fakeBackend) Img2Img(ctx context.Context, job *types.InpaintJob) (*types.InpaintResult, error) {
	f.jobs = append(f.jobs, job)
	if f.err != nil {
		return nil, f.err
	}
	return &types.InpaintResult{ImagesB64: []string{f.response}}, nil
}

func (f *fakeBackend) Ping(ctx context.Context) error {
	return f.err
}

func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	return img
}

func testSetup(t *testing.T, nInputs int) (*config.Config, *fakeBackend) {
	t.Helper()
	base := t.TempDir()
	proc := processing.NewProcessor()

	inDir := filepath.Join(base, "input")
	if err := os.MkdirAll(inDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < nInputs; i++ {
		path := filepath.Join(inDir, "bg_"+string(rune('a'+i))+".png")
		if err := proc.SaveImage(createTestImage(64, 48), path, "png", 90, false); err != nil {
			t.Fatalf("failed to write test input: %v", err)
		}
	}

	cfg := config.Default()
	cfg.Output.InputDir = inDir
	cfg.Output.OutputDir = filepath.Join(base, "output")
	cfg.Mask.Seed = 7
	cfg.Mask.BlurRadius = 0

	response, err := proc.EncodeBase64PNG(createTestImage(64, 48))
	if err != nil {
		t.Fatalf("failed to encode fake response: %v", err)
	}

	return cfg, &fakeBackend{response: response}
}

func newTestPipeline(t *testing.T, cfg *config.Config, backend *fakeBackend) *Pipeline {
	t.Helper()
	masks, err := mask.New(cfg.Mask.MinFrac, cfg.Mask.MaxFrac, cfg.Mask.BlurRadius, cfg.Mask.Seed)
	if err != nil {
		t.Fatalf("mask.New failed: %v", err)
	}
	prompts, err := prompt.NewSampler([]string{"fire"}, []string{"blurry"}, nil,
		prompt.DefaultSuffix, prompt.DefaultNegativeSuffix, 7)
	if err != nil {
		t.Fatalf("prompt.NewSampler failed: %v", err)
	}
	return New(cfg, processing.NewProcessor(), masks, prompts, backend)
}

func TestRunWritesPairedOutputs(t *testing.T) {
	cfg, backend := testSetup(t, 1)
	p := newTestPipeline(t, cfg, backend)

	summary, err := p.Run(context.Background(), 3)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Generated != 3 || summary.Failed != 0 {
		t.Errorf("summary = %+v, want 3 generated", summary)
	}
	if len(backend.jobs) != 3 {
		t.Errorf("backend received %d jobs, want 3", len(backend.jobs))
	}

	for n := 1; n <= 3; n++ {
		imgPath := filepath.Join(cfg.Output.OutputDir, "out_"+strconv.Itoa(n)+".png")
		if _, err := os.Stat(imgPath); err != nil {
			t.Errorf("missing output image %s", imgPath)
		}

		annPath := filepath.Join(cfg.Output.OutputDir, "out_"+strconv.Itoa(n)+".txt")
		rec, err := annotation.Load(annPath)
		if err != nil {
			t.Errorf("missing or invalid annotation %s: %v", annPath, err)
			continue
		}
		if rec.Class != 0 {
			t.Errorf("annotation class = %d, want 0", rec.Class)
		}
	}
}

func TestRunJobFieldsPopulated(t *testing.T) {
	cfg, backend := testSetup(t, 1)
	p := newTestPipeline(t, cfg, backend)

	if _, err := p.Run(context.Background(), 1); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	job := backend.jobs[0]
	if job.InitB64 == "" || job.MaskB64 == "" {
		t.Error("job missing init or mask image")
	}
	if job.Width != 64 || job.Height != 48 {
		t.Errorf("job dimensions %dx%d, want 64x48", job.Width, job.Height)
	}
	if !strings.HasPrefix(job.Prompt, "fire") {
		t.Errorf("job prompt = %q", job.Prompt)
	}
	if job.Sampler.Name != "Euler" || job.Sampler.Steps != 20 {
		t.Errorf("sampler params not taken from config: %+v", job.Sampler)
	}
	if !job.ControlNet.Enabled {
		t.Error("controlnet should be enabled by default")
	}
}

func TestRunDistributesAcrossInputs(t *testing.T) {
	cfg, backend := testSetup(t, 2)
	p := newTestPipeline(t, cfg, backend)

	summary, err := p.Run(context.Background(), 5)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Generated != 5 {
		t.Errorf("generated %d, want 5", summary.Generated)
	}
	if len(backend.jobs) != 5 {
		t.Fatalf("backend received %d jobs, want 5", len(backend.jobs))
	}

	// 5 across 2 inputs: out_1..out_5 all exist regardless of which
	// background produced them
	for n := 1; n <= 5; n++ {
		annPath := filepath.Join(cfg.Output.OutputDir, "out_"+strconv.Itoa(n)+".txt")
		if _, err := os.Stat(annPath); err != nil {
			t.Errorf("missing annotation %s", annPath)
		}
	}
}

func TestRunContinuesOnFailure(t *testing.T) {
	cfg, backend := testSetup(t, 1)
	backend.err = errors.New("boom")
	p := newTestPipeline(t, cfg, backend)

	summary, err := p.Run(context.Background(), 2)
	if err != nil {
		t.Fatalf("Run returned error, want failures counted: %v", err)
	}
	if summary.Failed != 2 || summary.Generated != 0 {
		t.Errorf("summary = %+v, want 2 failed", summary)
	}
}

func TestRunCancelledContext(t *testing.T) {
	cfg, backend := testSetup(t, 1)
	p := newTestPipeline(t, cfg, backend)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Run(ctx, 5); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunEmptyInputDir(t *testing.T) {
	cfg, backend := testSetup(t, 1)
	cfg.Output.InputDir = t.TempDir()
	p := newTestPipeline(t, cfg, backend)

	if _, err := p.Run(context.Background(), 1); err == nil {
		t.Error("expected error for empty input directory")
	}
}

func TestRunInvalidCount(t *testing.T) {
	cfg, backend := testSetup(t, 1)
	p := newTestPipeline(t, cfg, backend)

	if _, err := p.Run(context.Background(), 0); err == nil {
		t.Error("expected error for zero count")
	}
}

func TestRunSaveComparison(t *testing.T) {
	cfg, backend := testSetup(t, 1)
	cfg.Output.SaveComparison = true
	p := newTestPipeline(t, cfg, backend)

	if _, err := p.Run(context.Background(), 1); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	cmpPath := filepath.Join(cfg.Output.OutputDir, "cmp_1.png")
	if _, err := os.Stat(cmpPath); err != nil {
		t.Errorf("missing comparison image %s", cmpPath)
	}
}

func TestRunControlDir(t *testing.T) {
	cfg, backend := testSetup(t, 1)
	proc := processing.NewProcessor()

	ctrlDir := filepath.Join(t.TempDir(), "control")
	if err := os.MkdirAll(ctrlDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := proc.SaveImage(createTestImage(32, 32), filepath.Join(ctrlDir, "fire.png"), "png", 90, false); err != nil {
		t.Fatal(err)
	}
	cfg.Output.ControlDir = ctrlDir

	p := newTestPipeline(t, cfg, backend)
	if _, err := p.Run(context.Background(), 1); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if backend.jobs[0].ControlB64 == "" {
		t.Error("job missing control image despite configured control dir")
	}
}

