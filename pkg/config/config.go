package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/menta2k/firegen/pkg/mask"
	"github.com/menta2k/firegen/pkg/prompt"
	"github.com/menta2k/firegen/pkg/webui"
)

// Config holds the application configuration. Every generation
// hyperparameter lives here rather than in package-level constants.
type Config struct {
	Server     ServerConfig     `json:"server"`
	Mask       MaskConfig       `json:"mask"`
	Sampler    SamplerConfig    `json:"sampler"`
	ControlNet ControlNetConfig `json:"controlnet"`
	Prompt     PromptConfig     `json:"prompt"`
	Output     OutputConfig     `json:"output"`
}

// ServerConfig holds the WebUI endpoint settings
type ServerConfig struct {
	URL            string `json:"url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// MaskConfig holds the random mask generator settings
type MaskConfig struct {
	MinFrac    float64 `json:"min_frac"`
	MaxFrac    float64 `json:"max_frac"`
	BlurRadius int     `json:"blur_radius"`
	Seed       int64   `json:"seed"`
}

// SamplerConfig holds the diffusion sampler hyperparameters
type SamplerConfig struct {
	Name                  string  `json:"name"`
	Steps                 int     `json:"steps"`
	CFGScale              float64 `json:"cfg_scale"`
	DenoisingStrength     float64 `json:"denoising_strength"`
	MaskBlur              int     `json:"mask_blur"`
	InpaintingFill        int     `json:"inpainting_fill"`
	InpaintFullRes        bool    `json:"inpaint_full_res"`
	InpaintFullResPadding int     `json:"inpaint_full_res_padding"`
	BatchSize             int     `json:"batch_size"`
	BatchCount            int     `json:"batch_count"`
	Seed                  int64   `json:"seed"`
}

// ControlNetConfig holds the conditioning stack settings
type ControlNetConfig struct {
	Enabled       bool    `json:"enabled"`
	LineartModel  string  `json:"lineart_model"`
	ColorModel    string  `json:"color_model"`
	DepthModel    string  `json:"depth_model"`
	LineartWeight float64 `json:"lineart_weight"`
	ColorWeight   float64 `json:"color_weight"`
	DepthWeight   float64 `json:"depth_weight"`
	LowVRAM       bool    `json:"low_vram"`
}

// PromptConfig holds the prompt library settings
type PromptConfig struct {
	PromptFile         string   `json:"prompt_file"`
	NegativePromptFile string   `json:"negative_prompt_file"`
	Styles             []string `json:"styles"`
	Suffix             string   `json:"suffix"`
	NegativeSuffix     string   `json:"negative_suffix"`
	Seed               int64    `json:"seed"`
}

// OutputConfig holds the input/output directory settings
type OutputConfig struct {
	InputDir       string `json:"input_dir"`
	ControlDir     string `json:"control_dir"`
	OutputDir      string `json:"output_dir"`
	Format         string `json:"format"`
	Quality        int    `json:"quality"`
	SaveComparison bool   `json:"save_comparison"`
	DebugOverlay   bool   `json:"debug_overlay"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:            webui.DefaultURL,
			TimeoutSeconds: 300,
		},
		Mask: MaskConfig{
			MinFrac:    mask.DefaultMinFrac,
			MaxFrac:    mask.DefaultMaxFrac,
			BlurRadius: mask.DefaultBlurRadius,
		},
		Sampler: SamplerConfig{
			Name:                  "Euler",
			Steps:                 20,
			CFGScale:              7,
			DenoisingStrength:     0.60,
			MaskBlur:              4,
			InpaintingFill:        1, // latent noise
			InpaintFullRes:        false,
			InpaintFullResPadding: 32,
			BatchSize:             1,
			BatchCount:            1,
			Seed:                  -1,
		},
		ControlNet: ControlNetConfig{
			Enabled:       true,
			LineartModel:  webui.DefaultLineartModel,
			ColorModel:    webui.DefaultColorModel,
			DepthModel:    webui.DefaultDepthModel,
			LineartWeight: 1.0,
			ColorWeight:   0.8,
			DepthWeight:   0.5,
			LowVRAM:       true,
		},
		Prompt: PromptConfig{
			PromptFile:         "prompt.txt",
			NegativePromptFile: "negative_prompt.txt",
			Suffix:             prompt.DefaultSuffix,
			NegativeSuffix:     prompt.DefaultNegativeSuffix,
		},
		Output: OutputConfig{
			InputDir:       "input",
			ControlDir:     "",
			OutputDir:      "output",
			Format:         "png",
			Quality:        90,
			SaveComparison: false,
			DebugOverlay:   false,
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url cannot be empty")
	}

	if c.Server.TimeoutSeconds < 1 {
		return fmt.Errorf("server.timeout_seconds must be positive")
	}

	if c.Mask.MinFrac <= 0 || c.Mask.MinFrac > 1 {
		return fmt.Errorf("mask.min_frac must be in (0,1]")
	}

	if c.Mask.MaxFrac <= 0 || c.Mask.MaxFrac > 1 {
		return fmt.Errorf("mask.max_frac must be in (0,1]")
	}

	if c.Mask.MinFrac > c.Mask.MaxFrac {
		return fmt.Errorf("mask.min_frac cannot exceed mask.max_frac")
	}

	if c.Mask.BlurRadius < 0 {
		return fmt.Errorf("mask.blur_radius cannot be negative")
	}

	if c.Sampler.Steps < 1 {
		return fmt.Errorf("sampler.steps must be positive")
	}

	if c.Sampler.DenoisingStrength < 0 || c.Sampler.DenoisingStrength > 1 {
		return fmt.Errorf("sampler.denoising_strength must be between 0 and 1")
	}

	if c.Sampler.CFGScale <= 0 {
		return fmt.Errorf("sampler.cfg_scale must be positive")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	if c.Output.InputDir == "" {
		return fmt.Errorf("output.input_dir cannot be empty")
	}

	if c.Output.OutputDir == "" {
		return fmt.Errorf("output.output_dir cannot be empty")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "firegen", "config.json")
}
