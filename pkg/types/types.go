package types

// PixelBox represents an axis-aligned rectangle in pixel coordinates.
// The box spans [X0,X1) horizontally and [Y0,Y1) vertically.
type PixelBox struct {
	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
}

// Width returns the box width in pixels
func (b PixelBox) Width() int {
	return b.X1 - b.X0
}

// Height returns the box height in pixels
func (b PixelBox) Height() int {
	return b.Y1 - b.Y0
}

// Center returns the box center in pixel coordinates
func (b PixelBox) Center() (float64, float64) {
	return float64(b.X0+b.X1) / 2, float64(b.Y0+b.Y1) / 2
}

// SamplerParams holds the diffusion sampler settings sent with every
// inpainting request
type SamplerParams struct {
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

// ControlNetParams configures the conditioning stack attached to a request
type ControlNetParams struct {
	Enabled       bool    `json:"enabled"`
	LineartModel  string  `json:"lineart_model"`
	ColorModel    string  `json:"color_model"`
	DepthModel    string  `json:"depth_model"`
	LineartWeight float64 `json:"lineart_weight"`
	ColorWeight   float64 `json:"color_weight"`
	DepthWeight   float64 `json:"depth_weight"`
	LowVRAM       bool    `json:"low_vram"`
}

// InpaintJob is a single generation request handed to a backend client.
// Images are base64-encoded PNG. ControlB64 is optional; when set it replaces
// the mask as the structural (lineart) conditioning input.
type InpaintJob struct {
	InitB64        string
	MaskB64        string
	ControlB64     string
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Sampler        SamplerParams
	ControlNet     ControlNetParams
}

// InpaintResult contains the backend response for one job
type InpaintResult struct {
	ImagesB64 []string
	Info      string
}
