package webui

import "github.com/menta2k/firegen/pkg/types"

// Default ControlNet model identifiers (WebUI model-hash naming)
const (
	DefaultLineartModel = "control_v11p_sd15_lineart [43d4be0d]"
	DefaultColorModel   = "control_v1p_sd15_color [c86c5ea7]"
	DefaultDepthModel   = "control_v11p_sd15_depth [cfd03158]"
)

// ControlNetUnit mirrors one entry of the ControlNet extension's
// controlnet_units request field
type ControlNetUnit struct {
	InputImage        string  `json:"input_image"`
	Module            string  `json:"module"`
	Model             string  `json:"model"`
	Weight            float64 `json:"weight"`
	ResizeMode        int     `json:"resize_mode"`
	ControlMode       int     `json:"control_mode"`
	GuessMode         bool    `json:"guess_mode"`
	LowVRAM           bool    `json:"low_vram"`
	ConditioningScale float64 `json:"conditioning_scale"`
}

// BuildControlNetUnits assembles the triple conditioning stack: a lineart
// unit steering the shape of the inpainted region, a reference-only unit
// carrying the background's color grading, and a depth unit aligning light
// and shadow. Color and depth always condition on the background image.
func BuildControlNetUnits(initB64, lineartB64 string, p types.ControlNetParams) []ControlNetUnit {
	return []ControlNetUnit{
		{
			InputImage:        lineartB64,
			Module:            "lineart",
			Model:             p.LineartModel,
			Weight:            p.LineartWeight,
			ResizeMode:        1,
			ControlMode:       0,
			GuessMode:         false,
			LowVRAM:           p.LowVRAM,
			ConditioningScale: 1.0,
		},
		{
			InputImage:        initB64,
			Module:            "reference_only",
			Model:             p.ColorModel,
			Weight:            p.ColorWeight,
			ResizeMode:        0,
			ControlMode:       0,
			GuessMode:         false,
			LowVRAM:           p.LowVRAM,
			ConditioningScale: 1.0,
		},
		{
			InputImage:        initB64,
			Module:            "depth",
			Model:             p.DepthModel,
			Weight:            p.DepthWeight,
			ResizeMode:        0,
			ControlMode:       0,
			GuessMode:         true,
			LowVRAM:           p.LowVRAM,
			ConditioningScale: 1.0,
		},
	}
}
