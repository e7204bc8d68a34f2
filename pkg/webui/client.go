// Package webui implements the AUTOMATIC1111 Stable Diffusion WebUI backend.
// It speaks the /sdapi/v1/img2img JSON API with the ControlNet extension
// fields attached to each request.
package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/menta2k/firegen/pkg/types"
)

// DefaultURL is the WebUI address when none is configured
const DefaultURL = "http://127.0.0.1:7860"

const img2imgEndpoint = "/sdapi/v1/img2img"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// img2imgRequest mirrors the WebUI img2img API payload
type img2imgRequest struct {
	InitImages            []string         `json:"init_images"`
	Mask                  string           `json:"mask,omitempty"`
	MaskBlur              int              `json:"mask_blur"`
	DenoisingStrength     float64          `json:"denoising_strength"`
	InpaintingFill        int              `json:"inpainting_fill"`
	InpaintFullRes        bool             `json:"inpaint_full_res"`
	InpaintFullResPadding int              `json:"inpaint_full_res_padding"`
	Prompt                string           `json:"prompt"`
	NegativePrompt        string           `json:"negative_prompt"`
	SamplerName           string           `json:"sampler_name"`
	Steps                 int              `json:"steps"`
	CFGScale              float64          `json:"cfg_scale"`
	Seed                  int64            `json:"seed"`
	BatchSize             int              `json:"batch_size,omitempty"`
	NIter                 int              `json:"n_iter,omitempty"`
	Width                 int              `json:"width"`
	Height                int              `json:"height"`
	ControlNetUnits       []ControlNetUnit `json:"controlnet_units,omitempty"`
}

// img2imgResponse mirrors the WebUI img2img API response
type img2imgResponse struct {
	Images []string `json:"images"`
	Info   string   `json:"info"`
}

// NewClient creates a WebUI client. An empty URL falls back to DefaultURL.
// Generation on CPU-bound hosts can take minutes, so the timeout is generous.
func NewClient(serverURL string, timeout time.Duration) (*Client, error) {
	if serverURL == "" {
		serverURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &Client{
		baseURL: strings.TrimSuffix(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Img2Img submits one inpainting job and returns the raw base64 images
func (c *Client) Img2Img(ctx context.Context, job *types.InpaintJob) (*types.InpaintResult, error) {
	req := img2imgRequest{
		InitImages:            []string{job.InitB64},
		Mask:                  job.MaskB64,
		MaskBlur:              job.Sampler.MaskBlur,
		DenoisingStrength:     job.Sampler.DenoisingStrength,
		InpaintingFill:        job.Sampler.InpaintingFill,
		InpaintFullRes:        job.Sampler.InpaintFullRes,
		InpaintFullResPadding: job.Sampler.InpaintFullResPadding,
		Prompt:                job.Prompt,
		NegativePrompt:        job.NegativePrompt,
		SamplerName:           job.Sampler.Name,
		Steps:                 job.Sampler.Steps,
		CFGScale:              job.Sampler.CFGScale,
		Seed:                  job.Sampler.Seed,
		BatchSize:             job.Sampler.BatchSize,
		NIter:                 job.Sampler.BatchCount,
		Width:                 job.Width,
		Height:                job.Height,
	}

	if job.ControlNet.Enabled {
		// The structural unit follows the mask unless a separate control
		// image was supplied for this job.
		lineartInput := job.MaskB64
		if job.ControlB64 != "" {
			lineartInput = job.ControlB64
		}
		req.ControlNetUnits = BuildControlNetUnits(job.InitB64, lineartInput, job.ControlNet)
	}

	respBody, err := c.sendRequest(ctx, img2imgEndpoint, req)
	if err != nil {
		return nil, fmt.Errorf("img2img request failed: %v", err)
	}

	var resp img2imgResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse img2img response: %v", err)
	}

	if len(resp.Images) == 0 {
		return nil, fmt.Errorf("no images in img2img response")
	}

	return &types.InpaintResult{
		ImagesB64: resp.Images,
		Info:      resp.Info,
	}, nil
}

// Ping checks that the WebUI API is reachable
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/sdapi/v1/progress", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webui unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webui returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) sendRequest(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
