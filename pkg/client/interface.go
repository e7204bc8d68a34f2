package client

import (
	"context"

	"github.com/menta2k/firegen/pkg/types"
)

// InpaintClient is the seam between the pipeline and an image-generation
// backend. The only implementation today talks to the AUTOMATIC1111 WebUI
// API, but the interface keeps the backend swappable.
type InpaintClient interface {
	Img2Img(ctx context.Context, job *types.InpaintJob) (*types.InpaintResult, error)
	Ping(ctx context.Context) error
}
