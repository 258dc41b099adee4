package ai

import (
	"context"

	"github.com/amishk599/skillpulse/internal/model"
)

// NopClient is used when ai.enabled is false or no API key is configured.
// It reports itself unavailable so callers go straight to their fallback.
type NopClient struct{}

// NewNopClient returns a NopClient.
func NewNopClient() *NopClient {
	return &NopClient{}
}

// Generate always fails with model.ErrGenerationUnavailable.
func (n *NopClient) Generate(_ context.Context, _, _ string) (string, error) {
	return "", model.ErrGenerationUnavailable
}

func (n *NopClient) Available() bool { return false }
func (n *NopClient) Name() string    { return "nop" }
func (n *NopClient) Close() error    { return nil }
