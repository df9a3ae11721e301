package gateway

import (
	"fmt"

	"github.com/medbench/medbench/internal/models"
)

// UpstreamError marks a vendor-side failure for a single call. It is
// recorded per attempt; the batch continues.
type UpstreamError struct {
	ModelID models.ModelID
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream call to %s failed: %v", e.ModelID, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ConfigurationError marks a request for a model outside the enumerated
// set, or a missing credential at startup. Never recoverable mid-request.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}
