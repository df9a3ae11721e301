// Package stream feeds benchmark requests from a message stream into the
// run pipeline.
package stream

import "context"

// StreamConsumer pulls benchmark events off a stream and runs each one
// through the pipeline until its context is cancelled.
type StreamConsumer interface {
	// Setup provisions the consumer group; safe to call on every start.
	Setup(ctx context.Context) error
	// Start blocks, processing events until ctx is done.
	Start(ctx context.Context) error
	Stop() error
}
