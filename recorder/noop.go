package recorder

import "context"

// NoopRecorder is a no-op implementation used when no journal is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) Record(_ context.Context, _ *Event) error { return nil }
func (n *NoopRecorder) Close() error                             { return nil }
