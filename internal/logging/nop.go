package logging

import "context"

// NopLogger discards everything. Useful in tests.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (n *NopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (n *NopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (n *NopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (n *NopLogger) With(args ...any) Logger                            { return n }
