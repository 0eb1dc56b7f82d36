package sequence

import (
	"context"

	"github.com/felixgeelhaar/stepwise/internal/ports"
)

// discardLogger is used when no logger is configured.
type discardLogger struct{}

func (discardLogger) Debug(context.Context, string, ...ports.Field) {}
func (discardLogger) Info(context.Context, string, ...ports.Field)  {}
func (discardLogger) Warn(context.Context, string, ...ports.Field)  {}
func (discardLogger) Error(context.Context, string, ...ports.Field) {}
func (d discardLogger) With(...ports.Field) ports.Logger            { return d }
func (discardLogger) Level() ports.Level                            { return ports.LevelError }
func (discardLogger) SetLevel(ports.Level)                          {}
