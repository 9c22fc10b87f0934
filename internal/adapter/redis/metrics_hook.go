package redis

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

// CommandRecorder receives one observation per Redis round trip.
type CommandRecorder interface {
	ObserveCommand(operation, status string, d time.Duration)
	ObserveDialError()
}

// MetricsHook implements redis.Hook and times every command and pipeline.
type MetricsHook struct {
	rec   CommandRecorder
	clock clockwork.Clock
}

var _ goredis.Hook = (*MetricsHook)(nil)

func NewMetricsHook(rec CommandRecorder, clock clockwork.Clock) *MetricsHook {
	return &MetricsHook{rec: rec, clock: clock}
}

func (h *MetricsHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.rec.ObserveDialError()
		}
		return conn, err
	}
}

func (h *MetricsHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		start := h.clock.Now()
		err := next(ctx, cmd)
		h.rec.ObserveCommand(cmd.Name(), status(err), h.clock.Since(start))
		return err
	}
}

// ProcessPipelineHook records a pipeline as a single "pipeline" operation.
func (h *MetricsHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		start := h.clock.Now()
		err := next(ctx, cmds)
		h.rec.ObserveCommand("pipeline", status(err), h.clock.Since(start))
		return err
	}
}

func status(err error) string {
	if err != nil && !errors.Is(err, goredis.Nil) {
		return "error"
	}
	return "success"
}
