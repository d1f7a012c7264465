package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/earmark/pkg/repository/memory"
	"github.com/urfave/cli/v3"
)

type Session struct {
	capacity int
}

func (x *Session) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "session-capacity",
			Usage:       "Maximum number of kept sessions, oldest evicted first (0: unbounded)",
			Category:    "Session",
			Sources:     cli.EnvVars("EARMARK_SESSION_CAPACITY"),
			Destination: &x.capacity,
		},
	}
}

func (x Session) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("capacity", x.capacity),
	)
}

func (x *Session) Configure() (*memory.Memory, error) {
	if x.capacity < 0 {
		return nil, goerr.New("session capacity must not be negative", goerr.V("capacity", x.capacity))
	}
	if x.capacity == 0 {
		return memory.New(), nil
	}
	return memory.New(memory.WithCapacity(x.capacity)), nil
}
