package config

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

const DefaultAddr = "0.0.0.0:5000"

var secretEnvVars = []string{"EARMARK_SECRET", "SECRET_KEY"}

type Server struct {
	addr   string
	port   string
	secret string
}

func (x *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address",
			Category:    "Server",
			Value:       DefaultAddr,
			Sources:     cli.EnvVars("EARMARK_ADDR"),
			Destination: &x.addr,
		},
		&cli.StringFlag{
			Name:        "port",
			Usage:       "Listen port, overrides the port of --addr",
			Category:    "Server",
			Sources:     cli.EnvVars("PORT"),
			Destination: &x.port,
		},
		&cli.StringFlag{
			Name:        "secret",
			Usage:       "Process secret (random when empty)",
			Category:    "Server",
			Sources:     cli.EnvVars(secretEnvVars...),
			Destination: &x.secret,
		},
	}
}

func (x Server) LogValue() slog.Value {
	addr, _ := x.Addr()
	return slog.GroupValue(
		slog.String("addr", addr),
		slog.Bool("secret_configured", orEnv(x.secret, secretEnvVars...) != ""),
	)
}

// Addr returns the listen address with --port applied.
func (x Server) Addr() (string, error) {
	addr := x.addr
	if addr == "" {
		addr = DefaultAddr
	}
	if x.port == "" {
		return addr, nil
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return "", goerr.Wrap(err, "invalid listen address", goerr.V("addr", addr))
	}
	return net.JoinHostPort(host, x.port), nil
}

// Secret returns the configured secret, or a random 32-byte hex value.
func (x *Server) Secret() (string, error) {
	if secret := orEnv(x.secret, secretEnvVars...); secret != "" {
		x.secret = secret
		return x.secret, nil
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", goerr.Wrap(err, "failed to generate secret")
	}
	x.secret = hex.EncodeToString(buf)
	return x.secret, nil
}
