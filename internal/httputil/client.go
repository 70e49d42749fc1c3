package httputil

import (
	"net/http"
	"time"
)

type Config struct {
	RequestTimeout        time.Duration `envconfig:"HTTP_REQUEST_TIMEOUT" default:"10s"`
	TLSHandshakeTimeout   time.Duration `envconfig:"HTTP_TLS_HANDSHAKE_TIMEOUT" default:"5s"`
	ResponseHeaderTimeout time.Duration `envconfig:"HTTP_RESPONSE_HEADER_TIMEOUT" default:"5s"`
	MaxIdleConns          int           `envconfig:"HTTP_MAX_IDLE_CONNS" default:"16"`
}

// NewClientFromConfig builds an outbound client with explicit timeouts so
// a stuck target can never wedge the notifier loop.
func NewClientFromConfig(cfg Config) *http.Client {
	return &http.Client{
		Timeout: cfg.RequestTimeout,
		Transport: &http.Transport{
			TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
			ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
			MaxIdleConns:          cfg.MaxIdleConns,
		},
	}
}
