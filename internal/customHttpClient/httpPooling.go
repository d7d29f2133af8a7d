package customHttpClient

import (
	"net/http"

	"github.com/cosmicai/RagAPI/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// NewPooledClient returns a client sharing the pooled transport. Provider
// SDKs reuse connections through it instead of each holding their own pool.
func NewPooledClient() *http.Client {
	return &http.Client{Transport: customTransport}
}
