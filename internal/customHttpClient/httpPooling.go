package customHttpClient

import (
	"net/http"
	"sync"

	"policyrag/internal/config"
)

var once sync.Once
var pooled *http.Client

// GetPooledClient returns the shared connection-reusing client handed to the
// OpenAI and Gemini SDKs. Qdrant speaks gRPC and manages its own pool.
func GetPooledClient() *http.Client {
	once.Do(func() {
		pooled = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        config.MaxIdleConns,
				MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
				IdleConnTimeout:     config.IdleConnTimeout,
			},
		}
	})
	return pooled
}
