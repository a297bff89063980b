package dispatcher

import (
	"crypto/tls"
	"time"

	"github.com/valyala/fasthttp"
)

// newHTTPClient builds the single persistent fasthttp client a Transport
// keeps for its lifetime. Connections are reused across the whole run;
// per-call deadlines are applied at request time.
func newHTTPClient() *fasthttp.Client {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		MaxVersion:         tls.VersionTLS13,
		ClientSessionCache: tls.NewLRUClientSessionCache(32),
	}

	return &fasthttp.Client{
		MaxConnsPerHost:     16,
		MaxIdleConnDuration: 180 * time.Second,
		ReadBufferSize:      65536,
		WriteBufferSize:     65536,
		MaxResponseBodySize: 16 * 1024 * 1024,

		// The transport owns retries; the client must fail fast.
		MaxIdemponentCallAttempts: 1,

		DialDualStack: true,
		TLSConfig:     tlsConfig,

		NoDefaultUserAgentHeader: true,
	}
}
