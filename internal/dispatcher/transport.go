package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the Discord REST base path.
	DefaultBaseURL = "https://discord.com/api/v10"

	requestTimeout = 10 * time.Second
	maxAttempts    = 5

	userAgent = "GuildMirror/1.0"
)

// Transport issues one logical API call at a time: pace, request,
// observe reported quota, classify the response, retry what is
// transient. It owns one persistent HTTP client for its lifetime.
type Transport struct {
	client  *fasthttp.Client
	pacer   *Pacer
	token   string
	baseURL string
	log     *zap.Logger

	// Backoff bases, scaled linearly by attempt count.
	backoffNet    time.Duration
	backoffServer time.Duration
	rateBuffer    time.Duration
}

func NewTransport(token, baseURL string, log *zap.Logger) *Transport {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Transport{
		client:        newHTTPClient(),
		pacer:         NewPacer(),
		token:         token,
		baseURL:       baseURL,
		log:           log,
		backoffNet:    1500 * time.Millisecond,
		backoffServer: 2 * time.Second,
		rateBuffer:    time.Second,
	}
}

// Do performs one logical call and returns the raw response document.
// A no-content success returns a nil document. 403 and 404 map to
// ErrNotAuthorized and ErrNotFound without retry; rate limits, server
// errors and network failures are retried until the attempt budget runs
// out, after which ErrExhausted is returned.
func (t *Transport) Do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := t.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		status, respBody, err := t.roundTrip(method, path, body)
		if err != nil {
			t.log.Warn("request failed",
				zap.String("method", method),
				zap.String("path", path),
				zap.Error(err))
			if err := sleepCtx(ctx, scaled(t.backoffNet, attempt)); err != nil {
				return nil, err
			}
			continue
		}

		switch {
		case status == fasthttp.StatusTooManyRequests:
			wait := retryAfter(respBody) + t.rateBuffer
			t.log.Warn("rate limited",
				zap.String("path", path),
				zap.Duration("wait", wait))
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, err
			}

		case status == fasthttp.StatusForbidden:
			t.log.Error("permission denied", zap.String("path", path))
			return nil, fmt.Errorf("%s %s: %w", method, path, ErrNotAuthorized)

		case status == fasthttp.StatusNotFound:
			t.log.Error("resource not found", zap.String("path", path))
			return nil, fmt.Errorf("%s %s: %w", method, path, ErrNotFound)

		case status >= 200 && status < 300:
			if status == fasthttp.StatusNoContent || len(respBody) == 0 {
				return nil, nil
			}
			return respBody, nil

		case status >= 500:
			t.log.Warn("server error",
				zap.String("path", path),
				zap.Int("status", status))
			if err := sleepCtx(ctx, scaled(t.backoffServer, attempt)); err != nil {
				return nil, err
			}

		default:
			t.log.Warn("unexpected status",
				zap.String("path", path),
				zap.Int("status", status),
				zap.ByteString("body", respBody))
		}
	}

	t.log.Error("call abandoned",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("attempts", maxAttempts))
	return nil, fmt.Errorf("%s %s after %d attempts: %w", method, path, maxAttempts, ErrExhausted)
}

// roundTrip performs a single HTTP exchange and feeds the pacer with the
// quota headers of the response.
func (t *Transport) roundTrip(method, path string, body []byte) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(t.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Authorization", t.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.SetBody(body)
	}

	if err := t.client.DoTimeout(req, resp, requestTimeout); err != nil {
		return 0, nil, err
	}

	t.pacer.Observe(
		string(resp.Header.Peek("X-RateLimit-Remaining")),
		string(resp.Header.Peek("X-RateLimit-Reset-After")),
		string(resp.Header.Peek("X-RateLimit-Global")),
	)

	// The response buffer is recycled on release; keep our own copy.
	return resp.StatusCode(), append([]byte(nil), resp.Body()...), nil
}

// Close releases idle connections. Safe to call more than once.
func (t *Transport) Close() {
	t.client.CloseIdleConnections()
}

// retryAfter reads the 429 error envelope; unparsable bodies fall back
// to two seconds.
func retryAfter(body []byte) time.Duration {
	var envelope struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := sonic.Unmarshal(body, &envelope); err != nil || envelope.RetryAfter <= 0 {
		return 2 * time.Second
	}
	return time.Duration(envelope.RetryAfter * float64(time.Second))
}

func scaled(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(attempt+1)
}
