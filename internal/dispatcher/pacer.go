package dispatcher

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MinRequestInterval is the fixed floor between consecutive requests on
// one credential. It keeps cold starts from bursting before the API has
// reported any quota.
const MinRequestInterval = 600 * time.Millisecond

// Pacer tracks per-client request pacing plus the quota the API reports
// back through X-RateLimit headers. One Pacer serves exactly one
// Transport; runs never share one.
type Pacer struct {
	mu          sync.Mutex
	minInterval time.Duration
	lastRequest time.Time
	remaining   int // -1 while unknown
	resetAfter  time.Duration
	global      bool
}

func NewPacer() *Pacer {
	return &Pacer{
		minInterval: MinRequestInterval,
		remaining:   -1,
	}
}

// Wait blocks until the next request may be issued: the interval floor
// has elapsed since the previous request, and any near-exhausted quota
// has been waited out (reset-after plus a one second buffer, cleared
// afterwards). The last-request clock is always advanced on exit.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	var floor time.Duration
	if !p.lastRequest.IsZero() {
		if since := time.Since(p.lastRequest); since < p.minInterval {
			floor = p.minInterval - since
		}
	}
	var quota time.Duration
	if p.remaining >= 0 && p.remaining <= 1 {
		quota = p.resetAfter + time.Second
		p.remaining = -1
		p.resetAfter = 0
	}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.lastRequest = time.Now()
		p.mu.Unlock()
	}()

	if err := sleepCtx(ctx, floor); err != nil {
		return err
	}
	return sleepCtx(ctx, quota)
}

// Observe updates quota state from response headers. Absent headers
// leave prior state untouched.
func (p *Pacer) Observe(remaining, resetAfter, global string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if remaining != "" {
		if n, err := strconv.Atoi(remaining); err == nil {
			p.remaining = n
		}
	}
	if resetAfter != "" {
		if s, err := strconv.ParseFloat(resetAfter, 64); err == nil {
			p.resetAfter = time.Duration(s * float64(time.Second))
		}
	}
	if global != "" {
		p.global = strings.EqualFold(global, "true")
	}
}

// GlobalLimited reports whether the API has flagged the global limit.
func (p *Pacer) GlobalLimited() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.global
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
