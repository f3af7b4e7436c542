// Package health implements liveness and readiness probes for the storefront
// service.
//
// All registered probes are driven by a single poller goroutine. A probe is
// marked unhealthy after three consecutive failures and recovers on the first
// success, which smooths over transient backend hiccups without flapping.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// failAfter is the number of consecutive failures before a probe is
// considered unhealthy.
const failAfter = 3

// CheckFunc probes a single component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

type probeKind int

const (
	liveness probeKind = iota
	readiness
)

type probe struct {
	name    string
	kind    probeKind
	timeout time.Duration
	check   CheckFunc

	fails int // consecutive failures, poller goroutine only

	// healthy and lastErr are written by the poller and read by HTTP
	// handlers concurrently.
	healthy atomic.Bool
	lastErr atomic.Pointer[string]
}

func (p *probe) poll(ctx context.Context) {
	pollCtx, cancel := context.WithTimeout(ctx, p.timeout)
	err := p.check(pollCtx)
	cancel()

	if err == nil {
		p.fails = 0
		p.healthy.Store(true)
		p.lastErr.Store(nil)
		return
	}

	msg := err.Error()
	p.lastErr.Store(&msg)
	p.fails++
	if p.fails >= failAfter {
		p.healthy.Store(false)
	}
}

func (p *probe) failure() (string, bool) {
	if p.healthy.Load() {
		return "", false
	}
	if msg := p.lastErr.Load(); msg != nil {
		return *msg, true
	}
	return "probe is unhealthy", true
}

// Health aggregates the service's probes and exposes them as /livez and
// /readyz handlers.
type Health struct {
	ready atomic.Bool

	mu     sync.Mutex // guards probes and cancel
	probes []*probe
	cancel context.CancelFunc
}

// New returns a Health with no probes registered. The service starts not
// ready; call SetReady(true) once initialization is done.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a probe that gates /livez. Liveness failures
// mean the process itself is broken and should be restarted.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.add(name, liveness, timeout, check)
}

// AddReadinessCheck registers a probe that gates /readyz and IsReady.
// Readiness failures mean traffic should be routed elsewhere, typically
// because a storage backend is unreachable.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.add(name, readiness, timeout, check)
}

func (h *Health) add(name string, kind probeKind, timeout time.Duration, check CheckFunc) {
	p := &probe{name: name, kind: kind, timeout: timeout, check: check}
	p.healthy.Store(true)

	h.mu.Lock()
	h.probes = append(h.probes, p)
	h.mu.Unlock()
}

// Start launches the poller goroutine. Probes run once immediately, then
// every interval until the context is cancelled or Stop is called.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	probes := make([]*probe, len(h.probes))
	copy(probes, h.probes)
	h.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			for _, p := range probes {
				p.poll(ctx)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop cancels the poller goroutine. Safe to call multiple times.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the manual readiness gate. Graceful shutdown sets it to
// false so load balancers stop sending new requests before the listener
// closes.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the manual gate is open and every readiness probe
// is passing.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}
	for _, p := range h.snapshot(readiness) {
		if _, failed := p.failure(); failed {
			return false
		}
	}
	return true
}

func (h *Health) snapshot(kind probeKind) []*probe {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]*probe, 0, len(h.probes))
	for _, p := range h.probes {
		if p.kind == kind {
			out = append(out, p)
		}
	}
	return out
}

type probeReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 while all liveness probes pass, 503 with
// per-probe errors otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	writeReport(w, h.failures(liveness))
}

// ReadyEndpoint serves /readyz: 200 only when the service is marked ready
// and all readiness probes pass.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	failures := h.failures(readiness)
	if !h.ready.Load() {
		if failures == nil {
			failures = make(map[string]string, 1)
		}
		failures["_gate"] = "service is not ready"
	}
	writeReport(w, failures)
}

func (h *Health) failures(kind probeKind) map[string]string {
	var failures map[string]string
	for _, p := range h.snapshot(kind) {
		if msg, failed := p.failure(); failed {
			if failures == nil {
				failures = make(map[string]string)
			}
			failures[p.name] = msg
		}
	}
	return failures
}

func writeReport(w http.ResponseWriter, failures map[string]string) {
	report := probeReport{Status: "ok"}
	code := http.StatusOK
	if len(failures) > 0 {
		report.Status = "unhealthy"
		report.Checks = failures
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(report)
}
