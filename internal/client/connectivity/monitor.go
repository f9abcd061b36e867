// Package connectivity probes the Remote Service and reports online/offline
// transitions.
package connectivity

import (
	"context"
	"sync"
	"time"

	"expense-tracker-go/pkg/logger"
)

const (
	DefaultInterval = 15 * time.Second
	DefaultTimeout  = 3 * time.Second
)

type Prober interface {
	Health(ctx context.Context) error
}

// ChangeFunc is called with the new state after every transition.
type ChangeFunc func(ctx context.Context, online bool)

type Monitor struct {
	prober   Prober
	log      logger.Logger
	interval time.Duration
	timeout  time.Duration
	onChange ChangeFunc

	mu     sync.Mutex
	known  bool
	online bool
}

type Option func(*Monitor)

func WithInterval(interval time.Duration) Option {
	return func(m *Monitor) {
		if interval > 0 {
			m.interval = interval
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(m *Monitor) {
		if timeout > 0 {
			m.timeout = timeout
		}
	}
}

func NewMonitor(prober Prober, onChange ChangeFunc, log logger.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		prober:   prober,
		log:      log,
		interval: DefaultInterval,
		timeout:  DefaultTimeout,
		onChange: onChange,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Online returns the last observed state; false before the first probe.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Check probes once and fires onChange when the state differs from the last
// probe. The first probe always counts as a transition.
func (m *Monitor) Check(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	err := m.prober.Health(probeCtx)
	cancel()

	online := err == nil
	if err != nil && ctx.Err() != nil {
		return m.Online()
	}

	m.mu.Lock()
	changed := !m.known || m.online != online
	m.known = true
	m.online = online
	m.mu.Unlock()

	if !changed {
		return online
	}

	if online {
		m.log.Info("connectivity.check: remote reachable")
	} else {
		m.log.Warn("connectivity.check: remote unreachable", "err", err)
	}
	if m.onChange != nil {
		m.onChange(ctx, online)
	}
	return online
}

// Run probes immediately and then on every tick until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}
