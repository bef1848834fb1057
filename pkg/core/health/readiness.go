package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

type component struct {
	name      string
	ready     bool
	startedAt time.Time
	readyAt   time.Time
}

type readiness struct {
	mu         sync.RWMutex
	components map[string]*component
	log        *zap.Logger
	// autoTraffic opens the traffic gate together with readiness.
	autoTraffic bool

	readyCh     chan struct{}
	readyOnce   sync.Once
	readyAt     time.Time
	trafficCh   chan struct{}
	trafficOnce sync.Once
}

func newReadiness(log *zap.Logger, isKubernetes bool) *readiness {
	return &readiness{
		components:  make(map[string]*component),
		log:         log,
		autoTraffic: !isKubernetes,
		readyCh:     make(chan struct{}),
		trafficCh:   make(chan struct{}),
	}
}

func (r *readiness) AddComponent(name string) func() {
	r.mu.Lock()
	if _, exists := r.components[name]; !exists {
		r.components[name] = &component{name: name, startedAt: time.Now()}
	}
	r.mu.Unlock()

	return func() { r.markReady(name) }
}

func (r *readiness) markReady(name string) {
	r.mu.Lock()
	comp, exists := r.components[name]
	if !exists || comp.ready {
		r.mu.Unlock()
		return
	}
	comp.ready = true
	comp.readyAt = time.Now()
	r.log.Info("component ready", zap.String("component", name), zap.Duration("took", comp.readyAt.Sub(comp.startedAt)))

	allReady := true
	for _, c := range r.components {
		if !c.ready {
			allReady = false
			break
		}
	}
	count := len(r.components)
	r.mu.Unlock()

	if !allReady {
		return
	}

	r.readyOnce.Do(func() {
		r.mu.Lock()
		r.readyAt = time.Now()
		r.mu.Unlock()
		close(r.readyCh)
		r.log.Info("all components are ready", zap.Int("component_count", count))
	})

	if r.autoTraffic {
		r.MarkTrafficReady()
	}
}

func (r *readiness) IsReady() bool {
	select {
	case <-r.readyCh:
		return true
	default:
		return false
	}
}

func (r *readiness) isTrafficReady() bool {
	select {
	case <-r.trafficCh:
		return true
	default:
		return false
	}
}

func (r *readiness) GetStatus() ReadinessStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := ReadinessStatus{
		Ready:        r.IsReady(),
		TrafficReady: r.isTrafficReady(),
		Components:   make([]ComponentStatus, 0, len(r.components)),
		ReadyAt:      r.readyAt,
	}
	for _, c := range r.components {
		status.Components = append(status.Components, ComponentStatus{
			Name:      c.name,
			Ready:     c.ready,
			StartedAt: c.startedAt,
			ReadyAt:   c.readyAt,
		})
	}
	sort.Slice(status.Components, func(i, j int) bool {
		return status.Components[i].Name < status.Components[j].Name
	})
	return status
}

// MarkTrafficReady is a no-op until all components are ready.
func (r *readiness) MarkTrafficReady() {
	if !r.IsReady() {
		return
	}
	r.trafficOnce.Do(func() {
		close(r.trafficCh)
		r.log.Info("service is ready for traffic")
	})
}

func (r *readiness) WaitReady(ctx context.Context) error {
	select {
	case <-r.readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *readiness) WaitForTrafficReady(ctx context.Context) error {
	select {
	case <-r.trafficCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
