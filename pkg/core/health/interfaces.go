package health

import (
	"context"
	"time"
)

type ComponentStatus struct {
	Name      string    `json:"name"`
	Ready     bool      `json:"ready"`
	StartedAt time.Time `json:"startedAt"`
	ReadyAt   time.Time `json:"readyAt,omitzero"`
}

type ReadinessStatus struct {
	Ready        bool              `json:"ready"`
	TrafficReady bool              `json:"trafficReady"`
	Components   []ComponentStatus `json:"components"`
	ReadyAt      time.Time         `json:"readyAt,omitzero"`
}

// ComponentManager registers components that must become ready before the
// service accepts work.
type ComponentManager interface {
	// AddComponent registers name and returns the func that marks it ready.
	AddComponent(name string) func()
}

type ReadinessChecker interface {
	IsReady() bool
	GetStatus() ReadinessStatus
}

type ReadinessWaiter interface {
	// WaitReady blocks until every registered component is ready.
	WaitReady(ctx context.Context) error
	// WaitForTrafficReady blocks until the service may take traffic.
	WaitForTrafficReady(ctx context.Context) error
}

// TrafficController opens the traffic gate. Under Kubernetes this happens on the
// first successful readiness probe, elsewhere as soon as all components are ready.
type TrafficController interface {
	MarkTrafficReady()
}
