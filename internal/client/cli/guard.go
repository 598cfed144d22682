package cli

import (
	"sync"

	"github.com/dmitrijs2005/briefly/internal/client/services"
)

// Decision is what the presentation layer may show for a session state.
type Decision int

const (
	// DecisionLoading shows a loading indicator and accepts no commands.
	DecisionLoading Decision = iota
	// DecisionLogin restricts the user to the login view.
	DecisionLogin
	// DecisionRender shows the requested view.
	DecisionRender
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionLogin:
		return "login"
	case DecisionRender:
		return "render"
	}
	return "unknown"
}

// Guard maps a session state to a view decision.
func Guard(s services.State) Decision {
	switch s {
	case services.StateAuthenticated:
		return DecisionRender
	case services.StateUnauthenticated:
		return DecisionLogin
	default:
		return DecisionLoading
	}
}

// StateSource is the part of the session store the guard observes.
type StateSource interface {
	State() services.State
	Subscribe(fn func(services.State)) (unsubscribe func())
}

// RouteGuard re-evaluates Guard on every session transition and reports
// decision changes to onChange.
type RouteGuard struct {
	mu          sync.Mutex
	current     Decision
	onChange    func(from, to Decision)
	unsubscribe func()
}

func NewRouteGuard(src StateSource, onChange func(from, to Decision)) *RouteGuard {
	g := &RouteGuard{
		current:  Guard(src.State()),
		onChange: onChange,
	}
	g.unsubscribe = src.Subscribe(g.update)
	return g
}

func (g *RouteGuard) Decision() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Close stops observing the session store.
func (g *RouteGuard) Close() {
	g.unsubscribe()
}

func (g *RouteGuard) update(s services.State) {
	next := Guard(s)

	g.mu.Lock()
	prev := g.current
	g.current = next
	g.mu.Unlock()

	if prev != next && g.onChange != nil {
		g.onChange(prev, next)
	}
}
