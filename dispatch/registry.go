package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/wippyai/contract-abi/abi"
	"github.com/wippyai/contract-abi/codec"
	"github.com/wippyai/contract-abi/errors"
)

// Handler implements one endpoint. It receives one decoded value per input
// parameter and returns one value per output parameter. Returning a
// *Rejection (see Require) rejects the call; any other error is a fault.
type Handler func(ctx context.Context, in []codec.Value) ([]codec.Value, error)

type entry struct {
	endpoint *abi.Endpoint
	handler  Handler
}

// Registry collects endpoint signatures and handlers at definition time.
// It is safe for concurrent registration; NewDispatcher takes a snapshot.
type Registry struct {
	entries map[string]*entry
	order   []string
	mu      sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register binds a handler to an endpoint signature.
func (r *Registry) Register(ep *abi.Endpoint, h Handler) error {
	if ep == nil {
		return errors.Registration("<nil>", fmt.Errorf("nil endpoint"))
	}
	if h == nil {
		return errors.Registration(ep.Name, fmt.Errorf("nil handler"))
	}
	if err := ep.Validate(); err != nil {
		return errors.Registration(ep.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[ep.Name]; exists {
		return errors.Registration(ep.Name, fmt.Errorf("endpoint %q already registered", ep.Name))
	}
	r.entries[ep.Name] = &entry{endpoint: ep, handler: h}
	r.order = append(r.order, ep.Name)
	return nil
}

// RegisterABI binds every endpoint of def to the handler of the same name.
// Endpoints without a handler, and handlers without an endpoint, are
// registration errors.
func (r *Registry) RegisterABI(def *abi.Definition, handlers map[string]Handler) error {
	for name := range handlers {
		if _, ok := def.Endpoint(name); !ok {
			return errors.Registration(name, errors.NotFound(errors.PhaseRegister, "endpoint", name))
		}
	}
	for _, ep := range def.Endpoints {
		h, ok := handlers[ep.Name]
		if !ok {
			return errors.Registration(ep.Name, errors.NotFound(errors.PhaseRegister, "handler", ep.Name))
		}
		if err := r.Register(ep, h); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of registered endpoints.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
