package hostrpc

import (
	"log"
	"sync"

	"github.com/breez/lnbind/bindings"
	"github.com/breez/lnbind/bindings/codes"
	"github.com/breez/lnbind/bindings/status"
	"github.com/breez/lnbind/engine"
	"github.com/google/uuid"
)

type builderEntry struct {
	// Builders are not safe for concurrent use.
	mu      sync.Mutex
	builder *bindings.Builder
}

type nodeEntry struct {
	node *bindings.Node

	// A wait abandoned by a disconnected host is kept in wait, so the next
	// host waiting on this node picks up its result.
	mu      sync.Mutex
	waiting bool
	wait    <-chan bindings.EventResult
}

// Registry maps the opaque handles given to hosts to builders and nodes.
// Handles outlive the connection that created them. Built builders and
// closed nodes keep their handle so later calls report AlreadyBuilt and
// NodeClosed instead of an unknown handle.
type Registry struct {
	mu       sync.Mutex
	builders map[string]*builderEntry
	nodes    map[string]*nodeEntry
}

func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]*builderEntry),
		nodes:    make(map[string]*nodeEntry),
	}
}

func (r *Registry) AddBuilder(b *bindings.Builder) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.builders[id] = &builderEntry{builder: b}
	r.mu.Unlock()
	return id
}

// WithBuilder runs f with exclusive access to the builder behind id.
func (r *Registry) WithBuilder(id string, f func(*bindings.Builder) error) error {
	r.mu.Lock()
	entry, ok := r.builders[id]
	r.mu.Unlock()
	if !ok {
		return status.Errorf(codes.UnknownHandle, "unknown builder handle %q", id)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return f(entry.builder)
}

func (r *Registry) AddNode(n *bindings.Node) string {
	id := uuid.NewString()
	r.mu.Lock()
	r.nodes[id] = &nodeEntry{node: n}
	r.mu.Unlock()
	return id
}

func (r *Registry) entry(id string) (*nodeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.nodes[id]
	if !ok {
		return nil, status.Errorf(codes.UnknownHandle, "unknown node handle %q", id)
	}
	return entry, nil
}

func (r *Registry) Node(id string) (*bindings.Node, error) {
	entry, err := r.entry(id)
	if err != nil {
		return nil, err
	}
	return entry.node, nil
}

// Close closes every registered node.
func (r *Registry) Close() {
	r.mu.Lock()
	nodes := make(map[string]*bindings.Node, len(r.nodes))
	for id, entry := range r.nodes {
		nodes[id] = entry.node
	}
	r.mu.Unlock()

	for id, n := range nodes {
		if err := n.Close(); err != nil {
			log.Printf("hostrpc: failed to close node %s: %v", id, err)
		}
	}
}

// startWait returns the channel of the wait in flight for this node, starting
// one if there is none. Only one host request may be waiting at a time.
func (e *nodeEntry) startWait() (<-chan bindings.EventResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.waiting {
		return nil, status.Errorf(codes.WaitInFlight, "a wait for the next event is already in flight")
	}
	if e.wait == nil {
		e.wait = e.node.WaitNextEvent()
	}
	e.waiting = true
	return e.wait, nil
}

// endWait releases the wait. If resolved is false the wait is left for the
// next waiter.
func (e *nodeEntry) endWait(resolved bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.waiting = false
	if resolved {
		e.wait = nil
	}
}

// RegisterServices registers the builder and node services on s. Nodes built
// through s are added to registry.
func RegisterServices(s ServiceRegistrar, registry *Registry, factory engine.Factory) {
	RegisterBuilderServer(s, NewBuilderServer(registry, factory))
	RegisterNodeServer(s, NewNodeServer(registry))
}
