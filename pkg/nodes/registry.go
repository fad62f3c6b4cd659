package nodes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// CustomIDPrefix starts the id of every user-added node.
const CustomIDPrefix = "custom_"

// Observer receives probe outcomes and active node changes.
type Observer interface {
	ObserveProbe(nodeID string, reachable bool, latency time.Duration)
	SetActiveNode(nodeID string)
}

// Snapshot is the registry state handed to Options.OnChange.
type Snapshot struct {
	Nodes    []Node
	ActiveID string
	// Defaulted marks an ActiveID that only stands in until the next
	// refresh and should not be persisted as a selection.
	Defaulted bool
}

// Options configures a Registry. Every field is optional.
type Options struct {
	// Checker probes nodes. Default: a Prober with default settings.
	Checker Checker

	// MaxConcurrency limits parallel probes during RefreshAll.
	// Zero means one goroutine per node.
	MaxConcurrency int

	// ActiveID restores a previously selected node.
	ActiveID string

	Logger   *slog.Logger
	Tracer   trace.Tracer
	Observer Observer

	// OnChange is called after every mutation, outside the registry lock.
	OnChange func(Snapshot)
}

// Registry holds the node pool, probes it and tracks the active node.
// It is safe for concurrent use; probes run without holding the lock.
type Registry struct {
	mu       sync.RWMutex
	nodes    []Node
	activeID string
	// defaulted is set while activeID is only a placeholder; the next
	// refresh replaces it with the best ranked node.
	defaulted bool

	checker     Checker
	concurrency int
	logger      *slog.Logger
	tracer      trace.Tracer
	observer    Observer
	onChange    func(Snapshot)
}

// NewRegistry creates a registry over seed. Nodes with a duplicate id are
// skipped. An ActiveID that names no node is ignored and the first node
// stands in until the first refresh picks the best one.
func NewRegistry(seed []Node, opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Checker == nil {
		opts.Checker = NewProber(ProberConfig{}, opts.Logger)
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("nebula/nodes")
	}

	r := &Registry{
		checker:     opts.Checker,
		concurrency: opts.MaxConcurrency,
		logger:      opts.Logger.With("component", "nodes.registry"),
		tracer:      opts.Tracer,
		observer:    opts.Observer,
		onChange:    opts.OnChange,
	}
	r.nodes = appendUnique(nil, seed)
	switch {
	case r.indexOf(opts.ActiveID) >= 0:
		r.activeID = opts.ActiveID
	case len(r.nodes) > 0:
		r.activeID = r.nodes[0].ID
		r.defaulted = true
	}
	return r
}

// RefreshAll probes every node concurrently, ranks the pool and re-selects
// the active node. It returns the ranked pool.
func (r *Registry) RefreshAll(ctx context.Context) []Node {
	ctx, span := r.tracer.Start(ctx, "nodes.RefreshAll")
	defer span.End()

	pending := r.Nodes()
	span.SetAttributes(attribute.Int("nodes.count", len(pending)))

	results := make([]Node, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	for i, n := range pending {
		g.Go(func() error {
			results[i] = r.probe(gctx, n)
			return nil
		})
	}
	_ = g.Wait()

	byID := make(map[string]Node, len(results))
	for _, n := range results {
		byID[n.ID] = n
	}

	r.mu.Lock()
	for i, n := range r.nodes {
		if probed, ok := byID[n.ID]; ok {
			r.nodes[i].LatencyMs = probed.LatencyMs
			r.nodes[i].Reachable = probed.Reachable
		}
	}
	r.nodes = Rank(r.nodes)
	previous, current := r.activeID, r.activeID
	if r.defaulted {
		current = ""
	}
	r.defaulted = false
	if active, ok := SelectActive(r.nodes, current); ok {
		r.activeID = active.ID
	} else {
		r.activeID = ""
	}
	ranked := r.copyNodesLocked()
	activeID := r.activeID
	r.mu.Unlock()

	span.SetAttributes(attribute.String("nodes.active", activeID))
	if activeID != previous {
		r.logger.Info("active node changed", "from", previous, "to", activeID)
	}
	r.notify(ranked, activeID, false)
	return ranked
}

// probe runs the checker and reports the outcome.
func (r *Registry) probe(ctx context.Context, n Node) Node {
	result := r.checker.Probe(ctx, n)
	if r.observer != nil {
		latency, _ := result.Latency()
		r.observer.ObserveProbe(result.ID, result.Reachable, latency)
	}
	return result
}

// AddCustomNode validates and normalizes a user supplied node, probes it
// once and appends it. A reachable node becomes active.
func (r *Registry) AddCustomNode(ctx context.Context, name, rawURL string) (Node, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(rawURL) == "" {
		return Node{}, ErrInvalidNode
	}
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return Node{}, err
	}

	node := Node{
		ID:        CustomIDPrefix + uuid.NewString(),
		Name:      name,
		URL:       normalized,
		LatencyMs: LatencyUnknown,
		Custom:    true,
	}
	node = r.probe(ctx, node)

	r.mu.Lock()
	r.nodes = append(r.nodes, node)
	if node.Reachable {
		r.activeID = node.ID
		r.defaulted = false
	}
	snapshot, activeID, defaulted := r.copyNodesLocked(), r.activeID, r.defaulted
	r.mu.Unlock()

	r.logger.Info("custom node added",
		"node", node.ID,
		"url", node.URL,
		"reachable", node.Reachable,
	)
	r.notify(snapshot, activeID, defaulted)
	return node, nil
}

// RemoveNode deletes a node. When it was active, the first remaining node
// stands in until the next refresh, or none when the pool is empty.
func (r *Registry) RemoveNode(id string) error {
	r.mu.Lock()
	i := r.indexOf(id)
	if i < 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	r.nodes = append(r.nodes[:i], r.nodes[i+1:]...)
	if r.activeID == id {
		r.activeID, r.defaulted = "", false
		if len(r.nodes) > 0 {
			r.activeID, r.defaulted = r.nodes[0].ID, true
		}
	}
	snapshot, activeID, defaulted := r.copyNodesLocked(), r.activeID, r.defaulted
	r.mu.Unlock()

	r.logger.Info("node removed", "node", id, "active", activeID)
	r.notify(snapshot, activeID, defaulted)
	return nil
}

// SetActive selects a node manually, regardless of its probe state.
func (r *Registry) SetActive(id string) error {
	r.mu.Lock()
	if r.indexOf(id) < 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	r.activeID, r.defaulted = id, false
	snapshot := r.copyNodesLocked()
	r.mu.Unlock()

	r.notify(snapshot, id, false)
	return nil
}

// Active returns the active node. ok is false when none is selected.
func (r *Registry) Active() (node Node, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(r.activeID); i >= 0 {
		return r.nodes[i], true
	}
	return Node{}, false
}

// ActiveURL returns the active node's URL, or "" when none is selected.
func (r *Registry) ActiveURL() string {
	n, _ := r.Active()
	return n.URL
}

// Nodes returns a copy of the pool in its current order.
func (r *Registry) Nodes() []Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.copyNodesLocked()
}

// CustomNodes returns the user-added nodes.
func (r *Registry) CustomNodes() []Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Node
	for _, n := range r.nodes {
		if n.Custom {
			out = append(out, n)
		}
	}
	return out
}

// Merge appends nodes whose id is not already present and returns how many
// were added. Existing nodes win.
func (r *Registry) Merge(nodes []Node) int {
	r.mu.Lock()
	before := len(r.nodes)
	r.nodes = appendUnique(r.nodes, nodes)
	added := len(r.nodes) - before
	if r.activeID == "" && len(r.nodes) > 0 {
		r.activeID, r.defaulted = r.nodes[0].ID, true
	}
	snapshot, activeID, defaulted := r.copyNodesLocked(), r.activeID, r.defaulted
	r.mu.Unlock()

	if added > 0 {
		r.notify(snapshot, activeID, defaulted)
	}
	return added
}

func (r *Registry) notify(nodes []Node, activeID string, defaulted bool) {
	if r.observer != nil {
		r.observer.SetActiveNode(activeID)
	}
	if r.onChange != nil {
		r.onChange(Snapshot{Nodes: nodes, ActiveID: activeID, Defaulted: defaulted})
	}
}

// indexOf must be called with the lock held.
func (r *Registry) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, n := range r.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) copyNodesLocked() []Node {
	out := make([]Node, len(r.nodes))
	copy(out, r.nodes)
	return out
}

// appendUnique appends the nodes of add whose id is not yet in dst.
func appendUnique(dst, add []Node) []Node {
	seen := make(map[string]struct{}, len(dst)+len(add))
	for _, n := range dst {
		seen[n.ID] = struct{}{}
	}
	for _, n := range add {
		if _, dup := seen[n.ID]; dup || n.ID == "" {
			continue
		}
		seen[n.ID] = struct{}{}
		dst = append(dst, n)
	}
	return dst
}
