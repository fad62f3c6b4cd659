// Package nodes maintains the pool of endpoints vendor traffic can be sent
// through: the direct API host and a number of relays.
//
// A Registry probes every node concurrently, ranks the pool (reachable
// first, then by ascending latency) and keeps one node active. The active
// node survives a refresh as long as it stays reachable; otherwise the
// fastest reachable node takes over.
//
//	registry := nodes.NewRegistry(nodes.SeedNodes(), nodes.Options{})
//	ranked := registry.RefreshAll(ctx)
//	active, ok := registry.Active()
//
// Probing never fails. An unreachable node is recorded with LatencyMs set to
// LatencyUnreachable, which sorts after every measured latency.
//
// A Scheduler re-probes the pool on a cron schedule.
package nodes
