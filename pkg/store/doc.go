// Package store persists application state: API keys, custom relay nodes,
// the active node and per-user chat histories.
//
// Every piece of state is a JSON document stored under a fixed key:
//
//	credentials          providers.Credentials
//	custom_nodes         []nodes.Node
//	active_node          node id
//	histories/<user>     model id -> messages
//
// Two backends are provided. SQLiteBackend keeps the documents in a single
// table of an embedded database; MemoryBackend keeps them in memory for
// tests and throwaway sessions.
package store
