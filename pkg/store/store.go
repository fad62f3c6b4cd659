package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"nebula-hq/nebula/pkg/nodes"
	"nebula-hq/nebula/pkg/providers"
)

// Keys of the persisted blobs.
const (
	KeyCredentials = "credentials"
	KeyCustomNodes = "custom_nodes"
	KeyActiveNode  = "active_node"

	historyPrefix = "histories/"
)

// HistoryKey returns the key holding the histories of user.
func HistoryKey(user string) string {
	return historyPrefix + user
}

// Store persists application state as JSON documents on a Backend.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

// New wraps backend.
func New(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: backend,
		logger:  logger.With("component", "store"),
	}
}

// Open returns a store on the SQLite database at path, or an in-memory store
// when path is empty.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return New(NewMemoryBackend(), logger), nil
	}
	backend, err := NewSQLiteBackend(SQLiteConfig{Path: path})
	if err != nil {
		return nil, err
	}
	return New(backend, logger), nil
}

// GetJSON decodes the document at key into v. found is false when the key
// is absent; v is then left untouched.
func (s *Store) GetJSON(ctx context.Context, key string, v any) (found bool, err error) {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return true, nil
}

// PutJSON encodes v and stores it at key.
func (s *Store) PutJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return s.backend.Put(ctx, key, raw)
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// Credentials returns the saved API keys.
func (s *Store) Credentials(ctx context.Context) (providers.Credentials, error) {
	var creds providers.Credentials
	_, err := s.GetJSON(ctx, KeyCredentials, &creds)
	return creds, err
}

// SaveCredentials replaces the saved API keys.
func (s *Store) SaveCredentials(ctx context.Context, creds providers.Credentials) error {
	return s.PutJSON(ctx, KeyCredentials, creds)
}

// CustomNodes returns the user-added nodes. Entries without an id or URL
// are skipped.
func (s *Store) CustomNodes(ctx context.Context) ([]nodes.Node, error) {
	var saved []nodes.Node
	if _, err := s.GetJSON(ctx, KeyCustomNodes, &saved); err != nil {
		return nil, err
	}

	out := saved[:0]
	for _, n := range saved {
		if n.ID == "" || n.URL == "" {
			s.logger.Warn("skipping invalid saved node", "id", n.ID, "url", n.URL)
			continue
		}
		n.Custom = true
		out = append(out, n)
	}
	return out, nil
}

// SaveCustomNodes replaces the user-added nodes.
func (s *Store) SaveCustomNodes(ctx context.Context, custom []nodes.Node) error {
	if custom == nil {
		custom = []nodes.Node{}
	}
	return s.PutJSON(ctx, KeyCustomNodes, custom)
}

// ActiveNode returns the saved active node id, or "".
func (s *Store) ActiveNode(ctx context.Context) (string, error) {
	var id string
	_, err := s.GetJSON(ctx, KeyActiveNode, &id)
	return id, err
}

// SaveActiveNode records the active node id. An empty id clears it.
func (s *Store) SaveActiveNode(ctx context.Context, id string) error {
	if id == "" {
		return s.Delete(ctx, KeyActiveNode)
	}
	return s.PutJSON(ctx, KeyActiveNode, id)
}

// SaveNodes records the custom nodes and the active node of a registry
// snapshot. A defaulted active node clears the saved selection.
func (s *Store) SaveNodes(ctx context.Context, snapshot nodes.Snapshot) error {
	var custom []nodes.Node
	for _, n := range snapshot.Nodes {
		if n.Custom {
			custom = append(custom, n)
		}
	}
	if err := s.SaveCustomNodes(ctx, custom); err != nil {
		return err
	}
	if snapshot.Defaulted {
		return s.SaveActiveNode(ctx, "")
	}
	return s.SaveActiveNode(ctx, snapshot.ActiveID)
}

// Users returns the users that have saved histories.
func (s *Store) Users(ctx context.Context) ([]string, error) {
	keys, err := s.backend.List(ctx, historyPrefix)
	if err != nil {
		return nil, err
	}
	users := make([]string, 0, len(keys))
	for _, k := range keys {
		users = append(users, strings.TrimPrefix(k, historyPrefix))
	}
	return users, nil
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
