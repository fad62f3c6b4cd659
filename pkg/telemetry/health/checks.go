package health

import (
	"context"
	"errors"
	"fmt"

	"nebula-hq/nebula/pkg/nodes"
	"nebula-hq/nebula/pkg/providers"
)

// KVReader reads a JSON document. *store.Store implements it.
type KVReader interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
}

// ActiveNoder exposes the active node. *nodes.Registry implements it.
type ActiveNoder interface {
	Active() (nodes.Node, bool)
}

// probeKey is read, never written, by StoreCheck.
const probeKey = "health/probe"

// StoreCheck verifies the store answers a read.
func StoreCheck(s KVReader) CheckFunc {
	return func(ctx context.Context) error {
		var v any
		if _, err := s.GetJSON(ctx, probeKey, &v); err != nil {
			return fmt.Errorf("store unreadable: %w", err)
		}
		return nil
	}
}

// CredentialsCheck fails when no provider has a key.
func CredentialsCheck(creds func() providers.Credentials) CheckFunc {
	return func(context.Context) error {
		c := creds()
		for _, tag := range providers.AllProviders {
			if c.For(tag) != "" {
				return nil
			}
		}
		return errors.New("no API key configured for any provider")
	}
}

// ActiveNodeCheck fails when no node is selected or the selected node's
// last probe failed.
func ActiveNodeCheck(r ActiveNoder) CheckFunc {
	return func(context.Context) error {
		n, ok := r.Active()
		if !ok {
			return errors.New("no active node")
		}
		if n.Probed() && !n.Reachable {
			return fmt.Errorf("active node %s is unreachable", n.ID)
		}
		return nil
	}
}
