package nodes

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var schemePrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// Rank returns a copy of nodes ordered reachable first, then by ascending
// latency. Ties keep their input order.
func Rank(nodes []Node) []Node {
	ranked := make([]Node, len(nodes))
	copy(ranked, nodes)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Reachable != b.Reachable {
			return a.Reachable
		}
		return a.LatencyMs < b.LatencyMs
	})
	return ranked
}

// SelectActive picks the active node from a ranked list.
//
// The node with activeID is kept (with fresh stats) while it is present and
// reachable. Otherwise the first reachable node wins, falling back to the
// head of the list. ok is false only for an empty list.
func SelectActive(ranked []Node, activeID string) (active Node, ok bool) {
	if len(ranked) == 0 {
		return Node{}, false
	}

	if activeID != "" {
		for _, n := range ranked {
			if n.ID == activeID && n.Reachable {
				return n, true
			}
		}
	}

	for _, n := range ranked {
		if n.Reachable {
			return n, true
		}
	}
	return ranked[0], true
}

// NormalizeURL trims whitespace and trailing slashes and prepends https://
// when no scheme is given.
func NormalizeURL(raw string) (string, error) {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if u == "" {
		return "", ErrInvalidNode
	}
	if !schemePrefix.MatchString(u) {
		u = "https://" + u
	}

	parsed, err := url.Parse(u)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidNode, raw)
	}
	return u, nil
}
