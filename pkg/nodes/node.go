package nodes

import (
	"errors"
	"math"
	"time"
)

// Latency sentinels stored in Node.LatencyMs.
const (
	// LatencyUnknown marks a node that has not been probed yet.
	LatencyUnknown int64 = -1

	// LatencyUnreachable marks a node whose last probe failed. It sorts
	// after every measured latency.
	LatencyUnreachable int64 = math.MaxInt64
)

var (
	// ErrInvalidNode is returned when a custom node has an empty name or URL.
	ErrInvalidNode = errors.New("node name and URL are required")

	// ErrNodeNotFound is returned when an id does not match any node.
	ErrNodeNotFound = errors.New("node not found")
)

// Node is a candidate base URL for vendor traffic: the direct endpoint or
// a relay.
type Node struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	LatencyMs int64  `json:"latency_ms"`
	Reachable bool   `json:"reachable"`
	Custom    bool   `json:"custom,omitempty"`
}

// Probed reports whether the node has been probed at least once.
func (n Node) Probed() bool {
	return n.LatencyMs != LatencyUnknown
}

// Latency returns the measured round trip. ok is false when the node is
// unprobed or unreachable.
func (n Node) Latency() (d time.Duration, ok bool) {
	if !n.Reachable || n.LatencyMs < 0 || n.LatencyMs == LatencyUnreachable {
		return 0, false
	}
	return time.Duration(n.LatencyMs) * time.Millisecond, true
}

// markUnreachable returns n with failure stats.
func (n Node) markUnreachable() Node {
	n.LatencyMs = LatencyUnreachable
	n.Reachable = false
	return n
}

// SeedNodes returns the built-in node list: community relays and the direct
// Gemini endpoint. All start unprobed.
func SeedNodes() []Node {
	return []Node{
		{ID: "p_cf_1", Name: "Community relay US-1 (Cloudflare)", URL: "https://gemini-proxy.pages.dev", LatencyMs: LatencyUnknown},
		{ID: "p_cf_2", Name: "Community relay SG-1 (Vercel)", URL: "https://gemini-openai-proxy.vercel.app", LatencyMs: LatencyUnknown},
		{ID: "p_direct", Name: "Direct (requires system VPN)", URL: "https://generativelanguage.googleapis.com", LatencyMs: LatencyUnknown},
		{ID: "p_custom_1", Name: "Community relay UK-1", URL: "https://api.gemini.chatgpt.org.uk", LatencyMs: LatencyUnknown},
	}
}
