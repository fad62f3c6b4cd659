// Nebula is a terminal chat client for Gemini, OpenAI, DeepSeek and xAI.
//
// Gemini traffic can be routed through a pool of relay nodes; the client
// probes them and keeps the fastest reachable one active.
//
// Usage:
//
//	# Interactive chat with the default model
//	nebula chat
//
//	# One-shot prompt with an attachment
//	nebula send --model deepseek-v3 --attach notes.pdf "Summarize this"
//
//	# Store an API key
//	nebula keys set google
//
//	# Probe the relay pool and show the ranking
//	nebula nodes check
package main

func main() {
	Execute()
}
