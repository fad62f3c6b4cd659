// Package openai implements the chat completions wire shape shared by
// OpenAI, DeepSeek and xAI.
//
// One adapter is created per vendor:
//
//	adapter := openai.NewAdapter(providers.ProviderDeepSeek, openai.Config{})
//
// Requests are non-streaming: the body is always
//
//	{"model": "...", "messages": [...], "stream": false}
//
// with an optional system message first, the prior turns in order, and the
// new prompt as the last user message. The key is sent as a bearer token.
//
// # Attachments
//
// DeepSeek cannot read files, so attachments are replaced by a notice
// appended to the prompt. OpenAI and xAI receive text documents inlined
// ahead of the prompt; images and PDFs are dropped.
//
// # Endpoints
//
// Each vendor posts to its fixed endpoint. With Config.UseActiveNode set the
// call goes to the active relay node instead, at Request.BaseURLOverride
// followed by Config.RelayPath.
package openai
