// Package chat keeps per-model conversations for a user and sends prompts
// through the dispatcher.
//
// Each logical model has its own history. Failed requests are recorded as
// error messages so the user sees them, but they are never sent back to a
// vendor as context. Switching models can carry the current conversation
// over to the new model.
package chat
