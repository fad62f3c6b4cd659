package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"nebula-hq/nebula/pkg/catalog"
	"nebula-hq/nebula/pkg/providers"
	"nebula-hq/nebula/pkg/store"
	"nebula-hq/nebula/pkg/telemetry/logging"
	"nebula-hq/nebula/pkg/telemetry/tracing"
)

var (
	// ErrBusy is returned when Send is called while a send is in flight.
	ErrBusy = errors.New("a request is already in progress")

	// ErrEmptyMessage is returned when neither text nor attachments are given.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrUnknownModel is returned for a model id missing from the catalog.
	ErrUnknownModel = errors.New("unknown model")
)

// Sender dispatches one request. *dispatch.Dispatcher implements it.
type Sender interface {
	Send(ctx context.Context, req providers.Request) (string, error)
}

// NodeSource yields the base URL of the active relay node, or "".
// *nodes.Registry implements it.
type NodeSource interface {
	ActiveURL() string
}

// Persister loads and saves JSON documents. *store.Store implements it.
type Persister interface {
	GetJSON(ctx context.Context, key string, v any) (bool, error)
	PutJSON(ctx context.Context, key string, v any) error
}

// Options configures a Session.
type Options struct {
	// User names the profile whose histories are loaded and saved.
	User string

	Catalog *catalog.Catalog
	Sender  Sender

	// Model is the initial logical model id. Default: catalog.DefaultModelID.
	Model string

	// Credentials is called on every send so key changes apply at once.
	Credentials func() providers.Credentials

	// Nodes supplies the active node. Optional.
	Nodes NodeSource

	// Store persists histories. Optional; without it histories live in memory.
	Store Persister

	Logger *slog.Logger
	Tracer trace.Tracer
	Now    func() time.Time
}

// Session owns the conversations of one user across models and turns a
// prompt into a dispatched request.
type Session struct {
	user        string
	catalog     *catalog.Catalog
	sender      Sender
	credentials func() providers.Credentials
	nodes       NodeSource
	store       Persister
	logger      *slog.Logger
	tracer      trace.Tracer
	now         func() time.Time

	busy atomic.Bool

	mu        sync.Mutex
	model     catalog.Model
	histories Histories
}

// NewSession creates a session and loads the user's saved histories.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("chat: catalog is required")
	}
	if opts.Sender == nil {
		return nil, fmt.Errorf("chat: sender is required")
	}
	if opts.User == "" {
		opts.User = "default"
	}
	if opts.Model == "" {
		opts.Model = catalog.DefaultModelID
	}
	if opts.Credentials == nil {
		opts.Credentials = func() providers.Credentials { return providers.Credentials{} }
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("nebula/chat")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	model, ok := opts.Catalog.Get(opts.Model)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, opts.Model)
	}

	s := &Session{
		user:        opts.User,
		catalog:     opts.Catalog,
		sender:      opts.Sender,
		credentials: opts.Credentials,
		nodes:       opts.Nodes,
		store:       opts.Store,
		logger:      opts.Logger.With("component", "chat"),
		tracer:      opts.Tracer,
		now:         opts.Now,
		model:       model,
		histories:   make(Histories),
	}

	if s.store != nil {
		if _, err := s.store.GetJSON(ctx, store.HistoryKey(s.user), &s.histories); err != nil {
			return nil, fmt.Errorf("failed to load histories: %w", err)
		}
		if s.histories == nil {
			s.histories = make(Histories)
		}
	}

	return s, nil
}

// Model returns the selected model.
func (s *Session) Model() catalog.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// History returns a copy of the selected model's conversation.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMessages(s.histories[s.model.ID])
}

// HistoryFor returns a copy of the conversation with a model.
func (s *Session) HistoryFor(modelID string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMessages(s.histories[modelID])
}

// Busy reports whether a send is in flight.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Send appends the prompt to the current conversation, dispatches it with
// the prior turns as context and appends the reply.
//
// A failed dispatch is recorded as an error message and returned together
// with the error. Only one Send may run at a time; a concurrent call fails
// with ErrBusy without touching the history.
func (s *Session) Send(ctx context.Context, prompt string, attachments []providers.Attachment) (Message, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" && len(attachments) == 0 {
		return Message{}, ErrEmptyMessage
	}
	if !s.busy.CompareAndSwap(false, true) {
		return Message{}, ErrBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	model := s.model
	prior := contextTurns(s.histories[model.ID])
	userMsg := s.newMessage(providers.RoleUser, prompt)
	userMsg.Attachments = attachments
	s.histories[model.ID] = append(s.histories[model.ID], userMsg)
	s.mu.Unlock()

	ctx = logging.WithModel(logging.WithUser(ctx, s.user), model.ID)
	ctx, span := s.tracer.Start(ctx, "chat.Send", trace.WithAttributes(
		attribute.String(tracing.AttrUser, s.user),
		attribute.String(tracing.AttrModel, model.ID),
	))
	defer span.End()

	req := providers.Request{
		Model:             model.VendorModel,
		Provider:          model.Provider,
		Prompt:            prompt,
		History:           prior,
		Attachments:       attachments,
		SystemInstruction: model.SystemInstruction,
		ThinkingBudget:    model.ThinkingBudget,
		Credentials:       s.credentials(),
	}
	if s.nodes != nil {
		req.BaseURLOverride = s.nodes.ActiveURL()
	}

	text, sendErr := s.sender.Send(ctx, req)

	var reply Message
	if sendErr != nil {
		tracing.SetError(span, sendErr, providers.ErrorKind(sendErr))
		s.logger.WarnContext(ctx, "send failed",
			"model", model.ID,
			"error_kind", providers.ErrorKind(sendErr),
			"error", sendErr,
		)
		reply = s.newMessage(providers.RoleAssistant, ErrorPrefix+sendErr.Error())
		reply.IsError = true
	} else {
		reply = s.newMessage(providers.RoleAssistant, text)
	}

	s.mu.Lock()
	s.histories[model.ID] = append(s.histories[model.ID], reply)
	s.mu.Unlock()

	if err := s.save(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to save histories", "error", err)
	}
	return reply, sendErr
}

// SwitchModel selects another model. With transfer set and a non-empty
// current conversation, the target's history is replaced by a copy of the
// current one followed by a transfer marker.
func (s *Session) SwitchModel(ctx context.Context, modelID string, transfer bool) error {
	target, ok := s.catalog.Get(modelID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModel, modelID)
	}

	s.mu.Lock()
	current := s.histories[s.model.ID]
	transferred := transfer && len(current) > 0 && target.ID != s.model.ID
	if transferred {
		moved := cloneMessages(current)
		moved = append(moved, s.newMessage(providers.RoleAssistant, TransferMarker))
		s.histories[target.ID] = moved
	}
	from := s.model.ID
	s.model = target
	s.mu.Unlock()

	s.logger.Info("model switched", "from", from, "to", target.ID, "transferred", transferred)
	if transferred {
		return s.save(ctx)
	}
	return nil
}

// ClearHistory deletes the selected model's conversation.
func (s *Session) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	delete(s.histories, s.model.ID)
	s.mu.Unlock()
	return s.save(ctx)
}

// newMessage stamps a fresh message.
func (s *Session) newMessage(role providers.Role, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: s.now(),
	}
}

func (s *Session) save(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	s.mu.Lock()
	snapshot := make(Histories, len(s.histories))
	for id, msgs := range s.histories {
		snapshot[id] = cloneMessages(msgs)
	}
	s.mu.Unlock()

	return s.store.PutJSON(ctx, store.HistoryKey(s.user), snapshot)
}
