package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nebula-hq/nebula/pkg/catalog"
	"nebula-hq/nebula/pkg/providers"
	"nebula-hq/nebula/pkg/store"
)

// fakeSender records requests and answers from a queue.
type fakeSender struct {
	mu       sync.Mutex
	requests []providers.Request
	reply    string
	err      error
	block    chan struct{}
}

func (f *fakeSender) Send(ctx context.Context, req providers.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return f.reply, f.err
}

func (f *fakeSender) last() providers.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type staticNode string

func (n staticNode) ActiveURL() string { return string(n) }

func newTestSession(t *testing.T, sender Sender, st Persister) *Session {
	t.Helper()

	cat, err := catalog.Default()
	require.NoError(t, err)

	s, err := NewSession(context.Background(), Options{
		User:        "alice",
		Catalog:     cat,
		Sender:      sender,
		Model:       "deepseek-v3",
		Credentials: func() providers.Credentials { return providers.Credentials{DeepSeek: "sk-d", Google: "AIza"} },
		Nodes:       staticNode("https://relay.example"),
		Store:       st,
		Now:         func() time.Time { return time.Unix(1700000000, 0) },
	})
	require.NoError(t, err)
	return s
}

func TestSession_Send(t *testing.T) {
	sender := &fakeSender{reply: "hello back"}
	s := newTestSession(t, sender, nil)

	reply, err := s.Send(context.Background(), "  hello  ", nil)
	require.NoError(t, err)

	assert.Equal(t, "hello back", reply.Text)
	assert.Equal(t, providers.RoleAssistant, reply.Role)
	assert.False(t, reply.IsError)

	req := sender.last()
	assert.Equal(t, "deepseek-chat", req.Model)
	assert.Equal(t, providers.ProviderDeepSeek, req.Provider)
	assert.Equal(t, "hello", req.Prompt)
	assert.Empty(t, req.History)
	assert.Equal(t, "sk-d", req.Credentials.DeepSeek)
	assert.Equal(t, "https://relay.example", req.BaseURLOverride)

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, providers.RoleUser, history[0].Role)
	assert.Equal(t, "hello", history[0].Text)
	assert.NotEmpty(t, history[0].ID)
}

func TestSession_SendThreadsPriorTurns(t *testing.T) {
	sender := &fakeSender{reply: "ok"}
	s := newTestSession(t, sender, nil)

	_, err := s.Send(context.Background(), "first", nil)
	require.NoError(t, err)
	_, err = s.Send(context.Background(), "second", nil)
	require.NoError(t, err)

	req := sender.last()
	require.Len(t, req.History, 2)
	assert.Equal(t, "first", req.History[0].Text)
	assert.Equal(t, providers.RoleAssistant, req.History[1].Role)
	assert.Equal(t, "second", req.Prompt)
}

func TestSession_ErrorsAreRecordedButNotSentAsContext(t *testing.T) {
	sender := &fakeSender{err: &providers.VendorHTTPError{Provider: providers.ProviderDeepSeek, StatusCode: 401, Body: "bad key"}}
	s := newTestSession(t, sender, nil)

	reply, err := s.Send(context.Background(), "first", nil)
	var httpErr *providers.VendorHTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.True(t, reply.IsError)
	assert.Equal(t, ErrorPrefix+err.Error(), reply.Text)

	sender.err = nil
	sender.reply = "fine"
	_, err = s.Send(context.Background(), "second", nil)
	require.NoError(t, err)

	req := sender.last()
	require.Len(t, req.History, 1, "the failed reply must be excluded")
	assert.Equal(t, "first", req.History[0].Text)
	assert.Len(t, s.History(), 4)
}

func TestSession_EmptyMessage(t *testing.T) {
	sender := &fakeSender{}
	s := newTestSession(t, sender, nil)

	_, err := s.Send(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, sender.requests)
	assert.Empty(t, s.History())

	sender.reply = "seen"
	_, err = s.Send(context.Background(), "", []providers.Attachment{{Name: "a.txt", MimeType: "text/plain", Payload: "x"}})
	assert.NoError(t, err)
}

func TestSession_RejectsConcurrentSend(t *testing.T) {
	sender := &fakeSender{reply: "slow", block: make(chan struct{})}
	s := newTestSession(t, sender, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.Send(context.Background(), "first", nil)
		done <- err
	}()

	require.Eventually(t, s.Busy, time.Second, 5*time.Millisecond)

	_, err := s.Send(context.Background(), "second", nil)
	assert.ErrorIs(t, err, ErrBusy)

	close(sender.block)
	require.NoError(t, <-done)
	assert.False(t, s.Busy())
	assert.Len(t, s.History(), 2, "the rejected send must not touch history")
}

func TestSession_SwitchModel(t *testing.T) {
	sender := &fakeSender{reply: "ok"}
	s := newTestSession(t, sender, nil)
	_, err := s.Send(context.Background(), "hi", nil)
	require.NoError(t, err)

	t.Run("unknown model", func(t *testing.T) {
		err := s.SwitchModel(context.Background(), "nope", true)
		assert.ErrorIs(t, err, ErrUnknownModel)
		assert.Equal(t, "deepseek-v3", s.Model().ID)
	})

	t.Run("with transfer", func(t *testing.T) {
		require.NoError(t, s.SwitchModel(context.Background(), "gpt-4o", true))
		assert.Equal(t, "gpt-4o", s.Model().ID)

		history := s.History()
		require.Len(t, history, 3)
		assert.Equal(t, "hi", history[0].Text)
		assert.Equal(t, TransferMarker, history[2].Text)

		// The source conversation is unchanged.
		assert.Len(t, s.HistoryFor("deepseek-v3"), 2)
	})

	t.Run("without transfer", func(t *testing.T) {
		require.NoError(t, s.SwitchModel(context.Background(), "grok-2", false))
		assert.Empty(t, s.History())
	})
}

func TestSession_ClearHistory(t *testing.T) {
	sender := &fakeSender{reply: "ok"}
	s := newTestSession(t, sender, nil)
	_, err := s.Send(context.Background(), "hi", nil)
	require.NoError(t, err)

	require.NoError(t, s.ClearHistory(context.Background()))
	assert.Empty(t, s.History())
}

func TestSession_PersistsHistories(t *testing.T) {
	st := store.New(store.NewMemoryBackend(), nil)
	sender := &fakeSender{reply: "remembered"}

	s := newTestSession(t, sender, st)
	_, err := s.Send(context.Background(), "hi", nil)
	require.NoError(t, err)

	reloaded := newTestSession(t, sender, st)
	history := reloaded.History()
	require.Len(t, history, 2)
	assert.Equal(t, "remembered", history[1].Text)
	assert.Equal(t, int64(1700000000), history[1].Timestamp.Unix())

	require.NoError(t, reloaded.ClearHistory(context.Background()))
	assert.Empty(t, newTestSession(t, sender, st).History())
}

func TestNewSession_Validation(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	_, err = NewSession(context.Background(), Options{Sender: &fakeSender{}})
	assert.Error(t, err)

	_, err = NewSession(context.Background(), Options{Catalog: cat})
	assert.Error(t, err)

	_, err = NewSession(context.Background(), Options{Catalog: cat, Sender: &fakeSender{}, Model: "missing"})
	assert.ErrorIs(t, err, ErrUnknownModel)

	s, err := NewSession(context.Background(), Options{Catalog: cat, Sender: &fakeSender{}})
	require.NoError(t, err)
	assert.Equal(t, catalog.DefaultModelID, s.Model().ID)
}
