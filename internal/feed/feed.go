// Package feed consumes the classroom's push channel. Connect, reconnect
// and backoff belong to the transport collaborator; this package only
// decodes the messages a connection delivers and surfaces its state.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/echoclass/classboard/internal/dto"
	"github.com/echoclass/classboard/internal/observability"
)

// ErrMalformedMessage indicates a frame that is not valid JSON for the push
// union. Callers drop the frame with a diagnostic and keep reading.
var ErrMalformedMessage = errors.New("malformed push message")

// ErrClosed indicates the channel is gone; already-merged state stays put
// and the caller should wait for a fresh connection plus a full snapshot.
var ErrClosed = errors.New("push channel closed")

// Conn is the slice of a websocket connection the feed reads from.
// *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Feed decodes push messages off a live connection.
type Feed struct {
	mu      sync.RWMutex
	conn    Conn
	state   dto.ConnState
	onState func(dto.ConnState)
	logger  zerolog.Logger
}

// New wraps an established connection. onState may be nil.
func New(conn Conn, onState func(dto.ConnState), logger zerolog.Logger) *Feed {
	f := &Feed{
		conn:    conn,
		onState: onState,
		logger:  logger.With().Str("component", "feed").Logger(),
	}
	f.setState(dto.ConnOpen)
	return f
}

// Dial opens the teacher socket for a classroom and wraps it.
func Dial(ctx context.Context, wsBase, token, code string, onState func(dto.ConnState), logger zerolog.Logger) (*Feed, error) {
	endpoint := fmt.Sprintf("%sws/teacher/?token=%s&code=%s", wsBase, url.QueryEscape(token), url.QueryEscape(code))

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial push channel: %w", err)
	}
	return New(conn, onState, logger), nil
}

// State reports the current connection state.
func (f *Feed) State() dto.ConnState {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// Next blocks for the next push message. A malformed frame yields
// ErrMalformedMessage; a dead connection yields ErrClosed.
func (f *Feed) Next() (dto.PushMessage, error) {
	_, raw, err := f.conn.ReadMessage()
	if err != nil {
		f.setState(dto.ConnClosed)
		return dto.PushMessage{}, fmt.Errorf("%w: %v", ErrClosed, err)
	}

	var msg dto.PushMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return dto.PushMessage{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return msg, nil
}

// Close shuts the connection down.
func (f *Feed) Close() error {
	f.setState(dto.ConnClosing)
	err := f.conn.Close()
	f.setState(dto.ConnClosed)
	return err
}

func (f *Feed) setState(state dto.ConnState) {
	f.mu.Lock()
	prev := f.state
	f.state = state
	f.mu.Unlock()

	if prev == state {
		return
	}
	observability.FeedState().Set(float64(state))
	f.logger.Debug().Str("state", state.String()).Msg("push channel state changed")
	if f.onState != nil {
		f.onState(state)
	}
}
