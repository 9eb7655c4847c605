// Package relay implements the message relay core: validate an outbound
// message, persist it, fan it out to the receiver's live connections and
// confirm it to the sender.
package relay

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/photonp05/VartaLab/internal/metrics"
	"github.com/photonp05/VartaLab/internal/models"
	"github.com/photonp05/VartaLab/internal/presence"
	"github.com/photonp05/VartaLab/internal/store"
)

// MaxTextBytes is the largest accepted message text.
const MaxTextBytes = 4096

// Engine relays messages between users. Persistence always happens before
// fan-out: a crash between the two never loses a message, and a conversation
// read always returns a superset of what any push delivered.
type Engine struct {
	store    store.DataStore
	presence *presence.Registry
	log      zerolog.Logger
}

// NewEngine creates a relay engine.
func NewEngine(ds store.DataStore, reg *presence.Registry, logger zerolog.Logger) *Engine {
	return &Engine{
		store:    ds,
		presence: reg,
		log:      logger.With().Str("component", "relay").Logger(),
	}
}

// Send validates, persists and distributes one message from sender to
// receiverID. The returned message carries the store-assigned ID and
// timestamp.
//
// On success a receive_message event is pushed to every live connection of
// the receiver (fire-and-forget; a connection that disconnects between
// snapshot and push just misses it) and a message_sent event is pushed to
// origin only. On failure nothing is persisted and nothing is emitted; the
// caller decides whether to signal the error locally.
func (e *Engine) Send(ctx context.Context, sender *models.User, origin presence.Session, receiverID int64, text string) (*models.Message, error) {
	if sender == nil {
		return nil, ErrUnauthenticated
	}
	if text == "" {
		return nil, ErrEmptyText
	}
	if len(text) > MaxTextBytes {
		return nil, ErrTextTooLong
	}

	receiver, err := e.store.GetUserByID(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if receiver == nil {
		return nil, ErrUnknownReceiver
	}

	msg, err := e.store.AppendMessage(ctx, sender.ID, receiverID, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	metrics.MessagesPersisted.Inc()

	inbound := InboundMessage{
		Text:              msg.Text,
		SenderID:          sender.ID,
		SenderUsername:    sender.Username,
		SenderDisplayName: sender.DisplayName,
		CreatedAt:         msg.CreatedAt,
	}
	for _, s := range e.presence.Live(receiverID) {
		if s.Push(EventReceiveMessage, inbound) {
			metrics.PushesDelivered.Inc()
		} else {
			metrics.PushesDropped.Inc()
			e.log.Debug().
				Str("conn_id", s.ID()).
				Int64("receiver_id", receiverID).
				Msg("push dropped")
		}
	}

	if origin != nil {
		ack := SendConfirmation{
			Text:       msg.Text,
			ReceiverID: receiverID,
			CreatedAt:  msg.CreatedAt,
		}
		if !origin.Push(EventMessageSent, ack) {
			metrics.PushesDropped.Inc()
		}
	}

	return msg, nil
}
