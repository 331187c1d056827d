package ws

import (
	"context"
	"encoding/json"

	"github.com/gofiber/contrib/websocket"

	"github.com/emandor/mcq_mentor/internal/mentor"
	"github.com/emandor/mcq_mentor/internal/telemetry"
)

type Action string

const ActionGenerate Action = "generate"

type Event string

const (
	EventGenerated Event = "mcq.event.generated"
	EventError     Event = "mcq.event.error"
)

type ClientMessage struct {
	Action  Action `json:"action"`
	Variant string `json:"variant"`
	Topic   string `json:"topic"`
}

type PayloadEvent struct {
	Event   Event  `json:"event"`
	Variant string `json:"variant,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type Generator interface {
	Generate(ctx context.Context, v mentor.Variant, topic string) (mentor.Result, error)
}

// Handle reads messages until the peer goes away. Messages are run one
// at a time, so one connection never has two vendor calls in flight.
// A dedicated reader notices the peer leaving and cancels the call that
// is running.
func Handle(gen Generator) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		log := telemetry.L().With().Str("module", "ws").Logger()
		log.Info().Msg("ws_connected")

		ctx, cancel := context.WithCancel(context.Background())
		inbox := make(chan []byte)
		done := make(chan struct{})
		go func() {
			defer close(done)
			defer close(inbox)
			defer cancel()
			for {
				_, msg, err := c.ReadMessage()
				if err != nil {
					return
				}
				select {
				case inbox <- msg:
				case <-ctx.Done():
					return
				}
			}
		}()

		for msg := range inbox {
			pl, ok := Dispatch(ctx, gen, msg)
			if !ok {
				continue
			}
			if err := c.WriteJSON(pl); err != nil {
				log.Warn().Err(err).Msg("ws_write_failed")
				break
			}
		}

		cancel()
		_ = c.Close()
		<-done
		log.Info().Msg("ws_closed")
	}
}

// Dispatch decodes one client message and runs it. ok is false for
// messages that get no reply (bad json, unknown action).
func Dispatch(ctx context.Context, gen Generator, msg []byte) (PayloadEvent, bool) {
	var cm ClientMessage
	if err := json.Unmarshal(msg, &cm); err != nil {
		return PayloadEvent{}, false
	}
	if cm.Action != ActionGenerate {
		return PayloadEvent{}, false
	}

	v, ok := mentor.LookupVariant(cm.Variant)
	if !ok {
		return PayloadEvent{
			Event:   EventError,
			Variant: cm.Variant,
			Data:    ErrorPayload{Error: "unknown_variant", Message: "unknown variant"},
		}, true
	}

	res, err := gen.Generate(ctx, v, cm.Topic)
	if err != nil {
		code, _ := mentor.ErrorCode(err)
		return PayloadEvent{
			Event:   EventError,
			Variant: v.Slug,
			Data:    ErrorPayload{Error: code, Message: mentor.FailureMessage},
		}, true
	}
	return PayloadEvent{Event: EventGenerated, Variant: v.Slug, Data: res}, true
}
