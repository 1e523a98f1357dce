package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sugawarayuuta/sonnet"
	"nhooyr.io/websocket"
)

const wsWriteTimeout = 5 * time.Second

// createWebsocketHandler streams runner events to the client as JSON text
// frames until either side goes away.
func createWebsocketHandler(runner *Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Websocket upgrade failed")
			return
		}
		defer c.Close(websocket.StatusInternalError, "unexpected close")

		// Incoming messages are ignored; this also notices client closes.
		ctx := c.CloseRead(r.Context())

		unsub, ch := runner.Subscribe()
		defer unsub()

		hello := RunnerEvent{Type: EventState, State: runner.State(), Game: runner.CurrentGame()}
		if err := writeEvent(ctx, c, hello); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-ch:
				if !ok {
					c.Close(websocket.StatusGoingAway, "runner stopped")
					return
				}
				if err := writeEvent(ctx, c, event); err != nil {
					log.Debug().Err(err).Msg("Websocket write failed")
					return
				}
			}
		}
	}
}

func writeEvent(ctx context.Context, c *websocket.Conn, event RunnerEvent) error {
	js, err := sonnet.Marshal(event)
	if err != nil {
		return err
	}
	return writeTimeout(ctx, wsWriteTimeout, c, js)
}

func writeTimeout(ctx context.Context, timeout time.Duration, c *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return c.Write(ctx, websocket.MessageText, msg)
}
