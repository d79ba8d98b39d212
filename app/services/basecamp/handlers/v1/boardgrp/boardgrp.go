// Package boardgrp maintains the group of handlers for the community
// message board and the activity event stream.
package boardgrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/basecamplabs/basecamp/business/core/board"
	"github.com/basecamplabs/basecamp/business/web/errs"
	"github.com/basecamplabs/basecamp/foundation/events"
	"github.com/basecamplabs/basecamp/foundation/validate"
	"github.com/basecamplabs/basecamp/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of board endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	Board board.Core
	WS    websocket.Upgrader
	Evts  *events.Feed
}

type newMessage struct {
	Wallet  string `json:"wallet" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// Validate checks the payload against the declared rules.
func (n newMessage) Validate() error {
	return validate.Check(n)
}

// Query returns the most recent board messages, newest first.
func (h Handlers) Query(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errs.NewTrusted(fmt.Errorf("invalid limit [%s]", v), http.StatusBadRequest)
		}
		limit = n
	}

	msgs, err := h.Board.Latest(ctx, limit)
	if err != nil {
		return fmt.Errorf("querying messages: %w", err)
	}

	return web.Respond(ctx, w, msgs, http.StatusOK)
}

// Post stores a new message on the board.
func (h Handlers) Post(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var app newMessage
	if err := web.Decode(r, &app); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	msg, err := h.Board.Post(ctx, app.Wallet, app.Content)
	if err != nil {
		if errors.Is(err, board.ErrEmptyMessage) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return fmt.Errorf("posting message: %w", err)
	}

	h.Evts.Send(events.Event{
		Kind:    "board",
		Wallet:  msg.Wallet,
		Message: msg.Content,
	})

	return web.Respond(ctx, w, msg, http.StatusCreated)
}

// Events handles a web socket to provide activity events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	h.Log.Infow("events: client connected", "traceid", v.TraceID)

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(ev); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
