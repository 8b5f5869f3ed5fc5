// Journeycache - Travel Blog Journey Data Service
// Copyright 2026 The Jasper Cycles Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jaspercycles/journeycache

package websocket

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jaspercycles/journeycache/internal/logging"
	"github.com/jaspercycles/journeycache/internal/revalidate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Message types.
const (
	MessageTypeState   = "state"
	MessageTypeRefresh = "refresh"
	MessageTypePing    = "ping"
	MessageTypePong    = "pong"
)

// Message is one frame on the wire.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

var clientIDCounter atomic.Uint64

// Client serves one connection from one coordinator.
type Client[T any] struct {
	id    uint64
	conn  *websocket.Conn
	coord *revalidate.Coordinator[T]
	pongs chan struct{}
}

// NewClient binds conn to coord.
func NewClient[T any](conn *websocket.Conn, coord *revalidate.Coordinator[T]) *Client[T] {
	return &Client[T]{
		id:    clientIDCounter.Add(1),
		conn:  conn,
		coord: coord,
		pongs: make(chan struct{}, 1),
	}
}

// ID returns the client's process-unique id.
func (c *Client[T]) ID() uint64 {
	return c.id
}

// Run streams state until the peer disconnects or the coordinator closes.
// It closes the connection before returning.
func (c *Client[T]) Run() error {
	states, unsubscribe, err := c.coord.Subscribe()
	if err != nil {
		_ = c.conn.Close()
		return err
	}
	defer unsubscribe()

	done := make(chan struct{})
	go c.readPump(done)
	c.writePump(states, done)
	return nil
}

// readPump handles control messages. Only writePump writes to the
// connection, so pongs are handed over through c.pongs.
func (c *Client[T]) readPump(done chan<- struct{}) {
	defer close(done)

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Uint64("client_id", c.id).Msg("Unexpected websocket close")
			}
			return
		}

		switch msg.Type {
		case MessageTypeRefresh:
			c.coord.Refresh()
		case MessageTypePing:
			select {
			case c.pongs <- struct{}{}:
			default:
			}
		}
	}
}

func (c *Client[T]) writePump(states <-chan revalidate.State[T], done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case state, ok := <-states:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream closed"))
				return
			}
			if err := c.conn.WriteJSON(Message{Type: MessageTypeState, Data: state}); err != nil {
				logging.Debug().Err(err).Uint64("client_id", c.id).Msg("Websocket write failed")
				return
			}

		case <-c.pongs:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteJSON(Message{Type: MessageTypePong}); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}
