package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roxaimboy784-wq/AdCashy/internal/logger"
	"github.com/roxaimboy784-wq/AdCashy/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

// Watcher отсчёт рекламы с начислением награды в конце
type Watcher interface {
	Watch(ctx context.Context, userID string, onTick func(remaining int) error) (*service.RewardResult, error)
}

// Frame сообщение клиенту
type Frame struct {
	Type      string                `json:"type"`
	Remaining int                   `json:"remaining,omitempty"`
	Reward    *service.RewardResult `json:"reward,omitempty"`
	Error     string                `json:"error,omitempty"`
}

const (
	FrameTick   = "tick"
	FrameReward = "reward"
	FrameError  = "error"
)

// Client одно соединение просмотра рекламы. Закрытие соединения
// до конца отсчёта отменяет просмотр без награды
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	player Watcher
	cancel context.CancelFunc
	done   chan struct{}
}

func NewClient(userID string, conn *websocket.Conn, player Watcher) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 64),
		player: player,
		done:   make(chan struct{}),
	}
}

// Run блокирует до конца просмотра и закрытия соединения
func (c *Client) Run(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	defer c.cancel()

	written := make(chan struct{})
	go func() {
		c.writePump()
		close(written)
	}()
	go c.readPump()

	res, err := c.player.Watch(ctx, c.UserID, func(remaining int) error {
		return c.push(ctx, Frame{Type: FrameTick, Remaining: remaining})
	})
	switch {
	case err == nil:
		_ = c.push(ctx, Frame{Type: FrameReward, Reward: res})
	case ctx.Err() != nil:
		logger.Info("просмотр рекламы отменён клиентом", "user_id", c.UserID)
	default:
		_ = c.push(ctx, Frame{Type: FrameError, Error: err.Error()})
	}

	close(c.Send)
	<-written
	c.cancel()
	<-c.done
}

func (c *Client) push(ctx context.Context, f Frame) error {
	msg, err := json.Marshal(f)
	if err != nil {
		return err
	}
	select {
	case c.Send <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// read
func (c *Client) readPump() {
	defer func() {
		c.cancel()
		close(c.done)
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// входящие сообщения не нужны, читаем только чтобы заметить разрыв
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			logger.Debug("ws: чтение завершено", "user_id", c.UserID, "error", err)
			return
		}
	}
}

// write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws: ошибка записи", "user_id", c.UserID, "error", err)
				c.cancel()
				// дочитываем очередь, чтобы Run не заблокировался
				for range c.Send {
				}
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				for range c.Send {
				}
				return
			}
		}
	}
}
