package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"hextactics-server/internal/domain"
	"hextactics-server/internal/engine"
	"hextactics-server/pkg/api"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - посредник между Websocket и сессией GameService
type Client struct {
	Server *Server
	Conn   *websocket.Conn
	Send   chan api.ServerResponse

	session  *engine.Session
	entityID domain.EntityID
	updates  chan api.ServerResponse
	log      *logrus.Entry
}

func NewClient(s *Server, conn *websocket.Conn) *Client {
	return &Client{
		Server: s,
		Conn:   conn,
		Send:   make(chan api.ServerResponse, 256),
		log:    s.log.WithField("remote", conn.RemoteAddr().String()),
	}
}

// readPump читает команды от клиента
func (c *Client) readPump(ctx context.Context) {
	defer c.close()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.WithError(err).Warn("failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.log.WithError(err).Warn("failed to set pong read deadline")
		}
		return nil
	})

	// 1. HANDSHAKE: первая команда - init с параметрами сессии
	var loginCmd api.ClientCommand
	if err := c.Conn.ReadJSON(&loginCmd); err != nil {
		c.log.WithError(err).Warn("Handshake failed")
		return
	}
	if !strings.EqualFold(loginCmd.Action, api.ActionInit) {
		c.reject("first command must be init")
		return
	}

	cfg, err := sessionConfig(loginCmd)
	if err != nil {
		c.reject(err.Error())
		return
	}

	// 2. СОЗДАНИЕ СЕССИИ. Цикл живет, пока живо соединение.
	sess, err := c.Server.Engine.CreateSession(context.WithoutCancel(ctx), cfg)
	if err != nil {
		c.reject(err.Error())
		return
	}
	c.session = sess
	c.entityID = sess.Instance.Player.ID
	c.log = c.log.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"entity_id":  c.entityID,
	})
	c.log.Info("Client logged in")

	// 3. ПОДПИСКА НА ОБНОВЛЕНИЯ
	c.updates = c.Server.Engine.Hub.Register(c.entityID)

	// Пересылка обновлений из Hub в writePump
	go func(updates chan api.ServerResponse) {
		for msg := range updates {
			c.Send <- msg
		}
		close(c.Send)
	}(c.updates)

	// INIT (триггер первой отрисовки)
	if err := c.Server.Engine.Dispatch(sess.ID, api.ClientCommand{Action: api.ActionInit}); err != nil {
		c.log.WithError(err).Warn("init dispatch failed")
	}

	// 4. ЦИКЛ ЧТЕНИЯ КОМАНД
	for {
		var cmd api.ClientCommand
		if err := c.Conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Error("WS Error")
			}
			break
		}
		// Клиент управляет только своим игроком
		cmd.Token = string(c.entityID)
		if err := c.Server.Engine.Dispatch(sess.ID, cmd); err != nil {
			c.log.WithError(err).WithField("action", cmd.Action).Warn("Command dropped")
			c.Server.Engine.Hub.SendTo(c.entityID, api.ServerResponse{
				Type:       api.TypeError,
				MyEntityID: string(c.entityID),
				Error:      err.Error(),
			})
		}
	}
}

// close останавливает сессию и сохраняет ее лог
func (c *Client) close() {
	if c.session == nil {
		// Сессии нет - закрываем Send сами, иначе writePump не выйдет
		close(c.Send)
		return
	}

	c.Server.Engine.Hub.Unregister(c.entityID, c.updates)
	if sess := c.Server.Engine.Remove(c.session.ID); sess != nil {
		c.Server.saveReplay(sess)
	}
	c.log.Info("Client disconnected")
}

// reject отвечает ошибкой до создания сессии
func (c *Client) reject(reason string) {
	c.log.WithField("reason", reason).Warn("Handshake rejected")
	c.Send <- api.ServerResponse{Type: api.TypeError, Error: reason}
}

// writePump отправляет данные клиенту + Ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection in writePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.log.WithError(err).Debug("write close message failed")
				}
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				c.log.WithError(err).Debug("write json message failed")
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}

// sessionConfig собирает конфиг симуляции из payload команды init
func sessionConfig(cmd api.ClientCommand) (engine.Config, error) {
	var login api.LoginPayload
	if len(cmd.Payload) > 0 && string(cmd.Payload) != "null" {
		if err := json.Unmarshal(cmd.Payload, &login); err != nil {
			return engine.Config{}, err
		}
	}

	cfg := engine.Config{
		Seed:  login.Seed,
		MapID: login.MapID,
		Actor: domain.ActorState{
			Archetype: login.Archetype,
			Name:      login.Name,
		},
	}
	if cfg.Seed == "" {
		cfg.Seed = uuid.NewString()
	}
	return cfg, nil
}

// saveReplay пишет лог сессии, если в нем есть действия
func (s *Server) saveReplay(sess *engine.Session) {
	if s.Replays == nil {
		return
	}
	log := sess.Instance.ReplayLog()
	if len(log.Actions) == 0 {
		return
	}
	path, err := s.Replays.Save(&log)
	if err != nil {
		s.log.WithError(err).WithField("session_id", sess.ID).Error("Failed to save replay")
		return
	}
	s.log.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"path":       path,
		"actions":    len(log.Actions),
	}).Info("Replay saved")
}
