package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vancomm/sweeper/internal/round"
)

// ConnectWS plays a session over a websocket. Each text message is a batch of
// newline separated commands. The batch stops at the first bad command and
// is answered with the round view, or with the error.
func (h RoundHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if err := h.sessions.With(id, func(*session) error { return nil }); err != nil {
		sendErrorOrLog(w, h.logger, http.StatusNotFound, err)
		return
	}

	c, err := h.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer c.Close()

	logger := h.logger.With(slog.String("session", id.String()))
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("abnormal ws break", slog.Any("error", err))
			}
			break
		}
		if mt != websocket.TextMessage {
			break
		}
		text := strings.TrimSpace(string(message))
		logger.Debug(fmt.Sprintf("\t> %s", text))

		var reply any
		err = h.sessions.With(id, func(sess *session) error {
			for _, line := range round.Lines(text) {
				cmd, err := round.ParseCommand(line)
				if err != nil {
					return err
				}
				if err := cmd.Apply(sess.c); err != nil {
					return err
				}
				if cmd.Name == "n" || cmd.Name == "x" {
					sess.renew()
				} else {
					h.settle(r.Context(), sess)
				}
			}
			reply = NewRoundDTO(sess.id, sess.c)
			return nil
		})
		if err != nil {
			logger.Warn("unable to process command", slog.Any("error", err))
			reply = wrapError(err)
		}

		c.SetWriteDeadline(time.Now().Add(h.ws.WriteTimeout))
		if err := c.WriteJSON(reply); err != nil {
			logger.Error("unable to write json", slog.Any("error", err))
			break
		}
		logger.Debug("\t< <round view>")
	}
}
