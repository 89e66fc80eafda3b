package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dekho-agent/device-bridge/internal/channel"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const ErrorCodeInvalidFrame = "INVALID_FRAME"

// Frame is one method call sent over the websocket.
type Frame struct {
	ID      json.RawMessage `json:"id,omitempty"`
	Channel string          `json:"channel"`
	Method  string          `json:"method"`
	Args    json.RawMessage `json:"args,omitempty"`
}

// Reply answers the Frame with the same id.
type Reply struct {
	ID json.RawMessage `json:"id,omitempty"`
	channel.Response
}

// WebSocketRegistrar serves method calls on a long-lived websocket connection.
// Frames on one connection are answered in order.
type WebSocketRegistrar struct {
	messenger *channel.Messenger
	observer  InvocationObserver
	log       *zerolog.Logger
	upgrader  websocket.Upgrader
}

func NewWebSocketRegistrar(messenger *channel.Messenger, observer InvocationObserver, log *zerolog.Logger) *WebSocketRegistrar {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &WebSocketRegistrar{
		messenger: messenger,
		observer:  observer,
		log:       log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

func (ws *WebSocketRegistrar) RegisterRoutes(router Router) {
	router.Group("/channels").HandleFunc("GET /ws", ws.serve)
}

func (ws *WebSocketRegistrar) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		ws.log.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxCallBytes)

	ws.log.Debug().Str("remote_addr", r.RemoteAddr).Msg("Websocket client connected")
	ctx := r.Context()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ws.log.Warn().Err(err).Msg("Websocket read failed")
			}
			return
		}

		var reply Reply
		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			reply = Reply{Response: channel.Failure(channel.NewError(ErrorCodeInvalidFrame, err.Error(), nil))}
		} else {
			reply = ws.handle(ctx, frame)
		}

		if err := conn.WriteJSON(reply); err != nil {
			ws.log.Warn().Err(err).Msg("Websocket write failed")
			return
		}
	}
}

func (ws *WebSocketRegistrar) handle(ctx context.Context, frame Frame) Reply {
	if frame.Method == "" {
		return Reply{ID: frame.ID, Response: channel.Failure(channel.NewError(ErrorCodeInvalidFrame, "method is required", nil))}
	}
	call := channel.MethodCall{Method: frame.Method, Arguments: frame.Args}
	resp := ws.messenger.Invoke(ctx, frame.Channel, call)
	if _, ok := ws.messenger.Channel(frame.Channel); ok && ws.observer != nil {
		ws.observer.ObserveInvocation(frame.Channel, frame.Method, resp.Status)
	}
	return Reply{ID: frame.ID, Response: resp}
}
