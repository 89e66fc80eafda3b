package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dekho-agent/device-bridge/internal/channel"
	"github.com/dekho-agent/device-bridge/internal/logger"
	"github.com/rs/zerolog"
)

// maxCallBytes bounds a single encoded method call.
const maxCallBytes = 64 << 10

// InvocationObserver records the outcome of each dispatched call.
type InvocationObserver interface {
	ObserveInvocation(channelName, method string, status channel.Status)
}

// ChannelRegistrar exposes the messenger's channels over HTTP.
type ChannelRegistrar struct {
	messenger *channel.Messenger
	observer  InvocationObserver
	log       *zerolog.Logger
}

type channelInfo struct {
	Channel string   `json:"channel"`
	Methods []string `json:"methods"`
}

type errorBody struct {
	Error string `json:"error"`
}

func NewChannelRegistrar(messenger *channel.Messenger, observer InvocationObserver, log *zerolog.Logger) *ChannelRegistrar {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &ChannelRegistrar{messenger: messenger, observer: observer, log: log}
}

func (c *ChannelRegistrar) RegisterRoutes(router Router) {
	group := router.Group("/channels")
	group.HandleFunc("GET /{$}", c.listChannels)
	group.HandleFunc("GET /{channel}", c.describeChannel)
	group.HandleFunc("POST /{channel}", c.invoke)
}

func (c *ChannelRegistrar) listChannels(w http.ResponseWriter, r *http.Request) {
	names := c.messenger.Names()
	infos := make([]channelInfo, 0, len(names))
	for _, name := range names {
		ch, _ := c.messenger.Channel(name)
		infos = append(infos, channelInfo{Channel: name, Methods: ch.Methods()})
	}
	writeJSON(w, http.StatusOK, infos)
}

func (c *ChannelRegistrar) describeChannel(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("channel")
	ch, ok := c.messenger.Channel(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown channel " + name})
		return
	}
	writeJSON(w, http.StatusOK, channelInfo{Channel: name, Methods: ch.Methods()})
}

func (c *ChannelRegistrar) invoke(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("channel")
	log := c.log.With().Str("channel", name).Str("request_id", logger.RequestFromContext(r.Context()).ID).Logger()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCallBytes))
	if err != nil {
		status := http.StatusBadRequest
		if isBodyTooLarge(err) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorBody{Error: err.Error()})
		return
	}

	ch, ok := c.messenger.Channel(name)
	if !ok {
		log.Debug().Msg("No handler attached to channel")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	codec := c.messenger.Codec()
	call, err := codec.DecodeMethodCall(body)
	if err != nil {
		log.Warn().Err(err).Msg("Rejected method call")
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	resp := ch.Invoke(r.Context(), call)
	if c.observer != nil {
		c.observer.ObserveInvocation(name, call.Method, resp.Status)
	}
	log.Debug().Str("method", call.Method).Str("status", string(resp.Status)).Msg("Method call dispatched")

	reply, err := codec.EncodeEnvelope(resp)
	if err != nil {
		log.Error().Err(err).Str("method", call.Method).Msg("Failed to encode reply")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to encode reply"})
		return
	}
	if len(reply) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(reply)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
