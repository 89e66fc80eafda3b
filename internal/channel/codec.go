package channel

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidCall     = errors.New("invalid method call")
	ErrInvalidEnvelope = errors.New("invalid reply envelope")
)

// MethodCodec converts method calls and replies to and from bytes.
type MethodCodec interface {
	EncodeMethodCall(call MethodCall) ([]byte, error)
	DecodeMethodCall(data []byte) (MethodCall, error)
	EncodeEnvelope(resp Response) ([]byte, error)
	DecodeEnvelope(data []byte) (Response, error)
}

// JSONMethodCodec encodes calls as {"method": ..., "args": ...} and replies as
// [result] on success, [code, message, details] on error and an empty reply when
// the method is not implemented.
type JSONMethodCodec struct{}

func (JSONMethodCodec) EncodeMethodCall(call MethodCall) ([]byte, error) {
	if call.Method == "" {
		return nil, fmt.Errorf("%w: empty method name", ErrInvalidCall)
	}
	wire := struct {
		Method string          `json:"method"`
		Args   json.RawMessage `json:"args"`
	}{Method: call.Method, Args: call.Arguments}
	if len(wire.Args) == 0 {
		wire.Args = json.RawMessage("null")
	}
	return json.Marshal(wire)
}

func (JSONMethodCodec) DecodeMethodCall(data []byte) (MethodCall, error) {
	var wire struct {
		Method *string         `json:"method"`
		Args   json.RawMessage `json:"args"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return MethodCall{}, fmt.Errorf("%w: %w", ErrInvalidCall, err)
	}
	if wire.Method == nil || *wire.Method == "" {
		return MethodCall{}, fmt.Errorf("%w: missing method name", ErrInvalidCall)
	}
	call := MethodCall{Method: *wire.Method}
	if len(wire.Args) > 0 && !bytes.Equal(wire.Args, []byte("null")) {
		call.Arguments = wire.Args
	}
	return call, nil
}

func (JSONMethodCodec) EncodeEnvelope(resp Response) ([]byte, error) {
	switch resp.Status {
	case StatusSuccess:
		return json.Marshal([]any{resp.Result})
	case StatusError:
		if resp.Error == nil {
			return nil, fmt.Errorf("%w: error reply without error", ErrInvalidEnvelope)
		}
		var message any
		if resp.Error.Message != "" {
			message = resp.Error.Message
		}
		return json.Marshal([]any{resp.Error.Code, message, resp.Error.Details})
	case StatusNotImplemented:
		return []byte{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidEnvelope, resp.Status)
	}
}

func (JSONMethodCodec) DecodeEnvelope(data []byte) (Response, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NotImplemented(), nil
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}

	switch len(parts) {
	case 1:
		var result any
		if err := json.Unmarshal(parts[0], &result); err != nil {
			return Response{}, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
		}
		return Success(result), nil
	case 3:
		var code string
		if err := json.Unmarshal(parts[0], &code); err != nil {
			return Response{}, fmt.Errorf("%w: error code: %w", ErrInvalidEnvelope, err)
		}
		var message *string
		if err := json.Unmarshal(parts[1], &message); err != nil {
			return Response{}, fmt.Errorf("%w: error message: %w", ErrInvalidEnvelope, err)
		}
		var details any
		if err := json.Unmarshal(parts[2], &details); err != nil {
			return Response{}, fmt.Errorf("%w: error details: %w", ErrInvalidEnvelope, err)
		}
		chErr := &Error{Code: code, Details: details}
		if message != nil {
			chErr.Message = *message
		}
		return Failure(chErr), nil
	default:
		return Response{}, fmt.Errorf("%w: unexpected length %d", ErrInvalidEnvelope, len(parts))
	}
}
