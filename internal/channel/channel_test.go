package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChannel_Invoke(t *testing.T) {
	ctx := context.Background()
	ch := New("test_channel")
	ch.Handle("echo", func(_ context.Context, call MethodCall) (any, error) {
		return string(call.Arguments), nil
	})
	ch.Handle("fail", func(context.Context, MethodCall) (any, error) {
		return nil, NewError("SOME_CODE", "went wrong", "detail")
	})
	ch.Handle("wrapped", func(context.Context, MethodCall) (any, error) {
		return nil, fmt.Errorf("outer: %w", NewError("WRAPPED", "inner", nil))
	})
	ch.Handle("plain", func(context.Context, MethodCall) (any, error) {
		return nil, errors.New("boom")
	})
	ch.Handle("unsupported", func(context.Context, MethodCall) (any, error) {
		return nil, fmt.Errorf("unsupported variant: %w", ErrNotImplemented)
	})
	ch.Handle("panics", func(context.Context, MethodCall) (any, error) {
		panic("kaboom")
	})

	t.Run("success", func(t *testing.T) {
		resp := ch.Invoke(ctx, MethodCall{Method: "echo", Arguments: []byte(`"hi"`)})
		require.Equal(t, Success(`"hi"`), resp)
		require.True(t, resp.IsSuccess())
	})

	t.Run("structured error", func(t *testing.T) {
		resp := ch.Invoke(ctx, MethodCall{Method: "fail"})
		require.Equal(t, StatusError, resp.Status)
		require.Equal(t, &Error{Code: "SOME_CODE", Message: "went wrong", Details: "detail"}, resp.Error)
	})

	t.Run("wrapped structured error", func(t *testing.T) {
		resp := ch.Invoke(ctx, MethodCall{Method: "wrapped"})
		require.Equal(t, StatusError, resp.Status)
		require.Equal(t, "WRAPPED", resp.Error.Code)
	})

	t.Run("plain error becomes unhandled", func(t *testing.T) {
		resp := ch.Invoke(ctx, MethodCall{Method: "plain"})
		require.Equal(t, StatusError, resp.Status)
		require.Equal(t, ErrorCodeUnhandled, resp.Error.Code)
		require.Equal(t, "boom", resp.Error.Message)
	})

	t.Run("handler not implemented", func(t *testing.T) {
		require.Equal(t, NotImplemented(), ch.Invoke(ctx, MethodCall{Method: "unsupported"}))
	})

	t.Run("unknown method", func(t *testing.T) {
		resp := ch.Invoke(ctx, MethodCall{Method: "getBatteryLevel"})
		require.Equal(t, StatusNotImplemented, resp.Status)
		require.Nil(t, resp.Error)
		require.Nil(t, resp.Result)
	})

	t.Run("panic is contained", func(t *testing.T) {
		resp := ch.Invoke(ctx, MethodCall{Method: "panics"})
		require.Equal(t, StatusError, resp.Status)
		require.Equal(t, ErrorCodeUnhandled, resp.Error.Code)
		require.Contains(t, resp.Error.Message, "kaboom")
	})
}

func TestChannel_HandleReplaceAndRemove(t *testing.T) {
	ctx := context.Background()
	ch := New("c")
	ch.Handle("m", func(context.Context, MethodCall) (any, error) { return 1, nil })
	ch.Handle("m", func(context.Context, MethodCall) (any, error) { return 2, nil })
	ch.Handle("a", func(context.Context, MethodCall) (any, error) { return nil, nil })

	require.Equal(t, []string{"a", "m"}, ch.Methods())
	require.Equal(t, Success(2), ch.Invoke(ctx, MethodCall{Method: "m"}))

	ch.Handle("m", nil)
	require.Equal(t, []string{"a"}, ch.Methods())
	require.Equal(t, NotImplemented(), ch.Invoke(ctx, MethodCall{Method: "m"}))
}

func TestChannel_ConcurrentInvoke(t *testing.T) {
	ch := New("c")
	ch.Handle("id", func(context.Context, MethodCall) (any, error) { return "same", nil })

	var wg sync.WaitGroup
	results := make([]Response, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = ch.Invoke(context.Background(), MethodCall{Method: "id"})
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		require.Equal(t, Success("same"), r)
	}
}

func TestError_Error(t *testing.T) {
	require.Equal(t, "C: m (d)", NewError("C", "m", "d").Error())
	require.Equal(t, "C: m", NewError("C", "m", nil).Error())
	require.Equal(t, "C", NewError("C", "", nil).Error())
}
