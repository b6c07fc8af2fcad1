package servertask

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterAction struct {
	Delta int `json:"delta"`
}

func TestReducer_DispatchIsFireAndForget(t *testing.T) {
	send, sent := recordingSender()
	r := NewReducer[int, counterAction]("c1", "r1", 0, send)

	err := r.Dispatch(context.Background(), counterAction{Delta: 1})
	require.NoError(t, err)

	msgs := sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, "DispatchServerReducer", msgs[0].Target)
	assert.Equal(t, 0, r.State(), "Dispatch does not wait for a reply")
}

func TestReducer_DispatchAsyncResolvesOnApplyReply(t *testing.T) {
	send, _ := recordingSender()
	r := NewReducer[int, counterAction]("c1", "r1", 0, send)

	done := make(chan struct{})
	var got int
	var gotErr error
	go func() {
		got, gotErr = r.DispatchAsync(context.Background(), counterAction{Delta: 5})
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	r.ApplyReply(5, nil)

	<-done
	require.NoError(t, gotErr)
	assert.Equal(t, 5, got)
	assert.Equal(t, 5, r.State())
}

func TestReducer_DispatchAsyncResolvesFIFO(t *testing.T) {
	send, _ := recordingSender()
	r := NewReducer[int, counterAction]("c1", "r1", 0, send)

	results := make(chan int, 2)
	for i := 0; i < 2; i++ {
		go func() {
			v, _ := r.DispatchAsync(context.Background(), counterAction{Delta: 1})
			results <- v
		}()
	}
	time.Sleep(10 * time.Millisecond)

	r.ApplyReply(1, nil)
	first := <-results
	assert.Equal(t, 1, first)

	r.ApplyReply(2, nil)
	second := <-results
	assert.Equal(t, 2, second)
}

func TestReducer_DispatchAsyncPropagatesError(t *testing.T) {
	send, _ := recordingSender()
	r := NewReducer[int, counterAction]("c1", "r1", 0, send)

	done := make(chan struct{})
	var gotErr error
	go func() {
		_, gotErr = r.DispatchAsync(context.Background(), counterAction{Delta: 1})
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	r.ApplyReply(0, errors.New("rejected"))
	<-done

	assert.EqualError(t, gotErr, "rejected")
}

func TestReducer_DispatchAsync_ContextCancelled(t *testing.T) {
	send, _ := recordingSender()
	r := NewReducer[int, counterAction]("c1", "r1", 0, send)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := r.DispatchAsync(ctx, counterAction{Delta: 1})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
