package control

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxdemo/internal/pipeline"
)

func newPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.Configure(pipeline.DefaultSpecs())
	require.NoError(t, err)
	return p
}

func TestBusDrainAppliesInOrder(t *testing.T) {
	p := newPipeline(t)
	bus := NewBus(8, zerolog.Nop())

	require.NoError(t, bus.Send(pipeline.Event{Stage: "bloom", Param: "strength", Value: 1}))
	require.NoError(t, bus.Send(pipeline.Event{Stage: "bloom", Param: "strength", Value: 2}))
	require.NoError(t, bus.Send(pipeline.Event{Stage: "bloom", Param: "nope", Value: 2}))
	assert.Equal(t, 3, bus.Pending())

	assert.Equal(t, 2, bus.Drain(p.Apply))
	assert.Equal(t, 0, bus.Pending())
	v, _ := p.Param("bloom", "strength")
	assert.Equal(t, 2.0, v)
}

func TestBusSendWhenFull(t *testing.T) {
	bus := NewBus(1, zerolog.Nop())
	require.NoError(t, bus.Send(pipeline.Event{}))
	assert.ErrorIs(t, bus.Send(pipeline.Event{}), ErrBusFull)
}

func TestBusSubmitReturnsApplyResult(t *testing.T) {
	p := newPipeline(t)
	bus := NewBus(4, zerolog.Nop())

	errs := make(chan error, 1)
	go func() {
		errs <- bus.Submit(context.Background(), pipeline.Event{Stage: "vignette", Param: "darkness", Value: 99})
	}()
	require.Eventually(t, func() bool { return bus.Pending() == 1 }, time.Second, time.Millisecond)
	bus.Drain(p.Apply)
	assert.ErrorIs(t, <-errs, pipeline.ErrOutOfRange)
}

func TestBusSubmitHonoursContext(t *testing.T) {
	bus := NewBus(1, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Submit(ctx, pipeline.Event{}), context.DeadlineExceeded)
}

func TestDecodeEvent(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"stage":"bloom","param":"enabled","value":true}`))
	require.NoError(t, err)
	assert.Equal(t, pipeline.Event{Stage: "bloom", Param: "enabled", Value: 1}, ev)

	ev, err = DecodeEvent([]byte(`{"stage":"pixelation","param":"pixelSize","value":8}`))
	require.NoError(t, err)
	assert.Equal(t, 8.0, ev.Value)

	for _, bad := range []string{`nope`, `{"stage":"bloom"}`, `{"stage":"bloom","param":"strength","value":"x"}`, `{"stage":"bloom","param":"strength"}`} {
		_, err := DecodeEvent([]byte(bad))
		assert.ErrorIs(t, err, pipeline.ErrInvalidArgument, bad)
	}
}

// renderLoop stands in for the render thread: it drains the bus and publishes state.
func renderLoop(t *testing.T, p *pipeline.Pipeline, bus *Bus, srv *Server) {
	done := make(chan struct{})
	stopped := make(chan struct{})
	t.Cleanup(func() {
		close(done)
		<-stopped
	})
	srv.Publish(p.Stages())
	go func() {
		defer close(stopped)
		for {
			select {
			case <-done:
				return
			case <-time.After(time.Millisecond):
				if bus.Drain(p.Apply) > 0 {
					srv.Publish(p.Stages())
				}
			}
		}
	}()
}

func TestServerControlAndState(t *testing.T) {
	p := newPipeline(t)
	bus := NewBus(16, zerolog.Nop())
	srv := NewServer(bus, zerolog.Nop())
	renderLoop(t, p, bus, srv)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/control"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	send := func(msg string) reply {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var r reply
		require.NoError(t, json.Unmarshal(data, &r))
		return r
	}

	r := send(`{"stage":"bloom","param":"enabled","value":true}`)
	require.True(t, r.OK, r.Error)
	r = send(`{"stage":"bloom","param":"strength","value":1.5}`)
	require.True(t, r.OK, r.Error)

	r = send(`{"stage":"bloom","param":"strength","value":7}`)
	assert.False(t, r.OK)
	assert.Contains(t, r.Error, "out of range")

	r = send(`{"stage":"lensFlare","param":"strength","value":1}`)
	assert.False(t, r.OK)
	assert.Contains(t, r.Error, "unknown stage")

	s, _ := p.Stage("bloom")
	assert.True(t, s.Enabled())
	assert.Equal(t, float32(1.5), s.Bloom().Strength)

	require.Eventually(t, func() bool {
		resp, err := http.Get(ts.URL + "/state")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var st stateMessage
		if json.NewDecoder(resp.Body).Decode(&st) != nil {
			return false
		}
		for _, stage := range st.Stages {
			if stage.ID == "bloom" {
				return stage.Enabled && stage.Params["strength"] == 1.5 && stage.Kind == pipeline.Bloom
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}
