package control

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"fxdemo/internal/pipeline"
)

// applyTimeout bounds how long a websocket request waits for the render thread.
const applyTimeout = 2 * time.Second

// StageState is the wire form of one stage in /state and control replies.
type StageState struct {
	ID      string             `json:"id"`
	Kind    pipeline.Kind      `json:"kind"`
	Enabled bool               `json:"enabled"`
	Params  map[string]float64 `json:"params,omitempty"`
}

type stateMessage struct {
	Stages []StageState `json:"stages"`
}

// request is a control message. Value is a number, or a boolean for "enabled" and bool parameters.
type request struct {
	Stage string          `json:"stage"`
	Param string          `json:"param"`
	Value json.RawMessage `json:"value"`
}

type reply struct {
	OK     bool         `json:"ok"`
	Error  string       `json:"error,omitempty"`
	Stages []StageState `json:"stages,omitempty"`
}

// Server exposes the pipeline over HTTP: /control is a websocket that accepts events,
// /state returns the last published snapshot.
type Server struct {
	bus *Bus
	log zerolog.Logger

	mu     sync.RWMutex
	stages []StageState
	http   *http.Server
}

func NewServer(bus *Bus, log zerolog.Logger) *Server {
	return &Server{bus: bus, log: log}
}

// Publish records the pipeline state served to clients. Call it on the render thread after Drain.
func (s *Server) Publish(stages []pipeline.Stage) {
	out := make([]StageState, len(stages))
	for i, st := range stages {
		out[i] = StageState{ID: st.ID(), Kind: st.Kind(), Enabled: st.Enabled()}
		if len(pipeline.Params(st.Kind())) > 0 {
			out[i].Params = st.Values()
		}
	}
	s.mu.Lock()
	s.stages = out
	s.mu.Unlock()
}

func (s *Server) snapshot() []StageState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stages
}

// Handler returns the routes, for use with ListenAndServe or httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/state", s.HandleState)
	return mux
}

// ListenAndServe serves Handler on addr until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.mu.Lock()
	s.http = &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	srv := s.http
	s.mu.Unlock()
	s.log.Info().Str("addr", addr).Msg("control server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.http
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) HandleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stateMessage{Stages: s.snapshot()})
}

func (s *Server) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		resp := reply{OK: true}
		if err := s.handle(r.Context(), data); err != nil {
			resp = reply{Error: err.Error()}
			s.log.Debug().Err(err).Msg("control request failed")
		}
		resp.Stages = s.snapshot()
		b, _ := json.Marshal(resp)
		conn.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, data []byte) error {
	ev, err := DecodeEvent(data)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, applyTimeout)
	defer cancel()
	return s.bus.Submit(ctx, ev)
}

// DecodeEvent parses a control message; true and false are accepted as 1 and 0.
func DecodeEvent(data []byte) (pipeline.Event, error) {
	var req request
	if err := json.Unmarshal(data, &req); err != nil {
		return pipeline.Event{}, fmt.Errorf("%w: %v", pipeline.ErrInvalidArgument, err)
	}
	if req.Stage == "" || req.Param == "" {
		return pipeline.Event{}, fmt.Errorf("%w: stage and param are required", pipeline.ErrInvalidArgument)
	}
	ev := pipeline.Event{Stage: req.Stage, Param: req.Param}
	raw := bytes.TrimSpace(req.Value)
	switch {
	case bytes.Equal(raw, []byte("true")):
		ev.Value = 1
	case bytes.Equal(raw, []byte("false")):
		ev.Value = 0
	default:
		if err := json.Unmarshal(raw, &ev.Value); err != nil {
			return pipeline.Event{}, fmt.Errorf("%w: value %s is not a number or bool", pipeline.ErrInvalidArgument, raw)
		}
	}
	return ev, nil
}
