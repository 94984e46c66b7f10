package natsadapter

import (
	"encoding/json"
	"errors"

	nats "github.com/nats-io/nats.go"

	"github.com/Ritahchanger/propertify-console/internal/domain"
)

// SnapshotHandler answers session-snapshot requests over NATS request/reply,
// letting sibling console processes ask "who is logged in" without an HTTP
// round trip.
type SnapshotHandler struct {
	snapshot  func() domain.SessionState
	respondFn func(msg *nats.Msg, resp snapshotResponse)
}

type snapshotResponse struct {
	OK            bool   `json:"ok"`
	Authenticated bool   `json:"authenticated"`
	Loading       bool   `json:"loading"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	Role          string `json:"role,omitempty"`
	Error         string `json:"error,omitempty"`
}

func NewSnapshotHandler(snapshot func() domain.SessionState) *SnapshotHandler {
	return &SnapshotHandler{snapshot: snapshot, respondFn: respond}
}

func (h *SnapshotHandler) Subscribe(conn *nats.Conn, subject, queue string) error {
	if conn == nil {
		return errors.New("nats connection is nil")
	}
	_, err := conn.QueueSubscribe(subject, queue, h.handle)
	return err
}

func (h *SnapshotHandler) handle(msg *nats.Msg) {
	state := h.snapshot()
	resp := snapshotResponse{
		OK:            true,
		Authenticated: state.Authenticated,
		Loading:       state.Loading,
		Error:         state.Err,
	}
	if state.User != nil {
		resp.Email = state.User.Email
		resp.Name = state.User.DisplayName()
		resp.Role = string(state.User.Role)
	}
	h.respondFn(msg, resp)
}

func respond(msg *nats.Msg, resp snapshotResponse) {
	data, _ := json.Marshal(resp)
	_ = msg.Respond(data)
}
