package natsadapter

import (
	"context"
	"encoding/json"
	"time"

	nats "github.com/nats-io/nats.go"

	"github.com/Ritahchanger/propertify-console/internal/domain"
)

// Publisher broadcasts session lifecycle events so other console surfaces
// can keep a consistent view without polling. Safe to construct with a nil
// connection; every method is then a no-op.
type Publisher struct {
	conn               *nats.Conn
	establishedSubject string
	clearedSubject     string
}

type establishedEvent struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	UserID    string `json:"user_id,omitempty"`
	Timestamp int64  `json:"ts"`
}

type clearedEvent struct {
	Timestamp int64 `json:"ts"`
}

func NewPublisher(conn *nats.Conn, establishedSubject, clearedSubject string) *Publisher {
	return &Publisher{conn: conn, establishedSubject: establishedSubject, clearedSubject: clearedSubject}
}

func (p *Publisher) SessionEstablished(_ context.Context, user *domain.UserIdentity) {
	if p == nil || p.conn == nil || user == nil {
		return
	}
	p.publish(p.establishedSubject, establishedEvent{
		Email:     user.Email,
		Role:      string(user.Role),
		UserID:    user.ID,
		Timestamp: time.Now().Unix(),
	})
}

func (p *Publisher) SessionCleared(_ context.Context) {
	if p == nil || p.conn == nil {
		return
	}
	p.publish(p.clearedSubject, clearedEvent{Timestamp: time.Now().Unix()})
}

func (p *Publisher) publish(subject string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = p.conn.Publish(subject, data)
}
