package natsadapter

import (
	"context"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/Ritahchanger/propertify-console/internal/domain"
)

func TestSnapshotHandlerAuthenticated(t *testing.T) {
	state := domain.SessionState{
		Authenticated: true,
		User:          &domain.UserIdentity{Email: "a@b.com", FirstName: "A", LastName: "B", Role: domain.RoleOwner},
	}
	handler := NewSnapshotHandler(func() domain.SessionState { return state })
	var captured snapshotResponse
	handler.respondFn = func(_ *nats.Msg, resp snapshotResponse) { captured = resp }

	handler.handle(&nats.Msg{})

	if !captured.OK || !captured.Authenticated {
		t.Fatalf("unexpected response: %+v", captured)
	}
	if captured.Email != "a@b.com" || captured.Name != "A B" || captured.Role != "owner" {
		t.Fatalf("identity not propagated: %+v", captured)
	}
}

func TestSnapshotHandlerUnauthenticated(t *testing.T) {
	handler := NewSnapshotHandler(func() domain.SessionState {
		return domain.SessionState{Err: "Login failed"}
	})
	var captured snapshotResponse
	handler.respondFn = func(_ *nats.Msg, resp snapshotResponse) { captured = resp }

	handler.handle(&nats.Msg{})

	if captured.Authenticated || captured.Email != "" {
		t.Fatalf("unexpected response: %+v", captured)
	}
	if captured.Error != "Login failed" {
		t.Fatalf("error not propagated: %+v", captured)
	}
}

func TestSnapshotHandlerNilConnection(t *testing.T) {
	handler := NewSnapshotHandler(func() domain.SessionState { return domain.SessionState{} })
	if err := handler.Subscribe(nil, "session.snapshot", "console"); err == nil {
		t.Fatal("expected error on nil connection")
	}
}

func TestPublisherNilConnectionIsNoop(t *testing.T) {
	p := NewPublisher(nil, "session.established", "session.cleared")
	p.SessionEstablished(context.Background(), &domain.UserIdentity{Email: "a@b.com", Role: domain.RoleOwner})
	p.SessionCleared(context.Background())
}
