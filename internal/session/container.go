package session

import (
	"context"
	"errors"
	"sync"

	"github.com/Ritahchanger/propertify-console/internal/adapters/gateway"
	"github.com/Ritahchanger/propertify-console/internal/domain"
	pkglog "github.com/Ritahchanger/propertify-console/pkg/log"
)

// ErrCommandInFlight rejects a session command issued while another one is
// still pending. Re-entrant dispatch is forbidden rather than queued.
var ErrCommandInFlight = errors.New("session command already in flight")

const (
	registerFallback = "Registration failed"
	loginFallback    = "Login failed"
	logoutFallback   = "Logout failed"
)

// Events receives session lifecycle notifications. May be nil.
type Events interface {
	SessionEstablished(ctx context.Context, user *domain.UserIdentity)
	SessionCleared(ctx context.Context)
}

// Observer is called after every state change with a copy of the new state.
type Observer func(domain.SessionState)

// Container holds the authoritative session state. All consumers read it
// through Snapshot or Subscribe; only the container's own transitions
// mutate it.
type Container struct {
	gw     gateway.Client
	syncer *Synchronizer
	events Events
	logger pkglog.Logger

	mu        sync.Mutex
	state     domain.SessionState
	hydrated  bool
	observers []Observer

	hydrateOnce sync.Once
}

func NewContainer(gw gateway.Client, synchronizer *Synchronizer, events Events, logger pkglog.Logger) *Container {
	return &Container{gw: gw, syncer: synchronizer, events: events, logger: logger}
}

// Snapshot returns a copy of the current state. The identity is copied so
// callers cannot mutate the container's record.
func (c *Container) Snapshot() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Container) snapshotLocked() domain.SessionState {
	state := c.state
	if state.User != nil {
		user := *state.User
		state.User = &user
	}
	return state
}

// Subscribe registers an observer. Observers are invoked synchronously after
// each transition, outside the container's lock.
func (c *Container) Subscribe(fn Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// Hydrate pre-populates the state from the persisted record, once, without
// contacting the gateway. It must run before the first command.
func (c *Container) Hydrate(ctx context.Context) {
	c.hydrateOnce.Do(func() {
		user, _ := c.syncer.Hydrate(ctx)
		if user == nil {
			return
		}
		c.mutate(func(s *domain.SessionState) {
			s.User = user
			s.Authenticated = true
			c.hydrated = true
		})
		c.logger.Info().Str("email", user.Email).Msg("session hydrated from disk")
	})
}

// Login exchanges credentials for a session. On gateway failure the error is
// recorded and any previously authenticated state is left untouched.
func (c *Container) Login(ctx context.Context, email, password string) error {
	if err := c.begin(); err != nil {
		return err
	}
	user, token, err := c.gw.Login(ctx, email, password)
	if err != nil {
		c.fail(loginFallback, err)
		return err
	}
	c.establish(ctx, user, token)
	c.logger.Info().Str("email", user.Email).Msg("session established")
	return nil
}

// Register creates an account and establishes a session in one step.
func (c *Container) Register(ctx context.Context, req gateway.RegisterRequest) error {
	if err := c.begin(); err != nil {
		return err
	}
	user, token, err := c.gw.Register(ctx, req)
	if err != nil {
		c.fail(registerFallback, err)
		return err
	}
	c.establish(ctx, user, token)
	c.logger.Info().Str("email", user.Email).Str("role", string(user.Role)).Msg("account registered")
	return nil
}

// Logout tears the session down fail-open: local state and the persisted
// record are cleared even when the gateway call fails, so every surface ends
// on a consistent unauthenticated view. A gateway failure only leaves its
// message in the state.
func (c *Container) Logout(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	gwErr := c.gw.Logout(ctx)
	c.syncer.Clear(ctx)
	c.mutate(func(s *domain.SessionState) {
		s.User = nil
		s.Authenticated = false
		s.Loading = false
		s.Err = ""
		if gwErr != nil {
			s.Err = messageOrFallback(gwErr, logoutFallback)
		}
		c.hydrated = false
	})
	if c.events != nil {
		c.events.SessionCleared(ctx)
	}
	if gwErr != nil {
		c.logger.Warn().Err(gwErr).Msg("remote logout failed, local session cleared anyway")
	} else {
		c.logger.Info().Msg("session cleared")
	}
	return nil
}

// VerifyHydrated re-validates a disk-restored session against the gateway.
// A definitive rejection demotes the state and clears the record; transport
// trouble leaves the hydrated session alone until the next probe.
func (c *Container) VerifyHydrated(ctx context.Context) error {
	c.mu.Lock()
	if !c.hydrated || !c.state.Authenticated {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	user, err := c.gw.Verify(ctx)
	if err != nil {
		var gerr *gateway.Error
		if errors.As(err, &gerr) && (gerr.StatusCode == 401 || gerr.StatusCode == 403) {
			// A login or logout that raced the probe already replaced the
			// disk-restored session; the verdict is about a session that no
			// longer exists, so it must not touch the new one.
			if !c.mutateIfHydrated(func(s *domain.SessionState) {
				s.User = nil
				s.Authenticated = false
				c.hydrated = false
			}) {
				c.logger.Info().Msg("verify verdict arrived after a newer transition, ignored")
				return nil
			}
			c.syncer.Clear(ctx)
			if c.events != nil {
				c.events.SessionCleared(ctx)
			}
			c.logger.Info().Msg("hydrated session rejected by gateway, cleared")
			return nil
		}
		c.logger.Warn().Err(err).Msg("hydrated session could not be verified")
		return err
	}

	if !c.mutateIfHydrated(func(s *domain.SessionState) {
		s.User = user
		c.hydrated = false
	}) {
		c.logger.Info().Msg("verify verdict arrived after a newer transition, ignored")
		return nil
	}
	c.logger.Info().Str("email", user.Email).Msg("hydrated session confirmed")
	return nil
}

func (c *Container) begin() error {
	c.mu.Lock()
	if c.state.Loading {
		c.mu.Unlock()
		return ErrCommandInFlight
	}
	c.state.Loading = true
	c.state.Err = ""
	snapshot := c.snapshotLocked()
	observers := c.observers
	c.mu.Unlock()
	for _, fn := range observers {
		fn(snapshot)
	}
	return nil
}

func (c *Container) establish(ctx context.Context, user *domain.UserIdentity, token string) {
	c.syncer.WriteThrough(ctx, user, token)
	c.mutate(func(s *domain.SessionState) {
		s.User = user
		s.Authenticated = true
		s.Loading = false
		s.Err = ""
		c.hydrated = false
	})
	if c.events != nil {
		c.events.SessionEstablished(ctx, user)
	}
}

func (c *Container) fail(fallback string, err error) {
	c.mutate(func(s *domain.SessionState) {
		s.Loading = false
		s.Err = messageOrFallback(err, fallback)
	})
}

// mutateIfHydrated applies the transition only while the state is still the
// disk-restored one. It reports false, with no observer churn, when a newer
// transition got there first.
func (c *Container) mutateIfHydrated(apply func(*domain.SessionState)) bool {
	c.mu.Lock()
	if !c.hydrated {
		c.mu.Unlock()
		return false
	}
	apply(&c.state)
	snapshot := c.snapshotLocked()
	observers := c.observers
	c.mu.Unlock()
	for _, fn := range observers {
		fn(snapshot)
	}
	return true
}

func (c *Container) mutate(apply func(*domain.SessionState)) {
	c.mu.Lock()
	apply(&c.state)
	snapshot := c.snapshotLocked()
	observers := c.observers
	c.mu.Unlock()
	for _, fn := range observers {
		fn(snapshot)
	}
}

// messageOrFallback surfaces the gateway's own message verbatim when one was
// provided, otherwise the transition-specific fallback.
func messageOrFallback(err error, fallback string) string {
	var gerr *gateway.Error
	if errors.As(err, &gerr) && gerr.Message != "" {
		return gerr.Message
	}
	return fallback
}
