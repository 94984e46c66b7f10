package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/Ritahchanger/propertify-console/internal/adapters/sqlite"
	"github.com/Ritahchanger/propertify-console/internal/domain"
	pkglog "github.com/Ritahchanger/propertify-console/pkg/log"
)

// Synchronizer keeps the durable session record consistent with successful
// container transitions. Storage failures are logged and absorbed; a broken
// disk never surfaces as a session error.
type Synchronizer struct {
	store  sqlite.Store
	logger pkglog.Logger
	nowFn  func() time.Time
}

func NewSynchronizer(store sqlite.Store, logger pkglog.Logger) *Synchronizer {
	return &Synchronizer{store: store, logger: logger, nowFn: time.Now}
}

// WriteThrough records a freshly established session. Called only after the
// gateway confirmed the login or registration.
func (s *Synchronizer) WriteThrough(ctx context.Context, user *domain.UserIdentity, token string) {
	data, err := json.Marshal(user)
	if err != nil {
		s.logger.Warn().Err(err).Msg("session record not persisted")
		return
	}
	if err := s.store.Save(ctx, true, string(data), token); err != nil {
		s.logger.Warn().Err(err).Msg("session record not persisted")
	}
}

// Clear drops the durable record. Called after every logout, whatever the
// gateway said.
func (s *Synchronizer) Clear(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("session record not cleared")
	}
}

// Hydrate reads the persisted session, returning the identity and token only
// when the record exists, is flagged authenticated, parses, and carries no
// expired token. Anything malformed counts as "no prior session".
func (s *Synchronizer) Hydrate(ctx context.Context) (*domain.UserIdentity, string) {
	record, err := s.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Msg("session record unreadable, starting unauthenticated")
		}
		return nil, ""
	}
	if !record.Authenticated {
		return nil, ""
	}
	var user domain.UserIdentity
	if err := json.Unmarshal([]byte(record.UserJSON), &user); err != nil {
		s.logger.Warn().Err(err).Msg("persisted identity corrupted, starting unauthenticated")
		return nil, ""
	}
	if user.Email == "" {
		return nil, ""
	}
	if s.tokenExpired(record.Token) {
		s.logger.Info().Str("email", user.Email).Msg("persisted session token expired")
		return nil, ""
	}
	return &user, record.Token
}

// tokenExpired inspects the exp claim locally, without verifying the
// signature. Tokens the console cannot parse, or that carry no exp, do not
// block hydration; only a definitely-passed expiry does.
func (s *Synchronizer) tokenExpired(token string) bool {
	if token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return s.nowFn().After(exp.Time)
}
