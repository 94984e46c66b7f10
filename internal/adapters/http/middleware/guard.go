package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Ritahchanger/propertify-console/internal/domain"
	res "github.com/Ritahchanger/propertify-console/pkg/http"
)

// SessionGuard rejects requests to protected routes while no session is
// established. It keys off Authenticated alone; a pending command or a lying
// error string never locks an authenticated user out.
type SessionGuard struct {
	snapshot func() domain.SessionState
}

func NewSessionGuard(snapshot func() domain.SessionState) *SessionGuard {
	return &SessionGuard{snapshot: snapshot}
}

func (g *SessionGuard) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		state := g.snapshot()
		if !state.Authenticated {
			return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "no active session", res.RequestID(c))
		}
		if state.User != nil {
			c.Set("email", state.User.Email)
			c.Set("role", string(state.User.Role))
		}
		return next(c)
	}
}
