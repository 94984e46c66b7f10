package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Ritahchanger/propertify-console/internal/adapters/gateway"
	"github.com/Ritahchanger/propertify-console/internal/domain"
	"github.com/Ritahchanger/propertify-console/internal/session"
	res "github.com/Ritahchanger/propertify-console/pkg/http"
)

// SessionCommands is the slice of the container the HTTP surface needs.
type SessionCommands interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, req gateway.RegisterRequest) error
	Logout(ctx context.Context) error
	Snapshot() domain.SessionState
}

type SessionHandler struct {
	commands SessionCommands
}

func NewSessionHandler(commands SessionCommands) *SessionHandler {
	return &SessionHandler{commands: commands}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	IDNumber  string `json:"idNumber"`
	Role      string `json:"role"`
	Status    string `json:"status"`
}

type sessionResponse struct {
	OK            bool                 `json:"ok"`
	Authenticated bool                 `json:"authenticated"`
	Loading       bool                 `json:"loading"`
	User          *domain.UserIdentity `json:"user,omitempty"`
	Error         string               `json:"error,omitempty"`
}

type identityResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *SessionHandler) Login(c echo.Context) error {
	req := new(loginRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", res.RequestID(c))
	}
	if req.Email == "" || req.Password == "" {
		return res.ErrorJSON(c, http.StatusBadRequest, "validation_failed", "email and password are required", res.RequestID(c))
	}
	if err := h.commands.Login(c.Request().Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, session.ErrCommandInFlight) {
			return res.ErrorJSON(c, http.StatusConflict, "command_in_flight", err.Error(), res.RequestID(c))
		}
		state := h.commands.Snapshot()
		return res.ErrorJSON(c, http.StatusUnauthorized, "login_failed", state.Err, res.RequestID(c))
	}
	return c.JSON(http.StatusOK, toSessionResponse(h.commands.Snapshot()))
}

func (h *SessionHandler) Register(c echo.Context) error {
	req := new(registerRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", res.RequestID(c))
	}
	if req.Email == "" || req.Password == "" {
		return res.ErrorJSON(c, http.StatusBadRequest, "validation_failed", "email and password are required", res.RequestID(c))
	}
	role := domain.Role(req.Role)
	if !role.Valid() {
		return res.ErrorJSON(c, http.StatusBadRequest, "validation_failed", "unknown role", res.RequestID(c))
	}
	err := h.commands.Register(c.Request().Context(), gateway.RegisterRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		IDNumber:  req.IDNumber,
		Role:      role,
		Status:    req.Status,
	})
	if err != nil {
		if errors.Is(err, session.ErrCommandInFlight) {
			return res.ErrorJSON(c, http.StatusConflict, "command_in_flight", err.Error(), res.RequestID(c))
		}
		state := h.commands.Snapshot()
		return res.ErrorJSON(c, http.StatusBadRequest, "registration_failed", state.Err, res.RequestID(c))
	}
	return c.JSON(http.StatusCreated, toSessionResponse(h.commands.Snapshot()))
}

// Logout never reports the gateway failure to the caller: the local session
// is gone either way, and that is the contract.
func (h *SessionHandler) Logout(c echo.Context) error {
	if err := h.commands.Logout(c.Request().Context()); err != nil {
		if errors.Is(err, session.ErrCommandInFlight) {
			return res.ErrorJSON(c, http.StatusConflict, "command_in_flight", err.Error(), res.RequestID(c))
		}
	}
	return res.MessageJSON(c, http.StatusOK, "signed out")
}

// Session reports the full snapshot for any surface that polls it.
func (h *SessionHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, toSessionResponse(h.commands.Snapshot()))
}

// Me renders the identity for display surfaces. A stale authenticated flag
// with no user record yields a placeholder, never a panic.
func (h *SessionHandler) Me(c echo.Context) error {
	state := h.commands.Snapshot()
	if !state.Authenticated {
		return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "no active session", res.RequestID(c))
	}
	if state.User == nil {
		return res.JSON(c, http.StatusOK, identityResponse{Name: "unknown"})
	}
	return res.JSON(c, http.StatusOK, identityResponse{
		Name:  state.User.DisplayName(),
		Email: state.User.Email,
		Role:  string(state.User.Role),
	})
}

func toSessionResponse(state domain.SessionState) sessionResponse {
	return sessionResponse{
		OK:            true,
		Authenticated: state.Authenticated,
		Loading:       state.Loading,
		User:          state.User,
		Error:         state.Err,
	}
}
