package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blogicum/errs"
	"github.com/rpupo63/blogicum/models"
)

type userStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	users     userStore
	tokens    tokenIssuer
}

func newAuthHandler(users userStore, tokens tokenIssuer) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		users:     users,
		tokens:    tokens,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// login exchanges staff credentials for an access token
// @Summary Staff login
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} loginResponse
// @Failure 401 {object} ErrorResponse "Unknown username or wrong password"
// @Router /admin/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, "login", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		if req.Username == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("username"))
			return
		}
		if req.Password == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("password"))
			return
		}

		user, err := h.users.FindByUsername(r.Context(), req.Username)
		if err != nil {
			if errs.IsNotFound(err) {
				h.responder.WriteError(w, errs.NewInvalidCredentialsError())
				return
			}
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}

		// Same answer for a wrong password and a non-staff account
		if !user.IsStaff || !user.CheckPassword(req.Password) {
			h.logger.Warn().Str("username", req.Username).Msg("rejected admin login")
			h.responder.WriteError(w, errs.NewInvalidCredentialsError())
			return
		}

		token, expiresAt, err := h.tokens.Issue(user.ID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Uint("userID", user.ID).Msg("admin login")
		h.responder.WriteJSON(w, loginResponse{Token: token, ExpiresAt: expiresAt})
	}
}
