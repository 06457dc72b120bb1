package api

import (
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/techpostia/techpost/internal/logging"
)

const webhookSecretHeader = "X-Webhook-Secret"

type WelcomeSender interface {
	SendWelcome(ctx context.Context, email, fullName string) error
}

// welcomePayload is the database trigger body for a newly inserted profile.
type welcomePayload struct {
	Record struct {
		Email     string `json:"email"`
		UserEmail string `json:"user_email"`
		FullName  string `json:"full_name"`
	} `json:"record"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type WelcomeHandler struct {
	sender WelcomeSender
	secret string
}

func NewWelcomeHandler(sender WelcomeSender, secret string) *WelcomeHandler {
	return &WelcomeHandler{sender: sender, secret: secret}
}

func (h *WelcomeHandler) HandleWelcome(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" || h.sender == nil {
		writeJSONError(w, http.StatusInternalServerError, codeInternal, "Welcome e-mail is not configured")
		return
	}
	if !secretsEqual(r.Header.Get(webhookSecretHeader), h.secret) {
		writeJSONError(w, http.StatusUnauthorized, codeUnauthorized, "Invalid webhook secret")
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, codeInvalid, "Failed to read body")
		return
	}
	payload, err := parseEventData[welcomePayload](raw)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, codeInvalid, err.Error())
		return
	}

	email := payload.Record.Email
	if email == "" {
		email = payload.Record.UserEmail
	}
	if email == "" {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "E-mail not found in record"})
		return
	}

	if err := h.sender.SendWelcome(r.Context(), email, payload.Record.FullName); err != nil {
		log.Error().Err(err).Msg("Failed to send welcome e-mail")
		logging.EnrichError(r.Context(), err, "welcome_email")
		writeJSONError(w, http.StatusInternalServerError, codeInternal, "Failed to send e-mail")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Welcome e-mail sent"})
}
