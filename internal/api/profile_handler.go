package api

import (
	"net/http"

	"github.com/techpostia/techpost/internal/auth"
	"github.com/techpostia/techpost/internal/entitlement"
	"github.com/techpostia/techpost/internal/models"
	"github.com/techpostia/techpost/internal/profile"
	"github.com/techpostia/techpost/internal/services"
)

// ProfileResponse adds the remaining free generations; -1 means unlimited.
type ProfileResponse struct {
	*models.Profile
	Remaining int `json:"remaining"`
}

type ProfileHandler struct {
	profiles profile.Service
}

func NewProfileHandler(profiles profile.Service) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := profile.GetProfileFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, codeUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{Profile: p, Remaining: entitlement.Remaining(p)})
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.GetUserFromRequest(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, codeUnauthorized, "Unauthorized")
		return
	}

	var upd models.ProfileUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		writeJSONError(w, http.StatusBadRequest, codeInvalid, err.Error())
		return
	}
	if err := upd.Validate(); err != nil {
		writeServiceError(w, r, &services.ValidationError{Err: err}, "update_profile", "")
		return
	}

	p, err := h.profiles.Update(r.Context(), user, upd)
	if err != nil {
		writeServiceError(w, r, err, "update_profile", "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{Profile: p, Remaining: entitlement.Remaining(p)})
}
