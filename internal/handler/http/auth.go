package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MKhiriev/go-konvo/internal/adapter"
	"github.com/MKhiriev/go-konvo/internal/logger"
	"github.com/MKhiriev/go-konvo/internal/utils"
	"github.com/MKhiriev/go-konvo/models"
)

func (h *Handler) requestOtp(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.ChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		utils.WriteError(w, errInvalidJSON.Error(), http.StatusBadRequest)
		return
	}

	if err := h.backend.RequestChallenge(r.Context(), req.PhoneNumber, req.Name); err != nil {
		log.Err(err).Msg("one-time code was not issued")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) verifyOtp(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		utils.WriteError(w, errInvalidJSON.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.backend.VerifyChallenge(r.Context(), req.PhoneNumber, req.Otp)
	newUser := false
	switch {
	case err == nil:
	case errors.Is(err, adapter.ErrIdentityNotFound) && result.Token != "":
		// the token is issued, only the profile is missing
		newUser = true
	default:
		log.Err(err).Msg("one-time code verification failed")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	log.Debug().Str("identity_id", result.Identity.ID).Bool("new_user", newUser).Msg("one-time code verified")
	utils.WriteJSON(w, models.VerifyResponse{
		Token:   result.Token,
		User:    result.Identity,
		NewUser: newUser,
	}, http.StatusOK)
}

func (h *Handler) saveProfile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	token, _ := utils.GetTokenFromContext(r.Context())

	var fields models.ProfileFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		utils.WriteError(w, errInvalidJSON.Error(), http.StatusBadRequest)
		return
	}

	identity, err := h.backend.SaveProfile(r.Context(), token, fields)
	if err != nil {
		log.Err(err).Msg("profile was not saved")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, identity, http.StatusOK)
}
