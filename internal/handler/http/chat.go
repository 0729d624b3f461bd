// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-konvo/internal/logger"
	"github.com/MKhiriev/go-konvo/internal/utils"
	"github.com/MKhiriev/go-konvo/models"
)

func (h *Handler) fetchMessages(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	token, _ := utils.GetTokenFromContext(r.Context())
	conversationID := chi.URLParam(r, "conversationId")

	messages, err := h.backend.FetchConversation(r.Context(), token, conversationID)
	if err != nil {
		log.Err(err).Str("conversation_id", conversationID).Msg("error fetching messages")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	remote := make([]models.RemoteMessage, 0, len(messages))
	for _, m := range messages {
		remote = append(remote, models.NewRemoteMessage(m))
	}
	utils.WriteJSON(w, remote, http.StatusOK)
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	token, _ := utils.GetTokenFromContext(r.Context())

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		utils.WriteError(w, errInvalidJSON.Error(), http.StatusBadRequest)
		return
	}

	sent, err := h.backend.SendMessage(r.Context(), token, req.ConversationID, req.Content)
	if err != nil {
		log.Err(err).Str("conversation_id", req.ConversationID).Msg("message was not stored")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.NewRemoteMessage(sent), http.StatusOK)
}
