package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer, h.withTraceID, h.withLogging, withGZip)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/request-otp", h.requestOtp)
		r.Post("/api/auth/verify-otp", h.verifyOtp)
		r.Get("/api/version", h.getServerVersion)
	})

	// routes with authorization
	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Put("/api/user/me", h.saveProfile)
		r.Get("/api/chat/{conversationId}/messages", h.fetchMessages)
		r.Post("/api/chat/send", h.sendMessage)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
