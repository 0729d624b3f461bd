package service

import "errors"

var (
	ErrChallengeDeliveryFailed = errors.New("one-time code could not be delivered")
	ErrNoActiveChallenge       = errors.New("no active one-time code challenge")
	ErrChallengeExpired        = errors.New("one-time code challenge expired")
	ErrInvalidCode             = errors.New("invalid one-time code")
	ErrVerificationFailed      = errors.New("one-time code verification failed")
	ErrInvalidPhone            = errors.New("phone handle is required")

	ErrInvalidProfile    = errors.New("invalid profile")
	ErrProfileSaveFailed = errors.New("profile could not be saved")

	ErrInvalidState         = errors.New("operation not allowed in current session state")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrSessionExpired       = errors.New("session expired")
	ErrSessionPersistFailed = errors.New("session could not be persisted")
	ErrSessionRestoreFailed = errors.New("session could not be restored")

	ErrSyncUnavailable    = errors.New("conversation sync unavailable")
	ErrSendFailed         = errors.New("message could not be sent")
	ErrEmptyContent       = errors.New("message content is empty")
	ErrConversationClosed = errors.New("conversation is closed")
	ErrMessageNotFound    = errors.New("message not found")
	ErrNotRetryable       = errors.New("message is not in a retryable state")
)
