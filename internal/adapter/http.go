package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/MKhiriev/go-konvo/internal/config"
	"github.com/MKhiriev/go-konvo/internal/logger"
	"github.com/MKhiriev/go-konvo/internal/utils"
	"github.com/MKhiriev/go-konvo/models"
	"github.com/go-resty/resty/v2"
)

const (
	requestOtpPath   = "/api/auth/request-otp"
	verifyOtpPath    = "/api/auth/verify-otp"
	profilePath      = "/api/user/me"
	conversationPath = "/api/chat/{conversationId}/messages"
	sendMessagePath  = "/api/chat/send"
)

type httpGateway struct {
	client *utils.HTTPClient
	logger *logger.Logger
}

// NewHTTPGateway constructs the HTTP/REST implementation of [Gateway].
// It normalises and validates the base URL from adapterCfg.HTTPAddress and
// configures the underlying HTTP client with the request timeout.
func NewHTTPGateway(adapterCfg config.ClientAdapter, log *logger.Logger) (Gateway, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	return &httpGateway{
		client: utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		logger: log.WithComponent("http_gateway"),
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// RequestChallenge implements [Gateway] via POST /api/auth/request-otp.
func (h *httpGateway) RequestChallenge(ctx context.Context, phone, displayName string) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.ChallengeRequest{PhoneNumber: phone, Name: displayName}).
		Post(requestOtpPath)
	if err != nil {
		return transportError("request otp", err)
	}

	return mapHTTPError(resp)
}

// VerifyChallenge implements [Gateway] via POST /api/auth/verify-otp.
// The backend answers 400 or 401 for a wrong or expired code; both become
// [ErrInvalidCode]. A response flagged newUser carries the token together
// with [ErrIdentityNotFound].
func (h *httpGateway) VerifyChallenge(ctx context.Context, phone, code string) (models.AuthResult, error) {
	var verified models.VerifyResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.VerifyRequest{PhoneNumber: phone, Otp: code}).
		SetResult(&verified).
		Post(verifyOtpPath)
	if err != nil {
		return models.AuthResult{}, transportError("verify otp", err)
	}

	switch resp.StatusCode() {
	case http.StatusBadRequest, http.StatusUnauthorized:
		return models.AuthResult{}, fmt.Errorf("%w: %s", ErrInvalidCode, errorMessage(resp.Body()))
	case http.StatusNotFound:
		return models.AuthResult{}, fmt.Errorf("%w: %s", ErrIdentityNotFound, errorMessage(resp.Body()))
	}
	if err = mapHTTPError(resp); err != nil {
		return models.AuthResult{}, err
	}

	if verified.Token == "" {
		return models.AuthResult{}, errors.New("verify otp: response carries no token")
	}

	identity := verified.User
	if identity.ID == "" {
		// older backends only put the identity into the token
		if identity.ID, err = utils.ParseIdentityIDFromJWT(verified.Token); err != nil {
			return models.AuthResult{}, fmt.Errorf("verify otp: parse token subject: %w", err)
		}
	}
	if identity.PhoneNumber == "" {
		identity.PhoneNumber = phone
	}

	result := models.AuthResult{Token: verified.Token, Identity: identity}
	if verified.NewUser {
		h.logger.Debug().Str("identity_id", identity.ID).Msg("verified phone handle has no profile yet")
		return result, ErrIdentityNotFound
	}

	return result, nil
}

// SaveProfile implements [Gateway] via PUT /api/user/me.
func (h *httpGateway) SaveProfile(ctx context.Context, token string, fields models.ProfileFields) (models.Identity, error) {
	var saved models.Identity

	resp, err := h.authedRequest(ctx, token).
		SetHeader("Content-Type", "application/json").
		SetBody(fields).
		SetResult(&saved).
		Put(profilePath)
	if err != nil {
		return models.Identity{}, transportError("save profile", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Identity{}, err
	}

	return saved, nil
}

// FetchConversation implements [Gateway] via
// GET /api/chat/{conversationId}/messages.
func (h *httpGateway) FetchConversation(ctx context.Context, token, conversationID string) ([]models.Message, error) {
	var remote []models.RemoteMessage

	resp, err := h.authedRequest(ctx, token).
		SetPathParam("conversationId", conversationID).
		SetResult(&remote).
		Get(conversationPath)
	if err != nil {
		return nil, transportError("fetch conversation", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0, len(remote))
	for _, rm := range remote {
		if rm.ConversationID == "" {
			rm.ConversationID = conversationID
		}
		messages = append(messages, rm.ToMessage(models.DeliveryReceived))
	}

	return messages, nil
}

// SendMessage implements [Gateway] via POST /api/chat/send.
func (h *httpGateway) SendMessage(ctx context.Context, token, conversationID, content string) (models.Message, error) {
	var sent models.RemoteMessage

	resp, err := h.authedRequest(ctx, token).
		SetHeader("Content-Type", "application/json").
		SetBody(models.SendMessageRequest{ConversationID: conversationID, Content: content}).
		SetResult(&sent).
		Post(sendMessagePath)
	if err != nil {
		return models.Message{}, transportError("send message", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Message{}, err
	}

	if sent.ID == "" {
		return models.Message{}, errors.New("send message: response carries no message id")
	}
	if sent.ConversationID == "" {
		sent.ConversationID = conversationID
	}

	return sent.ToMessage(models.DeliverySent), nil
}

func (h *httpGateway) authedRequest(ctx context.Context, token string) *resty.Request {
	return h.client.R().
		SetContext(ctx).
		SetAuthToken(token)
}
