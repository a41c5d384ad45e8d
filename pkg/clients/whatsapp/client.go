package whatsapp

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Xebarter/Leap-sub002/internal/config"
)

// Client exposes WhatsApp Cloud API operations used by the application.
type Client interface {
	SendTextMessage(ctx context.Context, req SendTextMessageRequest) (*SendMessageResponse, error)
	SendTemplateMessage(ctx context.Context, req SendTemplateMessageRequest) (*SendMessageResponse, error)
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient    *resty.Client
	phoneNumberID string
}

// NewClient builds a WhatsApp API client using the provided configuration values.
func NewClient(cfg config.WhatsAppConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(fmt.Sprintf("%s/%s", base, cfg.APIVersion)).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.AccessToken)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &APIClient{
		httpClient:    restyClient,
		phoneNumberID: cfg.PhoneNumberID,
	}
}

// SendTextMessageRequest is a free-form text message. Meta only delivers
// these inside an open customer service window.
type SendTextMessageRequest struct {
	To         string
	Body       string
	PreviewURL bool
}

// SendTemplateMessageRequest is a pre-approved template message with
// positional body parameters.
type SendTemplateMessageRequest struct {
	To           string
	TemplateName string
	LanguageCode string
	BodyParams   []string
}

// SendMessageResponse mirrors the successful response from Meta.
type SendMessageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// apiError represents a WhatsApp Cloud API error payload.
type apiError struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		FBTraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}

// SendTextMessage sends a plain text message.
func (c *APIClient) SendTextMessage(ctx context.Context, req SendTextMessageRequest) (*SendMessageResponse, error) {
	return c.send(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"to":                req.To,
		"type":              "text",
		"text": map[string]any{
			"body":        req.Body,
			"preview_url": req.PreviewURL,
		},
	})
}

// SendTemplateMessage sends a template message, filling the body placeholders in order.
func (c *APIClient) SendTemplateMessage(ctx context.Context, req SendTemplateMessageRequest) (*SendMessageResponse, error) {
	params := make([]map[string]any, 0, len(req.BodyParams))
	for _, p := range req.BodyParams {
		params = append(params, map[string]any{"type": "text", "text": p})
	}

	language := req.LanguageCode
	if language == "" {
		language = "en"
	}

	return c.send(ctx, map[string]any{
		"messaging_product": "whatsapp",
		"to":                req.To,
		"type":              "template",
		"template": map[string]any{
			"name":     req.TemplateName,
			"language": map[string]any{"code": language},
			"components": []map[string]any{
				{"type": "body", "parameters": params},
			},
		},
	})
}

func (c *APIClient) send(ctx context.Context, payload map[string]any) (*SendMessageResponse, error) {
	result := new(SendMessageResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		SetError(apiErr).
		Post(fmt.Sprintf("%s/messages", c.phoneNumberID))
	if err != nil {
		return nil, fmt.Errorf("send whatsapp message: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		code := resp.StatusCode()
		if apiErr.Error.Code != 0 {
			code = apiErr.Error.Code
		}
		return nil, fmt.Errorf("whatsapp api error: code=%d, message=%s", code, apiErr.Error.Message)
	}

	return result, nil
}
