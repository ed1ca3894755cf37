// Package twilio is a minimal client for the Twilio-style WhatsApp messaging
// API. It sends one message per call using per-tenant credentials and
// classifies failures so callers can tell a retry-worthy hiccup from a dead
// end.
package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
)

const AddressPrefix = "whatsapp:"

type Credentials struct {
	AccountSID string
	AuthToken  string
}

type SendParams struct {
	From     string
	To       string
	Body     string
	MediaURL string
}

type SendResult struct {
	SID    string
	Status string
}

type client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *client {
	return &client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// Address normalises a phone number into the provider's channel-prefixed
// form, e.g. +441234567890 -> whatsapp:+441234567890.
func Address(number string) string {
	if strings.HasPrefix(number, AddressPrefix) {
		return number
	}
	return AddressPrefix + number
}

// BareAddress strips the channel prefix for storage and lookups.
func BareAddress(address string) string {
	return strings.TrimPrefix(address, AddressPrefix)
}

type apiResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	// error payloads use a different shape
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Send posts one message. The context bounds the whole exchange; callers are
// expected to pass a deadline. A timeout is reported as retryable because the
// provider may still have accepted the message.
func (c *client) Send(ctx context.Context, creds Credentials, params SendParams) (*SendResult, error) {
	form := url.Values{}
	form.Set("From", Address(params.From))
	form.Set("To", Address(params.To))
	form.Set("Body", params.Body)
	if params.MediaURL != "" {
		form.Set("MediaUrl", params.MediaURL)
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, creds.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(creds.AccountSID, creds.AuthToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &Error{Kind: ErrorRetryable, Detail: fmt.Sprintf("reading response: %v", err)}
	}

	parsed := apiResponse{}
	if err := json.Unmarshal(body, &parsed); err != nil && resp.StatusCode < 300 {
		return nil, &Error{Kind: ErrorRetryable, Detail: fmt.Sprintf("decoding response: %v", err)}
	}

	if resp.StatusCode >= 300 {
		return nil, classifyStatus(resp.StatusCode, &parsed)
	}

	result := &SendResult{SID: parsed.SID, Status: parsed.Status}
	if result.Status == "" {
		result.Status = "queued"
	}
	return result, nil
}

// classifyTransportError marks every transport-level failure retryable: a
// timed-out or dropped exchange never proves the provider rejected the
// message, and it may well have delivered it.
func classifyTransportError(err error) error {
	detail := err.Error()
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		detail = "request timed out: " + detail
	}
	return &Error{Kind: ErrorRetryable, Detail: detail}
}

func classifyStatus(statusCode int, parsed *apiResponse) error {
	detail := parsed.Message
	if detail == "" {
		detail = parsed.ErrorMessage
	}
	if detail == "" {
		detail = http.StatusText(statusCode)
	}
	code := parsed.Code
	if code == 0 && parsed.ErrorCode != nil {
		code = *parsed.ErrorCode
	}

	kind := ErrorTerminal
	if statusCode == http.StatusTooManyRequests || statusCode >= 500 {
		kind = ErrorRetryable
	}
	return &Error{Kind: kind, Code: code, Detail: detail}
}
