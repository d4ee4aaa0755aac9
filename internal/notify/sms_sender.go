package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SMSSender envia SMS a traves de un gateway HTTP con API de query string.
type SMSSender struct {
	apiURL   string
	token    string
	senderID string
	routing  string
	client   *http.Client
	logger   *zap.Logger
}

func NewSMSSender(apiURL, token, senderID, routing string, logger *zap.Logger) (*SMSSender, error) {
	if strings.TrimSpace(apiURL) == "" {
		return nil, fmt.Errorf("sms api url is required")
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("sms api token is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMSSender{
		apiURL:   apiURL,
		token:    token,
		senderID: senderID,
		routing:  routing,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}, nil
}

type smsResponse struct {
	MessageID string `json:"message_id"`
	Comment   string `json:"comment"`
	Error     string `json:"error"`
}

func (s *SMSSender) Send(ctx context.Context, to, message string) (Result, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return Result{}, ErrRecipientRequired
	}

	params := url.Values{}
	params.Set("token", s.token)
	params.Set("sender", s.senderID)
	params.Set("to", to)
	params.Set("message", message)
	params.Set("type", "0")
	if s.routing != "" {
		params.Set("routing", s.routing)
	}

	endpoint := s.apiURL
	if strings.Contains(endpoint, "?") {
		endpoint += "&" + params.Encode()
	} else {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", withoutURL(err))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("do request: %w", withoutURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		s.logger.Warn("sms gateway error", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return Result{}, fmt.Errorf("sms http error: status=%d", resp.StatusCode)
	}

	var sr smsResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return Result{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if sr.Error != "" {
		return Result{}, fmt.Errorf("sms api error: %s", sr.Error)
	}

	return Result{
		Channel:   "sms",
		Reference: sr.MessageID,
		Status:    sr.Comment,
	}, nil
}

// withoutURL descarta la URL de un *url.Error: la query lleva el token del
// gateway y el mensaje con el passcode.
func withoutURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}
