package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"PlacementPortal/internal/config"
)

const fallbackReply = "The placement assistant is temporarily unavailable. " +
	"Please browse the placements and training sections, or contact the placement cell directly."

// Answer is what the proxy returns to the client. Note is set when the
// fallback was used.
type Answer struct {
	Reply string `json:"reply"`
	Note  string `json:"note,omitempty"`
}

// client talks to the opaque upstream completion endpoint.
type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func (c *client) complete(ctx context.Context, message string) (string, error) {
	payload, err := json.Marshal(map[string]string{"prompt": message})
	if err != nil {
		return "", fmt.Errorf("marshal completion payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/completions", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("create completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call completion service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("completion service returned status %d", resp.StatusCode)
	}

	var body struct {
		Reply string `json:"reply"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	return body.Reply, nil
}

// Service proxies chat messages to the completion backend. The backend is an
// explicit capability: when not configured, or when a call fails, the proxy
// answers with a static fallback instead of an error.
type Service struct {
	client *client
	logger *zap.Logger
}

func NewService(cfg *config.Config, logger *zap.Logger) *Service {
	s := &Service{logger: logger}
	if cfg.ChatbotBaseURL == "" {
		logger.Info("chatbot disabled: CHATBOT_BASE_URL not set")
		return s
	}
	s.client = &client{
		baseURL: cfg.ChatbotBaseURL,
		apiKey:  cfg.ChatbotAPIKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	return s
}

// Available reports whether a completion backend is configured.
func (s *Service) Available() bool {
	return s.client != nil
}

// Ask answers one message. Never returns an error for upstream trouble; the
// caller always gets a reply.
func (s *Service) Ask(ctx context.Context, message string) *Answer {
	if !s.Available() {
		return &Answer{Reply: fallbackReply, Note: "assistant not configured"}
	}
	reply, err := s.client.complete(ctx, message)
	if err != nil {
		s.logger.Warn("chatbot upstream failed", zap.Error(err))
		return &Answer{Reply: fallbackReply, Note: "assistant unreachable"}
	}
	return &Answer{Reply: reply}
}
