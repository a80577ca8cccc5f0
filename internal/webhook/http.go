package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"policylens/services/chat-api/internal/domain/retry"
)

// HTTPService implements webhook notifications via HTTP POST.
type HTTPService struct {
	httpClient *http.Client
	log        zerolog.Logger
	policy     retry.Policy
}

// NewHTTPService creates a new HTTP-based webhook service.
func NewHTTPService(log zerolog.Logger) *HTTPService {
	return &HTTPService{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log:    log.With().Str("component", "webhook").Logger(),
		policy: retry.ConservativePolicy(),
	}
}

// NotifyIngestCompleted sends a webhook notification when a document
// finishes analysis.
func (s *HTTPService) NotifyIngestCompleted(ctx context.Context, conversationID string, documentID string, metadata map[string]string) error {
	webhookURL := metadata["webhook_url"]
	if webhookURL == "" {
		s.log.Debug().Str("conversation_id", conversationID).Msg("no webhook URL configured, skipping notification")
		return nil
	}

	payload := Payload{
		ConversationID: conversationID,
		Event:          "ingest.completed",
		DocumentID:     documentID,
		Metadata:       metadata,
	}

	return s.send(ctx, webhookURL, payload)
}

// NotifyIngestFailed sends a webhook notification when document analysis
// fails.
func (s *HTTPService) NotifyIngestFailed(ctx context.Context, conversationID string, errorMessage string, metadata map[string]string) error {
	webhookURL := metadata["webhook_url"]
	if webhookURL == "" {
		s.log.Debug().Str("conversation_id", conversationID).Msg("no webhook URL configured, skipping notification")
		return nil
	}

	payload := Payload{
		ConversationID: conversationID,
		Event:          "ingest.failed",
		Error:          &ErrorDetails{Code: "ingest_failed", Message: errorMessage},
		Metadata:       metadata,
	}

	return s.send(ctx, webhookURL, payload)
}

func (s *HTTPService) send(ctx context.Context, url string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= s.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := s.policy.Wait(ctx, attempt); err != nil {
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "policylens-chat-api/1.0")
		req.Header.Set("X-PolicyLens-Event", payload.Event)
		req.Header.Set("X-PolicyLens-Conversation-ID", payload.ConversationID)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
			s.log.Warn().Err(err).Int("attempt", attempt+1).Msg("webhook delivery failed")
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			s.log.Info().
				Str("conversation_id", payload.ConversationID).
				Str("event", payload.Event).
				Msg("webhook delivered")
			return nil
		}

		lastErr = fmt.Errorf("webhook returned status %d", resp.StatusCode)
		s.log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt+1).Msg("webhook rejected")
	}

	return fmt.Errorf("webhook delivery exhausted retries: %w", lastErr)
}

var _ Service = (*HTTPService)(nil)
