package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// MailService posts notification payloads to the mail dispatch webhook.
// It is consumed fire-and-forget: callers log failures and move on.
type MailService struct {
	webhookURL string
	apiKey     string
	client     *http.Client
	translator *Translator
}

type mailPayload struct {
	Event   string                 `json:"event"`
	Subject string                 `json:"subject"`
	Body    string                 `json:"body"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

func NewMailService(translator *Translator) *MailService {
	return &MailService{
		webhookURL: os.Getenv("MAIL_WEBHOOK_URL"),
		apiKey:     os.Getenv("MAIL_WEBHOOK_KEY"),
		client:     &http.Client{Timeout: 30 * time.Second},
		translator: translator,
	}
}

// Notify sends one event to the webhook. With no webhook configured the
// notification is silently skipped, which keeps local development working.
func (s *MailService) Notify(ctx context.Context, event string, payload map[string]interface{}) error {
	if s.webhookURL == "" {
		return nil
	}

	params := make(map[string]string, len(payload))
	for k, v := range payload {
		params[k] = fmt.Sprint(v)
	}
	body := mailPayload{
		Event:   event,
		Subject: s.translator.Translate("fr", "mail."+event+".subject", params),
		Body:    s.translator.Translate("fr", "mail."+event+".body", params),
		Data:    payload,
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("error marshaling notification: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending notification: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("mail webhook returned error: %v", resp.Status)
	}
	return nil
}
