package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendNotifier delivers the token through the Resend HTTP API.
type ResendNotifier struct {
	apiKey   string
	sender   string
	endpoint string
	client   *http.Client
}

type resendPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func NewResendNotifier(apiKey, sender string) *ResendNotifier {
	return &ResendNotifier{
		apiKey:   apiKey,
		sender:   sender,
		endpoint: resendEndpoint,
		client:   &http.Client{},
	}
}

func (n *ResendNotifier) Send(ctx context.Context, to, token string) error {
	payload := resendPayload{
		From:    n.sender,
		To:      to,
		Subject: "Password reset",
		Text:    fmt.Sprintf("Your password reset code is: %s", token),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal resend payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send resend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("resend API returned status %d", resp.StatusCode)
	}
	return nil
}
