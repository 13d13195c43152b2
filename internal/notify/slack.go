package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrSlackNotConfigured = errors.New("slack webhook url not configured")

type SlackClient struct {
	webhookURL string
	client     *http.Client
}

func NewSlackClient(webhookURL string) *SlackClient {
	return &SlackClient{
		webhookURL: webhookURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Notify posts a message to the configured incoming webhook.
func (c *SlackClient) Notify(ctx context.Context, message string) error {
	if c.webhookURL == "" {
		return ErrSlackNotConfigured
	}

	payload, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("slack returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func newReferralMessage(referrerName, friendName, friendEmail string) string {
	return strings.TrimSpace(fmt.Sprintf(`
:star: *New Referral Signup!*

*Referrer:* %s
*New Lead:* %s (%s)

A new friend has signed up through a referral link.`,
		referrerName, friendName, friendEmail))
}

func referralQualifiedMessage(referrerName, referrerEmail, friendName, reward string) string {
	if reward == "" {
		reward = "$150 Amazon voucher"
	}
	return strings.TrimSpace(fmt.Sprintf(`
:tada: *Referral Reward Qualified!*

*Referrer:* %s (%s)
*Referred Friend:* %s
*Reward:* %s

The 30-day window has passed and the referral is eligible for reward.`,
		referrerName, referrerEmail, friendName, reward))
}
