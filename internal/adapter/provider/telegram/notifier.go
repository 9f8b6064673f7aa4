// Package telegram delivers reminders through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/semenovdl/recallbot/internal/domain"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	defaultTimeout = 10 * time.Second
)

// Notifier sends reminder messages via the Bot API sendMessage method.
type Notifier struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *slog.Logger
}

// NewNotifier creates a Notifier against the public Bot API.
func NewNotifier(logger *slog.Logger, token string, timeout time.Duration) *Notifier {
	return NewNotifierWithURL(logger, token, defaultBaseURL, timeout)
}

// NewNotifierWithURL creates a Notifier with a custom base URL (for testing).
// A non-positive timeout falls back to the default.
func NewNotifierWithURL(logger *slog.Logger, token, baseURL string, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Notifier{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "telegram"),
	}
}

// Send delivers one reminder to the card owner's chat.
//
// Failures are classified for the sweep: domain.ErrDeliveryPermanent means
// the chat is gone for good (bot blocked, chat deleted), anything
// retryable maps to domain.ErrDeliveryTransient.
func (n *Notifier) Send(ctx context.Context, card domain.Card) error {
	payload := sendMessageRequest{
		ChatID:    card.OwnerID,
		Text:      reminderText(card),
		ParseMode: "HTML",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: request failed: %v: %w", err, domain.ErrDeliveryTransient)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		n.log.DebugContext(ctx, "reminder sent",
			slog.Int64("chat_id", card.OwnerID),
			slog.String("card_id", card.ID.String()),
		)
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiResp apiResponse
	_ = json.Unmarshal(respBody, &apiResp)

	return n.classify(resp.StatusCode, apiResp)
}

// classify maps a Bot API error to a delivery sentinel.
func (n *Notifier) classify(status int, resp apiResponse) error {
	desc := strings.ToLower(resp.Description)

	switch {
	case status == http.StatusForbidden:
		// Bot blocked by the user or kicked from the chat.
		return fmt.Errorf("telegram: status 403 (%s): %w", resp.Description, domain.ErrDeliveryPermanent)

	case status == http.StatusBadRequest && strings.Contains(desc, "chat not found"):
		return fmt.Errorf("telegram: chat not found: %w", domain.ErrDeliveryPermanent)

	case status == http.StatusTooManyRequests:
		return fmt.Errorf("telegram: throttled, retry after %ds: %w",
			resp.Parameters.RetryAfter, domain.ErrDeliveryTransient)

	default:
		return fmt.Errorf("telegram: status %d (%s): %w", status, resp.Description, domain.ErrDeliveryTransient)
	}
}

// reminderText renders the message body. Card content is user text and must
// be escaped before going into HTML parse mode.
func reminderText(card domain.Card) string {
	var b strings.Builder
	b.WriteString("⏰ <b>Time to review</b>\n\n")
	b.WriteString(html.EscapeString(card.Content))
	return b.String()
}
