package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/notify"
)

const telegramAPI = "https://api.telegram.org"

// TelegramService posts kitchen broadcast events to the admin chat.
type TelegramService struct {
	botToken    string
	adminChatID string
	baseURL     string
	client      *http.Client
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		baseURL:     telegramAPI,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether both token and chat are configured.
func (s *TelegramService) Enabled() bool {
	return s.botToken != "" && s.adminChatID != ""
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	body, err := json.Marshal(telegramMessage{ChatID: chatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}

// Publish implements notify.Transport. Only broadcast events of interest to
// the front desk are forwarded, from a separate goroutine.
func (s *TelegramService) Publish(ctx context.Context, audience notify.Audience, event notify.Event) error {
	if !audience.Broadcast || !s.Enabled() {
		return nil
	}
	text, ok := FormatOrderEvent(event)
	if !ok {
		return nil
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		if err := s.SendMessage(ctx, s.adminChatID, text); err != nil {
			log.Printf("[Telegram] Failed to send %s for %s: %v", event.Type, event.Order.OrderNumber, err)
		}
	}()
	return nil
}

// FormatPrice formats an amount in rupees with thousand separators.
func FormatPrice(amount float64) string {
	whole := int64(amount)
	str := fmt.Sprintf("%d", whole)

	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	paise := int64((amount-float64(whole))*100 + 0.5)
	if paise > 0 {
		return fmt.Sprintf("₹%s.%02d", result.String(), paise)
	}
	return "₹" + result.String()
}

// FormatOrderEvent renders the admin chat message for an event. New orders,
// cancellations and deliveries are reported; other steps are not.
func FormatOrderEvent(event notify.Event) (string, bool) {
	o := event.Order

	switch {
	case event.Type == notify.EventCreated:
		var items strings.Builder
		for i, item := range o.Items {
			items.WriteString(fmt.Sprintf("%d. <b>%s</b>\n   %d x %s = %s\n",
				i+1, item.Name, item.Quantity,
				FormatPrice(item.Price), FormatPrice(item.Price*float64(item.Quantity))))
		}

		where := "Takeaway"
		if o.OrderType == models.OrderTypeDineIn {
			where = "Dine-in, table " + o.TableNumber
		}

		return strings.TrimSpace(fmt.Sprintf(`<b>🛒 NEW ORDER</b>
<b>📋 Order:</b> %s
<b>👤 Customer:</b> %s
<b>📞 Phone:</b> %s
<b>🍽 Type:</b> %s
<b>📦 Items:</b>
%s
<b>💰 Total:</b> %s
<b>💳 Payment:</b> %s
━━━━━━━━━━━━━━━━━━`,
			o.OrderNumber, o.CustomerName, o.CustomerPhone, where,
			items.String(), FormatPrice(o.GrandTotal), o.PaymentMethod)), true

	case event.Type == notify.EventDelivered:
		return fmt.Sprintf("<b>✅ DELIVERED</b>\n<b>📋 Order:</b> %s\n<b>💰 Total:</b> %s",
			o.OrderNumber, FormatPrice(o.GrandTotal)), true

	case event.NewStatus == models.StatusCancelled:
		return fmt.Sprintf("<b>❌ CANCELLED</b>\n<b>📋 Order:</b> %s\n<b>👤 Customer:</b> %s (was %s)",
			o.OrderNumber, o.CustomerName, event.PreviousStatus), true
	}
	return "", false
}
