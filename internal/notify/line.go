package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"denki-watcher/internal/localday"
)

// Report 封装单日用电通知的上下文。
type Report struct {
	Date          time.Time
	Kwh           decimal.Decimal
	EstimatedCost decimal.Decimal
	CycleStart    time.Time
	CycleEnd      time.Time
	CycleKwh      decimal.Decimal
	CycleCost     decimal.Decimal
}

// Notifier 定义通知输送接口。
type Notifier interface {
	Notify(ctx context.Context, report Report) error
}

// LineNotifier 通过 LINE Messaging API 推送消息。
type LineNotifier struct {
	channelToken string
	recipientID  string
	baseURL      string
	client       *http.Client
	logger       zerolog.Logger
}

// NewLineNotifier 构造 LINE 通知器。
func NewLineNotifier(channelToken, recipientID, baseURL string, timeout time.Duration, logger zerolog.Logger) *LineNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.line.me"
	}

	return &LineNotifier{
		channelToken: channelToken,
		recipientID:  recipientID,
		baseURL:      strings.TrimRight(baseURL, "/"),
		client:       &http.Client{Timeout: timeout},
		logger:       logger.With().Str("component", "notify_line").Logger(),
	}
}

// Notify 调用 push API 推送文本。
func (n *LineNotifier) Notify(ctx context.Context, report Report) error {
	payload := map[string]any{
		"to": n.recipientID,
		"messages": []map[string]string{
			{"type": "text", "text": renderMessage(report)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal line payload: %w", err)
	}

	url := n.baseURL + "/v2/bot/message/push"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create line request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.channelToken)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send line request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("line 响应码异常: %d", resp.StatusCode)
	}

	n.logger.Info().
		Str("date", report.Date.In(localday.JST).Format(localday.DateLayout)).
		Msg("通知已发送 (LINE)")
	return nil
}

func renderMessage(report Report) string {
	builder := strings.Builder{}
	builder.WriteString("[Electricity Usage]\n")
	builder.WriteString(fmt.Sprintf("Date: %s\n", report.Date.In(localday.JST).Format(localday.DateLayout)))
	builder.WriteString(fmt.Sprintf("Usage: %s kWh\n", report.Kwh.StringFixed(3)))
	builder.WriteString(fmt.Sprintf("Estimated cost: %s JPY\n", report.EstimatedCost.StringFixed(2)))
	if !report.CycleStart.IsZero() {
		builder.WriteString(fmt.Sprintf("Cycle %s ~ %s:\n",
			report.CycleStart.In(localday.JST).Format(localday.DateLayout),
			report.CycleEnd.In(localday.JST).Format(localday.DateLayout)))
		builder.WriteString(fmt.Sprintf("  Total: %s kWh / %s JPY\n",
			report.CycleKwh.StringFixed(3), report.CycleCost.StringFixed(2)))
	}
	return builder.String()
}

var _ Notifier = (*LineNotifier)(nil)
