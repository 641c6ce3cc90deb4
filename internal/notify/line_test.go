package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"denki-watcher/internal/localday"
)

func testReport() Report {
	return Report{
		Date:          localday.Date(2024, time.January, 15),
		Kwh:           decimal.NewFromFloat(0.8),
		EstimatedCost: decimal.NewFromFloat(45.60),
		CycleStart:    localday.Date(2023, time.December, 23),
		CycleEnd:      localday.Date(2024, time.January, 22),
		CycleKwh:      decimal.NewFromFloat(120.5),
		CycleCost:     decimal.NewFromFloat(2513.81),
	}
}

func TestLineNotifierSuccess(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v2/bot/message/push") {
			t.Fatalf("路径应为 push 端点, 实际 %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer channel-token" {
			t.Fatalf("Authorization header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("解析请求体失败: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	notifier := NewLineNotifier("channel-token", "U1234", srv.URL, time.Second, zerolog.Nop())
	if err := notifier.Notify(context.Background(), testReport()); err != nil {
		t.Fatalf("Notify 应成功: %v", err)
	}

	if received["to"] != "U1234" {
		t.Fatalf("to 不正确: %#v", received)
	}
	messages, ok := received["messages"].([]any)
	if !ok || len(messages) != 1 {
		t.Fatalf("messages 形状不正确: %#v", received["messages"])
	}
	text := messages[0].(map[string]any)["text"].(string)
	if !strings.Contains(text, "2024-01-15") || !strings.Contains(text, "0.800 kWh") {
		t.Fatalf("text 缺少关键内容: %q", text)
	}
}

func TestLineNotifierNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	notifier := NewLineNotifier("bad-token", "U1234", srv.URL, time.Second, zerolog.Nop())
	if err := notifier.Notify(context.Background(), testReport()); err == nil {
		t.Fatal("非 2xx 应报错")
	}
}
