package bot

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type telegramCall struct {
	parseMode string
	text      string
}

func TestEditMarkdown_FallsBackToPlainText(t *testing.T) {
	var mu sync.Mutex
	var calls []telegramCall
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		call := telegramCall{parseMode: r.FormValue("parse_mode"), text: r.FormValue("text")}
		mu.Lock()
		calls = append(calls, call)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if call.parseMode == tgbotapi.ModeMarkdown {
			w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`))
			return
		}
		w.Write([]byte(`{"ok":true,"result":{"message_id":7,"chat":{"id":1},"date":1}}`))
	}))
	defer ts.Close()

	api := &tgbotapi.BotAPI{Token: "test-token", Client: ts.Client(), Buffer: 100}
	api.SetAPIEndpoint(ts.URL + "/bot%s/%s")

	b := New(api, nil, nil, Options{}, nil)
	text := "✅ *Resultado Serasa CPF*\n\nnome: JOAO [50%_d"
	b.editMarkdown(1, 7, text)

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 2 {
		t.Fatalf("expected markdown edit plus plain retry, got %d calls", len(calls))
	}
	if calls[0].parseMode != tgbotapi.ModeMarkdown {
		t.Fatalf("first call should use Markdown, got %q", calls[0].parseMode)
	}
	if calls[1].parseMode != "" {
		t.Fatalf("retry should have no parse mode, got %q", calls[1].parseMode)
	}
	if calls[1].text != text {
		t.Fatalf("retry lost the message text: %q", calls[1].text)
	}
}
