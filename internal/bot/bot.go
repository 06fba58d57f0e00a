// Package bot is the Telegram layer: command parsing, inline-button
// menus annotated with source health, and replies built from the
// lookup pipeline.
package bot

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"consultabot/internal/cache"
	"consultabot/internal/health"
	"consultabot/internal/lookup"
	"consultabot/internal/report"
)

type Bot struct {
	api         *tgbotapi.BotAPI
	svc         *lookup.Service
	prober      *health.Prober
	sessions    *cache.Memory
	sessionTTL  time.Duration
	inlineLimit int
	timeout     time.Duration
	logger      *log.Logger
}

type Options struct {
	SessionTTL  time.Duration
	InlineLimit int
	// Timeout bounds one lookup operation end to end, including the
	// fetcher's retries.
	Timeout time.Duration
}

func New(api *tgbotapi.BotAPI, svc *lookup.Service, prober *health.Prober, opts Options, logger *log.Logger) *Bot {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 15 * time.Minute
	}
	if opts.InlineLimit <= 0 {
		opts.InlineLimit = 3500
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[BOT] ", log.LstdFlags)
	}
	return &Bot{
		api:         api,
		svc:         svc,
		prober:      prober,
		sessions:    cache.NewMemory(1024),
		sessionTTL:  opts.SessionTTL,
		inlineLimit: opts.InlineLimit,
		timeout:     opts.Timeout,
		logger:      logger,
	}
}

// Run consumes updates until the channel closes or ctx is cancelled.
// Each update is handled on its own goroutine so one slow upstream
// does not stall the rest of the chat.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(update.Message)
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.reply(msg.Chat.ID, helpText())
		return
	case "status":
		b.reply(msg.Chat.ID, b.statusText())
		return
	}

	cmd, ok := commandByName(msg.Command())
	if !ok {
		b.reply(msg.Chat.ID, "Comando desconhecido. Use /help para ver os comandos disponíveis.")
		return
	}
	query := msg.CommandArguments()
	if query == "" {
		b.reply(msg.Chat.ID, fmt.Sprintf("⚠️ Informe o %s. Exemplo: %s", cmd.Title, cmd.Usage))
		return
	}
	b.sendMenu(msg.Chat.ID, cmd, query)
}

func (b *Bot) sendMenu(chatID int64, cmd Command, query string) {
	if err := b.sessions.Set(context.Background(), sessionKey(chatID), []byte(query), b.sessionTTL); err != nil {
		b.logger.Printf("session store: %v", err)
	}

	sources := b.svc.Registry.ByKind(cmd.Kind)
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, src := range sources {
		label := b.prober.Level(src.Key).Icon() + " " + src.Label
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, sourceRoute(src.Key))))
	}
	if cmd.Consolidated && len(sources) > 1 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📑 Consolidado (todas as fontes)", mergedRoute(cmd.Kind))))
	}

	text := fmt.Sprintf("Selecione a fonte para consultar o %s `%s`:", cmd.Title, query)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Printf("send menu: %v", err)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.logger.Printf("answer callback: %v", err)
	}
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID

	route, ok := parseRoute(cq.Data)
	if !ok {
		b.edit(chatID, messageID, "Opção inválida. Use o comando novamente.")
		return
	}
	queryBytes, ok := b.sessions.Get(ctx, sessionKey(chatID))
	if !ok {
		b.edit(chatID, messageID, "Sessão expirada. Use o comando novamente.")
		return
	}
	query := string(queryBytes)

	title := b.routeTitle(route)
	b.edit(chatID, messageID, fmt.Sprintf("⏳ Consultando %s...", title))

	opCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	var tree any
	var err error
	if route.Merged {
		tree, err = b.svc.LookupAll(opCtx, route.Kind, query)
	} else {
		tree, err = b.svc.Lookup(opCtx, route.SourceKey, query)
	}
	b.deliver(chatID, messageID, title, query, tree, err)
}

// deliver turns a pipeline result into the user-visible reply: a
// short failure message, a "nothing found" note, an inline Markdown
// message, or a PDF document when the formatted text is too long.
func (b *Bot) deliver(chatID int64, messageID int, title, query string, tree any, err error) {
	if err != nil {
		b.editMarkdown(chatID, messageID, fmt.Sprintf("❌ Erro na consulta %s:\n`%v`", title, err))
		return
	}
	if tree == nil {
		b.editMarkdown(chatID, messageID, fmt.Sprintf("ℹ️ Nenhum campo relevante encontrado para `%s`.", query))
		return
	}

	text := fmt.Sprintf("✅ *Resultado %s*\n\n%s", title, report.Markup(tree))
	if len(text) <= b.inlineLimit {
		b.editMarkdown(chatID, messageID, text)
		return
	}

	b.edit(chatID, messageID, fmt.Sprintf("📄 Resultado extenso; enviando o relatório %s como arquivo.", title))
	b.sendReport(chatID, title, tree)
}

func (b *Bot) sendReport(chatID int64, title string, tree any) {
	var buf bytes.Buffer
	name := report.FileName(title, "pdf")
	if err := report.WritePDF(&buf, title, tree); err != nil {
		b.logger.Printf("pdf render failed, falling back to text: %v", err)
		buf.Reset()
		if terr := report.WriteText(&buf, title, tree); terr != nil {
			b.logger.Printf("text report: %v", terr)
			return
		}
		name = report.FileName(title, "txt")
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: buf.Bytes()})
	doc.Caption = "Relatório de Consulta: " + title
	if _, err := b.api.Send(doc); err != nil {
		b.logger.Printf("send document: %v", err)
	}
}

func (b *Bot) routeTitle(route Route) string {
	if route.Merged {
		cmd, ok := commandByKind(route.Kind)
		if !ok {
			return string(route.Kind)
		}
		return "Consolidado " + cmd.Title
	}
	src, ok := b.svc.Registry.Get(route.SourceKey)
	if !ok {
		return route.SourceKey
	}
	return src.Label
}

func (b *Bot) statusText() string {
	snapshot := b.prober.Snapshot()
	text := "📡 *Status das fontes*\n\n"
	for _, src := range b.svc.Registry.All() {
		st, ok := snapshot[src.Key]
		if !ok {
			text += fmt.Sprintf("⚪ %s: sem medição\n", src.Label)
			continue
		}
		text += fmt.Sprintf("%s %s: %s (%.1fs)\n", st.Level.Icon(), src.Label, st.Level, st.Latency.Seconds())
	}
	return text
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Printf("send: %v", err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.logger.Printf("edit: %v", err)
	}
}

// editMarkdown retries without ParseMode when Telegram rejects the
// Markdown, so upstream data with stray metacharacters still reaches
// the user instead of leaving the progress message in place.
func (b *Bot) editMarkdown(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Printf("markdown edit: %v, resending as plain text", err)
		b.edit(chatID, messageID, text)
	}
}

func sessionKey(chatID int64) string {
	return "session:" + strconv.FormatInt(chatID, 10)
}
