package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ehlvg/tg-agent/internal/config"
	"github.com/ehlvg/tg-agent/internal/providers/agent"
	"github.com/ehlvg/tg-agent/internal/service/relay"
	"github.com/ehlvg/tg-agent/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

const startText = `Hello! I'm an AI assistant bot. You can:
• Send me a direct message
• Use /ask <question> in groups
• Mention me with @ in groups
• Use /resetc to clear conversation context
• Use /help for more information`

const helpText = `Available commands:
• /start - Initialize the bot
• /ask <question> - Ask a question
• /resetc - Clear conversation context
• /help - Show this help message

In groups, you can also mention me with @ to ask questions.
I maintain context of the last messages in each chat.`

type Bot struct {
	bot    *tele.Bot
	cfg    *config.TelegramConfig
	relay  *relay.Relay
	sender *sender
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	rl *relay.Relay,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:    b,
		cfg:    cfg,
		relay:  rl,
		sender: newSender(b),
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Handle("/start", bot.handleStart)
	b.Handle("/help", bot.handleHelp)
	b.Handle("/resetc", bot.handleReset)
	b.Handle("/ask", bot.handleAsk)
	b.Handle(tele.OnText, bot.handleText)
	b.Handle(tele.OnEdited, bot.handleText)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleStart(c tele.Context) error {
	return c.Send(startText)
}

func (b *Bot) handleHelp(c tele.Context) error {
	return c.Send(helpText)
}

func (b *Bot) handleReset(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	b.relay.Reset(ctx, c.Chat().ID)
	return c.Send("Conversation context has been cleared.")
}

func (b *Bot) handleAsk(c tele.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return c.Send("Please provide a question after /ask command.")
	}
	return b.process(c, strings.Join(args, " "))
}

func (b *Bot) handleText(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Text == "" {
		return nil
	}

	switch c.Chat().Type {
	case tele.ChatPrivate:
		// Private chats: every message is for us
		return b.process(c, msg.Text)
	case tele.ChatGroup, tele.ChatSuperGroup:
		// Groups: only when mentioned, with the mention stripped
		text, ok := stripMention(msg.Text, b.bot.Me.Username)
		if ok && text != "" {
			return b.process(c, text)
		}
	}
	return nil
}

func (b *Bot) process(c tele.Context, text string) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)
	chat := c.Chat()

	_ = c.Notify(tele.Typing)

	// Run the round trip off the poller goroutine so one stalled agent
	// call never holds up updates for other chats.
	go func() {
		reply, err := b.relay.Process(ctx, chat.ID, text)
		if err != nil {
			if _, serr := b.bot.Send(chat, failureMessage(err)); serr != nil {
				logger.Error().Err(serr).Msg("failed to send failure message")
			}
			return
		}

		if err := b.sender.sendMarkdown(ctx, chat, reply); err != nil {
			logger.Error().Err(err).Msg("failed to send reply")
		}
	}()

	return nil
}

// stripMention removes the @username mention from text. Reports whether the
// mention was present at all.
func stripMention(text, username string) (string, bool) {
	if username == "" {
		return "", false
	}
	mention := "@" + username
	if !strings.Contains(text, mention) {
		return "", false
	}
	return strings.TrimSpace(strings.ReplaceAll(text, mention, "")), true
}

func failureMessage(err error) string {
	if errors.Is(err, agent.ErrTimeout) {
		return "The agent took too long to respond. Please try again."
	}
	return fmt.Sprintf("Sorry, an error occurred: %v", err)
}
