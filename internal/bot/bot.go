// Package bot routes chat commands to the activation parser, the activation
// table and the report renderers, and replies in the originating thread.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/aktivasi/internal/activation"
	"github.com/MikeSquared-Agency/aktivasi/internal/hermes"
	"github.com/MikeSquared-Agency/aktivasi/internal/lock"
	"github.com/MikeSquared-Agency/aktivasi/internal/period"
)

// Table is the row-table contract of the record store.
type Table interface {
	ReadAll(ctx context.Context, table string) ([][]string, error)
	Append(ctx context.Context, table string, row []string) error
	ReplaceRange(ctx context.Context, table, rangeSpec string, rows [][]string) error
}

// Replier sends a chat reply.
type Replier interface {
	PostMessage(ctx context.Context, channel, threadTS, text string) error
}

// Publisher emits domain events. It may be nil.
type Publisher interface {
	Publish(subject string, data any) error
}

type Options struct {
	ActivationTable string
	UserTable       string
	CommandTimeout  time.Duration
	// Location is the regional timezone for stamping and report windows.
	// Nil means period.DefaultTimezone.
	Location *time.Location
}

// Bot is the Command Router. Each inbound message is handled on its own
// goroutine.
type Bot struct {
	table     Table
	replier   Replier
	publisher Publisher
	locker    lock.Locker
	opts      Options
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

func New(t Table, r Replier, p Publisher, l lock.Locker, opts Options, logger *slog.Logger) *Bot {
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = 30 * time.Second
	}
	if opts.Location == nil {
		opts.Location = period.LoadLocation(period.DefaultTimezone)
	}
	loc := opts.Location
	return &Bot{
		table:     t,
		replier:   r,
		publisher: p,
		locker:    l,
		opts:      opts,
		logger:    logger,
		now:       func() time.Time { return time.Now().In(loc) },
	}
}

// HandleChatMessage is the NATS handler for inbound chat messages.
func (b *Bot) HandleChatMessage(subject string, data []byte) {
	msg, err := hermes.DecodeChatMessage(data)
	if err != nil {
		b.logger.Warn("dropping chat message", "subject", subject, "error", err)
		return
	}

	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		b.logger.Warn("dropping chat message after stop", "subject", subject, "user", msg.UserName)
		return
	}
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		b.serve(msg)
	}()
}

// Stop makes HandleChatMessage drop new messages and blocks until in-flight
// ones are handled.
func (b *Bot) Stop() {
	b.mu.Lock()
	b.stopped = true
	b.mu.Unlock()
	b.wg.Wait()
}

func (b *Bot) serve(msg hermes.ChatMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), b.opts.CommandTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("command panicked", "user", msg.UserName, "panic", r)
			b.reply(ctx, msg, replyFor(nil))
		}
	}()

	if reply := b.Handle(ctx, msg); reply != "" {
		b.reply(ctx, msg, reply)
	}
}

func (b *Bot) reply(ctx context.Context, msg hermes.ChatMessage, text string) {
	if err := b.replier.PostMessage(ctx, msg.ChannelID, msg.ThreadTS, text); err != nil {
		b.logger.Error("reply failed", "channel", msg.ChannelID, "user", msg.UserName, "error", err)
	}
}

// Handle runs the command in msg and returns the reply text. Messages that
// are neither commands nor activation pastes yield "".
func (b *Bot) Handle(ctx context.Context, msg hermes.ChatMessage) string {
	cmd, ok := ParseCommand(msg.Text)
	if !ok {
		return ""
	}

	start := time.Now()
	reply, err := b.dispatch(ctx, msg, cmd)
	if err != nil {
		b.logError(msg, cmd, err)
		return replyFor(err)
	}

	b.logger.Info("command handled",
		"command", cmd.Name,
		"user", msg.UserName,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return reply
}

func (b *Bot) dispatch(ctx context.Context, msg hermes.ChatMessage, cmd Command) (string, error) {
	spec, ok := commands[cmd.Name]
	if !ok {
		return "", ErrUnrecognizedCommand
	}
	if spec.public {
		return spec.run(b, ctx, activation.User{}, cmd)
	}

	user, err := b.authorize(ctx, msg, spec.admin)
	if err != nil {
		return "", err
	}
	return spec.run(b, ctx, user, cmd)
}

// authorize resolves the caller in the users table by chat name, then by
// chat id.
func (b *Bot) authorize(ctx context.Context, msg hermes.ChatMessage, admin bool) (activation.User, error) {
	rows, err := b.table.ReadAll(ctx, b.opts.UserTable)
	if err != nil {
		return activation.User{}, storeErr("read users", err)
	}

	user, ok := activation.FindUser(rows, msg.UserName)
	if !ok {
		user, ok = activation.FindUser(rows, msg.UserID)
	}
	if !ok || !user.IsActive() {
		return activation.User{}, ErrUnauthorized
	}
	if admin && !user.IsAdmin() {
		return activation.User{}, ErrUnauthorized
	}
	return user, nil
}

func (b *Bot) logError(msg hermes.ChatMessage, cmd Command, err error) {
	attrs := []any{"command", cmd.Name, "user", msg.UserName, "error", err}
	if errors.Is(err, ErrStoreUnavailable) || !isUserError(err) {
		b.logger.Error("command failed", attrs...)
		return
	}
	b.logger.Warn("command rejected", attrs...)
}

func (b *Bot) publish(subject string, data any) {
	if b.publisher == nil {
		return
	}
	if err := b.publisher.Publish(subject, data); err != nil {
		b.logger.Error("failed to publish event", "subject", subject, "error", err)
	}
}
