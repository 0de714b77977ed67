package telegram

import (
	"context"
	"log"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jackrtech/jacks-telebot/internal/domain"
	"github.com/jackrtech/jacks-telebot/internal/ui"
)

// Router is the core dispatch surface the poller feeds.
type Router interface {
	HandleCommand(ctx context.Context, user domain.UserID, chat domain.ChatID, username, command, args string)
	HandleCallback(ctx context.Context, user domain.UserID, chat domain.ChatID, username string, src ui.Handle, token string) string
	HandleText(ctx context.Context, user domain.UserID, chat domain.ChatID, text string)
}

const (
	workerQueue     = 16
	workerIdleAfter = 5 * time.Minute
)

// fanout hands each user's updates to a dedicated worker, so one user's
// events run in delivery order while different users proceed concurrently.
// A saturated worker drops updates instead of stalling the poll loop, and
// workers retire after sitting idle.
type fanout struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	workers map[domain.UserID]chan tgbotapi.Update
	handle  func(tgbotapi.Update)
	queue   int
	idle    time.Duration
}

func newFanout(handle func(tgbotapi.Update)) *fanout {
	return &fanout{
		workers: make(map[domain.UserID]chan tgbotapi.Update),
		handle:  handle,
		queue:   workerQueue,
		idle:    workerIdleAfter,
	}
}

// deliver never blocks: a full queue means the user is flooding faster
// than their actor can drain, and their excess updates are dropped.
func (f *fanout) deliver(user domain.UserID, upd tgbotapi.Update) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.workers[user]
	if !ok {
		ch = make(chan tgbotapi.Update, f.queue)
		f.workers[user] = ch
		f.wg.Add(1)
		go f.work(user, ch)
	}
	select {
	case ch <- upd:
	default:
		log.Printf("dropping update for user %d: worker queue is full", user)
	}
}

func (f *fanout) work(user domain.UserID, ch chan tgbotapi.Update) {
	defer f.wg.Done()
	idle := time.NewTimer(f.idle)
	defer idle.Stop()
	for {
		select {
		case upd, ok := <-ch:
			if !ok {
				return
			}
			f.handle(upd)
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(f.idle)
		case <-idle.C:
			// delivery holds the same lock, so an empty queue here means
			// nobody can slip an update into this channel before it is
			// unpublished
			f.mu.Lock()
			if len(ch) == 0 {
				delete(f.workers, user)
				f.mu.Unlock()
				return
			}
			f.mu.Unlock()
			idle.Reset(f.idle)
		}
	}
}

// close stops every worker and waits for in-flight dispatches.
func (f *fanout) close() {
	f.mu.Lock()
	for _, ch := range f.workers {
		close(ch)
	}
	f.workers = make(map[domain.UserID]chan tgbotapi.Update)
	f.mu.Unlock()
	f.wg.Wait()
}

// Run long-polls Telegram and fans updates out per user.
func (b *Bot) Run(ctx context.Context, r Router) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	fo := newFanout(func(upd tgbotapi.Update) { b.dispatch(ctx, r, upd) })

	log.Printf("telegram poller started as @%s", b.Username())
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			fo.close()
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				fo.close()
				return nil
			}
			user, delivers := updateUser(upd)
			if !delivers {
				continue
			}
			fo.deliver(user, upd)
		}
	}
}

func updateUser(upd tgbotapi.Update) (domain.UserID, bool) {
	switch {
	case upd.Message != nil && upd.Message.From != nil:
		return domain.UserID(upd.Message.From.ID), true
	case upd.CallbackQuery != nil:
		return domain.UserID(upd.CallbackQuery.From.ID), true
	}
	return 0, false
}

func (b *Bot) dispatch(ctx context.Context, r Router, upd tgbotapi.Update) {
	switch {
	case upd.CallbackQuery != nil:
		cq := upd.CallbackQuery
		if cq.Message == nil {
			return
		}
		src := ui.Handle{
			Chat:      domain.ChatID(cq.Message.Chat.ID),
			MessageID: cq.Message.MessageID,
		}
		ack := r.HandleCallback(ctx,
			domain.UserID(cq.From.ID),
			domain.ChatID(cq.Message.Chat.ID),
			displayName(cq.From),
			src,
			cq.Data,
		)
		if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, ack)); err != nil {
			log.Printf("failed to answer callback %s: %v", cq.ID, err)
		}
	case upd.Message != nil:
		msg := upd.Message
		user := domain.UserID(msg.From.ID)
		chat := domain.ChatID(msg.Chat.ID)
		if msg.IsCommand() {
			r.HandleCommand(ctx, user, chat, displayName(msg.From), msg.Command(), msg.CommandArguments())
			return
		}
		r.HandleText(ctx, user, chat, msg.Text)
	}
}

func displayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	if u.UserName != "" {
		return u.UserName
	}
	return u.FirstName
}
