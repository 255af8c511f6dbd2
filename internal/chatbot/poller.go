package chatbot

import (
	"context"
	"sync"

	"geminibot/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent update handlers when none are configured.
const DefaultWorkers = 8

// Poller receives updates by long polling and hands each to the service.
// Updates of one chat are handled in arrival order by a single worker, so a
// busy chat holds at most one worker slot.
type Poller struct {
	provider TelegramProvider
	service  ChatbotService
	logger   *zap.Logger
	timeout  int
	workers  int

	mu      sync.Mutex
	backlog map[int64][]tgbotapi.Update
}

// NewPoller creates a new Poller instance
func NewPoller(provider TelegramProvider, service ChatbotService, cfg config.ChatbotConfig, logger *zap.Logger) *Poller {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Poller{
		provider: provider,
		service:  service,
		logger:   logger,
		timeout:  cfg.PollTimeout,
		workers:  workers,
		backlog:  make(map[int64][]tgbotapi.Update),
	}
}

// Run polls until ctx is cancelled or the update channel closes, then waits
// for running handlers. Handlers see ctx, so a shutdown cancels their model calls.
func (p *Poller) Run(ctx context.Context) error {
	updates := p.provider.GetUpdatesChan(p.timeout)

	var handlers errgroup.Group
	handlers.SetLimit(p.workers)

	p.logger.Info("Polling for updates",
		zap.Int("timeout", p.timeout),
		zap.Int("workers", p.workers))

	for {
		select {
		case <-ctx.Done():
			p.provider.StopReceivingUpdates()
			p.logger.Info("Polling stopped, waiting for handlers")
			return handlers.Wait()
		case update, ok := <-updates:
			if !ok {
				return handlers.Wait()
			}
			p.dispatch(ctx, &handlers, update)
		}
	}
}

// dispatch queues update behind its chat's running worker, or starts one.
func (p *Poller) dispatch(ctx context.Context, handlers *errgroup.Group, update tgbotapi.Update) {
	chatID := updateChatID(update)

	p.mu.Lock()
	if queued, busy := p.backlog[chatID]; busy {
		p.backlog[chatID] = append(queued, update)
		p.mu.Unlock()
		return
	}
	p.backlog[chatID] = nil
	p.mu.Unlock()

	handlers.Go(func() error {
		p.drain(ctx, chatID, update)
		return nil
	})
}

// drain handles update and then the chat's backlog until it is empty.
func (p *Poller) drain(ctx context.Context, chatID int64, update tgbotapi.Update) {
	for {
		p.handle(ctx, &update)

		p.mu.Lock()
		queued := p.backlog[chatID]
		if len(queued) == 0 || ctx.Err() != nil {
			delete(p.backlog, chatID)
			p.mu.Unlock()
			if len(queued) > 0 {
				p.logger.Info("Dropped queued updates on shutdown",
					zap.Int64("chat_id", chatID),
					zap.Int("count", len(queued)))
			}
			return
		}
		update, p.backlog[chatID] = queued[0], queued[1:]
		p.mu.Unlock()
	}
}

func (p *Poller) handle(ctx context.Context, update *tgbotapi.Update) {
	if err := p.service.HandleUpdate(ctx, update); err != nil {
		p.logger.Warn("Failed to handle update",
			zap.Int("update_id", update.UpdateID),
			zap.Int64("chat_id", updateChatID(*update)),
			zap.Error(err))
	}
}

// updateChatID is the chat an update belongs to; updates without one share id 0.
func updateChatID(update tgbotapi.Update) int64 {
	if update.Message != nil && update.Message.Chat != nil {
		return update.Message.Chat.ID
	}
	return 0
}
