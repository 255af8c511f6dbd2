package chatbot

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// DefaultTypingInterval is how often the typing action is repeated. Telegram
// clears it after about five seconds.
const DefaultTypingInterval = 3 * time.Second

// startTyping sends the typing action right away and then every interval.
// The returned stop func ends the loop and waits for it; calling it again is a no-op.
func startTyping(ctx context.Context, provider TelegramProvider, chatID int64, interval time.Duration, logger *zap.Logger) (stop func()) {
	if interval <= 0 {
		interval = DefaultTypingInterval
	}

	send := func() {
		if err := provider.SendChatAction(chatID, tgbotapi.ChatTyping); err != nil {
			logger.Debug("Failed to send typing action",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	send()
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				send()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}
