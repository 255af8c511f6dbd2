package conversation

import (
	"sync"
	"testing"
	"time"

	"geminibot/internal/common"
	"geminibot/internal/llm"

	"github.com/stretchr/testify/assert"
)

func TestStore_GetOrCreate(t *testing.T) {
	clock := common.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	store := NewStore(clock)

	s, created := store.GetOrCreate(1, "gemini-2.5-flash")
	assert.True(t, created)
	assert.Equal(t, clock.Now(), s.CreatedAt)

	again, created := store.GetOrCreate(1, "gemini-2.5-pro")
	assert.False(t, created)
	assert.Same(t, s, again)
	assert.Equal(t, "gemini-2.5-flash", again.Model)
}

func TestStore_ReplaceDropsHistory(t *testing.T) {
	store := NewStore(nil)

	old, _ := store.GetOrCreate(1, "gemini-2.5-flash")
	old.history = append(old.history, llm.Message{Role: llm.RoleUser, Text: "hi"})

	fresh := store.Replace(1, "gemini-2.5-pro")

	got, ok := store.Get(1)
	assert.True(t, ok)
	assert.Same(t, fresh, got)
	assert.Empty(t, got.History())
	assert.Equal(t, 1, store.Len())
}

func TestStore_ConcurrentGetOrCreate(t *testing.T) {
	store := NewStore(nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := store.GetOrCreate(9, "m"); ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 1, store.Len())
}

func TestSession_HistoryIsACopy(t *testing.T) {
	s := NewStore(nil).Replace(1, "m")
	s.history = []llm.Message{{Role: llm.RoleUser, Text: "a"}}

	h := s.History()
	h[0].Text = "changed"

	assert.Equal(t, "a", s.History()[0].Text)
	assert.False(t, s.LastActivity().IsZero())
}
