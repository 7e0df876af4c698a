package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestRetryDelayFromError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want time.Duration
	}{
		{"nil", nil, 0},
		{"retry after", errors.New("Too Many Requests: retry after 7"), 7 * time.Second},
		{"429 without hint", errors.New("too many requests"), 3 * time.Second},
		{"timeout", timeoutErr{}, 2 * time.Second},
		{"other", errors.New("boom"), time.Second},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, retryDelayFromError(tc.err))
		})
	}
}

type fakeUpdater struct {
	mu      sync.Mutex
	offsets []int
	batches [][]tgbotapi.Update
}

func (f *fakeUpdater) GetUpdates(c tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offsets = append(f.offsets, c.Offset)
	if len(f.batches) == 0 {
		return nil, nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, nil
}

func TestRunPollingAdvancesOffset(t *testing.T) {
	up := &fakeUpdater{batches: [][]tgbotapi.Update{
		{{UpdateID: 10}, {UpdateID: 11}},
		{{UpdateID: 12}},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var seen []int
	done := make(chan struct{})
	go func() {
		RunPolling(ctx, up, func(u tgbotapi.Update) {
			mu.Lock()
			seen = append(seen, u.UpdateID)
			if len(seen) == 3 {
				cancel()
			}
			mu.Unlock()
		}, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("polling did not stop")
	}
	assert.Equal(t, []int{10, 11, 12}, seen)
	up.mu.Lock()
	defer up.mu.Unlock()
	require.GreaterOrEqual(t, len(up.offsets), 2)
	assert.Equal(t, []int{0, 12}, up.offsets[:2])
}

func TestWebhookPathIsStable(t *testing.T) {
	a := WebhookPath("123:abc")
	assert.Equal(t, a, WebhookPath("123:abc"))
	assert.NotEqual(t, a, WebhookPath("123:abd"))
	assert.Len(t, a, len("/webhook/")+16)
	assert.NotContains(t, a, "abc")
}
