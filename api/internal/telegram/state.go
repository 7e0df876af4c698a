package telegram

import (
	"sync"
	"time"

	"paper-docx/api/internal/mode"
)

const (
	debounce  = 1200 * time.Millisecond
	maxPixels = 18_000_000
	maxPages  = 6
)

// ModeStore remembers the mode each chat picked with /mode.
type ModeStore struct {
	m sync.Map // chatID -> mode.Mode
}

func (s *ModeStore) Set(chatID int64, m mode.Mode) { s.m.Store(chatID, m) }

func (s *ModeStore) Get(chatID int64) mode.Mode {
	if v, ok := s.m.Load(chatID); ok {
		if m, _ := v.(mode.Mode); m != "" {
			return m
		}
	}
	return mode.Default
}

func (s *ModeStore) Clear(chatID int64) { s.m.Delete(chatID) }

// photoBatch collects the pages of one album (or of quick successive photos).
type photoBatch struct {
	ChatID       int64
	Key          string // "grp:<mediaGroupID>" | "chat:<chatID>"
	MediaGroupID string
	Mode         mode.Mode
	Filename     string

	mu     sync.Mutex
	images [][]byte
	timer  *time.Timer
	done   bool // taken by processBatch; later pages go to a new batch
}
