package repository

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"stock-monitor-bot/internal/entity"

	"gopkg.in/yaml.v3"
)

// WatchlistRepository owns the user-authored watchlist. Readers always see
// a complete snapshot; Replace swaps the whole list atomically and persists
// it, so an in-flight cycle never observes a partial update.
type WatchlistRepository interface {
	GetAll() []entity.WatchlistEntry
	GetTickers() []string
	Get(ticker string) (*entity.WatchlistEntry, bool)
	Replace(entries []entity.WatchlistEntry) error
	Clear() error
	ToYAML() (string, error)
}

type watchlistRepository struct {
	filepath string

	mu      sync.RWMutex
	entries []entity.WatchlistEntry
}

// NewWatchlistRepository loads the watchlist from the given YAML file. A
// missing file yields an empty watchlist; a malformed one is an error.
func NewWatchlistRepository(filepath string) (WatchlistRepository, error) {
	r := &watchlistRepository{filepath: filepath}

	data, err := os.ReadFile(filepath)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist file: %w", err)
	}

	entries, err := ParseWatchlistYAML(data)
	if err != nil {
		return nil, err
	}
	r.entries = entries

	return r, nil
}

// ParseWatchlistYAML decodes and validates a watchlist document. The
// top-level key must be "watchlist" and every entry must carry a ticker.
func ParseWatchlistYAML(data []byte) ([]entity.WatchlistEntry, error) {
	var doc entity.Watchlist
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid watchlist YAML: %w", err)
	}

	seen := make(map[string]bool, len(doc.Entries))
	for i := range doc.Entries {
		doc.Entries[i].Ticker = strings.ToUpper(strings.TrimSpace(doc.Entries[i].Ticker))
		if err := doc.Entries[i].Validate(); err != nil {
			return nil, err
		}
		if seen[doc.Entries[i].Ticker] {
			return nil, fmt.Errorf("duplicate ticker %s in watchlist", doc.Entries[i].Ticker)
		}
		seen[doc.Entries[i].Ticker] = true
	}

	return doc.Entries, nil
}

func (r *watchlistRepository) GetAll() []entity.WatchlistEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.WatchlistEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *watchlistRepository) GetTickers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tickers := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		tickers = append(tickers, e.Ticker)
	}
	return tickers
}

func (r *watchlistRepository) Get(ticker string) (*entity.WatchlistEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	for _, e := range r.entries {
		if e.Ticker == ticker {
			entry := e
			return &entry, true
		}
	}
	return nil, false
}

// Replace validates, swaps the snapshot and persists it. On validation
// failure the previous snapshot stays in place.
func (r *watchlistRepository) Replace(entries []entity.WatchlistEntry) error {
	validated := make([]entity.WatchlistEntry, len(entries))
	copy(validated, entries)

	seen := make(map[string]bool, len(validated))
	for i := range validated {
		validated[i].Ticker = strings.ToUpper(strings.TrimSpace(validated[i].Ticker))
		if err := validated[i].Validate(); err != nil {
			return err
		}
		if seen[validated[i].Ticker] {
			return fmt.Errorf("duplicate ticker %s in watchlist", validated[i].Ticker)
		}
		seen[validated[i].Ticker] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	previous := r.entries
	r.entries = validated
	if err := r.persistLocked(); err != nil {
		r.entries = previous
		return err
	}
	return nil
}

func (r *watchlistRepository) Clear() error {
	return r.Replace(nil)
}

func (r *watchlistRepository) ToYAML() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := yaml.Marshal(entity.Watchlist{Entries: r.entries})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (r *watchlistRepository) persistLocked() error {
	data, err := yaml.Marshal(entity.Watchlist{Entries: r.entries})
	if err != nil {
		return err
	}

	tmp := r.filepath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write watchlist file: %w", err)
	}
	return os.Rename(tmp, r.filepath)
}
