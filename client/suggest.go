package client

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/estatery/listings/internal/listing"
)

// BlurGraceDelay is how long the box stays visible after blur so a click on
// a suggestion can land before the list hides.
const BlurGraceDelay = 150 * time.Millisecond

// minSuggestionQuery mirrors the server-side minimum.
const minSuggestionQuery = 2

// SuggestionFetcher fetches suggestions for a partial query.
type SuggestionFetcher func(ctx context.Context, q string, limit int) ([]listing.Suggestion, error)

// SuggestionBox tracks search-box suggestion state: it fetches on input,
// discards responses that arrive after a newer keystroke, only shows results
// while the field has focus, and hides on blur after a short grace delay.
type SuggestionBox struct {
	mu sync.Mutex

	fetch SuggestionFetcher
	limit int

	query   string
	focused bool
	visible bool
	items   []listing.Suggestion

	reqSeq    uint64
	blurTimer *time.Timer

	onUpdate func([]listing.Suggestion, bool)
}

// NewSuggestionBox builds a suggestion box. onUpdate receives the current
// suggestion list and whether the box should be shown.
func NewSuggestionBox(fetch SuggestionFetcher, limit int, onUpdate func([]listing.Suggestion, bool)) *SuggestionBox {
	if limit <= 0 {
		limit = 10
	}
	return &SuggestionBox{fetch: fetch, limit: limit, onUpdate: onUpdate}
}

// Input records a keystroke and fetches suggestions when the query is long
// enough. A response for an outdated query is discarded.
func (sb *SuggestionBox) Input(ctx context.Context, q string) {
	sb.mu.Lock()
	sb.query = q
	sb.reqSeq++
	seq := sb.reqSeq

	if utf8.RuneCountInString(q) < minSuggestionQuery {
		sb.items = nil
		sb.visible = false
		sb.notifyLocked()
		sb.mu.Unlock()
		return
	}
	fetch := sb.fetch
	limit := sb.limit
	sb.mu.Unlock()

	go func() {
		items, err := fetch(ctx, q, limit)
		if err != nil {
			return
		}
		sb.mu.Lock()
		defer sb.mu.Unlock()
		if seq != sb.reqSeq {
			// A newer keystroke superseded this fetch.
			return
		}
		sb.items = items
		sb.visible = sb.focused && len(items) > 0
		sb.notifyLocked()
	}()
}

// Focus marks the field focused and re-shows any current suggestions.
func (sb *SuggestionBox) Focus() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if sb.blurTimer != nil {
		sb.blurTimer.Stop()
		sb.blurTimer = nil
	}
	sb.focused = true
	sb.visible = len(sb.items) > 0 && utf8.RuneCountInString(sb.query) >= minSuggestionQuery
	sb.notifyLocked()
}

// Blur hides the box after the grace delay. The delay leaves a window for a
// click on a suggestion to register before the list disappears.
func (sb *SuggestionBox) Blur() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.focused = false
	if sb.blurTimer != nil {
		sb.blurTimer.Stop()
	}
	sb.blurTimer = time.AfterFunc(BlurGraceDelay, func() {
		sb.mu.Lock()
		defer sb.mu.Unlock()
		if sb.focused {
			// Refocused during the grace window.
			return
		}
		sb.visible = false
		sb.notifyLocked()
	})
}

// Select resolves a click on a suggestion: returns its value, clears the
// list and hides the box.
func (sb *SuggestionBox) Select(s listing.Suggestion) string {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.query = s.Value
	sb.items = nil
	sb.visible = false
	sb.reqSeq++ // in-flight fetches for the old query are stale now
	sb.notifyLocked()
	return s.Value
}

// Clear empties the field and hides the box.
func (sb *SuggestionBox) Clear() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.query = ""
	sb.items = nil
	sb.visible = false
	sb.reqSeq++
	sb.notifyLocked()
}

// Visible reports whether the box is currently shown.
func (sb *SuggestionBox) Visible() bool {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.visible
}

// Items returns the current suggestion list.
func (sb *SuggestionBox) Items() []listing.Suggestion {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	out := make([]listing.Suggestion, len(sb.items))
	copy(out, sb.items)
	return out
}

func (sb *SuggestionBox) notifyLocked() {
	if sb.onUpdate != nil {
		items := make([]listing.Suggestion, len(sb.items))
		copy(items, sb.items)
		sb.onUpdate(items, sb.visible)
	}
}
