// Package notifications keeps a per-client, in-memory notification feed, newest first.
package notifications

import (
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/meaw-storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/meaw-storefront/pkg/errors"
	"github.com/google/uuid"
)

// Notification is one feed entry.
type Notification struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id,omitempty"`
	Type      enums.NotificationType `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]any         `json:"data,omitempty"`
	IsRead    bool                   `json:"is_read"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewNotification is the caller-supplied part of a notification.
type NewNotification struct {
	UserID  string
	Type    enums.NotificationType
	Title   string
	Message string
	Data    map[string]any
}

// ListParams filters List.
type ListParams struct {
	Limit      int
	UnreadOnly bool
}

// ListResult is a page of the feed plus the unread counter.
type ListResult struct {
	Items       []Notification `json:"items"`
	UnreadCount int            `json:"unread_count"`
}

// Feed defines notification operations.
type Feed interface {
	Add(input NewNotification) (Notification, error)
	List(params ListParams) ListResult
	MarkRead(id string) error
	MarkAllRead() int
	Remove(id string) error
	Clear()
	UnreadCount() int
}

// MaxEntries caps the feed; the oldest entries are dropped first.
const MaxEntries = 100

type feed struct {
	mu     sync.Mutex
	items  []Notification
	unread int
	now    func() time.Time
}

// NewFeed builds an empty feed. now may be nil.
func NewFeed(now func() time.Time) Feed {
	if now == nil {
		now = time.Now
	}
	return &feed{now: now}
}

func (f *feed) Add(input NewNotification) (Notification, error) {
	if !input.Type.IsValid() {
		return Notification{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification type").
			WithDetails(map[string]any{"type": string(input.Type)})
	}
	if strings.TrimSpace(input.Title) == "" {
		return Notification{}, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	n := Notification{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		Type:      input.Type,
		Title:     input.Title,
		Message:   input.Message,
		Data:      cloneData(input.Data),
		CreatedAt: f.now(),
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append([]Notification{n}, f.items...)
	f.unread++
	keep := min(len(f.items), MaxEntries)
	for _, dropped := range f.items[keep:] {
		if !dropped.IsRead {
			f.unread--
		}
	}
	f.items = f.items[:keep]
	return copyNotification(n), nil
}

func (f *feed) List(params ListParams) ListResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := make([]Notification, 0, len(f.items))
	for _, n := range f.items {
		if params.UnreadOnly && n.IsRead {
			continue
		}
		items = append(items, copyNotification(n))
		if params.Limit > 0 && len(items) == params.Limit {
			break
		}
	}
	return ListResult{Items: items, UnreadCount: f.unread}
}

// MarkRead flags one entry as read. Marking an already-read entry changes nothing.
func (f *feed) MarkRead(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.indexLocked(id)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	if !f.items[idx].IsRead {
		f.items[idx].IsRead = true
		f.unread = max(0, f.unread-1)
	}
	return nil
}

// MarkAllRead flags every entry as read and returns how many changed.
func (f *feed) MarkAllRead() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	changed := 0
	for i := range f.items {
		if !f.items[i].IsRead {
			f.items[i].IsRead = true
			changed++
		}
	}
	f.unread = 0
	return changed
}

func (f *feed) Remove(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.indexLocked(id)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	if !f.items[idx].IsRead {
		f.unread = max(0, f.unread-1)
	}
	f.items = append(f.items[:idx], f.items[idx+1:]...)
	return nil
}

func (f *feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = nil
	f.unread = 0
}

func (f *feed) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unread
}

func (f *feed) indexLocked(id string) int {
	for i, n := range f.items {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func copyNotification(n Notification) Notification {
	n.Data = cloneData(n.Data)
	return n
}

func cloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
