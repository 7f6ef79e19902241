package client

import (
	"context"
	"fmt"
	"sync"

	"prcontacts-backend/models"
	"prcontacts-backend/utils/logger"
)

// Filter is the set of listing constraints a ContactLister remembers between pages
type Filter struct {
	Search string
	// Tags are sent comma-joined, so a tag containing a comma matches as two tags
	Tags         []string
	Organization string
	Sort         string
}

func (f Filter) clone() Filter {
	f.Tags = append([]string(nil), f.Tags...)
	return f
}

// State of a ContactLister
type State string

const (
	StateIdle             State = "idle"
	StateLoadingFirstPage State = "loading-first-page"
	StateLoadingNextPage  State = "loading-next-page"
	StateRefreshing       State = "refreshing"
)

// ContactLister accumulates successive pages of contacts into one list.
//
// Load and Refresh replace the list with page 1. LoadMore appends the next
// page and is ignored unless the lister is idle and the server reported a
// next page. Every replace starts a new generation; a response belonging to
// an older generation is dropped, so a refresh racing a load-more always wins.
type ContactLister struct {
	fetcher PageFetcher
	limit   int
	logger  logger.Logger

	mu         sync.Mutex
	state      State
	generation uint64
	filter     Filter
	items      []*models.Contact
	seen       map[string]struct{}
	last       *models.ContactPage
}

func NewContactLister(fetcher PageFetcher, limit int, log logger.Logger) *ContactLister {
	if limit <= 0 {
		limit = 10
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &ContactLister{
		fetcher: fetcher,
		limit:   limit,
		logger:  log,
		state:   StateIdle,
		seen:    map[string]struct{}{},
	}
}

// Load fetches page 1 for filter and replaces the list. Used on first display and on every filter change.
func (l *ContactLister) Load(ctx context.Context, filter Filter) error {
	return l.replace(ctx, StateLoadingFirstPage, filter.clone())
}

// Refresh refetches page 1 with the remembered filter and replaces the list
func (l *ContactLister) Refresh(ctx context.Context) error {
	l.mu.Lock()
	filter := l.filter.clone()
	l.mu.Unlock()
	return l.replace(ctx, StateRefreshing, filter)
}

func (l *ContactLister) replace(ctx context.Context, state State, filter Filter) error {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.state = state
	l.mu.Unlock()

	page, err := l.fetcher.FetchPage(ctx, filter, 1, l.limit)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		l.logger.Debugf("Dropping superseded page 1 response")
		return nil
	}
	l.state = StateIdle
	if err != nil {
		l.logger.Warnf("Failed to load contacts: %v", err)
		return fmt.Errorf("failed to load contacts: %w", err)
	}

	l.filter = filter
	l.items = l.items[:0:0]
	l.seen = map[string]struct{}{}
	l.appendDocs(page.Docs)
	l.last = page
	return nil
}

// LoadMore fetches the page after the last one loaded and appends it. It reports
// false without fetching when there is no next page or a request is in flight.
func (l *ContactLister) LoadMore(ctx context.Context) (bool, error) {
	l.mu.Lock()
	if l.state != StateIdle || l.last == nil || !l.last.HasNextPage {
		l.mu.Unlock()
		return false, nil
	}
	l.state = StateLoadingNextPage
	gen := l.generation
	next := l.last.Page + 1
	filter := l.filter.clone()
	l.mu.Unlock()

	page, err := l.fetcher.FetchPage(ctx, filter, next, l.limit)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		l.logger.Debugf("Dropping superseded page %d response", next)
		return false, nil
	}
	l.state = StateIdle
	if err != nil {
		l.logger.Warnf("Failed to load contacts page %d: %v", next, err)
		return false, fmt.Errorf("failed to load contacts page %d: %w", next, err)
	}

	l.appendDocs(page.Docs)
	l.last = page
	return true, nil
}

// appendDocs skips contacts already in the list, which happens when records
// are inserted between page requests
func (l *ContactLister) appendDocs(docs []*models.Contact) {
	for _, c := range docs {
		if _, dup := l.seen[c.ID]; dup {
			continue
		}
		l.seen[c.ID] = struct{}{}
		l.items = append(l.items, c)
	}
}

// Items returns a copy of the accumulated list
func (l *ContactLister) Items() []*models.Contact {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*models.Contact(nil), l.items...)
}

func (l *ContactLister) HasMore() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last != nil && l.last.HasNextPage
}

func (l *ContactLister) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Page is the last page number loaded, 0 before the first load
func (l *ContactLister) Page() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.last == nil {
		return 0
	}
	return l.last.Page
}

func (l *ContactLister) TotalPages() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.last == nil {
		return 0
	}
	return l.last.TotalPages
}

func (l *ContactLister) TotalDocs() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.last == nil {
		return 0
	}
	return l.last.TotalDocs
}

// Filter returns the filter the current list was loaded with
func (l *ContactLister) Filter() Filter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter.clone()
}
