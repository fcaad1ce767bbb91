package orders

import (
	"context"
	"delivery-tracking-client/models"
	"go.uber.org/zap"
	"sync"
)

// FetchFunc loads one server page for the tab this controller owns.
type FetchFunc func(ctx context.Context, page, limit int) (models.Page, error)

// ListController holds the page-based list state for one tab (pool,
// mine-in-transit, mine-delivered, staff-assigned). Tabs keep separate
// controllers; switching tabs never clears another tab's cache.
type ListController struct {
	fetch  FetchFunc
	limit  int
	logger *zap.Logger

	mu          sync.Mutex
	items       []models.Order
	page        int // next page to request, 1-based
	count       int
	loading     bool
	loadingMore bool
	generation  uint64
	lastErr     string
}

func NewListController(fetch FetchFunc, limit int, logger *zap.Logger) *ListController {
	return &ListController{
		fetch:  fetch,
		limit:  limit,
		logger: logger,
		page:   1,
	}
}

// Load fetches the next slice of the list. With reset it fetches page 1
// and replaces items; otherwise it appends the stored next page. An append
// while any fetch is in flight returns immediately without fetching; the
// busy flags exist so the caller can disable the trigger. A reset may
// overtake an in-flight append (a new search while scrolling); the
// overtaken response arrives under an older generation and is discarded.
func (c *ListController) Load(ctx context.Context, reset bool) error {
	c.mu.Lock()
	var page int
	if reset {
		if c.loading {
			c.mu.Unlock()
			return nil
		}
		page = 1
		c.loading = true
		c.loadingMore = false
		c.generation++
	} else {
		if c.loading || c.loadingMore {
			c.mu.Unlock()
			return nil
		}
		page = c.page
		c.loadingMore = true
	}
	gen := c.generation
	c.mu.Unlock()

	result, err := c.fetch(ctx, page, c.limit)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		// A newer reset superseded this request; its flags are not ours to
		// touch and its data is stale.
		return nil
	}

	c.loading = false
	c.loadingMore = false

	if err != nil {
		c.lastErr = err.Error()
		c.logger.Warn("List load failed", zap.Int("page", page), zap.Error(err))
		return err
	}

	if reset {
		c.items = result.Orders
		c.page = 2
	} else {
		c.items = append(c.items, result.Orders...)
		c.page++
	}

	if result.Count > 0 {
		c.count = result.Count
	} else if reset {
		c.count = len(result.Orders)
	}
	if c.count < len(c.items) {
		c.count = len(c.items)
	}
	c.lastErr = ""
	return nil
}

// Items returns a copy of the loaded orders.
func (c *ListController) Items() []models.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Order, len(c.items))
	copy(out, c.items)
	return out
}

// Filter applies the driver search query over the currently loaded items
// only. It does not request further pages, so a partially loaded list
// under-reports matches until more pages arrive.
func (c *ListController) Filter(q string) []models.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Order, 0, len(c.items))
	for i := range c.items {
		if c.items[i].MatchesQuery(q) {
			out = append(out, c.items[i])
		}
	}
	return out
}

func (c *ListController) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *ListController) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) < c.count
}

func (c *ListController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *ListController) LoadingMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadingMore
}

// Err returns the last load failure as user-facing text, "" after any
// successful load.
func (c *ListController) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
