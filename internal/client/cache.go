package client

import (
	"context"
	"sync"

	"expensio/internal/core"
)

// TransactionCache keeps the full transaction list in memory and applies
// mutations locally so the dashboard and explorer never refetch after a
// create, update, or delete.
type TransactionCache struct {
	client *Client

	mu         sync.Mutex
	items      []core.Transaction
	loaded     bool
	refreshing bool
}

func NewTransactionCache(client *Client) *TransactionCache {
	return &TransactionCache{client: client}
}

// Loaded reports whether the cache holds a fetched list
func (c *TransactionCache) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Refresh fetches the full list from the server. A refresh that starts while
// another is in flight returns immediately and keeps the current items.
func (c *TransactionCache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.refreshing {
		c.mu.Unlock()
		return nil
	}
	c.refreshing = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.refreshing = false
		c.mu.Unlock()
	}()

	wire, err := c.client.AllTransactions(ctx)
	if err != nil {
		return err
	}

	items := make([]core.Transaction, 0, len(wire))
	for _, t := range wire {
		items = append(items, t.Domain())
	}

	c.mu.Lock()
	c.items = items
	c.loaded = true
	c.mu.Unlock()
	return nil
}

// Create stores a transaction on the server and prepends it locally.
func (c *TransactionCache) Create(ctx context.Context, input TransactionInput) (core.Transaction, error) {
	wire, err := c.client.CreateTransaction(ctx, input)
	if err != nil {
		return core.Transaction{}, err
	}

	txn := wire.Domain()
	c.mu.Lock()
	c.items = append([]core.Transaction{txn}, c.items...)
	c.mu.Unlock()
	return txn, nil
}

// Update replaces a transaction on the server and in place locally.
func (c *TransactionCache) Update(ctx context.Context, id string, input TransactionInput) (core.Transaction, error) {
	wire, err := c.client.UpdateTransaction(ctx, id, input)
	if err != nil {
		return core.Transaction{}, err
	}

	txn := wire.Domain()
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i] = txn
			break
		}
	}
	c.mu.Unlock()
	return txn, nil
}

// Delete removes a transaction from the server and locally.
func (c *TransactionCache) Delete(ctx context.Context, id string) error {
	if err := c.client.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	return nil
}

// Items returns a copy of the cached list
func (c *TransactionCache) Items() []core.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]core.Transaction, len(c.items))
	copy(out, c.items)
	return out
}

// Summary computes the dashboard summary from the cached list
func (c *TransactionCache) Summary() core.Summary {
	return core.Summarize(c.Items())
}

// Explore applies the filter to the cached list and returns everything up to
// page n, the load-more contract of the explorer view.
func (c *TransactionCache) Explore(filter core.Filter, page int) ([]core.Transaction, bool) {
	if page < 1 {
		page = 1
	}
	return core.Page(filter.Apply(c.Items()), page*core.PageSize)
}
