package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"expensio/internal/auth"
	"expensio/internal/core"
	apphttp "expensio/internal/http"
	"expensio/internal/log"
	"expensio/internal/services"
	"expensio/internal/storage"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()

	repo := storage.NewJSONStore(filepath.Join(t.TempDir(), "data.json"))
	t.Cleanup(func() { repo.Close() })

	logger := log.New(log.Config{Component: "test"})
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	authSvc := auth.NewService(repo, tokens, bcrypt.MinCost, logger)
	txnSvc := services.NewTransactionService(repo, nil, logger)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:                  ":0",
		AuthRequestsPerMinute: 1000,
	}, authSvc, txnSvc, tokens, logger)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func newLoggedInClient(t *testing.T, ts *httptest.Server) *Client {
	t.Helper()
	c := New(ts.URL)
	if _, err := c.Register(context.Background(), "a@example.com", "hunter22"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return c
}

func input(title string, amount float64, category, date string) TransactionInput {
	d, _ := core.ParseDate(date)
	return TransactionInput{Title: title, Amount: amount, Category: category, Date: d}
}

func TestClientAuthFlow(t *testing.T) {
	ts := newTestAPI(t)
	ctx := context.Background()

	c := New(ts.URL)
	user, err := c.Register(ctx, "a@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "a@example.com" || c.Token() == "" {
		t.Errorf("user = %+v, token = %q", user, c.Token())
	}

	me, err := c.Me(ctx)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if me.ID != user.ID {
		t.Errorf("Me = %+v, want id %s", me, user.ID)
	}

	// Fresh client, same account
	c2 := New(ts.URL)
	if _, err := c2.Login(ctx, "a@example.com", "hunter22"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Wrong password surfaces the server's message and status
	c3 := New(ts.URL)
	_, err = c3.Login(ctx, "a@example.com", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Login error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Message != "Invalid email or password" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestClientValidationErrors(t *testing.T) {
	ts := newTestAPI(t)
	c := newLoggedInClient(t, ts)

	_, err := c.CreateTransaction(context.Background(), TransactionInput{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("CreateTransaction error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest || len(apiErr.Fields) == 0 {
		t.Errorf("APIError = %+v, want 400 with field errors", apiErr)
	}
}

func TestClientTransactionCRUD(t *testing.T) {
	ts := newTestAPI(t)
	c := newLoggedInClient(t, ts)
	ctx := context.Background()

	created, err := c.CreateTransaction(ctx, input("Groceries", 42.5, "Food", "2026-02-15"))
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if created.ID == "" || created.Amount != 42.5 {
		t.Errorf("created = %+v", created)
	}

	got, err := c.Transaction(ctx, created.ID)
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}
	if got.Title != "Groceries" {
		t.Errorf("got = %+v", got)
	}

	updated, err := c.UpdateTransaction(ctx, created.ID, input("Market run", 25, "Household", "2026-02-16"))
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if updated.Title != "Market run" || updated.Category != "Household" {
		t.Errorf("updated = %+v", updated)
	}

	if err := c.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}

	_, err = c.Transaction(ctx, created.ID)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Errorf("Transaction after delete = %v, want 404 APIError", err)
	}
}

func TestClientPagination(t *testing.T) {
	ts := newTestAPI(t)
	c := newLoggedInClient(t, ts)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if _, err := c.CreateTransaction(ctx, input("t", 10, "Food", "2026-03-01")); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	page, err := c.Transactions(ctx, 2, 0)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(page.Transactions) != 2 || page.Total != 3 || !page.HasMore {
		t.Errorf("page = %d items, total %d, hasMore %v", len(page.Transactions), page.Total, page.HasMore)
	}

	all, err := c.AllTransactions(ctx)
	if err != nil {
		t.Fatalf("AllTransactions: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("AllTransactions = %d items, want 3", len(all))
	}
}

func TestSessionPersistsToken(t *testing.T) {
	ts := newTestAPI(t)
	ctx := context.Background()
	tokenPath := filepath.Join(t.TempDir(), "token")

	first := NewSession(New(ts.URL), tokenPath)
	if _, err := first.Register(ctx, "a@example.com", "hunter22"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := os.Stat(tokenPath); err != nil {
		t.Fatalf("token file not written: %v", err)
	}

	// A new process picks the session back up
	second := NewSession(New(ts.URL), tokenPath)
	if err := second.Restore(ctx); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if second.User() == nil || second.User().Email != "a@example.com" {
		t.Errorf("restored user = %+v", second.User())
	}

	if err := second.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Errorf("token file still present after logout")
	}
}

func TestSessionDiscardsRejectedToken(t *testing.T) {
	ts := newTestAPI(t)
	tokenPath := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(tokenPath, []byte("stale-garbage"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	session := NewSession(New(ts.URL), tokenPath)
	if err := session.Restore(context.Background()); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if session.User() != nil {
		t.Errorf("user = %+v, want nil", session.User())
	}
	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Errorf("rejected token file not removed")
	}
}

func TestTransactionCache(t *testing.T) {
	ts := newTestAPI(t)
	c := newLoggedInClient(t, ts)
	ctx := context.Background()
	cache := NewTransactionCache(c)

	if _, err := c.CreateTransaction(ctx, input("Rent", 900, "Housing", "2026-03-01")); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if err := cache.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !cache.Loaded() || len(cache.Items()) != 1 {
		t.Fatalf("cache after refresh: loaded %v, %d items", cache.Loaded(), len(cache.Items()))
	}

	t.Run("create prepends", func(t *testing.T) {
		created, err := cache.Create(ctx, input("Coffee", 4.5, "Food", "2026-02-01"))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		items := cache.Items()
		if items[0].ID != created.ID {
			t.Errorf("items[0] = %s, want the new transaction first", items[0].ID)
		}
	})

	t.Run("update replaces in place", func(t *testing.T) {
		items := cache.Items()
		target := items[1]

		if _, err := cache.Update(ctx, target.ID, input("Rent (march)", 900, "Housing", "2026-03-01")); err != nil {
			t.Fatalf("Update: %v", err)
		}
		after := cache.Items()
		if after[1].ID != target.ID || after[1].Title != "Rent (march)" {
			t.Errorf("items[1] = %+v, want same position with new title", after[1])
		}
	})

	t.Run("delete removes", func(t *testing.T) {
		items := cache.Items()
		if err := cache.Delete(ctx, items[0].ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		for _, item := range cache.Items() {
			if item.ID == items[0].ID {
				t.Errorf("deleted transaction still cached")
			}
		}
	})

	t.Run("summary and explore derive from cache", func(t *testing.T) {
		summary := cache.Summary()
		if summary.Total.Cents != 90000 {
			t.Errorf("Total = %d cents, want 90000", summary.Total.Cents)
		}

		page, hasMore := cache.Explore(core.Filter{Category: "Housing"}, 1)
		if len(page) != 1 || hasMore {
			t.Errorf("Explore = %d items, hasMore %v", len(page), hasMore)
		}
	})
}
