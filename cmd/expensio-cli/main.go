package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"expensio/internal/cli"
	"expensio/internal/client"
	"expensio/internal/core"
)

const usageText = `Usage: expensio-cli <command> [flags]

Commands:
  register   -email -password     create an account and log in
  login      -email -password     log in
  logout                          forget the saved session
  me                              show the logged-in user
  dashboard                       spending total, categories, recent activity
  list       [-search -category -from -to -page]
  get        -id                  show one transaction
  add        -title -amount -category -date [-notes]
  edit       -id [-title -amount -category -date -notes]
  delete     -id
`

func main() {
	cli.LoadEnvFile()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	app, err := newApp()
	if err != nil {
		fatal(err)
	}

	if err := app.run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

type app struct {
	client  *client.Client
	session *client.Session
	cache   *client.TransactionCache
}

func newApp() (*app, error) {
	baseURL := os.Getenv("EXPENSIO_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	tokenPath := os.Getenv("EXPENSIO_TOKEN_FILE")
	if tokenPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		tokenPath = filepath.Join(home, ".expensio", "token")
	}

	c := client.New(baseURL)
	return &app{
		client:  c,
		session: client.NewSession(c, tokenPath),
		cache:   client.NewTransactionCache(c),
	}, nil
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.session.Logout()
	case "me":
		return a.me(ctx)
	case "dashboard":
		return a.dashboard(ctx)
	case "list":
		return a.list(ctx, args)
	case "get":
		return a.get(ctx, args)
	case "add":
		return a.add(ctx, args)
	case "edit":
		return a.edit(ctx, args)
	case "delete":
		return a.delete(ctx, args)
	case "help", "-h", "--help":
		fmt.Print(usageText)
		return nil
	default:
		fmt.Fprint(os.Stderr, usageText)
		return fmt.Errorf("unknown command %q", command)
	}
}

// restore loads the saved session and fails when nobody is logged in.
func (a *app) restore(ctx context.Context) error {
	if err := a.session.Restore(ctx); err != nil {
		return err
	}
	if a.session.User() == nil {
		return fmt.Errorf("not logged in, run 'expensio-cli login' first")
	}
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)

	user, err := a.session.Register(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("Registered and logged in as %s\n", user.Email)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)

	user, err := a.session.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", user.Email)
	return nil
}

func (a *app) me(ctx context.Context) error {
	if err := a.restore(ctx); err != nil {
		return err
	}
	user := a.session.User()
	fmt.Printf("%s (%s)\n", user.Email, user.ID)
	return nil
}

func (a *app) dashboard(ctx context.Context) error {
	if err := a.restore(ctx); err != nil {
		return err
	}
	if err := a.cache.Refresh(ctx); err != nil {
		return err
	}

	summary := a.cache.Summary()
	fmt.Printf("Total spent: %s\n\n", formatAmount(summary.Total))

	if len(summary.ByCategory) > 0 {
		fmt.Println("By category:")
		for _, row := range summary.ByCategory {
			fmt.Print(formatCategoryRow(row))
		}
		fmt.Println()
	}

	if len(summary.Recent) > 0 {
		fmt.Println("Recent activity:")
		for _, t := range summary.Recent {
			printTransactionRow(t)
		}
	}
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	search := fs.String("search", "", "substring match on title and notes")
	category := fs.String("category", "", "category filter")
	from := fs.String("from", "", "start date (YYYY-MM-DD, inclusive)")
	to := fs.String("to", "", "end date (YYYY-MM-DD, inclusive)")
	page := fs.Int("page", 1, "page number")
	_ = fs.Parse(args)

	if err := a.restore(ctx); err != nil {
		return err
	}
	if err := a.cache.Refresh(ctx); err != nil {
		return err
	}

	filter := core.Filter{Search: *search, Category: *category}
	if *from != "" {
		d, err := core.ParseDate(*from)
		if err != nil {
			return fmt.Errorf("invalid -from date: %w", err)
		}
		filter.From = d
	}
	if *to != "" {
		d, err := core.ParseDate(*to)
		if err != nil {
			return fmt.Errorf("invalid -to date: %w", err)
		}
		filter.To = d
	}

	items, hasMore := a.cache.Explore(filter, *page)
	if len(items) == 0 {
		fmt.Println("No transactions found.")
		return nil
	}

	for _, t := range items {
		printTransactionRow(t)
	}
	if hasMore {
		fmt.Printf("\nMore results available, use -page %d\n", *page+1)
	}
	return nil
}

func (a *app) get(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	id := fs.String("id", "", "transaction id")
	_ = fs.Parse(args)

	if err := a.restore(ctx); err != nil {
		return err
	}

	txn, err := a.client.Transaction(ctx, *id)
	if err != nil {
		return err
	}

	t := txn.Domain()
	fmt.Printf("ID:       %s\n", t.ID)
	fmt.Printf("Title:    %s\n", t.Title)
	fmt.Printf("Amount:   %s\n", formatAmount(t.Amount))
	fmt.Printf("Category: %s\n", t.Category)
	fmt.Printf("Date:     %s\n", t.Date)
	if t.Notes != "" {
		fmt.Printf("Notes:    %s\n", t.Notes)
	}
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	title := fs.String("title", "", "transaction title")
	amount := fs.String("amount", "", "amount, e.g. 12.50")
	category := fs.String("category", "", "category")
	date := fs.String("date", "", "date (YYYY-MM-DD)")
	notes := fs.String("notes", "", "optional notes")
	_ = fs.Parse(args)

	if err := a.restore(ctx); err != nil {
		return err
	}

	input, err := buildInput(*title, *amount, *category, *date, *notes)
	if err != nil {
		return err
	}

	txn, err := a.cache.Create(ctx, input)
	if err != nil {
		return err
	}
	fmt.Printf("Created %s\n", txn.ID)
	return nil
}

func (a *app) edit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	id := fs.String("id", "", "transaction id")
	title := fs.String("title", "", "transaction title")
	amount := fs.String("amount", "", "amount, e.g. 12.50")
	category := fs.String("category", "", "category")
	date := fs.String("date", "", "date (YYYY-MM-DD)")
	notes := fs.String("notes", "", "optional notes")
	_ = fs.Parse(args)

	if err := a.restore(ctx); err != nil {
		return err
	}

	// Start from the stored record so unspecified flags keep their values
	current, err := a.client.Transaction(ctx, *id)
	if err != nil {
		return err
	}

	if *title == "" {
		*title = current.Title
	}
	if *amount == "" {
		*amount = strconv.FormatFloat(current.Amount, 'f', 2, 64)
	}
	if *category == "" {
		*category = current.Category
	}
	if *date == "" {
		*date = current.Date.String()
	}
	if !flagProvided(fs, "notes") {
		*notes = current.Notes
	}

	input, err := buildInput(*title, *amount, *category, *date, *notes)
	if err != nil {
		return err
	}

	txn, err := a.cache.Update(ctx, *id, input)
	if err != nil {
		return err
	}
	fmt.Printf("Updated %s\n", txn.ID)
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "transaction id")
	_ = fs.Parse(args)

	if err := a.restore(ctx); err != nil {
		return err
	}

	if err := a.cache.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", *id)
	return nil
}

func buildInput(title, amount, category, date, notes string) (client.TransactionInput, error) {
	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		return client.TransactionInput{}, fmt.Errorf("invalid -amount: %w", err)
	}

	parsed, err := core.ParseDate(date)
	if err != nil {
		return client.TransactionInput{}, fmt.Errorf("invalid -date: %w", err)
	}

	return client.TransactionInput{
		Title:    strings.TrimSpace(title),
		Amount:   core.Money{Cents: cents}.Float(),
		Category: strings.TrimSpace(category),
		Date:     parsed,
		Notes:    strings.TrimSpace(notes),
	}, nil
}

func flagProvided(fs *flag.FlagSet, name string) bool {
	provided := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			provided = true
		}
	})
	return provided
}

// formatCategoryRow renders one dashboard category line. Share is already a
// percentage, 0-100.
func formatCategoryRow(row core.CategorySum) string {
	return fmt.Sprintf("  %-20s %10s  %5.1f%%\n", row.Name, formatAmount(row.Amount), row.Share)
}

func printTransactionRow(t core.Transaction) {
	fmt.Printf("  %s  %-30s %10s  %-12s %s\n",
		t.Date, truncate(t.Title, 30), formatAmount(t.Amount), t.Category, t.ID)
}

// truncate shortens s to at most n runes, ending with an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func formatAmount(m core.Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := fmt.Sprintf("$%d.%02d", cents/100, cents%100)
	if neg {
		return "-" + s
	}
	return s
}
