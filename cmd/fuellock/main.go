// Command fuellock drives the fuel price lock core from the terminal:
// log in, inspect the current lock, list prices, and lock in the cheapest
// deal. It is a thin caller; all semantics live in internal/application.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	_ "golang.org/x/crypto/x509roots/fallback"

	"github.com/freyta/fuellock/internal/adapter/driven/directory"
	"github.com/freyta/fuellock/internal/adapter/driven/servosaver"
	"github.com/freyta/fuellock/internal/adapter/driven/seveneleven"
	sqliteadapter "github.com/freyta/fuellock/internal/adapter/driven/sqlite"
	"github.com/freyta/fuellock/internal/application"
	"github.com/freyta/fuellock/internal/config"
	"github.com/freyta/fuellock/internal/domain/model"
	"github.com/freyta/fuellock/internal/domain/port/driven"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

const usage = `usage: fuellock <command> [flags]

commands:
  login   -email <email> -password <password> [-device <id>]
  status             show the current fuel lock
  prices             list current aggregator prices
  lockin  [-fuel <type>]   lock in the cheapest price (automatic when no type given)
  stores             list the chain's stores
  logout             clear the session
`

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("no command given")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}

	dir, err := directory.New()
	if err != nil {
		return err
	}

	sessions := sqliteadapter.NewSessionRepo(db)
	accounts := seveneleven.NewClient(cfg.AccountBaseURL)
	prices := servosaver.NewClient(cfg.AggregatorTokenURL, cfg.PriceURL, cfg.AggregatorClientID, cfg.AggregatorClientSecret)

	tokens := application.NewTokenService(accounts, sessions)
	reconciler := application.NewReconciler(accounts, prices, dir, sessions, cfg.DisplayLocation)

	ctx := context.Background()
	sid := sessionID()

	switch args[0] {
	case "login":
		return cmdLogin(ctx, tokens, reconciler, sid, args[1:])
	case "status":
		return cmdStatus(ctx, tokens, reconciler, sid)
	case "prices":
		return cmdPrices(ctx, prices)
	case "lockin":
		return cmdLockIn(ctx, tokens, reconciler, sid, args[1:])
	case "stores":
		return cmdStores(ctx, tokens, accounts, sid)
	case "logout":
		return tokens.Logout(ctx, sid)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// sessionID names the single local session. The CLI has one user, so the
// session key only needs to be stable between invocations; FUELLOCK_SESSION
// allows parallel sessions against the same database.
func sessionID() string {
	if v := os.Getenv("FUELLOCK_SESSION"); v != "" {
		return v
	}
	return "local"
}

func cmdLogin(ctx context.Context, tokens *application.TokenService, reconciler *application.Reconciler, sessionID string, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	device := fs.String("device", "", "device id (generated when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("login requires -email and -password")
	}

	cred, err := tokens.Login(ctx, sessionID, *email, *password, *device)
	if err != nil {
		return err
	}

	view, err := reconciler.RefreshView(ctx, sessionID, cred)
	if err != nil {
		return err
	}
	printView(view)
	return nil
}

func cmdStatus(ctx context.Context, tokens *application.TokenService, reconciler *application.Reconciler, sessionID string) error {
	cred, err := tokens.EnsureFresh(ctx, sessionID)
	if err != nil {
		return err
	}

	view, err := reconciler.RefreshView(ctx, sessionID, cred)
	if err != nil {
		return err
	}
	printView(view)
	return nil
}

func cmdPrices(ctx context.Context, prices driven.PriceFeed) error {
	quotes, err := prices.FetchCurrentPrices(ctx)
	if err != nil {
		return err
	}
	for _, q := range quotes {
		fmt.Printf("%-8s %7.1f c/L  postcode %s\n", q.FuelType, q.Price, q.Postcode)
	}
	return nil
}

func cmdLockIn(ctx context.Context, tokens *application.TokenService, reconciler *application.Reconciler, sessionID string, args []string) error {
	fs := flag.NewFlagSet("lockin", flag.ContinueOnError)
	fuel := fs.String("fuel", model.FuelTypeAutomatic, "fuel type code (omit for the cheapest overall)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cred, err := tokens.EnsureFresh(ctx, sessionID)
	if err != nil {
		return err
	}

	_, view, err := reconciler.LockIn(ctx, sessionID, cred, *fuel)
	if err != nil {
		var rejected *driven.LockRejectedError
		if errors.As(err, &rejected) {
			fmt.Println(rejected.Message)
			return nil
		}
		return err
	}
	printView(view)
	return nil
}

func cmdStores(ctx context.Context, tokens *application.TokenService, accounts driven.AccountGateway, sessionID string) error {
	cred, err := tokens.EnsureFresh(ctx, sessionID)
	if err != nil {
		return err
	}

	stores, err := accounts.FetchStores(ctx, cred)
	if err != nil {
		return err
	}
	for _, s := range stores {
		fmt.Printf("%s  (%.4f, %.4f)\n", s.Postcode, s.Latitude, s.Longitude)
	}
	return nil
}

func printView(view model.SessionLockView) {
	if view.Empty() {
		fmt.Println("No fuel lock.")
		return
	}

	label := "unknown"
	for _, slot := range view.ActiveFlags {
		if slot != "" {
			label = slot
		}
	}

	fmt.Printf("Lock %s: %s\n", view.LockID, label)
	fmt.Printf("  %s at %s c/L for %s L\n", view.FuelGrade, view.CentsPerLitre, view.TotalLitres)
	if view.Expiry != "" {
		fmt.Printf("  expires %s\n", view.Expiry)
	}
	if view.Redeemed != "" {
		fmt.Printf("  redeemed %s\n", view.Redeemed)
	}
}
