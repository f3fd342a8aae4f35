package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	zeropapel "github.com/zeropapel/zeropapel-go"
	"github.com/zeropapel/zeropapel-go/documents"
	"github.com/zeropapel/zeropapel-go/googleauth"
	"github.com/zeropapel/zeropapel-go/internal/config"
	"github.com/zeropapel/zeropapel-go/session"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("signctl failed")
	}
}

func run(args []string) error {
	_ = godotenv.Load()

	cfg := config.New()
	setupLogging(cfg.GetLogLevel())

	if len(args) == 0 {
		displayAppname(cfg.GetAppName())
		usage()
		return fmt.Errorf("missing command")
	}

	client, err := zeropapel.New()
	if err != nil {
		return err
	}

	// Trace session transitions while the command runs.
	cancelSub := client.Session.Subscribe(func(snap session.Snapshot) {
		log.Debug().Stringer("status", snap.Status).Bool("logged_in", snap.LoggedIn).Msg("session changed")
	})
	defer cancelSub()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "login":
		return cmdLogin(ctx, client, cfg, args[1:])
	case "register":
		return cmdRegister(ctx, client, args[1:])
	case "logout":
		return cmdLogout(ctx, client)
	case "whoami":
		return cmdWhoami(ctx, client)
	case "docs":
		return cmdDocs(ctx, client, args[1:])
	case "stats":
		return cmdStats(ctx, client, args[1:])
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func cmdLogin(ctx context.Context, client *zeropapel.Client, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	google := fs.Bool("google", false, "sign in with Google")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var result session.Result
	if *google {
		idToken, err := googleIDToken(ctx, cfg)
		if err != nil {
			return err
		}
		result = client.Session.LoginWithGoogle(ctx, idToken)
	} else {
		if *email == "" || *password == "" {
			return fmt.Errorf("login requires -email and -password (or -google)")
		}
		result = client.Session.Login(ctx, *email, *password)
	}

	if !result.OK {
		return fmt.Errorf("login failed: %s", result.Message)
	}
	fmt.Printf("Logged in as %s\n", result.User.Email)
	return nil
}

func cmdRegister(ctx context.Context, client *zeropapel.Client, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("register requires -email and -password")
	}

	result := client.Session.Register(ctx, *email, *password)
	if !result.OK {
		return fmt.Errorf("registration failed: %s", result.Message)
	}
	fmt.Printf("Registered as %s\n", result.User.Email)
	return nil
}

func cmdLogout(ctx context.Context, client *zeropapel.Client) error {
	client.Session.Logout(ctx)
	fmt.Println("Logged out")
	return nil
}

func cmdWhoami(ctx context.Context, client *zeropapel.Client) error {
	snap := client.Session.Resolve(ctx)
	if !snap.LoggedIn {
		fmt.Println("Not logged in")
		return nil
	}
	fmt.Printf("%s (admin: %v, free documents signed: %d)\n",
		snap.User.Email, snap.User.IsAdmin, snap.User.FreeDocumentsSigned)
	return nil
}

func cmdDocs(ctx context.Context, client *zeropapel.Client, args []string) error {
	fs := flag.NewFlagSet("docs", flag.ContinueOnError)
	page := fs.Int("page", 1, "page number")
	perPage := fs.Int("per-page", 10, "documents per page")
	status := fs.String("status", "", "filter by status")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list, err := client.Documents.List(ctx, documents.ListParams{
		Page:    *page,
		PerPage: *perPage,
		Status:  *status,
	})
	if err != nil {
		return err
	}

	for _, doc := range list.Documents {
		fmt.Printf("%6d  %-10s  %s\n", doc.ID, doc.Status, doc.Filename)
	}
	fmt.Printf("page %d of %d (%d total)\n", list.CurrentPage, list.Pages, list.Total)
	return nil
}

func cmdStats(ctx context.Context, client *zeropapel.Client, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	days := fs.Int("days", 30, "trailing window in days")
	if err := fs.Parse(args); err != nil {
		return err
	}

	stats, err := client.Audit.Stats(ctx, *days)
	if err != nil {
		return err
	}

	fmt.Printf("Last %d days: %d documents (%d uploaded, %d signed), %d signature requests (%d completed)\n",
		stats.PeriodDays, stats.TotalDocuments, stats.DocumentsUploaded, stats.DocumentsSigned,
		stats.SignatureRequestsSent, stats.SignatureRequestsCompleted)
	return nil
}

// googleIDToken walks the user through the browser consent hop and
// returns a verified Google identity token.
func googleIDToken(ctx context.Context, cfg config.Config) (string, error) {
	exchanger, err := googleauth.New(ctx, cfg.GetGoogleClientID(), cfg.GetGoogleClientSecret(), cfg.GetGoogleRedirectURL())
	if err != nil {
		return "", err
	}

	fmt.Printf("Visit the following URL, then paste the code parameter from the redirect:\n\n  %s\n\ncode: ",
		exchanger.AuthCodeURL("signctl"))

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read authorization code: %w", err)
	}

	return exchanger.Exchange(ctx, strings.TrimSpace(code))
}

func setupLogging(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func usage() {
	fmt.Println(`usage: signctl <command> [flags]

commands:
  login     -email -password | -google
  register  -email -password
  logout
  whoami
  docs      -page -per-page -status
  stats     -days`)
}
