package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"

	"codeprep-cli/config"
	"codeprep-cli/internal/api"
	"codeprep-cli/internal/auth"
	"codeprep-cli/internal/chat"
	"codeprep-cli/internal/profile"
	"codeprep-cli/internal/resource"
	"codeprep-cli/internal/run"
	"codeprep-cli/internal/session"
	"codeprep-cli/internal/stub"
	"codeprep-cli/internal/submission"
)

const usage = `codeprep - terminal client for the CodePrep platform

Usage:
  codeprep login --email <email> --password <password>
  codeprep register --username <name> --email <email> --password <password>
  codeprep logout
  codeprep whoami
  codeprep profile <username> [--year <year>]
  codeprep follow <username> | unfollow <username>
  codeprep check-username <candidate>
  codeprep submissions <problemID>
  codeprep note <submissionID> <text...>
  codeprep chat <problemID> <message...>
  codeprep run <problemID> --lang <language> --file <path>

Flags:
`

type app struct {
	cfg         *config.Config
	log         *slog.Logger
	client      *api.Client
	sessions    *session.Store
	auth        *auth.Service
	profiles    profile.Service
	chats       chat.Service
	transcript  *chat.Transcript
	runner      run.Service
	submissions submission.Service
}

func main() {
	flags := pflag.NewFlagSet("codeprep", pflag.ExitOnError)
	email := flags.String("email", "", "account email")
	password := flags.String("password", "", "account password")
	username := flags.String("username", "", "account username (register)")
	year := flags.Int("year", 0, "heatmap year (defaults to current)")
	lang := flags.String("lang", "go", "language for code runs")
	file := flags.String("file", "", "source file for code runs")
	demo := flags.Bool("demo", false, "run against a built-in local API stub")
	verbose := flags.BoolP("verbose", "v", false, "debug logging")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	flags.Parse(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	level := parseLevel(cfg.LogLevel)
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	if *demo {
		baseURL, stop, err := startDemoServer()
		if err != nil {
			logger.Error("failed to start demo server", "error", err)
			os.Exit(1)
		}
		defer stop()
		cfg.APIBaseURL = baseURL
		logger.Info("demo mode", "api", baseURL, "login", "mira@example.com / correct-horse")
	}

	a := newApp(cfg, logger)
	if err := a.auth.LoadToken(); err != nil {
		logger.Warn("could not restore session", "error", err)
	}

	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	cmdArgs := args[1:]
	var cmdErr error
	switch args[0] {
	case "login":
		cmdErr = a.cmdLogin(ctx, *email, *password)
	case "register":
		cmdErr = a.cmdRegister(ctx, *username, *email, *password)
	case "logout":
		cmdErr = a.auth.Logout(ctx)
	case "whoami":
		cmdErr = a.cmdWhoami(ctx)
	case "profile":
		cmdErr = a.cmdProfile(ctx, cmdArgs, *year)
	case "follow", "unfollow":
		cmdErr = a.cmdFollow(ctx, args[0], cmdArgs)
	case "check-username":
		cmdErr = a.cmdCheckUsername(cmdArgs)
	case "submissions":
		cmdErr = a.cmdSubmissions(ctx, cmdArgs)
	case "note":
		cmdErr = a.cmdNote(ctx, cmdArgs)
	case "chat":
		cmdErr = a.cmdChat(ctx, cmdArgs)
	case "run":
		cmdErr = a.cmdRun(ctx, cmdArgs, *lang, *file)
	default:
		flags.Usage()
		os.Exit(2)
	}

	if cmdErr != nil {
		fmt.Fprintln(os.Stderr, "error:", api.Display(cmdErr))
		logger.Debug("command failed", "command", args[0], "error", cmdErr)
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, logger *slog.Logger) *app {
	client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)
	sessions := session.NewStore()
	transcript := chat.NewTranscript()
	return &app{
		cfg:         cfg,
		log:         logger,
		client:      client,
		sessions:    sessions,
		auth:        auth.NewService(client, sessions, cfg.TokenFile),
		profiles:    profile.NewService(client),
		chats:       chat.NewService(client, transcript),
		transcript:  transcript,
		runner:      run.NewService(client),
		submissions: submission.NewService(client),
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func startDemoServer() (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	srv := &http.Server{Handler: stub.New().Handler()}
	go srv.Serve(ln)
	stop := func() { srv.Close() }
	return "http://" + ln.Addr().String(), stop, nil
}

func (a *app) cmdLogin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("login requires --email and --password")
	}
	user, err := a.auth.Login(ctx, auth.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s (%s)\n", user.Username, user.Email)
	return nil
}

func (a *app) cmdRegister(ctx context.Context, username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return fmt.Errorf("register requires --username, --email and --password")
	}
	user, err := a.auth.Register(ctx, auth.RegisterInput{Username: username, Email: email, Password: password})
	if err != nil {
		return err
	}
	fmt.Printf("welcome, %s\n", user.Username)
	return nil
}

func (a *app) cmdWhoami(ctx context.Context) error {
	user, err := a.auth.Check(ctx)
	if err != nil {
		return err
	}
	claims, _ := auth.Peek(a.auth.Token())
	fmt.Printf("%s (%s)\n", user.Username, user.Email)
	if claims != nil && !claims.ExpiresAt.IsZero() {
		fmt.Printf("session expires %s\n", claims.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

// cmdProfile renders the profile page: header, stats card, heatmap card
// and recent submissions, each fetched and failing independently.
func (a *app) cmdProfile(ctx context.Context, args []string, year int) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: codeprep profile <username>")
	}
	username := args[0]
	if year == 0 {
		year = time.Now().Year()
	}
	if min, max := profile.YearBounds(time.Now()); year < min || year > max {
		return fmt.Errorf("year must be between %d and %d", min, max)
	}

	header := resource.NewFetcher(func(ctx context.Context, key string) (profile.Profile, error) {
		p, err := a.profiles.Profile(ctx, key)
		if err != nil {
			return profile.Profile{}, err
		}
		return *p, nil
	})
	stats := resource.NewFetcher(func(ctx context.Context, key string) (profile.ProblemStats, error) {
		s, err := a.profiles.ProblemStats(ctx, key)
		if err != nil {
			return profile.ProblemStats{}, err
		}
		return *s, nil
	})
	heat := resource.NewFetcher(func(ctx context.Context, key string) ([]profile.HeatmapEntry, error) {
		return a.profiles.Heatmap(ctx, key, year)
	})
	recent := resource.NewFetcher(func(ctx context.Context, key string) ([]submission.Submission, error) {
		return a.profiles.RecentSubmissions(ctx, key)
	})

	header.Load(ctx, username)
	stats.Load(ctx, username)
	heat.Load(ctx, username)
	recent.Load(ctx, username)

	renderProfileHeader(await(header), a.sessions.IsOwn(username))
	renderStatsCard(await(stats))
	renderHeatmapCard(await(heat), year)
	renderRecentCard(await(recent))
	return nil
}

func (a *app) cmdFollow(ctx context.Context, action string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: codeprep %s <username>", action)
	}
	owner := args[0]
	viewer, ok := a.sessions.Current()
	if !ok {
		if _, err := a.auth.Check(ctx); err != nil {
			return profile.ErrNotSignedIn
		}
		viewer, _ = a.sessions.Current()
	}

	following, err := a.profiles.FollowStatus(ctx, owner)
	if err != nil {
		return err
	}
	if (action == "follow") == following {
		fmt.Printf("already %sed\n", action)
		return nil
	}

	header := resource.NewFetcher(func(ctx context.Context, key string) (profile.Profile, error) {
		p, err := a.profiles.Profile(ctx, key)
		if err != nil {
			return profile.Profile{}, err
		}
		return *p, nil
	})
	header.Load(ctx, owner)
	snap := await(header)
	if snap.State == resource.StateFailed {
		return fmt.Errorf("%s", snap.Err)
	}

	toggle, err := profile.NewFollowToggle(a.profiles, viewer.Username, owner, following, header)
	if err != nil {
		return err
	}
	if err := toggle.Toggle(ctx); err != nil {
		return err
	}
	now, _, _ := toggle.Snapshot()
	fmt.Printf("%s: following=%v, followers=%d\n", owner, now, header.Snapshot().Data.FollowersCount)
	return nil
}

// cmdCheckUsername runs the interactive availability checker once over the
// given candidate, the same machine the edit form drives per keystroke.
func (a *app) cmdCheckUsername(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: codeprep check-username <candidate>")
	}
	current, _ := a.sessions.Current()

	done := make(chan struct{}, 1)
	checker := profile.NewUsernameChecker(current.Username, a.cfg.UsernameCheckDelay, a.profiles.CheckUsername)
	defer checker.Close()
	checker.SetOnChange(func() {
		select {
		case done <- struct{}{}:
		default:
		}
	})

	checker.Input(args[0])
	for {
		state, value := checker.Snapshot()
		switch state {
		case profile.CheckChecking:
			<-done
		case profile.CheckInvalid:
			fmt.Printf("%s: invalid (3-20 letters, digits or underscores)\n", value)
			return nil
		case profile.CheckAvailable:
			fmt.Printf("%s: available\n", value)
			return nil
		case profile.CheckUnavailable:
			fmt.Printf("%s: taken\n", value)
			return nil
		default:
			fmt.Printf("%s: no change\n", value)
			return nil
		}
	}
}

func (a *app) cmdSubmissions(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: codeprep submissions <problemID>")
	}
	subs, err := a.submissions.ForProblem(ctx, args[0])
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		fmt.Println("no submissions yet")
		return nil
	}
	for _, s := range subs {
		fmt.Println(formatSubmission(s))
	}
	return nil
}

func (a *app) cmdNote(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: codeprep note <submissionID> <text...>")
	}
	sub, err := a.submissions.SaveNote(ctx, args[0], strings.Join(args[1:], " "), "")
	if err != nil {
		return err
	}
	fmt.Printf("note saved on %s: %s\n", sub.ID, sub.Note)
	return nil
}

func (a *app) cmdChat(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: codeprep chat <problemID> <message...>")
	}
	problemID := args[0]
	if _, err := a.chats.History(ctx, problemID); err != nil {
		// History failures are non-fatal; the turn can still be sent.
		a.log.Warn("could not load chat history", "problem", problemID, "error", err)
	}

	if _, err := a.chats.Send(ctx, problemID, strings.Join(args[1:], " ")); err != nil {
		return err
	}
	for _, m := range a.transcript.Messages(problemID) {
		prefix := "you"
		if m.Role == chat.RoleAssistant {
			prefix = " ai"
		}
		fmt.Printf("%s> %s\n", prefix, m.Content)
	}
	return nil
}

func (a *app) cmdRun(ctx context.Context, args []string, lang, file string) error {
	if len(args) != 1 || file == "" {
		return fmt.Errorf("usage: codeprep run <problemID> --lang <language> --file <path>")
	}
	code, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}
	result, err := a.runner.Run(ctx, args[0], lang, string(code))
	if err != nil {
		return err
	}
	for i, tr := range result.TestResults {
		mark := "PASS"
		if !tr.Passed {
			mark = "FAIL"
		}
		fmt.Printf("%s test %d: input=%s expected=%s got=%s (%dms)\n",
			mark, i+1, tr.Input, tr.Expected, tr.Actual, tr.RuntimeMS)
	}
	fmt.Printf("%d/%d passed\n", result.Summary.Passed, result.Summary.Total)
	return nil
}

// await blocks until the fetcher leaves the loading state.
func await[T any](f *resource.Fetcher[T]) resource.Snapshot[T] {
	for {
		snap := f.Snapshot()
		if snap.State != resource.StateLoading {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
}
