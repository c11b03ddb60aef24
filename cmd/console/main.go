package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/example/satellite-console/internal/api"
	"github.com/example/satellite-console/internal/config"
	"github.com/example/satellite-console/internal/meeting"
	"github.com/example/satellite-console/internal/metrics"
	"github.com/example/satellite-console/internal/session"
	"github.com/example/satellite-console/internal/store/sqlite"
)

const usage = `Usage: console <command> [flags]

Commands:
  login     -username <name> -password <secret>
  register  -name <full name> -username <name> -email <addr> -password <secret> -confirm <secret> [-designation <role>]
  unlock    -password <secret>
  profile
  meetings  [-date YYYY-MM-DD]
  create    -collaborators <ids> -start <ts> -end <ts> -agenda <text>
  delete    -id <meeting id>
  logout
`

func main() {
	os.Exit(run())
}

func run() int {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	command := os.Args[1]
	args := os.Args[2:]

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		return 1
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open local store", "error", err)
		return 1
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close local store", "error", cerr)
		}
	}()

	recorder := metrics.Recorder(metrics.Nop{})
	if cfg.MetricsAddr != "" {
		registry := prometheus.NewRegistry()
		collector := metrics.NewCollector(registry)
		recorder = collector
		go serveMetrics(ctx, logger, cfg.MetricsAddr, registry)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	var limiter *rate.Limiter
	if cfg.APIRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.APIRate), 1)
	}
	client := api.NewClientWithLimiter(httpClient, cfg.APIBaseURL, logger, limiter)

	manager := session.NewManagerWithLogger(client, storage, nil, nil, time.Now, logger, recorder)
	controller := meeting.NewControllerWithMetrics(client, logger, recorder)

	app := &console{
		manager:    manager,
		controller: controller,
		logger:     logger,
		out:        os.Stdout,
	}

	if err := app.dispatch(ctx, command, args); err != nil {
		fmt.Fprintln(os.Stderr, api.UserMessage(err))
		return 1
	}
	return 0
}

func serveMetrics(ctx context.Context, logger *slog.Logger, addr string, gatherer prometheus.Gatherer) {
	server := &http.Server{
		Addr:              addr,
		Handler:           metrics.Handler(gatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	logger.Info("metrics listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server encountered error", "error", err)
	}
}

type console struct {
	manager    *session.Manager
	controller *meeting.Controller
	logger     *slog.Logger
	out        *os.File
}

func (c *console) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return c.login(ctx, args)
	case "register":
		return c.register(ctx, args)
	case "unlock":
		return c.unlock(ctx, args)
	case "profile":
		return c.profile(ctx)
	case "meetings":
		return c.meetings(ctx, args)
	case "create":
		return c.create(ctx, args)
	case "delete":
		return c.delete(ctx, args)
	case "logout":
		return c.logout(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (c *console) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("username", "", "account username")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	profile, err := c.manager.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	c.printProfile(profile)
	return nil
}

func (c *console) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	input := session.RegisterInput{}
	fs.StringVar(&input.Name, "name", "", "full name")
	fs.StringVar(&input.Username, "username", "", "account username")
	fs.StringVar(&input.Designation, "designation", "", "role designation")
	fs.StringVar(&input.Email, "email", "", "email address")
	fs.StringVar(&input.Password, "password", "", "account password")
	fs.StringVar(&input.Confirm, "confirm", "", "password confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := c.manager.Register(ctx, input); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Registration successful! Please log in.")
	return nil
}

func (c *console) unlock(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("unlock", flag.ContinueOnError)
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, profile, err := c.manager.Unlock(ctx, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Unlocked session for %s (user %d)\n", sess.Username, sess.UserID)
	c.printProfile(profile)
	return nil
}

func (c *console) profile(ctx context.Context) error {
	profile, err := c.manager.CachedProfile(ctx)
	if err != nil {
		return err
	}
	c.printProfile(profile)
	return nil
}

func (c *console) meetings(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("meetings", flag.ContinueOnError)
	date := fs.String("date", "", "filter by date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := c.manager.Current(ctx)
	if err != nil {
		return err
	}

	if *date != "" {
		err = c.controller.FilterByDate(ctx, sess, *date)
	} else {
		err = c.controller.Refresh(ctx, sess)
	}
	c.printSnapshot()
	return err
}

func (c *console) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	draft := meeting.Draft{}
	fs.StringVar(&draft.CollaboratorsID, "collaborators", "", "comma separated collaborator ids")
	fs.StringVar(&draft.StartTime, "start", "", "start timestamp")
	fs.StringVar(&draft.EndTime, "end", "", "end timestamp")
	fs.StringVar(&draft.Agenda, "agenda", "", "meeting agenda")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := c.manager.Current(ctx)
	if err != nil {
		return err
	}

	created, err := c.controller.Create(ctx, sess, draft)
	c.printSnapshot()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Created meeting %s\n", created.ID)
	return nil
}

func (c *console) delete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	id := fs.String("id", "", "meeting id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*id) == "" {
		return fmt.Errorf("missing -id")
	}

	sess, err := c.manager.Current(ctx)
	if err != nil {
		return err
	}

	if err := c.controller.Refresh(ctx, sess); err != nil {
		return err
	}
	var target api.Meeting
	for _, m := range c.controller.Snapshot().Meetings {
		if m.ID == strings.TrimSpace(*id) {
			target = m
			break
		}
	}
	if target.ID == "" {
		return fmt.Errorf("meeting %q not found", *id)
	}

	if err := c.controller.Delete(ctx, sess, target); err != nil {
		return err
	}
	c.printSnapshot()
	return nil
}

func (c *console) logout(ctx context.Context) error {
	if err := c.manager.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Logged out.")
	return nil
}

func (c *console) printProfile(profile session.Profile) {
	fmt.Fprintf(c.out, "%s (@%s), %s\n", profile.Name, profile.Username, profile.Designation)
	fmt.Fprintf(c.out, "  %s | %s | joined %s\n", profile.Email, profile.Location, profile.JoinedDate)
	fmt.Fprintf(c.out, "  %s\n", profile.Bio)
	fmt.Fprintf(c.out, "  tasks %d, missions %d, followers %d\n", profile.Stats.TasksCompleted, profile.Stats.Missions, profile.Stats.Followers)
	if profile.IsFallback {
		fmt.Fprintln(c.out, "  (profile sync pending)")
	}
}

func (c *console) printSnapshot() {
	snap := c.controller.Snapshot()
	if snap.Notice != "" {
		fmt.Fprintln(c.out, snap.Notice)
	}
	if snap.ErrorMessage != "" {
		fmt.Fprintln(c.out, snap.ErrorMessage)
	}
	for _, m := range snap.Meetings {
		ids := make([]string, 0, len(m.CollaboratorIDs))
		for _, id := range m.CollaboratorIDs {
			ids = append(ids, fmt.Sprintf("%d", id))
		}
		fmt.Fprintf(c.out, "%s  %s to %s  [initiator %d; with %s]  %s\n",
			m.ID, m.StartTime, m.EndTime, m.InitiatorID, strings.Join(ids, ","), m.Agenda)
	}
}
