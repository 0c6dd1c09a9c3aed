package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iwanhae/rating-tourniquet/aggregate"
	"github.com/iwanhae/rating-tourniquet/history"
	"github.com/iwanhae/rating-tourniquet/internal/config"
	"github.com/iwanhae/rating-tourniquet/lichess"
	"github.com/iwanhae/rating-tourniquet/regulator"
	"github.com/iwanhae/rating-tourniquet/status"
	"github.com/iwanhae/rating-tourniquet/types"
)

var (
	username    string
	category    string
	sample      int
	threshold   int
	configPath  string
	hostsFile   string
	redirect    string
	interval    time.Duration
	apiURL      string
	useSQLite   bool
	statusAddr  string
	hostKeyPath string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "rating-tourniquet",
		Short:        "Block lichess during the hours you lose rating",
		Long:         "Rating Tourniquet analyses your lichess games, finds the hours of the day in which you lose rating and blocks lichess in /etc/hosts during those hours.",
		SilenceUsage: true,
		RunE:         runRegulate,
	}

	rootCmd.Flags().StringVarP(&username, "username", "u", "", "your lichess username")
	rootCmd.Flags().StringVarP(&category, "category", "c", "", "time control to analyse: bullet, blitz, rapid or standard")
	rootCmd.Flags().IntVarP(&sample, "sample", "s", 1000, "maximal amount of games which will be analysed")
	rootCmd.Flags().IntVarP(&threshold, "threshold", "t", 0, "the amount of rating lost after which an hour is banned")
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to YAML configuration file")
	rootCmd.Flags().StringVar(&hostsFile, "hosts-file", "", "path to the hosts file (default /etc/hosts)")
	rootCmd.Flags().StringVar(&redirect, "redirect", "", "address blocked hostnames resolve to (default 127.0.0.1)")
	rootCmd.Flags().DurationVar(&interval, "interval", 0, "time between checks (default 1m)")
	rootCmd.Flags().StringVar(&apiURL, "api-url", "", "lichess API base URL (default https://lichess.org)")
	rootCmd.Flags().BoolVar(&useSQLite, "sqlite", false, "aggregate games in an in-memory SQLite database")
	rootCmd.Flags().StringVar(&statusAddr, "status-addr", "", "serve a read-only SSH status console on this address (e.g. 127.0.0.1:2222)")
	rootCmd.Flags().StringVar(&hostKeyPath, "host-key", "", "path to SSH host private key for the status console")

	_ = rootCmd.MarkFlagRequired("username")
	_ = rootCmd.MarkFlagRequired("category")

	return rootCmd
}

func runRegulate(cmd *cobra.Command, args []string) error {
	cat, err := types.ParseCategory(category)
	if err != nil {
		return err
	}
	if sample <= 0 {
		return fmt.Errorf("sample must be positive, got %d", sample)
	}
	if threshold < 0 {
		return fmt.Errorf("threshold must not be negative, got %d", threshold)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	blocklist, err := cfg.Blocklist()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	log.SetPrefix("[" + runID[:8] + "] ")
	out := cmd.OutOrStdout()

	client := lichess.New(cfg.APIURL)
	profile, err := client.FetchProfile(ctx, username)
	if errors.Is(err, lichess.ErrUserNotFound) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Please enter an existing username!")
		return fmt.Errorf("unknown lichess user %q", username)
	}
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", username, err)
	}
	greet(out, profile, cat)

	store, err := newStore()
	if err != nil {
		return err
	}
	defer store.Close()

	totals, err := analyse(ctx, client, store, cat)
	if err != nil {
		return err
	}

	var report bytes.Buffer
	banned := aggregate.Banned(totals, threshold)
	aggregate.WriteReport(io.MultiWriter(out, &report), totals, banned)

	reg := regulator.New(banned, blocklist, out)
	reg.Interval = cfg.Interval

	if cfg.StatusAddr != "" {
		board := status.NewBoard()
		reg.Recorder = board
		srv, err := status.NewServer(cfg.StatusAddr, cfg.HostKey, status.Info{
			RunID:    runID,
			Username: username,
			Category: string(cat),
			Report:   report.String(),
		}, board)
		if err != nil {
			return err
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("status console error: %v", err)
			}
		}()
		defer srv.Close()
	}

	if ok, err := blocklist.Blocked(); err == nil && ok {
		log.Printf("%s already redirects %v", blocklist.Path, blocklist.Hostnames)
	}
	log.Printf("regulating %v in %s, banned hours %v", blocklist.Hostnames, blocklist.Path, banned)
	return reg.Run(ctx)
}

func greet(w io.Writer, p *lichess.Profile, cat types.Category) {
	rating := "unknown"
	if r, ok := p.Rating(cat); ok {
		rating = fmt.Sprint(r)
	}
	fmt.Fprintf(w, "Hello, %s! Welcome to Rating Tourniquet (for lichess), a tool for improving chess performance. Your current %s rating is %s. Can we raise it?\n", username, cat, rating)
}

func newStore() (history.Store, error) {
	var store history.Store
	if useSQLite {
		s, err := history.NewSQLiteStore()
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite store: %w", err)
		}
		store = s
	} else {
		store = history.NewMemoryStore()
	}
	if err := store.Init(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	return store, nil
}

func analyse(ctx context.Context, client *lichess.Client, store history.Store, cat types.Category) ([24]int, error) {
	stream, err := client.FetchGames(ctx, username, sample, cat)
	if err != nil {
		return [24]int{}, fmt.Errorf("failed to fetch games: %w", err)
	}
	defer stream.Close()

	kept, skipped, err := history.Collect(stream, username, time.Local, store)
	if err != nil {
		return [24]int{}, fmt.Errorf("failed to read games: %w", err)
	}
	log.Printf("analysed %d %s games (%d without rating change skipped)", kept, cat, skipped)

	return store.Totals()
}

// loadConfig reads the config file and applies the flags that were set on
// the command line on top of it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("hosts-file") {
		cfg.HostsFile = hostsFile
	}
	if flags.Changed("redirect") {
		cfg.Redirect = redirect
	}
	if flags.Changed("interval") {
		cfg.Interval = interval
	}
	if flags.Changed("api-url") {
		cfg.APIURL = apiURL
	}
	if flags.Changed("status-addr") {
		cfg.StatusAddr = statusAddr
	}
	if flags.Changed("host-key") {
		cfg.HostKey = hostKeyPath
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
