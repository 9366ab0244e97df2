package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flowalyzer/pronunciation/internal/capture"
	"github.com/flowalyzer/pronunciation/internal/clock"
	"github.com/flowalyzer/pronunciation/internal/config"
	"github.com/flowalyzer/pronunciation/internal/errs"
	"github.com/flowalyzer/pronunciation/internal/history"
	"github.com/flowalyzer/pronunciation/internal/logger"
	"github.com/flowalyzer/pronunciation/internal/playback"
	"github.com/flowalyzer/pronunciation/internal/render"
	"github.com/flowalyzer/pronunciation/internal/session"
	"github.com/flowalyzer/pronunciation/internal/types"
	"github.com/flowalyzer/pronunciation/internal/wav"
)

// exit codes per the CLI surface's contract.
const (
	exitOK               = 0
	exitBadArgs          = 2
	exitReferenceFailure = 3
	exitCaptureFailure   = 4
)

var dbPath string

func init() {
	flag.StringVar(&dbPath, "db", getEnvOrDefault("FLOWALYZER_DB_PATH", history.DefaultDBFile), "Path to the practice history SQLite database")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log := logger.GetLogger()
	printBanner()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitBadArgs)
	}

	command := os.Args[1]
	log.Infof("executing command: %s", command)

	switch command {
	case "session":
		handleSession()
	case "history":
		handleHistory()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(exitBadArgs)
	}
}

func printBanner() {
	banner := `
 _____ _
|  ___| | _____      ____ _| |_   _ _______ _ __
| |_  | |/ _ \ \ /\ / / _' | | | | |_  / _ \ '__|
|  _| | | (_) \ V  V / (_| | | |_| |/ /  __/ |
|_|   |_|\___/ \_/\_/ \__,_|_|\__, /___\___|_|
                               |___/
        real-time pronunciation coaching
`
	fmt.Println(banner)
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  pronunciation session --reference <path.wav> [--weights <path.json>] [--latency-min <ms>] [--latency-max <ms>]")
	fmt.Println("  pronunciation history [--limit <n>]")
	fmt.Println("Flags accepted by both subcommands:")
	fmt.Println("  --db <path>   practice history database (default flowalyzer_history.sqlite3)")
}

func handleSession() {
	log := logger.GetLogger()

	sessionCmd := flag.NewFlagSet("session", flag.ExitOnError)
	reference := sessionCmd.String("reference", "", "Path to the reference WAV clip (required)")
	weightsPath := sessionCmd.String("weights", "", "Path to alignment_weights.json (defaults to an even split)")
	latencyMin := sessionCmd.Int("latency-min", 0, "Advisory latency window lower bound in ms (accepted but not used)")
	latencyMax := sessionCmd.Int("latency-max", 200, "Advisory per-tick latency budget in ms")
	dbFlag := sessionCmd.String("db", dbPath, "Path to the practice history SQLite database")
	sessionCmd.Parse(os.Args[2:])
	_ = latencyMin

	if *reference == "" {
		fmt.Println("Error: --reference is required")
		printUsage()
		os.Exit(exitBadArgs)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Printf("Error: reading pronunciation.yaml: %v\n", err)
		os.Exit(exitBadArgs)
	}

	weights := config.DefaultWeights()
	if *weightsPath != "" {
		weights, err = config.LoadWeights(*weightsPath)
		if err != nil {
			fmt.Printf("❌ invalid alignment weights: %v\n", err)
			os.Exit(exitBadArgs)
		}
	}

	fmt.Printf("\U0001F4C2 loading reference clip: %s\n", *reference)
	clip, err := wav.Load(*reference)
	if err != nil {
		fmt.Printf("❌ failed to load reference clip: %v\n", err)
		log.Errorf("reference load failed: %v", err)
		os.Exit(exitReferenceFailure)
	}

	mic := capture.NewMicrophone()
	fmt.Println("\U0001F3A4 probing capture device...")
	if _, err := mic.Start(types.SampleRate, 1); err != nil {
		fmt.Printf("❌ capture device unavailable: %v\n", err)
		log.Errorf("capture probe failed: %v", err)
		os.Exit(exitCaptureFailure)
	}
	mic.Stop()

	dbFile := *dbFlag
	if dbFile == "" {
		dbFile = dbPath
	}
	store, err := history.Open(dbFile)
	if err != nil {
		fmt.Printf("❌ failed to open practice history database: %v\n", err)
		os.Exit(exitBadArgs)
	}
	defer store.Close()

	latencyBudget := float64(*latencyMax)
	if settings.LatencyMaxMs > 0 && *latencyMax == 200 {
		latencyBudget = float64(settings.LatencyMaxMs)
	}

	rt, err := session.New(clip,
		session.WithCaptureSource(mic),
		session.WithPlayer(playback.NewLogPlayer(log)),
		session.WithClock(clock.Real{}),
		session.WithWeights(weights),
		session.WithHistoryStore(store),
		session.WithReferencePath(*reference),
		session.WithLatencyBudgetMs(latencyBudget),
	)
	if err != nil {
		fmt.Printf("❌ failed to start session: %v\n", err)
		switch {
		case errs.Is(err, errs.ConfigInvalid):
			os.Exit(exitBadArgs)
		case errs.Is(err, errs.ReferenceUnavailable):
			os.Exit(exitReferenceFailure)
		default:
			os.Exit(exitCaptureFailure)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt.Send(types.SessionCommand{Kind: types.CommandStart})
	fmt.Println("▶ recording started, press Ctrl+C to stop")

	go func() {
		<-ctx.Done()
		rt.Send(types.SessionCommand{Kind: types.CommandStop})
		rt.Send(types.SessionCommand{Kind: types.CommandShutdown})
	}()

	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx) }()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case err := <-done:
			if err != nil {
				fmt.Printf("❌ session runtime error: %v\n", err)
			}
			fmt.Println(render.Frame(rt.Latest()))
			fmt.Println("✓ session ended")
			os.Exit(exitOK)
		case <-ticker.C:
			fmt.Print("\033[H\033[2J")
			fmt.Println(render.Frame(rt.Latest()))
		}
	}
}

func handleHistory() {
	historyCmd := flag.NewFlagSet("history", flag.ExitOnError)
	limit := historyCmd.Int("limit", 20, "Maximum number of rows to print")
	dbFlag := historyCmd.String("db", dbPath, "Path to the practice history SQLite database")
	historyCmd.Parse(os.Args[2:])

	store, err := history.Open(*dbFlag)
	if err != nil {
		fmt.Printf("❌ failed to open practice history database: %v\n", err)
		os.Exit(exitBadArgs)
	}
	defer store.Close()

	rows, err := store.Recent(*limit)
	if err != nil {
		fmt.Printf("❌ failed to query practice history: %v\n", err)
		os.Exit(exitBadArgs)
	}
	if len(rows) == 0 {
		fmt.Println("no practice sessions recorded yet")
		return
	}

	fmt.Printf("%-20s  %-24s  %6s  %6s  %6s  %6s  %9s\n", "session", "ended", "overall", "timing", "artic.", "inton.", "snapshots")
	for _, r := range rows {
		fmt.Printf("%-20s  %-24s  %6.2f  %6.2f  %6.2f  %6.2f  %9d\n",
			r.SessionID, r.EndedAt.Format(time.RFC3339), r.Overall, r.Timing, r.Articulation, r.Intonation, r.SnapshotCount)
	}
}
