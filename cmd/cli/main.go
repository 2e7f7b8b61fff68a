package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kuboai/waitlist-api/config"
	"github.com/kuboai/waitlist-api/domain/waitlist"
	"github.com/kuboai/waitlist-api/internal/log"
	"github.com/kuboai/waitlist-api/internal/mailer"
	"github.com/kuboai/waitlist-api/pkg/migrations"
	"github.com/kuboai/waitlist-api/pkg/retry"
	"github.com/kuboai/waitlist-api/pkg/utils"
	"gorm.io/gorm"
)

func main() {
	logger := log.NewLoggerWithJSONOutput()

	config.InitializeEnvFile(logger) // Load envs early for CLI consistency

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "migrate":
		runMigrate(logger)
		return

	case "broadcast":
		dryRun := false
		for _, arg := range args[1:] {
			if arg == "--dry-run" || arg == "-n" {
				dryRun = true
			}
		}
		runBroadcast(logger, dryRun)
		return

	case "stats":
		runStats(logger)
		return

	case "export":
		runExport(logger)
		return

	case "help", "-h", "--help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func runMigrate(logger *log.Logger) {
	db := mustConnect(logger)

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get SQL DB instance for migration", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("Failed to close SQL DB after migration", "error", err.Error())
		}
	}()

	migrationsDir := utils.GetEnvTrimmedOrDefault("MIGRATIONS_DIR", "migrations")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := migrations.Up(ctx, sqlDB, migrations.Config{Dir: migrationsDir, Logger: logger}); err != nil {
		logger.Error("Database migration failed", "error", err.Error())
		os.Exit(1)
	}

	logger.Info("Database migrations completed")
}

// runBroadcast sends the launch notification to every confirmed-but-unnotified
// user, out-of-band from the HTTP API. With --dry-run nothing is sent and
// nothing is marked; the command only reports who would be notified.
func runBroadcast(logger *log.Logger, dryRun bool) {
	db := mustConnect(logger)
	defer closeDB(db, logger)

	var appMailer mailer.Mailer = config.NewMailer(logger)
	if dryRun {
		logger.Info("Dry run: no emails will be sent")
		appMailer = dryRunMailer{logger: logger}
	}

	repository := waitlist.NewWaitlistRepository(db)

	service := waitlist.NewWaitlistService(logger, repository, appMailer, nil, broadcastSendsPerSecond())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := service.NotifyAllUsers(ctx)
	if err != nil {
		logger.Error("Broadcast failed", "error", err.Error())
		os.Exit(1)
	}

	if dryRun {
		// Dry-run "successes" are users that would have been notified, but the
		// dry-run mailer never succeeds, so everyone shows up as pending.
		logger.Info("Dry run completed", "pending", stats.Total)
		return
	}

	logger.Info("Broadcast finished",
		"total", stats.Total,
		"succeeded", stats.SuccessCount,
		"failed", stats.ErrorCount,
	)
}

func runStats(logger *log.Logger) {
	db := mustConnect(logger)
	defer closeDB(db, logger)

	repository := waitlist.NewWaitlistRepository(db)

	stats, err := repository.GetStats(context.Background())
	if err != nil {
		logger.Error("Failed to load waitlist stats", "error", err.Error())
		os.Exit(1)
	}

	printJSON(logger, waitlist.ToStatsResponse(stats))
}

// runExport writes every waitlist record to stdout as JSON, useful for
// migrating the data or feeding an external campaign tool.
func runExport(logger *log.Logger) {
	db := mustConnect(logger)
	defer closeDB(db, logger)

	repository := waitlist.NewWaitlistRepository(db)

	users, err := repository.GetAllUsers(context.Background())
	if err != nil {
		logger.Error("Failed to export waitlist users", "error", err.Error())
		os.Exit(1)
	}

	printJSON(logger, users)
}

// mustConnect retries the initial database connection with backoff so the CLI
// survives a briefly unavailable database (fresh container, failover).
func mustConnect(logger *log.Logger) *gorm.DB {
	var db *gorm.DB

	backoff := retry.NewExponentialBackoff(&retry.Config{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Multiplier:  2.0,
	})

	err := backoff.Execute(func() error {
		var connectErr error
		db, connectErr = config.NewDatabase(logger, nil)
		return connectErr
	})
	if err != nil {
		logger.Error("Failed to connect to database", "error", err.Error())
		os.Exit(1)
	}

	return db
}

func closeDB(db *gorm.DB, logger *log.Logger) {
	config.CloseDatabase(db, logger)
}

func broadcastSendsPerSecond() float64 {
	raw := utils.GetEnvTrimmed("BROADCAST_SENDS_PER_SECOND")
	if raw == "" {
		return waitlist.DefaultSendsPerSecond
	}

	var parsed float64
	if _, err := fmt.Sscanf(raw, "%f", &parsed); err != nil || parsed <= 0 {
		return waitlist.DefaultSendsPerSecond
	}
	return parsed
}

func printJSON(logger *log.Logger, v any) {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Error("Failed to encode output", "error", err.Error())
		os.Exit(1)
	}
	fmt.Println(string(encoded))
}

// dryRunMailer logs what would be sent and reports failure so records are
// never marked as notified during a dry run.
type dryRunMailer struct {
	logger *log.Logger
}

func (d dryRunMailer) SendWelcome(ctx context.Context, to mailer.Recipient) mailer.SendResult {
	d.logger.Info("Would send welcome email", "to", to.Email)
	return mailer.SendResult{Success: false}
}

func (d dryRunMailer) SendLaunch(ctx context.Context, to mailer.Recipient) mailer.SendResult {
	d.logger.Info("Would send launch email", "to", to.Email, "name", to.Name)
	return mailer.SendResult{Success: false}
}

func printUsage() {
	fmt.Println("Usage: cli <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate              Run database migrations and exit")
	fmt.Println("  broadcast [--dry-run] Send the launch notification to all pending waitlist users")
	fmt.Println("  stats                Print aggregate waitlist counters as JSON")
	fmt.Println("  export               Dump all waitlist records as JSON")
}
