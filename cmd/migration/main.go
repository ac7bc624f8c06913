package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/baselinehq/tennis-league/internal/app"
	"github.com/baselinehq/tennis-league/internal/config"
	"github.com/baselinehq/tennis-league/internal/platform/logging"
	"github.com/baselinehq/tennis-league/internal/usecase"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("build app: %v", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := application.Close(closeCtx); err != nil {
			log.Printf("close app: %v", err)
		}
	}()

	svc := application.Migration

	cmd := strings.ToLower(strings.TrimSpace(os.Args[1]))
	switch cmd {
	case "migrate":
		report, err := svc.MigrateMatches(ctx)
		handleReport(report, err)
	case "pending":
		report, err := svc.CreatePendingMatchesFromChallenges(ctx)
		handleReport(report, err)
	case "force-pending":
		report, err := svc.ForceRecreatePendingMatches(ctx)
		handleReport(report, err)
	case "remigrate":
		report, err := svc.ReMigrateFromBackup(ctx)
		handleReport(report, err)
	case "full":
		reports, err := svc.FullMigration(ctx)
		if err != nil {
			log.Fatalf("full migration: %v", err)
		}
		clean := true
		for _, report := range reports {
			printReport(report)
			clean = clean && report.Clean()
		}
		if !clean {
			os.Exit(1)
		}
	case "fix-challenge-ids":
		report, err := svc.FixChallengeIDField(ctx)
		handleReport(report, err)
	case "ensure-created-at":
		report, err := svc.EnsureCreatedAtField(ctx)
		handleReport(report, err)
	case "verify":
		result, err := svc.VerifyMigration(ctx)
		if err != nil {
			log.Fatalf("verify migration: %v", err)
		}
		printVerification(result)
		if !result.CountsMatch {
			os.Exit(1)
		}
	case "refresh-standings":
		items, err := application.Points.RefreshStandings(ctx)
		if err != nil {
			log.Fatalf("refresh standings: %v", err)
		}
		log.Printf("standings refreshed (teams=%d)", len(items))
	default:
		printUsage()
		os.Exit(2)
	}
}

func handleReport(report usecase.MigrationReport, err error) {
	if err != nil {
		log.Fatalf("%s: %v", report.Operation, err)
	}
	printReport(report)
	if !report.Clean() {
		os.Exit(1)
	}
}

func printReport(report usecase.MigrationReport) {
	log.Printf("%s: total=%d created=%d updated=%d skipped=%d errored=%d",
		report.Operation, report.Total, report.Created, report.Updated, report.Skipped, report.Errored)
	for _, item := range report.Items {
		if item.Status != "errored" {
			continue
		}
		log.Printf("  %s -> %s: %s", item.SourceID, item.Status, item.Message)
	}
}

func printVerification(result usecase.VerificationReport) {
	fmt.Printf("blob entries: %d (migratable=%d invalid=%d)\n", result.BlobEntries, result.BlobMigratable, result.BlobInvalid)
	fmt.Printf("backup entries: %d\n", result.BackupEntries)
	fmt.Printf("migrated matches: %d (pending=%d completed=%d)\n", result.MigratedMatches, result.PendingMatches, result.CompletedMatches)
	fmt.Printf("challenge links: with=%d without=%d\n", result.WithChallenge, result.WithoutChallenge)
	fmt.Printf("counts match: %t\n", result.CountsMatch)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "usage: %s <migrate|pending|force-pending|remigrate|full|fix-challenge-ids|ensure-created-at|verify|refresh-standings>\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintf(os.Stderr, "  %s migrate\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "  %s full\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "  %s verify\n", filepath.Base(os.Args[0]))
}
