package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lissto-dev/registry-cleanup/pkg/cleanup"
	"github.com/lissto-dev/registry-cleanup/pkg/config"
	"github.com/lissto-dev/registry-cleanup/pkg/logging"
	"github.com/lissto-dev/registry-cleanup/pkg/registry"
	"github.com/lissto-dev/registry-cleanup/pkg/report"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse flags
	var envFile string
	var policyFile string
	var logFormat string

	flag.StringVar(&envFile, "env-file", "", "Path to an optional .env file")
	flag.StringVar(&policyFile, "policy-file", "", "Path to an optional YAML policy file overriding patterns and retention days")
	flag.StringVar(&logFormat, "log-format", "json", "Log format (json or console)")
	flag.Parse()

	// Load configuration; anything wrong here aborts before the registry
	// is contacted.
	settings, err := config.Load(envFile, policyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	// Initialize structured logging
	level := "info"
	if settings.Debug {
		level = "debug"
	}
	if err := logging.InitLogger(level, logFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}
	defer logging.Sync()

	runID := uuid.New().String()
	logging.Logger = logging.Logger.With(zap.String("run_id", runID))

	client, err := registry.New(settings)
	if err != nil {
		logging.Logger.Error("Failed to create registry client", zap.Error(err))
		return 1
	}

	scope := settings.OrgName
	if settings.RegistryType == "harbor" {
		scope = settings.HarborProjectName
	}
	logging.Logger.Info("Starting cleanup",
		zap.String("registry", client.Name()),
		zap.String("repository", scope+"/"+settings.RepositoryName),
		zap.Int("test_retention_days", settings.TestRetentionDays),
		zap.Int("dev_retention_days", settings.DevRetentionDays),
		zap.Bool("dry_run", settings.DryRun))

	ctx := context.Background()
	versions, err := client.ListVersions(ctx)
	if err != nil {
		logging.Logger.Error("Failed to list image versions", zap.Error(err))
		return 1
	}
	logging.Logger.Info("Listed image versions", zap.Int("count", len(versions)))

	classifier := cleanup.NewClassifier(settings.VersionRegexp, settings.TestRegexp)
	policy := cleanup.RetentionPolicy{
		TestRetentionDays: settings.TestRetentionDays,
		DevRetentionDays:  settings.DevRetentionDays,
	}

	plan := cleanup.BuildPlan(versions, classifier, policy, time.Now().UTC())
	report.LogPlan(plan)

	summary := cleanup.Execute(ctx, client, plan, settings.DryRun)
	report.LogSummary(summary, settings.DryRun)

	if err := report.WriteStepSummary(summary, settings); err != nil {
		logging.Logger.Warn("Failed to write step summary", zap.Error(err))
	}

	if !summary.OK() {
		return 1
	}
	return 0
}
