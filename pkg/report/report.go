// Package report renders the run summary for humans and for the GitHub
// Actions step summary.
package report

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/lissto-dev/registry-cleanup/pkg/cleanup"
	"github.com/lissto-dev/registry-cleanup/pkg/config"
	"github.com/lissto-dev/registry-cleanup/pkg/logging"
)

// LogPlan logs every decision of the plan before execution, so a dry run
// shows exactly what a live run would do.
func LogPlan(plan cleanup.Plan) {
	for _, d := range plan.Decisions {
		logging.Logger.Info("Planned decision",
			zap.String("id", shortID(d.Version.ID)),
			zap.Strings("tags", d.Version.Tags),
			zap.String("category", string(d.Category)),
			zap.Int("age_days", d.AgeDays),
			zap.String("action", string(d.Action)),
			zap.String("reason", d.Reason))
	}

	logging.Logger.Info("Plan ready",
		zap.Int("versions", len(plan.Decisions)),
		zap.Int("to_delete", plan.DeleteCount()))
}

// LogSummary logs the aggregate outcome of the run
func LogSummary(summary cleanup.Summary, dryRun bool) {
	logging.Logger.Info("Cleanup finished",
		zap.Bool("dry_run", dryRun),
		zap.Int("kept", summary.Kept),
		zap.Int("deleted", summary.Deleted),
		zap.Int("would_delete", summary.WouldDelete),
		zap.Int("failed", summary.Failed))

	for _, f := range summary.Failures {
		logging.Logger.Error("Deletion failure",
			zap.String("id", shortID(f.Version.ID)),
			zap.Strings("tags", f.Version.Tags),
			zap.String("error", f.Message))
	}
}

// WriteStepSummary writes the markdown summary table to the GitHub Actions
// step summary file. It is a no-op when no path is configured.
func WriteStepSummary(summary cleanup.Summary, settings *config.Settings) error {
	if settings.StepSummaryPath == "" {
		return nil
	}

	var b strings.Builder
	b.WriteString("### Container Image Cleanup\n\n")
	b.WriteString("| Metric | Count |\n|--------|-------|\n")
	fmt.Fprintf(&b, "| Kept | %d |\n", summary.Kept)
	if settings.DryRun {
		fmt.Fprintf(&b, "| To Delete | %d |\n", summary.WouldDelete)
	} else {
		fmt.Fprintf(&b, "| Deleted | %d |\n", summary.Deleted)
	}
	fmt.Fprintf(&b, "| Failed | %d |\n\n", summary.Failed)

	mode := "Live"
	if settings.DryRun {
		mode = "Dry Run"
	}
	fmt.Fprintf(&b, "**Mode:** %s | **Retention:** Test=%dd, Dev=%dd\n",
		mode, settings.TestRetentionDays, settings.DevRetentionDays)

	if len(summary.Failures) > 0 {
		b.WriteString("\n**Failures:**\n\n")
		for _, f := range summary.Failures {
			fmt.Fprintf(&b, "- `%s` (%s): %s\n",
				shortID(f.Version.ID), strings.Join(f.Version.Tags, ", "), f.Message)
		}
	}

	if err := os.WriteFile(settings.StepSummaryPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write step summary: %w", err)
	}

	return nil
}

// shortID truncates long identifiers (Harbor digests) for readability
func shortID(id string) string {
	if len(id) > 20 {
		return id[:20] + "..."
	}
	return id
}
