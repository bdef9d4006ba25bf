package cleanup

import (
	"context"

	"go.uber.org/zap"

	"github.com/lissto-dev/registry-cleanup/pkg/logging"
	"github.com/lissto-dev/registry-cleanup/pkg/registry"
)

// Failure records one delete call that did not succeed.
type Failure struct {
	Version registry.ImageVersion
	Message string
}

// Summary is the aggregate outcome of one run and the only artifact
// reported to the caller.
type Summary struct {
	Kept        int
	Deleted     int
	WouldDelete int
	Failed      int
	Failures    []Failure
}

// OK reports whether the run completed without deletion failures
func (s Summary) OK() bool {
	return s.Failed == 0
}

// Execute walks the plan in order. In dry-run mode no delete call is ever
// issued; otherwise each delete decision is executed synchronously and a
// failure is recorded without aborting the remaining plan.
func Execute(ctx context.Context, client registry.Client, plan Plan, dryRun bool) Summary {
	var summary Summary

	for _, decision := range plan.Decisions {
		if decision.Action == ActionKeep {
			summary.Kept++
			continue
		}

		if dryRun {
			summary.WouldDelete++
			logging.Logger.Info("Would delete",
				zap.String("id", decision.Version.ID),
				zap.Strings("tags", decision.Version.Tags),
				zap.String("reason", decision.Reason))
			continue
		}

		if err := client.DeleteVersion(ctx, decision.Version.ID); err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{
				Version: decision.Version,
				Message: err.Error(),
			})
			logging.Logger.Error("Failed to delete version",
				zap.String("id", decision.Version.ID),
				zap.Strings("tags", decision.Version.Tags),
				zap.Error(err))
			continue
		}

		summary.Deleted++
		logging.Logger.Info("Deleted version",
			zap.String("id", decision.Version.ID),
			zap.Strings("tags", decision.Version.Tags),
			zap.String("reason", decision.Reason))
	}

	return summary
}
