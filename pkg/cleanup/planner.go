package cleanup

import (
	"fmt"
	"time"

	"github.com/lissto-dev/registry-cleanup/pkg/registry"
)

// Action is the planned outcome for one image version.
type Action string

const (
	ActionKeep   Action = "keep"
	ActionDelete Action = "delete"
)

// Decision is the immutable planning result for one image version.
type Decision struct {
	Version  registry.ImageVersion
	Category Category
	AgeDays  int
	Action   Action
	Reason   string
}

// Plan is the ordered decision sequence for one run. It is recomputed from
// a fresh listing on every run, never partially mutated.
type Plan struct {
	Decisions []Decision
}

// DeleteCount returns the number of delete decisions in the plan
func (p Plan) DeleteCount() int {
	count := 0
	for _, d := range p.Decisions {
		if d.Action == ActionDelete {
			count++
		}
	}
	return count
}

// BuildPlan evaluates every listed version independently against the
// classifier and policy. It is a pure function of its inputs: identical
// versions, policy and reference time always produce an identical plan.
func BuildPlan(versions []registry.ImageVersion, classifier *Classifier, policy RetentionPolicy, now time.Time) Plan {
	decisions := make([]Decision, 0, len(versions))

	for _, v := range versions {
		category := classifier.Classify(v.Tags)
		ageDays := AgeDays(v.PushedAt, now)

		decision := Decision{
			Version:  v,
			Category: category,
			AgeDays:  ageDays,
		}

		threshold, deletable := policy.Threshold(category)
		switch {
		case !deletable:
			decision.Action = ActionKeep
			decision.Reason = fmt.Sprintf("protected: version tag (%dd old)", ageDays)
		case ageDays >= threshold:
			decision.Action = ActionDelete
			decision.Reason = fmt.Sprintf("%s: %dd old, retention %dd", category, ageDays, threshold)
		default:
			decision.Action = ActionKeep
			decision.Reason = fmt.Sprintf("%s: %dd old, retention %dd", category, ageDays, threshold)
		}

		decisions = append(decisions, decision)
	}

	return Plan{Decisions: decisions}
}
