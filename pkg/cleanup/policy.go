package cleanup

import "time"

// RetentionPolicy maps a category to the minimum age in days an image
// version must reach before it becomes eligible for deletion. A threshold
// of 0 makes a version eligible immediately. Version-category images are
// never eligible, regardless of configuration.
type RetentionPolicy struct {
	TestRetentionDays int
	DevRetentionDays  int
}

// Threshold returns the retention threshold for a category. The second
// return value is false for the version category, which has no threshold.
func (p RetentionPolicy) Threshold(category Category) (int, bool) {
	switch category {
	case CategoryTest:
		return p.TestRetentionDays, true
	case CategoryDev:
		return p.DevRetentionDays, true
	}
	return 0, false
}

// IsEligible reports whether a version of the given category and push time
// may be deleted at the injected reference time. The age boundary is
// inclusive: an image exactly as old as the threshold is eligible.
func (p RetentionPolicy) IsEligible(category Category, pushedAt, now time.Time) bool {
	threshold, ok := p.Threshold(category)
	if !ok {
		return false
	}
	return AgeDays(pushedAt, now) >= threshold
}

// AgeDays returns the whole number of days between push time and now
func AgeDays(pushedAt, now time.Time) int {
	return int(now.Sub(pushedAt) / (24 * time.Hour))
}
