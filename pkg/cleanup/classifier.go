// Package cleanup implements the tag classification and retention decision
// engine. It is deliberately free of registry specifics: everything operates
// on registry.ImageVersion values and an injected clock.
package cleanup

import "regexp"

// Category is the retention class of an image version. Every version gets
// exactly one category.
type Category string

const (
	// CategoryVersion marks released images, protected from deletion.
	CategoryVersion Category = "version"
	// CategoryTest marks pull-request and other test builds.
	CategoryTest Category = "test"
	// CategoryDev covers untagged images and everything not matched by the
	// version or test pattern (feature branches, sha tags, ...).
	CategoryDev Category = "dev"
)

// Classifier assigns a category to a tag set using two compiled patterns.
type Classifier struct {
	versionPattern *regexp.Regexp
	testPattern    *regexp.Regexp
}

// NewClassifier creates a classifier from compiled tag patterns
func NewClassifier(versionPattern, testPattern *regexp.Regexp) *Classifier {
	return &Classifier{
		versionPattern: versionPattern,
		testPattern:    testPattern,
	}
}

// Classify maps a tag set to its category. Priority order is fixed: an
// untagged version is dev; any tag matching the version pattern protects
// the whole version even when other tags would match test or nothing; else
// any test match wins; everything else is dev.
func (c *Classifier) Classify(tags []string) Category {
	if len(tags) == 0 {
		return CategoryDev
	}

	for _, tag := range tags {
		if c.versionPattern.MatchString(tag) {
			return CategoryVersion
		}
	}

	for _, tag := range tags {
		if c.testPattern.MatchString(tag) {
			return CategoryTest
		}
	}

	return CategoryDev
}
