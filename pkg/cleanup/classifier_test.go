package cleanup_test

import (
	"regexp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lissto-dev/registry-cleanup/pkg/cleanup"
	"github.com/lissto-dev/registry-cleanup/pkg/config"
)

func defaultClassifier() *cleanup.Classifier {
	return cleanup.NewClassifier(
		regexp.MustCompile(config.DefaultVersionPattern),
		regexp.MustCompile(config.DefaultTestPattern),
	)
}

var _ = Describe("Classifier", func() {
	var classifier *cleanup.Classifier

	BeforeEach(func() {
		classifier = defaultClassifier()
	})

	Describe("Classify", func() {
		Context("with untagged versions", func() {
			It("should classify an empty tag set as dev", func() {
				Expect(classifier.Classify(nil)).To(Equal(cleanup.CategoryDev))
				Expect(classifier.Classify([]string{})).To(Equal(cleanup.CategoryDev))
			})
		})

		Context("with version tags", func() {
			It("should classify semver tags as version", func() {
				Expect(classifier.Classify([]string{"v1.2.3"})).To(Equal(cleanup.CategoryVersion))
			})

			It("should classify semver tags with suffixes as version", func() {
				Expect(classifier.Classify([]string{"v2.0.1-rc.1"})).To(Equal(cleanup.CategoryVersion))
			})

			It("should classify latest as version", func() {
				Expect(classifier.Classify([]string{"latest"})).To(Equal(cleanup.CategoryVersion))
			})

			It("should protect the whole version when one tag matches", func() {
				// "sha-abc123" alone would be dev, but "latest" wins.
				Expect(classifier.Classify([]string{"latest", "sha-abc123"})).To(Equal(cleanup.CategoryVersion))
			})

			It("should protect the version even when another tag is a test tag", func() {
				Expect(classifier.Classify([]string{"pr-7", "v1.0.0"})).To(Equal(cleanup.CategoryVersion))
			})
		})

		Context("with test tags", func() {
			It("should classify pull-request tags as test", func() {
				Expect(classifier.Classify([]string{"pr-42"})).To(Equal(cleanup.CategoryTest))
			})

			It("should classify a mix of test and unmatched tags as test", func() {
				Expect(classifier.Classify([]string{"feature-x", "pr-42"})).To(Equal(cleanup.CategoryTest))
			})

			It("should not match test tags as substrings", func() {
				// Anchored matching: "pr-42-extra" is not a test tag.
				Expect(classifier.Classify([]string{"pr-42-extra"})).To(Equal(cleanup.CategoryDev))
			})
		})

		Context("with unmatched tags", func() {
			It("should classify feature-branch tags as dev", func() {
				Expect(classifier.Classify([]string{"feature-login"})).To(Equal(cleanup.CategoryDev))
			})

			It("should classify sha tags as dev", func() {
				Expect(classifier.Classify([]string{"sha-abc123"})).To(Equal(cleanup.CategoryDev))
			})

			It("should be case-sensitive", func() {
				Expect(classifier.Classify([]string{"PR-42"})).To(Equal(cleanup.CategoryDev))
				Expect(classifier.Classify([]string{"Latest"})).To(Equal(cleanup.CategoryDev))
			})
		})

		Context("totality", func() {
			It("should map every tag set to exactly one known category", func() {
				tagSets := [][]string{
					nil,
					{},
					{"v1.2.3"},
					{"latest"},
					{"pr-1"},
					{"main"},
					{"sha-deadbeef", "pr-9"},
					{"v0.0.1", "pr-9", "weird/tag"},
					{""},
				}
				known := []cleanup.Category{
					cleanup.CategoryVersion,
					cleanup.CategoryTest,
					cleanup.CategoryDev,
				}
				for _, tags := range tagSets {
					Expect(known).To(ContainElement(classifier.Classify(tags)))
				}
			})
		})
	})
})
