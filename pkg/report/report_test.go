package report_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lissto-dev/registry-cleanup/pkg/cleanup"
	"github.com/lissto-dev/registry-cleanup/pkg/config"
	"github.com/lissto-dev/registry-cleanup/pkg/registry"
	"github.com/lissto-dev/registry-cleanup/pkg/report"
)

var _ = Describe("WriteStepSummary", func() {
	var settings *config.Settings
	var summaryPath string

	BeforeEach(func() {
		summaryPath = filepath.Join(GinkgoT().TempDir(), "step_summary.md")
		settings = &config.Settings{
			StepSummaryPath:   summaryPath,
			TestRetentionDays: 30,
			DevRetentionDays:  7,
		}
	})

	readSummary := func() string {
		data, err := os.ReadFile(summaryPath)
		Expect(err).ToNot(HaveOccurred())
		return string(data)
	}

	It("should write the counts of a live run", func() {
		summary := cleanup.Summary{Kept: 5, Deleted: 3, Failed: 0}

		Expect(report.WriteStepSummary(summary, settings)).To(Succeed())

		content := readSummary()
		Expect(content).To(ContainSubstring("### Container Image Cleanup"))
		Expect(content).To(ContainSubstring("| Kept | 5 |"))
		Expect(content).To(ContainSubstring("| Deleted | 3 |"))
		Expect(content).To(ContainSubstring("| Failed | 0 |"))
		Expect(content).To(ContainSubstring("**Mode:** Live"))
		Expect(content).To(ContainSubstring("Test=30d, Dev=7d"))
	})

	It("should report would-delete counts in dry-run mode", func() {
		settings.DryRun = true
		summary := cleanup.Summary{Kept: 2, WouldDelete: 4}

		Expect(report.WriteStepSummary(summary, settings)).To(Succeed())

		content := readSummary()
		Expect(content).To(ContainSubstring("| To Delete | 4 |"))
		Expect(content).To(ContainSubstring("**Mode:** Dry Run"))
		Expect(content).ToNot(ContainSubstring("| Deleted |"))
	})

	It("should list deletion failures", func() {
		summary := cleanup.Summary{
			Deleted: 1,
			Failed:  1,
			Failures: []cleanup.Failure{
				{
					Version: registry.ImageVersion{
						ID:   "sha256:0123456789abcdef0123456789abcdef",
						Tags: []string{"pr-42"},
					},
					Message: "boom",
				},
			},
		}

		Expect(report.WriteStepSummary(summary, settings)).To(Succeed())

		content := readSummary()
		Expect(content).To(ContainSubstring("**Failures:**"))
		Expect(content).To(ContainSubstring("pr-42"))
		Expect(content).To(ContainSubstring("boom"))
		// Long digests are truncated for readability.
		Expect(content).To(ContainSubstring("sha256:0123456789abc..."))
	})

	It("should do nothing when no summary path is configured", func() {
		settings.StepSummaryPath = ""

		Expect(report.WriteStepSummary(cleanup.Summary{Kept: 1}, settings)).To(Succeed())
		_, err := os.Stat(summaryPath)
		Expect(os.IsNotExist(err)).To(BeTrue())
	})
})
