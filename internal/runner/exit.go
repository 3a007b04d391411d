package runner

import "github.com/kpauljoseph/pdfmargins/pkg/models"

const (
	ExitClean  = 0
	ExitFailed = 1
)

// ExitCode maps the outcome of Run to the process exit status: zero only when
// the check ran and every page passed.
func ExitCode(report *models.Report, err error) int {
	if err != nil || report == nil || report.Failed() {
		return ExitFailed
	}
	return ExitClean
}
