// internal/flow/result.go
package flow

import (
	"fmt"
	"strings"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
)

// failStatus encodes a terminal failure as fail_S<step>_<reason>. Step 0
// marks pre-step phases (landing, decisions, login).
func failStatus(step int, reason string) string {
	reason = strings.ToLower(strings.TrimSpace(reason))
	reason = strings.ReplaceAll(reason, " ", "_")
	if reason == "" {
		reason = "unknown"
	}
	return fmt.Sprintf("fail_S%d_%s", step, reason)
}

// IsSuccess reports whether the run ended on a success status.
func IsSuccess(run *schemas.ApplicationRun) bool {
	switch run.Status {
	case schemas.StatusSubmissionAttempted, schemas.StatusCompletedAllDataSteps:
		return true
	}
	return false
}

// Summary renders a one-paragraph human-readable outcome for CLI output.
func Summary(run *schemas.ApplicationRun) string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %s, %d field(s) filled over %d step(s)",
		run.ID, run.Status, run.TotalFilled, len(run.Steps))
	if len(run.Errors) > 0 {
		fmt.Fprintf(&b, "; last error: %s", run.Errors[len(run.Errors)-1])
	}
	if len(run.Screenshots) > 0 {
		fmt.Fprintf(&b, "; artifacts: %s", strings.Join(run.Screenshots, ", "))
	}
	return b.String()
}
