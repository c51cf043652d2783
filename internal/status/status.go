// Package status defines the progress surface that check runs report into.
package status

// CheckStatus is the terminal state shown for a finished check.
type CheckStatus int

const (
	// StatusSuccess means the check completed and found no errors.
	StatusSuccess CheckStatus = iota

	// StatusError means the check completed but reported analysis errors.
	StatusError

	// StatusKilled means the check exceeded its deadline and was abandoned.
	StatusKilled
)

// String returns the status name for logs and notifications.
func (s CheckStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusKilled:
		return "killed"
	default:
		return "unknown"
	}
}

// Operation is one check's progress lifecycle: Start, zero or more Progress
// updates, then exactly one Finish.
type Operation interface {
	Start(label string)
	Progress(pct float64, label string)
	Finish(status CheckStatus)
}

// Surface creates progress operations. Implementations present them on a
// status bar, a terminal, or a log sink.
type Surface interface {
	CreateOperation() Operation
}
