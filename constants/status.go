package constants

// JobStatus is the canonical lifecycle status for a processing job.
type JobStatus string

// Stable values (persisted as these exact strings).
const (
	JobStatusPending    JobStatus = "pending"    // accepted, waiting for a worker
	JobStatusProcessing JobStatus = "processing" // pipeline pass in progress
	JobStatusCompleted  JobStatus = "completed"  // extraction finished, record available
	JobStatusRendered   JobStatus = "rendered"   // completed + output artifact written
	JobStatusFailed     JobStatus = "failed"     // terminal failure (retry only via regenerate)
)

// IsTerminal reports whether no further processing is scheduled for the status.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusRendered, JobStatusFailed:
		return true
	}
	return false
}

// HasResult reports whether an extracted record may be read for the status.
func (s JobStatus) HasResult() bool {
	return s == JobStatusCompleted || s == JobStatusRendered
}

// Legal transitions: regenerate re-enters processing from failed/completed/rendered,
// render moves completed to rendered, cancel maps pending/processing to failed.
var transitions = map[JobStatus][]JobStatus{
	JobStatusPending:    {JobStatusProcessing, JobStatusFailed},
	JobStatusProcessing: {JobStatusCompleted, JobStatusFailed},
	JobStatusCompleted:  {JobStatusRendered, JobStatusProcessing},
	JobStatusRendered:   {JobStatusRendered, JobStatusProcessing},
	JobStatusFailed:     {JobStatusProcessing},
}

// CanTransition reports whether moving from one status to the next is a legal lifecycle step.
func CanTransition(from, to JobStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ParseJobStatus validates a stored status string.
func ParseJobStatus(s string) (JobStatus, bool) {
	switch JobStatus(s) {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusRendered, JobStatusFailed:
		return JobStatus(s), true
	}
	return "", false
}
