package audit

// Status is the outcome recorded for an automation attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Entry is one record in the bounded automation execution log. The JSON field
// names match what the dashboard UI renders, so they must not change.
type Entry struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"` // RFC3339 instant of completion
	Type      string `json:"type"`      // e.g. daily_report, weekly_report, manual_report
	Status    Status `json:"status"`
	Message   string `json:"message"`
	Attempts  int    `json:"attempts"`
}

// MaxEntries is the capacity of the execution log; older entries are evicted.
const MaxEntries = 50
