package report

// Report kind tags carried in webhook payloads and execution log entries.
const (
	TypeDaily  = "daily_report"
	TypeWeekly = "weekly_report"
	TypeManual = "manual_report"
)

// Classification sentinels used by the dashboard's data entry conventions.
// Visit status is a structured field; "compareceu" (attended) and
// "venda_realizada" (sale completed) are marker words embedded in the
// free-text tag string.
const (
	VisitStatusCancelled = "cancelado"
	VisitStatusConfirmed = "confirmado"
	TagAttended          = "compareceu"
	TagSaleCompleted     = "venda_realizada"

	// UnassignedAttendant buckets records with no resolvable attendant.
	UnassignedAttendant = "Sem Atendente"
)

// AttendantStats is one attendant's slice of a report.
type AttendantStats struct {
	Appointments int `json:"appointments"`
	Confirmed    int `json:"confirmed"`
	Sales        int `json:"sales"`
}

// Stats is the aggregate computed for one report window. It is ephemeral:
// built fresh per report and never persisted. JSON field names match the
// webhook contract consumed downstream.
type Stats struct {
	TotalAppointments int                       `json:"totalAppointments"`
	ConfirmedVisits   int                       `json:"confirmedVisits"`
	TotalSales        int                       `json:"totalSales"`
	ByAttendant       map[string]AttendantStats `json:"byAttendant"`
}

// Payload is the cadence-specific part of a webhook delivery. The delivery
// engine merges in the envelope fields (timestamp, retryCount).
type Payload struct {
	Type        string `json:"type"`
	ReportDate  string `json:"reportDate"`
	TriggerTime string `json:"triggerTime"`
	Stats       Stats  `json:"stats"`
}
