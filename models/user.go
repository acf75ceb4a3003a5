package models

import "time"

// User is the profile of the signed-in account as reported by the remote API.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Session is the locally persisted sign-in state: the bearer token plus the
// profile it was issued for.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	SavedAt   time.Time `json:"savedAt"`
}

// ReportPeriod selects the time window of a generated watch report.
type ReportPeriod string

const (
	ReportAll   ReportPeriod = "all"
	ReportYear  ReportPeriod = "year"
	ReportMonth ReportPeriod = "month"
	ReportWeek  ReportPeriod = "week"
)

// Valid reports whether the period is one of the supported windows.
func (p ReportPeriod) Valid() bool {
	switch p {
	case ReportAll, ReportYear, ReportMonth, ReportWeek:
		return true
	}
	return false
}
