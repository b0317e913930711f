package models

// ScheduleEntry is one row of the schedule table: a single doctor on a
// single day. A doctor working three days has three entries. By convention
// every entry for the same doctor carries the same department; the admin
// grid is the source of truth and the schema does not enforce it.
type ScheduleEntry struct {
	ID            int64  `db:"id" json:"id"`
	DoctorName    string `db:"doctor_name" json:"doctor_name"`
	Department    string `db:"department" json:"department"`
	Day           string `db:"day" json:"day"`
	ScheduleTime  string `db:"schedule_time" json:"schedule_time"`
	CurrentStatus string `db:"current_status" json:"current_status"`
}

// DoctorOverview is the one-row-per-doctor summary used for the system prompt.
type DoctorOverview struct {
	DoctorName string `db:"doctor_name" json:"doctor_name"`
	Department string `db:"department" json:"department"`
}

const (
	StatusAvailable      = "Available"
	StatusOnLeave        = "ON LEAVE"
	StatusEmergencyLeave = "Emergency Leave"
)

// DayDaily marks an entry valid on every weekday.
const DayDaily = "Daily"

// DayAll is not a stored day: it is the mutation scope meaning "every row
// for this doctor".
const DayAll = "ALL"
