package api

// ResultKind tags the outcome of a schedule query resolution.
type ResultKind string

const (
	KindFullSchedule ResultKind = "full_schedule"
	KindDoctor       ResultKind = "doctor"
	KindDepartment   ResultKind = "department"
	KindNotFound     ResultKind = "not_found"
)

// ShapedAvailability is the reader-facing form of a schedule row. When the
// doctor is available, Availability is the raw working-hours string;
// otherwise it is "Currently <status> (Standard Time: <hours>)".
type ShapedAvailability struct {
	Doctor       string `json:"doctor"`
	Day          string `json:"day"`
	Status       string `json:"status"`
	Availability string `json:"availability"`
	IsActive     bool   `json:"is_active"`
}

// ScheduleResult is the payload handed to the dialogue layer (or any other
// caller) after a query has been resolved. Exactly one interpretation is
// present: full schedule, a doctor/department match, or not-found with the
// list of departments as a recovery hint. Raw fuzzy scores never appear here.
type ScheduleResult struct {
	Kind             ResultKind           `json:"type"`
	MatchKey         string               `json:"match_key,omitempty"`
	Rows             []ShapedAvailability `json:"data,omitempty"`
	ValidDepartments []string             `json:"valid_departments,omitempty"`
}

// UpdateResult reports a status mutation. Message names the resolved doctor
// and scope and is safe to relay to the admin verbatim.
type UpdateResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type QueryRequest struct {
	Query string `json:"query"`
}

type StatusUpdateRequest struct {
	DoctorName string `json:"doctor_name"`
	Status     string `json:"status"`
	Day        string `json:"day,omitempty"`
}

// ScheduleEntryPayload is one grid row in a whole-table replace. IDs are
// reassigned on save.
type ScheduleEntryPayload struct {
	DoctorName    string `json:"doctor_name"`
	Department    string `json:"department"`
	Day           string `json:"day"`
	ScheduleTime  string `json:"schedule_time"`
	CurrentStatus string `json:"current_status"`
}

type ReplaceScheduleRequest struct {
	Entries []ScheduleEntryPayload `json:"entries"`
}

type AdminCommandRequest struct {
	Command string `json:"command"`
}
