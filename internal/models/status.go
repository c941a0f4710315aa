package models

// Status represents the lifecycle status of a role
type Status string

// Role lifecycle statuses
const (
	StatusNew          Status = "new"
	StatusApplied      Status = "applied"
	StatusInterviewing Status = "interviewing"
	StatusOffered      Status = "offered"
	StatusClosed       Status = "closed"
)

// statusOrder fixes the lifecycle ordering used when sorting status lists
// for user-facing messages.
var statusOrder = map[Status]int{
	StatusNew:          0,
	StatusApplied:      1,
	StatusInterviewing: 2,
	StatusOffered:      3,
	StatusClosed:       4,
}

// AllStatuses returns every role status in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusNew, StatusApplied, StatusInterviewing, StatusOffered, StatusClosed}
}

// IsValid reports whether s is a known role status.
func (s Status) IsValid() bool {
	_, ok := statusOrder[s]
	return ok
}

// String returns the status as a plain string.
func (s Status) String() string {
	return string(s)
}

// SortStatuses sorts a status list in lifecycle order, in place, and
// returns it.
func SortStatuses(statuses []Status) []Status {
	for i := 1; i < len(statuses); i++ {
		for j := i; j > 0 && statusOrder[statuses[j]] < statusOrder[statuses[j-1]]; j-- {
			statuses[j], statuses[j-1] = statuses[j-1], statuses[j]
		}
	}
	return statuses
}
