package groupstatus

import "strings"

type Status struct {
	Name string
}

func (s Status) Code() string {
	return s.Name
}

func (s Status) Label() string {
	if s.Name == "" {
		return ""
	}
	return strings.ToUpper(s.Name[:1]) + strings.ToLower(s.Name[1:])
}

type Enum struct {
	Active    Status
	Completed Status
}

var Statuses = Enum{
	Active:    Status{Name: "ACTIVE"},
	Completed: Status{Name: "COMPLETED"},
}

var All = []Status{
	Statuses.Active,
	Statuses.Completed,
}

// ByName returns the status for a given name, ignoring case, or nil if not found
func ByName(name string) *Status {
	for _, s := range All {
		if strings.EqualFold(s.Name, name) {
			return &s
		}
	}
	return nil
}
