package severity

type Severity struct {
	Name string
	Rank int
}

func (s Severity) Code() string {
	return s.Name
}

type Enum struct {
	High   Severity
	Medium Severity
}

var Levels = Enum{
	High:   Severity{Name: "HIGH", Rank: 2},
	Medium: Severity{Name: "MEDIUM", Rank: 1},
}

var All = []Severity{
	Levels.High,
	Levels.Medium,
}

// ByName returns the severity for a given name, or nil if not found
func ByName(name string) *Severity {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}
