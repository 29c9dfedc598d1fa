package permission

// Level is an ordered permission level. Comparisons use the numeric order,
// so "can B do X" checks are a single >=.
type Level int

const (
	LevelView Level = iota + 1
	LevelEdit
	LevelAdmin
)

var levelNames = map[Level]string{
	LevelView:  "view",
	LevelEdit:  "edit",
	LevelAdmin: "admin",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// AtLeast reports whether l satisfies the required level
func (l Level) AtLeast(required Level) bool {
	return l >= required
}

// ParseLevel maps a stored level string to a Level. Unknown strings are
// rejected rather than defaulted: absence of a valid level never grants
// access.
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "view":
		return LevelView, true
	case "edit":
		return LevelEdit, true
	case "admin":
		return LevelAdmin, true
	default:
		return 0, false
	}
}
