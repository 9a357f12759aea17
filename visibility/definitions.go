package visibility

import "fmt"

// Level is the ordered access tier of a catalog entry. Anyone whose clearance
// is below an entry's level cannot read it, with the exception of the owner,
// who always can.
type Level int

const (
	LevelPrivate       Level = 0 // owner only
	LevelShared        Level = 1 // reserved for a future group model; owner only until then
	LevelAuthenticated Level = 2 // any signed-in user
	LevelPublic        Level = 3 // anyone, including anonymous callers
)

var levelNames = map[Level]string{
	LevelPrivate:       "private",
	LevelShared:        "shared",
	LevelAuthenticated: "authenticated",
	LevelPublic:        "public",
}

// Valid reports whether l is one of the four defined levels.
func (l Level) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("visibility(%d)", int(l))
}

// ParseLevel maps a level name to its Level. Unknown names are rejected so
// that invalid values never reach a write.
func ParseLevel(name string) (Level, error) {
	for level, n := range levelNames {
		if n == name {
			return level, nil
		}
	}
	return 0, fmt.Errorf("unknown visibility level %q", name)
}

// MarshalJSON serializes levels by name; the numeric ordering is a storage
// detail.
func (l Level) MarshalJSON() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid visibility level %d", int(l))
	}
	return []byte(`"` + levelNames[l] + `"`), nil
}

func (l *Level) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("visibility level must be a JSON string")
	}
	parsed, err := ParseLevel(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
