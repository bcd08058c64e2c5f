package mines

import (
	"fmt"
	"strings"
)

type Difficulty int

const (
	Beginner Difficulty = iota
	Intermediate
	Expert
	Custom
)

var presets = map[Difficulty]GameParams{
	Beginner:     {Rows: 8, Cols: 8, HazardCount: 10},
	Intermediate: {Rows: 16, Cols: 16, HazardCount: 40},
	Expert:       {Rows: 16, Cols: 30, HazardCount: 99},
}

func (d Difficulty) String() string {
	switch d {
	case Beginner:
		return "beginner"
	case Intermediate:
		return "intermediate"
	case Expert:
		return "expert"
	case Custom:
		return "custom"
	default:
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
}

func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return Beginner, nil
	case "intermediate":
		return Intermediate, nil
	case "expert":
		return Expert, nil
	case "custom":
		return Custom, nil
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}

// Preset returns the fixed parameters of a named difficulty. ok is false for
// [Custom] and unknown values.
func Preset(d Difficulty) (params GameParams, ok bool) {
	params, ok = presets[d]
	return
}

// Presets lists the fixed difficulties in increasing order.
func Presets() []Difficulty {
	return []Difficulty{Beginner, Intermediate, Expert}
}

// Resolve maps a difficulty to validated game parameters. custom is only
// consulted for [Custom] and is validated under the same rules as
// [NewGrid]; invalid values are reported, never adjusted.
func Resolve(d Difficulty, custom GameParams) (GameParams, error) {
	if d == Custom {
		if err := custom.Validate(); err != nil {
			return GameParams{}, err
		}
		return custom, nil
	}
	params, ok := Preset(d)
	if !ok {
		return GameParams{}, &ConfigurationError{custom, "unknown difficulty " + d.String()}
	}
	return params, nil
}
