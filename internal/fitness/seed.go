package fitness

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed routines.yaml
var defaultRoutinesYAML []byte

// DefaultRoutines returns the routines every new account starts with.
func DefaultRoutines() ([]Routine, error) {
	return ParseRoutines(defaultRoutinesYAML)
}

// ParseRoutines reads a YAML list of routines. Exercises without a muscle get DefaultMuscle.
func ParseRoutines(data []byte) ([]Routine, error) {
	var routines []Routine
	if err := yaml.Unmarshal(data, &routines); err != nil {
		return nil, fmt.Errorf("unmarshal routines: %w", err)
	}
	for i := range routines {
		if routines[i].Name == "" {
			return nil, fmt.Errorf("routine #%d: missing name", i+1)
		}
		if routines[i].Exercises == nil {
			routines[i].Exercises = []Exercise{}
		}
		for j := range routines[i].Exercises {
			if routines[i].Exercises[j].Muscle == "" {
				routines[i].Exercises[j].Muscle = DefaultMuscle
			}
		}
	}
	return routines, nil
}
