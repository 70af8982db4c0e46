package fitness_test

import (
	"testing"

	"github.com/2beens/gymtracker/internal/fitness"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRoutines(t *testing.T) {
	routines, err := fitness.DefaultRoutines()
	require.NoError(t, err)
	require.Len(t, routines, 5)

	for _, r := range routines {
		assert.NotEmpty(t, r.Name)
		assert.NotEmpty(t, r.Exercises, r.Name)
		for _, ex := range r.Exercises {
			assert.NotEmpty(t, ex.Name)
			assert.NotEmpty(t, ex.Muscle)
		}
	}
	assert.Equal(t, "Bench Press", routines[0].Exercises[0].Name)
}

func TestParseRoutines_DefaultsMuscle(t *testing.T) {
	routines, err := fitness.ParseRoutines([]byte(`
- name: Quick
  exercises:
    - name: Burpee
- name: Rest Day
`))
	require.NoError(t, err)
	require.Len(t, routines, 2)
	assert.Equal(t, fitness.DefaultMuscle, routines[0].Exercises[0].Muscle)
	assert.NotNil(t, routines[1].Exercises)
}

func TestParseRoutines_MissingName(t *testing.T) {
	_, err := fitness.ParseRoutines([]byte(`- exercises: []`))
	require.Error(t, err)

	_, err = fitness.ParseRoutines([]byte(`{not: a list`))
	require.Error(t, err)
}
