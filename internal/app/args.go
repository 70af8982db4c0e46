package app

import (
	"errors"
	"strconv"
	"strings"

	"github.com/2beens/gymtracker/internal/fitness"
)

var errUnbalancedQuotes = errors.New("unbalanced quotes")

const msgPickFromList = "Pick a number from the list."

// splitArgs splits a command line on whitespace. Double quotes group words,
// so `exercise-add "Bench Press" Chest` gives three args.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quoted  bool
		inArg   bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			inArg = true
		case !quoted && (r == ' ' || r == '\t'):
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}
	if quoted {
		return nil, errUnbalancedQuotes
	}
	if inArg {
		args = append(args, current.String())
	}
	return args, nil
}

// pick turns a 1-based list number typed by the user into an index of a
// list of length n.
func pick(arg string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || i < 1 || i > n {
		return 0, fitness.NewValidationError(msgPickFromList)
	}
	return i - 1, nil
}

// rest joins the args back into free text, like a routine name.
func rest(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
