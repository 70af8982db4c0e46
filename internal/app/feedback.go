package app

import (
	"context"
	"strconv"
	"strings"

	"github.com/2beens/gymtracker/internal/fitness"
	"github.com/2beens/gymtracker/internal/session"
)

const defaultRating = 3

type asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// promptFeedback asks for the post workout ratings one by one on the
// input line. An empty answer keeps the default rating, anything that is
// not a number is left for the controller to reject.
type promptFeedback struct {
	asker asker
}

var _ session.FeedbackCapturer = (*promptFeedback)(nil)

func newPromptFeedback(asker asker) *promptFeedback {
	return &promptFeedback{asker: asker}
}

func (f *promptFeedback) CaptureFeedback(ctx context.Context) (fitness.Feedback, error) {
	var (
		feedback fitness.Feedback
		err      error
	)
	if feedback.Energy, err = f.rating(ctx, "Energy level"); err != nil {
		return fitness.Feedback{}, err
	}
	if feedback.Mood, err = f.rating(ctx, "Mood"); err != nil {
		return fitness.Feedback{}, err
	}
	if feedback.Motivation, err = f.rating(ctx, "Motivation"); err != nil {
		return fitness.Feedback{}, err
	}

	notes, err := f.asker.Ask(ctx, "Notes (optional)")
	if err != nil {
		return fitness.Feedback{}, err
	}
	feedback.Notes = strings.TrimSpace(notes)
	return feedback, nil
}

func (f *promptFeedback) rating(ctx context.Context, label string) (int, error) {
	answer, err := f.asker.Ask(ctx, label+" (1-5, enter for "+strconv.Itoa(defaultRating)+")")
	if err != nil {
		return 0, err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return defaultRating, nil
	}
	r, err := strconv.Atoi(answer)
	if err != nil {
		return 0, nil
	}
	return r, nil
}
