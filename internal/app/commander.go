package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/2beens/gymtracker/internal/fitness"
	"github.com/2beens/gymtracker/internal/identity"
	"github.com/2beens/gymtracker/internal/notice"
	"github.com/2beens/gymtracker/internal/session"
	"github.com/2beens/gymtracker/internal/state"
	"github.com/2beens/gymtracker/internal/store"
	"github.com/2beens/gymtracker/internal/telemetry/metrics"
	"github.com/2beens/gymtracker/internal/ui"

	log "github.com/sirupsen/logrus"
)

var errUsage = errors.New("wrong usage")

// Prompter asks the user questions while a command runs.
type Prompter interface {
	Ask(ctx context.Context, question string) (string, error)
	Confirm(ctx context.Context, title, message string) bool
}

// StaticDisplay shows content that belongs to no page.
type StaticDisplay interface {
	ShowStatic(content string)
}

type ProgressAnalyzer interface {
	Analyze(ctx context.Context, userID string, workouts []fitness.Workout) (string, error)
}

type Subscriptions interface {
	SignIn(ctx context.Context, userID string) error
	SignOut()
}

type GoalRefresher interface {
	Refresh(ctx context.Context, userID string, goals []fitness.Goal, workouts []fitness.Workout) (int, error)
}

type CommanderParams struct {
	State          *state.State
	DocStore       store.DocumentStore
	Identity       identity.Provider
	Subscriptions  Subscriptions
	Router         *ui.Router
	Renderer       *ui.Renderer
	Display        StaticDisplay
	Session        *session.Controller
	Goals          GoalRefresher
	// Analyzer is optional, analyze is refused without one.
	Analyzer       ProgressAnalyzer
	Prompter       Prompter
	Notifier       notice.Notifier
	MetricsManager *metrics.Manager
}

// Commander is the ui.Executor of the terminal client. Every command turns
// its failure into a notice, nothing a command does can stop the program.
type Commander struct {
	state          *state.State
	docStore       store.DocumentStore
	identity       identity.Provider
	subscriptions  Subscriptions
	router         *ui.Router
	renderer       *ui.Renderer
	display        StaticDisplay
	session        *session.Controller
	goals          GoalRefresher
	analyzer       ProgressAnalyzer
	prompter       Prompter
	notifier       notice.Notifier
	metricsManager *metrics.Manager

	commands map[string]command
}

var _ ui.Executor = (*Commander)(nil)

type command struct {
	usage     string
	needsUser bool
	run       func(ctx context.Context, args []string) error
}

func NewCommander(params CommanderParams) *Commander {
	c := &Commander{
		state:          params.State,
		docStore:       params.DocStore,
		identity:       params.Identity,
		subscriptions:  params.Subscriptions,
		router:         params.Router,
		renderer:       params.Renderer,
		display:        params.Display,
		session:        params.Session,
		goals:          params.Goals,
		analyzer:       params.Analyzer,
		prompter:       params.Prompter,
		notifier:       params.Notifier,
		metricsManager: params.MetricsManager,
	}

	c.commands = map[string]command{
		// account
		"signup":  {usage: "signup <email> [password]", run: c.signUp},
		"signin":  {usage: "signin <email> [password]", run: c.signIn},
		"signout": {usage: "signout", needsUser: true, run: c.signOut},

		// navigation
		"go":   {usage: "go <page>", run: c.goTo},
		"next": {usage: "next", run: c.nextPage},
		"prev": {usage: "prev", run: c.prevPage},
		"help": {usage: "help", run: c.help},

		// workout session
		"start":  {usage: "start <routine>", needsUser: true, run: c.start},
		"set":    {usage: "set <exercise> <kg> <reps>", needsUser: true, run: c.addSet},
		"unset":  {usage: "unset <exercise> <set>", needsUser: true, run: c.removeSet},
		"finish": {usage: "finish", needsUser: true, run: c.finish},
		"cancel": {usage: "cancel", needsUser: true, run: c.cancel},

		// routines
		"routine":         {usage: "routine <routine>", needsUser: true, run: c.selectRoutine},
		"routine-add":     {usage: "routine-add <name>", needsUser: true, run: c.addRoutine},
		"routine-rename":  {usage: "routine-rename <routine> <name>", needsUser: true, run: c.renameRoutine},
		"routine-delete":  {usage: "routine-delete <routine>", needsUser: true, run: c.deleteRoutine},
		"exercise-add":    {usage: "exercise-add <name> [muscle]", needsUser: true, run: c.addExercise},
		"exercise-edit":   {usage: "exercise-edit <exercise> <name> [muscle]", needsUser: true, run: c.editExercise},
		"exercise-remove": {usage: "exercise-remove <exercise>", needsUser: true, run: c.removeExercise},

		// goals, history, analytics
		"goal-add":       {usage: "goal-add <exercise> <kg> <YYYY-MM-DD>", needsUser: true, run: c.addGoal},
		"goal-delete":    {usage: "goal-delete <goal>", needsUser: true, run: c.deleteGoal},
		"show":           {usage: "show <workout>", needsUser: true, run: c.showWorkout},
		"delete-workout": {usage: "delete-workout <workout>", needsUser: true, run: c.deleteWorkout},
		"chart":          {usage: "chart <exercise>", needsUser: true, run: c.chart},
		"analyze":        {usage: "analyze", needsUser: true, run: c.analyze},
	}

	return c
}

// Execute runs one command line.
func (c *Commander) Execute(ctx context.Context, line string) {
	args, err := splitArgs(line)
	if err != nil {
		c.notifier.Notify("Unbalanced quotes in the command.", false)
		return
	}
	if len(args) == 0 {
		return
	}

	name := strings.ToLower(args[0])
	cmd, ok := c.commands[name]
	if !ok {
		c.notifier.Notify(fmt.Sprintf("Unknown command: %s. Type help to see all commands.", args[0]), false)
		return
	}
	if cmd.needsUser && c.state.UserID() == "" {
		c.notifier.Notify("Sign in first.", false)
		return
	}

	log.Debugf("commander: running [%s] with %d args", name, len(args)-1)
	if err := cmd.run(ctx, args[1:]); err != nil {
		c.report(cmd, err)
	}
}

func (c *Commander) report(cmd command, err error) {
	var f *failure
	switch {
	case errors.Is(err, errUsage):
		c.notifier.Notify("Usage: "+cmd.usage, false)
	case errors.Is(err, ui.ErrPromptCancelled), errors.Is(err, context.Canceled):
		log.Debugf("commander: [%s] cancelled", cmd.usage)
	case fitness.IsValidationError(err):
		c.notifier.Notify(err.Error(), false)
	case errors.As(err, &f):
		log.Errorf("commander: [%s]: %s", cmd.usage, f.err)
		c.notifier.Notify(f.message, false)
	default:
		log.Errorf("commander: [%s]: %s", cmd.usage, err)
		c.notifier.Notify("Something went wrong. Try again.", false)
	}
}

// failure carries the message the user sees for an error they can do
// nothing about, like a store write that did not go through.
type failure struct {
	message string
	err     error
}

func (f *failure) Error() string {
	return f.message + ": " + f.err.Error()
}

func (f *failure) Unwrap() error {
	return f.err
}

func (c *Commander) storeFailure(op, message string, err error) error {
	c.metricsManager.CounterStoreErrors.WithLabelValues(op).Inc()
	return &failure{
		message: message,
		err:     fmt.Errorf("%s: %w", op, err),
	}
}

func (c *Commander) goTo(_ context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	page, ok := ui.ParsePage(args[0])
	if !ok {
		return fitness.NewValidationError("Unknown page: " + args[0])
	}
	c.router.Navigate(page)
	return nil
}

func (c *Commander) nextPage(_ context.Context, _ []string) error {
	c.router.Navigate(c.pageAt(1))
	return nil
}

func (c *Commander) prevPage(_ context.Context, _ []string) error {
	c.router.Navigate(c.pageAt(-1))
	return nil
}

func (c *Commander) pageAt(offset int) ui.Page {
	active := c.router.Active()
	for i, p := range ui.Pages {
		if p == active {
			n := len(ui.Pages)
			return ui.Pages[((i+offset)%n+n)%n]
		}
	}
	return ui.PageDashboard
}

func (c *Commander) help(_ context.Context, _ []string) error {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	c.notifier.Notify("Commands: "+strings.Join(names, ", ")+", quit", true)
	return nil
}
