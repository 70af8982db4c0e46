package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/2beens/gymtracker/internal/fitness"
	"github.com/2beens/gymtracker/internal/state"
	"github.com/2beens/gymtracker/internal/stats"

	"github.com/charmbracelet/lipgloss"
)

const (
	dateLayout     = "January 2, 2006"
	timeLayout     = "January 2, 2006 15:04"
	topRecords     = 5
	chartBarWidth  = 30
	aiAnalysisDays = 30
	aiCardWidth    = 80
)

// Renderer holds the page render funcs. The only thing it keeps between
// renders is what the user selected on a page (analytics exercise, settings
// routine, history workout details).
type Renderer struct {
	mutex    sync.Mutex
	selected map[Page]string
	analysis string
}

func NewRenderer() *Renderer {
	return &Renderer{
		selected: make(map[Page]string),
	}
}

// Renderers returns the render func of every page.
func (rd *Renderer) Renderers() map[Page]RenderFunc {
	return map[Page]RenderFunc{
		PageDashboard:  rd.Dashboard,
		PageLogWorkout: rd.LogWorkout,
		PageHistory:    rd.History,
		PageAnalytics:  rd.Analytics,
		PageGoals:      rd.Goals,
		PageSettings:   rd.Settings,
	}
}

// Select remembers a selection for the page, empty clears it.
func (rd *Renderer) Select(page Page, key string) {
	rd.mutex.Lock()
	defer rd.mutex.Unlock()
	if key == "" {
		delete(rd.selected, page)
		return
	}
	rd.selected[page] = key
}

func (rd *Renderer) Selected(page Page) string {
	rd.mutex.Lock()
	defer rd.mutex.Unlock()
	return rd.selected[page]
}

// SetAnalysis keeps the latest AI analysis for the dashboard card.
func (rd *Renderer) SetAnalysis(text string) {
	rd.mutex.Lock()
	defer rd.mutex.Unlock()
	rd.analysis = text
}

// Reset forgets selections and the analysis, used when the user changes.
func (rd *Renderer) Reset() {
	rd.mutex.Lock()
	defer rd.mutex.Unlock()
	rd.selected = make(map[Page]string)
	rd.analysis = ""
}

func (rd *Renderer) Dashboard(v state.View) string {
	if !v.SignedIn() {
		return signedOut()
	}

	var b strings.Builder
	b.WriteString(pageTitle("Dashboard", "Hi! Here is your fitness summary."))

	if stagnant := stats.StagnationCheck(v.Workouts); len(stagnant) > 0 {
		lines := []string{
			"! Stagnation alert",
			"You seem to be stuck on these exercises. Consider varying the routine or taking a deload week.",
		}
		for _, s := range stagnant {
			lines = append(lines, fmt.Sprintf("  - %s (%s kg)", s.Exercise, kg(s.Weight)))
		}
		b.WriteString(alertStyle.Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}

	var last string
	if w, ok := stats.LastWorkout(v.Workouts); ok {
		last = strings.Join([]string{
			headingStyle.Render("Last workout"),
			valueStyle.Render(w.RoutineName),
			mutedStyle.Render(w.Date.Format(dateLayout)),
			fmt.Sprintf("%.0f kg total volume", stats.WorkoutVolume(w)),
		}, "\n")
	} else {
		last = headingStyle.Render("Last workout") + "\n" + mutedStyle.Render("No workouts logged yet.")
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		cardStyle.Render(last),
		cardStyle.Render(statCard("Total workouts", strconv.Itoa(len(v.Workouts)), "Logged sessions")),
		cardStyle.Render(statCard("Weekly volume",
			fmt.Sprintf("%.0f kg", stats.WeeklyVolume(v.Workouts, v.Now)), "Total load in the last 7 days")),
	)
	b.WriteString(cards)
	b.WriteString("\n")

	records := stats.PersonalRecords(v.Workouts)
	prLines := []string{headingStyle.Render("Personal records")}
	if len(records) == 0 {
		prLines = append(prLines, mutedStyle.Render("Log workouts to see your records."))
	}
	for i, r := range records {
		if i == topRecords {
			break
		}
		prLines = append(prLines, fmt.Sprintf("%-28s %s", r.Exercise, valueStyle.Render(fmt.Sprintf("%s kg x %d reps", kg(r.Weight), r.Reps))))
	}
	b.WriteString(cardStyle.Render(strings.Join(prLines, "\n")))
	b.WriteString("\n")

	rd.mutex.Lock()
	analysis := rd.analysis
	rd.mutex.Unlock()
	aiLines := []string{headingStyle.Render("AI analysis")}
	if analysis == "" {
		aiLines = append(aiLines, mutedStyle.Render(fmt.Sprintf("Get insights on your progress over the last %d days.", aiAnalysisDays)))
	} else {
		aiLines = append(aiLines, lipgloss.NewStyle().Width(aiCardWidth).Render(analysis))
	}
	aiLines = append(aiLines, hintStyle.Render("analyze"))
	b.WriteString(cardStyle.Render(strings.Join(aiLines, "\n")))
	return b.String()
}

func (rd *Renderer) LogWorkout(v state.View) string {
	if !v.SignedIn() {
		return signedOut()
	}

	var b strings.Builder
	if w := v.CurrentWorkout; w != nil {
		b.WriteString(pageTitle(w.RoutineName, "Started at "+w.Date.Local().Format(timeLayout)))
		for i, ex := range w.Exercises {
			lines := []string{headingStyle.Render(fmt.Sprintf("%d. %s", i+1, ex.Name))}
			if len(ex.Sets) == 0 {
				lines = append(lines, mutedStyle.Render("No sets yet."))
			}
			for j, s := range ex.Sets {
				lines = append(lines, fmt.Sprintf("Set %d: %s x %s", j+1, valueStyle.Render(kg(s.Weight)+" kg"), valueStyle.Render(fmt.Sprintf("%d reps", s.Reps))))
			}
			b.WriteString(cardStyle.Render(strings.Join(lines, "\n")))
			b.WriteString("\n")
		}
		b.WriteString(hintStyle.Render("set <exercise> <kg> <reps>  unset <exercise> <set>  finish  cancel"))
		return b.String()
	}

	b.WriteString(pageTitle("Log Workout", "Pick a routine to start."))
	if len(v.Routines) == 0 {
		b.WriteString(cardStyle.Render(mutedStyle.Render("No routines yet. Create one on the routines page.")))
		return b.String()
	}
	for i, r := range v.Routines {
		b.WriteString(cardStyle.Render(fmt.Sprintf("%s\n%s",
			valueStyle.Render(fmt.Sprintf("%d. %s", i+1, r.Name)),
			mutedStyle.Render(fmt.Sprintf("%d exercises", len(r.Exercises))),
		)))
		b.WriteString("\n")
	}
	b.WriteString(hintStyle.Render("start <routine>"))
	return b.String()
}

func (rd *Renderer) History(v state.View) string {
	if !v.SignedIn() {
		return signedOut()
	}

	var b strings.Builder
	b.WriteString(pageTitle("Workout History", "All your logged workouts."))
	if len(v.Workouts) == 0 {
		b.WriteString(cardStyle.Render(mutedStyle.Render("No workouts logged yet. Go to log-workout to start!")))
		return b.String()
	}

	sorted := stats.SortByDate(v.Workouts, true)
	selected := rd.Selected(PageHistory)
	for i, w := range sorted {
		line := fmt.Sprintf("%s\n%s", valueStyle.Render(fmt.Sprintf("%d. %s", i+1, w.RoutineName)), mutedStyle.Render(w.Date.Format(dateLayout)))
		b.WriteString(cardStyle.Render(line))
		b.WriteString("\n")
		if w.ID == selected {
			b.WriteString(workoutDetails(w))
			b.WriteString("\n")
		}
	}
	b.WriteString(hintStyle.Render("show <workout>  delete-workout <workout>"))
	return b.String()
}

func workoutDetails(w fitness.Workout) string {
	lines := []string{
		headingStyle.Render(w.RoutineName),
		mutedStyle.Render(fmt.Sprintf("Total volume: %.0f kg", stats.WorkoutVolume(w))),
	}
	for _, ex := range w.Exercises {
		if len(ex.Sets) == 0 {
			continue
		}
		lines = append(lines, valueStyle.Render(ex.Name))
		for i, s := range ex.Sets {
			lines = append(lines, fmt.Sprintf("  Set %d: %s kg x %d reps", i+1, kg(s.Weight), s.Reps))
		}
	}

	lines = append(lines, headingStyle.Render("Feedback"))
	if w.Feedback.IsEmpty() {
		lines = append(lines, mutedStyle.Render("No feedback recorded."))
	} else {
		lines = append(lines, fmt.Sprintf("Energy: %s  Mood: %s  Motivation: %s",
			stars(w.Feedback.Energy), stars(w.Feedback.Mood), stars(w.Feedback.Motivation)))
		if w.Feedback.Notes != "" {
			lines = append(lines, "Notes: "+w.Feedback.Notes)
		}
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func (rd *Renderer) Analytics(v state.View) string {
	if !v.SignedIn() {
		return signedOut()
	}

	var b strings.Builder
	b.WriteString(pageTitle("Analytics", "Dig into your performance data."))
	names := stats.ExerciseNames(v.Workouts)
	if len(names) == 0 {
		b.WriteString(cardStyle.Render(mutedStyle.Render("Log some workouts to see your analytics.")))
		return b.String()
	}

	selected := rd.Selected(PageAnalytics)
	found := false
	for _, n := range names {
		if n == selected {
			found = true
			break
		}
	}
	if !found {
		selected = names[0]
	}

	b.WriteString(mutedStyle.Render("Exercises: "))
	for i, n := range names {
		if i > 0 {
			b.WriteString(mutedStyle.Render(", "))
		}
		if n == selected {
			b.WriteString(valueStyle.Render(n))
		} else {
			b.WriteString(mutedStyle.Render(n))
		}
	}
	b.WriteString("\n")

	series := stats.ProgressSeries(v.Workouts, selected)
	maxWeight := 0.0
	for _, p := range series {
		maxWeight = math.Max(maxWeight, p.MaxWeight)
	}
	lines := []string{headingStyle.Render(selected + ": max weight per workout")}
	for _, p := range series {
		bar := 0
		if maxWeight > 0 {
			bar = int(math.Round(p.MaxWeight / maxWeight * chartBarWidth))
		}
		lines = append(lines, fmt.Sprintf("%s %s %s kg  (%.0f kg volume)",
			mutedStyle.Render(p.Date.Format(fitness.DateLayout)),
			successStyle.Render(strings.Repeat("█", bar)),
			kg(p.MaxWeight), p.Volume))
	}
	b.WriteString(cardStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("chart <exercise>"))
	return b.String()
}

func (rd *Renderer) Goals(v state.View) string {
	if !v.SignedIn() {
		return signedOut()
	}

	var b strings.Builder
	b.WriteString(pageTitle("My Goals", "Set and track your targets."))
	if len(v.Goals) == 0 {
		b.WriteString(cardStyle.Render(mutedStyle.Render("You have not set any goals yet. Use goal-add to create one!")))
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("goal-add <exercise> <kg> <YYYY-MM-DD>"))
		return b.String()
	}

	for i, g := range v.Goals {
		progress := stats.GoalProgress(g)
		filled := int(math.Round(progress / 100 * chartBarWidth))
		lines := []string{
			fmt.Sprintf("%s  %s", valueStyle.Render(fmt.Sprintf("%d. %s", i+1, g.ExerciseName)), headingStyle.Render(kg(g.TargetWeight)+" kg")),
			fmt.Sprintf("Progress %s %.0f%%",
				successStyle.Render(strings.Repeat("█", filled))+mutedStyle.Render(strings.Repeat("░", chartBarWidth-filled)),
				progress),
			mutedStyle.Render(fmt.Sprintf("Start: %s kg   Current: %s kg", kg(g.StartingWeight), kg(g.CurrentWeight))),
			mutedStyle.Render(fmt.Sprintf("%d days left (target: %s)", stats.DaysLeft(g, v.Now), g.TargetDate.Format(dateLayout))),
		}
		b.WriteString(cardStyle.Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}
	b.WriteString(hintStyle.Render("goal-add <exercise> <kg> <YYYY-MM-DD>  goal-delete <goal>"))
	return b.String()
}

func (rd *Renderer) Settings(v state.View) string {
	if !v.SignedIn() {
		return signedOut()
	}

	var b strings.Builder
	b.WriteString(pageTitle("Routines & Exercises", "Manage your workouts."))

	routineLines := []string{headingStyle.Render("My routines")}
	if len(v.Routines) == 0 {
		routineLines = append(routineLines, mutedStyle.Render("No routines yet."))
	}
	for i, r := range v.Routines {
		routineLines = append(routineLines, fmt.Sprintf("%d. %s", i+1, r.Name))
	}

	var exerciseLines []string
	if len(v.Routines) == 0 {
		exerciseLines = []string{
			headingStyle.Render("Routine exercises"),
			mutedStyle.Render("Create a routine first to add exercises."),
		}
	} else {
		routine := v.Routines[0]
		if id := rd.Selected(PageSettings); id != "" {
			for _, r := range v.Routines {
				if r.ID == id {
					routine = r
					break
				}
			}
		}
		exerciseLines = []string{headingStyle.Render("Exercises in " + routine.Name)}
		if len(routine.Exercises) == 0 {
			exerciseLines = append(exerciseLines, mutedStyle.Render("No exercises in this routine."))
		}
		for i, ex := range routine.Exercises {
			exerciseLines = append(exerciseLines, fmt.Sprintf("%d. %s %s", i+1, ex.Name, mutedStyle.Render("("+ex.Muscle+")")))
		}
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		cardStyle.Render(strings.Join(routineLines, "\n")),
		cardStyle.Render(strings.Join(exerciseLines, "\n")),
	))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("routine-add <name>  routine-rename <routine> <name>  routine-delete <routine>  routine <routine>\n" +
		"exercise-add <name> [muscle]  exercise-edit <exercise> <name> [muscle]  exercise-remove <exercise>"))
	return b.String()
}

func pageTitle(title, subtitle string) string {
	return titleStyle.Render(title) + "\n" + subtitleStyle.Render(subtitle) + "\n\n"
}

func statCard(label, value, subtext string) string {
	return strings.Join([]string{
		mutedStyle.Render(label),
		valueStyle.Render(value),
		mutedStyle.Render(subtext),
	}, "\n")
}

func signedOut() string {
	return mutedStyle.Render("Sign in to see your data.")
}

func kg(weight float64) string {
	return strconv.FormatFloat(weight, 'f', -1, 64)
}

func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}
