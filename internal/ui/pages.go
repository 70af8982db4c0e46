package ui

import (
	"github.com/2beens/gymtracker/internal/fitness"
)

// Page identifies one screen of the client.
type Page string

const (
	PageDashboard  Page = "dashboard"
	PageLogWorkout Page = "log-workout"
	PageHistory    Page = "history"
	PageAnalytics  Page = "analytics"
	PageGoals      Page = "goals"
	PageSettings   Page = "settings"
)

// Pages in navigation bar order.
var Pages = []Page{
	PageDashboard,
	PageLogWorkout,
	PageHistory,
	PageAnalytics,
	PageGoals,
	PageSettings,
}

var pageTitles = map[Page]string{
	PageDashboard:  "Dashboard",
	PageLogWorkout: "Log Workout",
	PageHistory:    "History",
	PageAnalytics:  "Analytics",
	PageGoals:      "Goals",
	PageSettings:   "Routines",
}

// pageDependencies lists the collections a page renders from. A push for any
// other collection leaves the page alone.
var pageDependencies = map[Page][]fitness.Collection{
	PageDashboard:  {fitness.CollectionWorkouts},
	PageLogWorkout: {fitness.CollectionRoutines},
	PageHistory:    {fitness.CollectionWorkouts},
	PageAnalytics:  {fitness.CollectionWorkouts},
	PageGoals:      {fitness.CollectionGoals},
	PageSettings:   {fitness.CollectionRoutines},
}

func (p Page) String() string {
	return string(p)
}

func (p Page) Title() string {
	return pageTitles[p]
}

// DependsOn reports whether the page renders data from the collection.
func (p Page) DependsOn(collection fitness.Collection) bool {
	for _, c := range pageDependencies[p] {
		if c == collection {
			return true
		}
	}
	return false
}

// ParsePage maps a page name to a Page, false if there is no such page.
func ParsePage(name string) (Page, bool) {
	p := Page(name)
	if _, ok := pageTitles[p]; !ok {
		return "", false
	}
	return p, true
}
