package webapp

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ldsaas/portal/internal/api"
	"github.com/ldsaas/portal/internal/invite"
)

type courseView struct {
	ID           int
	Name         string
	Provider     string
	Description  string
	Duration     string
	Skills       string
	Competencies string
	ImageURL     string
	Enrolled     bool
	Status       string
}

type enrollmentView struct {
	ID           int
	CourseName   string
	EmployeeName string
	Status       string
	Progress     int
	Deadline     string
}

type teamMemberView struct {
	ID        int
	Name      string
	Email     string
	Completed int
}

type teamStatsView struct {
	TeamSize       int
	Active         int
	Completed      int
	CompletionRate int
}

type profileView struct {
	api.Profile
}

type refView struct {
	ID       int
	Name     string
	Selected bool
}

type dependentView struct {
	ID           int
	Name         string
	Relationship string
	DateOfBirth  string
}

type recipientView struct {
	Email string
	Name  string
	Role  string
}

type logEntryView struct {
	At      string
	Message string
}

func courseViews(courses []api.Course, mine []api.Enrollment) []courseView {
	byCourse := map[int]api.Enrollment{}
	for _, e := range mine {
		byCourse[e.CourseID] = e
	}
	out := make([]courseView, 0, len(courses))
	for _, c := range courses {
		duration := ""
		if c.Duration > 0 {
			duration = fmt.Sprintf("%d %s", c.Duration, c.DurationUnit)
		}
		view := courseView{
			ID:           c.ID,
			Name:         c.Name,
			Provider:     c.Provider,
			Description:  c.Description,
			Duration:     duration,
			Skills:       c.Skills,
			Competencies: c.Competencies,
			ImageURL:     c.ImageURL,
		}
		if e, ok := byCourse[c.ID]; ok {
			view.Enrolled = true
			view.Status = e.Status
		}
		out = append(out, view)
	}
	return out
}

// filterCourses narrows the catalog by a free-text query over name, provider
// and description, and by one skill tag.
func filterCourses(courses []courseView, query, skill string) []courseView {
	query = strings.ToLower(strings.TrimSpace(query))
	skill = strings.ToLower(strings.TrimSpace(skill))
	if query == "" && skill == "" {
		return courses
	}
	out := make([]courseView, 0, len(courses))
	for _, c := range courses {
		if query != "" {
			haystack := strings.ToLower(c.Name + " " + c.Provider + " " + c.Description)
			if !strings.Contains(haystack, query) {
				continue
			}
		}
		if skill != "" && !containsTag(c.Skills+","+c.Competencies, skill) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func containsTag(tags, want string) bool {
	for _, tag := range strings.Split(tags, ",") {
		if strings.ToLower(strings.TrimSpace(tag)) == want {
			return true
		}
	}
	return false
}

// skillOptions collects the distinct skill and competency tags across the
// catalog for the feed's filter select.
func skillOptions(courses []courseView) []string {
	seen := map[string]string{}
	for _, c := range courses {
		for _, tag := range strings.Split(c.Skills+","+c.Competencies, ",") {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				seen[strings.ToLower(tag)] = tag
			}
		}
	}
	out := make([]string, 0, len(seen))
	for _, tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

func enrollmentViews(enrollments []api.Enrollment) []enrollmentView {
	out := make([]enrollmentView, 0, len(enrollments))
	for _, e := range enrollments {
		view := enrollmentView{
			ID:       e.ID,
			Status:   e.Status,
			Progress: int(e.Progress),
			Deadline: e.Deadline,
		}
		if e.Course != nil {
			view.CourseName = e.Course.Name
		}
		if e.Employee != nil {
			view.EmployeeName = e.Employee.Name
		}
		out = append(out, view)
	}
	return out
}

// teamViews lists the team ordered by completed-course count, busiest
// learners first.
func teamViews(team []api.User, enrollments []api.Enrollment) []teamMemberView {
	completedBy := map[int]int{}
	for _, e := range enrollments {
		if strings.EqualFold(e.Status, "completed") {
			completedBy[e.EmployeeID]++
		}
	}
	out := make([]teamMemberView, 0, len(team))
	for _, member := range team {
		out = append(out, teamMemberView{
			ID:        member.ID,
			Name:      member.Name,
			Email:     member.Email,
			Completed: completedBy[member.ID],
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Completed > out[j].Completed })
	return out
}

func teamStats(team []api.User, enrollments []api.Enrollment) teamStatsView {
	stats := teamStatsView{TeamSize: len(team)}
	for _, e := range enrollments {
		if strings.EqualFold(e.Status, "completed") {
			stats.Completed++
		} else {
			stats.Active++
		}
	}
	if total := len(enrollments); total > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.Completed) / float64(total) * 100))
	}
	return stats
}

func refViews(refs []api.NamedRef, selected *int) []refView {
	out := make([]refView, 0, len(refs))
	for _, ref := range refs {
		out = append(out, refView{
			ID:       ref.ID,
			Name:     ref.Name,
			Selected: selected != nil && *selected == ref.ID,
		})
	}
	return out
}

func dependentViews(deps []api.Dependent) []dependentView {
	out := make([]dependentView, 0, len(deps))
	for _, d := range deps {
		out = append(out, dependentView{
			ID:           d.ID,
			Name:         d.Name,
			Relationship: d.Relationship,
			DateOfBirth:  d.DateOfBirth,
		})
	}
	return out
}

func recipientViews(recipients []invite.Recipient) []recipientView {
	out := make([]recipientView, 0, len(recipients))
	for _, rec := range recipients {
		out = append(out, recipientView{Email: rec.Email, Name: rec.Name, Role: rec.Role})
	}
	return out
}

func logEntryViews(entries []invite.Entry) []logEntryView {
	out := make([]logEntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, logEntryView{At: e.At.Format("15:04:05"), Message: e.Message})
	}
	return out
}
