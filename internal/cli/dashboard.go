package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/jrsteele09/go-college-portal/apiclient"
	"github.com/jrsteele09/go-college-portal/navigation"
	"github.com/jrsteele09/go-college-portal/portal"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the dashboard for your role",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return runDashboard(cmd.Context(), a)
		})
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(ctx context.Context, a *app) error {
	ok, err := a.session.Authenticated(ctx)
	if err != nil {
		return err
	}
	if !ok {
		a.session.RedirectToRoleDashboard()
		return errNotLoggedIn
	}

	switch a.session.Destination() {
	case navigation.Student:
		d := a.api.LoadStudentDashboard(ctx)
		return a.emit(d, func(w io.Writer) { renderStudentDashboard(w, d) })
	case navigation.Faculty:
		d := a.api.LoadFacultyDashboard(ctx)
		return a.emit(d, func(w io.Writer) { renderFacultyDashboard(w, d) })
	case navigation.Admin:
		d := a.api.LoadAdminDashboard(ctx)
		return a.emit(d, func(w io.Writer) { renderAdminDashboard(w, d) })
	}
	return fmt.Errorf("no dashboard for role %q", a.session.CurrentUser().Role)
}

func renderStudentDashboard(w io.Writer, d *portal.StudentDashboard) {
	if p := d.Profile; p.OK() {
		fmt.Fprintf(w, "%s (%s), CGPA %.2f, %s\n\n", p.Data.Name, orDash(p.Data.RollNumber), p.Data.CGPA, orDash(p.Data.Status))
	}
	section(w, "Enrolled courses", d.Courses.Err, func() {
		rows := [][]string{{"CODE", "NAME", "CREDITS", "SCHEDULE"}}
		for _, c := range d.Courses.Data {
			rows = append(rows, []string{c.Code, c.Name, strconv.Itoa(c.Credits), orDash(c.Schedule)})
		}
		table(w, rows)
	})
	section(w, "Grades", d.Grades.Err, func() {
		rows := [][]string{{"COURSE", "ASSESSMENT", "MARKS", "GRADE"}}
		for _, g := range d.Grades.Data {
			rows = append(rows, []string{g.CourseCode, orDash(g.AssessmentName), fmt.Sprintf("%g/%g", g.ObtainedMarks, g.MaxMarks), orDash(g.LetterGrade)})
		}
		table(w, rows)
	})
	section(w, "Attendance", d.Attendance.Err, func() {
		rows := [][]string{{"COURSE", "ATTENDED", "PERCENT"}}
		for _, s := range d.Attendance.Data {
			rows = append(rows, []string{s.CourseCode, fmt.Sprintf("%d/%d", s.Attended, s.Total), fmt.Sprintf("%.1f%%", s.Percentage)})
		}
		table(w, rows)
	})
	failures(w, d.Errors())
}

func renderFacultyDashboard(w io.Writer, d *portal.FacultyDashboard) {
	if p := d.Profile; p.OK() {
		fmt.Fprintf(w, "%s, %s, %s\n\n", p.Data.Name, orDash(p.Data.Designation), orDash(p.Data.DepartmentName))
	}
	section(w, "Assigned courses", d.Courses.Err, func() {
		rows := [][]string{{"ID", "CODE", "NAME", "ENROLLED"}}
		for _, c := range d.Courses.Data {
			rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Code, c.Name, fmt.Sprintf("%d/%d", c.EnrolledStudents, c.MaxStudents)})
		}
		table(w, rows)
	})
	section(w, "Students", d.Students.Err, func() {
		rows := [][]string{{"ROLL", "NAME", "EMAIL"}}
		for _, s := range d.Students.Data {
			rows = append(rows, []string{orDash(s.RollNumber), s.Name, s.Email})
		}
		table(w, rows)
	})
	failures(w, d.Errors())
}

func renderAdminDashboard(w io.Writer, d *portal.AdminDashboard) {
	section(w, "Overview", d.Overview.Err, func() {
		keys := make([]string, 0, len(d.Overview.Data))
		for k := range d.Overview.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k, fmt.Sprint(d.Overview.Data[k])})
		}
		table(w, rows)
	})
	section(w, "Users", d.Users.Err, func() {
		rows := [][]string{{"ID", "NAME", "EMAIL", "ROLE"}}
		for _, u := range d.Users.Data.Content {
			rows = append(rows, []string{strconv.FormatInt(u.ID, 10), u.Name, u.Email, string(u.Role)})
		}
		table(w, rows)
	})
	section(w, "Departments", d.Departments.Err, func() {
		rows := [][]string{{"CODE", "NAME", "STATUS"}}
		for _, dept := range d.Departments.Data {
			rows = append(rows, []string{dept.Code, dept.Name, orDash(dept.Status)})
		}
		table(w, rows)
	})
	failures(w, d.Errors())
}

// section prints a titled block, or a one line failure for a widget that did
// not load
func section(w io.Writer, title string, err error, body func()) {
	fmt.Fprintf(w, "== %s ==\n", title)
	if err != nil {
		fmt.Fprintf(w, "  unavailable: %s\n\n", apiclient.Notice(err))
		return
	}
	body()
	fmt.Fprintln(w)
}

func failures(w io.Writer, errs map[string]error) {
	if len(errs) > 0 {
		fmt.Fprintf(w, "%d widget(s) failed to load\n", len(errs))
	}
}
