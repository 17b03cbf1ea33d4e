package portal

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/go-college-portal/apiclient"
	"github.com/jrsteele09/go-college-portal/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Widget is one independently loaded part of a dashboard
type Widget[T any] struct {
	Data T
	Err  error
}

// OK reports whether the widget loaded
func (w *Widget[T]) OK() bool {
	return w.Err == nil
}

// MarshalJSON writes the data, or the user facing notice of a failed widget
func (w Widget[T]) MarshalJSON() ([]byte, error) {
	out := struct {
		Data  *T     `json:"data,omitempty"`
		Error string `json:"error,omitempty"`
	}{Error: apiclient.Notice(w.Err)}
	if w.Err == nil {
		out.Data = &w.Data
	}
	return json.Marshal(out)
}

type StudentDashboard struct {
	Profile    Widget[*StudentProfile]
	Courses    Widget[[]Course]
	Grades     Widget[[]Grade]
	Attendance Widget[[]AttendanceSummary]
}

// Errors returns the failed widgets by name
func (d *StudentDashboard) Errors() map[string]error {
	return collect(map[string]error{
		"profile":    d.Profile.Err,
		"courses":    d.Courses.Err,
		"grades":     d.Grades.Err,
		"attendance": d.Attendance.Err,
	})
}

type FacultyDashboard struct {
	Profile  Widget[*FacultyProfile]
	Courses  Widget[[]Course]
	Students Widget[[]StudentProfile]
}

func (d *FacultyDashboard) Errors() map[string]error {
	return collect(map[string]error{
		"profile":  d.Profile.Err,
		"courses":  d.Courses.Err,
		"students": d.Students.Err,
	})
}

type AdminDashboard struct {
	Overview    Widget[Overview]
	Users       Widget[*Page[users.User]]
	Departments Widget[[]Department]
	Courses     Widget[*Page[Course]]
}

func (d *AdminDashboard) Errors() map[string]error {
	return collect(map[string]error{
		"overview":    d.Overview.Err,
		"users":       d.Users.Err,
		"departments": d.Departments.Err,
		"courses":     d.Courses.Err,
	})
}

// LoadStudentDashboard loads every student widget concurrently. A failing
// widget records its error and never stops the others.
func (a *API) LoadStudentDashboard(ctx context.Context) *StudentDashboard {
	d := &StudentDashboard{}
	var g errgroup.Group
	load(&g, "profile", &d.Profile, func() (*StudentProfile, error) { return a.Student.Profile(ctx) })
	load(&g, "courses", &d.Courses, func() ([]Course, error) { return a.Student.EnrolledCourses(ctx) })
	load(&g, "grades", &d.Grades, func() ([]Grade, error) { return a.Student.Grades(ctx) })
	load(&g, "attendance", &d.Attendance, func() ([]AttendanceSummary, error) { return a.Student.Attendance(ctx) })
	_ = g.Wait()
	return d
}

func (a *API) LoadFacultyDashboard(ctx context.Context) *FacultyDashboard {
	d := &FacultyDashboard{}
	var g errgroup.Group
	load(&g, "profile", &d.Profile, func() (*FacultyProfile, error) { return a.Faculty.Profile(ctx) })
	load(&g, "courses", &d.Courses, func() ([]Course, error) { return a.Faculty.AssignedCourses(ctx) })
	load(&g, "students", &d.Students, func() ([]StudentProfile, error) { return a.Faculty.Students(ctx) })
	_ = g.Wait()
	return d
}

func (a *API) LoadAdminDashboard(ctx context.Context) *AdminDashboard {
	d := &AdminDashboard{}
	var g errgroup.Group
	load(&g, "overview", &d.Overview, func() (Overview, error) { return a.Admin.DashboardOverview(ctx) })
	load(&g, "users", &d.Users, func() (*Page[users.User], error) { return a.Admin.Users(ctx, 0, DefaultPageSize) })
	load(&g, "departments", &d.Departments, func() ([]Department, error) { return a.Admin.Departments(ctx) })
	load(&g, "courses", &d.Courses, func() (*Page[Course], error) { return a.Catalog.Courses(ctx, 0, DefaultPageSize) })
	_ = g.Wait()
	return d
}

// load never returns an error to the group, so one widget cannot cancel or
// mask another
func load[T any](g *errgroup.Group, name string, w *Widget[T], fetch func() (T, error)) {
	g.Go(func() error {
		w.Data, w.Err = fetch()
		if w.Err != nil {
			log.Warn().Err(w.Err).Str("widget", name).Msg("dashboard widget failed to load")
		}
		return nil
	})
}

func collect(all map[string]error) map[string]error {
	failed := make(map[string]error)
	for name, err := range all {
		if err != nil {
			failed[name] = err
		}
	}
	return failed
}
