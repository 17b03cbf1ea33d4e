package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/jrsteele09/go-college-portal/portal"
	"github.com/spf13/cobra"
)

var (
	coursePage   int
	courseSize   int
	courseSearch string
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Browse the course catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if courseSearch != "" {
				return runCourseSearch(cmd.Context(), a, courseSearch)
			}
			return runCourses(cmd.Context(), a, coursePage, courseSize)
		})
	},
}

var courseShowCmd = &cobra.Command{
	Use:   "show <code>",
	Short: "Show one course by its code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return runCourseShow(cmd.Context(), a, args[0])
		})
	},
}

var courseAvailableCmd = &cobra.Command{
	Use:   "available",
	Short: "List courses open for enrollment (students)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return runAvailable(cmd.Context(), a)
		})
	},
}

var courseEnrollCmd = &cobra.Command{
	Use:   "enroll <course-id>",
	Short: "Enroll in a course (students)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := courseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(a *app) error {
			return runEnroll(cmd.Context(), a, id)
		})
	},
}

var courseDropCmd = &cobra.Command{
	Use:   "drop <course-id>",
	Short: "Drop an enrolled course (students)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := courseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(a *app) error {
			return runDrop(cmd.Context(), a, id)
		})
	},
}

var departmentsCmd = &cobra.Command{
	Use:   "departments [code]",
	Short: "List departments, or show one by code",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if len(args) == 1 {
				return runDepartment(cmd.Context(), a, args[0])
			}
			return runDepartments(cmd.Context(), a)
		})
	},
}

func init() {
	coursesCmd.Flags().IntVar(&coursePage, "page", 0, "Zero based page number")
	coursesCmd.Flags().IntVar(&courseSize, "size", portal.DefaultPageSize, "Page size")
	coursesCmd.Flags().StringVarP(&courseSearch, "query", "q", "", "Search by course code or name")
	coursesCmd.AddCommand(courseShowCmd, courseAvailableCmd, courseEnrollCmd, courseDropCmd)
	rootCmd.AddCommand(coursesCmd, departmentsCmd)
}

func courseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("course id %q is not a positive number", arg)
	}
	return id, nil
}

func runCourses(ctx context.Context, a *app, page, size int) error {
	p, err := a.api.Catalog.Courses(ctx, page, size)
	if err != nil {
		return err
	}
	return a.emit(p, func(w io.Writer) {
		courseTable(w, p.Content)
		fmt.Fprintf(w, "\npage %d of %d, %d courses\n", p.Number+1, max(p.TotalPages, 1), p.TotalElements)
	})
}

func runCourseSearch(ctx context.Context, a *app, q string) error {
	found, err := a.api.Catalog.SearchCourses(ctx, q)
	if err != nil {
		return err
	}
	return a.emit(found, func(w io.Writer) {
		if len(found) == 0 {
			fmt.Fprintf(w, "No courses match %q\n", q)
			return
		}
		courseTable(w, found)
	})
}

func runCourseShow(ctx context.Context, a *app, code string) error {
	c, err := a.api.Catalog.CourseByCode(ctx, code)
	if err != nil {
		return err
	}
	return a.emit(c, func(w io.Writer) {
		table(w, [][]string{
			{"Code", c.Code},
			{"Name", c.Name},
			{"Department", orDash(c.DepartmentName)},
			{"Instructor", orDash(c.InstructorName)},
			{"Credits", strconv.Itoa(c.Credits)},
			{"Seats", seats(c)},
			{"Schedule", orDash(c.Schedule)},
			{"Classroom", orDash(c.Classroom)},
		})
	})
}

func runAvailable(ctx context.Context, a *app) error {
	open, err := a.api.Student.AvailableCourses(ctx)
	if err != nil {
		return err
	}
	return a.emit(open, func(w io.Writer) { courseTable(w, open) })
}

func runEnroll(ctx context.Context, a *app, id int64) error {
	e, err := a.api.Student.Enroll(ctx, id)
	if err != nil {
		return err
	}
	return a.emit(e, func(w io.Writer) {
		fmt.Fprintf(w, "Enrolled in %s %s\n", e.CourseCode, e.CourseName)
	})
}

func runDrop(ctx context.Context, a *app, id int64) error {
	if err := a.api.Student.Drop(ctx, id); err != nil {
		return err
	}
	return done(a, fmt.Sprintf("Dropped course %d", id))
}

func runDepartments(ctx context.Context, a *app) error {
	depts, err := a.api.Catalog.Departments(ctx)
	if err != nil {
		return err
	}
	return a.emit(depts, func(w io.Writer) {
		rows := [][]string{{"CODE", "NAME", "LOCATION", "STATUS"}}
		for _, d := range depts {
			rows = append(rows, []string{d.Code, d.Name, orDash(d.Location), orDash(d.Status)})
		}
		table(w, rows)
	})
}

func runDepartment(ctx context.Context, a *app, code string) error {
	d, err := a.api.Catalog.DepartmentByCode(ctx, code)
	if err != nil {
		return err
	}
	return a.emit(d, func(w io.Writer) {
		table(w, [][]string{
			{"Code", d.Code},
			{"Name", d.Name},
			{"Location", orDash(d.Location)},
			{"Contact", orDash(d.ContactEmail)},
			{"Status", orDash(d.Status)},
		})
	})
}

func courseTable(w io.Writer, courses []portal.Course) {
	rows := [][]string{{"ID", "CODE", "NAME", "CREDITS", "SEATS"}}
	for i := range courses {
		c := &courses[i]
		rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Code, c.Name, strconv.Itoa(c.Credits), seats(c)})
	}
	table(w, rows)
}

func seats(c *portal.Course) string {
	if c.MaxStudents == 0 {
		return strconv.Itoa(c.EnrolledStudents)
	}
	s := fmt.Sprintf("%d/%d", c.EnrolledStudents, c.MaxStudents)
	if c.Full() {
		s += " full"
	}
	return s
}
