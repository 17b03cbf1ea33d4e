package fakebackend

import (
	"net/http"

	"github.com/jrsteele09/go-college-portal/users"
)

type route struct {
	method  string
	path    string
	handler http.HandlerFunc
	roles   []users.RoleType // nil is public, empty is any authenticated user
}

func (s *Server) initRoutes() {
	authed := []users.RoleType{}
	admin := []users.RoleType{users.RoleAdmin}
	faculty := []users.RoleType{users.RoleFaculty}
	student := []users.RoleType{users.RoleStudent}

	routes := []route{
		{http.MethodPost, "/auth/login", s.LoginHandler(), nil},
		{http.MethodPost, "/auth/refresh", s.RefreshHandler(), nil},
		{http.MethodPost, "/auth/register", s.RegisterHandler(), nil},
		{http.MethodPost, "/auth/forgot-password", s.ForgotPasswordHandler(), nil},
		{http.MethodPost, "/auth/reset-password", s.ResetPasswordHandler(), nil},
		{http.MethodPost, "/auth/verify-email", s.VerifyEmailHandler(), nil},
		{http.MethodPost, "/auth/logout", s.LogoutHandler(), authed},
		{http.MethodPut, "/auth/change-password", s.ChangePasswordHandler(), authed},
		{http.MethodPut, "/auth/profile", s.UpdateProfileHandler(), authed},
		{http.MethodPost, "/auth/resend-verification", s.ResendVerificationHandler(), authed},
		{http.MethodGet, "/auth/activity-log", s.ActivityLogHandler(), authed},

		{http.MethodGet, "/admin/users", s.AdminUsersHandler(), admin},
		{http.MethodPost, "/admin/users", s.AdminCreateUserHandler(), admin},
		{http.MethodGet, "/admin/users/role/{role}", s.AdminUsersByRoleHandler(), admin},
		{http.MethodPut, "/admin/users/{id}", s.AdminUpdateUserHandler(), admin},
		{http.MethodDelete, "/admin/users/{id}", s.AdminDeleteUserHandler(), admin},
		{http.MethodPut, "/admin/users/{id}/activate", s.AdminSetActiveHandler(true), admin},
		{http.MethodPut, "/admin/users/{id}/deactivate", s.AdminSetActiveHandler(false), admin},
		{http.MethodGet, "/admin/students", s.AdminStudentsHandler(), admin},
		{http.MethodPut, "/admin/students/{id}/status", s.AdminStudentStatusHandler(), admin},
		{http.MethodGet, "/admin/faculty", s.AdminFacultyHandler(), admin},
		{http.MethodGet, "/admin/departments", s.DepartmentsHandler(), admin},
		{http.MethodPost, "/admin/departments", s.AdminCreateDepartmentHandler(), admin},
		{http.MethodPut, "/admin/departments/{id}", s.AdminUpdateDepartmentHandler(), admin},
		{http.MethodDelete, "/admin/departments/{id}", s.AdminDeleteDepartmentHandler(), admin},
		{http.MethodPost, "/admin/courses", s.AdminCreateCourseHandler(), admin},
		{http.MethodPut, "/admin/courses/{id}", s.AdminUpdateCourseHandler(), admin},
		{http.MethodDelete, "/admin/courses/{id}", s.AdminDeleteCourseHandler(), admin},
		{http.MethodGet, "/admin/dashboard/overview", s.AdminOverviewHandler(), admin},

		{http.MethodGet, "/faculty/profile", s.FacultyProfileHandler(), faculty},
		{http.MethodGet, "/faculty/courses/assigned", s.FacultyCoursesHandler(), faculty},
		{http.MethodGet, "/faculty/courses/{id}/enrollments", s.FacultyEnrollmentsHandler(), faculty},
		{http.MethodPost, "/faculty/attendance/record", s.RecordAttendanceHandler(), faculty},
		{http.MethodPost, "/faculty/grades/enter", s.EnterGradeHandler(), faculty},
		{http.MethodPut, "/faculty/grades/{id}", s.UpdateGradeHandler(), faculty},
		{http.MethodGet, "/faculty/students", s.FacultyStudentsHandler(), faculty},

		{http.MethodGet, "/student/profile", s.StudentProfileHandler(), student},
		{http.MethodPut, "/student/profile", s.UpdateStudentProfileHandler(), student},
		{http.MethodGet, "/student/courses/enrolled", s.EnrolledCoursesHandler(), student},
		{http.MethodGet, "/student/courses/available", s.AvailableCoursesHandler(), student},
		{http.MethodPost, "/student/courses/{id}/enroll", s.EnrollHandler(), student},
		{http.MethodPost, "/student/courses/{id}/drop", s.DropHandler(), student},
		{http.MethodGet, "/student/grades/current-semester", s.StudentGradesHandler(), student},
		{http.MethodGet, "/student/attendance/summary", s.AttendanceSummaryHandler(), student},

		{http.MethodGet, "/courses", s.CoursesHandler(), authed},
		{http.MethodGet, "/courses/search", s.SearchCoursesHandler(), authed},
		{http.MethodGet, "/courses/code/{code}", s.CourseByCodeHandler(), authed},
		{http.MethodGet, "/courses/{id}", s.CourseHandler(), authed},
		{http.MethodGet, "/departments", s.DepartmentsHandler(), authed},
		{http.MethodGet, "/departments/code/{code}", s.DepartmentByCodeHandler(), authed},
		{http.MethodGet, "/departments/{id}", s.DepartmentHandler(), authed},
	}

	for _, rt := range routes {
		var mw []func(http.HandlerFunc) http.HandlerFunc
		if rt.roles != nil {
			mw = append(mw, s.RequireAuth(rt.roles...))
		}
		s.RegisterRouteFunc(rt.method+" "+APIPrefix+rt.path, ChainMiddleware(rt.handler, s.APIMiddleware(mw...)...))
	}
}
