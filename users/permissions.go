package users

// Permission names a capability granted by a role
type Permission string

const (
	PermManageUsers          Permission = "manage_users"
	PermManageCourses        Permission = "manage_courses"
	PermManageDepartments    Permission = "manage_departments"
	PermViewAllData          Permission = "view_all_data"
	PermManageSystemSettings Permission = "manage_system_settings"
	PermGenerateReports      Permission = "generate_reports"

	PermViewAssignedCourses Permission = "view_assigned_courses"
	PermManageCourseContent Permission = "manage_course_content"
	PermGradeStudents       Permission = "grade_students"
	PermMarkAttendance      Permission = "mark_attendance"
	PermCreateAnnouncements Permission = "create_announcements"
	PermViewStudentProfiles Permission = "view_student_profiles"

	PermViewCourses       Permission = "view_courses"
	PermViewGrades        Permission = "view_grades"
	PermViewAttendance    Permission = "view_attendance"
	PermEnrollCourses     Permission = "enroll_courses"
	PermViewAnnouncements Permission = "view_announcements"
	PermUpdateProfile     Permission = "update_profile"
)

var rolePermissions = map[RoleType][]Permission{
	RoleAdmin: {
		PermManageUsers, PermManageCourses, PermManageDepartments,
		PermViewAllData, PermManageSystemSettings, PermGenerateReports,
	},
	RoleFaculty: {
		PermViewAssignedCourses, PermManageCourseContent, PermGradeStudents,
		PermMarkAttendance, PermCreateAnnouncements, PermViewStudentProfiles,
	},
	RoleStudent: {
		PermViewCourses, PermViewGrades, PermViewAttendance,
		PermEnrollCourses, PermViewAnnouncements, PermUpdateProfile,
	},
}

// Permissions returns a copy of the permissions granted to role. Unknown
// roles get none.
func Permissions(role RoleType) []Permission {
	perms := rolePermissions[NormalizeRole(string(role))]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// HasPermission reports whether the user's role grants p
func (u *User) HasPermission(p Permission) bool {
	if u == nil {
		return false
	}
	for _, perm := range rolePermissions[NormalizeRole(string(u.Role))] {
		if perm == p {
			return true
		}
	}
	return false
}
