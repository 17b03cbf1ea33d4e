package portal

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-college-portal/users"
)

// Admin wraps the /admin endpoints
type Admin struct {
	d Doer
}

// NewUser is an account created by an administrator
type NewUser struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Role     users.RoleType `json:"role"`
	Phone    string         `json:"phone,omitempty"`
	Gender   string         `json:"gender,omitempty"`
	Course   string         `json:"course,omitempty"`
	Year     string         `json:"year,omitempty"`
	Semester string         `json:"semester,omitempty"`
}

func (a *Admin) Users(ctx context.Context, page, size int) (*Page[users.User], error) {
	var p Page[users.User]
	if err := get(ctx, a.d, "/admin/users", pageParams(page, size), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *Admin) UsersByRole(ctx context.Context, role users.RoleType) ([]users.User, error) {
	var list []users.User
	if err := get(ctx, a.d, path("/admin/users/role/%s", string(users.NormalizeRole(string(role)))), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (a *Admin) CreateUser(ctx context.Context, u NewUser) (*users.User, error) {
	u.Role = users.NormalizeRole(string(u.Role))
	var created users.User
	if err := send(ctx, a.d, http.MethodPost, "/admin/users", u, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (a *Admin) UpdateUser(ctx context.Context, id int64, u users.User) (*users.User, error) {
	var updated users.User
	if err := send(ctx, a.d, http.MethodPut, path("/admin/users/%d", id), u, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (a *Admin) DeleteUser(ctx context.Context, id int64) error {
	return send(ctx, a.d, http.MethodDelete, path("/admin/users/%d", id), nil, nil)
}

func (a *Admin) ActivateUser(ctx context.Context, id int64) error {
	return send(ctx, a.d, http.MethodPut, path("/admin/users/%d/activate", id), nil, nil)
}

func (a *Admin) DeactivateUser(ctx context.Context, id int64) error {
	return send(ctx, a.d, http.MethodPut, path("/admin/users/%d/deactivate", id), nil, nil)
}

func (a *Admin) Students(ctx context.Context, page, size int) (*Page[StudentProfile], error) {
	var p Page[StudentProfile]
	if err := get(ctx, a.d, "/admin/students", pageParams(page, size), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateStudentStatus sets a student's academic status, e.g. SUSPENDED
func (a *Admin) UpdateStudentStatus(ctx context.Context, id int64, status string) error {
	return send(ctx, a.d, http.MethodPut, path("/admin/students/%d/status", id), map[string]string{"status": status}, nil)
}

func (a *Admin) Faculty(ctx context.Context, page, size int) (*Page[FacultyProfile], error) {
	var p Page[FacultyProfile]
	if err := get(ctx, a.d, "/admin/faculty", pageParams(page, size), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *Admin) Departments(ctx context.Context) ([]Department, error) {
	var list []Department
	if err := get(ctx, a.d, "/admin/departments", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (a *Admin) CreateDepartment(ctx context.Context, dept Department) (*Department, error) {
	var created Department
	if err := send(ctx, a.d, http.MethodPost, "/admin/departments", dept, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (a *Admin) UpdateDepartment(ctx context.Context, id int64, dept Department) (*Department, error) {
	var updated Department
	if err := send(ctx, a.d, http.MethodPut, path("/admin/departments/%d", id), dept, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (a *Admin) DeleteDepartment(ctx context.Context, id int64) error {
	return send(ctx, a.d, http.MethodDelete, path("/admin/departments/%d", id), nil, nil)
}

func (a *Admin) CreateCourse(ctx context.Context, c Course) (*Course, error) {
	var created Course
	if err := send(ctx, a.d, http.MethodPost, "/admin/courses", c, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (a *Admin) UpdateCourse(ctx context.Context, id int64, c Course) (*Course, error) {
	var updated Course
	if err := send(ctx, a.d, http.MethodPut, path("/admin/courses/%d", id), c, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (a *Admin) DeleteCourse(ctx context.Context, id int64) error {
	return send(ctx, a.d, http.MethodDelete, path("/admin/courses/%d", id), nil, nil)
}

// DashboardOverview returns the headline figures of the admin dashboard
func (a *Admin) DashboardOverview(ctx context.Context) (Overview, error) {
	var o Overview
	if err := get(ctx, a.d, "/admin/dashboard/overview", nil, &o); err != nil {
		return nil, err
	}
	return o, nil
}
