package portal

import (
	"context"
	"net/url"
)

// Catalog wraps the course and department endpoints open to every role
type Catalog struct {
	d Doer
}

func (c *Catalog) Courses(ctx context.Context, page, size int) (*Page[Course], error) {
	var p Page[Course]
	if err := get(ctx, c.d, "/courses", pageParams(page, size), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Catalog) Course(ctx context.Context, id int64) (*Course, error) {
	var course Course
	if err := get(ctx, c.d, path("/courses/%d", id), nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *Catalog) CourseByCode(ctx context.Context, code string) (*Course, error) {
	var course Course
	if err := get(ctx, c.d, path("/courses/code/%s", code), nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// SearchCourses matches q against course codes and names
func (c *Catalog) SearchCourses(ctx context.Context, q string) ([]Course, error) {
	var list []Course
	if err := get(ctx, c.d, "/courses/search", url.Values{"q": {q}}, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Catalog) Departments(ctx context.Context) ([]Department, error) {
	var list []Department
	if err := get(ctx, c.d, "/departments", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Catalog) Department(ctx context.Context, id int64) (*Department, error) {
	var dept Department
	if err := get(ctx, c.d, path("/departments/%d", id), nil, &dept); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (c *Catalog) DepartmentByCode(ctx context.Context, code string) (*Department, error) {
	var dept Department
	if err := get(ctx, c.d, path("/departments/code/%s", code), nil, &dept); err != nil {
		return nil, err
	}
	return &dept, nil
}
