package portal

import (
	"context"
	"net/http"
)

// Faculty wraps the /faculty endpoints for the logged-in faculty member
type Faculty struct {
	d Doer
}

func (f *Faculty) Profile(ctx context.Context) (*FacultyProfile, error) {
	var p FacultyProfile
	if err := get(ctx, f.d, "/faculty/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (f *Faculty) AssignedCourses(ctx context.Context) ([]Course, error) {
	var list []Course
	if err := get(ctx, f.d, "/faculty/courses/assigned", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (f *Faculty) CourseEnrollments(ctx context.Context, courseID int64) ([]Enrollment, error) {
	var list []Enrollment
	if err := get(ctx, f.d, path("/faculty/courses/%d/enrollments", courseID), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// RecordAttendance marks attendance for one student session
func (f *Faculty) RecordAttendance(ctx context.Context, rec AttendanceRecord) (*AttendanceRecord, error) {
	var saved AttendanceRecord
	if err := send(ctx, f.d, http.MethodPost, "/faculty/attendance/record", rec, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (f *Faculty) EnterGrade(ctx context.Context, g Grade) (*Grade, error) {
	var saved Grade
	if err := send(ctx, f.d, http.MethodPost, "/faculty/grades/enter", g, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (f *Faculty) UpdateGrade(ctx context.Context, id int64, g Grade) (*Grade, error) {
	var saved Grade
	if err := send(ctx, f.d, http.MethodPut, path("/faculty/grades/%d", id), g, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// Students lists the students enrolled in any of this faculty member's courses
func (f *Faculty) Students(ctx context.Context) ([]StudentProfile, error) {
	var list []StudentProfile
	if err := get(ctx, f.d, "/faculty/students", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}
