package portal

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-college-portal/auth"
)

// Student wraps the /student endpoints for the logged-in student
type Student struct {
	d Doer
}

func (s *Student) Profile(ctx context.Context) (*StudentProfile, error) {
	var p StudentProfile
	if err := get(ctx, s.d, "/student/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Student) UpdateProfile(ctx context.Context, update auth.ProfileUpdate) (*StudentProfile, error) {
	var p StudentProfile
	if err := send(ctx, s.d, http.MethodPut, "/student/profile", update, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Student) EnrolledCourses(ctx context.Context) ([]Course, error) {
	var list []Course
	if err := get(ctx, s.d, "/student/courses/enrolled", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// AvailableCourses lists active courses the student is not enrolled in
func (s *Student) AvailableCourses(ctx context.Context) ([]Course, error) {
	var list []Course
	if err := get(ctx, s.d, "/student/courses/available", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Student) Enroll(ctx context.Context, courseID int64) (*Enrollment, error) {
	var e Enrollment
	if err := send(ctx, s.d, http.MethodPost, path("/student/courses/%d/enroll", courseID), nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Student) Drop(ctx context.Context, courseID int64) error {
	return send(ctx, s.d, http.MethodPost, path("/student/courses/%d/drop", courseID), nil, nil)
}

// Grades returns the current semester's grades
func (s *Student) Grades(ctx context.Context) ([]Grade, error) {
	var list []Grade
	if err := get(ctx, s.d, "/student/grades/current-semester", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Attendance returns the per-course attendance summary
func (s *Student) Attendance(ctx context.Context) ([]AttendanceSummary, error) {
	var list []AttendanceSummary
	if err := get(ctx, s.d, "/student/attendance/summary", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}
