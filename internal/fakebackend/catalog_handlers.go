package fakebackend

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-college-portal/portal"
)

func (s *Server) CoursesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, http.StatusOK, "Courses", pageOf(s.data.courseList(), r))
	}
}

func (s *Server) CourseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeFailure(w, http.StatusBadRequest, "Invalid course id")
			return
		}
		s.data.lock.RLock()
		co, found := s.data.courses[id]
		s.data.lock.RUnlock()
		if !found {
			writeFailure(w, http.StatusNotFound, "Course not found")
			return
		}
		writeSuccess(w, http.StatusOK, "Course", co)
	}
}

func (s *Server) CourseByCodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.PathValue("code")
		for _, co := range s.data.courseList() {
			if strings.EqualFold(co.Code, code) {
				writeSuccess(w, http.StatusOK, "Course", co)
				return
			}
		}
		writeFailure(w, http.StatusNotFound, "Course not found with code "+code)
	}
}

func (s *Server) SearchCoursesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
		var list []portal.Course
		for _, co := range s.data.courseList() {
			if q == "" || strings.Contains(strings.ToLower(co.Code), q) || strings.Contains(strings.ToLower(co.Name), q) {
				list = append(list, co)
			}
		}
		writeSuccess(w, http.StatusOK, "Courses", nonNil(list))
	}
}

func (s *Server) DepartmentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, http.StatusOK, "Departments", s.data.departmentList())
	}
}

func (s *Server) DepartmentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeFailure(w, http.StatusBadRequest, "Invalid department id")
			return
		}
		s.data.lock.RLock()
		d, found := s.data.departments[id]
		s.data.lock.RUnlock()
		if !found {
			writeFailure(w, http.StatusNotFound, "Department not found")
			return
		}
		writeSuccess(w, http.StatusOK, "Department", d)
	}
}

func (s *Server) DepartmentByCodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.PathValue("code")
		for _, d := range s.data.departmentList() {
			if strings.EqualFold(d.Code, code) {
				writeSuccess(w, http.StatusOK, "Department", d)
				return
			}
		}
		writeFailure(w, http.StatusNotFound, "Department not found with code "+code)
	}
}
