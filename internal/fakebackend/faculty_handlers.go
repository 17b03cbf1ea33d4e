package fakebackend

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-college-portal/portal"
)

// taughtBy reports whether courseID is instructed by facultyID. Caller holds lock.
func (c *catalog) taughtBy(courseID, facultyID int64) (portal.Course, bool) {
	co, ok := c.courses[courseID]
	return co, ok && co.InstructorID == facultyID
}

func (s *Server) FacultyProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.data.lock.RLock()
		p, ok := s.data.faculty[userFrom(r).ID]
		s.data.lock.RUnlock()
		if !ok {
			writeFailure(w, http.StatusNotFound, "Faculty profile not found")
			return
		}
		writeSuccess(w, http.StatusOK, "Faculty profile", p)
	}
}

func (s *Server) FacultyCoursesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me := userFrom(r).ID
		var list []portal.Course
		for _, co := range s.data.courseList() {
			if co.InstructorID == me {
				list = append(list, co)
			}
		}
		writeSuccess(w, http.StatusOK, "Assigned courses", nonNil(list))
	}
}

func (s *Server) FacultyEnrollmentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeFailure(w, http.StatusBadRequest, "Invalid course id")
			return
		}
		s.data.lock.RLock()
		defer s.data.lock.RUnlock()
		if _, mine := s.data.taughtBy(id, userFrom(r).ID); !mine {
			writeFailure(w, http.StatusForbidden, "You are not assigned to this course")
			return
		}
		var list []portal.Enrollment
		for _, e := range sortedValues(s.data.enrollments) {
			if e.CourseID == id {
				list = append(list, e)
			}
		}
		writeSuccess(w, http.StatusOK, "Course enrollments", nonNil(list))
	}
}

func (s *Server) RecordAttendanceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec portal.AttendanceRecord
		if err := decodeBody(r, &rec); err != nil {
			writeFailure(w, http.StatusBadRequest, "Malformed request")
			return
		}
		fields := map[string]string{}
		if rec.StudentID == 0 {
			fields["studentId"] = "Student is required"
		}
		if rec.CourseID == 0 {
			fields["courseId"] = "Course is required"
		}
		switch rec.Status = strings.ToUpper(rec.Status); rec.Status {
		case "PRESENT", "ABSENT", "LATE", "EXCUSED":
		default:
			fields["status"] = "Status must be PRESENT, ABSENT, LATE or EXCUSED"
		}
		if len(fields) > 0 {
			writeValidation(w, fields)
			return
		}

		me := userFrom(r)
		s.data.lock.Lock()
		defer s.data.lock.Unlock()
		co, mine := s.data.taughtBy(rec.CourseID, me.ID)
		if !mine {
			writeFailure(w, http.StatusForbidden, "You are not assigned to this course")
			return
		}
		if !s.data.enrolledCourseIDs(rec.StudentID)[rec.CourseID] {
			writeFailure(w, http.StatusBadRequest, "Student is not enrolled in "+co.Code)
			return
		}
		rec.ID = s.data.id()
		rec.CourseCode = co.Code
		rec.MarkedBy = me.Email
		if rec.Date == "" {
			rec.Date = nowString()[:len("2006-01-02")]
		}
		s.data.attendance[rec.ID] = rec
		writeSuccess(w, http.StatusCreated, "Attendance recorded", rec)
	}
}

func (s *Server) EnterGradeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var g portal.Grade
		if err := decodeBody(r, &g); err != nil {
			writeFailure(w, http.StatusBadRequest, "Malformed request")
			return
		}
		if fields := gradeFields(g); len(fields) > 0 {
			writeValidation(w, fields)
			return
		}

		s.data.lock.Lock()
		defer s.data.lock.Unlock()
		co, mine := s.data.taughtBy(g.CourseID, userFrom(r).ID)
		if !mine {
			writeFailure(w, http.StatusForbidden, "You are not assigned to this course")
			return
		}
		if !s.data.enrolledCourseIDs(g.StudentID)[g.CourseID] {
			writeFailure(w, http.StatusBadRequest, "Student is not enrolled in "+co.Code)
			return
		}
		g.ID = s.data.id()
		g.CourseCode = co.Code
		if p, ok := s.data.students[g.StudentID]; ok {
			g.StudentName = p.Name
		}
		finishGrade(&g)
		s.data.grades[g.ID] = g
		writeSuccess(w, http.StatusCreated, "Grade entered", g)
	}
}

func (s *Server) UpdateGradeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeFailure(w, http.StatusBadRequest, "Invalid grade id")
			return
		}
		var req portal.Grade
		if err := decodeBody(r, &req); err != nil {
			writeFailure(w, http.StatusBadRequest, "Malformed request")
			return
		}

		s.data.lock.Lock()
		defer s.data.lock.Unlock()
		g, found := s.data.grades[id]
		if !found {
			writeFailure(w, http.StatusNotFound, "Grade not found")
			return
		}
		if _, mine := s.data.taughtBy(g.CourseID, userFrom(r).ID); !mine {
			writeFailure(w, http.StatusForbidden, "You are not assigned to this course")
			return
		}
		if req.MaxMarks > 0 {
			g.MaxMarks = req.MaxMarks
		}
		g.ObtainedMarks = req.ObtainedMarks
		if req.Remarks != "" {
			g.Remarks = req.Remarks
		}
		if fields := gradeFields(g); len(fields) > 0 {
			writeValidation(w, fields)
			return
		}
		finishGrade(&g)
		s.data.grades[id] = g
		writeSuccess(w, http.StatusOK, "Grade updated", g)
	}
}

func gradeFields(g portal.Grade) map[string]string {
	fields := map[string]string{}
	if g.StudentID == 0 {
		fields["studentId"] = "Student is required"
	}
	if g.CourseID == 0 {
		fields["courseId"] = "Course is required"
	}
	if g.MaxMarks <= 0 {
		fields["maxMarks"] = "Max marks must be positive"
	}
	if g.ObtainedMarks < 0 || g.ObtainedMarks > g.MaxMarks {
		fields["obtainedMarks"] = "Obtained marks must be between 0 and max marks"
	}
	return fields
}

func (s *Server) FacultyStudentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me := userFrom(r).ID
		s.data.lock.RLock()
		defer s.data.lock.RUnlock()
		seen := map[int64]bool{}
		var list []portal.StudentProfile
		for _, e := range sortedValues(s.data.enrollments) {
			if _, mine := s.data.taughtBy(e.CourseID, me); !mine || e.Status != "ENROLLED" || seen[e.StudentID] {
				continue
			}
			if p, ok := s.data.students[e.StudentID]; ok {
				seen[e.StudentID] = true
				list = append(list, p)
			}
		}
		writeSuccess(w, http.StatusOK, "Students", nonNil(list))
	}
}

// nonNil keeps empty listings encoded as [] rather than null
func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
