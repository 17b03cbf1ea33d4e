package fakebackend

import (
	"net/http"

	"github.com/jrsteele09/go-college-portal/portal"
	"github.com/jrsteele09/go-college-portal/users"
)

func (s *Server) StudentProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.data.lock.RLock()
		p, ok := s.data.students[userFrom(r).ID]
		s.data.lock.RUnlock()
		if !ok {
			writeFailure(w, http.StatusNotFound, "Student profile not found")
			return
		}
		writeSuccess(w, http.StatusOK, "Student profile", p)
	}
}

func (s *Server) UpdateStudentProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profileUpdate
		if err := decodeBody(r, &req); err != nil {
			writeFailure(w, http.StatusBadRequest, "Malformed request")
			return
		}
		u, err := s.updateUser(userFrom(r).Email, req.apply)
		if err != nil {
			writeFailure(w, http.StatusInternalServerError, "Could not update profile")
			return
		}
		s.data.lock.RLock()
		p := s.data.students[u.ID]
		s.data.lock.RUnlock()
		writeSuccess(w, http.StatusOK, "Profile updated", p)
	}
}

func (s *Server) EnrolledCoursesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.data.lock.RLock()
		defer s.data.lock.RUnlock()
		ids := s.data.enrolledCourseIDs(userFrom(r).ID)
		var list []portal.Course
		for _, co := range sortedValues(s.data.courses) {
			if ids[co.ID] {
				list = append(list, co)
			}
		}
		writeSuccess(w, http.StatusOK, "Enrolled courses", nonNil(list))
	}
}

func (s *Server) AvailableCoursesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.data.lock.RLock()
		defer s.data.lock.RUnlock()
		ids := s.data.enrolledCourseIDs(userFrom(r).ID)
		var list []portal.Course
		for _, co := range sortedValues(s.data.courses) {
			if !ids[co.ID] && co.Status == "ACTIVE" && !co.Full() {
				list = append(list, co)
			}
		}
		writeSuccess(w, http.StatusOK, "Available courses", nonNil(list))
	}
}

func (s *Server) EnrollHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeFailure(w, http.StatusBadRequest, "Invalid course id")
			return
		}
		me := userFrom(r)

		s.data.lock.Lock()
		defer s.data.lock.Unlock()
		co, found := s.data.courses[id]
		if !found {
			writeFailure(w, http.StatusNotFound, "Course not found")
			return
		}
		if s.data.enrolledCourseIDs(me.ID)[id] {
			writeFailure(w, http.StatusConflict, "Already enrolled in "+co.Code)
			return
		}
		if co.Full() {
			writeFailure(w, http.StatusBadRequest, "Course "+co.Code+" is full")
			return
		}
		e := portal.Enrollment{
			ID: s.data.id(), StudentID: me.ID, StudentName: me.Name,
			CourseID: co.ID, CourseCode: co.Code, CourseName: co.Name,
			Status: "ENROLLED", EnrollmentDate: nowString()[:len("2006-01-02")],
			AcademicYear: co.AcademicYear, Semester: co.Semester,
		}
		s.data.enrollments[e.ID] = e
		co.EnrolledStudents++
		s.data.courses[co.ID] = co
		writeSuccess(w, http.StatusCreated, "Enrolled in "+co.Code, e)
	}
}

func (s *Server) DropHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeFailure(w, http.StatusBadRequest, "Invalid course id")
			return
		}
		me := userFrom(r).ID

		s.data.lock.Lock()
		defer s.data.lock.Unlock()
		for eid, e := range s.data.enrollments {
			if e.StudentID != me || e.CourseID != id || e.Status != "ENROLLED" {
				continue
			}
			e.Status = "DROPPED"
			s.data.enrollments[eid] = e
			if co, found := s.data.courses[id]; found && co.EnrolledStudents > 0 {
				co.EnrolledStudents--
				s.data.courses[id] = co
			}
			writeSuccess(w, http.StatusOK, "Course dropped", nil)
			return
		}
		writeFailure(w, http.StatusNotFound, "Not enrolled in this course")
	}
}

func (s *Server) StudentGradesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me := userFrom(r)
		s.data.lock.RLock()
		defer s.data.lock.RUnlock()
		semester := currentSemester(me)
		var list []portal.Grade
		for _, g := range sortedValues(s.data.grades) {
			if g.StudentID != me.ID {
				continue
			}
			if co, ok := s.data.courses[g.CourseID]; ok && semester != 0 && co.Semester != semester {
				continue
			}
			list = append(list, g)
		}
		writeSuccess(w, http.StatusOK, "Current semester grades", nonNil(list))
	}
}

func (s *Server) AttendanceSummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me := userFrom(r).ID
		s.data.lock.RLock()
		defer s.data.lock.RUnlock()
		byCourse := map[int64]*portal.AttendanceSummary{}
		var order []int64
		for _, a := range sortedValues(s.data.attendance) {
			if a.StudentID != me {
				continue
			}
			sum, ok := byCourse[a.CourseID]
			if !ok {
				co := s.data.courses[a.CourseID]
				sum = &portal.AttendanceSummary{CourseID: a.CourseID, CourseCode: co.Code, CourseName: co.Name}
				byCourse[a.CourseID] = sum
				order = append(order, a.CourseID)
			}
			sum.Total++
			if a.Status == "PRESENT" || a.Status == "LATE" {
				sum.Attended++
			}
		}
		list := make([]portal.AttendanceSummary, 0, len(order))
		for _, id := range order {
			sum := byCourse[id]
			sum.Percentage = float64(sum.Attended) / float64(sum.Total) * 100
			list = append(list, *sum)
		}
		writeSuccess(w, http.StatusOK, "Attendance summary", list)
	}
}

// currentSemester parses the student's semester, 0 when unknown
func currentSemester(u *users.User) int {
	n := 0
	for _, r := range u.Semester {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
