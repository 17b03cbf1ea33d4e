package fakebackend

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-college-portal/internal/utils"
	"github.com/jrsteele09/go-college-portal/portal"
	"github.com/jrsteele09/go-college-portal/users"
)

func (s *Server) userList(role users.RoleType) []users.User {
	list, _, _ := s.users.List(role, 0, 0)
	out := make([]users.User, 0, len(list))
	for _, u := range list {
		out = append(out, *u)
	}
	return out
}

func (s *Server) AdminUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, http.StatusOK, "Users", pageOf(s.userList(""), r))
	}
}

func (s *Server) AdminUsersByRoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := users.NormalizeRole(r.PathValue("role"))
		if !role.Known() {
			writeFailure(w, http.StatusBadRequest, "Unknown role "+r.PathValue("role"))
			return
		}
		writeSuccess(w, http.StatusOK, "Users", s.userList(role))
	}
}

func (s *Server) AdminCreateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req portal.NewUser
		if err := decodeBody(r, &req); err != nil {
			writeFailure(w, http.StatusBadRequest, "Malformed request")
			return
		}
		fields := map[string]string{}
		if req.Name == "" {
			fields["name"] = "Name is required"
		}
		if !strings.Contains(req.Email, "@") {
			fields["email"] = "Email should be valid"
		}
		if !users.NormalizeRole(string(req.Role)).Known() {
			fields["role"] = "Role must be ADMIN, FACULTY or STUDENT"
		}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			fields["password"] = err.Error()
		}
		if len(fields) > 0 {
			writeValidation(w, fields)
			return
		}
		if _, err := s.users.GetByEmail(req.Email); err == nil {
			writeFailure(w, http.StatusConflict, "User with email "+req.Email+" already exists")
			return
		}
		hash, err := users.HashPassword(req.Password)
		if err != nil {
			writeFailure(w, http.StatusInternalServerError, "Could not create user")
			return
		}
		u := &users.User{
			Name: req.Name, Email: req.Email, Role: users.NormalizeRole(string(req.Role)),
			Phone: req.Phone, Gender: req.Gender, Course: req.Course, Year: req.Year, Semester: req.Semester,
			IsActive: utils.Ptr(true), IsVerified: utils.Ptr(true), PasswordHash: hash,
		}
		if err := s.users.Upsert(u); err != nil {
			writeFailure(w, http.StatusInternalServerError, "Could not create user")
			return
		}
		s.addProfile(u)
		writeSuccess(w, http.StatusCreated, "User created", u)
	}
}

func (s *Server) adminUser(w http.ResponseWriter, r *http.Request) (*users.User, bool) {
	id, ok := pathID(r, "id")
	if !ok {
		writeFailure(w, http.StatusBadRequest, "Invalid user id")
		return nil, false
	}
	u, err := s.users.GetByID(id)
	if err != nil {
		writeFailure(w, http.StatusNotFound, "User not found")
		return nil, false
	}
	return u, true
}

func (s *Server) AdminUpdateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		existing, ok := s.adminUser(w, r)
		if !ok {
			return
		}
		var req users.User
		if err := decodeBody(r, &req); err != nil {
			writeFailure(w, http.StatusBadRequest, "Malformed request")
			return
		}
		updated, err := s.updateUser(existing.Email, func(u *users.User) {
			profileUpdate{
				Name: req.Name, Phone: req.Phone, Gender: req.Gender, Course: req.Course,
				Year: req.Year, Semester: req.Semester, SelectedSubjects: req.SelectedSubjects,
			}.apply(u)
			if role := users.NormalizeRole(string(req.Role)); role.Known() {
				u.Role = role
			}
		})
		if err != nil {
			writeFailure(w, http.StatusInternalServerError, "Could not update user")
			return
		}
		writeSuccess(w, http.StatusOK, "User updated", updated)
	}
}

func (s *Server) AdminDeleteUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.adminUser(w, r)
		if !ok {
			return
		}
		if u.ID == userFrom(r).ID {
			writeFailure(w, http.StatusBadRequest, "Administrators cannot delete themselves")
			return
		}
		if err := s.users.Delete(u.Email); err != nil {
			writeFailure(w, http.StatusInternalServerError, "Could not delete user")
			return
		}
		_ = s.refresh.DeleteForUser(u.ID)
		s.data.lock.Lock()
		delete(s.data.students, u.ID)
		delete(s.data.faculty, u.ID)
		s.data.lock.Unlock()
		writeSuccess(w, http.StatusOK, "User deleted", nil)
	}
}

func (s *Server) AdminSetActiveHandler(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.adminUser(w, r)
		if !ok {
			return
		}
		if _, err := s.updateUser(u.Email, func(u *users.User) { u.IsActive = utils.Ptr(active) }); err != nil {
			writeFailure(w, http.StatusInternalServerError, "Could not update user")
			return
		}
		msg := "User deactivated"
		if active {
			msg = "User activated"
		}
		writeSuccess(w, http.StatusOK, msg, nil)
	}
}

func (s *Server) AdminStudentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.data.lock.RLock()
		list := sortedValues(s.data.students)
		s.data.lock.RUnlock()
		writeSuccess(w, http.StatusOK, "Students", pageOf(list, r))
	}
}

func (s *Server) AdminStudentStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeFailure(w, http.StatusBadRequest, "Invalid student id")
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		if err := decodeBody(r, &req); err != nil || req.Status == "" {
			writeValidation(w, map[string]string{"status": "Status is required"})
			return
		}
		s.data.lock.Lock()
		defer s.data.lock.Unlock()
		p, found := s.data.students[id]
		if !found {
			writeFailure(w, http.StatusNotFound, "Student not found")
			return
		}
		p.Status = strings.ToUpper(req.Status)
		s.data.students[id] = p
		writeSuccess(w, http.StatusOK, "Student status updated", p)
	}
}

func (s *Server) AdminFacultyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.data.lock.RLock()
		list := sortedValues(s.data.faculty)
		s.data.lock.RUnlock()
		writeSuccess(w, http.StatusOK, "Faculty", pageOf(list, r))
	}
}

func (s *Server) AdminCreateDepartmentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var d portal.Department
		if err := decodeBody(r, &d); err != nil {
			writeFailure(w, http.StatusBadRequest, "Malformed request")
			return
		}
		if d.Code == "" || d.Name == "" {
			writeValidation(w, map[string]string{"departmentCode": "Department code and name are required"})
			return
		}
		s.data.lock.Lock()
		defer s.data.lock.Unlock()
		for _, existing := range s.data.departments {
			if strings.EqualFold(existing.Code, d.Code) {
				writeFailure(w, http.StatusConflict, "Department code "+d.Code+" already exists")
				return
			}
		}
		d.ID = s.data.id()
		if d.Status == "" {
			d.Status = "ACTIVE"
		}
		s.data.departments[d.ID] = d
		writeSuccess(w, http.StatusCreated, "Department created", d)
	}
}

func (s *Server) AdminUpdateDepartmentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeFailure(w, http.StatusBadRequest, "Invalid department id")
			return
		}
		var d portal.Department
		if err := decodeBody(r, &d); err != nil {
			writeFailure(w, http.StatusBadRequest, "Malformed request")
			return
		}
		s.data.lock.Lock()
		defer s.data.lock.Unlock()
		existing, found := s.data.departments[id]
		if !found {
			writeFailure(w, http.StatusNotFound, "Department not found")
			return
		}
		d.ID = id
		if d.Code == "" {
			d.Code = existing.Code
		}
		if d.Name == "" {
			d.Name = existing.Name
		}
		if d.Status == "" {
			d.Status = existing.Status
		}
		s.data.departments[id] = d
		writeSuccess(w, http.StatusOK, "Department updated", d)
	}
}

func (s *Server) AdminDeleteDepartmentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeFailure(w, http.StatusBadRequest, "Invalid department id")
			return
		}
		s.data.lock.Lock()
		defer s.data.lock.Unlock()
		if _, found := s.data.departments[id]; !found {
			writeFailure(w, http.StatusNotFound, "Department not found")
			return
		}
		for _, c := range s.data.courses {
			if c.DepartmentID == id {
				writeFailure(w, http.StatusConflict, "Department still has courses")
				return
			}
		}
		delete(s.data.departments, id)
		writeSuccess(w, http.StatusOK, "Department deleted", nil)
	}
}

func (s *Server) AdminCreateCourseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c portal.Course
		if err := decodeBody(r, &c); err != nil {
			writeFailure(w, http.StatusBadRequest, "Malformed request")
			return
		}
		fields := map[string]string{}
		if c.Code == "" {
			fields["courseCode"] = "Course code is required"
		}
		if c.Name == "" {
			fields["courseName"] = "Course name is required"
		}
		if len(fields) > 0 {
			writeValidation(w, fields)
			return
		}
		s.data.lock.Lock()
		defer s.data.lock.Unlock()
		for _, existing := range s.data.courses {
			if strings.EqualFold(existing.Code, c.Code) {
				writeFailure(w, http.StatusConflict, "Course code "+c.Code+" already exists")
				return
			}
		}
		if c.DepartmentID != 0 {
			d, found := s.data.departments[c.DepartmentID]
			if !found {
				writeFailure(w, http.StatusNotFound, "Department not found")
				return
			}
			c.DepartmentName = d.Name
		}
		c.ID = s.data.id()
		c.EnrolledStudents = 0
		if c.Status == "" {
			c.Status = "ACTIVE"
		}
		s.data.courses[c.ID] = c
		writeSuccess(w, http.StatusCreated, "Course created", c)
	}
}

func (s *Server) AdminUpdateCourseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeFailure(w, http.StatusBadRequest, "Invalid course id")
			return
		}
		var c portal.Course
		if err := decodeBody(r, &c); err != nil {
			writeFailure(w, http.StatusBadRequest, "Malformed request")
			return
		}
		s.data.lock.Lock()
		defer s.data.lock.Unlock()
		existing, found := s.data.courses[id]
		if !found {
			writeFailure(w, http.StatusNotFound, "Course not found")
			return
		}
		c.ID = id
		c.EnrolledStudents = existing.EnrolledStudents
		if c.Code == "" {
			c.Code = existing.Code
		}
		if c.Name == "" {
			c.Name = existing.Name
		}
		if c.Status == "" {
			c.Status = existing.Status
		}
		if c.DepartmentID == 0 {
			c.DepartmentID, c.DepartmentName = existing.DepartmentID, existing.DepartmentName
		}
		s.data.courses[id] = c
		writeSuccess(w, http.StatusOK, "Course updated", c)
	}
}

func (s *Server) AdminDeleteCourseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			writeFailure(w, http.StatusBadRequest, "Invalid course id")
			return
		}
		s.data.lock.Lock()
		defer s.data.lock.Unlock()
		if _, found := s.data.courses[id]; !found {
			writeFailure(w, http.StatusNotFound, "Course not found")
			return
		}
		delete(s.data.courses, id)
		for eid, e := range s.data.enrollments {
			if e.CourseID == id {
				delete(s.data.enrollments, eid)
			}
		}
		writeSuccess(w, http.StatusOK, "Course deleted", nil)
	}
}

func (s *Server) AdminOverviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, totalUsers, _ := s.users.List("", 0, 0)
		s.data.lock.RLock()
		active := 0
		for _, e := range s.data.enrollments {
			if e.Status == "ENROLLED" {
				active++
			}
		}
		overview := portal.Overview{
			"totalUsers":        totalUsers,
			"totalStudents":     len(s.data.students),
			"totalFaculty":      len(s.data.faculty),
			"totalDepartments":  len(s.data.departments),
			"totalCourses":      len(s.data.courses),
			"activeEnrollments": active,
		}
		s.data.lock.RUnlock()
		writeSuccess(w, http.StatusOK, "Dashboard overview", overview)
	}
}
