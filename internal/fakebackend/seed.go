package fakebackend

import (
	"time"

	"github.com/jrsteele09/go-college-portal/internal/utils"
	"github.com/jrsteele09/go-college-portal/portal"
	"github.com/jrsteele09/go-college-portal/users"
)

// Seeded accounts, one per role
const (
	AdminEmail      = "admin@college.edu"
	AdminPassword   = "Admin1234"
	FacultyEmail    = "faculty@college.edu"
	FacultyPassword = "Faculty1234"
	StudentEmail    = "student@college.edu"
	StudentPassword = "Student1234"
)

func nowString() string {
	return time.Now().Format(time.RFC3339)
}

type seedUser struct {
	user     users.User
	password string
}

func (s *Server) seed() error {
	seeds := []seedUser{
		{users.User{Name: "Priya Admin", Email: AdminEmail, Role: users.RoleAdmin, Phone: "9000000001"}, AdminPassword},
		{users.User{Name: "Ravi Kumar", Email: FacultyEmail, Role: users.RoleFaculty, Phone: "9000000002", Gender: "Male"}, FacultyPassword},
		{users.User{Name: "Anita Sharma", Email: StudentEmail, Role: users.RoleStudent, Course: "B.Tech CSE", Year: "2", Semester: "3", Gender: "Female", SelectedSubjects: "CSE201,MAT201"}, StudentPassword},
	}
	for _, sd := range seeds {
		u := sd.user
		hash, err := users.HashPassword(sd.password)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
		u.IsActive = utils.Ptr(true)
		u.IsVerified = utils.Ptr(true)
		if err := s.users.Upsert(&u); err != nil {
			return err
		}
	}

	faculty, err := s.users.GetByEmail(FacultyEmail)
	if err != nil {
		return err
	}
	student, err := s.users.GetByEmail(StudentEmail)
	if err != nil {
		return err
	}

	c := s.data
	c.lock.Lock()
	defer c.lock.Unlock()

	cse := portal.Department{ID: c.id(), Code: "CSE", Name: "Computer Science Engineering", Location: "Block A", EstablishedYear: 1998, Status: "ACTIVE"}
	mat := portal.Department{ID: c.id(), Code: "MAT", Name: "Mathematics", Location: "Block C", EstablishedYear: 1985, Status: "ACTIVE"}
	c.departments[cse.ID] = cse
	c.departments[mat.ID] = mat

	courses := []portal.Course{
		{Code: "CSE201", Name: "Data Structures", Credits: 4, DepartmentID: cse.ID, DepartmentName: cse.Name, Semester: 3, Type: "CORE", MaxStudents: 60, Schedule: "MON-09:00,WED-10:00"},
		{Code: "CSE202", Name: "Operating Systems", Credits: 4, DepartmentID: cse.ID, DepartmentName: cse.Name, Semester: 3, Type: "CORE", MaxStudents: 60, Schedule: "TUE-09:00,THU-10:00"},
		{Code: "MAT201", Name: "Discrete Mathematics", Credits: 3, DepartmentID: mat.ID, DepartmentName: mat.Name, Semester: 3, Type: "CORE", MaxStudents: 2, Schedule: "FRI-11:00"},
		{Code: "CSE250", Name: "Web Technologies Lab", Credits: 2, DepartmentID: cse.ID, DepartmentName: cse.Name, Semester: 3, Type: "LAB", MaxStudents: 30, Classroom: "Lab 2"},
	}
	for i := range courses {
		co := courses[i]
		co.ID = c.id()
		co.Status = "ACTIVE"
		co.AcademicYear = "2024-2025"
		co.InstructorID = faculty.ID
		co.InstructorName = faculty.Name
		c.courses[co.ID] = co
	}

	c.students[student.ID] = portal.StudentProfile{User: *student, RollNumber: "CSE23001", DepartmentName: cse.Name, CGPA: 8.2, Status: "ACTIVE"}
	c.faculty[faculty.ID] = portal.FacultyProfile{User: *faculty, EmployeeID: "FAC042", DepartmentName: cse.Name, Designation: "Associate Professor"}

	for _, co := range sortedValues(c.courses) {
		if co.Code != "CSE201" && co.Code != "MAT201" {
			continue
		}
		e := portal.Enrollment{
			ID: c.id(), StudentID: student.ID, StudentName: student.Name,
			CourseID: co.ID, CourseCode: co.Code, CourseName: co.Name,
			Status: "ENROLLED", EnrollmentDate: "2024-07-15", AcademicYear: co.AcademicYear, Semester: co.Semester,
		}
		c.enrollments[e.ID] = e
		co.EnrolledStudents++
		c.courses[co.ID] = co

		g := portal.Grade{
			ID: c.id(), StudentID: student.ID, StudentName: student.Name, CourseID: co.ID, CourseCode: co.Code,
			AssessmentType: "MIDTERM", AssessmentName: "Internal Assessment 1", MaxMarks: 50, ObtainedMarks: 41,
		}
		finishGrade(&g)
		c.grades[g.ID] = g

		for day, status := range []string{"PRESENT", "PRESENT", "ABSENT", "PRESENT"} {
			a := portal.AttendanceRecord{
				ID: c.id(), StudentID: student.ID, CourseID: co.ID, CourseCode: co.Code,
				Date:   time.Date(2024, 8, day+1, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
				Status: status, SessionType: "THEORY", MarkedBy: faculty.Email,
			}
			c.attendance[a.ID] = a
		}
	}
	return nil
}

// finishGrade derives percentage, letter grade and grade points from marks
func finishGrade(g *portal.Grade) {
	if g.MaxMarks <= 0 {
		return
	}
	g.Percentage = g.ObtainedMarks / g.MaxMarks * 100
	switch p := g.Percentage; {
	case p >= 90:
		g.LetterGrade, g.GradePoints = "A+", 10
	case p >= 80:
		g.LetterGrade, g.GradePoints = "A", 9
	case p >= 70:
		g.LetterGrade, g.GradePoints = "B+", 8
	case p >= 60:
		g.LetterGrade, g.GradePoints = "B", 7
	case p >= 50:
		g.LetterGrade, g.GradePoints = "C", 6
	case p >= 40:
		g.LetterGrade, g.GradePoints = "D", 5
	default:
		g.LetterGrade, g.GradePoints = "F", 0
	}
}
