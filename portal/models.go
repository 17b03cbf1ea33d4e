package portal

import "github.com/jrsteele09/go-college-portal/users"

// Page is one page of a paged listing, in the backend's page format
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"` // Zero based
	Size          int   `json:"size"`
}

// Last reports whether this is the final page
func (p *Page[T]) Last() bool {
	return p.Number+1 >= p.TotalPages
}

// Overview is a free form set of dashboard figures
type Overview map[string]any

type Department struct {
	ID              int64  `json:"id,omitempty"`
	Code            string `json:"departmentCode"`
	Name            string `json:"departmentName"`
	Description     string `json:"description,omitempty"`
	Location        string `json:"location,omitempty"`
	ContactEmail    string `json:"contactEmail,omitempty"`
	ContactPhone    string `json:"contactPhone,omitempty"`
	EstablishedYear int    `json:"establishedYear,omitempty"`
	Status          string `json:"status,omitempty"` // ACTIVE or INACTIVE
}

type Course struct {
	ID               int64  `json:"id,omitempty"`
	Code             string `json:"courseCode"`
	Name             string `json:"courseName"`
	Description      string `json:"description,omitempty"`
	Credits          int    `json:"credits,omitempty"`
	DepartmentID     int64  `json:"departmentId,omitempty"`
	DepartmentName   string `json:"departmentName,omitempty"`
	InstructorID     int64  `json:"instructorId,omitempty"`
	InstructorName   string `json:"instructorName,omitempty"`
	Semester         int    `json:"semester,omitempty"`
	AcademicYear     string `json:"academicYear,omitempty"`
	Type             string `json:"type,omitempty"`   // CORE, ELECTIVE or LAB
	Status           string `json:"status,omitempty"` // ACTIVE or INACTIVE
	MaxStudents      int    `json:"maxStudents,omitempty"`
	EnrolledStudents int    `json:"enrolledStudents"`
	Schedule         string `json:"schedule,omitempty"` // e.g. MON-09:00,WED-10:00
	Classroom        string `json:"classroom,omitempty"`
}

// Full reports whether the course has reached its enrollment limit
func (c *Course) Full() bool {
	return c.MaxStudents > 0 && c.EnrolledStudents >= c.MaxStudents
}

type Enrollment struct {
	ID                   int64   `json:"id,omitempty"`
	StudentID            int64   `json:"studentId"`
	StudentName          string  `json:"studentName,omitempty"`
	CourseID             int64   `json:"courseId"`
	CourseCode           string  `json:"courseCode,omitempty"`
	CourseName           string  `json:"courseName,omitempty"`
	Status               string  `json:"status,omitempty"` // ENROLLED, DROPPED or COMPLETED
	EnrollmentDate       string  `json:"enrollmentDate,omitempty"`
	AcademicYear         string  `json:"academicYear,omitempty"`
	Semester             int     `json:"semester,omitempty"`
	Grade                string  `json:"grade,omitempty"`
	AttendancePercentage float64 `json:"attendancePercentage"`
}

type Grade struct {
	ID             int64   `json:"id,omitempty"`
	StudentID      int64   `json:"studentId"`
	StudentName    string  `json:"studentName,omitempty"`
	CourseID       int64   `json:"courseId"`
	CourseCode     string  `json:"courseCode,omitempty"`
	AssessmentType string  `json:"assessmentType,omitempty"` // QUIZ, ASSIGNMENT, MIDTERM, FINAL...
	AssessmentName string  `json:"assessmentName,omitempty"`
	MaxMarks       float64 `json:"maxMarks"`
	ObtainedMarks  float64 `json:"obtainedMarks"`
	Percentage     float64 `json:"percentage"`
	LetterGrade    string  `json:"letterGrade,omitempty"`
	GradePoints    float64 `json:"gradePoints"`
	Remarks        string  `json:"remarks,omitempty"`
}

type AttendanceRecord struct {
	ID          int64  `json:"id,omitempty"`
	StudentID   int64  `json:"studentId"`
	CourseID    int64  `json:"courseId"`
	CourseCode  string `json:"courseCode,omitempty"`
	Date        string `json:"attendanceDate"` // YYYY-MM-DD
	Status      string `json:"status"`         // PRESENT, ABSENT, LATE or EXCUSED
	SessionType string `json:"sessionType,omitempty"`
	Remarks     string `json:"remarks,omitempty"`
	MarkedBy    string `json:"markedBy,omitempty"`
}

// AttendanceSummary is a student's attendance in one course
type AttendanceSummary struct {
	CourseID   int64   `json:"courseId"`
	CourseCode string  `json:"courseCode,omitempty"`
	CourseName string  `json:"courseName,omitempty"`
	Attended   int     `json:"attended"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

type StudentProfile struct {
	users.User
	RollNumber     string  `json:"rollNumber,omitempty"`
	DepartmentName string  `json:"departmentName,omitempty"`
	CGPA           float64 `json:"cgpa,omitempty"`
	Status         string  `json:"status,omitempty"` // ACTIVE, SUSPENDED, GRADUATED...
}

type FacultyProfile struct {
	users.User
	EmployeeID     string `json:"employeeId,omitempty"`
	DepartmentName string `json:"departmentName,omitempty"`
	Designation    string `json:"designation,omitempty"`
}
