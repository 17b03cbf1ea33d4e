package fakebackend

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-college-portal/portal"
)

// catalog holds everything except users and tokens
type catalog struct {
	departments map[int64]portal.Department
	courses     map[int64]portal.Course
	enrollments map[int64]portal.Enrollment
	grades      map[int64]portal.Grade
	attendance  map[int64]portal.AttendanceRecord
	students    map[int64]portal.StudentProfile // keyed by user id
	faculty     map[int64]portal.FacultyProfile // keyed by user id
	activity    map[int64][]map[string]any      // keyed by user id

	resetTokens  map[string]string // token to lower-cased email
	verifyTokens map[string]string // token to lower-cased email

	nextID int64
	lock   sync.RWMutex
}

func newCatalog() *catalog {
	return &catalog{
		departments:  make(map[int64]portal.Department),
		courses:      make(map[int64]portal.Course),
		enrollments:  make(map[int64]portal.Enrollment),
		grades:       make(map[int64]portal.Grade),
		attendance:   make(map[int64]portal.AttendanceRecord),
		students:     make(map[int64]portal.StudentProfile),
		faculty:      make(map[int64]portal.FacultyProfile),
		activity:     make(map[int64][]map[string]any),
		resetTokens:  make(map[string]string),
		verifyTokens: make(map[string]string),
		nextID:       100,
	}
}

// id hands out identifiers for every catalogue entity. Caller holds lock.
func (c *catalog) id() int64 {
	c.nextID++
	return c.nextID
}

func sortedValues[T any](m map[int64]T) []T {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func (c *catalog) departmentList() []portal.Department {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return sortedValues(c.departments)
}

func (c *catalog) courseList() []portal.Course {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return sortedValues(c.courses)
}

func (c *catalog) enrolledCourseIDs(studentID int64) map[int64]bool {
	ids := make(map[int64]bool)
	for _, e := range c.enrollments {
		if e.StudentID == studentID && e.Status == "ENROLLED" {
			ids[e.CourseID] = true
		}
	}
	return ids
}

func (c *catalog) issueResetToken(email string) string {
	c.lock.Lock()
	defer c.lock.Unlock()
	t := uuid.NewString()
	c.resetTokens[t] = strings.ToLower(email)
	return t
}

// consumeResetToken returns the email a reset token was issued to and
// invalidates it
func (c *catalog) consumeResetToken(t string) (string, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	email, ok := c.resetTokens[t]
	if ok {
		delete(c.resetTokens, t)
	}
	return email, ok
}

func (c *catalog) resetTokenFor(email string) (string, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return tokenFor(c.resetTokens, email)
}

func (c *catalog) issueVerifyToken(email string) string {
	c.lock.Lock()
	defer c.lock.Unlock()
	for t, e := range c.verifyTokens {
		if e == strings.ToLower(email) {
			delete(c.verifyTokens, t)
		}
	}
	t := uuid.NewString()
	c.verifyTokens[t] = strings.ToLower(email)
	return t
}

func (c *catalog) consumeVerifyToken(t string) (string, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	email, ok := c.verifyTokens[t]
	if ok {
		delete(c.verifyTokens, t)
	}
	return email, ok
}

func (c *catalog) verifyTokenFor(email string) (string, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return tokenFor(c.verifyTokens, email)
}

func tokenFor(tokens map[string]string, email string) (string, bool) {
	for t, e := range tokens {
		if e == strings.ToLower(email) {
			return t, true
		}
	}
	return "", false
}

func (c *catalog) recordActivity(userID int64, action, description string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.activity[userID] = append(c.activity[userID], map[string]any{
		"action":      action,
		"description": description,
		"timestamp":   nowString(),
	})
}

func (c *catalog) activityFor(userID int64) []map[string]any {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return append([]map[string]any{}, c.activity[userID]...)
}
