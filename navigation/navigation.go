// Package navigation names the places the portal can send a user and the
// hook through which the embedding program acts on them.
package navigation

import "sync"

// Destination is a logical page of the portal
type Destination string

const (
	Login   Destination = "login"
	Admin   Destination = "admin"
	Faculty Destination = "faculty"
	Student Destination = "student"
	Index   Destination = "index"
)

// Page returns the page file the browser front end used for d
func (d Destination) Page() string {
	return string(d) + ".html"
}

// Navigator is told where the user should go next. A CLI prints guidance; a
// test records the call.
type Navigator interface {
	Navigate(to Destination)
}

// NavigatorFunc adapts a function to a Navigator
type NavigatorFunc func(to Destination)

func (f NavigatorFunc) Navigate(to Destination) {
	f(to)
}

// Discard ignores every navigation
var Discard Navigator = NavigatorFunc(func(Destination) {})

// Recorder remembers every destination it was sent to
type Recorder struct {
	visited []Destination
	lock    sync.Mutex
}

func (r *Recorder) Navigate(to Destination) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.visited = append(r.visited, to)
}

// Visited returns a copy of the destinations in call order
func (r *Recorder) Visited() []Destination {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]Destination(nil), r.visited...)
}

// Last returns the most recent destination, or "" when there was none
func (r *Recorder) Last() Destination {
	r.lock.Lock()
	defer r.lock.Unlock()
	if len(r.visited) == 0 {
		return ""
	}
	return r.visited[len(r.visited)-1]
}
