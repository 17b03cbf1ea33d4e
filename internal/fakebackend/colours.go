package fakebackend

import "net/http"

// ANSI escapes for the route table and request log
const (
	red     = "\033[31m"
	green   = "\033[32m"
	yellow  = "\033[33m"
	blue    = "\033[34m"
	magenta = "\033[35m"
	cyan    = "\033[36m"
	gray    = "\033[90m"

	resetColour = "\033[0m"
)

var methodColours = map[string]string{
	http.MethodGet:    green,
	http.MethodPost:   blue,
	http.MethodPut:    cyan,
	http.MethodDelete: yellow,
	http.MethodPatch:  magenta,
}

func methodColour(method string) string {
	if c, ok := methodColours[method]; ok {
		return c
	}
	return gray
}

// statusColour picks red for 5xx, yellow for 4xx and green otherwise
func statusColour(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return red
	case status >= http.StatusBadRequest:
		return yellow
	}
	return green
}
