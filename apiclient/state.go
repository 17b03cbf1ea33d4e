package apiclient

// State tracks one logical request through the 401 refresh-and-retry protocol.
// A request moves Initial → Refreshing → Retried and ends in Succeeded or
// Failed. There is no transition out of Retried on a 401 other than Failed,
// which caps every logical request at two attempts.
type State int

const (
	StateInitial State = iota
	StateRefreshing
	StateRetried
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateRefreshing:
		return "refreshing"
	case StateRetried:
		return "retried"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether no further attempt can be made from s
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// StateHook observes every transition of a logical request
type StateHook func(requestID string, from, to State)

// call is the per-request state threaded through Dispatcher.Request
type call struct {
	requestID string
	state     State
	attempts  int
	bearer    string // token sent with the latest attempt
	hook      StateHook
}

func (c *call) moveTo(to State) {
	from := c.state
	c.state = to
	if c.hook != nil {
		c.hook(c.requestID, from, to)
	}
}
