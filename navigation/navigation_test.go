package navigation_test

import (
	"testing"

	"github.com/jrsteele09/go-college-portal/navigation"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := &navigation.Recorder{}
	require.Equal(t, navigation.Destination(""), r.Last())

	r.Navigate(navigation.Student)
	r.Navigate(navigation.Login)
	require.Equal(t, []navigation.Destination{navigation.Student, navigation.Login}, r.Visited())
	require.Equal(t, navigation.Login, r.Last())
}

func TestPage(t *testing.T) {
	require.Equal(t, "faculty.html", navigation.Faculty.Page())
}

func TestNavigatorFunc(t *testing.T) {
	var got navigation.Destination
	navigation.NavigatorFunc(func(d navigation.Destination) { got = d }).Navigate(navigation.Admin)
	require.Equal(t, navigation.Admin, got)
	navigation.Discard.Navigate(navigation.Index)
}
