package apiclient_test

import (
	"testing"

	"github.com/jrsteele09/go-college-portal/apiclient"
	"github.com/stretchr/testify/require"
)

func TestState(t *testing.T) {
	require.Equal(t, "refreshing", apiclient.StateRefreshing.String())
	require.Equal(t, "unknown", apiclient.State(42).String())
	require.False(t, apiclient.StateRetried.Terminal())
	require.True(t, apiclient.StateSucceeded.Terminal())
	require.True(t, apiclient.StateFailed.Terminal())
}
