package stats

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// NewStatsUpdater registers an expvar map, which can only happen once per
// process, so the whole lifecycle is exercised in a single test.
func TestStatsUpdater(t *testing.T) {
	mux := http.NewServeMux()
	su := NewStatsUpdater(mux)
	assert.NotNil(t, su, "expected StatsUpdater to be non-nil")
	assert.NotNil(t, su.updateChan, "expected updateChan to be initialized")

	handler, pattern := mux.Handler(&http.Request{URL: &url.URL{Path: "/debug/vars"}, Method: http.MethodGet})
	assert.NotNil(t, handler, "expected handler for /debug/vars to be set")
	assert.Equal(t, "GET /debug/vars", pattern, "expected handler to be registered for GET method on /debug/vars")

	su.RegisterMetric(MessagesBroadcast)
	su.Run()

	su.Incr(MessagesBroadcast)
	su.Add(MessagesBroadcast, 3)
	su.Decr(MessagesBroadcast)

	assert.Eventually(t, func() bool {
		return su.vars.Get(MessagesBroadcast).String() == "3"
	}, time.Second, 10*time.Millisecond, "expected metric to settle at 3")

	su.Stop()
}
