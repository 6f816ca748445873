package middleware

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// redismock.NewClientMock builds an internal redis client that it never
	// exposes, so its pool reaper goroutine cannot be closed by the tests.
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper"),
	)
}
