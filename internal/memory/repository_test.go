package memory_test

import (
	"testing"

	"github.com/jensholdgaard/eventrepo/internal/clock"
	"github.com/jensholdgaard/eventrepo/internal/event"
	"github.com/jensholdgaard/eventrepo/internal/memory"
	"github.com/jensholdgaard/eventrepo/internal/repotest"
)

func TestRepository(t *testing.T) {
	repotest.Run(t, func(_ *testing.T, clk clock.Clock) event.Repository {
		return memory.New(clk)
	})
}
