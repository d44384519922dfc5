package memory_test

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/jensholdgaard/eventrepo/internal/clock"
	"github.com/jensholdgaard/eventrepo/internal/event"
	"github.com/jensholdgaard/eventrepo/internal/memory"
)

var streamNames = []string{"alpha", "beta", "gamma", "delta"}

// populate appends one event per entry of assign, to streamNames[assign[i]],
// and returns the repository with the ids it wrote per stream.
func populate(assign []int) (*memory.Repository, map[string][]string, error) {
	repo := memory.New(&clock.Step{Start: time.Unix(0, 0).UTC(), Interval: time.Millisecond})
	byStream := make(map[string][]string)
	for i, a := range assign {
		stream := streamNames[a]
		id := fmt.Sprintf("e%d", i)
		if _, err := repo.Create(context.Background(), event.Event{ID: id, Type: "t"}, stream); err != nil {
			return nil, nil, err
		}
		byStream[stream] = append(byStream[stream], id)
	}
	return repo, byStream, nil
}

func assignments() gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, len(streamNames)-1))
}

func TestStreamIsSubsequenceOfGlobalOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("stream reads match the appends", prop.ForAll(
		func(assign []int) bool {
			repo, byStream, err := populate(assign)
			if err != nil {
				return false
			}
			ctx := context.Background()
			for _, stream := range streamNames {
				got, err := repo.ReadStreamEventsForward(ctx, stream)
				if err != nil || !slices.Equal(event.IDs(got), byStream[stream]) {
					return false
				}
				for i := 1; i < len(got); i++ {
					if got[i-1].Position >= got[i].Position {
						return false
					}
				}
			}
			return true
		},
		assignments(),
	))

	properties.Property("backward unbounded is forward reversed", prop.ForAll(
		func(assign []int) bool {
			repo, _, err := populate(assign)
			if err != nil {
				return false
			}
			ctx := context.Background()
			for _, stream := range streamNames {
				fwd, err := repo.ReadStreamEventsForward(ctx, stream)
				if err != nil {
					return false
				}
				bwd, err := repo.ReadStreamEventsBackward(ctx, stream)
				if err != nil {
					return false
				}
				ids := event.IDs(fwd)
				slices.Reverse(ids)
				if !slices.Equal(ids, event.IDs(bwd)) {
					return false
				}
			}
			return true
		},
		assignments(),
	))

	properties.TestingRun(t)
}

func TestPagingCoversStream(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("forward pages concatenate to the stream", prop.ForAll(
		func(assign []int, page int) bool {
			repo, byStream, err := populate(assign)
			if err != nil {
				return false
			}
			ctx := context.Background()
			for _, stream := range streamNames {
				var seen []string
				from := event.Head()
				for {
					got, err := repo.ReadEventsForward(ctx, stream, from, page)
					if err != nil || len(got) > page {
						return false
					}
					if len(got) == 0 {
						break
					}
					seen = append(seen, event.IDs(got)...)
					from = event.After(got[len(got)-1].ID)
				}
				if !slices.Equal(seen, byStream[stream]) {
					return false
				}
			}
			return true
		},
		assignments(),
		gen.IntRange(1, 7),
	))

	properties.Property("backward pages over all streams reverse the global order", prop.ForAll(
		func(assign []int, page int) bool {
			repo, _, err := populate(assign)
			if err != nil {
				return false
			}
			ctx := context.Background()
			var seen []string
			from := event.Head()
			for {
				got, err := repo.ReadAllStreamsBackward(ctx, from, page)
				if err != nil {
					return false
				}
				if len(got) == 0 {
					break
				}
				seen = append(seen, event.IDs(got)...)
				from = event.After(got[len(got)-1].ID)
			}
			if len(seen) != len(assign) {
				return false
			}
			for i, id := range seen {
				if id != fmt.Sprintf("e%d", len(assign)-1-i) {
					return false
				}
			}
			return true
		},
		assignments(),
		gen.IntRange(1, 7),
	))

	properties.TestingRun(t)
}

func TestDeletionIsStreamLocal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("deleting one stream leaves the rest", prop.ForAll(
		func(assign []int, victim int) bool {
			repo, byStream, err := populate(assign)
			if err != nil {
				return false
			}
			ctx := context.Background()
			before, err := repo.ReadAllStreamsForward(ctx, event.Head(), event.Unbounded)
			if err != nil {
				return false
			}
			if err := repo.DeleteStream(ctx, streamNames[victim]); err != nil {
				return false
			}
			after, err := repo.ReadAllStreamsForward(ctx, event.Head(), event.Unbounded)
			if err != nil || !slices.Equal(event.IDs(before), event.IDs(after)) {
				return false
			}
			for i, stream := range streamNames {
				got, err := repo.ReadStreamEventsForward(ctx, stream)
				if err != nil {
					return false
				}
				want := byStream[stream]
				if i == victim {
					want = nil
				}
				if !slices.Equal(event.IDs(got), want) {
					return false
				}
			}
			for _, id := range event.IDs(before) {
				if ok, _ := repo.HasEvent(ctx, id); !ok {
					return false
				}
			}
			return true
		},
		assignments(),
		gen.IntRange(0, len(streamNames)-1),
	))

	properties.TestingRun(t)
}
