package receiver

import (
	"context"
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/ecgrx/pkg/framework"
	"github.com/robotalks/ecgrx/pkg/link"
)

type tickContext struct {
	now time.Time
}

func (c *tickContext) Context() context.Context { return context.Background() }
func (c *tickContext) Time() time.Time          { return c.now }
func (c *tickContext) PriorityLevel() int       { return fx.PrLvPostProc }
func (c *tickContext) Iteration() uint64        { return 0 }

type fixedStats struct {
	stats link.Stats
}

func (s *fixedStats) Stats() link.Stats { return s.stats }

func TestStatsReporter(t *testing.T) {
	src := &fixedStats{stats: link.Stats{Bytes: 3, Frames: 1}}
	r := newStatsReporter(src, time.Second)
	start := time.Unix(1000, 0)

	_, due := r.update(start)
	require.False(t, due)

	src.stats = link.Stats{Bytes: 12, Frames: 3, Dropped: 1}
	_, due = r.update(start.Add(500 * time.Millisecond))
	require.False(t, due)

	delta, due := r.update(start.Add(time.Second))
	require.True(t, due)
	require.Equal(t, link.Stats{Bytes: 9, Frames: 2, Dropped: 1}, delta)

	delta, due = r.update(start.Add(2 * time.Second))
	require.True(t, due)
	require.Equal(t, link.Stats{}, delta)
}

func TestStatsReporterControl(t *testing.T) {
	require.NoError(t, flag.Set("v", "1"))
	defer flag.Set("v", "0")

	src := &fixedStats{stats: link.Stats{Bytes: 3, Frames: 1}}
	r := newStatsReporter(src, time.Second)
	cc := &tickContext{now: time.Unix(1000, 0)}
	require.NoError(t, r.Control(cc))

	src.stats = link.Stats{Bytes: 6, Frames: 2}
	cc.now = cc.now.Add(time.Second)
	require.NoError(t, r.Control(cc))
	require.Equal(t, src.stats, r.last)

	cc.now = cc.now.Add(time.Second)
	require.NoError(t, r.Control(cc))
	require.Equal(t, src.stats, r.last)
}
