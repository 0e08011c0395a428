package receiver

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/ecgrx/pkg/framework"
	"github.com/robotalks/ecgrx/pkg/link"
)

type statsSource interface {
	Stats() link.Stats
}

// statsReporter logs receiver counters once per interval of loop time.
type statsReporter struct {
	source   statsSource
	interval time.Duration

	last link.Stats
	next time.Time
}

func newStatsReporter(src statsSource, interval time.Duration) *statsReporter {
	return &statsReporter{source: src, interval: interval}
}

// Control implements Controller.
func (r *statsReporter) Control(cc fx.ControlContext) error {
	delta, due := r.update(cc.Time())
	if due && bool(glog.V(1)) {
		stats := r.last
		glog.Infof("frames %d (+%d), bytes %d (+%d), dropped %d (+%d)",
			stats.Frames, delta.Frames, stats.Bytes, delta.Bytes, stats.Dropped, delta.Dropped)
		if delta.Frames == 0 {
			glog.Info("no frames received, output holds the last sample")
		}
	}
	return nil
}

func (r *statsReporter) update(now time.Time) (delta link.Stats, due bool) {
	if r.next.IsZero() {
		r.next = now.Add(r.interval)
		r.last = r.source.Stats()
		return
	}
	if now.Before(r.next) {
		return
	}
	r.next = now.Add(r.interval)
	stats := r.source.Stats()
	delta = link.Stats{
		Bytes:   stats.Bytes - r.last.Bytes,
		Frames:  stats.Frames - r.last.Frames,
		Dropped: stats.Dropped - r.last.Dropped,
	}
	r.last = stats
	return delta, true
}
