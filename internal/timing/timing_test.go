package timing_test

import (
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	gc "gopkg.in/check.v1"

	"github.com/cwbudde/ampbench/internal/timing"
)

func Test(t *testing.T) {
	gc.TestingT(t)
}

type timingSuite struct {
	clock *testclock.Clock
	epoch time.Time
}

var _ = gc.Suite(&timingSuite{})

func (s *timingSuite) SetUpTest(c *gc.C) {
	s.epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.clock = testclock.NewClock(s.epoch)
}

func (s *timingSuite) TestStopwatchMeasuresClockAdvance(c *gc.C) {
	sw := timing.Start(s.clock)
	s.clock.Advance(1500 * time.Millisecond)
	sample := sw.Stop()

	c.Assert(sample.Start, gc.Equals, s.epoch)
	c.Assert(sample.Elapsed(), gc.Equals, 1500*time.Millisecond)
	c.Assert(sample.Milliseconds(), gc.Equals, int64(1500))
}

func (s *timingSuite) TestMillisecondsTruncates(c *gc.C) {
	sw := timing.Start(s.clock)
	s.clock.Advance(2*time.Millisecond + 999*time.Microsecond)
	c.Assert(sw.Stop().Milliseconds(), gc.Equals, int64(2))
}

func (s *timingSuite) TestStopwatchNilClockUsesWallClock(c *gc.C) {
	sample := timing.Start(nil).Stop()
	c.Assert(sample.Elapsed() >= 0, gc.Equals, true)
	c.Assert(sample.Start.IsZero(), gc.Equals, false)
}

func (s *timingSuite) TestSummarize(c *gc.C) {
	var samples []timing.Sample
	for _, d := range []time.Duration{4, 2, 6, 8} {
		sw := timing.Start(s.clock)
		s.clock.Advance(d * time.Millisecond)
		samples = append(samples, sw.Stop())
	}

	sum := timing.Summarize(samples)
	c.Check(sum.Count, gc.Equals, 4)
	c.Check(sum.Min, gc.Equals, 2*time.Millisecond)
	c.Check(sum.Max, gc.Equals, 8*time.Millisecond)
	c.Check(sum.Mean, gc.Equals, 5*time.Millisecond)
	c.Check(sum.Median, gc.Equals, 4*time.Millisecond)
	c.Check(sum.StdDev > 0, gc.Equals, true)
}

func (s *timingSuite) TestSummarizeEdgeCases(c *gc.C) {
	c.Check(timing.Summarize(nil), gc.DeepEquals, timing.Summary{})

	sw := timing.Start(s.clock)
	s.clock.Advance(time.Second)
	sum := timing.Summarize([]timing.Sample{sw.Stop()})
	c.Check(sum.Count, gc.Equals, 1)
	c.Check(sum.Mean, gc.Equals, time.Second)
	c.Check(sum.StdDev, gc.Equals, time.Duration(0))
}
