package sim

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func TestLoopResumeOffsetAndFrameCap(t *testing.T) {
	g := NewWithT(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)

	s := New(newBall(t, "ball", 500, 500))
	g.Expect(s.Fling(0, 100, 0)).To(Succeed())

	loop := NewLoop(s, clock, DefaultLoopConfig())

	frame, err := loop.Tick()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(frame.Stepped).To(BeFalse(), "not started")

	loop.Start()
	g.Expect(loop.Running()).To(BeTrue())

	frame, _ = loop.Tick()
	g.Expect(frame.Stepped).To(BeFalse(), "inside resume offset")

	clock.Advance(DefaultResumeOffset)
	frame, _ = loop.Tick()
	g.Expect(frame.Stepped).To(BeFalse(), "exactly at the mark")

	clock.Advance(16 * time.Millisecond)
	frame, _ = loop.Tick()
	g.Expect(frame.Stepped).To(BeTrue())
	g.Expect(frame.Dt).To(BeNumerically("~", 0.016, 1e-9))

	clock.Advance(time.Second)
	frame, _ = loop.Tick()
	g.Expect(frame.Stepped).To(BeTrue())
	g.Expect(frame.Dt).To(Equal(DefaultMaxFrameDt))
	g.Expect(frame.Diagnostics.Ticks).To(Equal(2))
}

func TestLoopPauseResume(t *testing.T) {
	g := NewWithT(t)
	clock := NewManualClock(time.Unix(0, 0))
	s := New(newBall(t, "ball", 500, 500))
	loop := NewLoop(s, clock, LoopConfig{ResumeOffset: 50 * time.Millisecond})

	loop.Start()
	clock.Advance(60 * time.Millisecond)
	frame, _ := loop.Tick()
	g.Expect(frame.Stepped).To(BeTrue())
	g.Expect(frame.Dt).To(BeNumerically("~", 0.01, 1e-9))

	g.Expect(loop.Toggle()).To(BeFalse())
	clock.Advance(5 * time.Second)
	frame, _ = loop.Tick()
	g.Expect(frame.Stepped).To(BeFalse())
	g.Expect(frame.Tick).To(Equal(1))

	g.Expect(loop.Toggle()).To(BeTrue())
	frame, _ = loop.Tick()
	g.Expect(frame.Stepped).To(BeFalse(), "paused interval must not be integrated")

	clock.Advance(70 * time.Millisecond)
	frame, _ = loop.Tick()
	g.Expect(frame.Stepped).To(BeTrue())
	g.Expect(frame.Dt).To(BeNumerically("~", 0.02, 1e-9))
	g.Expect(s.Diagnostics().Ticks).To(Equal(2))
}

func TestLoopSkipsBackwardClock(t *testing.T) {
	g := NewWithT(t)
	start := time.Unix(100, 0)
	clock := NewManualClock(start)
	s := New(newBall(t, "ball", 500, 500))
	loop := NewLoop(s, clock, LoopConfig{})

	loop.Start()
	clock.Advance(10 * time.Millisecond)
	frame, _ := loop.Tick()
	g.Expect(frame.Stepped).To(BeTrue())

	clock.Set(start)
	frame, _ = loop.Tick()
	g.Expect(frame.Stepped).To(BeFalse())
}
