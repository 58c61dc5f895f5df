package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pongsim/internal/dynamo"
	"github.com/san-kum/pongsim/internal/physics"
)

var _ = Describe("Force model", func() {
	Describe("forced mode", func() {
		It("converges on a stationary goal without overshoot", func() {
			b := newBody(10, dynamo.Rect{Right: 1000, Bottom: 1000})
			Expect(b.SetParam("k", 100)).To(Succeed())
			Expect(b.SetParam("b", 20)).To(Succeed())
			b.SetPosition(200, 200)
			Expect(b.SetGoal(300, 250)).To(BeTrue())

			maxOvershoot := 0.0
			for i := 0; i < 300; i++ {
				b.Integrate(0.01)
				maxOvershoot = math.Max(maxOvershoot, b.X()-300)
				maxOvershoot = math.Max(maxOvershoot, b.Y()-250)
			}

			Expect(b.X()).To(BeNumerically("~", 300, 0.01))
			Expect(b.Y()).To(BeNumerically("~", 250, 0.01))
			Expect(maxOvershoot).To(BeNumerically("<", 0.5))
			Expect(b.Mode()).To(Equal(dynamo.Forced))
		})

		It("never exceeds the speed limit", func() {
			p := physics.DefaultPlayerParams()
			p.MaxSpeed = 200
			b, err := physics.NewBody(p)
			Expect(err).NotTo(HaveOccurred())
			b.SetBoundary(dynamo.Rect{Right: 1000, Bottom: 1000})
			b.SetPosition(100, 100)
			Expect(b.SetGoal(900, 900)).To(BeTrue())

			for i := 0; i < 400; i++ {
				b.Integrate(0.016)
				Expect(b.State().Speed()).To(BeNumerically("<=", 200+1e-9))
			}
		})
	})

	Describe("free mode", func() {
		It("only ever loses speed", func() {
			p := physics.DefaultPlayerParams()
			b, err := physics.NewBody(p)
			Expect(err).NotTo(HaveOccurred())
			b.SetBoundary(dynamo.Rect{Right: 20000, Bottom: 20000})
			b.SetPosition(10000, 10000)
			b.Fling(800, -600)

			prev := b.State().Speed()
			for i := 0; i < 500; i++ {
				b.Integrate(0.016)
				speed := b.State().Speed()
				Expect(speed).To(BeNumerically("<=", prev+1e-12))
				prev = speed
			}
			Expect(prev).To(BeNumerically("<", 0.05*1000))
			Expect(b.Stats().WallHits).To(BeZero())
		})

		It("coasts in a straight line without drag", func() {
			b := newBody(10, dynamo.Rect{Right: 1000, Bottom: 1000})
			b.SetPosition(100, 100)
			b.Fling(50, 25)
			for i := 0; i < 10; i++ {
				b.Integrate(0.1)
			}
			Expect(b.X()).To(BeNumerically("~", 150, 1e-9))
			Expect(b.Y()).To(BeNumerically("~", 125, 1e-9))
		})
	})

	Describe("collision mode", func() {
		It("pushes along the contact normal", func() {
			arena := dynamo.Rect{Right: 1000, Bottom: 1000}
			a := newBody(15, arena)
			b := newBody(15, arena)
			a.SetPosition(500, 500)
			b.SetPosition(520, 500)
			physics.ResolvePair(a, b)

			ax, _ := a.Accelerate(a.State(), dynamo.KinematicState{})
			Expect(ax).To(BeNumerically("<", 0))
			bx, by := b.Accelerate(b.State(), dynamo.KinematicState{})
			Expect(bx).To(BeNumerically("~", -ax, 1e-9))
			Expect(by).To(BeZero())
		})

		It("applies K3·depth² minus K4·vn along the normal", func() {
			arena := dynamo.Rect{Right: 1000, Bottom: 1000}
			a := newBody(15, arena)
			b := newBody(15, arena)
			a.SetPosition(100, 100)
			b.SetPosition(120, 100)
			physics.ResolvePair(a, b)

			ax, ay := a.Accelerate(a.State(), dynamo.KinematicState{})
			Expect(ax).To(BeNumerically("~", -400000, 1e-6))
			Expect(ay).To(BeZero())
		})

		It("keeps the damped force when the bodies are already separating", func() {
			arena := dynamo.Rect{Right: 1000, Bottom: 1000}
			a := newBody(15, arena)
			b := newBody(15, arena)
			a.SetState(dynamo.KinematicState{X: 100, Y: 100, DX: -5000})
			b.SetPosition(120, 100)
			physics.ResolvePair(a, b)

			ax, _ := a.Accelerate(a.State(), dynamo.KinematicState{})
			Expect(ax).To(BeNumerically("~", -300000, 1e-6))
		})

		It("pulls back when damping outweighs the spring", func() {
			arena := dynamo.Rect{Right: 1000, Bottom: 1000}
			a := newBody(15, arena)
			b := newBody(15, arena)
			a.SetState(dynamo.KinematicState{X: 100, Y: 100, DX: -30000})
			b.SetPosition(120, 100)
			physics.ResolvePair(a, b)

			ax, _ := a.Accelerate(a.State(), dynamo.KinematicState{})
			Expect(ax).To(BeNumerically("~", 200000, 1e-6))
		})

		It("has no force once a trial stage separates the bodies", func() {
			arena := dynamo.Rect{Right: 1000, Bottom: 1000}
			a := newBody(15, arena)
			b := newBody(15, arena)
			a.SetPosition(500, 500)
			b.SetPosition(520, 500)
			physics.ResolvePair(a, b)

			ax, ay := a.Accelerate(a.State(), dynamo.KinematicState{X: -11})
			Expect(ax).To(BeZero())
			Expect(ay).To(BeZero())
		})
	})
})
