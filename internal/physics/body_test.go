package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pongsim/internal/dynamo"
	"github.com/san-kum/pongsim/internal/physics"
)

var _ = Describe("Body", func() {
	arena := dynamo.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}

	Describe("construction", func() {
		It("rejects non-positive radius, mass and speed", func() {
			for _, mutate := range []func(*physics.Params){
				func(p *physics.Params) { p.Radius = 0 },
				func(p *physics.Params) { p.InverseMass = -1 },
				func(p *physics.Params) { p.MaxSpeed = math.NaN() },
				func(p *physics.Params) { p.K3 = -5 },
			} {
				p := physics.DefaultPlayerParams()
				mutate(&p)
				_, err := physics.NewBody(p)
				Expect(err).To(MatchError(dynamo.ErrParameterBounds))
			}
		})

		It("starts in free mode at rest", func() {
			b, err := physics.NewBody(physics.DefaultPlayerParams())
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Mode()).To(Equal(dynamo.Free))
			Expect(b.State()).To(Equal(dynamo.KinematicState{}))
		})
	})

	Describe("SetGoal", func() {
		var b *physics.Body

		BeforeEach(func() {
			b = newBody(10, arena)
			b.SetPosition(30, 30)
		})

		It("insets the arena by the radius", func() {
			Expect(b.Inset()).To(Equal(dynamo.Rect{Left: 10, Top: 10, Right: 90, Bottom: 90}))
		})

		It("accepts a goal inside the inset rectangle and switches to forced", func() {
			Expect(b.SetGoal(50, 50)).To(BeTrue())
			Expect(b.Mode()).To(Equal(dynamo.Forced))
			Expect(b.Goal()).To(Equal(dynamo.KinematicState{X: 50, Y: 50}))
		})

		It("ignores a goal outside the inset rectangle", func() {
			Expect(b.SetGoal(50, 50)).To(BeTrue())
			Expect(b.SetGoal(200, 200)).To(BeFalse())
			Expect(b.Mode()).To(Equal(dynamo.Forced))
			Expect(b.Goal()).To(Equal(dynamo.KinematicState{X: 50, Y: 50}))
		})

		It("leaves a free body free when the goal is rejected", func() {
			Expect(b.SetGoal(95, 50)).To(BeFalse())
			Expect(b.Mode()).To(Equal(dynamo.Free))
		})

		It("clamps instead of rejecting under the clamp policy", func() {
			p := b.Params()
			p.GoalPolicy = physics.ClampGoal
			clamped, err := physics.NewBody(p)
			Expect(err).NotTo(HaveOccurred())
			clamped.SetBoundary(arena)

			Expect(clamped.SetGoal(200, -20)).To(BeTrue())
			Expect(clamped.Goal()).To(Equal(dynamo.KinematicState{X: 90, Y: 10}))
		})

		It("carries a goal velocity", func() {
			Expect(b.SetGoalVelocity(40, 60, 5, -5)).To(BeTrue())
			Expect(b.Goal()).To(Equal(dynamo.KinematicState{X: 40, Y: 60, DX: 5, DY: -5}))
		})
	})

	Describe("SetPosition", func() {
		It("resets state and goal to rest at the point", func() {
			b := newBody(10, arena)
			b.SetGoalVelocity(50, 50, 3, 3)
			b.Fling(40, 40)
			b.SetPosition(20, 70)
			Expect(b.State()).To(Equal(dynamo.KinematicState{X: 20, Y: 70}))
			Expect(b.Goal()).To(Equal(dynamo.KinematicState{X: 20, Y: 70}))
		})
	})

	Describe("Fling", func() {
		It("releases in free mode with the speed clamped", func() {
			b := newBody(10, arena)
			b.SetPosition(50, 50)
			b.SetGoal(60, 60)
			b.Fling(3*b.MaxSpeed(), 4*b.MaxSpeed())

			Expect(b.Mode()).To(Equal(dynamo.Free))
			Expect(b.State().Speed()).To(BeNumerically("~", b.MaxSpeed(), 1e-9))
			Expect(b.State().DY / b.State().DX).To(BeNumerically("~", 4.0/3.0, 1e-12))
		})
	})

	Describe("invalid mode", func() {
		It("applies zero acceleration and reports the condition", func() {
			b := newBody(10, dynamo.Rect{Right: 1000, Bottom: 1000})
			b.SetPosition(500, 500)
			b.Fling(10, 0)
			b.SetMode(dynamo.Mode(42))

			b.Integrate(0.1)

			Expect(b.Err()).To(MatchError(dynamo.ErrInvalidMode))
			Expect(b.Stats().InvalidModes).To(Equal(1))
			Expect(b.State().DX).To(Equal(10.0))
			Expect(b.X()).To(BeNumerically("~", 501, 1e-9))
		})
	})

	Describe("parameters", func() {
		It("exposes and updates tuning constants", func() {
			b := newBody(10, arena)
			Expect(b.GetParams()).To(HaveKeyWithValue("k", physics.DefaultStiffness))
			Expect(b.SetParam("k", 250)).To(Succeed())
			Expect(b.Params().K).To(Equal(250.0))
			Expect(b.SetParam("max_speed", 0)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(b.SetParam("k2", -1)).To(MatchError(dynamo.ErrParameterBounds))
			Expect(b.SetParam("gravity", 1)).NotTo(Succeed())
		})
	})

	It("ignores non-positive timesteps", func() {
		b := newBody(10, arena)
		b.SetPosition(50, 50)
		b.Fling(10, 10)
		before := b.State()
		b.Integrate(0)
		b.Integrate(-0.1)
		b.Integrate(math.NaN())
		Expect(b.State()).To(Equal(before))
	})
})
