package physics_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pongsim/internal/dynamo"
)

var _ = Describe("Boundary resolver", func() {
	It("keeps a ball dropped toward the floor inside the arena", func() {
		b := newBody(15, dynamo.Rect{Left: 0, Top: 0, Right: 300, Bottom: 600})
		b.SetPosition(150, 560)
		b.Fling(0, 100)

		flipped := false
		for i := 0; i < 5; i++ {
			b.Integrate(0.1)
			Expect(b.Y()).To(BeNumerically("<=", 585+1e-9))
			if b.State().DY < 0 {
				flipped = true
				Expect(b.State().DY).To(Equal(-100.0))
				break
			}
		}
		Expect(flipped).To(BeTrue())
		Expect(b.Y()).To(BeNumerically("~", 585, 1e-9))
		Expect(b.X()).To(Equal(150.0))
		Expect(b.Stats().WallHits).To(Equal(1))
	})

	It("reflects the wall-normal component and walks back along the path", func() {
		b := newBody(10, dynamo.Rect{Right: 100, Bottom: 100})
		b.SetPosition(85, 50)
		b.Fling(100, 50)

		b.Integrate(0.1)

		s := b.State()
		Expect(s.X).To(BeNumerically("~", 90, 1e-9))
		Expect(s.X + b.Radius()).To(BeNumerically("~", b.Arena().Right, 1e-9))
		Expect(s.Y).To(BeNumerically("~", 52.5, 1e-9))
		Expect(s.DX).To(Equal(-100.0))
		Expect(s.DY).To(Equal(50.0))
	})

	It("leaves an already inward velocity alone when pushing back", func() {
		b := newBody(10, dynamo.Rect{Right: 100, Bottom: 100})
		b.SetPosition(50, 50)
		b.Fling(-10, 0)
		b.SetState(dynamo.KinematicState{X: 95, Y: 50, DX: -10})

		b.Integrate(0.01)

		s := b.State()
		Expect(s.X).To(BeNumerically("~", 90, 1e-9))
		Expect(s.DX).To(Equal(-10.0))
		Expect(s.Y).To(Equal(50.0))
	})

	It("handles the left and top walls", func() {
		b := newBody(10, dynamo.Rect{Right: 100, Bottom: 100})
		b.SetPosition(50, 12)
		b.Fling(0, -40)

		b.Integrate(0.1)

		Expect(b.Y()).To(BeNumerically("~", 10, 1e-9))
		Expect(b.State().DY).To(Equal(40.0))

		b.SetPosition(11, 50)
		b.Fling(-30, 0)
		b.Integrate(0.1)
		Expect(b.X()).To(BeNumerically("~", 10, 1e-9))
		Expect(b.State().DX).To(Equal(30.0))
	})

	It("resolves a corner hit on both axes", func() {
		b := newBody(10, dynamo.Rect{Right: 100, Bottom: 100})
		b.SetPosition(85, 89)
		b.Fling(100, 100)

		b.Integrate(0.1)

		Expect(b.Contained(1e-9)).To(BeTrue())
		Expect(b.X()).To(BeNumerically("~", 86, 1e-9))
		Expect(b.Y()).To(BeNumerically("~", 90, 1e-9))
		Expect(b.Stats().WallHits).To(Equal(2))
		Expect(b.State().DX).To(BeNumerically("<", 0))
		Expect(b.State().DY).To(BeNumerically("<", 0))
	})

	It("pulls back a body left outside by a shrinking arena", func() {
		b := newBody(10, dynamo.Rect{Right: 200, Bottom: 200})
		b.SetPosition(180, 100)
		b.SetBoundary(dynamo.Rect{Right: 100, Bottom: 200})

		b.Integrate(0.016)

		Expect(b.X()).To(BeNumerically("~", 90, 1e-9))
		Expect(b.Contained(1e-9)).To(BeTrue())
	})

	It("holds the containment invariant over a long bouncing run", func() {
		b := newBody(15, dynamo.Rect{Right: 300, Bottom: 600})
		b.SetPosition(150, 300)
		b.Fling(1900, 1300)

		for i := 0; i < 2000; i++ {
			b.Integrate(0.016)
			Expect(b.Contained(1e-9)).To(BeTrue())
			Expect(b.State().Speed()).To(BeNumerically("<=", b.MaxSpeed()+1e-9))
		}
		Expect(b.Stats().WallHits).To(BeNumerically(">", 10))
	})
})
