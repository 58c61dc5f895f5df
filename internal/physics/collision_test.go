package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pongsim/internal/dynamo"
	"github.com/san-kum/pongsim/internal/physics"
)

var _ = Describe("Pairwise collisions", func() {
	arena := dynamo.Rect{Right: 1000, Bottom: 1000}
	var a, b *physics.Body

	BeforeEach(func() {
		a = newBody(15, arena)
		b = newBody(15, arena)
		a.SetPosition(100, 100)
		b.SetPosition(120, 100)
	})

	It("reports depth and opposite unit normals for overlapping circles", func() {
		c, hit, err := physics.Detect(a, b)
		Expect(err).NotTo(HaveOccurred())
		Expect(hit).To(BeTrue())
		Expect(c.Depth).To(BeNumerically("~", 10, 1e-12))
		Expect(c.NX).To(BeNumerically("~", -1, 1e-12))
		Expect(c.NY).To(BeNumerically("~", 0, 1e-12))

		rev, _, _ := physics.Detect(b, a)
		Expect(rev.NX).To(BeNumerically("~", 1, 1e-12))
		Expect(rev.Depth).To(BeNumerically("~", 10, 1e-12))
	})

	It("puts both bodies into collision with mirrored contacts", func() {
		Expect(a.SetGoal(300, 300)).To(BeTrue())

		rep := physics.ResolvePair(a, b)

		Expect(rep).To(Equal(physics.Report{Pairs: 1, Contacts: 1}))
		Expect(a.Mode()).To(Equal(dynamo.Collision))
		Expect(b.Mode()).To(Equal(dynamo.Collision))

		ca, cb := a.Contacts(), b.Contacts()
		Expect(ca).To(HaveLen(1))
		Expect(cb).To(HaveLen(1))
		Expect(cb[0].NX).To(Equal(-ca[0].NX))
		Expect(cb[0].NY).To(Equal(-ca[0].NY))
		Expect(cb[0].Relative).To(Equal(ca[0].Relative.Neg()))
		Expect(ca[0].Relative).To(Equal(dynamo.KinematicState{X: -20}))
	})

	It("returns both bodies to free on the tick they separate", func() {
		physics.ResolvePair(a, b)
		b.SetPosition(200, 100)

		rep := physics.ResolvePair(a, b)

		Expect(rep.Contacts).To(BeZero())
		Expect(a.Mode()).To(Equal(dynamo.Free))
		Expect(b.Mode()).To(Equal(dynamo.Free))
		Expect(a.Contacts()).To(BeEmpty())
	})

	It("leaves forced bodies alone when nothing overlaps", func() {
		b.SetPosition(500, 500)
		Expect(a.SetGoal(50, 50)).To(BeTrue())

		physics.ResolvePair(a, b)

		Expect(a.Mode()).To(Equal(dynamo.Forced))
	})

	It("counts touching circles as a zero-depth contact", func() {
		b.SetPosition(130, 100)
		c, hit, err := physics.Detect(a, b)
		Expect(err).NotTo(HaveOccurred())
		Expect(hit).To(BeTrue())
		Expect(c.Depth).To(BeZero())
	})

	It("flags coincident centers and falls back to a fixed axis", func() {
		b.SetPosition(100, 100)

		c, hit, err := physics.Detect(a, b)
		Expect(hit).To(BeTrue())
		Expect(err).To(MatchError(dynamo.ErrDegenerateCollision))
		Expect(c.Degenerate).To(BeTrue())
		Expect(c.NX).To(Equal(1.0))
		Expect(c.Depth).To(Equal(30.0))

		rep := physics.ResolvePair(a, b)
		Expect(rep.Degenerate).To(Equal(1))
		Expect(a.Stats().DegenerateContacts).To(Equal(1))
		Expect(b.Contacts()[0].NX).To(Equal(-1.0))

		a.Integrate(0.01)
		b.Integrate(0.01)
		Expect(a.X()).To(BeNumerically(">", b.X()))
	})

	It("pushes overlapping bodies apart symmetrically", func() {
		for i := 0; i < 20; i++ {
			physics.ResolvePair(a, b)
			a.Integrate(0.005)
			b.Integrate(0.005)
		}

		Expect(b.X() - a.X()).To(BeNumerically(">", 20))
		Expect(a.State().DX).To(BeNumerically("~", -b.State().DX, 1e-9))
		Expect(math.Abs(a.Y() - 100)).To(BeNumerically("<", 1e-9))
	})

	It("separates and settles back to free", func() {
		for i := 0; i < 200; i++ {
			physics.ResolvePair(a, b)
			a.Integrate(0.005)
			b.Integrate(0.005)
		}
		physics.ResolvePair(a, b)

		Expect(b.X() - a.X()).To(BeNumerically(">=", 30))
		Expect(a.Mode()).To(Equal(dynamo.Free))
		Expect(b.Mode()).To(Equal(dynamo.Free))
	})

	It("extends to more than two bodies", func() {
		c := newBody(15, arena)
		a.SetPosition(100, 100)
		b.SetPosition(125, 100)
		c.SetPosition(150, 100)

		rep := physics.ResolveContacts([]*physics.Body{a, b, c})

		Expect(rep.Pairs).To(Equal(3))
		Expect(rep.Contacts).To(Equal(2))
		Expect(b.Contacts()).To(HaveLen(2))
		Expect(a.Contacts()).To(HaveLen(1))
		Expect(c.Mode()).To(Equal(dynamo.Collision))

		ax, _ := b.Accelerate(b.State(), dynamo.KinematicState{})
		Expect(ax).To(BeNumerically("~", 0, 1e-9))
	})
})
