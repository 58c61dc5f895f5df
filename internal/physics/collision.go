package physics

import (
	"errors"

	"github.com/san-kum/pongsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// fallbackNormal is used when two centers coincide exactly.
var fallbackNormal = r2.Vec{X: 1, Y: 0}

// Report summarizes one contact resolution pass.
type Report struct {
	Pairs      int
	Contacts   int
	Degenerate int
}

// Detect computes the contact between a and b as seen from a. It reports
// false when the circles do not overlap. Coincident centers produce a contact
// along fallbackNormal together with ErrDegenerateCollision.
func Detect(a, b *Body) (dynamo.Contact, bool, error) {
	d := r2.Sub(r2.Vec{X: a.state.X, Y: a.state.Y}, r2.Vec{X: b.state.X, Y: b.state.Y})
	distance := r2.Norm(d)
	depth := a.p.Radius + b.p.Radius - distance
	if depth < 0 {
		return dynamo.Contact{}, false, nil
	}

	c := dynamo.Contact{Depth: depth, Relative: a.state.Sub(b.state)}
	if distance == 0 {
		c.NX, c.NY, c.Degenerate = fallbackNormal.X, fallbackNormal.Y, true
		return c, true, dynamo.ErrDegenerateCollision
	}
	n := r2.Scale(1/distance, d)
	c.NX, c.NY = n.X, n.Y
	return c, true, nil
}

// ResolveContacts checks every unordered pair of bodies, hands each
// overlapping pair mirrored contacts, and switches modes: a body with at least
// one live contact enters Collision, a body in Collision with none returns to
// Free. Bodies in other modes without contacts are left alone.
func ResolveContacts(bodies []*Body) Report {
	var rep Report
	for _, b := range bodies {
		b.contacts = b.contacts[:0]
	}

	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			a, b := bodies[i], bodies[j]
			rep.Pairs++

			c, hit, err := Detect(a, b)
			if !hit {
				continue
			}
			rep.Contacts++
			if errors.Is(err, dynamo.ErrDegenerateCollision) {
				rep.Degenerate++
				a.stats.DegenerateContacts++
				b.stats.DegenerateContacts++
			}
			a.contacts = append(a.contacts, c)
			b.contacts = append(b.contacts, c.Reverse())
		}
	}

	for _, b := range bodies {
		b.settleContacts()
	}
	return rep
}

// ResolvePair is ResolveContacts for exactly two bodies.
func ResolvePair(a, b *Body) Report {
	return ResolveContacts([]*Body{a, b})
}

func (b *Body) settleContacts() {
	if len(b.contacts) > 0 {
		b.stats.ContactTicks++
		b.switchMode(dynamo.Collision)
		return
	}
	if b.mode == dynamo.Collision {
		b.switchMode(dynamo.Free)
	}
}
