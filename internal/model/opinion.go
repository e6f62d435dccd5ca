package model

import "math"

// normTolerance is the sum-to-one tolerance used throughout the core,
// per the "1e-9 everywhere" rule.
const normTolerance = 1e-9

// Opinion is a Subjective-Logic opinion: belief, disbelief, uncertainty,
// and base rate. Values are immutable once constructed.
type Opinion struct {
	B, D, U, A float64
}

// NewOpinion constructs an Opinion from raw masses. If b+d+u is zero the
// vacuous opinion (0, 0, 1, a) is returned. If the sum differs from 1 by
// more than normTolerance, the masses are renormalized by dividing by
// the sum.
func NewOpinion(b, d, u, a float64) Opinion {
	sum := b + d + u
	if sum == 0 {
		return Opinion{B: 0, D: 0, U: 1, A: a}
	}
	if math.Abs(sum-1) > normTolerance {
		b /= sum
		d /= sum
		u /= sum
	}
	return Opinion{B: b, D: d, U: u, A: a}
}

// Expectation returns b + a*u, the scalar probability derived from the opinion.
func (o Opinion) Expectation() float64 {
	return o.B + o.A*o.U
}

// Fuse combines two independent opinions over the same proposition
// (cumulative consensus). Fuse is commutative: Fuse(a, b) == Fuse(b, a).
func Fuse(a, b Opinion) Opinion {
	k := a.U + b.U - a.U*b.U
	if k == 0 {
		return Opinion{
			B: (a.B + b.B) / 2,
			D: (a.D + b.D) / 2,
			U: 0,
			A: a.A,
		}
	}
	return Opinion{
		B: (a.B*b.U + b.B*a.U) / k,
		D: (a.D*b.U + b.D*a.U) / k,
		U: (a.U * b.U) / k,
		A: a.A,
	}
}

// Discount applies transitive trust discounting: self is the A->B opinion,
// other is the B->C opinion, and the result is the derived A->C opinion.
// Discount is not commutative. The result is renormalized through
// NewOpinion.
func Discount(self, other Opinion) Opinion {
	b := self.B * other.B
	d := self.B * other.D
	u := self.D + self.U + self.B*other.U
	return NewOpinion(b, d, u, other.A)
}
