package model

// EvidenceTensor is a fixed-dimension vector of non-negative reals (one
// entry per evidence channel). Tensors of the same trust state all share
// the same length m.
type EvidenceTensor []float64

// Add returns the componentwise sum of two tensors of equal length. It is
// the caller's responsibility to ensure dimensions already match; Add
// panics-free arithmetic is only valid when len(a) == len(b), which every
// call site in this package enforces before calling Add.
func (t EvidenceTensor) Add(other EvidenceTensor) EvidenceTensor {
	out := make(EvidenceTensor, len(t))
	for i := range t {
		out[i] = t[i] + other[i]
	}
	return out
}

// Scale returns t scaled componentwise by factor.
func (t EvidenceTensor) Scale(factor float64) EvidenceTensor {
	out := make(EvidenceTensor, len(t))
	for i := range t {
		out[i] = t[i] * factor
	}
	return out
}

// Clone returns an independent copy of t.
func (t EvidenceTensor) Clone() EvidenceTensor {
	out := make(EvidenceTensor, len(t))
	copy(out, t)
	return out
}

// Project reduces a tensor to scalar positive/negative evidence counts by
// weighted dot products against wPos and wNeg, clamping both at zero.
func (t EvidenceTensor) Project(wPos, wNeg []float64) (r, s float64) {
	for i, v := range t {
		r += v * wPos[i]
		s += v * wNeg[i]
	}
	if r < 0 {
		r = 0
	}
	if s < 0 {
		s = 0
	}
	return r, s
}

// EBSLOpinion maps raw evidence (r, s, K, a) to an Opinion. denom = r+s+K
// is always positive given K > 0 and r, s >= 0, so this is a total
// function for valid parameters and is the sole bridge from evidence to
// opinion.
func EBSLOpinion(r, s, k, a float64) Opinion {
	denom := r + s + k
	return Opinion{
		B: r / denom,
		D: s / denom,
		U: k / denom,
		A: a,
	}
}
