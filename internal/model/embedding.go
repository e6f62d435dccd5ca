package model

// BasicEmbedding is a per-node trust summary derived from a set of
// lifted opinions: the mean expectation and mean uncertainty of
// opinions directed into the node and of opinions directed out of it,
// plus the raw interaction counts backing each mean. It is the
// concrete origin of the "trust embedding" the EQBSL view hands to the
// feature extractor when no external embedding is supplied.
type BasicEmbedding struct {
	InExpectMean  float64
	InUMean       float64
	OutExpectMean float64
	OutUMean      float64
	InCount       int
	OutCount      int
}

// Vector flattens the embedding into the 4-element slice the feature
// extractor concatenates: [in_expect_mean, in_u_mean, out_expect_mean, out_u_mean].
func (e BasicEmbedding) Vector() []float64 {
	return []float64{e.InExpectMean, e.InUMean, e.OutExpectMean, e.OutUMean}
}

// ComputeBasicEmbeddings derives one BasicEmbedding per node in nodes
// from a map of lifted pair opinions. A node with no inbound (or no
// outbound) opinions gets a zero mean for that direction, with a count
// of zero — this is a deliberate "no evidence yet" state, not an error,
// since embeddings are allowed to be computed before any edges exist.
func ComputeBasicEmbeddings(nodes []string, opinions map[PairKey]Opinion) map[string]BasicEmbedding {
	inSum := make(map[string][2]float64) // [expectSum, uSum]
	inCnt := make(map[string]int)
	outSum := make(map[string][2]float64)
	outCnt := make(map[string]int)

	for key, op := range opinions {
		e := op.Expectation()
		os := outSum[key.From]
		os[0] += e
		os[1] += op.U
		outSum[key.From] = os
		outCnt[key.From]++

		is := inSum[key.To]
		is[0] += e
		is[1] += op.U
		inSum[key.To] = is
		inCnt[key.To]++
	}

	out := make(map[string]BasicEmbedding, len(nodes))
	for _, n := range nodes {
		var emb BasicEmbedding
		if c := inCnt[n]; c > 0 {
			s := inSum[n]
			emb.InExpectMean = s[0] / float64(c)
			emb.InUMean = s[1] / float64(c)
			emb.InCount = c
		}
		if c := outCnt[n]; c > 0 {
			s := outSum[n]
			emb.OutExpectMean = s[0] / float64(c)
			emb.OutUMean = s[1] / float64(c)
			emb.OutCount = c
		}
		out[n] = emb
	}
	return out
}
