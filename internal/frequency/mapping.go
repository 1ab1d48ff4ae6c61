package frequency

import "math"

// maxWeight is the weight given to the largest value when fractional
// frequencies have to be scaled to integers.
const maxWeight = 10000

// Mapping associates each distinct label with its frequency.
type Mapping map[string]float64

// BuildMapping collapses the table into a Mapping. When a label repeats,
// the value from the last row wins.
func BuildMapping(t *Table) Mapping {
	m := make(Mapping, len(t.Rows))
	for _, row := range t.Rows {
		m[row.Label] = row.Freq
	}
	return m
}

// Weights converts the mapping to integer weights. Integral frequencies are
// kept as they are; otherwise every value is scaled so that the largest
// magnitude becomes maxWeight. Ratios and signs survive either way.
func (m Mapping) Weights() map[string]int {
	weights := make(map[string]int, len(m))

	integral := true
	peak := 0.0
	for _, v := range m {
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
			integral = false
		}
		peak = math.Max(peak, math.Abs(v))
	}

	for label, v := range m {
		if integral || peak == 0 {
			weights[label] = int(v)
			continue
		}
		weights[label] = int(math.Round(v / peak * maxWeight))
	}
	return weights
}
