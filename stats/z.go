package stats

import "gonum.org/v1/gonum/stat/distuv"

// ZVal returns the two-tailed z-value for a confidence level given as a
// percent from 0 to 100, so ZVal(95) is about 1.96.
func ZVal(level float64) float64 {
	stdNormal := distuv.Normal{Mu: 0, Sigma: 1}
	return stdNormal.Quantile((1 + level/100) / 2)
}
