package stats

import "math/rand"

// BootstrapCI resamples indices [0,n) with replacement B times, recomputes
// the statistic on each replicate, and returns the 2.5/97.5 percentiles of
// the replicate distribution. Replicates where the statistic cannot be
// computed are skipped; ok=false when fewer than half the replicates
// succeed. The caller supplies the RNG so randomness stays request-scoped.
func BootstrapCI(n, b int, rng *rand.Rand, statistic func(idx []int) (float64, bool)) (lo, hi float64, ok bool) {
	if n < 2 || b < 1 || rng == nil {
		return 0, 0, false
	}

	replicates := make([]float64, 0, b)
	idx := make([]int, n)
	for rep := 0; rep < b; rep++ {
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		if v, computed := statistic(idx); computed {
			replicates = append(replicates, v)
		}
	}
	if len(replicates) < b/2 || len(replicates) < 2 {
		return 0, 0, false
	}

	lo, _ = Quantile(replicates, 0.025)
	hi, _ = Quantile(replicates, 0.975)
	return lo, hi, true
}
