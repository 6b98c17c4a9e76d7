package sequence

import "math/rand/v2"

// pickUniform shuffles a copy of names and keeps the first limit entries.
// A negative limit keeps them all.
func pickUniform(rng *rand.Rand, names []string, limit int) []string {
	out := make([]string, len(names))
	copy(out, names)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if limit >= 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// pickBalanced prefers images with fewer than threshold responses. When those
// do not fill limit, the rest is drawn without replacement with weight 1/(1+count).
func pickBalanced(rng *rand.Rand, names []string, counts map[string]int, threshold, limit int) []string {
	if limit < 0 {
		limit = len(names)
	}
	var eligible, others []string
	for _, name := range names {
		if counts[name] < threshold {
			eligible = append(eligible, name)
		} else {
			others = append(others, name)
		}
	}

	picked := pickUniform(rng, eligible, limit)
	remaining := limit - len(picked)
	if remaining <= 0 || len(others) == 0 {
		return picked
	}

	weights := make([]float64, len(others))
	total := 0.0
	for i, name := range others {
		weights[i] = 1 / float64(1+counts[name])
		total += weights[i]
	}
	for ; remaining > 0 && len(others) > 0; remaining-- {
		target := rng.Float64() * total
		idx := len(others) - 1
		for i, w := range weights {
			if target < w {
				idx = i
				break
			}
			target -= w
		}
		picked = append(picked, others[idx])
		total -= weights[idx]
		others = append(others[:idx], others[idx+1:]...)
		weights = append(weights[:idx], weights[idx+1:]...)
	}
	return picked
}

// catchCount is the number of catch trials interleaveCatch adds to n regular trials.
func catchCount(n, interval, available int) int {
	if interval <= 0 || available == 0 || n == 0 {
		return 0
	}
	return (n - 1) / interval
}

// interleaveCatch appends regular to trials, adding a catch trial after every
// interval regular trials but never after the last one. Catch images are
// used in order and cycle when exhausted.
func interleaveCatch(trials []string, positions []int, regular, catchSet []string, interval int) ([]string, []int) {
	for i, id := range regular {
		trials = append(trials, id)
		if interval <= 0 || len(catchSet) == 0 {
			continue
		}
		if (i+1)%interval == 0 && i < len(regular)-1 {
			positions = append(positions, len(trials))
			trials = append(trials, catchSet[(i/interval)%len(catchSet)])
		}
	}
	return trials, positions
}
