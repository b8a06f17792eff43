package problem

import (
	"fmt"
	"math/rand"
)

// Dataset is a sampled target function.
type Dataset struct {
	X []float64
	Y []float64
}

// Len returns the sample count.
func (d Dataset) Len() int {
	return len(d.X)
}

// KFold partitions the dataset into nSplits contiguous folds. Every fold
// receives at least one sample; the first Len mod nSplits folds take one
// extra.
func (d Dataset) KFold(nSplits int) ([]Dataset, error) {
	if nSplits < 1 {
		return nil, fmt.Errorf("fold count must be >= 1: %d", nSplits)
	}
	if d.Len() < nSplits {
		return nil, fmt.Errorf("dataset of %d samples cannot fill %d folds", d.Len(), nSplits)
	}

	folds := make([]Dataset, nSplits)
	base := d.Len() / nSplits
	extra := d.Len() % nSplits
	at := 0
	for i := range folds {
		size := base
		if i < extra {
			size++
		}
		folds[i] = Dataset{X: d.X[at : at+size], Y: d.Y[at : at+size]}
		at += size
	}
	return folds, nil
}

// Shuffled returns a copy with samples in random order, so contiguous
// folds do not inherit the sampling order.
func (d Dataset) Shuffled(rng *rand.Rand) Dataset {
	out := Dataset{
		X: append([]float64(nil), d.X...),
		Y: append([]float64(nil), d.Y...),
	}
	rng.Shuffle(out.Len(), func(i, j int) {
		out.X[i], out.X[j] = out.X[j], out.X[i]
		out.Y[i], out.Y[j] = out.Y[j], out.Y[i]
	})
	return out
}

// Sample draws n points of f uniformly from [lo, hi].
func Sample(f func(float64) float64, n int, lo, hi float64, rng *rand.Rand) Dataset {
	d := Dataset{X: make([]float64, n), Y: make([]float64, n)}
	for i := 0; i < n; i++ {
		x := lo + rng.Float64()*(hi-lo)
		d.X[i] = x
		d.Y[i] = f(x)
	}
	return d
}
