package evo

// Comparator orders two fitness values; negative means a is better.
// Every selection and ranking decision in the engine goes through one
// comparator so parsimony pressure applies everywhere at once.
type Comparator func(a, b Fitness) int

// ParsimonyConfig controls size pressure on the fitness ordering.
// FitnessFirst compares raw loss and breaks ties on size; otherwise the
// ordering key is raw + ParsimonySize*size.
type ParsimonyConfig struct {
	Enabled       bool
	FitnessFirst  bool
	ParsimonySize float64
}

// NewComparator builds the fitness ordering for a parsimony policy.
func NewComparator(cfg ParsimonyConfig) Comparator {
	if !cfg.Enabled {
		return compareRaw
	}
	if cfg.FitnessFirst {
		return func(a, b Fitness) int {
			if c := compareRaw(a, b); c != 0 {
				return c
			}
			return compareSize(a, b)
		}
	}
	weight := cfg.ParsimonySize
	return func(a, b Fitness) int {
		ka := a.Raw + weight*float64(a.Size)
		kb := b.Raw + weight*float64(b.Size)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return compareSize(a, b)
	}
}

func compareRaw(a, b Fitness) int {
	switch {
	case a.Raw < b.Raw:
		return -1
	case a.Raw > b.Raw:
		return 1
	}
	return 0
}

func compareSize(a, b Fitness) int {
	switch {
	case a.Size < b.Size:
		return -1
	case a.Size > b.Size:
		return 1
	}
	return 0
}
