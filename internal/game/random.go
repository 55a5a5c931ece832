package game

// Rand is the source of randomness for every game roll. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	NormFloat64() float64
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Check succeeds with probability p.
func Check(r Rand, p float64) bool {
	return r.Float64() < p
}

// ChooseFirst is a weighted coin flip that picks the first side with
// probability first/(first+second). Two zero weights always pick the second.
func ChooseFirst(r Rand, first, second float64) bool {
	total := first + second
	if total <= 0 {
		return false
	}
	return r.Float64()*total < first
}

// Shuffled returns a Fisher-Yates shuffled copy of items.
func Shuffled[T any](r Rand, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
