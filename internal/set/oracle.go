// Package set implements the combinatorial rules of the Set card game:
// cards encode a fixed number of features and a legal set is three cards
// whose values, per feature, are either all the same or all different.
package set

import "fmt"

// Oracle answers set-validity questions for a deck whose cards encode
// FeatureCount features of FeatureSize values each. Card ids are the base
// FeatureSize digit encoding of their feature values, so the deck holds
// FeatureSize^FeatureCount cards. All methods are pure.
type Oracle struct {
	featureCount int
	featureSize  int
	deckSize     int
}

// New builds an oracle for the given feature geometry. The classic game is
// New(4, 3): 81 cards.
func New(featureCount, featureSize int) (*Oracle, error) {
	if featureCount < 1 || featureSize < 2 {
		return nil, fmt.Errorf("set: invalid geometry %dx%d", featureCount, featureSize)
	}
	size := 1
	for i := 0; i < featureCount; i++ {
		size *= featureSize
	}
	return &Oracle{featureCount: featureCount, featureSize: featureSize, deckSize: size}, nil
}

// DeckSize returns the number of distinct cards the geometry admits.
func (o *Oracle) DeckSize() int { return o.deckSize }

// Features decodes a card id into its per-feature values.
func (o *Oracle) Features(card int) []int {
	fs := make([]int, o.featureCount)
	for i := 0; i < o.featureCount; i++ {
		fs[i] = card % o.featureSize
		card /= o.featureSize
	}
	return fs
}

// CardsToFeatures decodes a card list into a feature matrix, one row per card.
func (o *Oracle) CardsToFeatures(cards []int) [][]int {
	out := make([][]int, len(cards))
	for i, c := range cards {
		out[i] = o.Features(c)
	}
	return out
}

// IsValidSet reports whether the three cards form a legal set: for every
// feature the three values are all equal or pairwise distinct. Any slice not
// holding exactly three distinct in-range cards is not a set.
func (o *Oracle) IsValidSet(cards []int) bool {
	if len(cards) != 3 {
		return false
	}
	for i, c := range cards {
		if c < 0 || c >= o.deckSize {
			return false
		}
		for _, d := range cards[:i] {
			if c == d {
				return false
			}
		}
	}
	a, b, c := cards[0], cards[1], cards[2]
	for i := 0; i < o.featureCount; i++ {
		va, vb, vc := a%o.featureSize, b%o.featureSize, c%o.featureSize
		allSame := va == vb && vb == vc
		allDiff := va != vb && vb != vc && va != vc
		if !allSame && !allDiff {
			return false
		}
		a, b, c = a/o.featureSize, b/o.featureSize, c/o.featureSize
	}
	return true
}

// FindSets enumerates legal sets among cards, in ascending index order,
// stopping after limit sets. A limit of 1 is the cheap existence check.
func (o *Oracle) FindSets(cards []int, limit int) [][]int {
	var sets [][]int
	if limit <= 0 {
		return sets
	}
	for i := 0; i < len(cards); i++ {
		for j := i + 1; j < len(cards); j++ {
			for k := j + 1; k < len(cards); k++ {
				if o.IsValidSet([]int{cards[i], cards[j], cards[k]}) {
					sets = append(sets, []int{cards[i], cards[j], cards[k]})
					if len(sets) >= limit {
						return sets
					}
				}
			}
		}
	}
	return sets
}
