// Package tier holds the static membership level table. Levels are seeded at
// startup and never change at runtime.
package tier

// Tier is a membership level with a purchase price and a reward multiplier
// applied to future task earnings.
type Tier struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Multiplier float64 `json:"multiplier"`
}

// DefaultID is the level every new account starts at.
const DefaultID = 1

// levels are ordered by ascending price and multiplier.
var levels = []Tier{
	{ID: 1, Name: "Free Tier", Price: 0, Multiplier: 1},
	{ID: 2, Name: "VIP Basic", Price: 5, Multiplier: 1.5},
	{ID: 3, Name: "VIP Gold", Price: 12, Multiplier: 2.5},
	{ID: 4, Name: "VIP Diamond", Price: 25, Multiplier: 5},
}

// All returns the tier table in ascending order.
func All() []Tier {
	out := make([]Tier, len(levels))
	copy(out, levels)
	return out
}

// ByID looks up a tier. The table is a closed set, so a false return means
// the caller is holding an id that never existed.
func ByID(id int) (Tier, bool) {
	for _, t := range levels {
		if t.ID == id {
			return t, true
		}
	}
	return Tier{}, false
}

// MultiplierFor returns the reward multiplier for a level, falling back to
// the default tier's multiplier for an unknown id.
func MultiplierFor(id int) float64 {
	if t, ok := ByID(id); ok {
		return t.Multiplier
	}
	return levels[0].Multiplier
}
