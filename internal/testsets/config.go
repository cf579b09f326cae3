package testsets

// Default generation parameters.
const (
	defaultNumPlayers   = 64
	defaultSetsPerMonth = 40
	defaultYear         = 2025
	defaultSeed         = 42
)

// Config controls synthetic season generation.
type Config struct {
	NumPlayers   int
	SetsPerMonth int
	Year         int
	Months       []int
	Seed         int64
}

// DefaultConfig returns a season covering June through November, the window
// the model comparison trains and tests on.
func DefaultConfig() Config {
	return Config{
		NumPlayers:   defaultNumPlayers,
		SetsPerMonth: defaultSetsPerMonth,
		Year:         defaultYear,
		Months:       []int{6, 7, 8, 9, 10, 11},
		Seed:         defaultSeed,
	}
}
