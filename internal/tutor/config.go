package tutor

// Params are the sampling parameters for one kind of call.
type Params struct {
	MaxTokens   int
	Temperature float64
}

// Config controls the Client.
type Config struct {
	Exercises   Params
	Hint        Params
	Validate    Params
	Report      Params
	Explanation Params

	// MaxHistory caps the prior reports quoted in the exercise prompt.
	MaxHistory int

	// ExcerptChars caps each quoted report excerpt.
	ExcerptChars int
}

// DefaultConfig returns the recommended parameters.
func DefaultConfig() Config {
	return Config{
		Exercises:    Params{MaxTokens: 2000, Temperature: 0.7},
		Hint:         Params{MaxTokens: 300, Temperature: 0.5},
		Validate:     Params{MaxTokens: 500, Temperature: 0.1},
		Report:       Params{MaxTokens: 3000, Temperature: 0.6},
		Explanation:  Params{MaxTokens: 800, Temperature: 0.4},
		MaxHistory:   5,
		ExcerptChars: 300,
	}
}
