package generator

import (
	"fmt"
	"math/rand"
	"time"
)

// Archetypes is the fixed rotation of survey themes, in generation order.
var Archetypes = []string{
	"Customer Satisfaction",
	"Product Feedback",
	"Employee Engagement",
	"Market Research",
	"User Experience",
	"Website Feedback",
	"Event Feedback",
}

type Config struct {
	// Pacing is the pause between two LLM calls.
	Pacing time.Duration
	// Seed makes user and response generation reproducible; 0 picks a random seed.
	Seed int64
}

func DefaultConfig() Config {
	return Config{
		Pacing: time.Second,
	}
}

// NewSeededRNG returns a deterministic RNG for a non-zero seed.
func NewSeededRNG(seed int64) (*rand.Rand, int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)), seed
}

func selectArchetypes(n int) []string {
	if n > len(Archetypes) {
		n = len(Archetypes)
	}
	return Archetypes[:n]
}

// paddedName distinguishes duplicated surveys by their 1-based output position.
func paddedName(name string, position int) string {
	return fmt.Sprintf("%s %d", name, position)
}
