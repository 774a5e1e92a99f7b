package benchmark

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
)

/*
 * Randomizer
 */

// RandomizerWorker is a struct for storing randomizer data
type RandomizerWorker struct {
	fixed  *rand.Rand // fixed randomizer
	seeded *rand.Rand // seeded seed'able randomizer
	unique *rand.Rand // unique always unique randomizer
}

// Fixed returns fixed randomizer (always returns the same values)
func (rw *RandomizerWorker) Fixed() *rand.Rand {
	return rw.fixed
}

// Seeded returns seeded randomizer (seed'able)
func (rw *RandomizerWorker) Seeded() *rand.Rand {
	return rw.seeded
}

// Unique returns unique randomizer (always unique)
func (rw *RandomizerWorker) Unique() *rand.Rand {
	return rw.unique
}

// Intn returns random int value within the 0...max range
func (rw *RandomizerWorker) Intn(max int) int {
	if max <= 0 {
		return 0
	}

	return rw.Seeded().Intn(max)
}

// Chance returns true with the given probability, ratio is clamped to 0...1
func (rw *RandomizerWorker) Chance(ratio float64) bool {
	if ratio <= 0 {
		return false
	}
	if ratio >= 1 {
		return true
	}

	return rw.Seeded().Float64() < ratio
}

// Coin flips an unbiased coin on the seeded stream
func (rw *RandomizerWorker) Coin() bool {
	return rw.Seeded().Int63()&1 == 1
}

// UUID returns random UUID v4 value (RFC 4122) drawn from the unique stream
func (rw *RandomizerWorker) UUID() string {
	id, err := uuid.NewRandomFromReader(rw.Unique())
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

// SeededUUID returns UUID v4 value drawn from the seeded stream, it repeats across runs with the same seed
func (rw *RandomizerWorker) SeededUUID() string {
	id, err := uuid.NewRandomFromReader(rw.Seeded())
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

// Word returns a random word of minLen...maxLen letters taken from alphabet
func (rw *RandomizerWorker) Word(alphabet []rune, minLen, maxLen int) string {
	if len(alphabet) == 0 || maxLen < minLen || maxLen <= 0 {
		return ""
	}

	word := make([]rune, minLen+rw.Intn(maxLen-minLen+1))
	for i := range word {
		word[i] = alphabet[rw.Intn(len(alphabet))]
	}

	return string(word)
}

// NewRandomizerWorker returns new RandomizerWorker object with given seed and workerID
func NewRandomizerWorker(seed int64, workerID int) *RandomizerWorker {
	rw := RandomizerWorker{}
	if seed == 0 {
		seed = time.Now().UnixNano()
	} else {
		seed += 1 + int64(workerID)
	}

	rw.fixed = rand.New(rand.NewSource(0))
	rw.seeded = rand.New(rand.NewSource(seed))
	rw.unique = rand.New(rand.NewSource(time.Now().UnixNano()))

	return &rw
}

// Randomizer is a struct for storing randomizer data
type Randomizer struct {
	worker map[int]*RandomizerWorker // worker is a map, id -> RandomizerWorker
}

// NewRandomizer returns new Randomizer object with given seed and workers count,
// worker -1 is reserved for the main process
func NewRandomizer(seed int64, workers int) *Randomizer {
	rz := Randomizer{}
	rz.worker = make(map[int]*RandomizerWorker)

	for w := 0; w <= workers; w++ {
		rz.worker[w] = NewRandomizerWorker(seed, w)
	}
	rz.worker[-1] = NewRandomizerWorker(seed, -1)

	return &rz
}

// GetWorker returns RandomizerWorker object for given workerID
func (rz *Randomizer) GetWorker(workerID int) *RandomizerWorker {
	rw, exists := rz.worker[workerID]
	if !exists {
		fmt.Printf("fatal error: random generator for worker %d has not been initialized, probably NewRandomizer() was not initialized properly\n", workerID)
		os.Exit(127)
	}

	return rw
}
