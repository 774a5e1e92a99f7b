package set

import (
	"encoding/binary"
	"math"

	"github.com/go-faster/city"
	"github.com/zeebo/xxh3"
)

// Integer is the set of integer element types HashInt accepts
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// HashString hashes s with XXH3
func HashString(s string) uint64 {
	return xxh3.HashString(s)
}

// HashStringCity hashes s with CityHash64
func HashStringCity(s string) uint64 {
	return city.Hash64([]byte(s))
}

// HashFloat hashes the IEEE 754 bits of v with XXH3, every NaN and both zeros hash alike
func HashFloat[T ~float32 | ~float64](v T) uint64 {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		f = math.NaN()
	case f == 0:
		f = 0
	}

	return HashInt(math.Float64bits(f))
}

// HashInt hashes the little-endian encoding of v with XXH3
func HashInt[T Integer](v T) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))

	return xxh3.Hash(buf[:])
}

// StringHashFunc returns a string hash function by name: "xxh3" (default when
// name is empty) or "city"
func StringHashFunc(name string) (HashFunc[string], bool) {
	switch name {
	case "", "xxh3":
		return HashString, true
	case "city":
		return HashStringCity, true
	default:
		return nil, false
	}
}
