// Package main benchmarks Set implementations and the spell-suggestion engine built on them.
package main

import (
	"github.com/acronis/perfkit-sets/acronis-set-bench/engine"
)

func main() {
	engine.Main()
}
