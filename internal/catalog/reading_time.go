package catalog

import (
	"fmt"
	"math"
	"strings"
)

const wordsPerMinute = 200

// ReadingTime estimates how long body takes to read, e.g. "3 min read".
func ReadingTime(body string) (string, int) {
	words := len(strings.Fields(body))
	minutes := float64(words) / wordsPerMinute
	rounded := math.Round(minutes*100) / 100
	return fmt.Sprintf("%d min read", int(math.Ceil(rounded))), words
}
