package lottery

import (
	"fmt"
	"math/rand"
)

const (
	pickCount = 3
	maxNumber = 10
)

// base payout multipliers by match count
var payoutTable = map[int]float64{
	2: 3,
	3: 50,
}

// ParsePicks validates a player's numbers: exactly 3 distinct values in 1..10
func ParsePicks(numbers []int64) ([]int, error) {
	if len(numbers) != pickCount {
		return nil, fmt.Errorf("pick exactly %d numbers", pickCount)
	}
	seen := make(map[int]bool, pickCount)
	picks := make([]int, 0, pickCount)
	for _, n := range numbers {
		if n < 1 || n > maxNumber {
			return nil, fmt.Errorf("numbers must be between 1 and %d", maxNumber)
		}
		if seen[int(n)] {
			return nil, fmt.Errorf("numbers must be distinct")
		}
		seen[int(n)] = true
		picks = append(picks, int(n))
	}
	return picks, nil
}

// Draw picks 3 distinct winning numbers
func Draw() []int {
	perm := rand.Perm(maxNumber)
	winners := make([]int, pickCount)
	for i := 0; i < pickCount; i++ {
		winners[i] = perm[i] + 1
	}
	return winners
}

// Matches counts how many picks appear among the winners
func Matches(picks, winners []int) int {
	set := make(map[int]bool, len(winners))
	for _, w := range winners {
		set[w] = true
	}
	count := 0
	for _, p := range picks {
		if set[p] {
			count++
		}
	}
	return count
}

// Payout computes the winnings: bet x base x guild multiplier, truncated.
// Fewer than 2 matches pays nothing.
func Payout(bet int64, matches int, multiplier float64) int64 {
	base, ok := payoutTable[matches]
	if !ok {
		return 0
	}
	return int64(float64(bet) * base * multiplier)
}
