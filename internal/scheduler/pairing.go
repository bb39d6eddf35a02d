package scheduler

import (
	"fmt"

	"github.com/alienxp03/warrant/internal/core"
)

// alternate deals each of n indices into the advocate and critic sequences
// per times, flipping the target sequence on every deal.
func alternate(n, per int) (adv, crt []int) {
	toAdv := true
	for i := 0; i < n; i++ {
		for k := 0; k < per; k++ {
			if toAdv {
				adv = append(adv, i)
			} else {
				crt = append(crt, i)
			}
			toAdv = !toAdv
		}
	}
	return adv, crt
}

func selfFree(adv, crt []int) bool {
	for i := range adv {
		if adv[i] == crt[i] {
			return false
		}
	}
	return true
}

func zip(adv, crt []int) [][2]int {
	pairs := make([][2]int, len(adv))
	for i := range adv {
		pairs[i] = [2]int{adv[i], crt[i]}
	}
	return pairs
}

// Pair returns numUsers*numGames/2 (advocate, critic) index pairs in which
// every index appears numGames times and no index meets itself.
func (s *Scheduler) Pair(numUsers, numGames int) ([][2]int, error) {
	if numUsers <= 0 || numGames <= 0 {
		return nil, fmt.Errorf("need at least one participant and one game each")
	}
	if numUsers*numGames%2 != 0 {
		return nil, fmt.Errorf("%d participants with %d games each cannot be paired evenly", numUsers, numGames)
	}
	if numUsers < 2 {
		return nil, core.ErrInfeasiblePairing
	}

	adv, crt := alternate(numUsers, numGames)
	if numUsers == 2 {
		for i := range adv {
			crt[i] = 1 - adv[i]
		}
		return zip(adv, crt), nil
	}
	return s.derange(adv, crt)
}

// derange shuffles both sequences independently until no position pairs an
// index with itself.
func (s *Scheduler) derange(adv, crt []int) ([][2]int, error) {
	for attempt := 0; attempt < s.opts.MaxAttempts; attempt++ {
		s.rng.Shuffle(len(adv), func(i, j int) { adv[i], adv[j] = adv[j], adv[i] })
		s.rng.Shuffle(len(crt), func(i, j int) { crt[i], crt[j] = crt[j], crt[i] })
		if selfFree(adv, crt) {
			return zip(adv, crt), nil
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", s.opts.MaxAttempts, core.ErrInfeasiblePairing)
}
