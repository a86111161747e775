package usecase

import "github.com/riskibarqy/football-brain/internal/domain/season"

// generateRoundRobin produces every matchday's pairings for a 24-club tier
// using the circle method: club[0] is fixed, clubs[1:] rotate
// one position after every round. 23 rounds cover every club playing every
// other club once; rounds 24-46 mirror rounds 1-23 with home/away reversed.
// The fixed club's home/away status alternates by round parity so it does
// not play every match on the same side.
func generateRoundRobin(clubs []string) [][][2]string {
	n := len(clubs)
	if n < 2 || n%2 != 0 {
		return nil
	}

	rounds := n - 1
	rotating := make([]string, n-1)
	copy(rotating, clubs[1:])

	firstHalf := make([][][2]string, rounds)
	for round := 0; round < rounds; round++ {
		pairs := make([][2]string, 0, n/2)

		fixed := clubs[0]
		other := rotating[0]
		if round%2 == 0 {
			pairs = append(pairs, [2]string{fixed, other})
		} else {
			pairs = append(pairs, [2]string{other, fixed})
		}

		for i := 1; i < n/2; i++ {
			home := rotating[i]
			away := rotating[len(rotating)-i]
			pairs = append(pairs, [2]string{home, away})
		}
		firstHalf[round] = pairs

		rotating = append(rotating[len(rotating)-1:], rotating[:len(rotating)-1]...)
	}

	all := make([][][2]string, 0, rounds*2)
	all = append(all, firstHalf...)
	for _, round := range firstHalf {
		mirrored := make([][2]string, len(round))
		for i, pair := range round {
			mirrored[i] = [2]string{pair[1], pair[0]}
		}
		all = append(all, mirrored)
	}
	return all
}

// fixturesForMatchday builds the Fixture rows for one matchday of a season,
// given the pre-computed round-robin schedule: exactly twelve fixtures per
// matchday, each club appearing exactly once.
func fixturesForMatchday(seasonID string, tier season.Tier, matchday int, pairs [][2]string) []season.Fixture {
	fixtures := make([]season.Fixture, 0, len(pairs))
	for _, pair := range pairs {
		fixtures = append(fixtures, season.Fixture{
			SeasonID:   seasonID,
			EFLTier:    tier,
			Matchday:   matchday,
			HomeClubID: pair[0],
			AwayClubID: pair[1],
			Status:     season.FixtureUpcoming,
		})
	}
	return fixtures
}
