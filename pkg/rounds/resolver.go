package rounds

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"

	"github.com/arenalabs/payout-pipeline/pkg/models"
)

// Resolver computes the elimination set and payout vector for a round.
// Implementations must be deterministic: identical choices, yield and seed
// produce identical results.
type Resolver interface {
	Resolve(choices []models.PlayerChoice, oracleYield float64, randomSeed string) *models.RoundResolution
}

// MajorityResolver eliminates the largest choice group. Ties between groups
// are broken by a hash of the seed and choice so re-runs agree. Eliminated
// stakes plus the oracle yield on the total pool are distributed to
// survivors in proportion to their stake.
type MajorityResolver struct{}

// Make sure we conform to the interface
var _ Resolver = (*MajorityResolver)(nil)

func seededRank(randomSeed, choice string) uint64 {
	sum := sha256.Sum256([]byte(randomSeed + ":" + choice))
	return binary.BigEndian.Uint64(sum[:8])
}

// Resolve computes the round's outcome.
func (MajorityResolver) Resolve(choices []models.PlayerChoice, oracleYield float64, randomSeed string) *models.RoundResolution {
	counts := make(map[string]int)
	stakes := make(map[string]float64)
	var totalStake float64
	for _, pc := range choices {
		counts[pc.Choice]++
		stakes[pc.Choice] += pc.Stake
		totalStake += pc.Stake
	}

	choiceNames := make([]string, 0, len(counts))
	for name := range counts {
		choiceNames = append(choiceNames, name)
	}
	sort.Strings(choiceNames)

	eliminatedChoice := ""
	for _, name := range choiceNames {
		if eliminatedChoice == "" {
			eliminatedChoice = name
			continue
		}
		switch {
		case counts[name] > counts[eliminatedChoice]:
			eliminatedChoice = name
		case counts[name] == counts[eliminatedChoice] &&
			seededRank(randomSeed, name) < seededRank(randomSeed, eliminatedChoice):
			eliminatedChoice = name
		}
	}

	var eliminated []string
	var survivorStake float64
	for _, pc := range choices {
		if pc.Choice == eliminatedChoice {
			eliminated = append(eliminated, pc.UserID)
		} else {
			survivorStake += pc.Stake
		}
	}
	sort.Strings(eliminated)

	distributable := stakes[eliminatedChoice] + totalStake*oracleYield/100

	payouts := make([]models.Payout, 0)
	poolBalances := make(map[string]float64, len(counts))
	poolBalances[eliminatedChoice] = 0
	for _, pc := range choices {
		if pc.Choice == eliminatedChoice {
			continue
		}
		share := 0.0
		if survivorStake > 0 {
			share = distributable * pc.Stake / survivorStake
		}
		amount := pc.Stake + share
		payouts = append(payouts, models.Payout{UserID: pc.UserID, Amount: amount})
		poolBalances[pc.Choice] += amount
	}
	sort.Slice(payouts, func(i, j int) bool { return payouts[i].UserID < payouts[j].UserID })

	return &models.RoundResolution{
		EliminatedPlayers: eliminated,
		Payouts:           payouts,
		PoolBalances:      poolBalances,
	}
}
