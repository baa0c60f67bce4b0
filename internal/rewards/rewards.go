// Package rewards converts a settled session into XP and gold and maps total
// XP onto player levels.
package rewards

import (
	"math"

	"wordarcade/internal/models"
)

const (
	// GlobalBestBonus is the flat XP awarded for taking a bucket's top score.
	GlobalBestBonus = 50

	// ScoreDivisor turns session score into bonus XP.
	ScoreDivisor = 10

	// GoldDivisor is how many XP earn one gold.
	GoldDivisor = 5

	// LevelCoef scales the level curve: level L+1 needs LevelCoef * L^1.5 XP.
	LevelCoef = 100.0
)

var bucketWeights = map[models.Bucket]int{
	models.BucketEasy:   2,
	models.BucketMedium: 3,
	models.BucketHard:   4,
	models.BucketFree:   3,
}

// WeightFor returns the XP earned per completed unit in a bucket
func WeightFor(bucket models.Bucket) (int, error) {
	w, ok := bucketWeights[bucket]
	if !ok {
		return 0, models.NotFoundError{Resource: "bucket", Key: string(bucket)}
	}
	return w, nil
}

// ComputeRewards returns the XP and gold for one session. metric is the
// number of completed units (words typed, verbs conjugated, words guessed).
func ComputeRewards(bucket models.Bucket, metric, score int, isNewGlobalBest bool) (models.Rewards, error) {
	weight, err := WeightFor(bucket)
	if err != nil {
		return models.Rewards{}, err
	}
	metric = max(metric, 0)
	score = max(score, 0)

	xp := metric*weight + score/ScoreDivisor
	if isNewGlobalBest {
		xp += GlobalBestBonus
	}

	return models.Rewards{
		XPEarned:   xp,
		GoldEarned: xp / GoldDivisor,
	}, nil
}

// XPForLevel returns the total XP at which a player reaches level. Levels 1
// and below need nothing.
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	req := LevelCoef * math.Pow(float64(level-1), 1.5)
	return int64(math.Ceil(req))
}

// LevelForXP returns the highest level whose threshold totalXP has reached
func LevelForXP(totalXP int64) int {
	if totalXP <= 0 {
		return 1
	}

	// Exponential search for an upper bound, then binary search.
	low := 1
	high := 2
	for XPForLevel(high) <= totalXP {
		low = high
		high *= 2
		if high > 1_000_000 {
			break
		}
	}

	for low+1 < high {
		mid := low + (high-low)/2
		if XPForLevel(mid) <= totalXP {
			low = mid
		} else {
			high = mid
		}
	}
	return low
}
