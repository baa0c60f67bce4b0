package rewards

import (
	"testing"

	"wordarcade/internal/models"
)

func TestComputeRewards(t *testing.T) {
	tests := []struct {
		name       string
		bucket     models.Bucket
		metric     int
		score      int
		globalBest bool
		wantXP     int
		wantGold   int
	}{
		{name: "easy ten words", bucket: models.BucketEasy, metric: 10, score: 120, wantXP: 32, wantGold: 6},
		{name: "easy ten words with global best", bucket: models.BucketEasy, metric: 10, score: 120, globalBest: true, wantXP: 82, wantGold: 16},
		{name: "hard weight", bucket: models.BucketHard, metric: 10, score: 0, wantXP: 40, wantGold: 8},
		{name: "free weight", bucket: models.BucketFree, metric: 3, score: 45, wantXP: 13, wantGold: 2},
		{name: "nothing done", bucket: models.BucketMedium, metric: 0, score: 0, wantXP: 0, wantGold: 0},
		{name: "negative inputs clamp", bucket: models.BucketMedium, metric: -4, score: -100, wantXP: 0, wantGold: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeRewards(tt.bucket, tt.metric, tt.score, tt.globalBest)
			if err != nil {
				t.Fatalf("ComputeRewards() error = %v", err)
			}
			if got.XPEarned != tt.wantXP {
				t.Errorf("XPEarned = %d, want %d", got.XPEarned, tt.wantXP)
			}
			if got.GoldEarned != tt.wantGold {
				t.Errorf("GoldEarned = %d, want %d", got.GoldEarned, tt.wantGold)
			}
		})
	}
}

func TestComputeRewardsUnknownBucket(t *testing.T) {
	_, err := ComputeRewards(models.Bucket("nightmare"), 5, 50, false)
	if !models.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestComputeRewardsMonotonic(t *testing.T) {
	for _, bucket := range []models.Bucket{models.BucketEasy, models.BucketMedium, models.BucketHard, models.BucketFree} {
		prev := -1
		for metric := 0; metric < 50; metric++ {
			r, err := ComputeRewards(bucket, metric, 100, false)
			if err != nil {
				t.Fatal(err)
			}
			if r.XPEarned < prev {
				t.Fatalf("%s: xp decreased at metric %d", bucket, metric)
			}
			prev = r.XPEarned
		}
	}
}

func TestXPForLevel(t *testing.T) {
	tests := []struct {
		level int
		want  int64
	}{
		{0, 0},
		{1, 0},
		{2, 100},
		{3, 283},
		{5, 800},
		{10, 2700},
	}
	for _, tt := range tests {
		if got := XPForLevel(tt.level); got != tt.want {
			t.Errorf("XPForLevel(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int64
		want int
	}{
		{-10, 1},
		{0, 1},
		{99, 1},
		{100, 2},
		{282, 2},
		{283, 3},
		{799, 4},
		{800, 5},
		{2700, 10},
	}
	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestLevelForXPMonotonicAndConsistent(t *testing.T) {
	prev := LevelForXP(0)
	for xp := int64(0); xp <= 50_000; xp += 7 {
		level := LevelForXP(xp)
		if level < prev {
			t.Fatalf("LevelForXP(%d) = %d decreased from %d", xp, level, prev)
		}
		if XPForLevel(level) > xp {
			t.Fatalf("LevelForXP(%d) = %d but that level needs %d", xp, level, XPForLevel(level))
		}
		if XPForLevel(level+1) <= xp {
			t.Fatalf("LevelForXP(%d) = %d but level %d is already reached", xp, level, level+1)
		}
		prev = level
	}
}
