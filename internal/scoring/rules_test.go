package scoring

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPointsForCorrectAnswer(t *testing.T) {
	r := Default()

	tests := []struct {
		name      string
		streak    int
		combo     string
		elapsedMs int64
		perfect   bool
		want      int
	}{
		{name: "first answer", streak: 1, combo: "1", elapsedMs: 3000, want: 11},
		{name: "perfect first answer", streak: 1, combo: "1", elapsedMs: 800, perfect: true, want: 16},
		{name: "combo scales base", streak: 5, combo: "1.5", elapsedMs: 3000, want: 22},
		{name: "truncates toward zero", streak: 3, combo: "1.5", elapsedMs: 3000, want: 19},
		{name: "max combo", streak: 30, combo: "4", elapsedMs: 3000, want: 160},
		{name: "combo below base clamps", streak: 0, combo: "0.5", elapsedMs: 3000, want: 10},
		{name: "negative streak clamps", streak: -4, combo: "1", elapsedMs: 3000, want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.PointsForCorrectAnswer(tt.streak, decimal.RequireFromString(tt.combo), tt.elapsedMs, tt.perfect)
			if got != tt.want {
				t.Errorf("PointsForCorrectAnswer(%d, %s, %d, %v) = %d, want %d",
					tt.streak, tt.combo, tt.elapsedMs, tt.perfect, got, tt.want)
			}
		})
	}
}

func TestPointsStrictlyIncreasingInStreak(t *testing.T) {
	r := Default()
	for _, combo := range []string{"1", "1.5", "2", "3.5", "4"} {
		c := decimal.RequireFromString(combo)
		prev := r.PointsForCorrectAnswer(0, c, 2000, false)
		for streak := 1; streak <= 100; streak++ {
			got := r.PointsForCorrectAnswer(streak, c, 2000, false)
			if got <= prev {
				t.Fatalf("combo %s: points(streak=%d)=%d not greater than points(streak=%d)=%d",
					combo, streak, got, streak-1, prev)
			}
			prev = got
		}
	}
}

func TestPointsStrictlyIncreasingInCombo(t *testing.T) {
	r := Default()
	for streak := 0; streak <= 50; streak++ {
		prev := -1
		for consecutive := 0; consecutive <= 30; consecutive += r.ComboEvery {
			combo := r.ComboFor(consecutive)
			if consecutive > 0 && combo.Equal(r.ComboFor(consecutive-r.ComboEvery)) {
				// capped; no further steps to compare
				break
			}
			got := r.PointsForCorrectAnswer(streak, combo, 2000, true)
			if got <= prev {
				t.Fatalf("streak %d: points at combo %s = %d, not greater than %d", streak, combo, got, prev)
			}
			prev = got
		}
	}
}

func TestPointsComboResolution(t *testing.T) {
	r := Default()

	// Off-grid combos below one point of difference truncate together.
	low := r.PointsForCorrectAnswer(0, decimal.RequireFromString("1"), 2000, false)
	near := r.PointsForCorrectAnswer(0, decimal.RequireFromString("1.05"), 2000, false)
	if low != near {
		t.Errorf("points at combo 1 and 1.05 = %d and %d, want equal", low, near)
	}

	// One combo step always clears a whole point at any streak.
	for streak := 0; streak <= 50; streak++ {
		base := decimal.NewFromInt(int64(r.BasePoints + streak*r.StreakBonus))
		if base.Mul(r.ComboStep).LessThan(decimal.NewFromInt(1)) {
			t.Fatalf("streak %d: a combo step is worth less than one point", streak)
		}
	}
}

func TestIsPerfect(t *testing.T) {
	r := Default()
	tests := []struct {
		elapsed int64
		want    bool
	}{
		{0, true},
		{1500, true},
		{1501, false},
		{-1, false},
	}
	for _, tt := range tests {
		if got := r.IsPerfect(tt.elapsed); got != tt.want {
			t.Errorf("IsPerfect(%d) = %v, want %v", tt.elapsed, got, tt.want)
		}
	}
}

func TestStreakResetsOnFailure(t *testing.T) {
	r := Default()
	outcomes := []bool{true, true, true, false, true, true, false, false, true}

	streak := 0
	for i, ok := range outcomes {
		next := r.NextStreak(streak, ok)
		if ok && next != streak+1 {
			t.Fatalf("step %d: success should increment streak %d, got %d", i, streak, next)
		}
		if !ok && next != 0 {
			t.Fatalf("step %d: failure should reset streak, got %d", i, next)
		}
		streak = next
	}
}

func TestComboStepFunction(t *testing.T) {
	r := Default()
	tests := []struct {
		consecutive int
		want        string
	}{
		{0, "1"},
		{4, "1"},
		{5, "1.5"},
		{9, "1.5"},
		{10, "2"},
		{30, "4"},
		{500, "4"},
	}
	for _, tt := range tests {
		if got := r.ComboFor(tt.consecutive); !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ComboFor(%d) = %s, want %s", tt.consecutive, got, tt.want)
		}
	}

	prev := r.ComboFor(0)
	for n := 1; n <= 100; n++ {
		cur := r.ComboFor(n)
		if cur.LessThan(prev) {
			t.Fatalf("ComboFor not monotonic at %d: %s < %s", n, cur, prev)
		}
		if cur.IsNegative() {
			t.Fatalf("ComboFor(%d) negative", n)
		}
		prev = cur
	}
}

func TestNextComboResetsOnFailure(t *testing.T) {
	r := Default()
	if got := r.NextCombo(12, false); !got.Equal(r.ComboBase) {
		t.Errorf("NextCombo after failure = %s, want base %s", got, r.ComboBase)
	}
	if got := r.NextCombo(12, true); !got.Equal(decimal.RequireFromString("2")) {
		t.Errorf("NextCombo(12, true) = %s, want 2", got)
	}
}
