package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"wordarcade/internal/database"
	"wordarcade/internal/models"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "arcade.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(context.Background(), ""); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func seedUsers(t *testing.T, db *database.DB, ids ...int64) {
	t.Helper()
	repo := NewProfileRepository(db)
	for _, id := range ids {
		u := &models.User{
			ID:          id,
			Username:    fmt.Sprintf("player%d", id),
			DisplayName: fmt.Sprintf("Player Number %d", id),
			Email:       fmt.Sprintf("player%d@example.com", id),
			CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		if err := repo.InsertUser(context.Background(), u); err != nil {
			t.Fatalf("Failed to seed user %d: %v", id, err)
		}
	}
}

func record(userID int64, score int, at time.Time) *models.ScoreRecord {
	return &models.ScoreRecord{
		UserID:         userID,
		Game:           models.GameFallingWords,
		Bucket:         models.BucketEasy,
		Score:          score,
		WordsCompleted: score / 10,
		DurationMs:     30_000,
		CreatedAt:      at,
	}
}

func TestReplaceBestIfHigher(t *testing.T) {
	db := openTestDB(t)
	seedUsers(t, db, 1)
	repo := NewScoreRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	steps := []struct {
		score     int
		wantSaved bool
		wantBest  int
	}{
		{50, true, 50},
		{40, false, 50},
		{50, false, 50},
		{90, true, 90},
		{0, false, 90},
	}

	for i, step := range steps {
		saved, err := repo.ReplaceBestIfHigher(ctx, record(1, step.score, base.Add(time.Duration(i)*time.Minute)))
		if err != nil {
			t.Fatalf("step %d: ReplaceBestIfHigher() error = %v", i, err)
		}
		if saved != step.wantSaved {
			t.Errorf("step %d (score %d): saved = %v, want %v", i, step.score, saved, step.wantSaved)
		}

		best, err := repo.GetBest(ctx, 1, models.GameFallingWords, models.BucketEasy)
		if err != nil {
			t.Fatal(err)
		}
		if best == nil || best.Score != step.wantBest {
			t.Fatalf("step %d: best = %+v, want score %d", i, best, step.wantBest)
		}

		n, err := repo.Count(ctx, 1, models.GameFallingWords, models.BucketEasy)
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Fatalf("step %d: %d records stored, want 1", i, n)
		}
	}

	best, _ := repo.GetBest(ctx, 1, models.GameFallingWords, models.BucketEasy)
	if best.WordsCompleted != 9 || !best.CreatedAt.Equal(base.Add(3*time.Minute)) {
		t.Errorf("replaced record carries stale fields: %+v", best)
	}
}

func TestGetBestMissing(t *testing.T) {
	db := openTestDB(t)
	repo := NewScoreRepository(db)

	best, err := repo.GetBest(context.Background(), 99, models.GameConjugation, models.BucketHard)
	if err != nil {
		t.Fatal(err)
	}
	if best != nil {
		t.Errorf("expected nil best, got %+v", best)
	}

	global, err := repo.GetGlobalBest(context.Background(), models.GameConjugation, models.BucketHard)
	if err != nil {
		t.Fatal(err)
	}
	if global != nil {
		t.Errorf("expected nil global best, got %+v", global)
	}
}

func TestGetGlobalBestPrefersEarliest(t *testing.T) {
	db := openTestDB(t)
	seedUsers(t, db, 1, 2, 3)
	repo := NewScoreRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for _, rec := range []*models.ScoreRecord{
		record(1, 70, base),
		record(2, 120, base.Add(2*time.Hour)),
		record(3, 120, base.Add(time.Hour)),
	} {
		if _, err := repo.ReplaceBestIfHigher(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	global, err := repo.GetGlobalBest(ctx, models.GameFallingWords, models.BucketEasy)
	if err != nil {
		t.Fatal(err)
	}
	if global.UserID != 3 || global.Score != 120 {
		t.Errorf("global best = %+v, want user 3 with 120", global)
	}

	list, err := repo.ListBucket(ctx, models.GameFallingWords, models.BucketEasy)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].UserID != 3 || list[2].UserID != 1 {
		t.Errorf("ListBucket order = %+v", list)
	}
}

func TestWalletAdd(t *testing.T) {
	db := openTestDB(t)
	seedUsers(t, db, 1)
	repo := NewWalletRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	w, err := repo.Get(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if w != nil {
		t.Fatalf("expected no wallet yet, got %+v", w)
	}

	if err := repo.Add(ctx, 1, 32, 6, now); err != nil {
		t.Fatal(err)
	}
	if err := repo.Add(ctx, 1, 100, 20, now.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetLevel(ctx, 1, 2); err != nil {
		t.Fatal(err)
	}

	w, err = repo.Get(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if w.XP != 132 || w.Gold != 26 || w.Level != 2 {
		t.Errorf("wallet = %+v, want xp 132 gold 26 level 2", w)
	}
}

func TestSettlementInsertIsUnique(t *testing.T) {
	db := openTestDB(t)
	seedUsers(t, db, 1)
	repo := NewSettlementRepository(db)
	ctx := context.Background()

	s := &models.Settlement{
		SessionID:       "session-1",
		UserID:          1,
		Game:            models.GameWordGuess,
		Bucket:          models.BucketMedium,
		Score:           80,
		XPEarned:        20,
		GoldEarned:      4,
		NewPersonalBest: true,
		SettledAt:       time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := repo.Insert(ctx, s); err != nil {
		t.Fatal(err)
	}

	err := repo.Insert(ctx, s)
	if err == nil || !db.Dialect.IsUniqueViolation(err) {
		t.Fatalf("duplicate insert error = %v, want unique violation", err)
	}

	got, err := repo.Get(ctx, "session-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Score != 80 || !got.NewPersonalBest || got.NewGlobalBest || got.Bucket != models.BucketMedium {
		t.Errorf("settlement = %+v", got)
	}

	missing, err := repo.Get(ctx, "session-2")
	if err != nil || missing != nil {
		t.Errorf("Get(missing) = %+v, %v", missing, err)
	}

	n, err := repo.CountByUser(ctx, 1)
	if err != nil || n != 1 {
		t.Errorf("CountByUser() = %d, %v", n, err)
	}
}

func TestGetProfiles(t *testing.T) {
	db := openTestDB(t)
	seedUsers(t, db, 1, 2)
	ctx := context.Background()

	for _, stmt := range []string{
		`INSERT INTO cosmetics (id, kind, name) VALUES ('frame-gold', 'frame', 'Gold Frame')`,
		`INSERT INTO cosmetics (id, kind, name) VALUES ('title-ace', 'title', 'Ace')`,
		`INSERT INTO equipped_cosmetics (user_id, slot, cosmetic_id) VALUES (1, 'frame', 'frame-gold')`,
		`INSERT INTO equipped_cosmetics (user_id, slot, cosmetic_id) VALUES (1, 'title', 'title-ace')`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	repo := NewProfileRepository(db)
	profiles, err := repo.GetProfiles(ctx, []int64{1, 2, 404})
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 2 {
		t.Fatalf("got %d profiles, want 2", len(profiles))
	}
	if p := profiles[1]; p.DisplayName != "Player Number 1" || len(p.Cosmetics) != 2 || p.Cosmetics[0].Slot != "frame" {
		t.Errorf("profile 1 = %+v", p)
	}
	if p := profiles[2]; len(p.Cosmetics) != 0 {
		t.Errorf("profile 2 cosmetics = %+v", p.Cosmetics)
	}

	empty, err := repo.GetProfiles(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("GetProfiles(nil) = %v, %v", empty, err)
	}

	exists, err := repo.UserExists(ctx, 2)
	if err != nil || !exists {
		t.Errorf("UserExists(2) = %v, %v", exists, err)
	}
	exists, err = repo.UserExists(ctx, 404)
	if err != nil || exists {
		t.Errorf("UserExists(404) = %v, %v", exists, err)
	}
}

func TestRepositoriesInsideTransaction(t *testing.T) {
	db := openTestDB(t)
	seedUsers(t, db, 1)
	ctx := context.Background()

	errAbort := errors.New("abort")
	err := db.WithTx(ctx, func(tx *database.Tx) error {
		if _, err := NewScoreRepository(tx).ReplaceBestIfHigher(ctx, record(1, 60, time.Now().UTC())); err != nil {
			return err
		}
		if err := NewWalletRepository(tx).Add(ctx, 1, 10, 2, time.Now().UTC()); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("WithTx() = %v, want abort", err)
	}

	best, err := NewScoreRepository(db).GetBest(ctx, 1, models.GameFallingWords, models.BucketEasy)
	if err != nil || best != nil {
		t.Errorf("rolled back best = %+v, %v", best, err)
	}
	w, err := NewWalletRepository(db).Get(ctx, 1)
	if err != nil || w != nil {
		t.Errorf("rolled back wallet = %+v, %v", w, err)
	}
}

func TestBadWordList(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.ImportBadWords(ctx, strings.NewReader("Darn\nheck\n\n")); err != nil {
		t.Fatal(err)
	}
	words, err := NewBadWordRepository(db).List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 2 {
		t.Errorf("words = %v, want 2 entries", words)
	}
}
