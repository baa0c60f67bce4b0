package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"wordarcade/internal/repository"
	"wordarcade/internal/rewards"
)

func TestBackupRoundTrip(t *testing.T) {
	src := newScoreFixture(t, 1, 2)
	src.submit(t, 1, easySummary(80, 8))
	src.submit(t, 2, easySummary(60, 6))
	src.submit(t, 1, easySummary(30, 3))

	ctx := context.Background()
	var buf bytes.Buffer
	if err := NewBackupService(src.db, nil).ExportToWriter(ctx, &buf); err != nil {
		t.Fatal(err)
	}

	var data BackupData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.Version != BackupVersion || data.DatabaseType != "sqlite3" {
		t.Errorf("header = %q/%q", data.Version, data.DatabaseType)
	}
	if len(data.Users) != 2 || len(data.Scores) != 2 || len(data.Wallets) != 2 || len(data.Settlements) != 3 {
		t.Fatalf("export counts = %d users, %d scores, %d wallets, %d settlements",
			len(data.Users), len(data.Scores), len(data.Wallets), len(data.Settlements))
	}

	dst := openTestDB(t)
	stats, err := NewBackupService(dst, nil).ImportFromReader(ctx, bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Users != 2 || stats.Scores != 2 || stats.Wallets != 2 || stats.Settlements != 3 {
		t.Errorf("import stats = %+v", stats)
	}

	srcWallet, _ := repository.NewWalletRepository(src.db).Get(ctx, 1)
	dstWallet, err := repository.NewWalletRepository(dst).Get(ctx, 1)
	if err != nil || dstWallet == nil || dstWallet.XP != srcWallet.XP || dstWallet.Level != srcWallet.Level {
		t.Errorf("restored wallet = %+v, want %+v", dstWallet, srcWallet)
	}

	// A second import of the same file adds nothing.
	again, err := NewBackupService(dst, nil).ImportFromReader(ctx, bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if again != (ImportStats{}) {
		t.Errorf("re-import stats = %+v, want zero", again)
	}
}

func TestBackupImportRejectsUnknownVersion(t *testing.T) {
	db := openTestDB(t)
	_, err := NewBackupService(db, nil).ImportFromReader(context.Background(), strings.NewReader(`{"version":"9.9"}`))
	if err == nil {
		t.Fatal("import of unknown version succeeded")
	}
}

func TestBackupClear(t *testing.T) {
	f := newScoreFixture(t, 1)
	f.submit(t, 1, easySummary(80, 8))

	if err := NewBackupService(f.db, nil).Clear(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := f.rows(t, 1); n != 0 {
		t.Errorf("%d score rows after clear", n)
	}
	if w := f.wallet(t, 1); w.UserID != 0 {
		t.Errorf("wallet survived clear: %+v", w)
	}
	exists, err := repository.NewProfileRepository(f.db).UserExists(context.Background(), 1)
	if err != nil || !exists {
		t.Errorf("user removed by clear: %v, %v", exists, err)
	}
}

func TestBackupImportRecomputesLevel(t *testing.T) {
	db := openTestDB(t)
	seedUsers(t, db, 1)

	// 600 XP is level 4 on the current curve; the file claims 40.
	backup := `{"version":"1.0","wallets":[{"user_id":1,"xp":600,"gold":120,"level":40}]}`
	stats, err := NewBackupService(db, nil).ImportFromReader(context.Background(), strings.NewReader(backup))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Wallets != 1 {
		t.Fatalf("imported %d wallets, want 1", stats.Wallets)
	}

	w, err := repository.NewWalletRepository(db).Get(context.Background(), 1)
	if err != nil || w == nil {
		t.Fatalf("Get() = %+v, %v", w, err)
	}
	if want := rewards.LevelForXP(600); w.Level != want || want != 4 {
		t.Errorf("level = %d, want %d", w.Level, want)
	}
}
