package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/singleflight"

	"wordarcade/internal/database"
	"wordarcade/internal/models"
	"wordarcade/internal/repository"
	"wordarcade/internal/validation"
)

const (
	DefaultTopN = 10
	MaxTopN     = 100
)

// ProfileSource resolves display names and equipped cosmetics for players
type ProfileSource interface {
	GetProfiles(ctx context.Context, ids []int64) (map[int64]models.Profile, error)
}

// LeaderboardService ranks players within a (game, bucket). It only reads
// and may lag concurrent submissions.
type LeaderboardService struct {
	db       *database.DB
	profiles ProfileSource
	logger   *slog.Logger
	group    singleflight.Group
}

// NewLeaderboardService creates a new leaderboard service. A nil profiles
// source reads profiles from db.
func NewLeaderboardService(db *database.DB, profiles ProfileSource, logger *slog.Logger) *LeaderboardService {
	if profiles == nil {
		profiles = repository.NewProfileRepository(db)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardService{db: db, profiles: profiles, logger: logger}
}

// ClampTopN maps a requested size onto [1, MaxTopN], defaulting to DefaultTopN
func ClampTopN(n int) int {
	switch {
	case n <= 0:
		return DefaultTopN
	case n > MaxTopN:
		return MaxTopN
	}
	return n
}

// GetTopN returns the best n players of a bucket, one entry per player,
// ordered by score then earliest record then user id.
func (s *LeaderboardService) GetTopN(ctx context.Context, g models.GameKind, bucket models.Bucket, n int) ([]models.LeaderboardEntry, error) {
	if err := checkBucket(g, bucket); err != nil {
		return nil, err
	}
	n = ClampTopN(n)

	// Identical concurrent requests share one query.
	key := fmt.Sprintf("%s/%s/%d", g, bucket, n)
	v, err, _ := s.group.Do(key, func() (any, error) {
		qctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		return s.topN(qctx, g, bucket, n)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]models.LeaderboardEntry)), nil
}

func (s *LeaderboardService) topN(ctx context.Context, g models.GameKind, bucket models.Bucket, n int) ([]models.LeaderboardEntry, error) {
	records, err := repository.NewScoreRepository(s.db).ListBucket(ctx, g, bucket)
	if err != nil {
		return nil, models.Persistence("list scores", err)
	}

	ranked := rankRecords(records)
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	ids := make([]int64, len(ranked))
	for i, rec := range ranked {
		ids[i] = rec.UserID
	}

	profiles, err := s.profiles.GetProfiles(ctx, ids)
	if err != nil {
		// Rankings still render with placeholder names.
		s.logger.Warn("failed to load leaderboard profiles", "game", g, "bucket", bucket, "error", err)
		profiles = nil
	}

	words, err := repository.NewBadWordRepository(s.db).List(ctx)
	if err != nil {
		s.logger.Warn("failed to load bad words list", "error", err)
	}
	filter := validation.NewNameFilter(words)

	entries := make([]models.LeaderboardEntry, len(ranked))
	for i, rec := range ranked {
		entry := models.LeaderboardEntry{
			Rank:      i + 1,
			UserID:    rec.UserID,
			Score:     rec.Score,
			CreatedAt: rec.CreatedAt,
			Cosmetics: []models.Cosmetic{},
		}
		if p, ok := profiles[rec.UserID]; ok {
			entry.DisplayName = filter.DisplayName(rec.UserID, p.DisplayName)
			if len(p.Cosmetics) > 0 {
				entry.Cosmetics = p.Cosmetics
			}
		} else {
			entry.DisplayName = validation.PlaceholderName(rec.UserID)
		}
		entries[i] = entry
	}
	return entries, nil
}

// rankRecords keeps each player's highest record, the earliest among equal
// maxima, and sorts the survivors into leaderboard order.
func rankRecords(records []models.ScoreRecord) []models.ScoreRecord {
	best := make(map[int64]models.ScoreRecord, len(records))
	for _, rec := range records {
		cur, ok := best[rec.UserID]
		if !ok || rec.Score > cur.Score || (rec.Score == cur.Score && rec.CreatedAt.Before(cur.CreatedAt)) {
			best[rec.UserID] = rec
		}
	}

	ranked := make([]models.ScoreRecord, 0, len(best))
	for _, rec := range best {
		ranked = append(ranked, rec)
	}
	slices.SortFunc(ranked, func(a, b models.ScoreRecord) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	return ranked
}
