package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"wordarcade/internal/database"
	"wordarcade/internal/events"
	"wordarcade/internal/game"
	"wordarcade/internal/models"
	"wordarcade/internal/repository"
	"wordarcade/internal/rewards"
	"wordarcade/internal/validation"
)

var (
	errWalletMissing     = errors.New("wallet missing after credit")
	errSettlementMissing = errors.New("settlement missing after unique violation")
)

// Notifier tells a player they have lost a bucket's global best
type Notifier interface {
	SendDethronedEmail(ctx context.Context, toEmail, toName string, game models.GameKind, bucket models.Bucket, newScore int) error
}

// ScoreService settles finished sessions: personal bests, rewards and the
// player's wallet.
type ScoreService struct {
	db        *database.DB
	publisher events.Publisher
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// NewScoreService creates a new score service. publisher and notifier may be
// nil.
func NewScoreService(db *database.DB, publisher events.Publisher, notifier Notifier, logger *slog.Logger) *ScoreService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoreService{
		db:        db,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// SubmitScore applies one finished session for userID in a single
// transaction. The personal best is replaced only when strictly beaten; the
// wallet is credited either way. The global best is read before any write.
//
// Submissions are idempotent per session id: a repeated id returns the
// original outcome with Duplicate set and changes nothing.
func (s *ScoreService) SubmitScore(ctx context.Context, userID int64, summary models.SessionSummary) (*models.SubmitResult, error) {
	if err := checkBucket(summary.Game, summary.Bucket); err != nil {
		return nil, err
	}
	if err := validation.ValidateSummary(summary); err != nil {
		return nil, err
	}
	if summary.SessionID == "" {
		summary.SessionID = uuid.NewString()
	} else if err := validation.ValidateSessionID(summary.SessionID); err != nil {
		return nil, err
	}

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	var (
		result    *models.SubmitResult
		dethroned *models.GlobalBest
	)
	now := s.now().UTC()
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		var err error
		result, dethroned, err = s.settle(ctx, tx, userID, summary, now)
		return err
	})
	if err != nil {
		if models.IsValidation(err) || models.IsNotFound(err) {
			return nil, err
		}
		if s.db.Dialect.IsUniqueViolation(err) {
			// A concurrent submission of the same session committed first.
			return s.duplicate(ctx, userID, summary.SessionID)
		}
		return nil, models.Persistence("submit score", err)
	}

	if result.Duplicate {
		s.logger.Info("duplicate submission ignored", "session_id", summary.SessionID, "user_id", userID)
		return result, nil
	}

	s.logger.Info("score settled",
		"session_id", summary.SessionID,
		"user_id", userID,
		"game", summary.Game,
		"bucket", summary.Bucket,
		"score", summary.Score,
		"xp", result.Rewards.XPEarned,
		"new_personal_best", result.IsNewPersonalBest,
		"new_global_best", result.IsNewGlobalBest)

	s.announce(ctx, userID, summary, result, now)
	if dethroned != nil {
		s.notifyDethroned(ctx, dethroned.UserID, summary)
	}
	return result, nil
}

func (s *ScoreService) settle(ctx context.Context, tx *database.Tx, userID int64, summary models.SessionSummary, now time.Time) (*models.SubmitResult, *models.GlobalBest, error) {
	settlements := repository.NewSettlementRepository(tx)
	prior, err := settlements.Get(ctx, summary.SessionID)
	if err != nil {
		return nil, nil, err
	}
	if prior != nil {
		result, err := duplicateResult(ctx, tx, userID, prior)
		return result, nil, err
	}

	scores := repository.NewScoreRepository(tx)
	personal, err := scores.GetBest(ctx, userID, summary.Game, summary.Bucket)
	if err != nil {
		return nil, nil, err
	}
	global, err := scores.GetGlobalBest(ctx, summary.Game, summary.Bucket)
	if err != nil {
		return nil, nil, err
	}

	personalScore, globalScore := 0, 0
	if personal != nil {
		personalScore = personal.Score
	}
	if global != nil {
		globalScore = global.Score
	}
	isNewGlobalBest := summary.Score > globalScore

	isNewPersonalBest := false
	if summary.Score > personalScore {
		isNewPersonalBest, err = scores.ReplaceBestIfHigher(ctx, &models.ScoreRecord{
			UserID:         userID,
			Game:           summary.Game,
			Bucket:         summary.Bucket,
			Score:          summary.Score,
			WordsCompleted: summary.RoundsCompleted,
			DurationMs:     summary.DurationMs,
			CreatedAt:      now,
		})
		if err != nil {
			return nil, nil, err
		}
		if isNewPersonalBest {
			if personal, err = scores.GetBest(ctx, userID, summary.Game, summary.Bucket); err != nil {
				return nil, nil, err
			}
		}
	}

	earned, err := rewards.ComputeRewards(summary.Bucket, summary.RoundsCompleted, summary.Score, isNewGlobalBest)
	if err != nil {
		return nil, nil, err
	}

	wallets := repository.NewWalletRepository(tx)
	if err := wallets.Add(ctx, userID, int64(earned.XPEarned), int64(earned.GoldEarned), now); err != nil {
		return nil, nil, err
	}
	wallet, err := wallets.Get(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if wallet == nil {
		return nil, nil, models.Persistence("read wallet", errWalletMissing)
	}

	level := rewards.LevelForXP(wallet.XP)
	levelBefore := rewards.LevelForXP(wallet.XP - int64(earned.XPEarned))
	if level != wallet.Level {
		if err := wallets.SetLevel(ctx, userID, level); err != nil {
			return nil, nil, err
		}
		wallet.Level = level
	}

	err = settlements.Insert(ctx, &models.Settlement{
		SessionID:       summary.SessionID,
		UserID:          userID,
		Game:            summary.Game,
		Bucket:          summary.Bucket,
		Score:           summary.Score,
		XPEarned:        earned.XPEarned,
		GoldEarned:      earned.GoldEarned,
		NewPersonalBest: isNewPersonalBest,
		NewGlobalBest:   isNewGlobalBest,
		SettledAt:       now,
	})
	if err != nil {
		return nil, nil, err
	}

	result := &models.SubmitResult{
		Rewards:           earned,
		IsNewPersonalBest: isNewPersonalBest,
		IsNewGlobalBest:   isNewGlobalBest,
		PersonalBest:      personal,
		Wallet:            wallet,
		LevelUp:           level > levelBefore,
	}

	var dethroned *models.GlobalBest
	if isNewGlobalBest && global != nil && global.UserID != userID {
		dethroned = global
		result.PreviousChampion = global.UserID
	}
	return result, dethroned, nil
}

// duplicate answers a submission whose session id is already settled
func (s *ScoreService) duplicate(ctx context.Context, userID int64, sessionID string) (*models.SubmitResult, error) {
	prior, err := repository.NewSettlementRepository(s.db).Get(ctx, sessionID)
	if err != nil {
		return nil, models.Persistence("read settlement", err)
	}
	if prior == nil {
		return nil, models.Persistence("read settlement", errSettlementMissing)
	}
	result, err := duplicateResult(ctx, s.db, userID, prior)
	if err != nil && !models.IsValidation(err) {
		return nil, models.Persistence("read settlement", err)
	}
	return result, err
}

func duplicateResult(ctx context.Context, q database.DBTX, userID int64, prior *models.Settlement) (*models.SubmitResult, error) {
	if prior.UserID != userID {
		return nil, models.ValidationError{Field: "session_id", Message: "session was settled for another player"}
	}

	best, err := repository.NewScoreRepository(q).GetBest(ctx, userID, prior.Game, prior.Bucket)
	if err != nil {
		return nil, err
	}
	wallet, err := repository.NewWalletRepository(q).Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.SubmitResult{
		Rewards:           models.Rewards{XPEarned: prior.XPEarned, GoldEarned: prior.GoldEarned},
		IsNewPersonalBest: prior.NewPersonalBest,
		IsNewGlobalBest:   prior.NewGlobalBest,
		PersonalBest:      best,
		Wallet:            wallet,
		Duplicate:         true,
	}, nil
}

func (s *ScoreService) announce(ctx context.Context, userID int64, summary models.SessionSummary, result *models.SubmitResult, at time.Time) {
	ev := events.ScoreSettled{
		Type:              events.TypeScoreSettled,
		SessionID:         summary.SessionID,
		UserID:            userID,
		Game:              summary.Game,
		Bucket:            summary.Bucket,
		Score:             summary.Score,
		XPEarned:          result.Rewards.XPEarned,
		GoldEarned:        result.Rewards.GoldEarned,
		IsNewPersonalBest: result.IsNewPersonalBest,
		IsNewGlobalBest:   result.IsNewGlobalBest,
		LevelUp:           result.LevelUp,
		SettledAt:         at,
	}
	if result.Wallet != nil {
		ev.Level = result.Wallet.Level
	}
	if err := s.publisher.PublishSettled(ctx, ev); err != nil {
		s.logger.Warn("failed to publish settlement event", "session_id", summary.SessionID, "error", err)
	}
}

func (s *ScoreService) notifyDethroned(ctx context.Context, championID int64, summary models.SessionSummary) {
	if s.notifier == nil {
		return
	}
	champion, err := repository.NewProfileRepository(s.db).GetUser(ctx, championID)
	if err != nil {
		s.logger.Warn("failed to load dethroned champion", "user_id", championID, "error", err)
		return
	}
	if champion == nil || champion.Email == "" {
		return
	}
	name := champion.DisplayName
	if name == "" {
		name = champion.Username
	}
	if err := s.notifier.SendDethronedEmail(ctx, champion.Email, name, summary.Game, summary.Bucket, summary.Score); err != nil {
		s.logger.Warn("failed to send dethroned email", "user_id", championID, "error", err)
	}
}

// GetWallet returns a player's wallet; players who never settled a session
// get an empty level 1 wallet.
func (s *ScoreService) GetWallet(ctx context.Context, userID int64) (*models.Wallet, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	w, err := repository.NewWalletRepository(s.db).Get(ctx, userID)
	if err != nil {
		return nil, models.Persistence("read wallet", err)
	}
	if w == nil {
		w = &models.Wallet{UserID: userID, Level: 1}
	}
	return w, nil
}

// ListPersonalBests returns every stored best for a player
func (s *ScoreService) ListPersonalBests(ctx context.Context, userID int64) ([]models.ScoreRecord, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	records, err := repository.NewScoreRepository(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, models.Persistence("list personal bests", err)
	}
	return records, nil
}

func (s *ScoreService) requireUser(ctx context.Context, userID int64) error {
	exists, err := repository.NewProfileRepository(s.db).UserExists(ctx, userID)
	if err != nil {
		return models.Persistence("look up user", err)
	}
	if !exists {
		return models.NotFoundError{Resource: "user", Key: strconv.FormatInt(userID, 10)}
	}
	return nil
}

// checkBucket rejects games and buckets that have no leaderboard
func checkBucket(g models.GameKind, bucket models.Bucket) error {
	if !game.KnownGame(g) {
		return models.NotFoundError{Resource: "game", Key: string(g)}
	}
	if !game.ValidBucket(g, bucket) {
		return models.NotFoundError{Resource: "bucket", Key: string(bucket)}
	}
	return nil
}
