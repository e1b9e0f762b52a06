package relations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/matchchat/internal/domain/enums"
	domrel "github.com/ivankudzin/matchchat/internal/domain/relations"
	pgrepo "github.com/ivankudzin/matchchat/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrSelfLike        = errors.New("cannot like yourself")
	ErrDependenciesNil = errors.New("relations dependencies are not configured")
)

type LikeStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) error
	Exists(ctx context.Context, tx pgx.Tx, fromUserID, toUserID int64) (bool, error)
	DeletePair(ctx context.Context, tx pgx.Tx, userID, targetID int64) error
}

type MatchStore interface {
	Create(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error)
	Exists(ctx context.Context, userID, targetID int64) (bool, error)
	ExistsTx(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]pgrepo.MatchRecord, error)
	DeleteByUsers(ctx context.Context, tx pgx.Tx, userID, targetID int64) (bool, error)
}

type NotificationStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, userID int64, ntype enums.NotificationType, content string) error
}

type UserStore interface {
	GetDisplayName(ctx context.Context, userID int64) (string, error)
}

type Service struct {
	pool       *pgxpool.Pool
	likeStore  LikeStore
	matchStore MatchStore
	notifStore NotificationStore
	userStore  UserStore

	// withPairTx runs fn in a transaction holding the pair's advisory lock.
	// Replaced in tests with an in-memory runner.
	withPairTx func(ctx context.Context, userID, targetID int64, fn func(context.Context, pgx.Tx) error) error
}

type Dependencies struct {
	Pool       *pgxpool.Pool
	LikeStore  LikeStore
	MatchStore MatchStore
	NotifStore NotificationStore
	UserStore  UserStore
}

type LikeResult struct {
	Matched        bool
	AlreadyMatched bool
}

type MatchItem struct {
	ID           int64
	TargetUserID int64
	DisplayName  string
	CreatedAt    time.Time
}

func NewService(deps Dependencies) *Service {
	s := &Service{
		pool:       deps.Pool,
		likeStore:  deps.LikeStore,
		matchStore: deps.MatchStore,
		notifStore: deps.NotifStore,
		userStore:  deps.UserStore,
	}
	s.withPairTx = func(ctx context.Context, userID, targetID int64, fn func(context.Context, pgx.Tx) error) error {
		return pgrepo.WithTx(ctx, s.pool, func(txCtx context.Context, tx pgx.Tx) error {
			if err := pgrepo.AcquirePairLock(txCtx, tx, userID, targetID); err != nil {
				return err
			}
			return fn(txCtx, tx)
		})
	}
	return s
}

// Like applies the actor's like through the pair transition table. The whole
// transition runs in one transaction under a per-pair advisory lock, so two
// concurrent mutual likes settle as exactly one match with both sides'
// notifications written, never a split state.
func (s *Service) Like(ctx context.Context, userID, targetID int64) (LikeResult, error) {
	if userID <= 0 || targetID <= 0 {
		return LikeResult{}, ErrValidation
	}
	if userID == targetID {
		return LikeResult{}, ErrSelfLike
	}
	if s.likeStore == nil || s.matchStore == nil || s.notifStore == nil {
		return LikeResult{}, ErrDependenciesNil
	}

	var result LikeResult
	err := s.withPairTx(ctx, userID, targetID, func(txCtx context.Context, tx pgx.Tx) error {
		state, err := s.readPairState(txCtx, tx, userID, targetID)
		if err != nil {
			return err
		}

		next, outcome := domrel.ApplyLike(state)

		switch outcome {
		case domrel.OutcomeNone:
			result.AlreadyMatched = next == domrel.StateMatched
			result.Matched = result.AlreadyMatched
			return nil

		case domrel.OutcomeLikeRecorded:
			return s.likeStore.Upsert(txCtx, tx, userID, targetID)

		case domrel.OutcomeMatchCreated:
			created, err := s.matchStore.Create(txCtx, tx, userID, targetID)
			if err != nil {
				return err
			}
			if !created {
				// Row already present despite the lock; treat as settled.
				result.AlreadyMatched = true
				result.Matched = true
				return nil
			}
			if err := s.likeStore.DeletePair(txCtx, tx, userID, targetID); err != nil {
				return err
			}
			if err := s.notifyMatched(txCtx, tx, userID, targetID); err != nil {
				return err
			}
			result.Matched = true
			return nil

		default:
			return fmt.Errorf("unhandled like outcome %d from state %s", outcome, state)
		}
	})
	if err != nil {
		return LikeResult{}, err
	}

	return result, nil
}

// IsMatched is the authorization gate for message delivery. It reads the
// current match state on every call; matches can be revoked between messages
// so a cached answer would let sends through after an unmatch.
func (s *Service) IsMatched(ctx context.Context, userID, targetID int64) (bool, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return false, nil
	}
	if s.matchStore == nil {
		return false, ErrDependenciesNil
	}
	return s.matchStore.Exists(ctx, userID, targetID)
}

func (s *Service) ListMatches(ctx context.Context, userID int64, limit int) ([]MatchItem, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.matchStore == nil {
		return nil, ErrDependenciesNil
	}

	rows, err := s.matchStore.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	items := make([]MatchItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, MatchItem{
			ID:           row.ID,
			TargetUserID: row.TargetUserID,
			DisplayName:  row.DisplayName,
			CreatedAt:    row.CreatedAt,
		})
	}

	return items, nil
}

func (s *Service) Unmatch(ctx context.Context, userID, targetID int64) (bool, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return false, ErrValidation
	}
	if s.matchStore == nil || s.likeStore == nil {
		return false, ErrDependenciesNil
	}

	var deleted bool
	err := s.withPairTx(ctx, userID, targetID, func(txCtx context.Context, tx pgx.Tx) error {
		d, err := s.matchStore.DeleteByUsers(txCtx, tx, userID, targetID)
		if err != nil {
			return err
		}
		deleted = d

		// Unmatch returns the pair to unrelated, not to liked.
		return s.likeStore.DeletePair(txCtx, tx, userID, targetID)
	})
	if err != nil {
		return false, err
	}

	return deleted, nil
}

func (s *Service) readPairState(ctx context.Context, tx pgx.Tx, userID, targetID int64) (domrel.PairState, error) {
	matched, err := s.matchStore.ExistsTx(ctx, tx, userID, targetID)
	if err != nil {
		return domrel.StateUnrelated, err
	}

	actorLikes, err := s.likeStore.Exists(ctx, tx, userID, targetID)
	if err != nil {
		return domrel.StateUnrelated, err
	}

	targetLikes, err := s.likeStore.Exists(ctx, tx, targetID, userID)
	if err != nil {
		return domrel.StateUnrelated, err
	}

	return domrel.PairStateOf(actorLikes, targetLikes, matched), nil
}

func (s *Service) notifyMatched(ctx context.Context, tx pgx.Tx, userID, targetID int64) error {
	if err := s.notifStore.CreateTx(ctx, tx, userID, enums.NotificationMatch, s.matchContent(ctx, targetID)); err != nil {
		return err
	}
	return s.notifStore.CreateTx(ctx, tx, targetID, enums.NotificationMatch, s.matchContent(ctx, userID))
}

func (s *Service) matchContent(ctx context.Context, peerID int64) string {
	name := s.displayName(ctx, peerID)
	if name == "" {
		return "You have a new match"
	}
	return "You matched with " + name
}

func (s *Service) displayName(ctx context.Context, userID int64) string {
	if s.userStore == nil {
		return ""
	}
	name, err := s.userStore.GetDisplayName(ctx, userID)
	if err != nil {
		return ""
	}
	return name
}
