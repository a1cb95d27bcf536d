package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/IanyTech/iany-gaming/internal/apperror"
	"github.com/IanyTech/iany-gaming/internal/config"
	"github.com/IanyTech/iany-gaming/internal/database"
	"github.com/IanyTech/iany-gaming/internal/logger"
	"github.com/IanyTech/iany-gaming/internal/models"

	"github.com/google/uuid"
)

// LoyaltyEventPublisher публикует события движения баллов.
type LoyaltyEventPublisher interface {
	PublishPointsEarned(userID string, points, newBalance int) error
	PublishPointsRedeemed(userID string, points, newBalance int) error
}

// LoyaltyService ведет счета баллов и историю их движения.
// Баланс меняется только вместе с записью в loyalty_transactions.
type LoyaltyService struct {
	db     *database.DB
	events LoyaltyEventPublisher
	log    *logger.Logger
	now    func() time.Time

	birthdayPoints int
}

// NewLoyaltyService создаёт сервис лояльности.
func NewLoyaltyService(db *database.DB, events LoyaltyEventPublisher, log *logger.Logger, cfg *config.LoyaltyConfig) *LoyaltyService {
	birthdayPoints := 50
	if cfg != nil && cfg.BirthdayPoints > 0 {
		birthdayPoints = cfg.BirthdayPoints
	}
	return &LoyaltyService{
		db:             db,
		events:         events,
		log:            log,
		now:            time.Now,
		birthdayPoints: birthdayPoints,
	}
}

// GetAccount возвращает счет баллов; для новых пользователей — нулевой счет.
func (s *LoyaltyService) GetAccount(ctx context.Context, userID string) (*models.LoyaltyAccount, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated("sign in to view loyalty points", nil)
	}

	query := `
		SELECT user_id, points_balance, total_earned, created_at, updated_at
		FROM loyalty_accounts
		WHERE user_id = $1
	`

	account := &models.LoyaltyAccount{}
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&account.UserID, &account.PointsBalance, &account.TotalEarned, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			now := s.now()
			return &models.LoyaltyAccount{
				UserID:    userID,
				Tier:      models.TierBronze,
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		}
		return nil, fmt.Errorf("failed to get loyalty account: %w", err)
	}

	account.Tier = models.TierForPoints(account.TotalEarned)
	return account, nil
}

// EarnPointsTx начисляет баллы в рамках внешней транзакции и возвращает
// новый баланс. Уровень выводится из суммарно заработанных баллов,
// поэтому списания на него не влияют.
func (s *LoyaltyService) EarnPointsTx(ctx context.Context, tx *sql.Tx, userID string, points int, reason string, referenceID *string) (int, error) {
	if points <= 0 {
		return 0, apperror.Validation("points must be positive", nil)
	}

	now := s.now()
	query := `
		INSERT INTO loyalty_accounts (user_id, points_balance, total_earned, created_at, updated_at)
		VALUES ($1, $2, $2, $3, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET points_balance = loyalty_accounts.points_balance + $2,
		    total_earned = loyalty_accounts.total_earned + $2,
		    updated_at = $3
		RETURNING points_balance
	`

	var balance int
	if err := tx.QueryRowContext(ctx, query, userID, points, now).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to earn points: %w", err)
	}

	if err := s.insertTransactionTx(ctx, tx, userID, points, reason, referenceID); err != nil {
		return 0, err
	}

	return balance, nil
}

// RedeemPoints списывает баллы. Баланс блокируется на время транзакции,
// чтобы конкурентные списания не ушли в минус.
func (s *LoyaltyService) RedeemPoints(ctx context.Context, userID string, req *models.RedeemPointsRequest) (*models.LoyaltyAccount, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated("sign in to redeem points", nil)
	}
	if req == nil || req.Points <= 0 {
		return nil, apperror.Validation("points must be positive", nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var balance int
	err = tx.QueryRowContext(ctx, `SELECT points_balance FROM loyalty_accounts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.Conflict("not enough points", err)
		}
		return nil, fmt.Errorf("failed to lock loyalty account: %w", err)
	}
	if balance < req.Points {
		return nil, apperror.Conflict("not enough points", nil)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE loyalty_accounts SET points_balance = points_balance - $1, updated_at = $2 WHERE user_id = $3`,
		req.Points, s.now(), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem points: %w", err)
	}

	reason := req.Reason
	if reason == "" {
		reason = "redeem"
	}
	if err := s.insertTransactionTx(ctx, tx, userID, -req.Points, reason, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit redemption: %w", err)
	}

	account, err := s.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.PublishPointsRedeemed(userID, req.Points, account.PointsBalance); err != nil {
			s.log.WithError(err).Warn("Failed to publish loyalty event")
		}
	}

	return account, nil
}

// AwardBirthdayPoints начисляет подарочные баллы в день рождения,
// не более одного раза в календарный год.
func (s *LoyaltyService) AwardBirthdayPoints(ctx context.Context, userID string) (*models.LoyaltyAccount, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated("sign in to claim birthday points", nil)
	}

	var birthDate time.Time
	err := s.db.QueryRowContext(ctx, `SELECT birth_date FROM profiles WHERE user_id = $1`, userID).Scan(&birthDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("birth date is not set", err)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	now := s.now()
	if birthDate.Month() != now.Month() || birthDate.Day() != now.Day() {
		return nil, apperror.Conflict("today is not your birthday", nil)
	}

	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	var awarded bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM loyalty_transactions WHERE user_id = $1 AND reason = 'birthday' AND created_at >= $2)`,
		userID, yearStart,
	).Scan(&awarded)
	if err != nil {
		return nil, fmt.Errorf("failed to check birthday award: %w", err)
	}
	if awarded {
		return nil, apperror.Conflict("birthday points already claimed this year", nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	balance, err := s.EarnPointsTx(ctx, tx, userID, s.birthdayPoints, "birthday", nil)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit birthday award: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishPointsEarned(userID, s.birthdayPoints, balance); err != nil {
			s.log.WithError(err).Warn("Failed to publish loyalty event")
		}
	}

	return s.GetAccount(ctx, userID)
}

// ListTransactions возвращает историю движения баллов от новых к старым.
func (s *LoyaltyService) ListTransactions(ctx context.Context, userID string, limit int) ([]*models.LoyaltyTransaction, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated("sign in to view loyalty history", nil)
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, points, reason, reference_id, created_at
		FROM loyalty_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list loyalty transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.LoyaltyTransaction
	for rows.Next() {
		t := &models.LoyaltyTransaction{}
		if err := rows.Scan(&t.ID, &t.UserID, &t.Points, &t.Reason, &t.ReferenceID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan loyalty transaction: %w", err)
		}
		transactions = append(transactions, t)
	}

	return transactions, nil
}

func (s *LoyaltyService) insertTransactionTx(ctx context.Context, tx *sql.Tx, userID string, points int, reason string, referenceID *string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO loyalty_transactions (id, user_id, points, reason, reference_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), userID, points, reason, referenceID, s.now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert loyalty transaction: %w", err)
	}
	return nil
}
