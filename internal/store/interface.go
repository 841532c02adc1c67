// Package store defines the persistence interface for the appraisal server.
package store

import (
	"context"

	"github.com/mbjewelry/appraisal-server/internal/domain"
)

// ItemUpdate carries the fields of a partial calculation-item update, keyed
// by JSON field name. Implementations restrict mutation to an explicit
// allowlist; identity and ownership fields can never be changed this way.
type ItemUpdate map[string]any

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// Auth sessions
	CreateAuthSession(ctx context.Context, session *domain.AuthSession) error
	GetAuthSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthSession, error)
	DeleteAuthSession(ctx context.Context, id string) error
	DeleteExpiredAuthSessions(ctx context.Context) (int, error)

	// Calculations
	SaveCalculation(ctx context.Context, userID int64, name, description string, items []domain.ValuedItem) (int64, error)
	ListCalculations(ctx context.Context, userID int64, limit int) ([]*domain.CalculationListEntry, error)
	GetCalculation(ctx context.Context, calculationID, userID int64) (*domain.CalculationDetail, error)
	DeleteCalculation(ctx context.Context, calculationID, userID int64) (bool, error)
	UpdateCalculationItem(ctx context.Context, calculationID, itemID, userID int64, fields ItemUpdate) (bool, error)
	GetUserStats(ctx context.Context, userID int64) (*domain.UserStats, error)

	// Box grouping
	GetBoxGroups(ctx context.Context, userID int64, maxPerBox int) ([]*domain.BoxGroup, error)
	GetBoxGroupsByCalculation(ctx context.Context, calculationID, userID int64) ([]*domain.BoxGroup, error)
}
