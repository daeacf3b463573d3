package repository

import (
	"context"
	"database/sql"
	"time"

	"firstcrack/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

type BrewRepo interface {
	Save(ctx context.Context, b models.BrewRecord) error
	Get(ctx context.Context, brewID string) (models.BrewRecord, error)
	SetStatus(ctx context.Context, brewID, status string, at time.Time) error
}

type EventRepo interface {
	Append(ctx context.Context, e models.NotificationEvent) error
	List(ctx context.Context, from, to time.Time, typ, brewID string) ([]models.NotificationEvent, error)
}

type Repository struct {
	Brews  BrewRepo
	Events EventRepo
	Auth   Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Brews:  NewBrewSQLite(db),
		Events: NewEventSQLite(db),
		Auth:   NewUserRepository(db),
	}
}
