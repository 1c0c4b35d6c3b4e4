package company

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("company not found")

// Repository reads tenant records. The companies table is managed elsewhere;
// this layer only ever reads it.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetByID(ctx context.Context, id int64) (Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx, `
		SELECT id, name,
		       COALESCE(bot_token, ''),
		       COALESCE(manager_chat_id, 0),
		       COALESCE(notification_email, ''),
		       COALESCE(ai_endpoint, ''),
		       COALESCE(ai_key, '')
		FROM companies
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.BotToken, &c.ManagerChatID, &c.NotificationEmail, &c.AIEndpoint, &c.AIKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return Company{}, ErrNotFound
	}
	if err != nil {
		return Company{}, err
	}
	return c, nil
}

// Resolver combines the repository with the configured defaults. An unknown
// company id resolves to the bare defaults rather than failing; a tenant
// misconfiguration must not break the visitor conversation.
type Resolver struct {
	repo     *Repository
	defaults Defaults
}

func NewResolver(repo *Repository, defaults Defaults) *Resolver {
	return &Resolver{repo: repo, defaults: defaults}
}

func (s *Resolver) Resolve(ctx context.Context, companyID int64) (Credentials, error) {
	c, err := s.repo.GetByID(ctx, companyID)
	if errors.Is(err, ErrNotFound) {
		return Resolve(Company{}, s.defaults), nil
	}
	if err != nil {
		return Credentials{}, err
	}
	return Resolve(c, s.defaults), nil
}
