package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/domain"
)

var ErrNotFound = errors.New("lead not found")

// DefaultHistoryLimit bounds how many history lines are replayed to the
// oracle and to the notification report.
const DefaultHistoryLimit = 20

const leadColumns = `id, company_id, external_user_id, contact_info, status, source, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetOrCreateLead resolves the single lead for (companyID, userID). Numeric
// ids are native chat identities; anything else is treated as an opaque web
// visitor token stored inside contact_info. With reset, an existing lead and
// all its interactions are deleted and a fresh lead is created. The reset
// is destructive, not a soft-delete.
func (r *Repository) GetOrCreateLead(ctx context.Context, companyID int64, userID, username, source string, reset bool) (domain.Lead, error) {
	lead, err := r.findLead(ctx, companyID, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return domain.Lead{}, err
	}

	if err == nil {
		if !reset {
			return lead, nil
		}
		if err := r.deleteLead(ctx, lead.ID); err != nil {
			return domain.Lead{}, err
		}
	}

	return r.createLead(ctx, companyID, userID, username, source)
}

// GetLeadByID loads one lead regardless of tenant; used by the background
// dispatch path which carries the lead id in its task payload.
func (r *Repository) GetLeadByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

func (r *Repository) findLead(ctx context.Context, companyID int64, userID string) (domain.Lead, error) {
	var row pgx.Row
	if isNumeric(userID) {
		row = r.pool.QueryRow(ctx, `
			SELECT `+leadColumns+`
			FROM leads
			WHERE company_id = $1 AND external_user_id = $2
			ORDER BY created_at DESC
			LIMIT 1
		`, companyID, userID)
	} else {
		row = r.pool.QueryRow(ctx, `
			SELECT `+leadColumns+`
			FROM leads
			WHERE company_id = $1 AND contact_info->>'visitor_id' = $2
			ORDER BY created_at DESC
			LIMIT 1
		`, companyID, userID)
	}
	return scanLead(row)
}

func (r *Repository) createLead(ctx context.Context, companyID int64, userID, username, source string) (domain.Lead, error) {
	contact := domain.ContactInfo{Username: username}
	externalUserID := ""
	if isNumeric(userID) {
		externalUserID = userID
	} else {
		contact.VisitorID = userID
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (company_id, external_user_id, contact_info, status, source)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+leadColumns+`
	`, companyID, externalUserID, contact, domain.StatusNew, source)

	lead, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return lead, nil
}

func (r *Repository) deleteLead(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM interactions WHERE lead_id = $1`, id); err != nil {
		return fmt.Errorf("delete interactions: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}

	return tx.Commit(ctx)
}

// AppendInteraction records one exchange. Interactions are append-only; they
// are removed only by the destructive reset above.
func (r *Repository) AppendInteraction(ctx context.Context, leadID uuid.UUID, typ domain.InteractionType, content, outcome string) (domain.Interaction, error) {
	var it domain.Interaction
	err := r.pool.QueryRow(ctx, `
		INSERT INTO interactions (lead_id, type, content, outcome)
		VALUES ($1, $2, $3, $4)
		RETURNING id, lead_id, type, content, outcome, created_at
	`, leadID, typ, content, outcome).Scan(&it.ID, &it.LeadID, &it.Type, &it.Content, &it.Outcome, &it.CreatedAt)
	if err != nil {
		return domain.Interaction{}, fmt.Errorf("append interaction: %w", err)
	}
	return it, nil
}

// LoadHistory replays interactions oldest-to-newest, splitting each into a
// user line and a bot line, dropping sentinel placeholders, and returning
// only the most recent limit lines.
func (r *Repository) LoadHistory(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.HistoryEntry, error) {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}

	rows, err := r.pool.Query(ctx, `
		SELECT content, outcome
		FROM interactions
		WHERE lead_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, leadID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	interactions := make([]domain.Interaction, 0, limit)
	for rows.Next() {
		var it domain.Interaction
		if err := rows.Scan(&it.Content, &it.Outcome); err != nil {
			return nil, err
		}
		interactions = append(interactions, it)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	// reverse into chronological order
	for i, j := 0, len(interactions)-1; i < j; i, j = i+1, j-1 {
		interactions[i], interactions[j] = interactions[j], interactions[i]
	}

	return SplitHistory(interactions, limit), nil
}

// SplitHistory turns chronological interactions into sender-tagged lines,
// excluding sentinel content, keeping the most recent limit lines.
func SplitHistory(interactions []domain.Interaction, limit int) []domain.HistoryEntry {
	entries := make([]domain.HistoryEntry, 0, len(interactions)*2)
	for _, it := range interactions {
		if it.Content != "" && it.Content != domain.SentinelConfirmationRequest {
			entries = append(entries, domain.HistoryEntry{Sender: "user", Text: it.Content})
		}
		if it.Outcome != "" {
			entries = append(entries, domain.HistoryEntry{Sender: "bot", Text: it.Outcome})
		}
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries
}

// MergeContact applies absent-only merge semantics and persists the document
// when it changed. The whole jsonb column is rewritten so the persistence
// layer always sees the mutation.
func (r *Repository) MergeContact(ctx context.Context, lead *domain.Lead, update domain.ContactUpdate) error {
	if !lead.Contact.Merge(update) {
		return nil
	}
	return r.UpdateContact(ctx, lead.ID, lead.Contact)
}

// UpdateContact rewrites the lead's contact document.
func (r *Repository) UpdateContact(ctx context.Context, leadID uuid.UUID, contact domain.ContactInfo) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET contact_info = $2, updated_at = now() WHERE id = $1
	`, leadID, contact)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ConfirmLead performs the pending→confirmed transition as a single
// conditional update. It reports whether this call actually won the
// transition; under concurrent delivery of two messages for the same lead,
// exactly one caller observes true and only that caller may schedule the
// notification dispatch.
func (r *Repository) ConfirmLead(ctx context.Context, leadID uuid.UUID, contact domain.ContactInfo) (bool, error) {
	contact.ConfirmationStatus = domain.ConfirmationConfirmed
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET contact_info = $2, status = $3, updated_at = now()
		WHERE id = $1
		  AND status NOT IN ($3, $4)
		  AND contact_info->>'confirmation_status' IS DISTINCT FROM $5
	`, leadID, contact, domain.StatusConfirmed, domain.StatusContacted, string(domain.ConfirmationConfirmed))
	if err != nil {
		return false, fmt.Errorf("confirm lead: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// SetTemperature persists the classifier's verdict onto the lead. The result
// is written once at confirmation time and never recomputed.
func (r *Repository) SetTemperature(ctx context.Context, leadID uuid.UUID, temperature domain.Temperature) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET contact_info = jsonb_set(contact_info, '{temperature}', to_jsonb($2::text)), updated_at = now()
		WHERE id = $1
	`, leadID, string(temperature))
	if err != nil {
		return fmt.Errorf("set temperature: %w", err)
	}
	return nil
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var lead domain.Lead
	err := row.Scan(
		&lead.ID, &lead.CompanyID, &lead.ExternalUserID, &lead.Contact,
		&lead.Status, &lead.Source, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}
