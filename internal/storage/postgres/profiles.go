package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hongminglow/lateral-entry-be/internal/models"
)

var profileColumns = func() string {
	cols := []string{"id"}
	for _, f := range models.EditableFields {
		cols = append(cols, string(f))
	}
	return strings.Join(append(cols, "created_at", "updated_at"), ", ")
}()

// GetProfile fetches one profile.
func (s *Store) GetProfile(ctx context.Context, id int64) (models.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM lateral_entrants WHERE id = $1`, id)
	p, err := scanProfile(row)
	return p, mapErr(err)
}

// ListProfiles pages through profiles ordered by name.
func (s *Store) ListProfiles(ctx context.Context, q models.ProfileQuery) ([]models.Profile, int64, error) {
	where := ""
	args := []any{}
	if strings.TrimSpace(q.Search) != "" {
		where = "WHERE name ILIKE $1 OR position ILIKE $1 OR department ILIKE $1 OR ministry ILIKE $1"
		args = append(args, likePattern(q.Search))
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lateral_entrants `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}

	limit, offset := limitOffset(q.Page, q.PerPage)
	query := fmt.Sprintf(`SELECT %s FROM lateral_entrants %s ORDER BY name, id LIMIT $%d OFFSET $%d`,
		profileColumns, where, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// ApplyProfileEdit writes one whitelisted column and logs it.
func (s *Store) ApplyProfileEdit(ctx context.Context, entrantID int64, field models.ProfileField, value *string, entry models.AuditEntry) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := updateProfileField(ctx, tx, entrantID, field, value); err != nil {
			return err
		}
		return insertAudit(ctx, tx, entry)
	})
}

// updateProfileField is the only place a column name is spliced into SQL. The name must
// round-trip through ParseProfileField first.
func updateProfileField(ctx context.Context, q queryer, entrantID int64, field models.ProfileField, value *string) error {
	column, err := models.ParseProfileField(string(field))
	if err != nil {
		return err
	}
	if column == models.FieldName && value == nil {
		return fmt.Errorf("name cannot be cleared")
	}
	query := fmt.Sprintf(`UPDATE lateral_entrants SET %s = $1, updated_at = NOW() WHERE id = $2`, column)
	return expectOne(q.ExecContext(ctx, query, value, entrantID))
}

func scanProfile(row rowScanner) (models.Profile, error) {
	var p models.Profile
	if err := row.Scan(&p.ID, &p.Name, &p.PhotoURL, &p.BatchYear, &p.Position, &p.Department, &p.Ministry, &p.State,
		&p.EducationalBackground, &p.PreviousExperience, &p.DateOfAppointment, &p.ProfileSummary, &p.Bio,
		&p.Achievements, &p.Email, &p.Phone, &p.LinkedInURL, &p.TwitterHandle, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// VisibilitySettings returns the stored levels of each profile, keyed by profile id.
func (s *Store) VisibilitySettings(ctx context.Context, entrantIDs ...int64) (map[int64]map[string]string, error) {
	out := make(map[int64]map[string]string, len(entrantIDs))
	for _, id := range entrantIDs {
		out[id] = map[string]string{}
	}
	if len(entrantIDs) == 0 {
		return out, nil
	}

	const query = `
		SELECT entrant_id, field_name, visibility_level
		FROM field_visibility_settings
		WHERE entrant_id = ANY($1::bigint[])`
	rows, err := s.db.QueryContext(ctx, query, bigintArray(entrantIDs))
	if err != nil {
		return nil, fmt.Errorf("load visibility settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var field, level string
		if err := rows.Scan(&id, &field, &level); err != nil {
			return nil, err
		}
		if out[id] == nil {
			out[id] = map[string]string{}
		}
		out[id][field] = level
	}
	return out, rows.Err()
}

// SetVisibility upserts each change and appends its history row.
func (s *Store) SetVisibility(ctx context.Context, changes ...models.VisibilityChange) error {
	const upsert = `
		INSERT INTO field_visibility_settings (entrant_id, field_name, visibility_level, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (entrant_id, field_name)
		DO UPDATE SET visibility_level = EXCLUDED.visibility_level, updated_at = NOW()`
	const history = `
		INSERT INTO visibility_audit (entrant_id, field_name, old_visibility, new_visibility, changed_by)
		VALUES ($1, $2, $3, $4, $5)`
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, c := range changes {
			if _, err := tx.ExecContext(ctx, upsert, c.EntrantID, c.FieldName, c.NewVisibility); err != nil {
				return fmt.Errorf("upsert visibility %s: %w", c.FieldName, mapErr(err))
			}
			if _, err := tx.ExecContext(ctx, history, c.EntrantID, c.FieldName, c.OldVisibility, c.NewVisibility, c.ChangedBy); err != nil {
				return fmt.Errorf("record visibility change: %w", err)
			}
		}
		return nil
	})
}

const editRequestColumns = `r.id, r.user_id, r.entrant_id, r.field_name, r.old_value, r.new_value, r.status,
	r.reviewed_by, r.reviewed_at, r.rejection_reason, r.created_at`

// CreateEditRequest queues a pending field change.
func (s *Store) CreateEditRequest(ctx context.Context, req models.FieldEditRequest) (models.FieldEditRequest, error) {
	const query = `
		INSERT INTO field_edit_requests AS r (user_id, entrant_id, field_name, old_value, new_value, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING ` + editRequestColumns
	created, err := scanEditRequest(s.db.QueryRowContext(ctx, query,
		req.UserID, req.EntrantID, req.FieldName, req.OldValue, req.NewValue))
	return created, mapErr(err)
}

// GetEditRequest fetches one request.
func (s *Store) GetEditRequest(ctx context.Context, id int64) (models.FieldEditRequest, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+editRequestColumns+` FROM field_edit_requests r WHERE r.id = $1`, id)
	r, err := scanEditRequest(row)
	return r, mapErr(err)
}

// ListEditRequests lists requests in a status with requester and profile names.
func (s *Store) ListEditRequests(ctx context.Context, status models.EditStatus) ([]models.FieldEditRequest, error) {
	const query = `
		SELECT ` + editRequestColumns + `, u.name, u.email, le.name
		FROM field_edit_requests r
		JOIN users u ON r.user_id = u.id
		LEFT JOIN lateral_entrants le ON r.entrant_id = le.id
		WHERE r.status = $1
		ORDER BY r.created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("list edit requests: %w", err)
	}
	defer rows.Close()

	var out []models.FieldEditRequest
	for rows.Next() {
		var r models.FieldEditRequest
		if err := rows.Scan(&r.ID, &r.UserID, &r.EntrantID, &r.FieldName, &r.OldValue, &r.NewValue, &r.Status,
			&r.ReviewedBy, &r.ReviewedAt, &r.RejectionReason, &r.CreatedAt,
			&r.UserName, &r.UserEmail, &r.EntrantName); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListUserEditRequests lists a requester's own requests.
func (s *Store) ListUserEditRequests(ctx context.Context, userID int64) ([]models.FieldEditRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+editRequestColumns+` FROM field_edit_requests r WHERE r.user_id = $1 ORDER BY r.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user edit requests: %w", err)
	}
	defer rows.Close()

	var out []models.FieldEditRequest
	for rows.Next() {
		r, err := scanEditRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ApproveEditRequest applies and closes a pending request.
func (s *Store) ApproveEditRequest(ctx context.Context, id int64, review models.Review, entry models.AuditEntry) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var entrantID int64
		var field, value string
		err := tx.QueryRowContext(ctx,
			`SELECT entrant_id, field_name, new_value FROM field_edit_requests WHERE id = $1 AND status = 'pending' FOR UPDATE`, id,
		).Scan(&entrantID, &field, &value)
		if err != nil {
			return mapErr(err)
		}
		if err := updateProfileField(ctx, tx, entrantID, models.ProfileField(field), models.ClearedValue(value)); err != nil {
			return err
		}
		if err := markReviewed(ctx, tx, id, review); err != nil {
			return err
		}
		return insertAudit(ctx, tx, entry)
	})
}

// RejectEditRequest closes a pending request without touching the profile.
func (s *Store) RejectEditRequest(ctx context.Context, id int64, review models.Review, entry models.AuditEntry) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := markReviewed(ctx, tx, id, review); err != nil {
			return err
		}
		return insertAudit(ctx, tx, entry)
	})
}

func markReviewed(ctx context.Context, q queryer, id int64, review models.Review) error {
	const query = `
		UPDATE field_edit_requests
		SET status = $1, reviewed_by = $2, reviewed_at = $3, rejection_reason = $4
		WHERE id = $5 AND status = 'pending'`
	return expectOne(q.ExecContext(ctx, query, review.Status, review.ReviewerID, review.At, review.Reason, id))
}

func scanEditRequest(row rowScanner) (models.FieldEditRequest, error) {
	var r models.FieldEditRequest
	if err := row.Scan(&r.ID, &r.UserID, &r.EntrantID, &r.FieldName, &r.OldValue, &r.NewValue, &r.Status,
		&r.ReviewedBy, &r.ReviewedAt, &r.RejectionReason, &r.CreatedAt); err != nil {
		return models.FieldEditRequest{}, err
	}
	return r, nil
}
