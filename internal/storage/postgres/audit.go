package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hongminglow/lateral-entry-be/internal/models"
)

// AppendAudit writes one audit log row.
func (s *Store) AppendAudit(ctx context.Context, entry models.AuditEntry) error {
	return insertAudit(ctx, s.db, entry)
}

// ListAudit pages through the audit log, newest first.
func (s *Store) ListAudit(ctx context.Context, q models.AuditQuery) ([]models.AuditEntry, int64, error) {
	where := ""
	args := []any{}
	if q.Action != "" {
		where = "WHERE a.action = $1"
		args = append(args, q.Action)
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log a `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit log: %w", err)
	}

	limit, offset := limitOffset(q.Page, q.PerPage)
	query := fmt.Sprintf(`
		SELECT a.id, a.user_id, a.action, a.entity_type, a.entity_id, a.old_value, a.new_value,
			a.ip_address, a.user_agent, a.created_at, u.name, u.email
		FROM audit_log a
		LEFT JOIN users u ON a.user_id = u.id
		%s
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit log: %w", err)
	}
	defer rows.Close()

	var out []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.EntityType, &e.EntityID, &e.OldValue, &e.NewValue,
			&e.IPAddress, &e.UserAgent, &e.CreatedAt, &e.UserName, &e.UserEmail); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

const settingColumns = `setting_key, setting_value, description, updated_at, updated_by`

// GetSetting fetches one admin setting.
func (s *Store) GetSetting(ctx context.Context, key string) (models.AdminSetting, error) {
	setting, err := scanSetting(s.db.QueryRowContext(ctx,
		`SELECT `+settingColumns+` FROM admin_settings WHERE setting_key = $1`, key))
	return setting, mapErr(err)
}

// ListSettings returns every admin setting ordered by key.
func (s *Store) ListSettings(ctx context.Context) ([]models.AdminSetting, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+settingColumns+` FROM admin_settings ORDER BY setting_key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var out []models.AdminSetting
	for rows.Next() {
		setting, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, setting)
	}
	return out, rows.Err()
}

// UpdateSetting changes a setting value and logs it.
func (s *Store) UpdateSetting(ctx context.Context, key, value string, updatedBy int64, entry models.AuditEntry) (models.AdminSetting, error) {
	var old models.AdminSetting
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		old, err = scanSetting(tx.QueryRowContext(ctx,
			`SELECT `+settingColumns+` FROM admin_settings WHERE setting_key = $1 FOR UPDATE`, key))
		if err != nil {
			return mapErr(err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE admin_settings SET setting_value = $1, updated_at = NOW(), updated_by = $2 WHERE setting_key = $3`,
			value, updatedBy, key); err != nil {
			return err
		}
		return insertAudit(ctx, tx, entry)
	})
	if err != nil {
		return models.AdminSetting{}, err
	}
	return old, nil
}

func scanSetting(row rowScanner) (models.AdminSetting, error) {
	var s models.AdminSetting
	if err := row.Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt, &s.UpdatedBy); err != nil {
		return models.AdminSetting{}, err
	}
	return s, nil
}

// DashboardStats counts the moderation backlog in one round trip.
func (s *Store) DashboardStats(ctx context.Context, loginsSince time.Time) (models.DashboardStats, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM pending_users),
			(SELECT COUNT(*) FROM users WHERE is_active),
			(SELECT COUNT(*) FROM field_edit_requests WHERE status = 'pending'),
			(SELECT COUNT(*) FROM uploads WHERE moderation_status = 'pending'),
			(SELECT COUNT(*) FROM flagged_content WHERE status = 'pending'),
			(SELECT COUNT(DISTINCT user_id) FROM sessions WHERE created_at >= $1)`
	var st models.DashboardStats
	err := s.db.QueryRowContext(ctx, query, loginsSince).Scan(
		&st.PendingApprovals, &st.TotalUsers, &st.PendingEdits, &st.PendingUploads, &st.FlaggedContent, &st.RecentLogins)
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("dashboard stats: %w", err)
	}
	return st, nil
}
