package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/storage"
)

const uploadColumns = `p.id, p.user_id, p.file_path, p.file_type, p.file_size, p.purpose, p.moderation_status,
	p.moderated_by, p.moderated_at, p.rejection_reason, p.uploaded_at`

// CreateUpload records a stored file pending moderation.
func (s *Store) CreateUpload(ctx context.Context, upload models.Upload) (models.Upload, error) {
	const query = `
		INSERT INTO uploads AS p (user_id, file_path, file_type, file_size, purpose, moderation_status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING ` + uploadColumns
	created, err := scanUpload(s.db.QueryRowContext(ctx, query,
		upload.UserID, upload.FilePath, upload.FileType, upload.FileSize, upload.Purpose))
	return created, mapErr(err)
}

// GetUpload fetches one upload.
func (s *Store) GetUpload(ctx context.Context, id int64) (models.Upload, error) {
	u, err := scanUpload(s.db.QueryRowContext(ctx, `SELECT `+uploadColumns+` FROM uploads p WHERE p.id = $1`, id))
	return u, mapErr(err)
}

// ListUploads lists uploads in a moderation status with uploader details.
func (s *Store) ListUploads(ctx context.Context, status models.EditStatus) ([]models.Upload, error) {
	const query = `
		SELECT ` + uploadColumns + `, u.name, u.email
		FROM uploads p
		JOIN users u ON p.user_id = u.id
		WHERE p.moderation_status = $1
		ORDER BY p.uploaded_at DESC`
	rows, err := s.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	var out []models.Upload
	for rows.Next() {
		var u models.Upload
		if err := rows.Scan(&u.ID, &u.UserID, &u.FilePath, &u.FileType, &u.FileSize, &u.Purpose, &u.ModerationStatus,
			&u.ModeratedBy, &u.ModeratedAt, &u.RejectionReason, &u.UploadedAt, &u.UserName, &u.UserEmail); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ListUserUploads lists one user's uploads, newest first.
func (s *Store) ListUserUploads(ctx context.Context, userID int64) ([]models.Upload, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+uploadColumns+` FROM uploads p WHERE p.user_id = $1 ORDER BY p.uploaded_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user uploads: %w", err)
	}
	defer rows.Close()

	var out []models.Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// DeleteUpload removes the metadata row.
func (s *Store) DeleteUpload(ctx context.Context, id int64) error {
	return expectOne(s.db.ExecContext(ctx, `DELETE FROM uploads WHERE id = $1`, id))
}

// ReviewUpload records a moderation decision and logs it.
func (s *Store) ReviewUpload(ctx context.Context, id int64, review models.Review, entry models.AuditEntry) error {
	const query = `
		UPDATE uploads
		SET moderation_status = $1, moderated_by = $2, moderated_at = $3, rejection_reason = $4
		WHERE id = $5`
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := expectOne(tx.ExecContext(ctx, query, review.Status, review.ReviewerID, review.At, review.Reason, id)); err != nil {
			return err
		}
		return insertAudit(ctx, tx, entry)
	})
}

func scanUpload(row rowScanner) (models.Upload, error) {
	var u models.Upload
	if err := row.Scan(&u.ID, &u.UserID, &u.FilePath, &u.FileType, &u.FileSize, &u.Purpose, &u.ModerationStatus,
		&u.ModeratedBy, &u.ModeratedAt, &u.RejectionReason, &u.UploadedAt); err != nil {
		return models.Upload{}, err
	}
	return u, nil
}

const flagColumns = `f.id, f.content_type, f.content_id, f.entrant_id, f.reason, f.reported_by, f.status,
	f.resolved_by, f.resolved_at, f.admin_notes, f.reported_at`

// CreateFlag records a content report.
func (s *Store) CreateFlag(ctx context.Context, flag models.FlaggedContent) (models.FlaggedContent, error) {
	const query = `
		INSERT INTO flagged_content AS f (content_type, content_id, entrant_id, reason, reported_by, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING ` + flagColumns
	created, err := scanFlag(s.db.QueryRowContext(ctx, query,
		flag.ContentType, flag.ContentID, flag.EntrantID, flag.Reason, flag.ReportedBy))
	return created, mapErr(err)
}

// GetFlag fetches one report.
func (s *Store) GetFlag(ctx context.Context, id int64) (models.FlaggedContent, error) {
	f, err := scanFlag(s.db.QueryRowContext(ctx, `SELECT `+flagColumns+` FROM flagged_content f WHERE f.id = $1`, id))
	return f, mapErr(err)
}

// ListFlags lists reports in a status with reporter details.
func (s *Store) ListFlags(ctx context.Context, status string) ([]models.FlaggedContent, error) {
	const query = `
		SELECT ` + flagColumns + `, u.name, u.email
		FROM flagged_content f
		JOIN users u ON f.reported_by = u.id
		WHERE f.status = $1
		ORDER BY f.reported_at DESC`
	rows, err := s.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("list flagged content: %w", err)
	}
	defer rows.Close()

	var out []models.FlaggedContent
	for rows.Next() {
		var f models.FlaggedContent
		if err := rows.Scan(&f.ID, &f.ContentType, &f.ContentID, &f.EntrantID, &f.Reason, &f.ReportedBy, &f.Status,
			&f.ResolvedBy, &f.ResolvedAt, &f.AdminNotes, &f.ReportedAt, &f.ReporterName, &f.ReporterEmail); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ResolveFlag closes a report, removing the content for a remove decision.
func (s *Store) ResolveFlag(ctx context.Context, id int64, resolution models.FlagResolution, entry models.AuditEntry) error {
	const resolve = `
		UPDATE flagged_content
		SET status = 'resolved', resolved_by = $1, resolved_at = $2, admin_notes = $3
		WHERE id = $4
		RETURNING content_type, content_id, entrant_id`
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var contentType, contentID string
		var entrantID *int64
		err := tx.QueryRowContext(ctx, resolve, resolution.ResolverID, resolution.At, resolution.Notes, id).
			Scan(&contentType, &contentID, &entrantID)
		if err != nil {
			return mapErr(err)
		}
		if resolution.Action == models.FlagActionRemove {
			switch contentType {
			case models.FlagProfileField:
				if entrantID == nil {
					return storage.ErrNotFound
				}
				if err := updateProfileField(ctx, tx, *entrantID, models.ProfileField(contentID), nil); err != nil {
					return err
				}
			case models.FlagUpload:
				uploadID, err := strconv.ParseInt(contentID, 10, 64)
				if err != nil {
					return fmt.Errorf("flag %d: bad upload id %q", id, contentID)
				}
				if _, err := tx.ExecContext(ctx, `DELETE FROM uploads WHERE id = $1`, uploadID); err != nil {
					return err
				}
			}
		}
		return insertAudit(ctx, tx, entry)
	})
}

func scanFlag(row rowScanner) (models.FlaggedContent, error) {
	var f models.FlaggedContent
	if err := row.Scan(&f.ID, &f.ContentType, &f.ContentID, &f.EntrantID, &f.Reason, &f.ReportedBy, &f.Status,
		&f.ResolvedBy, &f.ResolvedAt, &f.AdminNotes, &f.ReportedAt); err != nil {
		return models.FlaggedContent{}, err
	}
	return f, nil
}
