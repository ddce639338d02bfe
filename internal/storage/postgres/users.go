package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hongminglow/lateral-entry-be/internal/models"
)

const userColumns = `u.id, u.google_id, u.email, u.name, u.role, u.is_approved, u.is_active, u.entrant_id, u.picture_url, u.last_login, u.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	return createUser(ctx, s.db, user)
}

func createUser(ctx context.Context, q queryer, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users AS u (google_id, email, name, role, is_approved, is_active, entrant_id, picture_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns
	row := q.QueryRowContext(ctx, query,
		user.GoogleID, user.Email, user.Name, user.Role, user.IsApproved, user.IsActive, user.EntrantID, user.PictureURL)
	created, err := scanUser(row)
	if err != nil {
		return models.User{}, mapErr(err)
	}
	return created, nil
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id)
	user, err := scanUser(row)
	return user, mapErr(err)
}

// FindUserByGoogleID fetches a user by OAuth subject.
func (s *Store) FindUserByGoogleID(ctx context.Context, googleID string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users u WHERE u.google_id = $1`, googleID)
	user, err := scanUser(row)
	return user, mapErr(err)
}

// ListUsers pages through users joined with their profile name.
func (s *Store) ListUsers(ctx context.Context, q models.UserQuery) ([]models.UserListItem, int64, error) {
	where := ""
	args := []any{}
	if strings.TrimSpace(q.Search) != "" {
		where = "WHERE u.name ILIKE $1 OR u.email ILIKE $1"
		args = append(args, likePattern(q.Search))
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users u `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	limit, offset := limitOffset(q.Page, q.PerPage)
	query := fmt.Sprintf(`
		SELECT %s, le.name
		FROM users u
		LEFT JOIN lateral_entrants le ON u.entrant_id = le.id
		%s
		ORDER BY u.created_at DESC, u.id DESC
		LIMIT $%d OFFSET $%d`, userColumns, where, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []models.UserListItem
	for rows.Next() {
		var item models.UserListItem
		u := &item.User
		if err := rows.Scan(&u.ID, &u.GoogleID, &u.Email, &u.Name, &u.Role, &u.IsApproved, &u.IsActive,
			&u.EntrantID, &u.PictureURL, &u.LastLogin, &u.CreatedAt, &item.EntrantName); err != nil {
			return nil, 0, err
		}
		out = append(out, item)
	}
	return out, total, rows.Err()
}

// UpdateUser applies the non-nil attributes of patch.
func (s *Store) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (models.User, error) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Role != nil {
		add("role", *patch.Role)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}
	if patch.ClearEntrantID {
		sets = append(sets, "entrant_id = NULL")
	} else if patch.EntrantID != nil {
		add("entrant_id", *patch.EntrantID)
	}
	if len(sets) == 0 {
		return s.GetUser(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users AS u SET %s WHERE u.id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)
	user, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	return user, mapErr(err)
}

// DeleteUser removes a user; sessions cascade.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return expectOne(s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id))
}

// TouchLastLogin records a successful login time.
func (s *Store) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return expectOne(s.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id))
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.GoogleID, &u.Email, &u.Name, &u.Role, &u.IsApproved, &u.IsActive,
		&u.EntrantID, &u.PictureURL, &u.LastLogin, &u.CreatedAt); err != nil {
		return models.User{}, err
	}
	return u, nil
}

const pendingColumns = `id, google_id, email, name, picture_url, ip_address, user_agent, requested_at`

// CreatePendingUser records an access request.
func (s *Store) CreatePendingUser(ctx context.Context, p models.PendingUser) (models.PendingUser, error) {
	const query = `
		INSERT INTO pending_users (google_id, email, name, picture_url, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + pendingColumns
	created, err := scanPending(s.db.QueryRowContext(ctx, query,
		p.GoogleID, p.Email, p.Name, p.PictureURL, p.IPAddress, p.UserAgent))
	return created, mapErr(err)
}

// GetPendingUser fetches an access request by id.
func (s *Store) GetPendingUser(ctx context.Context, id int64) (models.PendingUser, error) {
	p, err := scanPending(s.db.QueryRowContext(ctx, `SELECT `+pendingColumns+` FROM pending_users WHERE id = $1`, id))
	return p, mapErr(err)
}

// FindPendingByGoogleID fetches an access request by OAuth subject.
func (s *Store) FindPendingByGoogleID(ctx context.Context, googleID string) (models.PendingUser, error) {
	p, err := scanPending(s.db.QueryRowContext(ctx, `SELECT `+pendingColumns+` FROM pending_users WHERE google_id = $1`, googleID))
	return p, mapErr(err)
}

// ListPendingUsers returns every open access request, newest first.
func (s *Store) ListPendingUsers(ctx context.Context) ([]models.PendingUser, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+pendingColumns+` FROM pending_users ORDER BY requested_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list pending users: %w", err)
	}
	defer rows.Close()

	var out []models.PendingUser
	for rows.Next() {
		p, err := scanPending(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ApprovePendingUser converts an access request into a user.
func (s *Store) ApprovePendingUser(ctx context.Context, pendingID int64, user models.User, entry models.AuditEntry) (models.User, error) {
	var created models.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := expectOne(tx.ExecContext(ctx, `DELETE FROM pending_users WHERE id = $1`, pendingID)); err != nil {
			return err
		}
		var err error
		created, err = createUser(ctx, tx, user)
		if err != nil {
			return err
		}
		entry.EntityID = strconv.FormatInt(created.ID, 10)
		return insertAudit(ctx, tx, entry)
	})
	if err != nil {
		return models.User{}, err
	}
	return created, nil
}

// RejectPendingUser discards an access request.
func (s *Store) RejectPendingUser(ctx context.Context, pendingID int64, entry models.AuditEntry) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := expectOne(tx.ExecContext(ctx, `DELETE FROM pending_users WHERE id = $1`, pendingID)); err != nil {
			return err
		}
		return insertAudit(ctx, tx, entry)
	})
}

func scanPending(row rowScanner) (models.PendingUser, error) {
	var p models.PendingUser
	if err := row.Scan(&p.ID, &p.GoogleID, &p.Email, &p.Name, &p.PictureURL, &p.IPAddress, &p.UserAgent, &p.RequestedAt); err != nil {
		return models.PendingUser{}, err
	}
	return p, nil
}

// CreateSession persists a new session row.
func (s *Store) CreateSession(ctx context.Context, session models.Session) error {
	const query = `
		INSERT INTO sessions (id, user_id, access_token, refresh_token, ip_address, user_agent, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.db.ExecContext(ctx, query, session.ID, session.UserID, session.AccessToken, session.RefreshToken,
		session.IPAddress, session.UserAgent, session.CreatedAt, session.ExpiresAt)
	return mapErr(err)
}

// FindSession loads a session joined with its user, expired or not.
func (s *Store) FindSession(ctx context.Context, id string) (models.SessionWithUser, error) {
	const query = `
		SELECT s.id, s.user_id, s.access_token, s.refresh_token, s.ip_address, s.user_agent, s.created_at, s.expires_at,
		` + userColumns + `
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.id = $1`
	var out models.SessionWithUser
	ss, u := &out.Session, &out.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&ss.ID, &ss.UserID, &ss.AccessToken, &ss.RefreshToken, &ss.IPAddress, &ss.UserAgent, &ss.CreatedAt, &ss.ExpiresAt,
		&u.ID, &u.GoogleID, &u.Email, &u.Name, &u.Role, &u.IsApproved, &u.IsActive, &u.EntrantID, &u.PictureURL, &u.LastLogin, &u.CreatedAt,
	)
	if err != nil {
		return models.SessionWithUser{}, mapErr(err)
	}
	return out, nil
}

// UpdateSessionAccessToken replaces the stored access token ciphertext.
func (s *Store) UpdateSessionAccessToken(ctx context.Context, id, accessToken string) error {
	return expectOne(s.db.ExecContext(ctx, `UPDATE sessions SET access_token = $1 WHERE id = $2`, accessToken, id))
}

// DeleteSession removes a session; absent ids are not an error.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteUserSessions removes every session of a user.
func (s *Store) DeleteUserSessions(ctx context.Context, userID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteExpiredSessions removes sessions whose expiry is not after now.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListUserSessions returns a user's unexpired sessions, newest first.
func (s *Store) ListUserSessions(ctx context.Context, userID int64, now time.Time) ([]models.Session, error) {
	const query = `
		SELECT id, user_id, ip_address, user_agent, created_at, expires_at
		FROM sessions
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []models.Session
	for rows.Next() {
		var ss models.Session
		if err := rows.Scan(&ss.ID, &ss.UserID, &ss.IPAddress, &ss.UserAgent, &ss.CreatedAt, &ss.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}
