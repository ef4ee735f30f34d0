package repository

import (
	"database/sql"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
)

func (r *Repository) GetUserByID(id int64) (*domain.User, error) {
	query := `
		SELECT username, password_hash, full_name, email, role, is_suspended, created_at, version
		FROM users WHERE id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	user := &domain.User{
		ID: id,
	}

	dst := []any{&user.Username, &user.PasswordHash, &user.FullName, &user.Email, &user.Role, &user.IsSuspended, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) GetUserByUsername(username string) (*domain.User, error) {
	query := `
		SELECT id, password_hash, full_name, email, role, is_suspended, created_at, version
		FROM users WHERE username = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	user := &domain.User{
		Username: username,
	}

	dst := []any{&user.ID, &user.PasswordHash, &user.FullName, &user.Email, &user.Role, &user.IsSuspended, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, username).Scan(dst...); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) UpdateUser(user *domain.User) error {
	query := `
		UPDATE users
		SET
			password_hash = $1,
			full_name = $2,
			email = $3,
			is_suspended = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING username, role, created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{user.PasswordHash, user.FullName, user.Email, user.IsSuspended, user.ID, user.Version}
	dst := []any{&user.Username, &user.Role, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

// GetUsers 返回所有用户，role 为空时不按角色过滤
func (r *Repository) GetUsers(role domain.Role) ([]*domain.User, error) {
	query := `
		SELECT id, username, password_hash, full_name, email, role, is_suspended, created_at, version
		FROM users
		WHERE $1::TEXT = '' OR role = $1
		ORDER BY id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{}
		dst := []any{&user.ID, &user.Username, &user.PasswordHash, &user.FullName, &user.Email, &user.Role, &user.IsSuspended, &user.CreatedAt, &user.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *Repository) DeleteUser(id int64) error {
	query := `
		DELETE FROM users WHERE id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

func (r *Repository) CreateUser(user *domain.User) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO users (username, password_hash, full_name, email, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_suspended, created_at, version
	`

	args := []any{user.Username, user.PasswordHash, user.FullName, user.Email, user.Role}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.IsSuspended, &user.CreatedAt, &user.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CheckEmailIfExists(email string) (bool, error) {
	isExists := false

	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)
	`
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(&isExists); err != nil {
		return false, err
	}

	return isExists, nil
}

func (r *Repository) GetUserPreferences(userID int64) (*domain.UserPreferences, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	prefs := &domain.UserPreferences{
		HourBlocks: []domain.WorkHourBlock{},
		Tags:       []string{},
	}

	query := `
		SELECT to_char(hour_block, 'HH24:MI:SS'), week_day
		FROM user_hour_blocks
		WHERE user_id = $1
		ORDER BY week_day, hour_block
	`
	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var block domain.WorkHourBlock
		if err := rows.Scan(&block.HourBlock, &block.WeekDay); err != nil {
			return nil, err
		}
		prefs.HourBlocks = append(prefs.HourBlocks, block)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	query = `
		SELECT t.name
		FROM user_tags ut
		JOIN tags t ON t.id = ut.tag_id
		WHERE ut.user_id = $1
		ORDER BY t.name
	`
	tagRows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var name string
		if err := tagRows.Scan(&name); err != nil {
			return nil, err
		}
		prefs.Tags = append(prefs.Tags, name)
	}
	if err := tagRows.Err(); err != nil {
		return nil, err
	}

	return prefs, nil
}

// ReplaceUserPreferences 用新的偏好整体替换旧的偏好
func (r *Repository) ReplaceUserPreferences(userID int64, prefs *domain.UserPreferences) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_hour_blocks WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM user_tags WHERE user_id = $1`, userID); err != nil {
		return err
	}

	for _, block := range prefs.HourBlocks {
		query := `
			INSERT INTO user_hour_blocks (user_id, hour_block, week_day)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, userID, block.HourBlock, block.WeekDay); err != nil {
			return err
		}
	}

	tagIDs, err := upsertTags(ctx, tx, prefs.Tags)
	if err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		query := `
			INSERT INTO user_tags (user_id, tag_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, query, userID, tagID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetUsersByIDs 返回 ids 对应的用户，不存在的 id 会被忽略
func (r *Repository) GetUsersByIDs(ids []int64) ([]*domain.User, error) {
	query := `
		SELECT id, username, full_name, email, role, is_suspended, created_at, version
		FROM users
		WHERE id = ANY($1)
		ORDER BY id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0, len(ids))
	for rows.Next() {
		user := &domain.User{}
		dst := []any{&user.ID, &user.Username, &user.FullName, &user.Email, &user.Role, &user.IsSuspended, &user.CreatedAt, &user.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(users) == 0 && len(ids) > 0 {
		return nil, sql.ErrNoRows
	}

	return users, nil
}
