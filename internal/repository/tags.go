package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
)

func (r *Repository) GetAllTags() ([]*domain.Tag, error) {
	query := `
		SELECT id, name FROM tags ORDER BY name
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make([]*domain.Tag, 0)
	for rows.Next() {
		tag := &domain.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tags, nil
}

// upsertTags 按名字查找标签，不存在时自动创建，返回去重后的 id
func upsertTags(ctx context.Context, tx *sql.Tx, names []string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		// DO UPDATE 使得已存在的标签也能返回 id
		query := `
			INSERT INTO tags (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`
		var id int64
		if err := tx.QueryRowContext(ctx, query, name).Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}
