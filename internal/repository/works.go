package repository

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
)

// selectWorks 中 $1 固定为查看者（志愿者）的 id，供应方查询时传 0
const selectWorks = `
	SELECT
		w.id,
		w.name,
		w.description,
		w.type,
		w.supplier_id,
		u.full_name,
		w.start_date,
		w.end_date,
		w.volunteers_needed,
		w.created_at,
		w.version,
		(SELECT COUNT(*) FROM postulations ap WHERE ap.work_id = w.id AND ap.status = 'ACCEPTED'),
		(SELECT COUNT(*) FROM postulations pp WHERE pp.work_id = w.id AND pp.status = 'PENDING'),
		vp.status,
		whb.id,
		to_char(whb.hour_block, 'HH24:MI:SS'),
		whb.week_day,
		t.name
	FROM works w
	JOIN users u ON u.id = w.supplier_id
	LEFT JOIN postulations vp ON vp.work_id = w.id AND vp.volunteer_id = $1
	LEFT JOIN work_hour_blocks whb ON whb.work_id = w.id
	LEFT JOIN work_tags wt ON wt.work_id = w.id
	LEFT JOIN tags t ON t.id = wt.tag_id
`

const orderWorks = `
	ORDER BY w.start_date, w.id, whb.hour_block, whb.week_day, t.name
`

func (r *Repository) queryWorks(ctx context.Context, where string, args ...any) ([]*domain.VolunteerWork, error) {
	rows, err := r.dbpool.QueryContext(ctx, selectWorks+where+orderWorks, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	works := make([]*domain.VolunteerWork, 0)
	worksMap := make(map[int64]*domain.VolunteerWork)
	blocksMap := make(map[int64]map[int64]bool) // workID -> hourBlockID
	tagsMap := make(map[int64]map[string]bool)  // workID -> tag name

	for rows.Next() {
		var row struct {
			Work domain.Work

			PostulationStatus sql.NullString
			HourBlockID       sql.NullInt64
			HourBlock         sql.NullString
			WeekDay           sql.NullInt32
			Tag               sql.NullString
		}

		dst := []any{
			&row.Work.ID,
			&row.Work.Name,
			&row.Work.Description,
			&row.Work.Type,
			&row.Work.SupplierID,
			&row.Work.SupplierName,
			&row.Work.StartDate,
			&row.Work.EndDate,
			&row.Work.VolunteersNeeded,
			&row.Work.CreatedAt,
			&row.Work.Version,
			&row.Work.AcceptedVolunteersCount,
			&row.Work.PendingPostulationsCount,
			&row.PostulationStatus,
			&row.HourBlockID,
			&row.HourBlock,
			&row.WeekDay,
			&row.Tag,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		work, exists := worksMap[row.Work.ID]
		if !exists {
			// 第一次查到这个工作
			work = &domain.VolunteerWork{Work: row.Work}
			work.Hours = []domain.WorkHourBlock{}
			work.Tags = []string{}
			if row.PostulationStatus.Valid {
				work.PostulationStatus = domain.PostulationStatus(row.PostulationStatus.String)
				work.IsPostulated = work.PostulationStatus != domain.PostulationStatusRejected
			}
			worksMap[work.ID] = work
			blocksMap[work.ID] = make(map[int64]bool)
			tagsMap[work.ID] = make(map[string]bool)
			works = append(works, work)
		}

		if row.HourBlockID.Valid && !blocksMap[work.ID][row.HourBlockID.Int64] {
			blocksMap[work.ID][row.HourBlockID.Int64] = true
			work.Hours = append(work.Hours, domain.WorkHourBlock{
				HourBlock: row.HourBlock.String,
				WeekDay:   int(row.WeekDay.Int32),
			})
		}

		if row.Tag.Valid && !tagsMap[work.ID][row.Tag.String] {
			tagsMap[work.ID][row.Tag.String] = true
			work.Tags = append(work.Tags, row.Tag.String)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return works, nil
}

func (r *Repository) GetWorkByID(id int64) (*domain.Work, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	works, err := r.queryWorks(ctx, `WHERE w.id = $2`, 0, id)
	if err != nil {
		return nil, err
	}
	if len(works) == 0 {
		return nil, sql.ErrNoRows
	}

	return &works[0].Work, nil
}

// GetSupplierWorks 返回供应方在 [from, to] 内有交集的工作
func (r *Repository) GetSupplierWorks(supplierID int64, from, to time.Time) ([]*domain.Work, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	where := `WHERE w.supplier_id = $2 AND w.start_date <= $4 AND w.end_date >= $3`
	rows, err := r.queryWorks(ctx, where, 0, supplierID, calendar.Day(from), calendar.Day(to))
	if err != nil {
		return nil, err
	}

	works := make([]*domain.Work, 0, len(rows))
	for _, w := range rows {
		works = append(works, &w.Work)
	}
	return works, nil
}

// GetVolunteerWorks 返回所有在 [from, to] 内有交集的工作，并带上该志愿者的申请状态
func (r *Repository) GetVolunteerWorks(volunteerID int64, from, to time.Time) ([]*domain.VolunteerWork, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	where := `WHERE w.start_date <= $3 AND w.end_date >= $2`
	return r.queryWorks(ctx, where, volunteerID, calendar.Day(from), calendar.Day(to))
}

// GetWorksByIDs 不保证返回顺序和 ids 一致
func (r *Repository) GetWorksByIDs(ids []int64) ([]*domain.Work, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.queryWorks(ctx, `WHERE w.id = ANY($2)`, 0, ids)
	if err != nil {
		return nil, err
	}

	works := make([]*domain.Work, 0, len(rows))
	for _, w := range rows {
		works = append(works, &w.Work)
	}
	return works, nil
}

func (r *Repository) CreateWork(work *domain.Work) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO works (supplier_id, name, description, type, start_date, end_date, volunteers_needed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, version
	`
	params := []any{work.SupplierID, work.Name, work.Description, work.Type, work.StartDate, work.EndDate, work.VolunteersNeeded}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&work.ID, &work.CreatedAt, &work.Version); err != nil {
		return err
	}

	if err := insertWorkDetails(ctx, tx, work); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateWork 在工作存在待处理或已接受的申请时返回 ErrWorkHasPostulations
func (r *Repository) UpdateWork(work *domain.Work) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	hasPostulations := false
	query := `
		SELECT EXISTS (
			SELECT 1 FROM postulations
			WHERE work_id = $1 AND status IN ('PENDING', 'ACCEPTED')
		)
	`
	if err := tx.QueryRowContext(ctx, query, work.ID).Scan(&hasPostulations); err != nil {
		return err
	}
	if hasPostulations {
		return ErrWorkHasPostulations
	}

	query = `
		UPDATE works
		SET
			name = $1,
			description = $2,
			type = $3,
			start_date = $4,
			end_date = $5,
			volunteers_needed = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`
	params := []any{work.Name, work.Description, work.Type, work.StartDate, work.EndDate, work.VolunteersNeeded, work.ID, work.Version}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&work.Version); err != nil {
		return err
	}

	// 小时块和标签直接整体替换
	if _, err := tx.ExecContext(ctx, `DELETE FROM work_hour_blocks WHERE work_id = $1`, work.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM work_tags WHERE work_id = $1`, work.ID); err != nil {
		return err
	}
	if err := insertWorkDetails(ctx, tx, work); err != nil {
		return err
	}

	return tx.Commit()
}

func insertWorkDetails(ctx context.Context, tx *sql.Tx, work *domain.Work) error {
	for _, block := range work.Hours {
		query := `
			INSERT INTO work_hour_blocks (work_id, hour_block, week_day)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, work.ID, block.HourBlock, block.WeekDay); err != nil {
			return err
		}
	}

	tagIDs, err := upsertTags(ctx, tx, work.Tags)
	if err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		query := `
			INSERT INTO work_tags (work_id, tag_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, query, work.ID, tagID); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repository) DeleteWork(id int64) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		DELETE FROM works WHERE id = $1
	`
	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

// GetVolunteerAcceptedWorks 返回志愿者所有的工作实例以及对应的工作
func (r *Repository) GetVolunteerAcceptedWorks(volunteerID int64) ([]*domain.AcceptedWork, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, work_id, volunteer_id, start_date, end_date, created_at
		FROM work_instances
		WHERE volunteer_id = $1
		ORDER BY start_date, id
	`
	rows, err := r.dbpool.QueryContext(ctx, query, volunteerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	instances := make([]domain.WorkInstance, 0)
	workIDs := make([]int64, 0)
	for rows.Next() {
		var instance domain.WorkInstance
		dst := []any{&instance.ID, &instance.WorkID, &instance.VolunteerID, &instance.StartDate, &instance.EndDate, &instance.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		instances = append(instances, instance)
		if !slices.Contains(workIDs, instance.WorkID) {
			workIDs = append(workIDs, instance.WorkID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(instances) == 0 {
		return []*domain.AcceptedWork{}, nil
	}

	works, err := r.queryWorks(ctx, `WHERE w.id = ANY($2)`, volunteerID, workIDs)
	if err != nil {
		return nil, err
	}
	worksMap := make(map[int64]*domain.Work, len(works))
	for _, w := range works {
		worksMap[w.ID] = &w.Work
	}

	accepted := make([]*domain.AcceptedWork, 0, len(instances))
	for _, instance := range instances {
		work, ok := worksMap[instance.WorkID]
		if !ok {
			return nil, fmt.Errorf("工作实例 %d 对应的工作 %d 不存在", instance.ID, instance.WorkID)
		}
		accepted = append(accepted, &domain.AcceptedWork{Instance: instance, Work: work})
	}

	return accepted, nil
}
