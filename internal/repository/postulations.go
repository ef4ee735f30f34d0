package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
)

const selectPostulations = `
	SELECT
		p.id,
		p.work_id,
		w.name,
		p.volunteer_id,
		u.full_name,
		u.username,
		u.email,
		p.status,
		p.start_date,
		p.end_date,
		p.created_at,
		p.version
	FROM postulations p
	JOIN works w ON w.id = p.work_id
	JOIN users u ON u.id = p.volunteer_id
`

func scanPostulation(scanner interface{ Scan(...any) error }) (*domain.Postulation, error) {
	p := &domain.Postulation{}
	dst := []any{
		&p.ID,
		&p.WorkID,
		&p.WorkName,
		&p.VolunteerID,
		&p.VolunteerName,
		&p.VolunteerUsername,
		&p.VolunteerEmail,
		&p.Status,
		&p.StartDate,
		&p.EndDate,
		&p.CreatedAt,
		&p.Version,
	}
	if err := scanner.Scan(dst...); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) queryPostulations(ctx context.Context, where string, args ...any) ([]*domain.Postulation, error) {
	rows, err := r.dbpool.QueryContext(ctx, selectPostulations+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	postulations := make([]*domain.Postulation, 0)
	for rows.Next() {
		p, err := scanPostulation(rows)
		if err != nil {
			return nil, err
		}
		postulations = append(postulations, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return postulations, nil
}

func (r *Repository) GetPostulationByID(id int64) (*domain.Postulation, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	return scanPostulation(r.dbpool.QueryRowContext(ctx, selectPostulations+`WHERE p.id = $1`, id))
}

// GetVolunteerPostulations 分页返回志愿者的申请以及申请的总数
func (r *Repository) GetVolunteerPostulations(volunteerID int64, limit, offset int) ([]*domain.Postulation, int, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	total := 0
	query := `SELECT COUNT(*) FROM postulations WHERE volunteer_id = $1`
	if err := r.dbpool.QueryRowContext(ctx, query, volunteerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	where := `
		WHERE p.volunteer_id = $1
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3
	`
	postulations, err := r.queryPostulations(ctx, where, volunteerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return postulations, total, nil
}

// GetWorkPostulations 返回工作的申请，status 为空时返回全部
func (r *Repository) GetWorkPostulations(workID int64, status domain.PostulationStatus) ([]*domain.Postulation, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	where := `
		WHERE p.work_id = $1 AND ($2::TEXT = '' OR p.status = $2)
		ORDER BY p.created_at, p.id
	`
	return r.queryPostulations(ctx, where, workID, string(status))
}

func (r *Repository) GetSupplierPendingPostulations(supplierID int64) ([]*domain.Postulation, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	where := `
		WHERE w.supplier_id = $1 AND p.status = 'PENDING'
		ORDER BY p.created_at, p.id
	`
	return r.queryPostulations(ctx, where, supplierID)
}

// GetActivePostulations 返回志愿者待处理和已接受的申请以及对应工作的小时块
func (r *Repository) GetActivePostulations(volunteerID int64) ([]domain.ActivePostulation, error) {
	query := `
		SELECT
			p.id,
			p.work_id,
			w.type,
			p.start_date,
			p.end_date,
			to_char(whb.hour_block, 'HH24:MI:SS'),
			whb.week_day
		FROM postulations p
		JOIN works w ON w.id = p.work_id
		LEFT JOIN work_hour_blocks whb ON whb.work_id = w.id
		WHERE p.volunteer_id = $1 AND p.status IN ('PENDING', 'ACCEPTED')
		ORDER BY p.id, whb.hour_block, whb.week_day
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, volunteerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	active := make([]domain.ActivePostulation, 0)
	indexMap := make(map[int64]int) // postulationID -> index in active

	for rows.Next() {
		var row struct {
			Postulation domain.ActivePostulation
			HourBlock   sql.NullString
			WeekDay     sql.NullInt32
		}

		dst := []any{
			&row.Postulation.PostulationID,
			&row.Postulation.WorkID,
			&row.Postulation.WorkType,
			&row.Postulation.StartDate,
			&row.Postulation.EndDate,
			&row.HourBlock,
			&row.WeekDay,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		i, exists := indexMap[row.Postulation.PostulationID]
		if !exists {
			i = len(active)
			indexMap[row.Postulation.PostulationID] = i
			active = append(active, row.Postulation)
		}

		if row.HourBlock.Valid {
			active[i].Hours = append(active[i].Hours, domain.WorkHourBlock{
				HourBlock: row.HourBlock.String,
				WeekDay:   int(row.WeekDay.Int32),
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return active, nil
}

// CreatePostulation 新建申请；如果之前的申请被拒绝，则重新打开原来那条申请。
// 已经存在待处理或已接受的申请时返回 sql.ErrNoRows
func (r *Repository) CreatePostulation(p *domain.Postulation) error {
	query := `
		INSERT INTO postulations (work_id, volunteer_id, start_date, end_date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (work_id, volunteer_id) DO UPDATE
		SET
			status = 'PENDING',
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			created_at = NOW(),
			version = postulations.version + 1
		WHERE postulations.status = 'REJECTED'
		RETURNING id, status, created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	params := []any{p.WorkID, p.VolunteerID, p.StartDate, p.EndDate}
	dst := []any{&p.ID, &p.Status, &p.CreatedAt, &p.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

// UpdatePostulationDates 只允许修改待处理的申请
func (r *Repository) UpdatePostulationDates(p *domain.Postulation) error {
	query := `
		UPDATE postulations
		SET
			start_date = $1,
			end_date = $2,
			version = version + 1
		WHERE id = $3 AND version = $4 AND status = 'PENDING'
		RETURNING version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, p.StartDate, p.EndDate, p.ID, p.Version).Scan(&p.Version); err != nil {
		return err
	}

	return nil
}

// DeletePostulation 只允许删除待处理的申请，申请不存在或已被处理时返回 sql.ErrNoRows
func (r *Repository) DeletePostulation(id int64) error {
	query := `
		DELETE FROM postulations WHERE id = $1 AND status = 'PENDING'
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *Repository) RejectPostulation(p *domain.Postulation) error {
	query := `
		UPDATE postulations
		SET status = 'REJECTED', version = version + 1
		WHERE id = $1 AND version = $2 AND status = 'PENDING'
		RETURNING status, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, p.ID, p.Version).Scan(&p.Status, &p.Version); err != nil {
		return err
	}

	return nil
}

// AcceptPostulation 接受申请并生成工作实例和出勤记录。
// 如果这次接受使工作招满，其余待处理的申请会被拒绝并返回，用于发送通知邮件
func (r *Repository) AcceptPostulation(p *domain.Postulation, sessions []domain.WorkSession) ([]*domain.Postulation, error) {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 锁住工作，避免并发接受导致超额
	var needed int32
	query := `SELECT volunteers_needed FROM works WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, query, p.WorkID).Scan(&needed); err != nil {
		return nil, err
	}

	var accepted int32
	query = `SELECT COUNT(*) FROM postulations WHERE work_id = $1 AND status = 'ACCEPTED'`
	if err := tx.QueryRowContext(ctx, query, p.WorkID).Scan(&accepted); err != nil {
		return nil, err
	}
	if accepted >= needed {
		return nil, ErrWorkFull
	}

	query = `
		UPDATE postulations
		SET status = 'ACCEPTED', version = version + 1
		WHERE id = $1 AND version = $2 AND status = 'PENDING'
		RETURNING status, version
	`
	if err := tx.QueryRowContext(ctx, query, p.ID, p.Version).Scan(&p.Status, &p.Version); err != nil {
		return nil, err
	}

	var instanceID int64
	query = `
		INSERT INTO work_instances (work_id, volunteer_id, start_date, end_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	if err := tx.QueryRowContext(ctx, query, p.WorkID, p.VolunteerID, p.StartDate, p.EndDate).Scan(&instanceID); err != nil {
		return nil, err
	}

	for i := range sessions {
		sessions[i].InstanceID = instanceID
		query := `
			INSERT INTO work_sessions (instance_id, status, session_date, session_time, session_week_day)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, version
		`
		params := []any{instanceID, sessions[i].Status, sessions[i].SessionDate, sessions[i].SessionTime, sessions[i].SessionWeekDay}
		if err := tx.QueryRowContext(ctx, query, params...).Scan(&sessions[i].ID, &sessions[i].Version); err != nil {
			return nil, err
		}
	}

	rejected := make([]*domain.Postulation, 0)
	if accepted+1 == needed {
		query = `
			UPDATE postulations p
			SET status = 'REJECTED', version = p.version + 1
			FROM users u, works w
			WHERE u.id = p.volunteer_id AND w.id = p.work_id AND p.work_id = $1 AND p.status = 'PENDING'
			RETURNING p.id, p.work_id, w.name, p.volunteer_id, u.full_name, u.username, u.email, p.status, p.start_date, p.end_date, p.created_at, p.version
		`
		rows, err := tx.QueryContext(ctx, query, p.WorkID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		for rows.Next() {
			rp, err := scanPostulation(rows)
			if err != nil {
				return nil, err
			}
			rejected = append(rejected, rp)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return rejected, nil
}

// ExpirePendingPostulations 拒绝所有结束日期早于 today 仍未处理的申请
func (r *Repository) ExpirePendingPostulations(today time.Time) ([]*domain.Postulation, error) {
	query := `
		UPDATE postulations p
		SET status = 'REJECTED', version = p.version + 1
		FROM users u, works w
		WHERE u.id = p.volunteer_id AND w.id = p.work_id AND p.status = 'PENDING' AND p.end_date < $1
		RETURNING p.id, p.work_id, w.name, p.volunteer_id, u.full_name, u.username, u.email, p.status, p.start_date, p.end_date, p.created_at, p.version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, calendar.Day(today))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expired := make([]*domain.Postulation, 0)
	for rows.Next() {
		p, err := scanPostulation(rows)
		if err != nil {
			return nil, err
		}
		expired = append(expired, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return expired, nil
}

// GetPostulationsInRange 返回和 [from, to] 有交集的申请。
// supplierID 不为 0 时只返回该供应方的工作的申请，userIDs 不为空时只返回涉及这些用户（志愿者或供应方）的申请
func (r *Repository) GetPostulationsInRange(supplierID int64, userIDs []int64, from, to time.Time) ([]*domain.Postulation, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	where := `
		WHERE p.start_date <= $2 AND p.end_date >= $1
			AND ($3::BIGINT = 0 OR w.supplier_id = $3)
			AND (cardinality($4::BIGINT[]) = 0 OR p.volunteer_id = ANY($4) OR w.supplier_id = ANY($4))
		ORDER BY p.start_date, p.id
	`
	if userIDs == nil {
		userIDs = []int64{}
	}
	return r.queryPostulations(ctx, where, calendar.Day(from), calendar.Day(to), supplierID, userIDs)
}
