package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
)

const selectSessions = `
	SELECT
		s.id,
		s.instance_id,
		w.id,
		w.name,
		w.supplier_id,
		su.full_name,
		wi.volunteer_id,
		vu.full_name,
		s.status,
		s.session_date,
		to_char(s.session_time, 'HH24:MI:SS'),
		s.session_week_day,
		s.version
	FROM work_sessions s
	JOIN work_instances wi ON wi.id = s.instance_id
	JOIN works w ON w.id = wi.work_id
	JOIN users su ON su.id = w.supplier_id
	JOIN users vu ON vu.id = wi.volunteer_id
`

func scanSession(scanner interface{ Scan(...any) error }) (*domain.WorkSession, error) {
	s := &domain.WorkSession{}
	dst := []any{
		&s.ID,
		&s.InstanceID,
		&s.WorkID,
		&s.WorkName,
		&s.SupplierID,
		&s.SupplierName,
		&s.VolunteerID,
		&s.VolunteerName,
		&s.Status,
		&s.SessionDate,
		&s.SessionTime,
		&s.SessionWeekDay,
		&s.Version,
	}
	if err := scanner.Scan(dst...); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Repository) querySessions(ctx context.Context, where string, args ...any) ([]*domain.WorkSession, error) {
	rows, err := r.dbpool.QueryContext(ctx, selectSessions+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]*domain.WorkSession, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *Repository) GetWorkSessionByID(id int64) (*domain.WorkSession, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	return scanSession(r.dbpool.QueryRowContext(ctx, selectSessions+`WHERE s.id = $1`, id))
}

func (r *Repository) GetWorkSessions(workID int64) ([]*domain.WorkSession, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	where := `
		WHERE w.id = $1
		ORDER BY s.session_date, s.session_time, s.id
	`
	return r.querySessions(ctx, where, workID)
}

func (r *Repository) GetVolunteerSessions(volunteerID int64, from, to time.Time) ([]*domain.WorkSession, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	where := `
		WHERE wi.volunteer_id = $1 AND s.session_date BETWEEN $2 AND $3
		ORDER BY s.session_date, s.session_time, s.id
	`
	return r.querySessions(ctx, where, volunteerID, calendar.Day(from), calendar.Day(to))
}

func (r *Repository) UpdateWorkSessionStatus(s *domain.WorkSession) error {
	query := `
		UPDATE work_sessions
		SET status = $1, version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, s.Status, s.ID, s.Version).Scan(&s.Version); err != nil {
		return err
	}

	return nil
}

// GetSessionsInRange 返回 [from, to] 内的出勤记录，过滤条件和 GetPostulationsInRange 相同，
// volunteerID 不为 0 时只返回该志愿者的出勤
func (r *Repository) GetSessionsInRange(supplierID, volunteerID int64, userIDs []int64, from, to time.Time) ([]*domain.WorkSession, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	where := `
		WHERE s.session_date BETWEEN $1 AND $2
			AND ($3::BIGINT = 0 OR w.supplier_id = $3)
			AND ($4::BIGINT = 0 OR wi.volunteer_id = $4)
			AND (cardinality($5::BIGINT[]) = 0 OR wi.volunteer_id = ANY($5) OR w.supplier_id = ANY($5))
		ORDER BY s.session_date, s.session_time, s.id
	`
	if userIDs == nil {
		userIDs = []int64{}
	}
	return r.querySessions(ctx, where, calendar.Day(from), calendar.Day(to), supplierID, volunteerID, userIDs)
}
