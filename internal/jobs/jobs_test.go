package jobs

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/config"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
)

type fakeExpirer struct {
	today   time.Time
	expired []*domain.Postulation
	err     error
}

func (f *fakeExpirer) ExpirePendingPostulations(today time.Time) ([]*domain.Postulation, error) {
	f.today = today
	return f.expired, f.err
}

type fakeCleaner struct {
	retention time.Duration
	calls     int
}

func (f *fakeCleaner) Clean(retention time.Duration) (int, error) {
	f.retention = retention
	f.calls++
	return 3, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Jobs.ExpirePostulationsSpec = "0 3 * * *"
	cfg.Jobs.CleanReportsSpec = "@hourly"
	cfg.Report.Retention = 24 * time.Hour
	return cfg
}

func TestNewSchedulerRejectsInvalidSpec(t *testing.T) {
	cfg := testConfig()
	cfg.Jobs.CleanReportsSpec = "every now and then"

	_, err := NewScheduler(cfg, &fakeExpirer{}, &fakeCleaner{}, nil)
	assert.Error(t, err)
}

func TestSchedulerUsesCalendarTimeZone(t *testing.T) {
	cfg := testConfig()
	cfg.Calendar.TimeZone = "Asia/Shanghai"

	expirer := &fakeExpirer{}
	s, err := NewScheduler(cfg, expirer, &fakeCleaner{}, nil)
	require.NoError(t, err)

	s.ExpirePostulations()
	assert.Equal(t, "Asia/Shanghai", expirer.today.Location().String())
	assert.Equal(t, "Asia/Shanghai", s.cron.Location().String())

	cfg.Calendar.TimeZone = "Mars/Olympus_Mons"
	_, err = NewScheduler(cfg, &fakeExpirer{}, &fakeCleaner{}, nil)
	assert.Error(t, err)
}

func TestExpirePostulationsNotifies(t *testing.T) {
	now := time.Date(2024, time.May, 10, 3, 0, 0, 0, time.UTC)
	expirer := &fakeExpirer{expired: []*domain.Postulation{{ID: 1}, {ID: 2}}}

	var notified []int64
	notify := func(p *domain.Postulation) error {
		notified = append(notified, p.ID)
		if p.ID == 1 {
			return errors.New("queue closed")
		}
		return nil
	}

	s, err := NewScheduler(testConfig(), expirer, &fakeCleaner{}, notify)
	require.NoError(t, err)
	s.now = func() time.Time { return now }

	s.ExpirePostulations()

	assert.Equal(t, now, expirer.today)
	assert.Equal(t, []int64{1, 2}, notified)
}

func TestExpirePostulationsError(t *testing.T) {
	expirer := &fakeExpirer{err: errors.New("db down"), expired: []*domain.Postulation{{ID: 1}}}
	called := false

	s, err := NewScheduler(testConfig(), expirer, &fakeCleaner{}, func(*domain.Postulation) error {
		called = true
		return nil
	})
	require.NoError(t, err)

	s.ExpirePostulations()
	assert.False(t, called)
}

func TestCleanReports(t *testing.T) {
	cleaner := &fakeCleaner{}

	s, err := NewScheduler(testConfig(), &fakeExpirer{}, cleaner, nil)
	require.NoError(t, err)

	s.CleanReports()
	assert.Equal(t, 1, cleaner.calls)
	assert.Equal(t, 24*time.Hour, cleaner.retention)
}
