package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/config"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
)

type PostulationExpirer interface {
	ExpirePendingPostulations(today time.Time) ([]*domain.Postulation, error)
}

type ReportCleaner interface {
	Clean(retention time.Duration) (int, error)
}

// Notifier 在申请被自动拒绝后通知志愿者
type Notifier func(p *domain.Postulation) error

type Scheduler struct {
	cron      *cron.Cron
	expirer   PostulationExpirer
	cleaner   ReportCleaner
	notify    Notifier
	retention time.Duration
	now       func() time.Time
}

func NewScheduler(cfg *config.Config, expirer PostulationExpirer, cleaner ReportCleaner, notify Notifier) (*Scheduler, error) {
	logger := slogLogger{}

	loc, err := cfg.Calendar.Location()
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		expirer:   expirer,
		cleaner:   cleaner,
		notify:    notify,
		retention: cfg.Report.Retention,
		now:       func() time.Time { return time.Now().In(loc) },
	}

	if _, err := s.cron.AddFunc(cfg.Jobs.ExpirePostulationsSpec, s.ExpirePostulations); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(cfg.Jobs.CleanReportsSpec, s.CleanReports); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度，返回的 context 在正在运行的任务结束后被取消
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// ExpirePostulations 拒绝结束日期已过但仍未处理的申请
func (s *Scheduler) ExpirePostulations() {
	expired, err := s.expirer.ExpirePendingPostulations(s.now())
	if err != nil {
		slog.Error("无法处理过期的申请", "error", err)
		return
	}

	for _, p := range expired {
		if s.notify == nil {
			break
		}
		if err := s.notify(p); err != nil {
			slog.Error("无法发送申请状态通知", "postulation_id", p.ID, "error", err)
		}
	}

	slog.Info("过期申请处理完成", "count", len(expired))
}

func (s *Scheduler) CleanReports() {
	removed, err := s.cleaner.Clean(s.retention)
	if err != nil {
		slog.Error("无法清理过期报表", "error", err)
		return
	}

	slog.Info("过期报表清理完成", "count", removed)
}

// slogLogger 把 cron 的日志转到 slog
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug(msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error(msg, append(keysAndValues, "error", err)...)
}
