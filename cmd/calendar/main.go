package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendarview"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/client"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/config"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/tui"
)

func main() {
	var view string
	var preferred bool
	var month bool
	var date string

	flag.StringVar(&view, "view", "works", "志愿者查看的日历 (works: 可申请的工作, sessions: 我的出勤)")
	flag.BoolVar(&preferred, "preferred", false, "只显示符合偏好的工作")
	flag.BoolVar(&month, "month", false, "以月视图启动")
	flag.StringVar(&date, "date", "", "初始日期，格式为 DD-MM-YYYY，默认为今天")
	flag.Parse()

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadClientConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "无法读取配置文件:", err)
		os.Exit(1)
	}

	/**********************************************
	 * 日志写到文件，避免打乱终端界面
	 **********************************************/
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintln(os.Stderr, "无法打开日志文件:", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewTextHandler(logFile, nil))
	slog.SetDefault(logger)

	if err := run(cfg, logger, view, preferred, month, date); err != nil {
		logger.Error("日历客户端异常退出", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg *config.ClientConfig, logger *slog.Logger, view string, preferred, month bool, date string) error {
	ref := time.Now()
	if date != "" {
		var err error
		if ref, err = calendar.ParseDate(date); err != nil {
			return fmt.Errorf("日期 %q 格式错误，应为 DD-MM-YYYY", date)
		}
	}

	hours, err := cfg.Calendar.HourRange()
	if err != nil {
		return err
	}
	viewOpts := calendarview.Options{
		WeekStart:    cfg.Calendar.WeekStart,
		Hours:        hours,
		TrackPending: true,
	}

	mode := calendarview.ModeWeek
	if month {
		mode = calendarview.ModeMonth
	}

	/**********************************************
	 * 登录
	 **********************************************/
	c, err := client.New(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	user, err := c.Login(ctx, cfg.Username, cfg.Password)
	if err != nil {
		return fmt.Errorf("登录失败: %w", err)
	}
	logger.Info("登录成功", "username", user.Username, "role", user.Role)

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		if err := c.Logout(ctx); err != nil {
			logger.Error("登出失败", "error", err)
		}
	}()

	/**********************************************
	 * 根据角色选择日历
	 **********************************************/
	var model tea.Model
	switch {
	case user.Role == domain.RoleSupplier:
		model = tui.New[*domain.Work](c.SupplierWorksFetcher(), tui.Options[*domain.Work]{
			Title:   user.FullName + " 发布的工作",
			Ref:     ref,
			Mode:    mode,
			View:    viewOpts,
			Label:   func(w *domain.Work) string { return w.Name },
			Timeout: cfg.Timeout,
			Logger:  logger,
		})
	case user.Role == domain.RoleVolunteer && view == "sessions":
		model = tui.New[*domain.WorkSession](c.VolunteerSessionsFetcher(), tui.Options[*domain.WorkSession]{
			Title:   user.FullName + " 的出勤",
			Ref:     ref,
			Mode:    mode,
			View:    viewOpts,
			Label:   func(s *domain.WorkSession) string { return s.WorkName },
			Timeout: cfg.Timeout,
			Logger:  logger,
		})
	case user.Role == domain.RoleVolunteer:
		title := "可申请的工作"
		if preferred {
			title = "符合偏好的工作"
		}
		model = tui.New[*domain.VolunteerWork](c.VolunteerWorksFetcher(preferred), tui.Options[*domain.VolunteerWork]{
			Title: title,
			Ref:   ref,
			Mode:  mode,
			View:  viewOpts,
			Label: func(w *domain.VolunteerWork) string {
				if w.IsPostulated {
					return "✓ " + w.Name
				}
				return w.Name
			},
			Timeout: cfg.Timeout,
			Logger:  logger,
		})
	default:
		return fmt.Errorf("角色 %s 没有日历", user.Role)
	}

	prog := tea.NewProgram(model, tea.WithAltScreen())
	_, err = prog.Run()
	return err
}
