package main

import (
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/config"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/platform"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/repository"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/seed"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/utils"
)

func main() {
	var op int
	var n int
	var month string
	var file string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机志愿者, 2: 插入随机供应方, 3: 插入随机工作, 4: 插入随机申请, 5: 从 CSV 导入工作)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.StringVar(&month, "month", "", "随机工作和申请所在的月份，格式为 DD-MM-YYYY 中任意一天，默认为本月")
	flag.StringVar(&file, "file", "./internal/seed/data/works.csv", "要导入的 CSV 文件")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ref := time.Now()
	if month != "" {
		ref, err = calendar.ParseDate(month)
		if err != nil {
			logger.Error("月份格式错误", "month", month)
			os.Exit(1)
		}
	}

	db, err := platform.OpenDatabase(cfg)
	if err != nil {
		logger.Error("无法连接到数据库", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := repository.NewRepository(cfg, db)

	if n <= 0 {
		slog.Error("请输入合法的记录数量")
		return
	}

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		seedUsers(repo, cfg, domain.RoleVolunteer, n)
	case 2:
		seedUsers(repo, cfg, domain.RoleSupplier, n)
	case 3:
		suppliers, err := repo.GetUsers(domain.RoleSupplier)
		if err != nil {
			slog.Error("无法获取供应方", slog.String("error", err.Error()))
			return
		}
		if len(suppliers) == 0 {
			slog.Error("没有供应方，请先插入供应方")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			// 随机选一个供应方
			supplier := suppliers[rand.Intn(len(suppliers))]

			work := utils.GenerateRandomWork(supplier.ID, ref, cfg.Calendar.Allowed())
			if err := repo.CreateWork(work); err != nil {
				slog.Error("无法插入工作", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入工作成功", slog.Int("count", cnt))
	case 4:
		cnt, err := seed.RandomPostulations(repo, ref, n)
		if err != nil {
			slog.Error("无法插入申请", slog.String("error", err.Error()))
		}
		slog.Info("插入申请成功", slog.Int("count", cnt))
	case 5:
		cnt, err := seed.ImportWorks(repo, file, cfg.Seed.User.Password, cfg.Calendar.Allowed())
		if err != nil {
			slog.Error("无法导入工作", slog.String("error", err.Error()))
			return
		}
		slog.Info("导入工作成功", slog.Int("count", cnt))
	default:
		slog.Error("指定的操作非法")
	}
}

func seedUsers(repo *repository.Repository, cfg *config.Config, role domain.Role, n int) {
	cnt := 0
	for i := 0; i < n; i++ {
		user, err := utils.GenerateRandomUser(role, cfg.Seed.User.Password, cfg.Email.UserDomain)
		if err != nil {
			slog.Error("无法生成随机用户", slog.String("error", err.Error()))
			continue
		}

		if err := repo.CreateUser(user); err != nil {
			slog.Error("无法插入用户", slog.String("error", err.Error()))
			continue
		}

		cnt++
	}

	slog.Info("插入用户成功", slog.String("role", string(role)), slog.Int("count", cnt))
}
