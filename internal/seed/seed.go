package seed

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/repository"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// 导入工作的 CSV 必须包含的列
var workHeaders = []string{"供应方", "姓名", "邮箱", "名称", "描述", "类型", "开始日期", "结束日期", "所需人数", "标签", "小时块"}

// WorkRecord 是 CSV 中的一行，小时块写作 "09:00:00"（单次工作）或 "1@09:00:00"（周期性工作，星期在前）
type WorkRecord struct {
	SupplierUsername string
	SupplierName     string
	SupplierEmail    string
	Work             *domain.Work
}

// ParseWorksCSV 读取所有工作记录，格式错误的行会被跳过并记录日志
func ParseWorksCSV(reader io.Reader) ([]WorkRecord, error) {
	r := csv.NewReader(reader)

	headers, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimPrefix(strings.TrimSpace(headers[i]), "\ufeff")
	}
	for _, h := range workHeaders {
		if !slices.Contains(headers, h) {
			return nil, fmt.Errorf("没有找到 %s 列", h)
		}
	}

	records := make([]WorkRecord, 0)
	for line := 2; ; line++ {
		row, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		record := make(map[string]string, len(row))
		for i, value := range row {
			record[headers[i]] = strings.TrimSpace(value)
		}

		wr, err := parseWorkRecord(record)
		if err != nil {
			slog.Error("跳过格式错误的行", "line", line, "error", err)
			continue
		}
		records = append(records, wr)
	}

	return records, nil
}

func parseWorkRecord(record map[string]string) (WorkRecord, error) {
	if record["供应方"] == "" {
		return WorkRecord{}, errors.New("供应方不能为空")
	}

	work := &domain.Work{
		Name:        record["名称"],
		Description: record["描述"],
		Type:        calendar.WorkType(record["类型"]),
		Tags:        make([]string, 0),
		Hours:       make([]domain.WorkHourBlock, 0),
	}

	var err error
	if work.StartDate, err = domain.ParseDate(record["开始日期"]); err != nil {
		return WorkRecord{}, err
	}
	if record["结束日期"] != "" {
		if work.EndDate, err = domain.ParseDate(record["结束日期"]); err != nil {
			return WorkRecord{}, err
		}
	}

	needed, err := strconv.Atoi(record["所需人数"])
	if err != nil || needed <= 0 {
		return WorkRecord{}, fmt.Errorf("所需人数 %q 无效", record["所需人数"])
	}
	work.VolunteersNeeded = int32(needed)

	for _, tag := range strings.Split(record["标签"], "、") {
		if tag != "" {
			work.Tags = append(work.Tags, tag)
		}
	}

	for _, block := range strings.Split(record["小时块"], ";") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		weekDay, hour := domain.WeekDayNone, block
		if day, h, ok := strings.Cut(block, "@"); ok {
			if weekDay, err = strconv.Atoi(day); err != nil {
				return WorkRecord{}, fmt.Errorf("小时块 %q 的星期无效", block)
			}
			hour = h
		}
		work.Hours = append(work.Hours, domain.WorkHourBlock{HourBlock: hour, WeekDay: weekDay})
	}

	return WorkRecord{
		SupplierUsername: record["供应方"],
		SupplierName:     record["姓名"],
		SupplierEmail:    record["邮箱"],
		Work:             work,
	}, nil
}

// ImportWorks 从 CSV 文件导入工作，供应方不存在时使用 password 新建
func ImportWorks(r *repository.Repository, path string, password string, allowed []string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	records, err := ParseWorksCSV(file)
	if err != nil {
		return 0, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	suppliers := make(map[string]*domain.User)
	cnt := 0
	for _, record := range records {
		supplier, ok := suppliers[record.SupplierUsername]
		if !ok {
			supplier, err = r.GetUserByUsername(record.SupplierUsername)
			if err != nil {
				switch {
				case errors.Is(err, sql.ErrNoRows):
					// 表示该供应方不在数据库中，需要新建并插入
					supplier = &domain.User{
						Username:     record.SupplierUsername,
						PasswordHash: string(passwordHash),
						FullName:     record.SupplierName,
						Email:        record.SupplierEmail,
						Role:         domain.RoleSupplier,
					}
					if err := r.CreateUser(supplier); err != nil {
						slog.Error("插入供应方失败", "username", record.SupplierUsername, "error", err)
						continue
					}
				default:
					slog.Error("获取供应方失败", "username", record.SupplierUsername, "error", err)
					continue
				}
			}
			suppliers[record.SupplierUsername] = supplier
		}

		if supplier.Role != domain.RoleSupplier {
			slog.Error("用户不是供应方", "username", supplier.Username)
			continue
		}

		work := record.Work
		work.SupplierID = supplier.ID
		if err := utils.ValidateWorkHours(work, allowed); err != nil {
			slog.Error("工作的小时块无效", "name", work.Name, "error", err)
			continue
		}
		if work.Type == calendar.WorkTypeSession {
			work.EndDate = work.StartDate
		}

		if err := r.CreateWork(work); err != nil {
			slog.Error("插入工作失败", "name", work.Name, "error", err)
			continue
		}
		cnt++
	}

	return cnt, nil
}

// RandomPostulations 让每个志愿者随机申请 month 内最多 n 个工作，和已有申请冲突的工作会被跳过
func RandomPostulations(r *repository.Repository, month time.Time, n int) (int, error) {
	volunteers, err := r.GetUsers(domain.RoleVolunteer)
	if err != nil {
		return 0, err
	}

	today := time.Now()
	cnt := 0
	for _, volunteer := range volunteers {
		works, err := r.GetVolunteerWorks(volunteer.ID, calendar.MonthStart(month), calendar.MonthEnd(month))
		if err != nil {
			return cnt, err
		}
		works = utils.FilterVisibleWorks(works)
		if len(works) == 0 {
			continue
		}

		for _, work := range utils.GenerateRandomSubset(works, n) {
			if work.IsPostulated || work.IsFull() {
				continue
			}

			start, end := postulationRange(&work.Work, today)
			if err := utils.ValidatePostulationDates(&work.Work, start, end, today); err != nil {
				continue
			}

			active, err := r.GetActivePostulations(volunteer.ID)
			if err != nil {
				return cnt, err
			}
			if err := utils.CheckPostulationConflict(&work.Work, start, end, active, 0); err != nil {
				continue
			}

			p := &domain.Postulation{
				WorkID:      work.ID,
				VolunteerID: volunteer.ID,
				StartDate:   start,
				EndDate:     end,
			}
			if err := r.CreatePostulation(p); err != nil {
				slog.Error("插入申请失败", "volunteer", volunteer.Username, "work_id", work.ID, "error", err)
				continue
			}
			cnt++
		}
	}

	return cnt, nil
}

// postulationRange 周期性工作随机截取一段不早于今天的日期
func postulationRange(work *domain.Work, today time.Time) (domain.Date, domain.Date) {
	start, end := work.StartDate, work.EndDate
	if work.Type != calendar.WorkTypeRecurring {
		return start, end
	}

	if start.Before(calendar.Day(today)) {
		start = domain.NewDate(today)
	}
	if days := int(end.Sub(start.Time).Hours() / 24); days > 0 {
		start = domain.NewDate(start.AddDate(0, 0, rand.Intn(days/2+1)))
	}
	return start, end
}
