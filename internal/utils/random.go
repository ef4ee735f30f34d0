package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"
var lowerLetters = "abcdefghijklmnopqrstuvwxyz"

// GenerateRandomUsername 由角色和姓名拼音生成用户名，例如 张伟 -> volunteer_zhw38
func GenerateRandomUsername(role domain.Role, fullName string) string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(string(role)))
	sb.WriteByte('_')

	// 每个字取拼音的前若干个字母
	for _, py := range pinyin.LazyConvert(fullName, nil) {
		sb.WriteString(py[:rand.Intn(len(py))+1])
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		sb.WriteByte(digits[rand.Intn(len(digits))])
	}
	return sb.String()
}

func GenerateRandomUser(role domain.Role, password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateRandomUsername(role, fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         role,
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

// GenerateRandomPassword 生成的密码总能通过 ValidatePassword
func GenerateRandomPassword(length int) string {
	length = max(length, 8)
	for {
		random_password := make([]rune, length)
		for i := range random_password {
			random_password[i] = letters[rand.Intn(len(letters))]
		}
		if ValidatePassword(string(random_password)) == nil {
			return string(random_password)
		}
	}
}

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = rune(lowerLetters[rand.Intn(len(lowerLetters))])
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

// 用 Fisher-Yates 洗牌算法来生成随机的星期
func GenerateRandomWeekDays() []int {
	days := []int{0, 1, 2, 3, 4, 5, 6}

	for i := len(days) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		days[i], days[j] = days[j], days[i]
	}

	n := rand.Intn(3) + 1

	return days[:n]
}

// 使用 Fisher-Yates 洗牌算法来生成一个随机子集
func GenerateRandomSubset[T any](arr []T, maxLen int) []T {
	arrCopy := append([]T{}, arr...) // 复制数组，避免修改原数组

	for i := 0; i < len(arrCopy)-1; i++ {
		j := rand.Intn(len(arrCopy)-i) + i
		arrCopy[i], arrCopy[j] = arrCopy[j], arrCopy[i]
	}

	l := rand.Intn(min(len(arrCopy), maxLen)) + 1
	return arrCopy[:l]
}

var workNames = []string{"图书整理", "社区清洁", "敬老院陪伴", "动物救助", "课业辅导", "活动接待", "植树", "食物分发"}
var tagNames = []string{"户外", "室内", "教育", "环保", "动物", "老人", "儿童", "体力"}

func RandomTagNames() []string {
	return GenerateRandomSubset(tagNames, 3)
}

// GenerateRandomWork 在 month 所在月份内随机生成一个工作，小时块取自 allowed
func GenerateRandomWork(supplierID int64, month time.Time, allowed []string) *domain.Work {
	days := calendar.MonthDays(month)
	start := days[rand.Intn(len(days))]

	work := &domain.Work{
		SupplierID:       supplierID,
		Name:             workNames[rand.Intn(len(workNames))] + GenerateRandomID(3, 3),
		Description:      "工作描述" + GenerateRandomID(20, 10),
		StartDate:        domain.NewDate(start),
		VolunteersNeeded: int32(rand.Intn(5) + 1),
		Tags:             RandomTagNames(),
	}

	hours := GenerateRandomSubset(allowed, 3)

	if rand.Intn(3) == 0 {
		work.Type = calendar.WorkTypeSession
		work.EndDate = work.StartDate
		for _, h := range hours {
			work.Hours = append(work.Hours, domain.WorkHourBlock{HourBlock: h, WeekDay: domain.WeekDayNone})
		}
		return work
	}

	work.Type = calendar.WorkTypeRecurring
	// 周期性工作有可能跨越到下一个月
	work.EndDate = domain.NewDate(start.AddDate(0, 0, rand.Intn(45)+7))
	for _, wd := range GenerateRandomWeekDays() {
		for _, h := range hours {
			work.Hours = append(work.Hours, domain.WorkHourBlock{HourBlock: h, WeekDay: wd})
		}
	}
	return work
}
