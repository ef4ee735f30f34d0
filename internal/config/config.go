package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	InitialAdmin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD,required"`
		FullName string `env:"FULL_NAME" envDefault:"管理员"`
		Email    string `env:"EMAIL,required"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"336"` // 单位为小时，14 天
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD,required"`
		} `envPrefix:"USER_"`
	} `envPrefix:"SEED_"`
	Email struct {
		UserDomain string `env:"USER_DOMAIN,required"`
		SMTP       struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD,required"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
		TemplateDir string `env:"TEMPLATE_DIR" envDefault:"./templates"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD,required"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	OTP struct {
		Expiration int `env:"EXPIRATION" envDefault:"900"` // 15 分钟
	} `envPrefix:"OTP_"`
	NewUser struct {
		PasswordLength int `env:"PASSWORD_LENGTH" envDefault:"12"`
	} `envPrefix:"NEW_USER_"`
	Calendar CalendarConfig `envPrefix:"CALENDAR_"`
	Report   struct {
		Dir       string        `env:"DIR" envDefault:"./reports"`
		Retention time.Duration `env:"RETENTION" envDefault:"24h"`
	} `envPrefix:"REPORT_"`
	Jobs struct {
		ExpirePostulationsSpec string `env:"EXPIRE_POSTULATIONS_SPEC" envDefault:"0 3 * * *"`
		CleanReportsSpec       string `env:"CLEAN_REPORTS_SPEC" envDefault:"@hourly"`
	} `envPrefix:"JOBS_"`
}

type CalendarConfig struct {
	AllowedHours []string     `env:"ALLOWED_HOURS" envSeparator:","`
	WeekStart    time.Weekday `env:"WEEK_START" envDefault:"0"`
	TimeZone     string       `env:"TIME_ZONE" envDefault:"Local"`
}

// HourRange 由允许的小时块推出周视图的小时轴，未配置时使用默认值
func (c CalendarConfig) HourRange() (calendar.HourRange, error) {
	if len(c.AllowedHours) == 0 {
		return calendar.DefaultHourRange, nil
	}
	return calendar.HourRangeFromAllowed(c.AllowedHours)
}

// Location 是判断“今天”、运行定时任务和导出日历时使用的时区
func (c CalendarConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}

func (c CalendarConfig) Allowed() []string {
	if len(c.AllowedHours) == 0 {
		return calendar.DefaultAllowedHours
	}
	return c.AllowedHours
}

// ClientConfig 是终端日历客户端的配置，客户端不需要连接数据库等后端依赖，因此单独加载
type ClientConfig struct {
	BaseURL  string         `env:"BASE_URL" envDefault:"http://localhost:3000"`
	Username string         `env:"USERNAME"`
	Password string         `env:"PASSWORD"`
	Timeout  time.Duration  `env:"TIMEOUT" envDefault:"10s"`
	LogFile  string         `env:"LOG_FILE" envDefault:"calendar.log"`
	Calendar CalendarConfig `envPrefix:"CALENDAR_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := parse(cfg); err != nil {
		return nil, err
	}

	if _, err := cfg.Calendar.HourRange(); err != nil {
		return nil, err
	}

	if _, err := cfg.Calendar.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func LoadClientConfig() (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "CLIENT_"}); err != nil {
		return nil, firstError(err)
	}

	if _, err := cfg.Calendar.HourRange(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parse(v any) error {
	if err := env.Parse(v); err != nil {
		return firstError(err)
	}
	return nil
}

func firstError(err error) error {
	aggErr := env.AggregateError{}
	if ok := errors.As(err, &aggErr); ok {
		// 只返回第一个错误使得日志更清晰
		return aggErr.Errors[0]
	}
	return err
}
