package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/config"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/ics"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/report"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/repository"
)

const tokenCookieName = "__ecnc_volunteer_calendar_token"

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client
	reports     *report.Generator
	icsExporter *ics.Exporter
	hours       calendar.HourRange
	// now 返回 CALENDAR_TIME_ZONE 时区下的当前时间，“今天”都以它为准
	now func() time.Time

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client, reports *report.Generator) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	hours, err := cfg.Calendar.HourRange()
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Calendar.Location()
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,
		reports:     reports,
		icsExporter: ics.NewExporter(loc),
		hours:       hours,
		now:         func() time.Time { return time.Now().In(loc) },

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/health", h.Health)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Post("/signup", h.Signup)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.myInfo)

		r.Route("/me", func(r chi.Router) {
			r.Get("/", h.GetMyInfo)
			r.Patch("/", h.UpdateMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
			r.Route("/preferences", func(r chi.Router) {
				r.Use(h.RequiredRole([]domain.Role{domain.RoleVolunteer}))
				r.Get("/", h.GetMyPreferences)
				r.Put("/", h.UpdateMyPreferences)
			})
		})

		r.Get("/tags", h.GetAllTags)

		r.With(h.RequiredRole([]domain.Role{domain.RoleSupplier, domain.RoleVolunteer})).Get("/reports", h.GetReport)
		r.Get("/reports/{id}", h.DownloadReport)

		r.Route("/supplier", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleSupplier}))

			r.Route("/works", func(r chi.Router) {
				r.Post("/", h.CreateWork)
				r.Get("/", h.GetSupplierWorks)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.work)
					r.Use(h.requireWorkOwner)
					r.Get("/", h.GetWork)
					r.Patch("/", h.UpdateWork)
					r.Delete("/", h.DeleteWork)
					r.Get("/postulations", h.GetWorkPostulations)
					r.Get("/sessions", h.GetWorkSessions)
				})
			})

			r.Get("/pending-postulations", h.GetPendingPostulations)
			r.Route("/postulations/{id}", func(r chi.Router) {
				r.Use(h.postulation)
				r.Use(h.requirePostulationWorkOwner)
				r.Post("/accept", h.AcceptPostulation)
				r.Post("/reject", h.RejectPostulation)
			})

			r.Route("/sessions/{id}", func(r chi.Router) {
				r.Use(h.workSession)
				r.Use(h.requireWorkSessionOwner)
				r.Patch("/", h.UpdateWorkSessionStatus)
			})

			r.Route("/calendar", func(r chi.Router) {
				r.Get("/week", h.GetSupplierWeek)
				r.Get("/month", h.GetSupplierMonth)
			})
		})

		r.Route("/volunteer", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleVolunteer}))

			r.Get("/works", h.GetVolunteerWorks)
			r.Route("/calendar", func(r chi.Router) {
				r.Get("/week", h.GetVolunteerWeek)
				r.Get("/month", h.GetVolunteerMonth)
			})
			r.Get("/calendar.ics", h.GetVolunteerICS)

			r.Route("/postulations", func(r chi.Router) {
				r.Get("/", h.GetMyPostulations)
				r.Post("/", h.CreatePostulation)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.postulation)
					r.Use(h.requirePostulationOwner)
					r.Patch("/", h.UpdatePostulation)
					r.Delete("/", h.DeletePostulation)
				})
			})

			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", h.GetMySessions)
				r.Get("/calendar/week", h.GetSessionsWeek)
				r.Get("/calendar/month", h.GetSessionsMonth)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.GetUsers)
				r.Post("/", h.CreateUser)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.userInfo)
					r.Get("/", h.GetUserInfo)
					r.With(h.preventOperateInitialAdmin).Patch("/", h.UpdateUser)
					r.With(h.preventOperateInitialAdmin).Patch("/suspended", h.UpdateUserSuspended)
					r.With(h.preventOperateInitialAdmin).Delete("/", h.DeleteUser)
					r.With(h.preventOperateInitialAdmin).Patch("/password", h.ResetUserPassword)
				})
			})

			r.Post("/reports", h.CreateAdminReport)
		})
	})
}
