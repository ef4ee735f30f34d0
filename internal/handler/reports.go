package handler

import (
	"database/sql"
	"errors"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/report"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/utils"
)

var reportTypesByRole = map[domain.Role][]domain.ReportType{
	domain.RoleSupplier:  {domain.ReportTypeSupplierSessions, domain.ReportTypeSupplierPostulations},
	domain.RoleVolunteer: {domain.ReportTypeVolunteerSessions},
	domain.RoleAdmin:     {domain.ReportTypeAdminSessions, domain.ReportTypeAdminPostulations},
}

// buildReportTable 查询报表数据，supplierID 和 volunteerID 为 0 时不按对应的用户过滤
func (h *Handler) buildReportTable(req *domain.ReportRequest, supplierID, volunteerID int64) (*report.Table, error) {
	title := report.Title(req.Type)

	switch req.Type {
	case domain.ReportTypeSupplierSessions, domain.ReportTypeVolunteerSessions, domain.ReportTypeAdminSessions:
		sessions, err := h.repository.GetSessionsInRange(supplierID, volunteerID, req.UserIDs, req.StartDate.Time, req.EndDate.Time)
		if err != nil {
			return nil, err
		}
		return report.SessionsTable(title, sessions), nil
	case domain.ReportTypeSupplierPostulations, domain.ReportTypeAdminPostulations:
		postulations, err := h.repository.GetPostulationsInRange(supplierID, req.UserIDs, req.StartDate.Time, req.EndDate.Time)
		if err != nil {
			return nil, err
		}
		return report.PostulationsTable(title, postulations), nil
	default:
		return nil, errors.New("报表类型无效")
	}
}

func (h *Handler) serveReport(w http.ResponseWriter, r *http.Request, req *domain.ReportRequest, supplierID, volunteerID int64) {
	req.OwnerID = r.Context().Value(MyInfoCtx).(*domain.User).ID

	if err := utils.ValidateReportRange(req.StartDate, req.EndDate); err != nil {
		h.badRequest(w, r, err)
		return
	}

	table, err := h.buildReportTable(req, supplierID, volunteerID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	rep, err := h.reports.Generate(req, table)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	w.Header().Set("X-Report-Id", rep.ID)
	h.serveReportFile(w, r, rep.Path, rep.FileName)
}

func (h *Handler) serveReportFile(w http.ResponseWriter, r *http.Request, path, name string) {
	file, err := os.Open(path)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	format := domain.ReportFormatCSV
	if filepath.Ext(path) == domain.ReportFormatXLSX.Extension() {
		format = domain.ReportFormatXLSX
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, name, stat.ModTime(), file)
}

// GetReport 供应方和志愿者生成自己的报表
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	q := r.URL.Query()

	req := &domain.ReportRequest{
		Type:   domain.ReportType(q.Get("type")),
		Format: domain.ReportFormat(q.Get("format")),
	}
	if req.Format == "" {
		req.Format = domain.ReportFormatCSV
	}
	if req.Format != domain.ReportFormatCSV && req.Format != domain.ReportFormatXLSX {
		h.errorResponse(w, r, "报表格式无效")
		return
	}
	if !slices.Contains(reportTypesByRole[myInfo.Role], req.Type) {
		h.errorResponse(w, r, "报表类型无效")
		return
	}

	for key, dst := range map[string]*domain.Date{"start": &req.StartDate, "end": &req.EndDate} {
		s := q.Get(key)
		if s == "" {
			continue
		}
		d, err := domain.ParseDate(s)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		*dst = d
	}

	var supplierID, volunteerID int64
	switch myInfo.Role {
	case domain.RoleSupplier:
		supplierID = myInfo.ID
	case domain.RoleVolunteer:
		volunteerID = myInfo.ID
	}

	h.serveReport(w, r, req, supplierID, volunteerID)
}

// CreateAdminReport 管理员生成涉及指定用户的报表，没有指定用户时包含所有用户
func (h *Handler) CreateAdminReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type      string      `json:"type" validate:"required,oneof=ADMIN_SESSIONS ADMIN_POSTULATIONS"`
		Format    string      `json:"format" validate:"required,oneof=CSV XLSX"`
		StartDate domain.Date `json:"startDate"`
		EndDate   domain.Date `json:"endDate"`
		UserIDs   []int64     `json:"userIds" validate:"omitempty,dive,gt=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if len(req.UserIDs) > 0 {
		if _, err := h.repository.GetUsersByIDs(req.UserIDs); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "用户不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
	}

	h.serveReport(w, r, &domain.ReportRequest{
		Type:      domain.ReportType(req.Type),
		Format:    domain.ReportFormat(req.Format),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		UserIDs:   req.UserIDs,
	}, 0, 0)
}

// DownloadReport 在报表被清理之前重新下载自己生成的报表
func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	id := chi.URLParam(r, "id")

	path, err := h.reports.Open(id, myInfo.ID)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist):
			h.errorResponse(w, r, "报表不存在或已过期")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.serveReportFile(w, r, path, id+filepath.Ext(path))
}
