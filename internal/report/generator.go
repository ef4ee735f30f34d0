package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
)

// Generator 把报表写到 dir 目录下，文件名为 所有者ID_uuid 加扩展名
type Generator struct {
	dir string
	now func() time.Time
}

func NewGenerator(dir string) (*Generator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &Generator{
		dir: dir,
		now: time.Now,
	}, nil
}

func (g *Generator) Generate(req *domain.ReportRequest, table *Table) (*domain.Report, error) {
	id := uuid.New().String()
	path := g.path(req.OwnerID, id, req.Format)

	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	switch req.Format {
	case domain.ReportFormatXLSX:
		err = WriteXLSX(file, table)
	case domain.ReportFormatCSV:
		err = WriteCSV(file, table)
	default:
		err = fmt.Errorf("不支持的报表格式 %s", req.Format)
	}

	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	report := &domain.Report{
		ID:        id,
		OwnerID:   req.OwnerID,
		Type:      req.Type,
		Format:    req.Format,
		FileName:  fileName(req),
		Path:      path,
		Rows:      len(table.Rows),
		CreatedAt: g.now(),
	}

	return report, nil
}

// Open 查找 ownerID 生成的 id 报表，别人的报表和不存在的报表一样返回 os.ErrNotExist
func (g *Generator) Open(id string, ownerID int64) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", os.ErrNotExist
	}

	for _, format := range []domain.ReportFormat{domain.ReportFormatCSV, domain.ReportFormatXLSX} {
		path := g.path(ownerID, id, format)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", os.ErrNotExist
}

func (g *Generator) path(ownerID int64, id string, format domain.ReportFormat) string {
	return filepath.Join(g.dir, fmt.Sprintf("%d_%s%s", ownerID, id, format.Extension()))
}

// Clean 删除修改时间早于 retention 的报表文件，返回删除的数量
func (g *Generator) Clean(retention time.Duration) (int, error) {
	entries, err := os.ReadDir(g.dir)
	if err != nil {
		return 0, err
	}

	deadline := g.now().Add(-retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return removed, err
		}
		if !info.ModTime().Before(deadline) {
			continue
		}

		if err := os.Remove(filepath.Join(g.dir, entry.Name())); err != nil {
			slog.Warn("无法删除过期报表", "file", entry.Name(), "error", err)
			continue
		}
		removed++
	}

	return removed, nil
}

func fileName(req *domain.ReportRequest) string {
	name := fmt.Sprintf("%s_%s_%s", Title(req.Type), req.StartDate.String(), req.EndDate.String())
	return strings.ReplaceAll(name, " ", "_") + req.Format.Extension()
}
