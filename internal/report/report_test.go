package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/volunteer-calendar/backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

func date(t *testing.T, s string) domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func sampleSessions(t *testing.T) []*domain.WorkSession {
	return []*domain.WorkSession{
		{WorkName: "图书整理", SupplierName: "李明", VolunteerName: "王伟", Status: domain.WorkSessionStatusAccepted, SessionDate: date(t, "13-05-2024"), SessionTime: "09:00:00", SessionWeekDay: 1},
		{WorkName: "图书整理", SupplierName: "李明", VolunteerName: "王伟", Status: domain.WorkSessionStatusPending, SessionDate: date(t, "20-05-2024"), SessionTime: "09:00:00", SessionWeekDay: 1},
	}
}

func TestSessionsTable(t *testing.T) {
	table := SessionsTable("工作出勤", sampleSessions(t))

	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"13-05-2024", "09:00:00", "周一", "图书整理", "李明", "王伟", "已接受"}, table.Rows[0])
	assert.Equal(t, "待处理", table.Rows[1][6])
}

func TestPostulationsTable(t *testing.T) {
	created := time.Date(2024, time.May, 1, 10, 30, 0, 0, time.UTC)
	table := PostulationsTable("工作申请", []*domain.Postulation{
		{WorkName: "植树", VolunteerName: "张静", VolunteerUsername: "volunteer_abc123", Status: domain.PostulationStatusRejected, StartDate: date(t, "01-05-2024"), EndDate: date(t, "31-05-2024"), CreatedAt: created},
	})

	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"植树", "张静", "volunteer_abc123", "已拒绝", "01-05-2024", "31-05-2024", "2024-05-01 10:30:00"}, table.Rows[0])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, SessionsTable("工作出勤", sampleSessions(t))))

	content := bytes.TrimPrefix(buf.Bytes(), []byte("\xEF\xBB\xBF"))
	records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "日期", records[0][0])
	assert.Equal(t, "20-05-2024", records[2][0])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, SessionsTable("工作出勤", sampleSessions(t))))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("工作出勤")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "志愿者", rows[0][5])
	assert.Equal(t, "已接受", rows[1][6])
}

func TestGeneratorGenerateAndOpen(t *testing.T) {
	tests := []struct {
		name   string
		format domain.ReportFormat
		ext    string
	}{
		{"csv", domain.ReportFormatCSV, ".csv"},
		{"xlsx", domain.ReportFormatXLSX, ".xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGenerator(filepath.Join(t.TempDir(), "reports"))
			require.NoError(t, err)

			req := &domain.ReportRequest{
				OwnerID:   42,
				Type:      domain.ReportTypeVolunteerSessions,
				Format:    tt.format,
				StartDate: date(t, "01-05-2024"),
				EndDate:   date(t, "31-05-2024"),
			}
			report, err := g.Generate(req, SessionsTable(Title(req.Type), sampleSessions(t)))
			require.NoError(t, err)

			assert.Equal(t, 2, report.Rows)
			assert.Equal(t, "我的出勤_01-05-2024_31-05-2024"+tt.ext, report.FileName)
			assert.Equal(t, tt.ext, filepath.Ext(report.Path))

			path, err := g.Open(report.ID, 42)
			require.NoError(t, err)
			assert.Equal(t, report.Path, path)

			// 其他用户拿到 id 也打不开
			_, err = g.Open(report.ID, 7)
			assert.ErrorIs(t, err, os.ErrNotExist)
		})
	}
}

func TestGeneratorOpenUnknown(t *testing.T) {
	g, err := NewGenerator(t.TempDir())
	require.NoError(t, err)

	_, err = g.Open("../../etc/passwd", 1)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = g.Open("6f1c1c9e-8a7b-4a41-9d0c-1d0b1d0b1d0b", 1)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGeneratorClean(t *testing.T) {
	dir := t.TempDir()
	g, err := NewGenerator(dir)
	require.NoError(t, err)

	now := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	oldFile := filepath.Join(dir, "old.csv")
	newFile := filepath.Join(dir, "new.csv")
	require.NoError(t, os.WriteFile(oldFile, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(newFile, []byte("b"), 0o644))
	require.NoError(t, os.Chtimes(oldFile, now.Add(-48*time.Hour), now.Add(-48*time.Hour)))
	require.NoError(t, os.Chtimes(newFile, now.Add(-time.Hour), now.Add(-time.Hour)))

	removed, err := g.Clean(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(oldFile)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(newFile)
	assert.NoError(t, err)
}
