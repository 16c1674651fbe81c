package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ahmednour/giving/internal/model"
	"github.com/ahmednour/giving/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoDonations  = errors.New("没有可导出的捐赠记录")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 管理端将捐赠台账导出为 Excel (.xlsx)，支持与列表一致的过滤条件
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportDonations 导出捐赠台账为 Excel
	ExportDonations(ctx context.Context, filters *repository.DonationListFilters) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// 单次导出行数上限，超出截断
const exportMaxRows = 10000

// ════════════════════════════════════════════════════════════
// ExportDonations — 导出捐赠台账为 Excel
// ════════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "捐赠台账"
//   - 列：标题 | 分类 | 状态 | 捐赠者 | 捐赠者邮箱 | 创建时间 | 更新时间
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportDonations(ctx context.Context, filters *repository.DonationListFilters) (*bytes.Buffer, string, error) {
	donations, _, err := s.repo.Donation.List(ctx, filters, 0, exportMaxRows)
	if err != nil {
		s.logger.Error("查询捐赠失败", zap.Error(err))
		return nil, "", err
	}
	if len(donations) == 0 {
		return nil, "", ErrExportNoDonations
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "捐赠台账"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 28)
	f.SetColWidth(sheetName, "B", "B", 12)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 16)
	f.SetColWidth(sheetName, "E", "E", 26)
	f.SetColWidth(sheetName, "F", "G", 20)

	// 表头样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"标题", "分类", "状态", "捐赠者", "捐赠者邮箱", "创建时间", "更新时间"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	statusNames := map[string]string{
		model.DonationStatusAvailable: "可申请",
		model.DonationStatusRequested: "申请中",
		model.DonationStatusDonated:   "已捐出",
	}

	// 数据行
	row := 2
	for i := range donations {
		d := &donations[i]

		status := d.Status
		if name, ok := statusNames[status]; ok {
			status = name
		}

		donorName, donorEmail := "-", "-"
		if d.Donor != nil {
			donorName = d.Donor.Name
			donorEmail = d.Donor.Email
		}

		f.SetCellValue(sheetName, cell("A", row), d.Title)
		f.SetCellValue(sheetName, cell("B", row), d.Category)
		f.SetCellValue(sheetName, cell("C", row), status)
		f.SetCellValue(sheetName, cell("D", row), donorName)
		f.SetCellValue(sheetName, cell("E", row), donorEmail)
		f.SetCellValue(sheetName, cell("F", row), d.CreatedAt.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheetName, cell("G", row), d.UpdatedAt.Format("2006-01-02 15:04:05"))
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("捐赠台账_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
