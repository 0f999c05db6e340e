package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SaluSL/planimbly/internal/dto"
	"github.com/SaluSL/planimbly/internal/model"
	"github.com/SaluSL/planimbly/internal/repository"
	"github.com/SaluSL/planimbly/internal/roster"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoShiftTypes = errors.New("该工作场所暂无班次定义")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// 员工日历导出窗口：过去 30 天起的全部分配
const calendarLookback = 30 * 24 * time.Hour

// ExportService 导出业务接口
//
// 说明：
//   - 月度排班表导出为 Excel (.xlsx)，以 bytes.Buffer 返回，由 Handler 设置响应头
//   - 排班表 Sheet：行为班次（按开始时间），列为当月每一天，单元格为员工姓名
//   - 工时 Sheet：工作场所内每位员工的应出勤 / 实际 / 差额
//   - 员工个人排班以 iCalendar 订阅源导出
type ExportService interface {
	ExportRoster(ctx context.Context, caller Caller, req *dto.ExportRosterRequest) (*bytes.Buffer, string, error)
	ExportEmployeeCalendar(ctx context.Context, caller Caller, employeeID string) ([]byte, string, error)
}

type exportService struct {
	repo    *repository.Repository
	ledgers *monthLedgers
	logger  *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, settings RosterSettings, logger *zap.Logger) ExportService {
	return &exportService{
		repo:    repo,
		ledgers: &monthLedgers{settings: settings, logger: logger},
		logger:  logger,
	}
}

// ═══════════════════════════════════════════════════════════
// ExportRoster — 导出工作场所月度排班表
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportRoster(ctx context.Context, caller Caller, req *dto.ExportRosterRequest) (*bytes.Buffer, string, error) {
	loc := s.ledgers.settings.Location
	month := time.Month(req.Month)
	r := roster.MonthRange(req.Year, month, loc)

	// 1. 工作场所与班次
	wp, err := s.repo.Workplace.GetByID(ctx, caller.OrganizationID, req.WorkplaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrWorkplaceNotFound
		}
		s.logger.Error("查询工作场所失败", zap.Error(err))
		return nil, "", err
	}
	shiftTypes, err := s.repo.ShiftType.List(ctx, repository.ShiftTypeFilter{
		OrganizationID: caller.OrganizationID,
		WorkplaceID:    wp.WorkplaceID,
	})
	if err != nil {
		s.logger.Error("查询班次失败", zap.Error(err))
		return nil, "", err
	}
	if len(shiftTypes) == 0 {
		return nil, "", ErrExportNoShiftTypes
	}
	sort.SliceStable(shiftTypes, func(i, j int) bool {
		return formatClock(shiftTypes[i].HourStart) < formatClock(shiftTypes[j].HourStart)
	})

	// 2. 当月分配，索引 "shiftTypeID:yyyy-mm-dd" → 姓名列表
	assignments, err := s.repo.Assignment.List(ctx, repository.AssignmentFilter{
		OrganizationID: caller.OrganizationID,
		WorkplaceID:    wp.WorkplaceID,
		From:           &r.Start,
		To:             &r.End,
	})
	if err != nil {
		s.logger.Error("查询当月分配失败", zap.Error(err))
		return nil, "", err
	}
	index := make(map[string][]string)
	for i := range assignments {
		a := &assignments[i]
		name := a.EmployeeID
		if a.Employee != nil {
			name = a.Employee.FullName()
		}
		if a.NegativeFlag {
			name += " *"
		}
		key := a.ShiftTypeID + ":" + roster.DateKey(a.Start, loc)
		index[key] = append(index[key], name)
	}

	// 3. 工作场所员工及其月度工时
	employees, _, err := s.repo.Employee.List(ctx, repository.EmployeeFilter{
		OrganizationID: caller.OrganizationID,
		WorkplaceID:    wp.WorkplaceID,
	})
	if err != nil {
		s.logger.Error("查询工作场所员工失败", zap.Error(err))
		return nil, "", err
	}
	balances := make([]roster.Balance, len(employees))
	for i := range employees {
		ledger, err := s.ledgers.build(ctx, s.repo, caller.OrganizationID, employees[i].EmployeeID, req.Year, month)
		if err != nil {
			s.logger.Error("构建月度账本失败", zap.Error(err))
			return nil, "", err
		}
		as, err := s.ledgers.monthAssignments(ctx, s.repo, employees[i].EmployeeID, req.Year, month)
		if err != nil {
			s.logger.Error("查询员工月度分配失败", zap.Error(err))
			return nil, "", err
		}
		balances[i] = ledger.Balance(as)
	}

	// 4. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	title := fmt.Sprintf("%s %04d-%02d", wp.Name, req.Year, req.Month)
	if err := writeRosterSheet(f, title, shiftTypes, index, r, loc); err != nil {
		s.logger.Error("写入排班表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	if err := writeBalanceSheet(f, employees, balances); err != nil {
		s.logger.Error("写入工时表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.DeleteSheet("Sheet1")

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("排班表_%s_%04d-%02d.xlsx", wp.Name, req.Year, req.Month)
	return buf, filename, nil
}

const (
	rosterSheet  = "排班表"
	balanceSheet = "工时"
)

func writeRosterSheet(f *excelize.File, title string, shiftTypes []model.ShiftType, index map[string][]string, r roster.Interval, loc *time.Location) error {
	idx, err := f.NewSheet(rosterSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	var days []time.Time
	for d := r.Start; d.Before(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	cellStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})

	f.SetColWidth(rosterSheet, "A", "A", 18)
	f.SetColWidth(rosterSheet, "B", "B", 14)
	f.SetColWidth(rosterSheet, colName(2), colName(1+len(days)), 16)

	// 标题行
	f.SetCellValue(rosterSheet, "A1", title)
	f.MergeCell(rosterSheet, "A1", cell(colName(1+len(days)), 1))
	f.SetCellStyle(rosterSheet, "A1", "A1", headerStyle)

	// 表头：班次 | 时间 | 每一天
	f.SetCellValue(rosterSheet, cell("A", 2), "班次")
	f.SetCellValue(rosterSheet, cell("B", 2), "时间")
	for i, d := range days {
		f.SetCellValue(rosterSheet, cell(colName(2+i), 2), fmt.Sprintf("%02d %s", d.Day(), weekdayNames[roster.ISOWeekday(d)]))
	}
	f.SetCellStyle(rosterSheet, "A2", cell(colName(1+len(days)), 2), headerStyle)

	// 数据行
	row := 3
	for i := range shiftTypes {
		st := &shiftTypes[i]
		activeDays, _ := roster.ActiveDaysOf(st.ActiveDays)

		f.SetCellValue(rosterSheet, cell("A", row), st.Name)
		f.SetCellValue(rosterSheet, cell("B", row), formatClock(st.HourStart)+"-"+formatClock(st.HourEnd))
		for j, d := range days {
			text := "-"
			if names, ok := index[st.ShiftTypeID+":"+roster.DateKey(d, loc)]; ok {
				sort.Strings(names)
				text = strings.Join(names, "\n")
			} else if activeDays.IsActiveOn(d) && st.IsUsed {
				text = fmt.Sprintf("(0/%d)", st.Demand)
			}
			f.SetCellValue(rosterSheet, cell(colName(2+j), row), text)
		}
		f.SetCellStyle(rosterSheet, cell("A", row), cell(colName(1+len(days)), row), cellStyle)
		row++
	}
	return nil
}

func writeBalanceSheet(f *excelize.File, employees []model.Employee, balances []roster.Balance) error {
	if _, err := f.NewSheet(balanceSheet); err != nil {
		return err
	}
	f.SetColWidth(balanceSheet, "A", "A", 24)
	f.SetColWidth(balanceSheet, "B", "D", 14)

	headers := []string{"员工", "应出勤(小时)", "实际(小时)", "差额(小时)"}
	for i, h := range headers {
		f.SetCellValue(balanceSheet, cell(colName(i), 1), h)
	}
	for i := range employees {
		row := i + 2
		b := balances[i]
		f.SetCellValue(balanceSheet, cell("A", row), employees[i].FullName())
		f.SetCellValue(balanceSheet, cell("B", row), b.Expected.InexactFloat64())
		f.SetCellValue(balanceSheet, cell("C", row), b.Actual.InexactFloat64())
		f.SetCellValue(balanceSheet, cell("D", row), b.Delta.InexactFloat64())
	}
	return nil
}

// ═══════════════════════════════════════════════════════════
// ExportEmployeeCalendar — 员工个人排班 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportEmployeeCalendar(ctx context.Context, caller Caller, employeeID string) ([]byte, string, error) {
	if !caller.CanActFor(employeeID) {
		return nil, "", ErrForbidden
	}
	emp, err := loadEmployee(ctx, s.repo, s.logger, caller.OrganizationID, employeeID)
	if err != nil {
		return nil, "", err
	}

	from := time.Now().Add(-calendarLookback)
	list, err := s.repo.Assignment.List(ctx, repository.AssignmentFilter{
		OrganizationID: caller.OrganizationID,
		EmployeeID:     employeeID,
		From:           &from,
	})
	if err != nil {
		s.logger.Error("查询员工分配失败", zap.Error(err))
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//planimbly//roster//PL")
	for i := range list {
		a := &list[i]
		evt := cal.AddEvent(a.AssignmentID + "@planimbly")
		evt.SetDtStampTime(a.CreatedAt)
		evt.SetStartAt(a.Start)
		evt.SetEndAt(a.End)
		summary := "班次"
		if a.ShiftType != nil {
			summary = a.ShiftType.Name
			if a.ShiftType.Workplace != nil {
				evt.SetLocation(a.ShiftType.Workplace.Name)
			}
		}
		evt.SetSummary(summary)
	}

	filename := fmt.Sprintf("%s.ics", emp.Username)
	return []byte(cal.Serialize()), filename, nil
}

// ── 辅助函数 ──

var weekdayNames = map[int]string{1: "一", 2: "二", 3: "三", 4: "四", 5: "五", 6: "六", 7: "日"}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
