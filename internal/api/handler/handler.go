package handler

import "github.com/SaluSL/planimbly/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Workplace  *WorkplaceHandler
	Employee   *EmployeeHandler
	ShiftType  *ShiftTypeHandler
	Preference *PreferenceHandler
	Absence    *AbsenceHandler
	JobTime    *JobTimeHandler
	FreeDay    *FreeDayHandler
	Assignment *AssignmentHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Workplace:  NewWorkplaceHandler(svc.Workplace),
		Employee:   NewEmployeeHandler(svc.Employee),
		ShiftType:  NewShiftTypeHandler(svc.ShiftType),
		Preference: NewPreferenceHandler(svc.Preference),
		Absence:    NewAbsenceHandler(svc.Absence),
		JobTime:    NewJobTimeHandler(svc.JobTime),
		FreeDay:    NewFreeDayHandler(svc.FreeDay),
		Assignment: NewAssignmentHandler(svc.Assignment),
		Export:     NewExportHandler(svc.Export),
	}
}
