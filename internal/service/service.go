package service

import (
	"go.uber.org/zap"

	"github.com/SaluSL/planimbly/config"
	"github.com/SaluSL/planimbly/internal/repository"
	"github.com/SaluSL/planimbly/internal/roster"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	Workplace  WorkplaceService
	Employee   EmployeeService
	ShiftType  ShiftTypeService
	Preference PreferenceService
	Absence    AbsenceService
	JobTime    JobTimeService
	FreeDay    FreeDayService
	Assignment AssignmentService
	Export     ExportService
}

// NewRosterSettings 由配置构造排班时区与工作日
func NewRosterSettings(cfg *config.RosterConfig) (RosterSettings, error) {
	loc, err := cfg.Location()
	if err != nil {
		return RosterSettings{}, err
	}
	days, err := roster.NewActiveDays(cfg.WorkingWeekdays...)
	if err != nil {
		return RosterSettings{}, err
	}
	return RosterSettings{Location: loc, WorkingDays: days}, nil
}

// NewService 创建 Service 聚合
// 未启用 Redis 时 locker 为进程内实现，blacklist 为 nil
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	locker Locker,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) (*Service, error) {
	settings, err := NewRosterSettings(&cfg.Roster)
	if err != nil {
		return nil, err
	}

	return &Service{
		Auth:       NewAuthService(repo, blacklist, logger),
		Workplace:  NewWorkplaceService(repo, logger),
		Employee:   NewEmployeeService(repo, logger),
		ShiftType:  NewShiftTypeService(repo, logger),
		Preference: NewPreferenceService(repo, logger),
		Absence:    NewAbsenceService(repo, locker, settings, logger),
		JobTime:    NewJobTimeService(repo, locker, settings, logger),
		FreeDay:    NewFreeDayService(repo, locker, settings, logger),
		Assignment: NewAssignmentService(repo, locker, settings, cfg.Kafka.Topic, logger),
		Export:     NewExportService(repo, settings, logger),
	}, nil
}
