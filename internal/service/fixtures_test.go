package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/SaluSL/planimbly/internal/model"
	"github.com/SaluSL/planimbly/internal/roster"
	"github.com/SaluSL/planimbly/pkg/jwt"
)

// ── 测试夹具 ──

const (
	testOrg   = "org-1"
	testTopic = "roster.assignments"
)

var testLoc = mustLoadLocation("Europe/Warsaw")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func testSettings() RosterSettings {
	days, _ := roster.NewActiveDays(1, 2, 3, 4, 5)
	return RosterSettings{Location: testLoc, WorkingDays: days}
}

var testSupervisor = Caller{EmployeeID: "sup-1", OrganizationID: testOrg, Role: jwt.RoleSupervisor}

func employeeCaller(id string) Caller {
	return Caller{EmployeeID: id, OrganizationID: testOrg, Role: jwt.RoleEmployee}
}

func addEmployee(s *memStore, id string, order int, workplaceIDs ...string) *model.Employee {
	e := &model.Employee{
		EmployeeID:     id,
		OrganizationID: testOrg,
		Username:       id,
		FirstName:      "Jan",
		LastName:       id,
		OrderNumber:    order,
		IsActive:       true,
	}
	for _, wp := range workplaceIDs {
		e.Memberships = append(e.Memberships, model.EmployeeWorkplace{EmployeeID: id, WorkplaceID: wp})
	}
	s.employees[id] = e
	return e
}

func addShiftType(s *memStore, id, workplaceID, start, end string, demand int, used bool) *model.ShiftType {
	st := &model.ShiftType{
		ShiftTypeID: id,
		WorkplaceID: workplaceID,
		Name:        id,
		HourStart:   start,
		HourEnd:     end,
		Demand:      demand,
		Color:       defaultShiftColor,
		ActiveDays:  model.IntArray{1, 2, 3, 4, 5},
		IsUsed:      used,
	}
	st.Version = 1
	s.shiftTypes[id] = st
	return st
}

// seedRoster 组织 org-1：
//   - wp-1 前台：emp-1、emp-2、emp-3
//   - wp-2 仓库：emp-x
//   - st-morning 08:00-16:00 需 2 人，st-late 12:00-20:00 需 1 人，st-closed 已停用
func seedRoster(s *memStore) {
	s.workplaces["wp-1"] = &model.Workplace{WorkplaceID: "wp-1", OrganizationID: testOrg, Name: "前台"}
	s.workplaces["wp-2"] = &model.Workplace{WorkplaceID: "wp-2", OrganizationID: testOrg, Name: "仓库"}
	s.workplaces["wp-other"] = &model.Workplace{WorkplaceID: "wp-other", OrganizationID: "org-2", Name: "其他组织"}

	sup := addEmployee(s, "sup-1", 0)
	sup.IsSupervisor = true
	addEmployee(s, "emp-1", 1, "wp-1")
	addEmployee(s, "emp-2", 2, "wp-1")
	addEmployee(s, "emp-3", 3, "wp-1")
	addEmployee(s, "emp-x", 4, "wp-2")

	addShiftType(s, "st-morning", "wp-1", "08:00", "16:00", 2, true)
	addShiftType(s, "st-late", "wp-1", "12:00", "20:00", 1, true)
	addShiftType(s, "st-closed", "wp-1", "08:00", "16:00", 1, false)
}

func newTestLogger() *zap.Logger {
	return zap.NewNop()
}

func day(s string) time.Time {
	t, err := time.ParseInLocation(time.DateOnly, s, testLoc)
	if err != nil {
		panic(err)
	}
	return t
}
