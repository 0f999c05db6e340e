package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SaluSL/planimbly/internal/model"
	"github.com/SaluSL/planimbly/internal/repository"
	pkgerrors "github.com/SaluSL/planimbly/pkg/errors"
)

// ── 内存存储：所有 mock repo 共享，按 mutex 串行化以支持并发测试 ──

type memStore struct {
	mu sync.Mutex

	workplaces  map[string]*model.Workplace
	employees   map[string]*model.Employee
	shiftTypes  map[string]*model.ShiftType
	preferences map[string]*model.Preference
	absences    map[string]*model.Absence
	jobTimes    map[string]*model.JobTime // key: employeeID:year
	freeDays    map[string]*model.FreeDay
	assignments map[string]*model.Assignment
	logs        []model.AssignmentLog
	outbox      []model.OutboxEvent
	seq         int
}

func newMemStore() *memStore {
	return &memStore{
		workplaces:  make(map[string]*model.Workplace),
		employees:   make(map[string]*model.Employee),
		shiftTypes:  make(map[string]*model.ShiftType),
		preferences: make(map[string]*model.Preference),
		absences:    make(map[string]*model.Absence),
		jobTimes:    make(map[string]*model.JobTime),
		freeDays:    make(map[string]*model.FreeDay),
		assignments: make(map[string]*model.Assignment),
	}
}

// repository 组装不绑定数据库的 Repository 聚合
func (s *memStore) repository() *repository.Repository {
	return &repository.Repository{
		Workplace:     &mockWorkplaceRepo{s},
		Employee:      &mockEmployeeRepo{s},
		ShiftType:     &mockShiftTypeRepo{s},
		Preference:    &mockPreferenceRepo{s},
		Absence:       &mockAbsenceRepo{s},
		JobTime:       &mockJobTimeRepo{s},
		FreeDay:       &mockFreeDayRepo{s},
		Assignment:    &mockAssignmentRepo{s},
		AssignmentLog: &mockAssignmentLogRepo{s},
		Outbox:        &mockOutboxRepo{s},
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%04d", prefix, s.seq)
}

func (s *memStore) employeeOrg(employeeID string) string {
	if e, ok := s.employees[employeeID]; ok {
		return e.OrganizationID
	}
	return ""
}

func (s *memStore) shiftOrg(shiftTypeID string) string {
	st, ok := s.shiftTypes[shiftTypeID]
	if !ok {
		return ""
	}
	if wp, ok := s.workplaces[st.WorkplaceID]; ok {
		return wp.OrganizationID
	}
	return ""
}

func overlaps(start, end, from, to time.Time) bool {
	return start.Before(to) && end.After(from)
}

// ── Mock WorkplaceRepository ──

type mockWorkplaceRepo struct{ s *memStore }

func (m *mockWorkplaceRepo) Create(_ context.Context, wp *model.Workplace) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if wp.WorkplaceID == "" {
		wp.WorkplaceID = m.s.nextID("wp")
	}
	cp := *wp
	m.s.workplaces[wp.WorkplaceID] = &cp
	return nil
}

func (m *mockWorkplaceRepo) GetByID(_ context.Context, orgID, id string) (*model.Workplace, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if wp, ok := m.s.workplaces[id]; ok && wp.OrganizationID == orgID {
		cp := *wp
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkplaceRepo) List(_ context.Context, orgID string) ([]model.Workplace, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.Workplace
	for _, wp := range m.s.workplaces {
		if wp.OrganizationID == orgID {
			result = append(result, *wp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockWorkplaceRepo) Update(_ context.Context, wp *model.Workplace) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *wp
	m.s.workplaces[wp.WorkplaceID] = &cp
	return nil
}

func (m *mockWorkplaceRepo) Delete(_ context.Context, id string, _ string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.workplaces, id)
	return nil
}

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct{ s *memStore }

func copyEmployee(e *model.Employee) *model.Employee {
	cp := *e
	cp.Memberships = append([]model.EmployeeWorkplace(nil), e.Memberships...)
	return &cp
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, orgID, id string) (*model.Employee, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if e, ok := m.s.employees[id]; ok && e.OrganizationID == orgID {
		return copyEmployee(e), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) GetForUpdate(ctx context.Context, orgID, id string) (*model.Employee, error) {
	return m.GetByID(ctx, orgID, id)
}

func (m *mockEmployeeRepo) List(_ context.Context, filter repository.EmployeeFilter) ([]model.Employee, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.Employee
	for _, e := range m.s.employees {
		if e.OrganizationID != filter.OrganizationID {
			continue
		}
		if e.IsSupervisor && !filter.IncludeSupervisors {
			continue
		}
		if filter.WorkplaceID != "" {
			member := false
			for _, mb := range e.Memberships {
				if mb.WorkplaceID == filter.WorkplaceID {
					member = true
				}
			}
			if !member {
				continue
			}
		}
		if filter.Keyword != "" && !strings.Contains(e.Username, filter.Keyword) {
			continue
		}
		result = append(result, *copyEmployee(e))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].OrderNumber != result[j].OrderNumber {
			return result[i].OrderNumber < result[j].OrderNumber
		}
		return result[i].EmployeeID < result[j].EmployeeID
	})
	total := int64(len(result))
	if filter.Limit > 0 {
		end := filter.Offset + filter.Limit
		if filter.Offset > len(result) {
			return nil, total, nil
		}
		if end > len(result) {
			end = len(result)
		}
		result = result[filter.Offset:end]
	}
	return result, total, nil
}

func (m *mockEmployeeRepo) ReplaceWorkplaces(_ context.Context, employeeID string, workplaceIDs []string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e, ok := m.s.employees[employeeID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.Memberships = nil
	for _, id := range workplaceIDs {
		e.Memberships = append(e.Memberships, model.EmployeeWorkplace{EmployeeID: employeeID, WorkplaceID: id})
	}
	return nil
}

// ── Mock ShiftTypeRepository ──

type mockShiftTypeRepo struct{ s *memStore }

func (m *mockShiftTypeRepo) Create(_ context.Context, st *model.ShiftType) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if st.ShiftTypeID == "" {
		st.ShiftTypeID = m.s.nextID("st")
	}
	cp := *st
	m.s.shiftTypes[st.ShiftTypeID] = &cp
	return nil
}

func (m *mockShiftTypeRepo) GetByID(_ context.Context, orgID, id string) (*model.ShiftType, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if st, ok := m.s.shiftTypes[id]; ok && m.s.shiftOrg(id) == orgID {
		cp := *st
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftTypeRepo) GetForUpdate(ctx context.Context, orgID, id string) (*model.ShiftType, error) {
	return m.GetByID(ctx, orgID, id)
}

func (m *mockShiftTypeRepo) List(_ context.Context, filter repository.ShiftTypeFilter) ([]model.ShiftType, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.ShiftType
	for id, st := range m.s.shiftTypes {
		if m.s.shiftOrg(id) != filter.OrganizationID {
			continue
		}
		if filter.WorkplaceID != "" && st.WorkplaceID != filter.WorkplaceID {
			continue
		}
		if filter.OnlyUsed && !st.IsUsed {
			continue
		}
		result = append(result, *st)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ShiftTypeID < result[j].ShiftTypeID })
	return result, nil
}

func (m *mockShiftTypeRepo) Update(_ context.Context, st *model.ShiftType) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cur, ok := m.s.shiftTypes[st.ShiftTypeID]
	if !ok || cur.Version != st.Version {
		return pkgerrors.ErrOptimisticLock
	}
	st.Version++
	cp := *st
	m.s.shiftTypes[st.ShiftTypeID] = &cp
	return nil
}

func (m *mockShiftTypeRepo) Delete(_ context.Context, id string, _ string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.shiftTypes, id)
	return nil
}

func (m *mockShiftTypeRepo) CountByWorkplace(_ context.Context, workplaceID string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for _, st := range m.s.shiftTypes {
		if st.WorkplaceID == workplaceID {
			n++
		}
	}
	return n, nil
}

// ── Mock PreferenceRepository ──

type mockPreferenceRepo struct{ s *memStore }

func (m *mockPreferenceRepo) Create(_ context.Context, p *model.Preference) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if p.PreferenceID == "" {
		p.PreferenceID = m.s.nextID("pref")
	}
	cp := *p
	cp.ShiftType = nil
	m.s.preferences[p.PreferenceID] = &cp
	return nil
}

func (m *mockPreferenceRepo) GetByID(_ context.Context, id string) (*model.Preference, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if p, ok := m.s.preferences[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPreferenceRepo) list(match func(p *model.Preference) bool) []model.Preference {
	var result []model.Preference
	for _, p := range m.s.preferences {
		if !match(p) {
			continue
		}
		cp := *p
		if st, ok := m.s.shiftTypes[p.ShiftTypeID]; ok {
			stCopy := *st
			cp.ShiftType = &stCopy
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PreferenceID < result[j].PreferenceID })
	return result
}

func (m *mockPreferenceRepo) ListByEmployee(_ context.Context, employeeID string) ([]model.Preference, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.list(func(p *model.Preference) bool { return p.EmployeeID == employeeID }), nil
}

func (m *mockPreferenceRepo) ListByShiftType(_ context.Context, shiftTypeID string) ([]model.Preference, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.list(func(p *model.Preference) bool { return p.ShiftTypeID == shiftTypeID }), nil
}

func (m *mockPreferenceRepo) Update(_ context.Context, p *model.Preference) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *p
	cp.ShiftType = nil
	m.s.preferences[p.PreferenceID] = &cp
	return nil
}

func (m *mockPreferenceRepo) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.preferences, id)
	return nil
}

// ── Mock AbsenceRepository ──

type mockAbsenceRepo struct{ s *memStore }

func (m *mockAbsenceRepo) Create(_ context.Context, a *model.Absence) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if a.AbsenceID == "" {
		a.AbsenceID = m.s.nextID("abs")
	}
	cp := *a
	cp.Employee = nil
	m.s.absences[a.AbsenceID] = &cp
	return nil
}

func (m *mockAbsenceRepo) GetByID(_ context.Context, orgID, id string) (*model.Absence, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.absences[id]
	if !ok || m.s.employeeOrg(a.EmployeeID) != orgID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	cp.Employee = copyEmployee(m.s.employees[a.EmployeeID])
	return &cp, nil
}

func (m *mockAbsenceRepo) List(_ context.Context, filter repository.AbsenceFilter) ([]model.Absence, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.Absence
	for _, a := range m.s.absences {
		if m.s.employeeOrg(a.EmployeeID) != filter.OrganizationID {
			continue
		}
		if filter.EmployeeID != "" && a.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.From != nil && !a.End.After(*filter.From) {
			continue
		}
		if filter.To != nil && !a.Start.Before(*filter.To) {
			continue
		}
		cp := *a
		cp.Employee = copyEmployee(m.s.employees[a.EmployeeID])
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })
	return result, int64(len(result)), nil
}

func (m *mockAbsenceRepo) ListOverlapping(_ context.Context, employeeID string, from, to time.Time) ([]model.Absence, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.Absence
	for _, a := range m.s.absences {
		if a.EmployeeID == employeeID && overlaps(a.Start, a.End, from, to) {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })
	return result, nil
}

func (m *mockAbsenceRepo) Update(_ context.Context, a *model.Absence) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *a
	cp.Employee = nil
	m.s.absences[a.AbsenceID] = &cp
	return nil
}

func (m *mockAbsenceRepo) Delete(_ context.Context, id string, _ string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.absences, id)
	return nil
}

// ── Mock JobTimeRepository ──

type mockJobTimeRepo struct{ s *memStore }

func jobTimeKey(employeeID string, year int) string {
	return fmt.Sprintf("%s:%d", employeeID, year)
}

func (m *mockJobTimeRepo) Upsert(_ context.Context, jt *model.JobTime) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	key := jobTimeKey(jt.EmployeeID, jt.Year)
	if cur, ok := m.s.jobTimes[key]; ok {
		jt.JobTimeID = cur.JobTimeID
	} else if jt.JobTimeID == "" {
		jt.JobTimeID = m.s.nextID("jt")
	}
	cp := *jt
	m.s.jobTimes[key] = &cp
	return nil
}

func (m *mockJobTimeRepo) Get(ctx context.Context, employeeID string, year int) (*model.JobTime, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if jt, ok := m.s.jobTimes[jobTimeKey(employeeID, year)]; ok {
		cp := *jt
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJobTimeRepo) ListByEmployee(_ context.Context, employeeID string) ([]model.JobTime, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.JobTime
	for _, jt := range m.s.jobTimes {
		if jt.EmployeeID == employeeID {
			result = append(result, *jt)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Year < result[j].Year })
	return result, nil
}

func (m *mockJobTimeRepo) Delete(_ context.Context, employeeID string, year int) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.jobTimes, jobTimeKey(employeeID, year))
	return nil
}

// ── Mock FreeDayRepository ──

type mockFreeDayRepo struct{ s *memStore }

func (m *mockFreeDayRepo) findByDay(orgID, day string) *model.FreeDay {
	for _, d := range m.s.freeDays {
		if d.OrganizationID == orgID && d.Day.Format(time.DateOnly) == day {
			return d
		}
	}
	return nil
}

func (m *mockFreeDayRepo) Create(_ context.Context, d *model.FreeDay) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.findByDay(d.OrganizationID, d.Day.Format(time.DateOnly)) != nil {
		return gorm.ErrDuplicatedKey
	}
	if d.FreeDayID == "" {
		d.FreeDayID = m.s.nextID("fd")
	}
	cp := *d
	m.s.freeDays[d.FreeDayID] = &cp
	return nil
}

func (m *mockFreeDayRepo) GetByID(_ context.Context, orgID, id string) (*model.FreeDay, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if d, ok := m.s.freeDays[id]; ok && d.OrganizationID == orgID {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFreeDayRepo) List(_ context.Context, orgID string, from, to *time.Time) ([]model.FreeDay, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.FreeDay
	for _, d := range m.s.freeDays {
		if d.OrganizationID != orgID {
			continue
		}
		key := d.Day.Format(time.DateOnly)
		if from != nil && key < from.Format(time.DateOnly) {
			continue
		}
		if to != nil && key > to.Format(time.DateOnly) {
			continue
		}
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Day.Before(result[j].Day) })
	return result, nil
}

func (m *mockFreeDayRepo) Update(_ context.Context, d *model.FreeDay) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *d
	m.s.freeDays[d.FreeDayID] = &cp
	return nil
}

func (m *mockFreeDayRepo) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.freeDays, id)
	return nil
}

func (m *mockFreeDayRepo) UpsertBatch(_ context.Context, days []model.FreeDay) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i := range days {
		if cur := m.findByDay(days[i].OrganizationID, days[i].Day.Format(time.DateOnly)); cur != nil {
			cur.Name = days[i].Name
			continue
		}
		cp := days[i]
		cp.FreeDayID = m.s.nextID("fd")
		m.s.freeDays[cp.FreeDayID] = &cp
	}
	return int64(len(days)), nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct{ s *memStore }

func (m *mockAssignmentRepo) withRelations(a *model.Assignment) model.Assignment {
	cp := *a
	if st, ok := m.s.shiftTypes[a.ShiftTypeID]; ok {
		stCopy := *st
		if wp, ok := m.s.workplaces[st.WorkplaceID]; ok {
			wpCopy := *wp
			stCopy.Workplace = &wpCopy
		}
		cp.ShiftType = &stCopy
	}
	if e, ok := m.s.employees[a.EmployeeID]; ok {
		cp.Employee = copyEmployee(e)
	}
	return cp
}

func sortAssignmentsForTest(as []model.Assignment) {
	sort.SliceStable(as, func(i, j int) bool {
		if !as[i].Start.Equal(as[j].Start) {
			return as[i].Start.Before(as[j].Start)
		}
		if !as[i].CreatedAt.Equal(as[j].CreatedAt) {
			return as[i].CreatedAt.Before(as[j].CreatedAt)
		}
		return as[i].AssignmentID < as[j].AssignmentID
	})
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, cur := range m.s.assignments {
		if cur.EmployeeID == a.EmployeeID && cur.ShiftTypeID == a.ShiftTypeID && cur.Start.Equal(a.Start) {
			return gorm.ErrDuplicatedKey
		}
	}
	if a.AssignmentID == "" {
		a.AssignmentID = m.s.nextID("asg")
	}
	cp := *a
	cp.ShiftType = nil
	cp.Employee = nil
	m.s.assignments[a.AssignmentID] = &cp
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, orgID, id string) (*model.Assignment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.assignments[id]
	if !ok || m.s.employeeOrg(a.EmployeeID) != orgID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m.withRelations(a)
	return &cp, nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.assignments, id)
	return nil
}

func (m *mockAssignmentRepo) ListByEmployeeRange(_ context.Context, employeeID string, from, to time.Time) ([]model.Assignment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.Assignment
	for _, a := range m.s.assignments {
		if a.EmployeeID == employeeID && overlaps(a.Start, a.End, from, to) {
			result = append(result, *a)
		}
	}
	sortAssignmentsForTest(result)
	return result, nil
}

func (m *mockAssignmentRepo) CountByShiftRange(_ context.Context, shiftTypeID string, from, to time.Time) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for _, a := range m.s.assignments {
		if a.ShiftTypeID == shiftTypeID && !a.Start.Before(from) && a.Start.Before(to) {
			n++
		}
	}
	return n, nil
}

func (m *mockAssignmentRepo) List(_ context.Context, filter repository.AssignmentFilter) ([]model.Assignment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.Assignment
	for _, a := range m.s.assignments {
		if m.s.employeeOrg(a.EmployeeID) != filter.OrganizationID {
			continue
		}
		if filter.EmployeeID != "" && a.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.ShiftTypeID != "" && a.ShiftTypeID != filter.ShiftTypeID {
			continue
		}
		if filter.WorkplaceID != "" {
			st, ok := m.s.shiftTypes[a.ShiftTypeID]
			if !ok || st.WorkplaceID != filter.WorkplaceID {
				continue
			}
		}
		if filter.From != nil && !a.End.After(*filter.From) {
			continue
		}
		if filter.To != nil && !a.Start.Before(*filter.To) {
			continue
		}
		result = append(result, m.withRelations(a))
	}
	sortAssignmentsForTest(result)
	return result, nil
}

func (m *mockAssignmentRepo) UpdateNegativeFlag(_ context.Context, id string, flag bool) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if a, ok := m.s.assignments[id]; ok {
		a.NegativeFlag = flag
	}
	return nil
}

// ── Mock AssignmentLogRepository ──

type mockAssignmentLogRepo struct{ s *memStore }

func (m *mockAssignmentLogRepo) Create(_ context.Context, log *model.AssignmentLog) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if log.LogID == "" {
		log.LogID = m.s.nextID("log")
	}
	m.s.logs = append(m.s.logs, *log)
	return nil
}

func (m *mockAssignmentLogRepo) List(_ context.Context, orgID, employeeID string, p repository.Page) ([]model.AssignmentLog, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.AssignmentLog
	for _, l := range m.s.logs {
		if m.s.employeeOrg(l.EmployeeID) != orgID {
			continue
		}
		if employeeID != "" && l.EmployeeID != employeeID {
			continue
		}
		result = append(result, l)
	}
	return result, int64(len(result)), nil
}

// ── Mock OutboxRepository ──

type mockOutboxRepo struct{ s *memStore }

func (m *mockOutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.outbox = append(m.s.outbox, *event)
	return nil
}

func (m *mockOutboxRepo) ListPending(_ context.Context, limit int) ([]model.OutboxEvent, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var result []model.OutboxEvent
	for _, e := range m.s.outbox {
		if e.Status == model.OutboxStatusPending && len(result) < limit {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockOutboxRepo) MarkSent(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i := range m.s.outbox {
		if m.s.outbox[i].ID == id {
			m.s.outbox[i].Status = model.OutboxStatusSent
		}
	}
	return nil
}

func (m *mockOutboxRepo) MarkFailed(_ context.Context, id string, reason string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i := range m.s.outbox {
		if m.s.outbox[i].ID == id {
			m.s.outbox[i].RetryCount++
			m.s.outbox[i].ErrorMessage = &reason
		}
	}
	return nil
}
