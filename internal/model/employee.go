package model

import "time"

// Employee 员工表 — 对应 employees
// 账号由身份服务开通，本服务只读取并维护工作场所归属
type Employee struct {
	EmployeeID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"employee_id"`
	OrganizationID string `gorm:"type:uuid;not null"                             json:"organization_id"`
	Username       string `gorm:"type:varchar(150);not null"                     json:"username"`
	FirstName      string `gorm:"type:varchar(150);not null"                     json:"first_name"`
	LastName       string `gorm:"type:varchar(150);not null"                     json:"last_name"`
	Email          string `gorm:"type:varchar(255);not null"                     json:"email"`
	OrderNumber    int    `gorm:"not null"                                       json:"order_number"`
	IsSupervisor   bool   `gorm:"not null"                                       json:"is_supervisor"`
	IsActive       bool   `gorm:"not null"                                       json:"is_active"`
	BaseModel

	// 关联
	Memberships []EmployeeWorkplace `gorm:"foreignKey:EmployeeID;references:EmployeeID" json:"memberships,omitempty"`
}

// TableName 指定表名
func (Employee) TableName() string { return "employees" }

// FullName 姓名，缺省时回退到用户名
func (e *Employee) FullName() string {
	switch {
	case e.FirstName != "" && e.LastName != "":
		return e.FirstName + " " + e.LastName
	case e.FirstName != "":
		return e.FirstName
	case e.LastName != "":
		return e.LastName
	default:
		return e.Username
	}
}

// WorkplaceIDs 员工所属的工作场所 ID 列表
func (e *Employee) WorkplaceIDs() []string {
	ids := make([]string, 0, len(e.Memberships))
	for _, m := range e.Memberships {
		ids = append(ids, m.WorkplaceID)
	}
	return ids
}

// EmployeeWorkplace 员工与工作场所归属关系 — 对应 employee_workplaces
type EmployeeWorkplace struct {
	EmployeeID  string    `gorm:"type:uuid;primaryKey"               json:"employee_id"`
	WorkplaceID string    `gorm:"type:uuid;primaryKey"               json:"workplace_id"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (EmployeeWorkplace) TableName() string { return "employee_workplaces" }
