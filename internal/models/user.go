// Package models содержит доменную модель пользователя, тарифов и токенов,
// в том виде, в каком их отдаёт внешний backend.
package models

import "time"

// Plan — тарифный уровень учётной записи.
type Plan string

const (
	PlanFree       Plan = "FREE"
	PlanStandard   Plan = "STANDARD"
	PlanEnterprise Plan = "ENTERPRISE"
)

// Paid сообщает, относится ли тариф к платным.
func (p Plan) Paid() bool {
	return p == PlanStandard || p == PlanEnterprise
}

// RoleAdmin — роль, открывающая административную панель.
const RoleAdmin = "admin"

// User представляет пользователя, как его видит backend.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Role      string    `json:"role,omitempty"` // admin или user
	Plan      Plan      `json:"plan"`
	Usage     Usage     `json:"usage"`
	CreatedAt time.Time `json:"created_at"`
}

// Usage — месячные счётчики использования.
type Usage struct {
	RowsProcessed int64      `json:"rows_processed"`
	RowsLimit     int64      `json:"rows_limit"` // -1 — без ограничений
	FilesUploaded int64      `json:"files_uploaded"`
	ResetsAt      *time.Time `json:"resets_at,omitempty"`
}

// IsAdmin сообщает, есть ли у пользователя роль администратора.
// Отсутствие тарифа или роли прав не даёт.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
