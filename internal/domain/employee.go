package domain

import "time"

// EmployeeStatus is the employment state of an employee.
type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "Active"
	EmployeeResigned EmployeeStatus = "Resigned"
)

// Employee is an HR record.
type Employee struct {
	ID           int64          `json:"id" db:"id"`
	EmployeeCode string         `json:"employee_code" db:"employee_code" binding:"required,max=30"`
	Name         string         `json:"name" db:"name" binding:"required,max=200"`
	Email        string         `json:"email" db:"email" binding:"omitempty,email"`
	Phone        string         `json:"phone" db:"phone"`
	Designation  string         `json:"designation" db:"designation"`
	Department   string         `json:"department" db:"department"`
	JoiningDate  string         `json:"joining_date" db:"joining_date"`
	Status       EmployeeStatus `json:"status" db:"status" binding:"omitempty,oneof=Active Resigned"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}

// ListFilter is the common search and paging input for directory style listings.
type ListFilter struct {
	Search   string
	Page     int
	PageSize int
}

// Offset returns the row offset for the filter's page.
func (f ListFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
