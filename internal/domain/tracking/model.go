package tracking

import (
	"time"

	"buildtactical/internal/domain/identity"
)

// Task status values.
const (
	TaskTodo       = "todo"
	TaskInProgress = "in-progress"
	TaskDone       = "done"
)

type Project struct {
	ID          uint `gorm:"primaryKey"`
	OwnerID     uint `gorm:"not null;index"`
	Owner       identity.User
	Name        string `gorm:"not null"`
	Description string
	Status      string `gorm:"type:varchar(20);default:'active'"`

	Tasks    []Task
	Expenses []Expense

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Task struct {
	ID        uint    `gorm:"primaryKey"`
	ProjectID uint    `gorm:"not null;index"`
	Project   Project `gorm:"constraint:OnDelete:CASCADE"`
	Title     string  `gorm:"not null"`
	Notes     string
	Status    string `gorm:"type:varchar(20);default:'todo'"`
	DueAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Expense struct {
	ID          uint    `gorm:"primaryKey"`
	ProjectID   uint    `gorm:"not null;index"`
	Project     Project `gorm:"constraint:OnDelete:CASCADE"`
	Description string
	AmountUSD   float64 `gorm:"column:amount_usd"`
	IncurredAt  *time.Time

	CreatedAt time.Time
}
