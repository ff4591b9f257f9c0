package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PlanPending   = "pending"
	PlanCompleted = "completed"
	PlanCancelled = "cancelled"
)

type StudyPlan struct {
	Base
	StudentID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"studentId"`
	SubjectID   uuid.UUID  `gorm:"type:uuid;not null" json:"subjectId"`
	TopicID     *uuid.UUID `gorm:"type:uuid" json:"topicId,omitempty"`
	PlannedDate time.Time  `gorm:"not null;index" json:"plannedDate"`
	Duration    int        `gorm:"not null" json:"duration"`
	Status      string     `gorm:"size:20;not null" json:"status"`
	Notes       string     `gorm:"type:text" json:"notes"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	Subject *Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Topic   *Topic   `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
}
