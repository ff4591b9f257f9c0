package models

import "github.com/google/uuid"

type Subject struct {
	Base
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Code        string    `gorm:"size:20;not null;uniqueIndex" json:"code"`
	CreatedByID uuid.UUID `gorm:"type:uuid;not null" json:"createdById"`

	CreatedBy *User   `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	Topics    []Topic `gorm:"foreignKey:SubjectID" json:"topics,omitempty"`
}

type Topic struct {
	Base
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	SubjectID   uuid.UUID `gorm:"type:uuid;not null;index" json:"subjectId"`

	Subject *Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
}
