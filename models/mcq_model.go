package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type MCQOption struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

type MCQ struct {
	Base
	Question    string                         `gorm:"type:text;not null" json:"question"`
	SubjectID   uuid.UUID                      `gorm:"type:uuid;not null;index" json:"subjectId"`
	TopicID     *uuid.UUID                     `gorm:"type:uuid;index" json:"topicId,omitempty"`
	Options     datatypes.JSONSlice[MCQOption] `json:"options"`
	Explanation *string                        `gorm:"type:text" json:"explanation"`
	Difficulty  string                         `gorm:"size:10;not null" json:"difficulty"`
	CreatedByID uuid.UUID                      `gorm:"type:uuid;not null" json:"createdById"`

	Subject   *Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Topic     *Topic   `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
	CreatedBy *User    `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
}

// CorrectOption returns the index of the first correct option, or -1.
func (m *MCQ) CorrectOption() int {
	for i, opt := range m.Options {
		if opt.IsCorrect {
			return i
		}
	}
	return -1
}

type MCQAttempt struct {
	Base
	StudentID      uuid.UUID `gorm:"type:uuid;not null;index" json:"studentId"`
	MCQID          uuid.UUID `gorm:"type:uuid;not null;index" json:"mcqId"`
	SelectedOption int       `gorm:"not null" json:"selectedOption"`
	IsCorrect      bool      `gorm:"not null" json:"isCorrect"`
	AttemptedAt    time.Time `gorm:"not null" json:"attemptedAt"`

	MCQ *MCQ `gorm:"foreignKey:MCQID" json:"mcq,omitempty"`
}
