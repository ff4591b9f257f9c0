package models

import "github.com/google/uuid"

const (
	QuestionOpen     = "open"
	QuestionAnswered = "answered"
	QuestionClosed   = "closed"
)

type Question struct {
	Base
	AskedByID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"askedById"`
	SubjectID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"subjectId"`
	TopicID      *uuid.UUID `gorm:"type:uuid" json:"topicId,omitempty"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  string     `gorm:"type:text;not null" json:"description"`
	ImageURL     *string    `gorm:"type:text" json:"imageUrl,omitempty"`
	QuestionType string     `gorm:"size:10;not null" json:"questionType"`
	Views        int        `gorm:"not null" json:"views"`
	Status       string     `gorm:"size:20;not null;index" json:"status"`

	AskedBy *User    `gorm:"foreignKey:AskedByID" json:"askedBy,omitempty"`
	Subject *Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Topic   *Topic   `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
}

type Answer struct {
	Base
	QuestionID   uuid.UUID `gorm:"type:uuid;not null;index" json:"questionId"`
	AnsweredByID uuid.UUID `gorm:"type:uuid;not null" json:"answeredById"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	HelpfulCount int       `gorm:"not null" json:"helpfulCount"`
	IsAccepted   bool      `gorm:"not null" json:"isAccepted"`

	AnsweredBy *User `gorm:"foreignKey:AnsweredByID" json:"answeredBy,omitempty"`
}

// AnswerVote records one user's helpful vote; the pair is unique.
type AnswerVote struct {
	Base
	AnswerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_answer_voter" json:"answerId"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_answer_voter" json:"userId"`
}
