package models

import "github.com/google/uuid"

type StudyMaterial struct {
	Base
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	SubjectID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"subjectId"`
	TopicID      *uuid.UUID `gorm:"type:uuid;index" json:"topicId,omitempty"`
	FileURL      string     `gorm:"type:text;not null" json:"fileUrl"`
	FileName     string     `gorm:"size:255;not null" json:"fileName"`
	FileType     string     `gorm:"size:100" json:"fileType"`
	FileSize     int64      `json:"fileSize"`
	PublicID     string     `gorm:"size:255" json:"-"`
	UploadedByID uuid.UUID  `gorm:"type:uuid;not null" json:"uploadedById"`
	Downloads    int        `gorm:"not null" json:"downloads"`
	IsPublished  bool       `gorm:"not null" json:"isPublished"`

	Subject    *Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Topic      *Topic   `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
	UploadedBy *User    `gorm:"foreignKey:UploadedByID" json:"uploadedBy,omitempty"`
}
