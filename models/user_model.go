package models

const (
	RoleStudent = "student"
	RoleTutor   = "tutor"
	RoleAdmin   = "admin"
)

type User struct {
	Base
	Name     string `gorm:"size:255;not null" json:"name"`
	Email    string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"size:20;not null;index" json:"role"`

	Bio            *string `gorm:"type:text" json:"bio,omitempty"`
	Phone          *string `gorm:"size:50" json:"phone,omitempty"`
	University     *string `gorm:"size:255" json:"university,omitempty"`
	Specialization *string `gorm:"size:255" json:"specialization,omitempty"`
	ProfilePicture *string `gorm:"size:512" json:"profilePicture,omitempty"`

	IsActive bool `gorm:"not null" json:"isActive"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTutor, RoleAdmin:
		return true
	}
	return false
}
