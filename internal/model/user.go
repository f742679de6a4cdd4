package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Username    string    `gorm:"size:100;unique;not null" json:"username"`
	FullName    string    `gorm:"size:100" json:"fullName"`
	Email       string    `gorm:"size:100;unique;not null" json:"email"`
	Password    string    `gorm:"size:100;not null" json:"-"`
	Role        UserRole  `gorm:"type:enum('student','admin');default:'student'" json:"role"`
	BonusPoints int       `gorm:"column:bonus_points;default:0" json:"bonusPoints"` // 测验奖励积分余额
	Avatar      string    `gorm:"size:255" json:"avatar"`
	Disabled    bool      `gorm:"default:false" json:"disabled"`
	LastLogin   time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
	LastSeen    time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName 排行榜等展示场景使用的名称，按 username、full_name 依次回退
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if u.FullName != "" {
		return u.FullName
	}
	return "User"
}
