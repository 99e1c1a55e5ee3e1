package models

// Role 账号角色
type Role string

const (
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

// User 账号（由外部API返回，携带 bearer token）
type User struct {
	ID       string `gorm:"type:varchar(36);primaryKey" json:"_id,omitempty"`
	Name     string `gorm:"type:varchar(100);not null" json:"name"`
	Email    string `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Role     Role   `gorm:"type:varchar(20);not null" json:"role"`
	Password string `gorm:"type:varchar(255);not null" json:"-"` // bcrypt 哈希，不返回给前端
	Token    string `gorm:"-" json:"token,omitempty"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// IsSeller 是否为卖家（捐赠方）
func (u *User) IsSeller() bool {
	return u != nil && u.Role == RoleSeller
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required" validate:"required,notblank,max=100"`
	Email    string `json:"email" binding:"required,email" validate:"required,email"`
	Password string `json:"password" binding:"required,min=6" validate:"required,min=6,max=100"`
	Role     Role   `json:"role" binding:"required,oneof=seller buyer" validate:"required,oneof=seller buyer"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" validate:"required,email"`
	Password string `json:"password" binding:"required" validate:"required"`
	Role     Role   `json:"role" binding:"required,oneof=seller buyer" validate:"required,oneof=seller buyer"`
}
