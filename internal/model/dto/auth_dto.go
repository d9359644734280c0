package dto

// CustomerLoginRequest 顾客登录（首次登录即注册）
type CustomerLoginRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Phone string `json:"phone" binding:"required,min=6,max=20"`
}

// CustomerInfo 顾客信息（返回给前端）
type CustomerInfo struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Token     string `json:"token,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// AdminLoginRequest 管理员登录
type AdminLoginRequest struct {
	AdminKey string `json:"admin_key" binding:"required"`
}

// AdminLoginResponse 管理员登录响应
type AdminLoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// CreateUserRequest 管理端创建用户
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Phone string `json:"phone" binding:"required,min=6,max=20"`
}
