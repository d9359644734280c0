package service

import (
	"crypto/subtle"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/qs3c/rollbowl_go_server/config"
	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/jwt"
)

// AdminService 管理端共享密钥登录
type AdminService struct {
	adminCfg config.AdminConfig
	jwtCfg   config.JWTConfig
}

func NewAdminService(adminCfg config.AdminConfig, jwtCfg config.JWTConfig) *AdminService {
	return &AdminService{adminCfg: adminCfg, jwtCfg: jwtCfg}
}

// Login 校验管理员密钥并签发会话 token，配置了 KeyHash 时只认 bcrypt
func (s *AdminService) Login(req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error) {
	if !s.verifyKey(req.AdminKey) {
		log.Warn().Msg("admin login rejected")
		return nil, ErrInvalidAdminKey
	}

	token, expiresAt, err := jwt.GenerateToken(jwt.RoleAdmin, s.jwtCfg.Secret, s.jwtCfg.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.AdminLoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	}, nil
}

func (s *AdminService) verifyKey(key string) bool {
	if key == "" {
		return false
	}
	if s.adminCfg.KeyHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.adminCfg.KeyHash), []byte(key)) == nil
	}
	if s.adminCfg.Key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.adminCfg.Key), []byte(key)) == 1
}

// VerifyToken 校验管理员 token
func (s *AdminService) VerifyToken(token string) (*jwt.Claims, error) {
	claims, err := jwt.ParseToken(token, s.jwtCfg.Secret)
	if err != nil {
		return nil, err
	}
	if claims.Role != jwt.RoleAdmin {
		return nil, jwt.ErrInvalidToken
	}
	return claims, nil
}
