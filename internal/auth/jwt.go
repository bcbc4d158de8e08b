package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/groupfeed/internal/model"
	"github.com/d60-Lab/groupfeed/pkg/middleware"
	"github.com/d60-Lab/groupfeed/pkg/response"
)

// Claims 会话 token 中携带的身份
type Claims struct {
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager 签发/校验 HS256 会话 token
type TokenManager struct {
	secret []byte
	issuer string
}

func NewTokenManager(secret, issuer string) *TokenManager {
	return &TokenManager{secret: []byte(secret), issuer: issuer}
}

// Issue 签发 token（登录由外部会话服务负责，此处供运维脚本和测试使用）
func (m *TokenManager) Issue(id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: id.Username,
		Role:     id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse 校验 token 并返回身份
func (m *TokenManager) Parse(token string) (Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, err
	}
	if claims.Subject == "" {
		return Identity{}, errors.New("token has no subject")
	}
	role := claims.Role
	if role != model.RoleAdmin {
		role = model.RoleMember
	}
	return Identity{ID: claims.Subject, Username: claims.Username, Role: role}, nil
}

// Middleware 要求 Bearer token，缺失或无效时 401
func (m *TokenManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.Unauthorized(c, "missing bearer token")
			return
		}
		id, err := m.Parse(token)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			return
		}
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
		c.Set(string(identityKey), id)
		c.Set(middleware.UserIDKey, id.ID)
		c.Next()
	}
}

// RequireAdmin 仅允许 admin
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := FromContext(c.Request.Context())
		if err != nil {
			response.Unauthorized(c, "authentication required")
			return
		}
		if !id.IsAdmin() {
			response.Forbidden(c, "admin only")
			return
		}
		c.Next()
	}
}

// Current 取当前请求身份
func Current(c *gin.Context) (Identity, bool) {
	id, err := FromContext(c.Request.Context())
	return id, err == nil
}
