package service

import (
	"restaurant_chat/internal/config"
	pkgerrors "restaurant_chat/pkg/errors"
	"restaurant_chat/pkg/jwt"
	"restaurant_chat/pkg/logger"
)

const RoleAdmin = "admin"

// Identity — логическая идентичность соединения, восстановленная из токена.
type Identity struct {
	ID   string
	Role string
}

// AuthService только валидирует токены: учетные записи и выдача токенов
// живут в основной платформе.
type AuthService interface {
	ValidateToken(tokenString string) (*Identity, error)
}

type authService struct {
	jwtCfg config.JWTConfig
	log    logger.Logger
}

func NewAuthService(jwtCfg config.JWTConfig, log logger.Logger) AuthService {
	return &authService{jwtCfg: jwtCfg, log: log}
}

func (s *authService) ValidateToken(tokenString string) (*Identity, error) {
	claims, err := jwt.ValidateToken(tokenString, s.jwtCfg.AccessSecret)
	if err != nil {
		return nil, pkgerrors.ErrInvalidToken
	}

	id := claims.UserID
	if id == "" {
		id = claims.Subject
	}
	if id == "" {
		return nil, pkgerrors.ErrInvalidToken
	}

	return &Identity{ID: id, Role: claims.Role}, nil
}
