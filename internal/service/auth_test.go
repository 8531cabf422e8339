package service

import (
	"errors"
	"testing"
	"time"

	"restaurant_chat/internal/config"
	pkgerrors "restaurant_chat/pkg/errors"
	"restaurant_chat/pkg/jwt"
	"restaurant_chat/pkg/logger"
)

func TestValidateToken(t *testing.T) {
	cfg := config.JWTConfig{AccessSecret: "test-secret"}
	svc := NewAuthService(cfg, logger.New("error"))

	token, err := jwt.GenerateAccessToken("admin-1", RoleAdmin, cfg.AccessSecret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	identity, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if identity.ID != "admin-1" {
		t.Errorf("identity.ID = %q, want admin-1", identity.ID)
	}
	if identity.Role != RoleAdmin {
		t.Errorf("identity.Role = %q, want admin", identity.Role)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{AccessSecret: "test-secret"}, logger.New("error"))

	_, err := svc.ValidateToken("not-a-token")
	if !errors.Is(err, pkgerrors.ErrInvalidToken) {
		t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := jwt.GenerateAccessToken("C1", "", "other-secret", time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	svc := NewAuthService(config.JWTConfig{AccessSecret: "test-secret"}, logger.New("error"))
	if _, err := svc.ValidateToken(token); !errors.Is(err, pkgerrors.ErrInvalidToken) {
		t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
	}
}
