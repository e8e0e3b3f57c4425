package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/mediscribe/config"
	"github.com/oksasatya/mediscribe/internal/application"
	"github.com/oksasatya/mediscribe/internal/container"
	"github.com/oksasatya/mediscribe/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	ctx := context.Background()

	st, err := container.OpenStorage(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer func() { _ = st.Close() }()

	auth := application.NewAuthService(st.Users, helpers.NewJWTManager(cfg.JWTSecret, cfg.AccessTTL), logger)

	email := "doctor@mediscribe.test"
	password := "doctor123"
	name := "Dr. Demo"

	u, err := auth.Register(ctx, email, password, name)
	if errors.Is(err, application.ErrDuplicateIdentity) {
		fmt.Printf("user already exists: email=%s\n", email)
		return
	}
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%d email=%s name=%s password=%s\n", u.ID, email, name, password)
}
