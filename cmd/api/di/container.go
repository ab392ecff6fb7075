package di

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"wallet-account-service/cmd/api/infrastructure"
	"wallet-account-service/internal/adapter/auth"
	"wallet-account-service/internal/adapter/db/postgres"
	ginhandler "wallet-account-service/internal/adapter/gin/handler"
	"wallet-account-service/internal/config"
	domain "wallet-account-service/internal/domain/account"
	"wallet-account-service/internal/usecase/account"
	"wallet-account-service/internal/usecase/session"
	"wallet-account-service/internal/usecase/wallet"
	redisclient "wallet-account-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	DB             *gorm.DB
	RedisClient    *redisclient.Client
	AccountUC      *account.Usecase
	WalletEngine   *wallet.Engine
	SessionCache   *session.Cache
	AccountHandler *ginhandler.AccountHandler
	WalletHandler  *ginhandler.WalletHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	authService := auth.NewService(
		db,
		rdb.Client,
		time.Duration(cfg.Redis.SessionTTLSecs)*time.Second,
		l,
	)

	accountRepo := postgres.NewAccountRepoPG(db, l)
	notificationRepo := postgres.NewNotificationRepoPG(db, l)

	accountUC := account.New(accountRepo, notificationRepo, authService, cfg.Wallet.StartingBalance, l)

	sessionCache := session.New(accountUC, demoFallback(cfg), l)

	walletEngine := wallet.New(accountRepo, notificationRepo, sessionCache, l)

	accountHandler := ginhandler.NewAccountHandler(accountUC, sessionCache, l)
	walletHandler := ginhandler.NewWalletHandler(walletEngine, sessionCache, l)

	return &Container{
		Config:         cfg,
		Logger:         l,
		DB:             db,
		RedisClient:    rdb,
		AccountUC:      accountUC,
		WalletEngine:   walletEngine,
		SessionCache:   sessionCache,
		AccountHandler: accountHandler,
		WalletHandler:  walletHandler,
	}, nil
}

// demoFallback builds the fallback identity substituted when no session
// exists. Enabled only by explicit configuration; never in production.
func demoFallback(cfg *config.Config) *domain.Account {
	if !cfg.Wallet.DemoMode {
		return nil
	}
	username, _, _ := strings.Cut(cfg.Wallet.DemoUserEmail, "@")
	return &domain.Account{
		ID:         cfg.Wallet.DemoUserID,
		Email:      cfg.Wallet.DemoUserEmail,
		FullName:   cfg.Wallet.DemoUserFullName,
		Username:   strings.ToLower(username),
		IsAdmin:    true,
		IsVerified: true,
		Balance:    cfg.Wallet.DemoUserBalance,
	}
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
