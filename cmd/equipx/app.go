package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"equipx_go/client"
	"equipx_go/config"
	"equipx_go/credential"
	"equipx_go/middleware"
	"equipx_go/services"
)

// app 命令共享的依赖
type app struct {
	cfg    *config.ClientConfig
	logger *zap.Logger
	creds  *credential.Provider
	api    *client.Client
	out    io.Writer
	in     io.Reader
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.GetClientConfig()

	if err := middleware.InitLogger(cfg.LogMode); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger := middleware.GetLogger()

	store, err := tokenStore(cfg)
	if err != nil {
		return nil, err
	}
	creds := credential.NewProvider(store, logger)
	if err := creds.Restore(ctx); err != nil {
		logger.Warn("could not restore credential", zap.Error(err))
	}

	api, err := client.New(cfg.APIBaseURL, creds,
		client.WithTimeout(cfg.HTTPTimeout),
		client.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		creds:  creds,
		api:    api,
		out:    os.Stdout,
		in:     os.Stdin,
	}, nil
}

// tokenStore 按配置选择凭证存储
func tokenStore(cfg *config.ClientConfig) (credential.Store, error) {
	switch cfg.TokenStore {
	case "memory":
		return credential.NewMemoryStore(), nil
	case "redis":
		if err := config.InitializeRedis(); err != nil {
			return nil, err
		}
		return credential.NewRedisStore(config.GetRedisClient(), cfg.TokenKey), nil
	case "file", "":
		return credential.NewFileStore(cfg.TokenFile, cfg.TokenKey), nil
	default:
		return nil, fmt.Errorf("unknown token store %q (want file, redis or memory)", cfg.TokenStore)
	}
}

func (a *app) close() {
	_ = config.CloseRedis()
	middleware.FlushLogger()
}

func (a *app) authService() *services.AuthService {
	return services.NewAuthService(a.api.Auth(), a.creds, a.logger)
}

func (a *app) listingManager() *services.ListingManager {
	return services.NewListingManager(a.api.Products(), a.creds, a.logger)
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami()
	case "listings", "search":
		return a.listings(ctx, args)
	case "create":
		return a.create(ctx, args)
	case "update":
		return a.update(ctx, args)
	case "sell":
		return a.transition(ctx, "sell", args)
	case "archive":
		return a.transition(ctx, "archive", args)
	case "delete":
		return a.delete(ctx, args)
	case "chat":
		return a.chat(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
}
