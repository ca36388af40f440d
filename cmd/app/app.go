package app

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/chamada-app/chamadactl/internal/cli"
	"github.com/chamada-app/chamadactl/internal/config"
	"github.com/chamada-app/chamadactl/internal/localstate"
	"github.com/chamada-app/chamadactl/internal/logger"
	"github.com/chamada-app/chamadactl/internal/repository"
	"github.com/chamada-app/chamadactl/internal/repository/rest"
	"github.com/chamada-app/chamadactl/internal/service"
)

func Start() error {
	configPath := os.Getenv("CHAMADA_CONFIG")
	if configPath == "" {
		configPath = "./cmd/app/config.yml"
	}

	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.App.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	store, err := localstate.Open(conf.LocalState.Path)
	if err != nil {
		return fmt.Errorf("failed to open local state -> %w", err)
	}

	client := rest.NewClient(conf.Backend.BaseURL, conf.Backend.Timeout)

	authRepo := repository.NewAuthRepository(client)
	chamadaRepo := repository.NewChamadaRepository(client)
	presenceRepo := repository.NewPresenceRepository(client)

	authSvc := service.NewAuthService(authRepo, store)
	chamadaSvc := service.NewChamadaService(chamadaRepo, conf.App.FrontendBaseURL)
	presenceSvc := service.NewPresenceService(presenceRepo)

	app := cli.NewApp(conf, store, authSvc, chamadaSvc, presenceSvc, presenceRepo)

	if err = app.RootCommand().Execute(); err != nil {
		zap.L().Debug("command failed", zap.Error(err))
		return err
	}

	return nil
}
