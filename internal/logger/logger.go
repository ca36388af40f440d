package logger

import (
	"go.uber.org/zap"
)

// Init builds the process-wide logger and installs it via
// zap.ReplaceGlobals. Call sites log through zap.L().
func Init(environment string) error {
	var logger *zap.Logger
	var err error

	if environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}

	zap.ReplaceGlobals(logger)

	return nil
}
