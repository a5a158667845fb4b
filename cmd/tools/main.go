package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Errorf("failed to set up logger: %w", err))
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := newRootCmd().Execute(); err != nil {
		zap.S().Errorf("eureka-tools: %v", err)
		os.Exit(1)
	}
}
