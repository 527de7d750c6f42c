// Package main is an interactive terminal client for the suggestion gateway.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/capitalize-ai/gift-suggester/internal/client"
	"github.com/capitalize-ai/gift-suggester/internal/config"
	"github.com/capitalize-ai/gift-suggester/internal/lifecycle"
	"github.com/capitalize-ai/gift-suggester/pkg/logger"
)

func main() {
	cfg := config.Load()

	// The terminal owns stdout, so logs go to a file.
	log, err := logger.NewFile(cfg.LogLevel, cfg.ClientLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var program *tea.Program
	controller := lifecycle.New(
		client.NewGatewayClient(cfg.GatewayURL),
		log,
		lifecycle.WithListener(func(s lifecycle.State) {
			if program != nil {
				program.Send(stateMsg(s))
			}
		}),
	)

	log.Info("starting giftctl", zap.String("gateway", cfg.GatewayURL))

	program = tea.NewProgram(newModel(ctx, controller))
	if _, err := program.Run(); err != nil {
		log.Error("terminal client failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error running giftctl: %v\n", err)
		os.Exit(1)
	}
}
