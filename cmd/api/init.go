package main

import (
	"context"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/session"
)

// initMetrics initialises the meter provider and every package's instruments.
func initMetrics(ctx context.Context, cfg config.Config) (func(context.Context) error, error) {
	shutdown, err := observability.InitMetrics(ctx, cfg.ServiceName, cfg.Telemetry.OTLPEnabled)
	if err != nil {
		return nil, err
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, err
	}
	if err := session.InitMetrics(); err != nil {
		return nil, err
	}

	return shutdown, nil
}
