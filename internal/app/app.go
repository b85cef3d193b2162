// Package app wires settings, clients and handlers for every entry point.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"portfolio-api/internal/config"
	"portfolio-api/internal/db"
	"portfolio-api/internal/handlers"
	"portfolio-api/internal/logger"
	"portfolio-api/internal/notify"
	"portfolio-api/internal/portfolio"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// App holds the process-wide clients. It is built once per process (or per
// Lambda cold start) and shared by every request.
type App struct {
	Settings   config.Settings
	Log        *slog.Logger
	AWS        aws.Config
	Store      *db.PortfolioStore
	Validator  *portfolio.Validator
	Portfolios *handlers.Portfolios
}

// Bootstrap loads settings, overlays Parameter Store values when
// CONFIG_SSM_PATH is set, and builds the AWS clients.
func Bootstrap(ctx context.Context) (*App, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if settings.ParameterPath != "" {
		cfg, err := db.LoadAWSConfig(ctx, settings.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		settings, err = config.WithParameterStore(ctx, ssm.NewFromConfig(cfg), settings)
		if err != nil {
			return nil, fmt.Errorf("load parameters: %w", err)
		}
	}

	log := logger.Init(settings.IsDevelopment(), settings.LogLevel)

	cfg, err := db.LoadAWSConfig(ctx, settings.AWS.Region)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var publisher notify.SNSAPI
	if settings.Events.TopicArn != "" {
		publisher = sns.NewFromConfig(cfg)
	}

	a := New(settings, log, db.NewDynamoClient(cfg, settings.AWS.DynamoEndpoint), publisher)
	a.AWS = cfg
	return a, nil
}

// New builds the store and handlers from already constructed clients.
// publisher may be nil when no events topic is configured.
func New(settings config.Settings, log *slog.Logger, ddb db.DynamoAPI, publisher notify.SNSAPI) *App {
	store := db.NewPortfolioStore(ddb, settings.DynamoDB.TableName, log)
	validator := portfolio.NewValidator(settings.Limits)

	var notifier notify.Notifier = notify.Nop{}
	if publisher != nil {
		notifier = notify.New(publisher, settings.Events.TopicArn)
	}

	log.Debug("portfolio api configured",
		"env", settings.Env,
		"table", settings.DynamoDB.TableName,
		"region", settings.AWS.Region,
		"events", settings.Events.TopicArn != "",
	)

	return &App{
		Settings:   settings,
		Log:        log,
		Store:      store,
		Validator:  validator,
		Portfolios: handlers.NewPortfolios(store, validator, notifier, log),
	}
}
