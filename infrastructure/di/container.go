package di

import (
	"context"

	"communityapp/application/ports"
	"communityapp/application/services"
	"communityapp/infrastructure/config"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	PersonRepo    ports.PersonRepository
	GatheringRepo ports.GatheringRepository
	EmailRepo     ports.EmailRepository
	Mailer        ports.Mailer

	PersonService    *services.PersonService
	GatheringService *services.GatheringService
	CampaignService  *services.CampaignService
}

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}

	awsCfg, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := ProvideDynamoDBClient(awsCfg, cfg)

	personRepo := ProvidePersonRepository(client, cfg, logger)
	gatheringRepo := ProvideGatheringRepository(client, cfg, logger)
	emailRepo := ProvideEmailRepository(client, cfg, logger)
	mailer := ProvideMailer(cfg, awsCfg, logger)

	return &Container{
		Config: cfg,
		Logger: logger,

		PersonRepo:    personRepo,
		GatheringRepo: gatheringRepo,
		EmailRepo:     emailRepo,
		Mailer:        mailer,

		PersonService:    services.NewPersonService(personRepo, logger),
		GatheringService: services.NewGatheringService(gatheringRepo, personRepo, logger),
		CampaignService:  services.NewCampaignService(personRepo, emailRepo, mailer, logger),
	}, nil
}
