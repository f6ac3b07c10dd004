package di

import (
	"context"

	"communityapp/application/ports"
	"communityapp/infrastructure/config"
	"communityapp/infrastructure/email"
	"communityapp/infrastructure/persistence/dynamodb"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration. When a local DynamoDB
// endpoint is configured, static dummy credentials are used so no real
// AWS account is needed in development.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	if cfg.DynamoDBEndpoint != "" {
		return awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.AWSRegion),
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider("local", "local", ""),
			),
		)
	}
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	if cfg.DynamoDBEndpoint != "" {
		return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		})
	}
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvidePersonRepository creates a person repository
func ProvidePersonRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.PersonRepository {
	return dynamodb.NewPersonRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideGatheringRepository creates a gathering repository
func ProvideGatheringRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.GatheringRepository {
	return dynamodb.NewGatheringRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideEmailRepository creates an email send record repository
func ProvideEmailRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.EmailRepository {
	return dynamodb.NewEmailRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideMailer creates the outbound email adapter
func ProvideMailer(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) ports.Mailer {
	return email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
	}, awsCfg, logger)
}
