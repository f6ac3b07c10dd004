// Command create-table provisions the single table and its secondary
// indexes. Intended for local development and first-time environment
// setup; it is a no-op when the table already exists.
package main

import (
	"context"
	"errors"
	"log"

	"communityapp/infrastructure/config"
	"communityapp/infrastructure/di"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Every GSI the query planner can select, plus the participant reverse
// lookup and the gathering timeline. All project the full item; the
// planner re-filters in memory, so partial projections would only save
// storage at the cost of a second fetch.
var indexes = []struct {
	name string
	pk   string
	sk   string
}{
	{"GSI_ByCompany", "GSI_ByCompany_PK", "GSI_ByCompany_SK"},
	{"GSI_ByJobTitle", "GSI_ByJobTitle_PK", "GSI_ByJobTitle_SK"},
	{"GSI_ByLocation", "GSI_ByLocation_PK", "GSI_ByLocation_SK"},
	{"GSI_ByHostedCount", "GSI_ByHostedCount_PK", "GSI_ByHostedCount_SK"},
	{"GSI_ByAttendedCount", "GSI_ByAttendedCount_PK", "GSI_ByAttendedCount_SK"},
	{"GSI_ByActivity", "GSI_ByActivity_PK", "GSI_ByActivity_SK"},
	{"GSI_GatheringParticipants", "GSI_GatheringParticipants_PK", "GSI_GatheringParticipants_SK"},
	{"GSI_GatheringsByDate", "GSI_GatheringsByDate_PK", "GSI_GatheringsByDate_SK"},
}

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	awsCfg, err := di.ProvideAWSConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to load AWS configuration: %v", err)
	}

	client := di.ProvideDynamoDBClient(awsCfg, cfg)

	attrs := []types.AttributeDefinition{
		{AttributeName: aws.String("PK"), AttributeType: types.ScalarAttributeTypeS},
		{AttributeName: aws.String("SK"), AttributeType: types.ScalarAttributeTypeS},
	}
	var gsis []types.GlobalSecondaryIndex
	for _, idx := range indexes {
		attrs = append(attrs,
			types.AttributeDefinition{AttributeName: aws.String(idx.pk), AttributeType: types.ScalarAttributeTypeS},
			types.AttributeDefinition{AttributeName: aws.String(idx.sk), AttributeType: types.ScalarAttributeTypeS},
		)
		gsis = append(gsis, types.GlobalSecondaryIndex{
			IndexName: aws.String(idx.name),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(idx.pk), KeyType: types.KeyTypeHash},
				{AttributeName: aws.String(idx.sk), KeyType: types.KeyTypeRange},
			},
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}

	_, err = client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:            aws.String(cfg.DynamoDBTable),
		BillingMode:          types.BillingModePayPerRequest,
		AttributeDefinitions: attrs,
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("PK"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("SK"), KeyType: types.KeyTypeRange},
		},
		GlobalSecondaryIndexes: gsis,
	})
	if err != nil {
		var exists *types.ResourceInUseException
		if errors.As(err, &exists) {
			log.Printf("Table %q already exists", cfg.DynamoDBTable)
			return
		}
		log.Fatalf("Failed to create table: %v", err)
	}

	log.Printf("Table %q created with %d indexes", cfg.DynamoDBTable, len(indexes))
}
