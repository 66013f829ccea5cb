package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/fitfactory/backend/internal/models"
	"github.com/sirupsen/logrus"
)

type ContactRepository struct {
	client    DynamoDBAPI
	tableName string
	logger    *logrus.Logger
}

func NewContactRepository(client DynamoDBAPI, tableName string, logger *logrus.Logger) *ContactRepository {
	return &ContactRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func (r *ContactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	item, err := attributevalue.MarshalMap(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal contact message: %w", err)
	}
	item["PK"] = &types.AttributeValueMemberS{Value: models.ContactPK(msg.ID)}
	item["SK"] = &types.AttributeValueMemberS{Value: models.MetadataSK}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to store contact message in DynamoDB")
		return fmt.Errorf("failed to store contact message: %w", err)
	}

	return nil
}
