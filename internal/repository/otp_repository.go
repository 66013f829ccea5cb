package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/fitfactory/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// OTPRepository keeps at most one OTP item per email. Items carry a TTL so
// DynamoDB eventually sweeps abandoned codes; expiry itself is enforced by
// the caller against ExpiresAt.
type OTPRepository struct {
	client    DynamoDBAPI
	tableName string
	logger    *logrus.Logger
}

func NewOTPRepository(client DynamoDBAPI, tableName string, logger *logrus.Logger) *OTPRepository {
	return &OTPRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Store writes the OTP for otpData.Email, replacing any previous one.
func (r *OTPRepository) Store(ctx context.Context, otpData models.OTPData) error {
	item, err := attributevalue.MarshalMap(otpData)
	if err != nil {
		return fmt.Errorf("failed to marshal OTP data: %w", err)
	}
	item["PK"] = &types.AttributeValueMemberS{Value: models.OTPPK(otpData.Email)}
	item["SK"] = &types.AttributeValueMemberS{Value: models.MetadataSK}
	item[ttlAttribute] = &types.AttributeValueMemberN{Value: strconv.FormatInt(otpData.ExpiresAt.Unix(), 10)}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to store OTP in DynamoDB")
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	return nil
}

// Get returns the stored OTP for email, or ErrNotFound.
func (r *OTPRepository) Get(ctx context.Context, email string) (*models.OTPData, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            itemKey(models.OTPPK(email), models.MetadataSK),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to get OTP from DynamoDB")
		return nil, fmt.Errorf("failed to get OTP: %w", err)
	}

	if result.Item == nil {
		return nil, ErrNotFound
	}

	var otpData models.OTPData
	if err := attributevalue.UnmarshalMap(result.Item, &otpData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal OTP data: %w", err)
	}

	return &otpData, nil
}

// Delete removes whatever OTP is stored for email. Deleting a missing item
// is not an error.
func (r *OTPRepository) Delete(ctx context.Context, email string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       itemKey(models.OTPPK(email), models.MetadataSK),
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to delete OTP from DynamoDB")
		return fmt.Errorf("failed to delete OTP: %w", err)
	}

	return nil
}

// DeleteIfHash removes the OTP for email only while it is still the record
// identified by otpHash. It returns ErrNotFound when the record was already
// consumed or replaced by a newer one.
func (r *OTPRepository) DeleteIfHash(ctx context.Context, email, otpHash string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 itemKey(models.OTPPK(email), models.MetadataSK),
		ConditionExpression: aws.String("otp_hash = :hash"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":hash": &types.AttributeValueMemberS{Value: otpHash},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ErrNotFound
		}
		r.logger.WithError(err).Error("Failed to consume OTP in DynamoDB")
		return fmt.Errorf("failed to delete OTP: %w", err)
	}

	return nil
}
