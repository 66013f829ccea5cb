package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/fitfactory/backend/internal/models"
	"github.com/sirupsen/logrus"
)

type UserRepository struct {
	client    DynamoDBAPI
	tableName string
	logger    *logrus.Logger
}

func NewUserRepository(client DynamoDBAPI, tableName string, logger *logrus.Logger) *UserRepository {
	return &UserRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            itemKey(models.UserPK(id), models.MetadataSK),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to get user from DynamoDB")
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if result.Item == nil {
		return nil, ErrNotFound
	}

	var user models.User
	if err := attributevalue.UnmarshalMap(result.Item, &user); err != nil {
		r.logger.WithError(err).Error("Failed to unmarshal user from DynamoDB")
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getByGuard(ctx, models.UserEmailPK(email))
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.getByGuard(ctx, models.UserPhonePK(phone))
}

// getByGuard resolves a uniqueness guard item to the user it points at.
func (r *UserRepository) getByGuard(ctx context.Context, pk string) (*models.User, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            itemKey(pk, models.MetadataSK),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to get user guard from DynamoDB")
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if result.Item == nil {
		return nil, ErrNotFound
	}

	idAttr, ok := result.Item["UserID"].(*types.AttributeValueMemberS)
	if !ok || idAttr.Value == "" {
		return nil, fmt.Errorf("guard item %s has no UserID", pk)
	}

	return r.GetByID(ctx, idAttr.Value)
}

// Create writes the user together with its email and phone guard items in a
// single transaction, so uniqueness holds even when two signups race.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		r.logger.WithError(err).Error("Failed to marshal user for DynamoDB")
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	item["PK"] = &types.AttributeValueMemberS{Value: user.GetPK()}
	item["SK"] = &types.AttributeValueMemberS{Value: user.GetSK()}

	notExists := aws.String("attribute_not_exists(PK)")
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                item,
				ConditionExpression: notExists,
			}},
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                guardItem(models.UserEmailPK(user.Email), user.ID),
				ConditionExpression: notExists,
			}},
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                guardItem(models.UserPhonePK(user.Phone), user.ID),
				ConditionExpression: notExists,
			}},
		},
	})
	if err != nil {
		if conflict := transactionConflict(err); conflict != nil {
			return conflict
		}
		r.logger.WithError(err).Error("Failed to create user in DynamoDB")
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func guardItem(pk, userID string) map[string]types.AttributeValue {
	item := itemKey(pk, models.MetadataSK)
	item["UserID"] = &types.AttributeValueMemberS{Value: userID}
	return item
}

// transactionConflict maps the cancellation reasons of the Create transaction
// onto uniqueness errors. Reasons are positional: user, email guard, phone guard.
func transactionConflict(err error) error {
	var canceled *types.TransactionCanceledException
	if !errors.As(err, &canceled) {
		return nil
	}

	conflicts := []error{ErrUserExists, ErrEmailTaken, ErrPhoneTaken}
	for i, reason := range canceled.CancellationReasons {
		if i >= len(conflicts) {
			break
		}
		if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
			return conflicts[i]
		}
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	updatedAt, err := attributevalue.Marshal(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 itemKey(models.UserPK(id), models.MetadataSK),
		UpdateExpression:    aws.String("SET password_hash = :hash, updated_at = :updated_at"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":hash":       &types.AttributeValueMemberS{Value: passwordHash},
			":updated_at": updatedAt,
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ErrNotFound
		}
		r.logger.WithError(err).Error("Failed to update password in DynamoDB")
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

func (r *UserRepository) UpdateSubscription(ctx context.Context, id string, sub models.Subscription) (*models.User, error) {
	subValue, err := attributevalue.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal subscription: %w", err)
	}
	updatedAt, err := attributevalue.Marshal(time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	result, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 itemKey(models.UserPK(id), models.MetadataSK),
		UpdateExpression:    aws.String("SET subscription = :sub, updated_at = :updated_at"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sub":        subValue,
			":updated_at": updatedAt,
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, ErrNotFound
		}
		r.logger.WithError(err).Error("Failed to update subscription in DynamoDB")
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	var user models.User
	if err := attributevalue.UnmarshalMap(result.Attributes, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return &user, nil
}

// List returns every user, oldest first, with the password hash cleared.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("begins_with(PK, :pk_prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk_prefix": &types.AttributeValueMemberS{Value: models.UserPKPrefix()},
		},
	})

	users := []models.User{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			r.logger.WithError(err).Error("Failed to scan users in DynamoDB")
			return nil, fmt.Errorf("failed to list users: %w", err)
		}

		var batch []models.User
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal users: %w", err)
		}
		users = append(users, batch...)
	}

	for i := range users {
		users[i].PasswordHash = ""
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return users, nil
}
