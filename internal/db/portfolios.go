package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"portfolio-api/internal/apperrors"
	"portfolio-api/internal/portfolio"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MsgNotFound is returned for ids with no record.
const MsgNotFound = "Portfolio not found"

// DynamoAPI is the part of *dynamodb.Client the store uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// PortfolioStore maps portfolio operations onto single DynamoDB calls
// against one table keyed by "id". It performs no retries of its own and no
// conditional writes.
type PortfolioStore struct {
	client DynamoAPI
	table  string
	log    *slog.Logger
	now    func() time.Time
}

// NewPortfolioStore builds a store over table.
func NewPortfolioStore(client DynamoAPI, table string, log *slog.Logger) *PortfolioStore {
	if log == nil {
		log = slog.Default()
	}
	return &PortfolioStore{
		client: client,
		table:  table,
		log:    log,
		now:    time.Now,
	}
}

func keyOf(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

// Put writes p unconditionally, overwriting any record with the same id.
func (s *PortfolioStore) Put(ctx context.Context, p portfolio.Portfolio) error {
	av, err := attributevalue.MarshalMap(p)
	if err != nil {
		return apperrors.Storage(fmt.Errorf("marshal portfolio: %w", err))
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		s.log.Error("dynamodb put failed", "table", s.table, "id", p.ID, "error", err)
		return apperrors.Storage(err)
	}
	return nil
}

// Get returns the record for id, or a not-found error when there is none.
func (s *PortfolioStore) Get(ctx context.Context, id string) (portfolio.Portfolio, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       keyOf(id),
	})
	if err != nil {
		s.log.Error("dynamodb get failed", "table", s.table, "id", id, "error", err)
		return portfolio.Portfolio{}, apperrors.Storage(err)
	}
	if len(out.Item) == 0 {
		return portfolio.Portfolio{}, apperrors.NotFound(MsgNotFound)
	}

	var p portfolio.Portfolio
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return portfolio.Portfolio{}, apperrors.Storage(fmt.Errorf("unmarshal portfolio: %w", err))
	}
	return p.Normalize(s.now()), nil
}

// Scan returns every record in one Scan call. There is no pagination: if
// DynamoDB truncates the page (1 MB) the remainder is not fetched and a
// warning is logged.
func (s *PortfolioStore) Scan(ctx context.Context) ([]portfolio.Portfolio, error) {
	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})
	if err != nil {
		s.log.Error("dynamodb scan failed", "table", s.table, "error", err)
		return nil, apperrors.Storage(err)
	}
	if len(out.LastEvaluatedKey) > 0 {
		s.log.Warn("dynamodb scan truncated, list result is incomplete", "table", s.table, "returned", len(out.Items))
	}

	items, err := s.unmarshalList(out.Items)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return items, nil
}

// ScanEach walks the whole table page by page and calls fn for each record.
// It stops at the first error fn returns.
func (s *PortfolioStore) ScanEach(ctx context.Context, fn func(portfolio.Portfolio) error) error {
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return apperrors.Storage(fmt.Errorf("dynamodb scan %s: %w", s.table, err))
		}

		items, err := s.unmarshalList(out.Items)
		if err != nil {
			return apperrors.Storage(err)
		}
		for _, p := range items {
			if err := fn(p); err != nil {
				return err
			}
		}

		if len(out.LastEvaluatedKey) == 0 {
			return nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// Update sets the provided fields plus updatedAt and returns the full record
// as stored afterwards. It does not check existence; callers do.
func (s *PortfolioStore) Update(ctx context.Context, id string, in portfolio.UpdateInput, updatedAt string) (portfolio.Portfolio, error) {
	sets := make([]string, 0, 4)
	names := map[string]string{}
	values := map[string]types.AttributeValue{}

	if in.Name != nil {
		sets = append(sets, "#name = :name")
		names["#name"] = "name"
		values[":name"] = &types.AttributeValueMemberS{Value: *in.Name}
	}
	if in.Description != nil {
		sets = append(sets, "#description = :description")
		names["#description"] = "description"
		values[":description"] = &types.AttributeValueMemberS{Value: *in.Description}
	}
	if in.Skills != nil {
		skills, err := attributevalue.Marshal(*in.Skills)
		if err != nil {
			return portfolio.Portfolio{}, apperrors.Storage(fmt.Errorf("marshal skills: %w", err))
		}
		sets = append(sets, "#skills = :skills")
		names["#skills"] = "skills"
		values[":skills"] = skills
	}

	sets = append(sets, "#updatedAt = :updatedAt")
	names["#updatedAt"] = "updatedAt"
	values[":updatedAt"] = &types.AttributeValueMemberS{Value: updatedAt}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       keyOf(id),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		s.log.Error("dynamodb update failed", "table", s.table, "id", id, "error", err)
		return portfolio.Portfolio{}, apperrors.Storage(err)
	}

	var p portfolio.Portfolio
	if err := attributevalue.UnmarshalMap(out.Attributes, &p); err != nil {
		return portfolio.Portfolio{}, apperrors.Storage(fmt.Errorf("unmarshal portfolio: %w", err))
	}
	return p.Normalize(s.now()), nil
}

// Delete removes the record for id unconditionally.
func (s *PortfolioStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       keyOf(id),
	})
	if err != nil {
		s.log.Error("dynamodb delete failed", "table", s.table, "id", id, "error", err)
		return apperrors.Storage(err)
	}
	return nil
}

func (s *PortfolioStore) unmarshalList(raw []map[string]types.AttributeValue) ([]portfolio.Portfolio, error) {
	var items []portfolio.Portfolio
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, fmt.Errorf("unmarshal portfolios: %w", err)
	}

	now := s.now()
	out := make([]portfolio.Portfolio, 0, len(items))
	for _, p := range items {
		out = append(out, p.Normalize(now))
	}
	return out, nil
}
