package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/reviewflow/internal/clients"
	"github.com/spacesedan/reviewflow/internal/models"
	"github.com/spacesedan/reviewflow/internal/monitoring"
)

const REVIEW_SENTIMENT_TABLE_NAME = "ReviewSentiment"

// DynamoDB limit for BatchWriteItem.
const maxBatchSize = 25

var dbClient *dynamodb.Client

func InitDynamoDB() {
	dbClient = clients.GetDynamoDBClient()
}

// storedRecord is the table shape: one item per review, keyed by review id
// and batch id so the dashboard can fetch a whole batch at once.
type storedRecord struct {
	models.AnalysisResultRecord
	BatchID  string `dynamodbav:"batch_id"`
	DealerID string `dynamodbav:"dealer_id"`
	TTL      int64  `dynamodbav:"ttl"`
}

// BatchInsertSentimentRecords stores validated records for one analyzed
// batch, retrying unprocessed items with backoff.
func BatchInsertSentimentRecords(ctx context.Context, batch models.ReviewBatch, records []models.AnalysisResultRecord) error {
	if dbClient == nil {
		dbClient = clients.GetDynamoDBClient()
	}
	if len(records) == 0 {
		return nil
	}

	ttl := time.Now().Add(90 * 24 * time.Hour).Unix()

	for i := 0; i < len(records); i += maxBatchSize {
		select {
		case <-ctx.Done():
			slog.Warn("[DynamoDB] context canceled")
			return ctx.Err()
		default:
		}

		end := i + maxBatchSize
		if end > len(records) {
			end = len(records)
		}

		writeRequests := make([]types.WriteRequest, 0, maxBatchSize)
		for _, record := range records[i:end] {
			item, err := attributevalue.MarshalMap(storedRecord{
				AnalysisResultRecord: record,
				BatchID:              batch.BatchID,
				DealerID:             batch.DealerID,
				TTL:                  ttl,
			})
			if err != nil {
				slog.Error("[DynamoDB] Failed to marshal record",
					slog.String("id", record.ID),
					slog.String("error", err.Error()))
				continue
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		out, err := dbClient.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				REVIEW_SENTIMENT_TABLE_NAME: writeRequests,
			},
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Failed to batch write sentiment records: %w", err)
		}

		retryCount := 0
		backoff := 500 * time.Millisecond
		for len(out.UnprocessedItems) > 0 && retryCount < 3 {
			time.Sleep(backoff)
			backoff *= 2

			slog.Warn("[DynamoDB] Retrying unprocessed sentiment items...",
				slog.Int("attempt", retryCount+1),
				slog.Int("remaining", len(out.UnprocessedItems[REVIEW_SENTIMENT_TABLE_NAME])))

			out, err = dbClient.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: out.UnprocessedItems,
			})
			if err != nil {
				return fmt.Errorf("[DynamoDB] Retry error %w", err)
			}

			retryCount++
		}

		if len(out.UnprocessedItems) > 0 {
			slog.Error("[DynamoDB] Some sentiment items failed after retries",
				slog.Int("remaining", len(out.UnprocessedItems[REVIEW_SENTIMENT_TABLE_NAME])))
		}
	}

	monitoring.RecordsStoredTotal.Add(float64(len(records)))
	slog.Info("[DynamoDB] Successfully stored sentiment records",
		slog.String("batch_id", batch.BatchID),
		slog.Int("count", len(records)))

	return nil
}

// GetBatchRecords scans stored records for one batch id. Used by the
// dashboard-facing worker tooling, not by the pipeline itself.
func GetBatchRecords(ctx context.Context, batchID string) ([]models.AnalysisResultRecord, error) {
	if dbClient == nil {
		dbClient = clients.GetDynamoDBClient()
	}

	var records []models.AnalysisResultRecord
	input := &dynamodb.ScanInput{
		TableName:        aws.String(REVIEW_SENTIMENT_TABLE_NAME),
		FilterExpression: aws.String("batch_id = :b"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":b": &types.AttributeValueMemberS{Value: batchID},
		},
	}

	paginator := dynamodb.NewScanPaginator(dbClient, input)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Scan for batch records failed: %w", err)
		}
		var page []models.AnalysisResultRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			slog.Error("[DynamoDB] Unable to unmarshal record page", slog.String("error", err.Error()))
			return nil, err
		}
		records = append(records, page...)
	}

	slog.Info("[DynamoDB] Retrieved batch records",
		slog.String("batch_id", batchID),
		slog.Int("count", len(records)))
	return records, nil
}
