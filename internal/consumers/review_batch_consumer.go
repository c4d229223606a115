package consumers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/reviewflow/internal/clients"
	"github.com/spacesedan/reviewflow/internal/clients/kafka_client"
	"github.com/spacesedan/reviewflow/internal/db"
	"github.com/spacesedan/reviewflow/internal/models"
	"github.com/spacesedan/reviewflow/internal/monitoring"
	"github.com/spacesedan/reviewflow/internal/sentiment"
	"github.com/spacesedan/reviewflow/internal/utils"
)

var resultBuffer = utils.NewBatchBuffer[models.AnalysisResultRecord]()

// NewReviewBatchConsumer returns the consumer loop for the review-batches
// topic. Batch-level pipeline failures leave the offset uncommitted so the
// batch is redelivered and retried on a later round.
func NewReviewBatchConsumer(pipeline *sentiment.Pipeline) func(ctx context.Context, consumer *kafka.Consumer, health ...*atomic.Bool) {
	return func(ctx context.Context, consumer *kafka.Consumer, health ...*atomic.Bool) {
		iterator := kafka_client.NewKafkaMessageIterator(ctx, consumer)
		committer := kafka_client.NewCommitHandler(ctx, consumer)

		for {
			select {
			case <-ctx.Done():
				slog.Warn("[ReviewBatchConsumer] Consumer shutting down...")
				return
			default:
				msg, err := iterator.Next()
				if err != nil {
					utils.HandleConsumerError(err)
					continue
				}

				var batch models.ReviewBatch
				if err := utils.DeserializeFromJSON(msg.Value, &batch); err != nil {
					utils.HandleConsumerError(err)
					continue
				}

				utils.TrackMessage(batch.BatchID, msg)

				if !waitUntilHealthy(ctx, health) {
					return
				}

				items := prepareItems(ctx, batch)
				if len(items) == 0 {
					slog.Info("[ReviewBatchConsumer] Nothing to analyze in batch",
						slog.String("batch_id", batch.BatchID))
					commitBatch(committer, batch.BatchID)
					continue
				}

				records, errs := pipeline.Analyze(ctx, items)
				for _, e := range errs {
					slog.Warn("[ReviewBatchConsumer] Analysis error",
						slog.String("batch_id", batch.BatchID),
						slog.String("error", e))
				}

				// All-or-nothing failure: no records at all means the
				// upstream call or extraction failed; leave the offset
				// alone so the batch comes back.
				if len(records) == 0 {
					continue
				}

				checkDrift(batch, records)

				for _, record := range records {
					resultBuffer.Add(record)
				}
				flushResults(ctx, committer, batch)
			}
		}
	}
}

// prepareItems drops empty and already-processed reviews and flattens
// markdown before the batch goes upstream.
func prepareItems(ctx context.Context, batch models.ReviewBatch) []models.ReviewAnalysisItem {
	valkeyClient := clients.GetValkeyClient()

	var items []models.ReviewAnalysisItem
	for _, item := range batch.Items {
		if item.ReviewText == "" {
			slog.Warn("[ReviewBatchConsumer] Skipping review with empty text",
				slog.String("id", item.ID))
			continue
		}
		if valkeyClient.IsReviewProcessed(ctx, item.ID) {
			slog.Info("[ReviewBatchConsumer] Skipping already-processed review",
				slog.String("id", item.ID))
			continue
		}
		item.ReviewText = sentiment.CleanReviewText(item.ReviewText)
		items = append(items, item)
	}
	return items
}

func flushResults(ctx context.Context, committer *kafka_client.KafkaCommitHandler, batch models.ReviewBatch) {
	records := resultBuffer.GetAndClear()
	if len(records) == 0 {
		return
	}

	if err := db.BatchInsertSentimentRecords(ctx, batch, records); err != nil {
		slog.Error("[ReviewBatchConsumer] Failed to store sentiment records",
			slog.String("batch_id", batch.BatchID),
			slog.String("error", err.Error()))
		return
	}

	for i := 0; i < 3; i++ {
		err := kafka_client.PublishToKafka(kafka_client.KAFKA_TOPIC_SENTIMENT_RESULTS, batch.BatchID, records)
		if err == nil {
			break
		}
		slog.Warn("[ReviewBatchConsumer] Result publishing failed",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
		time.Sleep(2 * time.Second)
	}

	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}
	if err := clients.GetValkeyClient().MarkReviewsProcessed(ctx, ids); err != nil {
		slog.Warn("[ReviewBatchConsumer] Failed to mark reviews processed",
			slog.String("error", err.Error()))
	}

	commitBatch(committer, batch.BatchID)
}

func commitBatch(committer *kafka_client.KafkaCommitHandler, batchID string) {
	trackedMsg, found := utils.GetMessageForBatch(batchID)
	if !found {
		return
	}
	if err := committer.Commit(trackedMsg); err != nil {
		slog.Warn("[ReviewBatchConsumer] Failed to commit offset",
			slog.String("batch_id", batchID),
			slog.String("error", err.Error()))
	}
}

// checkDrift compares each upstream label against a local VADER polarity so
// silent upstream quality regressions show up on the dashboard.
func checkDrift(batch models.ReviewBatch, records []models.AnalysisResultRecord) {
	texts := make(map[string]string, len(batch.Items))
	for _, item := range batch.Items {
		texts[item.ID] = item.ReviewText
	}

	for _, record := range records {
		text, ok := texts[record.ID]
		if !ok || text == "" {
			continue
		}
		if sentiment.Disagrees(record.Sentiment, text) {
			slog.Warn("[ReviewBatchConsumer] Upstream label disagrees with local polarity",
				slog.String("id", record.ID),
				slog.String("sentiment", record.Sentiment))
			monitoring.SentimentDisagreementTotal.Inc()
		}
	}
}

// waitUntilHealthy blocks while the upstream health probe reports the
// sentiment endpoint down; returns false when the context is canceled.
func waitUntilHealthy(ctx context.Context, health []*atomic.Bool) bool {
	for _, h := range health {
		for !h.Load() {
			slog.Warn("[ReviewBatchConsumer] Upstream unhealthy, pausing consumption...")
			select {
			case <-ctx.Done():
				return false
			case <-time.After(5 * time.Second):
			}
		}
	}
	return true
}
