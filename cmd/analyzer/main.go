package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spacesedan/reviewflow/config"
	"github.com/spacesedan/reviewflow/internal/clients"
	"github.com/spacesedan/reviewflow/internal/clients/kafka_client"
	"github.com/spacesedan/reviewflow/internal/consumers"
	"github.com/spacesedan/reviewflow/internal/db"
	"github.com/spacesedan/reviewflow/internal/logging"
	"github.com/spacesedan/reviewflow/internal/monitoring"
	"github.com/spacesedan/reviewflow/internal/resilience"
	"github.com/spacesedan/reviewflow/internal/sentiment"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	clients.InitValkey()
	defer clients.CloseValkey()
	db.InitDynamoDB()

	kafkaCfg := kafka_client.GetKafkaConfig()
	for {
		err := kafka_client.InitProducer(kafkaCfg)
		if err == nil {
			break
		}

		slog.Warn("Kafka init failed, retrying...", slog.String("error", err.Error()))
		time.Sleep(5 * time.Second)
	}
	defer kafka_client.CloseProducer()

	analyzerCfg := clients.GetAnalyzerConfig()
	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		FailureThreshold: analyzerCfg.BreakerThreshold,
		Cooldown:         analyzerCfg.BreakerCooldown,
	})
	client := clients.NewSentimentClient(analyzerCfg, breaker)
	pipeline := sentiment.NewPipeline(client, analyzerCfg.StrictLabels)

	upstreamHealthy := &atomic.Bool{}
	upstreamHealthy.Store(true)
	go monitoring.MonitorUpstreamHealth(ctx, client, upstreamHealthy)

	startMetricsServer(ctx)

	kafka_client.RegisterConsumer(kafka_client.KAFKA_TOPIC_REVIEW_BATCHES, consumers.WrapConsumer(
		consumers.NewReviewBatchConsumer(pipeline)).WithHealthCheck(upstreamHealthy).Handler())

	if err := kafka_client.StartConsumer(ctx, kafkaCfg); err != nil {
		slog.Error("[Main] Failed to start consumer",
			slog.String("error", err.Error()))
	}
}
