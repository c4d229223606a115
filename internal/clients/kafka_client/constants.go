package kafka_client

import "time"

const (
	KAFKA_TOPIC_REVIEW_BATCHES    = "review-batches"    // dealer review batches awaiting analysis
	KAFKA_TOPIC_SENTIMENT_RESULTS = "sentiment-results" // validated sentiment records per batch
)

const (
	MAX_RETRIES = 5
	RETRY_DELAY = 2 * time.Second
)
