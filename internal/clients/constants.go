package clients

import "time"

const (
	USER_AGENT = "reviewflow-client/1.0 (+https://github.com/spacesedan/reviewflow)"

	// Shared HTTP transport bounds for upstream calls.
	MAX_CONNS_PER_HOST = 10
	MAX_IDLE_CONNS     = 10
	IDLE_CONN_TIMEOUT  = 90 * time.Second
	KEEP_ALIVE         = 30 * time.Second
)
