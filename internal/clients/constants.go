package clients

import "time"

const (
	MAX_RETRIES      = 5
	INITIAL_BACKOFF  = 1 * time.Second
	MAX_BACKOFF      = 32 * time.Second
	DEFAULT_COOLDOWN = 30 * time.Second
	USER_AGENT       = "speechwall-analyzer/1.0 (+https://github.com/gkwang4912/speechwall)"
)
