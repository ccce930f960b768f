package clients

import "time"

const (
	SUMMARY_ENDPOINT        = "/get_summary"
	ENTITY_SUMMARY_PREFIX   = "/get_summary_"
	ANALYZE_SINGLE_ENDPOINT = "/analyze_single_tweet"
	DEFAULT_TIMEOUT         = 10 * time.Second
	MAX_ERROR_BODY          = 4 << 10
	USER_AGENT              = "ballotboard-client/1.0 (+https://github.com/spacesedan/ballotboard)"
	GENERIC_FAILURE_MESSAGE = "Something went wrong. Try again."
)
