package httptransport

import "expvar"

var (
	// keyed by error code
	errorResponsesTotal = expvar.NewMap("http_error_responses_total")

	accountCommandsTotal = expvar.NewMap("http_account_commands_total")
)
