package ai

import "errors"

// Gateway error taxonomy. Connectivity and auth problems are fatal for
// the whole turn; everything else is fatal for the current call only
// and goes through the retry controller.
var (
	// ErrConnectivity means the provider host is unreachable. Gateways
	// wrap it with a remediation hint for the user.
	ErrConnectivity = errors.New("AI provider is unreachable")

	// ErrTimeout is a per-call deadline expiry, distinct from a refused
	// connection so callers can retry it.
	ErrTimeout = errors.New("AI request timed out")

	// ErrAuth covers HTTP 401 and a missing API key.
	ErrAuth = errors.New("AI provider rejected credentials")

	// ErrQuota is HTTP 402, the account balance is exhausted.
	ErrQuota = errors.New("AI provider quota exhausted")

	// ErrRateLimit is HTTP 429.
	ErrRateLimit = errors.New("AI provider rate limit hit")

	// ErrProvider is any other provider-side failure.
	ErrProvider = errors.New("AI provider request failed")

	// ErrEmptyResponse means the call succeeded but returned no content.
	ErrEmptyResponse = errors.New("AI returned an empty response")

	// ErrNoJSONFound means no parseable JSON could be recovered from the
	// model output by any extraction stage.
	ErrNoJSONFound = errors.New("no valid JSON found in AI response")
)

// IsFatal reports whether err must abort the turn instead of being
// retried. Connectivity needs operator action and auth/config problems
// never fix themselves between attempts.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConnectivity) || errors.Is(err, ErrAuth)
}
