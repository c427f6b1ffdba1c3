package domain

// DispatchStatus classifies the aggregate outcome of a broadcast.
type DispatchStatus string

const (
	// DispatchSuccess means every submission succeeded, or there was
	// nothing to deliver.
	DispatchSuccess DispatchStatus = "success"
	// DispatchPartialFailure means some submissions failed and at least
	// one failure was a provider-reported invalid token.
	DispatchPartialFailure DispatchStatus = "partial_failure"
	// DispatchProviderFailure means submissions failed without any
	// invalid-token signal, pointing at the provider rather than stale
	// registrations.
	DispatchProviderFailure DispatchStatus = "provider_failure"
)

// PushOutcome records one device token's submission result.
type PushOutcome struct {
	Token        string
	StatusCode   int
	ResponseBody string
	Err          string
}

// Delivered reports whether the HTTP exchange with the provider
// succeeded. A 2xx answer can still carry a per-token rejection in its
// body; the dispatcher classifies those separately.
func (o PushOutcome) Delivered() bool {
	return o.Err == "" && o.StatusCode >= 200 && o.StatusCode < 300
}

// DispatchResult aggregates per-token outcomes of a broadcast. The caller
// owns pruning InvalidTokens from device registrations; the dispatcher
// never mutates registration state.
type DispatchResult struct {
	Status        DispatchStatus
	Detail        string
	Outcomes      []PushOutcome
	InvalidTokens []string
}
