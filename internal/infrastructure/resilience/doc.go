/*
Package resilience provides the circuit breaker that guards suggestion
providers.

A provider that keeps failing or timing out is short-circuited for a while
so keystroke-driven queries stop paying for it; the aggregator treats the
rejection like any other provider failure and returns results without
suggestions.

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure]
	                                           v
	                                          Open

# Usage

	breaker := resilience.New("suggest-google", resilience.Settings{
		MaxRequests: 2,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool { return c.ConsecutiveFailures >= 5 },
	})

	items, err := resilience.Call(ctx, breaker, func(ctx context.Context) ([]string, error) {
		return fetch(ctx, q)
	})

Calls that end because their own context was cancelled are not counted:
cancellation comes from query supersession, not from the provider.
*/
package resilience
