/*
Package resilience provides a circuit breaker for calls to outside
services.

# Overview

The desktop talks to services it does not control, like the progression
backend that records level and app events. When such a service dies or
slows down, every report would otherwise block, retry, and time out in
turn. The breaker watches outcomes and, past a failure threshold, fails
calls immediately until the service proves healthy again.

# Usage

	breaker := resilience.New("progress", resilience.Settings{
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 10
		},
		OnStateChange: func(name string, from, to resilience.State) {
			log.Printf("breaker %s: %s -> %s", name, from, to)
		},
	})

	result, err := breaker.Execute(func() (interface{}, error) {
		return client.Call()
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open

Closed passes requests through and counts outcomes over a rolling
interval. Open rejects with ErrCircuitOpen until the timeout elapses.
Half-open admits up to MaxRequests probes; one failure reopens the
circuit, a full run of successes closes it.
*/
package resilience
