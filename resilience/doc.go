// Package resilience provides the two fault-tolerance patterns the bridge uses:
//
//   - Retry: opt-in retries of a bridge round trip with exponential backoff,
//     driven by the Retryable flag of host errors.
//   - Bulkhead: caps the number of HTTP exchanges a host keeps in flight.
//
// A bulkhead slot can outlive the call that took it, which is how the host
// holds a slot from fetch until the body is read or the request is canceled:
//
//	release, err := bh.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	go func() {
//	    defer release()
//	    // exchange
//	}()
package resilience
