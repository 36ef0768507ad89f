// Package resilience retries idempotent calls with capped exponential
// backoff. The proxy itself never retries a store call; callers such as
// the Go client decide what is safe to repeat.
package resilience
