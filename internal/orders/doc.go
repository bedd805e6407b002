// Package orders implements the order-management API client.
//
// The vendor exposes a single endpoint taking a form-encoded method name and
// JSON parameters. Only the three operations the agent needs are implemented:
// listing pending orders, listing an order's packages, and fetching a
// package's shipping label. A missing label is a valid "not ready" response,
// not an error.
package orders
