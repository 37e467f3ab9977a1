// Package notify publishes receipt events to a message broker after a
// successful submission. Delivery is best-effort; callers log failures and
// move on.
package notify
