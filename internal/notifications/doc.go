// Package notifications signals that a batch has finished.
//
// The terminal bell stands in for the desktop beep; an ntfy topic can be
// configured for push notifications. Delivery errors are returned to the
// caller, which logs them without failing the batch.
package notifications
