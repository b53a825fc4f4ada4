// Package reminders fires user reminders ahead of session air times and
// carries the outbound mail surface the pipeline notifies users through.
// Message language is a per-call argument so concurrent dispatches never
// share template state.
package reminders
