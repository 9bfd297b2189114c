// Package task implements the asynchronous task lifecycle: submission of AI
// work onto the queue, status and result lookups, cancellation, and the
// worker callback path that drives tasks through the state machine
// (PENDING -> RUNNING -> COMPLETED | FAILED, with CANCELLED reachable from
// any non-terminal state).
package task
