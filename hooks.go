package listset

// Test hooks (kept separate so instrumentation doesn't clutter logic).
// They must not block or mutate state in ways production code relies on.
var (
	// addBeforeLinkHook runs between locate and the linking CAS in Add.
	addBeforeLinkHook func(pred, succ any)

	// removeAfterMarkHook runs after a successful mark in Remove. Returning true
	// skips the remover's unlink attempt and leaves the tombstone to helpers.
	removeAfterMarkHook func(target any) bool

	// locateHelpHook runs before locate tries to unlink a tombstoned node.
	locateHelpHook func(pred, succ any)
)
