package gitkv

// Hooks are optional per-table interceptors. Each function must be pure:
// no I/O, no calls back into the table. Nil fields default to identity
// transforms and a no-op notification.
type Hooks struct {
	// BeforeGet transforms a value on the read path. Receives nil for
	// missing keys.
	BeforeGet func(key string, value any) any

	// BeforeSet transforms a value on the write path, before it enters the
	// cache.
	BeforeSet func(key string, value any) any

	// AfterConnect runs on its own goroutine after the table's initial
	// connect succeeds.
	AfterConnect func()
}

func (h Hooks) applyGet(key string, value any) any {
	if h.BeforeGet == nil {
		return value
	}
	return h.BeforeGet(key, value)
}

func (h Hooks) applySet(key string, value any) any {
	if h.BeforeSet == nil {
		return value
	}
	return h.BeforeSet(key, value)
}
