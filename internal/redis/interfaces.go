package redis

import (
	"metro/internal/middleware"
	"metro/internal/session"
)

// Ensure concrete types implement interfaces.
var (
	_ session.Store            = (*SessionStore)(nil)
	_ session.Locker           = (*LockStore)(nil)
	_ middleware.ResponseCache = (*ResponseCache)(nil)
)
