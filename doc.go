// Package gitkv provides a key-value document store backed by a git hosting
// repository (GitHub or Gitea). Each table is one pretty-printed JSON file;
// reads are served from an in-memory cache and writes are coalesced into one
// commit per flush interval to stay clear of API rate limits.
//
// Basic usage:
//
//	db, _ := gitkv.Open("octocat/config-data", gitkv.WithToken(token))
//	users := db.Table("users.json", nil)
//
//	// Connect fetches (or lazily creates) every registered table.
//	if err := db.Connect(ctx); err != nil { ... }
//
//	// Writes are cache-immediate and remote-deferred.
//	pending, _ := users.Set("admin", map[string]any{"name": "a"})
//	v, _ := users.Get("admin") // sees the write right away
//
//	// Wait for the batched commit if durability matters here.
//	ok, _ := pending.Wait(ctx)
//
//	// Force eligible tables to commit now instead of on the timer.
//	db.Commit(ctx)
//
// With per-table hooks:
//
//	audit := db.Table("audit.json", &gitkv.Hooks{
//	    BeforeSet: func(key string, v any) any { return stamp(v) },
//	})
package gitkv
