// Package store holds the storefront's product listing and cart state.
//
// State changes only through actions passed to Dispatch (or the helper
// methods wrapping them). Actions run through the middleware chain and
// then the reducer, which updates the state under a lock and notifies
// subscribers with a snapshot. Middleware never runs with the lock held.
//
// FetchProducts and FetchCategories follow an async lifecycle: they
// dispatch "<type>/pending", call the catalog service and then dispatch
// "<type>/fulfilled" or "<type>/rejected". Each call takes a sequence
// token; only the most recently issued token may commit, so a slow
// response for an old query never overwrites a newer one.
//
// With a CacheIndex configured, FetchProducts skips the network when the
// store already shows the requested page and the shared response cache
// still holds it.
package store
