package middleware

import "github.com/goliatone/go-storefront-cache/store"

// Lifecycle keeps the loading flags and error message in step with async
// actions. Pending starts loading; fulfilled and rejected stop it, the
// latter recording the rejection message. Each async base drives its own
// flag. Follow-up actions carry the fetch token, so a superseded fetch can
// not touch the flags. Discarded actions are ignored.
func Lifecycle() store.Middleware {
	return func(api store.API) func(next store.DispatchFunc) store.DispatchFunc {
		return func(next store.DispatchFunc) store.DispatchFunc {
			return func(a store.Action) bool {
				if !next(a) {
					return false
				}

				base, stage, ok := store.Lifecycle(a.Type)
				if !ok {
					return true
				}

				switch stage {
				case "pending":
					api.Dispatch(a.Follow(store.LoadingFor(base, true)))
				case "fulfilled":
					api.Dispatch(a.Follow(store.LoadingFor(base, false)))
				case "rejected":
					api.Dispatch(a.Follow(store.ErrorFor(base, a.ErrorMessage())))
				}
				return true
			}
		}
	}
}
