// Package docstore implements the domain repositories as JSON documents in a
// storage.Store. Each repository owns one key holding a JSON array.
package docstore

// Storage keys of the persisted documents.
const (
	UsersKey   = "bloomy_users"
	OrdersKey  = "bloomy_orders"
	CartKey    = "bloomy_cart"
	SessionKey = "bloomy_session"
)
