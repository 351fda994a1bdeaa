// Package store is the wallet's credential store: event groups, green cards
// with their origins and credentials, removed-event audit records and the
// holder secret key, all kept in one SQLite database.
//
// Every mutating call runs in its own transaction. Atomically binds a series
// of calls to a single transaction.
package store
