// Package eventgroups persists the signed event batches received from event
// providers.
//
// An event group's JSON payload is immutable once stored. Only its expiry
// date (server-side downgrade) and draft flag (promotion after a successful
// issuance) are updated in place. Groups are removed in bulk: by event kind
// and provider when a newer batch supersedes them, by draft flag, by expiry
// date or together with the wallet.
//
// The SQLite implementation runs over a dbx.DBTX, so callers decide whether a
// call is part of a wider transaction.
package eventgroups
