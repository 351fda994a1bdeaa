package models

import "time"

// MainWalletLabel is the label of the single per-device wallet.
const MainWalletLabel = "main"

type Wallet struct {
	ID        string
	Label     string
	CreatedAt time.Time
}

// EventGroup is one provider's signed batch of events. Only ExpiryDate and
// IsDraft change after insertion.
type EventGroup struct {
	ID                 string
	WalletID           string
	Type               EventMode
	ProviderIdentifier string
	JSONData           []byte
	ExpiryDate         *time.Time
	IsDraft            bool
	CreatedAt          time.Time
}

// RemovedEvent records that an event of Type on EventDate left the wallet.
type RemovedEvent struct {
	ID        string
	WalletID  string
	Type      EventMode
	EventDate time.Time
	Reason    RemovalReason
	CreatedAt time.Time
}
