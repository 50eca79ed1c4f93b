package domain

// AccountStatus is the lifecycle state of a member account as seen by login.
type AccountStatus string

const (
	AccountActive             AccountStatus = "ACTIVE"
	AccountRecoverable        AccountStatus = "RECOVERABLE"
	AccountPermanentlyDeleted AccountStatus = "PERMANENTLY_DELETED"
)
