package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Operators() OperatorRepository
	Customers() CustomerRepository
	Businesses() BusinessRepository
	Ledger() LedgerRepository
	Transactions() TransactionRepository
	Tiers() TierRepository
}
