package storage

import "time"

// Document keys. Every aggregate is stored whole under one key.
const (
	keyIncome           = "income"
	keyAllocation       = "allocation"
	keyBudgets          = "budgets"
	keyTransactions     = "transactions"
	keyAlerts           = "alerts"
	keySnapshotsMonthly = "snapshots_monthly"
	keySnapshotsYearly  = "snapshots_yearly"
)

type dbDocument struct {
	Key       string
	Body      []byte
	UpdatedAt time.Time
}
