package budget

import (
	"math"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_insight/customErrors"
)

// AlertAmountTolerance is how far an alert amount may drift from the
// entered transaction and still match.
const AlertAmountTolerance = 0.01

func UnlinkedAlerts(alerts []TransactionAlert) []TransactionAlert {
	unlinked := []TransactionAlert{}
	for _, a := range alerts {
		if !a.IsLinked {
			unlinked = append(unlinked, a)
		}
	}
	return unlinked
}

// FindMatchingAlerts returns unlinked alerts for the same amount on the
// same calendar day as date, compared in date's location.
func FindMatchingAlerts(alerts []TransactionAlert, amount float64, date time.Time) []TransactionAlert {
	matches := []TransactionAlert{}
	for _, a := range UnlinkedAlerts(alerts) {
		if math.Abs(a.Amount-amount) < AlertAmountTolerance && sameDay(a.Date, date) {
			matches = append(matches, a)
		}
	}
	return matches
}

func LinkAlert(alerts []TransactionAlert, id string, transactionID string) ([]TransactionAlert, error) {
	updated := make([]TransactionAlert, len(alerts))
	copy(updated, alerts)
	for i := range updated {
		if updated[i].ID == id {
			updated[i].IsLinked = true
			updated[i].LinkedTransactionID = transactionID
			return updated, nil
		}
	}
	return alerts, appErrors.NotFound("alert not found: %s", id)
}

func RemoveAlert(alerts []TransactionAlert, id string) ([]TransactionAlert, error) {
	for i, a := range alerts {
		if a.ID == id {
			updated := make([]TransactionAlert, 0, len(alerts)-1)
			updated = append(updated, alerts[:i]...)
			return append(updated, alerts[i+1:]...), nil
		}
	}
	return alerts, appErrors.NotFound("alert not found: %s", id)
}

func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
