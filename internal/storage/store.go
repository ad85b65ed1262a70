package storage

import (
	"context"
	"encoding/json"
	"fmt"

	appErrors "github.com/fatali-fataliyev/budget_insight/customErrors"
	"github.com/fatali-fataliyev/budget_insight/internal/budget"
	"github.com/fatali-fataliyev/budget_insight/internal/contextutil"
	"github.com/fatali-fataliyev/budget_insight/logging"
)

// DocumentStore persists opaque JSON documents by key.
type DocumentStore interface {
	GetDocument(ctx context.Context, key string) ([]byte, bool, error)
	PutDocument(ctx context.Context, key string, body []byte) error
	GetStorageType() string
	Close() error
}

// Store maps the budget aggregates onto a DocumentStore. A missing
// collection reads as empty.
type Store struct {
	docs DocumentStore
}

func NewStore(docs DocumentStore) *Store {
	return &Store{docs: docs}
}

func (s *Store) GetStorageType() string {
	return s.docs.GetStorageType()
}

func (s *Store) Close() error {
	return s.docs.Close()
}

func (s *Store) load(ctx context.Context, key string, v any) (bool, error) {
	body, found, err := s.docs.GetDocument(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(body, v); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to decode document '%s', Error: %v", contextutil.TraceIDFromContext(ctx), key, err)
		return false, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("stored %s data is corrupted", key),
		}
	}
	return true, nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.docs.PutDocument(ctx, key, body)
}

func (s *Store) GetIncome(ctx context.Context) (budget.IncomeProfile, error) {
	var income budget.IncomeProfile
	found, err := s.load(ctx, keyIncome, &income)
	if err != nil {
		return budget.IncomeProfile{}, err
	}
	if !found {
		return budget.IncomeProfile{}, appErrors.NotFound("income profile not found")
	}
	return income, nil
}

func (s *Store) SaveIncome(ctx context.Context, income budget.IncomeProfile) error {
	return s.save(ctx, keyIncome, income)
}

func (s *Store) GetAllocation(ctx context.Context) (budget.BudgetAllocation, error) {
	var allocation budget.BudgetAllocation
	if _, err := s.load(ctx, keyAllocation, &allocation); err != nil {
		return budget.BudgetAllocation{}, err
	}
	return allocation, nil
}

func (s *Store) SaveAllocation(ctx context.Context, allocation budget.BudgetAllocation) error {
	return s.save(ctx, keyAllocation, allocation)
}

func (s *Store) GetBudgets(ctx context.Context) ([]budget.Budget, error) {
	var budgets []budget.Budget
	if _, err := s.load(ctx, keyBudgets, &budgets); err != nil {
		return nil, err
	}
	return budgets, nil
}

func (s *Store) SaveBudgets(ctx context.Context, budgets []budget.Budget) error {
	return s.save(ctx, keyBudgets, budgets)
}

func (s *Store) GetTransactions(ctx context.Context) ([]budget.Transaction, error) {
	var transactions []budget.Transaction
	if _, err := s.load(ctx, keyTransactions, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

func (s *Store) SaveTransactions(ctx context.Context, transactions []budget.Transaction) error {
	return s.save(ctx, keyTransactions, transactions)
}

func (s *Store) GetAlerts(ctx context.Context) ([]budget.TransactionAlert, error) {
	var alerts []budget.TransactionAlert
	if _, err := s.load(ctx, keyAlerts, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (s *Store) SaveAlerts(ctx context.Context, alerts []budget.TransactionAlert) error {
	return s.save(ctx, keyAlerts, alerts)
}

func snapshotKey(period budget.PeriodType) (string, error) {
	switch period {
	case budget.PeriodMonthly:
		return keySnapshotsMonthly, nil
	case budget.PeriodYearly:
		return keySnapshotsYearly, nil
	default:
		return "", appErrors.InvalidInput("invalid snapshot period: %s", period)
	}
}

func (s *Store) GetSnapshots(ctx context.Context, period budget.PeriodType) ([]budget.PeriodSnapshot, error) {
	key, err := snapshotKey(period)
	if err != nil {
		return nil, err
	}
	var snapshots []budget.PeriodSnapshot
	if _, err := s.load(ctx, key, &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (s *Store) SaveSnapshots(ctx context.Context, period budget.PeriodType, snapshots []budget.PeriodSnapshot) error {
	key, err := snapshotKey(period)
	if err != nil {
		return err
	}
	return s.save(ctx, key, snapshots)
}

var _ budget.Storage = (*Store)(nil)
