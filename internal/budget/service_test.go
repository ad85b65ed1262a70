package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_insight/customErrors"
	"github.com/fatali-fataliyev/budget_insight/internal/tax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mocks
type MockStorage struct {
	income       *IncomeProfile
	allocation   BudgetAllocation
	budgets      []Budget
	transactions []Transaction
	alerts       []TransactionAlert
	snapshots    map[PeriodType][]PeriodSnapshot

	failWrites       bool
	failBudgetWrites bool
}

var errMockWrite = errors.New("storage error")

func (m *MockStorage) write() error {
	if m.failWrites {
		return errMockWrite
	}
	return nil
}

func (m *MockStorage) GetIncome(ctx context.Context) (IncomeProfile, error) {
	if m.income == nil {
		return IncomeProfile{}, appErrors.NotFound("income profile not found")
	}
	return *m.income, nil
}

func (m *MockStorage) SaveIncome(ctx context.Context, income IncomeProfile) error {
	if err := m.write(); err != nil {
		return err
	}
	m.income = &income
	return nil
}

func (m *MockStorage) GetAllocation(ctx context.Context) (BudgetAllocation, error) {
	return m.allocation, nil
}

func (m *MockStorage) SaveAllocation(ctx context.Context, allocation BudgetAllocation) error {
	if err := m.write(); err != nil {
		return err
	}
	m.allocation = allocation
	return nil
}

func (m *MockStorage) GetBudgets(ctx context.Context) ([]Budget, error) {
	return append([]Budget(nil), m.budgets...), nil
}

func (m *MockStorage) SaveBudgets(ctx context.Context, budgets []Budget) error {
	if err := m.write(); err != nil {
		return err
	}
	if m.failBudgetWrites {
		return errMockWrite
	}
	m.budgets = budgets
	return nil
}

func (m *MockStorage) GetTransactions(ctx context.Context) ([]Transaction, error) {
	return append([]Transaction(nil), m.transactions...), nil
}

func (m *MockStorage) SaveTransactions(ctx context.Context, transactions []Transaction) error {
	if err := m.write(); err != nil {
		return err
	}
	m.transactions = transactions
	return nil
}

func (m *MockStorage) GetAlerts(ctx context.Context) ([]TransactionAlert, error) {
	return append([]TransactionAlert(nil), m.alerts...), nil
}

func (m *MockStorage) SaveAlerts(ctx context.Context, alerts []TransactionAlert) error {
	if err := m.write(); err != nil {
		return err
	}
	m.alerts = alerts
	return nil
}

func (m *MockStorage) GetSnapshots(ctx context.Context, period PeriodType) ([]PeriodSnapshot, error) {
	return append([]PeriodSnapshot(nil), m.snapshots[period]...), nil
}

func (m *MockStorage) SaveSnapshots(ctx context.Context, period PeriodType, snapshots []PeriodSnapshot) error {
	if err := m.write(); err != nil {
		return err
	}
	if m.snapshots == nil {
		m.snapshots = make(map[PeriodType][]PeriodSnapshot)
	}
	m.snapshots[period] = snapshots
	return nil
}

func (m *MockStorage) GetStorageType() string {
	return "Mock"
}

func flatSchedule() tax.Schedule {
	return tax.Schedule{
		Name:    "flat",
		Federal: []tax.Bracket{{Threshold: 0, Rate: 0.10}, {Threshold: 50_000, Rate: 0.20}},
	}
}

func newTestTracker(store *MockStorage) *BudgetTracker {
	bt := NewBudgetTracker(store, tax.NewCalculator(flatSchedule()))
	bt.now = func() time.Time { return refTime }
	return bt
}

// Tests

func TestUpdateIncome(t *testing.T) {
	store := &MockStorage{}
	bt := newTestTracker(store)
	ctx := context.Background()

	tests := []struct {
		name     string
		input    IncomeRequest
		wantCode string
	}{
		{name: "Fail - negative salary", input: IncomeRequest{AnnualSalary: -10}, wantCode: appErrors.ErrInvalidInput},
		{name: "Fail - contribution above salary", input: IncomeRequest{AnnualSalary: 10, PretaxContribution: 20}, wantCode: appErrors.ErrInvalidInput},
		{name: "Success - valid salary", input: IncomeRequest{AnnualSalary: 100_000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			income, err := bt.UpdateIncome(ctx, tt.input)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, appErrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, 15_000, income.FederalTax, delta)
			assert.InDelta(t, 85_000.0/12, income.MonthlyTakeHome(), 1e-6)
		})
	}

	first, err := bt.GetIncome(ctx)
	require.NoError(t, err)

	second, err := bt.UpdateIncome(ctx, IncomeRequest{AnnualSalary: 60_000})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.snapshots[PeriodMonthly], 1)
	assert.InDelta(t, second.MonthlyTakeHome(), store.snapshots[PeriodMonthly][0].TakeHome, delta)
}

func TestGetIncomeNotFound(t *testing.T) {
	bt := newTestTracker(&MockStorage{})

	_, err := bt.GetIncome(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound, appErrors.CodeOf(err))
}

func TestAllocationLifecycle(t *testing.T) {
	store := &MockStorage{}
	bt := newTestTracker(store)
	ctx := context.Background()

	_, err := bt.UpdateIncome(ctx, IncomeRequest{AnnualSalary: 100_000})
	require.NoError(t, err)

	resp, err := bt.AddCategory(ctx, CategoryRequest{Name: "Rent", Percentage: 50})
	require.NoError(t, err)
	resp, err = bt.AddCategory(ctx, CategoryRequest{Name: "Food", Percentage: 20})
	require.NoError(t, err)
	assert.InDelta(t, 70, resp.TotalPercentage, delta)
	assert.InDelta(t, 30, resp.EmergencyBufferPercentage, delta)
	assert.InDelta(t, 85_000.0/12*0.3, resp.EmergencyBufferAmount, 1e-6)

	resp, err = bt.AddCategory(ctx, CategoryRequest{Name: "Extra", Percentage: 40})
	require.NoError(t, err)
	assert.True(t, resp.IsOverAllocated)
	assert.Equal(t, "Total exceeds 100% by 10.0%", resp.ValidationMessage)

	extraID := resp.Allocation.Categories[2].ID
	resp, err = bt.UpdateCategoryPercentage(ctx, extraID, 10)
	require.NoError(t, err)
	assert.False(t, resp.IsOverAllocated)
	assert.InDelta(t, 80, resp.TotalPercentage, delta)

	resp, err = bt.DeleteCategory(ctx, extraID)
	require.NoError(t, err)
	assert.Len(t, resp.Allocation.Categories, 2)

	_, err = bt.DeleteCategory(ctx, extraID)
	assert.Equal(t, appErrors.ErrNotFound, appErrors.CodeOf(err))

	_, err = bt.AddCategory(ctx, CategoryRequest{Name: "", Percentage: 5})
	assert.Equal(t, appErrors.ErrInvalidInput, appErrors.CodeOf(err))
	assert.Len(t, store.allocation.Categories, 2)

	stored, err := bt.GetAllocation(ctx)
	require.NoError(t, err)
	assert.Equal(t, resp.Allocation, stored.Allocation)
}

func TestCreateDefaultCategories(t *testing.T) {
	bt := newTestTracker(&MockStorage{})

	resp, err := bt.CreateDefaultCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, resp.Allocation.Categories, len(DefaultCategories()))
	assert.InDelta(t, 75, resp.TotalPercentage, delta)
	assert.Zero(t, resp.MonthlyTakeHome)
}

func TestSaveTransaction(t *testing.T) {
	store := &MockStorage{}
	bt := newTestTracker(store)
	ctx := context.Background()

	tests := []struct {
		name     string
		input    TransactionRequest
		wantCode string
	}{
		{name: "Fail - zero amount", input: TransactionRequest{Amount: 0}, wantCode: appErrors.ErrInvalidInput},
		{name: "Fail - too large", input: TransactionRequest{Amount: MAX_AMOUNT_LIMIT * 2}, wantCode: appErrors.ErrInvalidInput},
		{name: "Fail - too many labels", input: TransactionRequest{Amount: 5, Category: make([]string, MAX_CATEGORY_LABELS+1)}, wantCode: appErrors.ErrInvalidInput},
		{name: "Success - expense", input: TransactionRequest{Amount: 85, Date: day(2025, time.March, 3), Category: []string{"Food", " "}}},
		{name: "Success - income without date", input: TransactionRequest{Amount: -4000, Category: []string{"Payroll"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved, err := bt.SaveTransaction(ctx, tt.input)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, appErrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, saved.ID)
			assert.False(t, saved.Date.IsZero())
		})
	}

	transactions, err := bt.GetTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, []string{"Food"}, transactions[0].Category)
	assert.Equal(t, refTime, transactions[1].Date)

	budgets, err := bt.GetBudgets(ctx)
	require.NoError(t, err)
	for _, b := range budgets {
		if b.Category == CategoryFood {
			assert.InDelta(t, 85, b.CurrentMonthSpent, delta)
		}
	}
}

func TestSaveTransactionStorageFailure(t *testing.T) {
	store := &MockStorage{failWrites: true}
	bt := newTestTracker(store)

	_, err := bt.SaveTransaction(context.Background(), TransactionRequest{Amount: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, errMockWrite)
	assert.Equal(t, appErrors.ErrInternal, appErrors.CodeOf(err))
}

func TestWritesStandWhenRefreshFails(t *testing.T) {
	store := &MockStorage{failBudgetWrites: true}
	bt := newTestTracker(store)
	ctx := context.Background()

	income, err := bt.UpdateIncome(ctx, IncomeRequest{AnnualSalary: 60_000})
	require.NoError(t, err)
	require.NotNil(t, store.income)
	assert.Equal(t, income.ID, store.income.ID)

	txn, err := bt.SaveTransaction(ctx, TransactionRequest{Amount: 10, Category: []string{"Food"}})
	require.NoError(t, err)
	require.Len(t, store.transactions, 1)
	assert.Equal(t, txn.ID, store.transactions[0].ID)

	_, err = bt.Refresh(ctx)
	assert.ErrorIs(t, err, errMockWrite)
}

func TestUpdateBudgetLimit(t *testing.T) {
	store := &MockStorage{}
	bt := newTestTracker(store)
	ctx := context.Background()

	budgets, err := bt.GetBudgets(ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 5)
	id := budgets[0].ID

	store.transactions = []Transaction{tx(85, day(2025, time.March, 2), "Food")}
	_, err = bt.Refresh(ctx)
	require.NoError(t, err)

	tests := []struct {
		name       string
		input      UpdateBudgetLimitRequest
		wantCode   string
		wantStatus BudgetStatus
	}{
		{name: "Fail - negative limit", input: UpdateBudgetLimitRequest{ID: id, MonthlyLimit: -1}, wantCode: appErrors.ErrInvalidInput},
		{name: "Fail - unknown budget", input: UpdateBudgetLimitRequest{ID: "missing", MonthlyLimit: 10}, wantCode: appErrors.ErrNotFound},
		{name: "Success - warning", input: UpdateBudgetLimitRequest{ID: id, MonthlyLimit: 100, YearlyLimit: 1200}, wantStatus: StatusWarning},
		{name: "Success - exceeded", input: UpdateBudgetLimitRequest{ID: id, MonthlyLimit: 80, YearlyLimit: 960}, wantStatus: StatusExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := bt.UpdateBudgetLimit(ctx, tt.input)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, appErrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.InDelta(t, tt.input.MonthlyLimit, store.budgets[0].MonthlyLimit, delta)
		})
	}
}

func TestRefreshDashboard(t *testing.T) {
	store := &MockStorage{
		budgets: []Budget{{ID: "food", Category: CategoryFood, MonthlyLimit: 100, YearlyLimit: 1200}},
		transactions: []Transaction{
			tx(50, day(2025, time.March, 2), "Food"),
			tx(55, day(2025, time.March, 3), "Restaurants"),
			tx(30, day(2025, time.March, 4), "Shopping"),
			tx(-2000, day(2025, time.March, 1), "Payroll"),
		},
	}
	bt := newTestTracker(store)

	dashboard, err := bt.Refresh(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 2000, dashboard.Summary.TotalIncome, delta)
	assert.InDelta(t, 135, dashboard.Summary.TotalExpenses, delta)
	assert.InDelta(t, 1865, dashboard.NetCashFlow, delta)
	require.Len(t, dashboard.Budgets, 1)
	assert.Equal(t, StatusExceeded, dashboard.Budgets[0].Status)
	assert.InDelta(t, 105, store.budgets[0].CurrentMonthSpent, delta)

	require.NotEmpty(t, dashboard.Insights)
	assert.Equal(t, "Budget Exceeded", dashboard.Insights[0].Title)
	assert.InDelta(t, 5, dashboard.Insights[0].Amount, delta)

	require.Len(t, store.snapshots[PeriodMonthly], 1)
	require.Len(t, store.snapshots[PeriodYearly], 1)
	assert.InDelta(t, 135, store.snapshots[PeriodMonthly][0].TotalSpending, delta)
}

func TestSnapshots(t *testing.T) {
	store := &MockStorage{transactions: []Transaction{tx(100, day(2025, time.March, 2), "Food")}}
	bt := newTestTracker(store)
	ctx := context.Background()

	require.NoError(t, bt.RefreshSnapshots(ctx))
	monthlyID := store.snapshots[PeriodMonthly][0].ID

	bt.now = func() time.Time { return refTime.AddDate(0, 1, 0) }
	require.NoError(t, bt.RefreshSnapshots(ctx))
	bt.now = func() time.Time { return refTime.Add(time.Hour) }
	require.NoError(t, bt.RefreshSnapshots(ctx))

	monthly, err := bt.GetSnapshots(ctx, PeriodMonthly)
	require.NoError(t, err)
	require.Len(t, monthly, 2)
	assert.Equal(t, "April 2025", monthly[0].DisplayName)
	assert.Equal(t, "March 2025", monthly[1].DisplayName)
	assert.Equal(t, monthlyID, monthly[1].ID)
	assert.Equal(t, ColorRed, monthly[1].ColorStatus)

	yearly, err := bt.GetSnapshots(ctx, PeriodYearly)
	require.NoError(t, err)
	assert.Len(t, yearly, 1)

	_, err = bt.GetSnapshots(ctx, PeriodType("weekly"))
	assert.Equal(t, appErrors.ErrInvalidInput, appErrors.CodeOf(err))
}

func TestAlerts(t *testing.T) {
	store := &MockStorage{transactions: []Transaction{{ID: "tx-1", Amount: 4.5, Date: day(2025, time.March, 4)}}}
	bt := newTestTracker(store)
	ctx := context.Background()

	req := AlertRequest{EmailID: "gmail-1", Merchant: "Coffee Shop", Date: day(2025, time.March, 4), Amount: 4.5}

	alert, err := bt.SaveAlert(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, refTime, alert.ReceivedAt)

	_, err = bt.SaveAlert(ctx, req)
	assert.Equal(t, appErrors.ErrConflict, appErrors.CodeOf(err))

	_, err = bt.SaveAlert(ctx, AlertRequest{EmailID: "gmail-2", Date: day(2025, time.March, 4), Amount: -3})
	assert.Equal(t, appErrors.ErrInvalidInput, appErrors.CodeOf(err))

	matches, err := bt.FindMatchingAlerts(ctx, 4.5, day(2025, time.March, 4))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	_, err = bt.LinkAlert(ctx, alert.ID, "tx-unknown")
	assert.Equal(t, appErrors.ErrNotFound, appErrors.CodeOf(err))

	linked, err := bt.LinkAlert(ctx, alert.ID, "tx-1")
	require.NoError(t, err)
	assert.True(t, linked.IsLinked)
	assert.Equal(t, "tx-1", linked.LinkedTransactionID)

	unlinked, err := bt.GetUnlinkedAlerts(ctx)
	require.NoError(t, err)
	assert.Empty(t, unlinked)

	require.NoError(t, bt.DeleteAlert(ctx, alert.ID))
	assert.Equal(t, appErrors.ErrNotFound, appErrors.CodeOf(bt.DeleteAlert(ctx, alert.ID)))
}
