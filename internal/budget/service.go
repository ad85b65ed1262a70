package budget

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	appErrors "github.com/fatali-fataliyev/budget_insight/customErrors"
	"github.com/fatali-fataliyev/budget_insight/internal/tax"
	"github.com/fatali-fataliyev/budget_insight/logging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	MAX_AMOUNT_LIMIT         = 999999999999.99
	MAX_CATEGORY_NAME_LENGTH = 255
	MAX_CATEGORY_LABELS      = 10
	MAX_MERCHANT_NAME_LENGTH = 255
	MAX_ACCOUNT_ID_LENGTH    = 255
	MAX_ALERT_BODY_LENGTH    = 65535
	Epsilon                  = 1e-9 // For IsFloatZero() func.
)

func IsFloatZero(f float64) bool {
	return f >= 0 && f < Epsilon
}

type Storage interface {
	GetIncome(ctx context.Context) (IncomeProfile, error)
	SaveIncome(ctx context.Context, income IncomeProfile) error
	GetAllocation(ctx context.Context) (BudgetAllocation, error)
	SaveAllocation(ctx context.Context, allocation BudgetAllocation) error
	GetBudgets(ctx context.Context) ([]Budget, error)
	SaveBudgets(ctx context.Context, budgets []Budget) error
	GetTransactions(ctx context.Context) ([]Transaction, error)
	SaveTransactions(ctx context.Context, transactions []Transaction) error
	GetAlerts(ctx context.Context) ([]TransactionAlert, error)
	SaveAlerts(ctx context.Context, alerts []TransactionAlert) error
	GetSnapshots(ctx context.Context, period PeriodType) ([]PeriodSnapshot, error)
	SaveSnapshots(ctx context.Context, period PeriodType, snapshots []PeriodSnapshot) error
	GetStorageType() string
}

type BudgetTracker struct {
	storage     Storage
	StorageType string
	calculator  *tax.Calculator
	categorize  CategorizeFunc
	now         func() time.Time

	// mu serialises read-modify-write sequences against storage.
	mu sync.Mutex
}

func NewBudgetTracker(s Storage, calculator *tax.Calculator) *BudgetTracker {
	return &BudgetTracker{
		storage:     s,
		StorageType: s.GetStorageType(),
		calculator:  calculator,
		categorize:  Categorize,
		now:         time.Now,
	}
}

// INCOME:

// UpdateIncome stores the recomputed profile. A failing refresh afterwards is
// logged; the saved profile stands and is returned.
func (bt *BudgetTracker) UpdateIncome(ctx context.Context, req IncomeRequest) (IncomeProfile, error) {
	if err := ValidateIncome(req.AnnualSalary, req.PretaxContribution); err != nil {
		return IncomeProfile{}, err
	}

	bt.mu.Lock()
	defer bt.mu.Unlock()

	taxes := bt.calculator.Compute(req.AnnualSalary, req.PretaxContribution)
	income := DeriveIncome(req.AnnualSalary, req.PretaxContribution, taxes)

	existing, found, err := bt.income(ctx)
	if err != nil {
		return IncomeProfile{}, err
	}
	if found {
		income.ID = existing.ID
	}

	if err := bt.storage.SaveIncome(ctx, income); err != nil {
		return IncomeProfile{}, fmt.Errorf("failed to save income: %w", err)
	}

	logging.WithTrace(ctx).WithFields(logrus.Fields{
		"annual_take_home": income.AnnualTakeHome(),
		"total_tax":        income.TotalTax(),
	}).Info("income updated")

	if _, err := bt.refresh(ctx); err != nil {
		logging.WithTrace(ctx).Errorf("income saved but refresh failed: %v", err)
	}
	return income, nil
}

func (bt *BudgetTracker) GetIncome(ctx context.Context) (IncomeProfile, error) {
	income, err := bt.storage.GetIncome(ctx)
	if err != nil {
		return IncomeProfile{}, fmt.Errorf("failed to get income: %w", err)
	}
	return income, nil
}

// income treats a missing profile as zero take-home pay.
func (bt *BudgetTracker) income(ctx context.Context) (IncomeProfile, bool, error) {
	income, err := bt.storage.GetIncome(ctx)
	if err != nil {
		if appErrors.CodeOf(err) == appErrors.ErrNotFound {
			return IncomeProfile{}, false, nil
		}
		return IncomeProfile{}, false, fmt.Errorf("failed to get income: %w", err)
	}
	return income, true, nil
}

func (bt *BudgetTracker) monthlyTakeHome(ctx context.Context) (float64, error) {
	income, _, err := bt.income(ctx)
	if err != nil {
		return 0, err
	}
	return income.MonthlyTakeHome(), nil
}

// ALLOCATION:

func (bt *BudgetTracker) GetAllocation(ctx context.Context) (AllocationResponse, error) {
	allocation, err := bt.storage.GetAllocation(ctx)
	if err != nil {
		return AllocationResponse{}, fmt.Errorf("failed to get allocation: %w", err)
	}
	takeHome, err := bt.monthlyTakeHome(ctx)
	if err != nil {
		return AllocationResponse{}, err
	}
	return NewAllocationResponse(allocation, takeHome), nil
}

func (bt *BudgetTracker) AddCategory(ctx context.Context, req CategoryRequest) (AllocationResponse, error) {
	return bt.editAllocation(ctx, func(a BudgetAllocation) (BudgetAllocation, error) {
		return a.AddCategory(req.Name, req.Percentage, CategoryMeta{Icon: req.Icon, Color: req.Color})
	})
}

func (bt *BudgetTracker) UpdateCategoryPercentage(ctx context.Context, id string, percentage float64) (AllocationResponse, error) {
	return bt.editAllocation(ctx, func(a BudgetAllocation) (BudgetAllocation, error) {
		return a.UpdateCategoryPercentage(id, percentage)
	})
}

func (bt *BudgetTracker) DeleteCategory(ctx context.Context, id string) (AllocationResponse, error) {
	return bt.editAllocation(ctx, func(a BudgetAllocation) (BudgetAllocation, error) {
		return a.RemoveCategory(id)
	})
}

// CreateDefaultCategories appends the starter categories to whatever the
// allocation already holds.
func (bt *BudgetTracker) CreateDefaultCategories(ctx context.Context) (AllocationResponse, error) {
	return bt.editAllocation(ctx, func(a BudgetAllocation) (BudgetAllocation, error) {
		var err error
		for _, c := range DefaultCategories() {
			a, err = a.AddCategory(c.Name, c.Percentage, CategoryMeta{Icon: c.Icon, Color: c.Color})
			if err != nil {
				return a, err
			}
		}
		return a, nil
	})
}

func (bt *BudgetTracker) editAllocation(ctx context.Context, edit func(BudgetAllocation) (BudgetAllocation, error)) (AllocationResponse, error) {
	bt.mu.Lock()
	defer bt.mu.Unlock()

	allocation, err := bt.storage.GetAllocation(ctx)
	if err != nil {
		return AllocationResponse{}, fmt.Errorf("failed to get allocation: %w", err)
	}
	updated, err := edit(allocation)
	if err != nil {
		return AllocationResponse{}, err
	}

	transactions, err := bt.storage.GetTransactions(ctx)
	if err != nil {
		return AllocationResponse{}, fmt.Errorf("failed to get transactions: %w", err)
	}
	updated = RefreshAllocationSpending(updated, transactions, bt.now(), bt.categorize)

	if err := bt.storage.SaveAllocation(ctx, updated); err != nil {
		return AllocationResponse{}, fmt.Errorf("failed to save allocation: %w", err)
	}

	takeHome, err := bt.monthlyTakeHome(ctx)
	if err != nil {
		return AllocationResponse{}, err
	}
	resp := NewAllocationResponse(updated, takeHome)
	if resp.IsOverAllocated {
		logging.WithTrace(ctx).Warnf("allocation is over 100%%: %.2f", resp.TotalPercentage)
	}
	return resp, nil
}

func NewAllocationResponse(allocation BudgetAllocation, monthlyTakeHome float64) AllocationResponse {
	if allocation.Categories == nil {
		allocation.Categories = []BudgetCategory{}
	}
	return AllocationResponse{
		Allocation:                allocation,
		MonthlyTakeHome:           monthlyTakeHome,
		TotalPercentage:           allocation.TotalPercentage(),
		EmergencyBufferPercentage: allocation.EmergencyBufferPercentage(),
		EmergencyBufferAmount:     allocation.EmergencyBufferAmount(monthlyTakeHome),
		IsValid:                   allocation.IsValid(),
		IsOverAllocated:           allocation.IsOverAllocated(),
		ValidationMessage:         allocation.ValidationMessage(),
	}
}

// TRANSACTIONS:

func validateTransaction(req TransactionRequest) error {
	if math.IsNaN(req.Amount) || IsFloatZero(math.Abs(req.Amount)) {
		return appErrors.InvalidInput("transaction amount is zero or very close to zero")
	}
	if math.Abs(req.Amount) > MAX_AMOUNT_LIMIT {
		return appErrors.InvalidInput("maximum allowed amount per transaction is: %.2f", MAX_AMOUNT_LIMIT)
	}
	if len(req.AccountID) > MAX_ACCOUNT_ID_LENGTH {
		return appErrors.InvalidInput("account id is too long, the limit is: %d", MAX_ACCOUNT_ID_LENGTH)
	}
	if len(req.MerchantName) > MAX_MERCHANT_NAME_LENGTH {
		return appErrors.InvalidInput("merchant name is too long, the limit is: %d", MAX_MERCHANT_NAME_LENGTH)
	}
	if len(req.Category) > MAX_CATEGORY_LABELS {
		return appErrors.InvalidInput("too many category labels, the limit is: %d", MAX_CATEGORY_LABELS)
	}
	for _, label := range req.Category {
		if len(label) > MAX_CATEGORY_NAME_LENGTH {
			return appErrors.InvalidInput("category label is too long, the limit is: %d", MAX_CATEGORY_NAME_LENGTH)
		}
	}
	return nil
}

// SaveTransaction stores a transaction and recomputes everything derived
// from the transaction list. A failing recompute is logged and does not undo
// the save.
func (bt *BudgetTracker) SaveTransaction(ctx context.Context, req TransactionRequest) (Transaction, error) {
	if err := validateTransaction(req); err != nil {
		return Transaction{}, err
	}

	bt.mu.Lock()
	defer bt.mu.Unlock()

	date := req.Date
	if date.IsZero() {
		date = bt.now()
	}
	labels := make([]string, 0, len(req.Category))
	for _, label := range req.Category {
		if label = strings.TrimSpace(label); label != "" {
			labels = append(labels, label)
		}
	}

	txn := Transaction{
		ID:           uuid.New().String(),
		AccountID:    req.AccountID,
		Amount:       req.Amount,
		Date:         date,
		MerchantName: strings.TrimSpace(req.MerchantName),
		Category:     labels,
		Pending:      req.Pending,
	}

	transactions, err := bt.storage.GetTransactions(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get transactions: %w", err)
	}
	transactions = append(transactions, txn)
	if err := bt.storage.SaveTransactions(ctx, transactions); err != nil {
		return Transaction{}, fmt.Errorf("failed to save transaction to db: %w", err)
	}

	logging.WithTrace(ctx).WithField("category", bt.categorize(txn.Category)).Debug("transaction saved")

	if _, err := bt.refresh(ctx); err != nil {
		logging.WithTrace(ctx).Errorf("transaction saved but refresh failed: %v", err)
	}
	return txn, nil
}

func (bt *BudgetTracker) GetTransactions(ctx context.Context) ([]Transaction, error) {
	transactions, err := bt.storage.GetTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	if transactions == nil {
		transactions = []Transaction{}
	}
	return transactions, nil
}

// BUDGETS:

// budgets seeds DefaultBudgets on first use. Callers hold mu.
func (bt *BudgetTracker) budgets(ctx context.Context) ([]Budget, error) {
	budgets, err := bt.storage.GetBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get budgets: %w", err)
	}
	if len(budgets) > 0 {
		return budgets, nil
	}
	budgets = DefaultBudgets()
	if err := bt.storage.SaveBudgets(ctx, budgets); err != nil {
		return nil, fmt.Errorf("failed to save default budgets: %w", err)
	}
	logging.WithTrace(ctx).Info("default budgets created")
	return budgets, nil
}

func (bt *BudgetTracker) GetBudgets(ctx context.Context) ([]BudgetResponse, error) {
	bt.mu.Lock()
	defer bt.mu.Unlock()

	budgets, err := bt.budgets(ctx)
	if err != nil {
		return nil, err
	}
	return budgetResponses(budgets), nil
}

func (bt *BudgetTracker) UpdateBudgetLimit(ctx context.Context, req UpdateBudgetLimitRequest) (BudgetResponse, error) {
	for _, limit := range []float64{req.MonthlyLimit, req.YearlyLimit} {
		if math.IsNaN(limit) || limit < 0 {
			return BudgetResponse{}, appErrors.InvalidInput("budget limit cannot be negative")
		}
		if limit > MAX_AMOUNT_LIMIT {
			return BudgetResponse{}, appErrors.InvalidInput("budget limit is too large, the limit is: %.2f", MAX_AMOUNT_LIMIT)
		}
	}

	bt.mu.Lock()
	defer bt.mu.Unlock()

	budgets, err := bt.budgets(ctx)
	if err != nil {
		return BudgetResponse{}, err
	}
	for i := range budgets {
		if budgets[i].ID != req.ID {
			continue
		}
		budgets[i].MonthlyLimit = req.MonthlyLimit
		budgets[i].YearlyLimit = req.YearlyLimit
		if err := bt.storage.SaveBudgets(ctx, budgets); err != nil {
			return BudgetResponse{}, fmt.Errorf("failed to save budgets: %w", err)
		}
		return NewBudgetResponse(budgets[i]), nil
	}
	return BudgetResponse{}, appErrors.NotFound("budget not found: %s", req.ID)
}

func NewBudgetResponse(b Budget) BudgetResponse {
	return BudgetResponse{
		Budget:            b,
		MonthlyPercentage: b.MonthlyPercentage(),
		MonthlyRemaining:  b.MonthlyRemaining(),
		YearlyPercentage:  b.YearlyPercentage(),
		YearlyRemaining:   b.YearlyRemaining(),
		Status:            b.Status(),
	}
}

func budgetResponses(budgets []Budget) []BudgetResponse {
	resp := make([]BudgetResponse, 0, len(budgets))
	for _, b := range budgets {
		resp = append(resp, NewBudgetResponse(b))
	}
	return resp
}

// DASHBOARD:

// Refresh recomputes the summary, budget spend, allocation spend, insights
// and current snapshots from the stored transactions and persists them.
func (bt *BudgetTracker) Refresh(ctx context.Context) (Dashboard, error) {
	bt.mu.Lock()
	defer bt.mu.Unlock()
	return bt.refresh(ctx)
}

func (bt *BudgetTracker) refresh(ctx context.Context) (Dashboard, error) {
	now := bt.now()

	transactions, err := bt.storage.GetTransactions(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("failed to get transactions: %w", err)
	}
	budgets, err := bt.budgets(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	allocation, err := bt.storage.GetAllocation(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("failed to get allocation: %w", err)
	}
	takeHome, err := bt.monthlyTakeHome(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	summary := Summarize(transactions, now, bt.categorize)
	budgets = UpdateBudgets(budgets, transactions, now, bt.categorize)
	allocation = RefreshAllocationSpending(allocation, transactions, now, bt.categorize)
	insights := GenerateInsights(budgets, transactions, summary)

	if err := bt.storage.SaveBudgets(ctx, budgets); err != nil {
		return Dashboard{}, fmt.Errorf("failed to save budgets: %w", err)
	}
	if err := bt.storage.SaveAllocation(ctx, allocation); err != nil {
		return Dashboard{}, fmt.Errorf("failed to save allocation: %w", err)
	}
	if err := bt.refreshSnapshots(ctx, takeHome, transactions, now); err != nil {
		return Dashboard{}, err
	}

	if insights == nil {
		insights = []Insight{}
	}
	return Dashboard{
		Summary:     summary,
		NetCashFlow: summary.NetCashFlow(),
		SavingsRate: summary.SavingsRate(),
		Budgets:     budgetResponses(budgets),
		Allocation:  NewAllocationResponse(allocation, takeHome),
		Insights:    insights,
	}, nil
}

// SNAPSHOTS:

// RefreshSnapshots rewrites the snapshots for the current month and year.
func (bt *BudgetTracker) RefreshSnapshots(ctx context.Context) error {
	bt.mu.Lock()
	defer bt.mu.Unlock()

	transactions, err := bt.storage.GetTransactions(ctx)
	if err != nil {
		return fmt.Errorf("failed to get transactions: %w", err)
	}
	takeHome, err := bt.monthlyTakeHome(ctx)
	if err != nil {
		return err
	}
	return bt.refreshSnapshots(ctx, takeHome, transactions, bt.now())
}

func (bt *BudgetTracker) refreshSnapshots(ctx context.Context, monthlyTakeHome float64, transactions []Transaction, now time.Time) error {
	fresh := map[PeriodType]PeriodSnapshot{
		PeriodMonthly: MonthlySnapshot(now.Year(), now.Month(), monthlyTakeHome, transactions, now),
		PeriodYearly:  YearlySnapshot(now.Year(), monthlyTakeHome, transactions, now),
	}
	for period, snapshot := range fresh {
		snapshots, err := bt.storage.GetSnapshots(ctx, period)
		if err != nil {
			return fmt.Errorf("failed to get %s snapshots: %w", period, err)
		}
		if err := bt.storage.SaveSnapshots(ctx, period, UpsertSnapshot(snapshots, snapshot)); err != nil {
			return fmt.Errorf("failed to save %s snapshots: %w", period, err)
		}
	}
	logging.WithTrace(ctx).Debugf("snapshots refreshed for %s", fresh[PeriodMonthly].DisplayName())
	return nil
}

func (bt *BudgetTracker) GetSnapshots(ctx context.Context, period PeriodType) ([]SnapshotResponse, error) {
	if period != PeriodMonthly && period != PeriodYearly {
		return nil, appErrors.InvalidInput("invalid period: '%s', expected monthly or yearly", period)
	}
	snapshots, err := bt.storage.GetSnapshots(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s snapshots: %w", period, err)
	}

	resp := make([]SnapshotResponse, 0, len(snapshots))
	for _, s := range SortSnapshots(snapshots) {
		resp = append(resp, SnapshotResponse{
			PeriodSnapshot: s,
			DisplayName:    s.DisplayName(),
			ColorStatus:    s.ColorStatus(),
		})
	}
	return resp, nil
}

// ALERTS:

func (bt *BudgetTracker) SaveAlert(ctx context.Context, req AlertRequest) (TransactionAlert, error) {
	if strings.TrimSpace(req.EmailID) == "" {
		return TransactionAlert{}, appErrors.InvalidInput("email id is empty")
	}
	if math.IsNaN(req.Amount) || req.Amount <= 0 || req.Amount > MAX_AMOUNT_LIMIT {
		return TransactionAlert{}, appErrors.InvalidInput("alert amount must be between 0 and %.2f", MAX_AMOUNT_LIMIT)
	}
	if req.Date.IsZero() {
		return TransactionAlert{}, appErrors.InvalidInput("alert date is required")
	}
	if len(req.Merchant) > MAX_MERCHANT_NAME_LENGTH {
		return TransactionAlert{}, appErrors.InvalidInput("merchant name is too long, the limit is: %d", MAX_MERCHANT_NAME_LENGTH)
	}
	if len(req.RawEmailBody) > MAX_ALERT_BODY_LENGTH {
		return TransactionAlert{}, appErrors.InvalidInput("email body is too long, the limit is: %d", MAX_ALERT_BODY_LENGTH)
	}

	bt.mu.Lock()
	defer bt.mu.Unlock()

	alerts, err := bt.storage.GetAlerts(ctx)
	if err != nil {
		return TransactionAlert{}, fmt.Errorf("failed to get alerts: %w", err)
	}
	for _, a := range alerts {
		if a.EmailID == req.EmailID {
			return TransactionAlert{}, appErrors.Conflict("alert for email '%s' already exists", req.EmailID)
		}
	}

	alert := TransactionAlert{
		ID:           uuid.New().String(),
		EmailID:      req.EmailID,
		Merchant:     strings.TrimSpace(req.Merchant),
		Date:         req.Date,
		Amount:       req.Amount,
		RawEmailBody: req.RawEmailBody,
		ReceivedAt:   bt.now(),
	}
	if err := bt.storage.SaveAlerts(ctx, append(alerts, alert)); err != nil {
		return TransactionAlert{}, fmt.Errorf("failed to save alert: %w", err)
	}
	return alert, nil
}

func (bt *BudgetTracker) GetUnlinkedAlerts(ctx context.Context) ([]TransactionAlert, error) {
	alerts, err := bt.storage.GetAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get alerts: %w", err)
	}
	return UnlinkedAlerts(alerts), nil
}

func (bt *BudgetTracker) FindMatchingAlerts(ctx context.Context, amount float64, date time.Time) ([]TransactionAlert, error) {
	alerts, err := bt.storage.GetAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get alerts: %w", err)
	}
	return FindMatchingAlerts(alerts, amount, date), nil
}

func (bt *BudgetTracker) LinkAlert(ctx context.Context, alertID string, transactionID string) (TransactionAlert, error) {
	bt.mu.Lock()
	defer bt.mu.Unlock()

	transactions, err := bt.storage.GetTransactions(ctx)
	if err != nil {
		return TransactionAlert{}, fmt.Errorf("failed to get transactions: %w", err)
	}
	if !containsTransaction(transactions, transactionID) {
		return TransactionAlert{}, appErrors.NotFound("transaction not found: %s", transactionID)
	}

	alerts, err := bt.storage.GetAlerts(ctx)
	if err != nil {
		return TransactionAlert{}, fmt.Errorf("failed to get alerts: %w", err)
	}
	alerts, err = LinkAlert(alerts, alertID, transactionID)
	if err != nil {
		return TransactionAlert{}, err
	}
	if err := bt.storage.SaveAlerts(ctx, alerts); err != nil {
		return TransactionAlert{}, fmt.Errorf("failed to save alerts: %w", err)
	}
	for _, a := range alerts {
		if a.ID == alertID {
			return a, nil
		}
	}
	return TransactionAlert{}, appErrors.NotFound("alert not found: %s", alertID)
}

func (bt *BudgetTracker) DeleteAlert(ctx context.Context, alertID string) error {
	bt.mu.Lock()
	defer bt.mu.Unlock()

	alerts, err := bt.storage.GetAlerts(ctx)
	if err != nil {
		return fmt.Errorf("failed to get alerts: %w", err)
	}
	alerts, err = RemoveAlert(alerts, alertID)
	if err != nil {
		return err
	}
	if err := bt.storage.SaveAlerts(ctx, alerts); err != nil {
		return fmt.Errorf("failed to save alerts: %w", err)
	}
	return nil
}

func containsTransaction(transactions []Transaction, id string) bool {
	for _, t := range transactions {
		if t.ID == id {
			return true
		}
	}
	return false
}
