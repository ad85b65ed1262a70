package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/0xcafe-io/iz"
	appErrors "github.com/fatali-fataliyev/budget_insight/customErrors"
	"github.com/fatali-fataliyev/budget_insight/internal/budget"
	"github.com/fatali-fataliyev/budget_insight/internal/contextutil"
	"github.com/fatali-fataliyev/budget_insight/logging"
)

const TraceHeader = "X-Trace-ID"

type Api struct {
	Service *budget.BudgetTracker
}

func NewApi(service *budget.BudgetTracker) *Api {
	return &Api{
		Service: service,
	}
}

// Routes registers every endpoint on a new mux wrapped with trace tagging.
func (api *Api) Routes() http.Handler {
	server := http.NewServeMux()

	server.HandleFunc("GET /api/health", iz.Bind(api.HealthHandler)) // Liveness and storage backend

	// INCOME ENDPOINTS.
	server.HandleFunc("GET /api/income", iz.Bind(api.GetIncomeHandler))    // Current income profile
	server.HandleFunc("PUT /api/income", iz.Bind(api.UpdateIncomeHandler)) // Recompute taxes for a salary

	// ALLOCATION ENDPOINTS.
	server.HandleFunc("GET /api/allocation", iz.Bind(api.GetAllocationHandler))                     // Allocation with buffer
	server.HandleFunc("POST /api/allocation/category", iz.Bind(api.AddCategoryHandler))             // Add category
	server.HandleFunc("PUT /api/allocation/category/{id}", iz.Bind(api.UpdateCategoryHandler))      // Change category share
	server.HandleFunc("DELETE /api/allocation/category/{id}", iz.Bind(api.DeleteCategoryHandler))   // Remove category
	server.HandleFunc("POST /api/allocation/defaults", iz.Bind(api.CreateDefaultCategoriesHandler)) // Append starter categories

	// TRANSACTION ENDPOINTS.
	server.HandleFunc("POST /api/transaction", iz.Bind(api.SaveTransactionHandler)) // Create Transaction
	server.HandleFunc("GET /api/transaction", iz.Bind(api.GetTransactionsHandler))  // List Transactions

	// BUDGET ENDPOINTS.
	server.HandleFunc("GET /api/budget", iz.Bind(api.GetBudgetsHandler))             // Category budgets with status
	server.HandleFunc("PUT /api/budget/{id}", iz.Bind(api.UpdateBudgetLimitHandler)) // Change limits

	// INSIGHT ENDPOINTS.
	server.HandleFunc("GET /api/dashboard", iz.Bind(api.GetDashboardHandler)) // Summary, budgets and insights
	server.HandleFunc("GET /api/snapshot", iz.Bind(api.GetSnapshotsHandler))  // Monthly or yearly history

	// ALERT ENDPOINTS.
	server.HandleFunc("POST /api/alert", iz.Bind(api.SaveAlertHandler))               // Store email alert
	server.HandleFunc("GET /api/alert", iz.Bind(api.GetAlertsHandler))                // Unlinked alerts
	server.HandleFunc("GET /api/alert/match", iz.Bind(api.FindMatchingAlertsHandler)) // Alerts matching amount and day
	server.HandleFunc("POST /api/alert/{id}/link", iz.Bind(api.LinkAlertHandler))     // Link alert to transaction
	server.HandleFunc("DELETE /api/alert/{id}", iz.Bind(api.DeleteAlertHandler))      // Delete alert

	return WithTrace(server)
}

// WithTrace reuses the caller's X-Trace-ID or generates one, and echoes it
// back on the response.
func WithTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := contextutil.WithTraceID(r.Context(), r.Header.Get(TraceHeader))
		w.Header().Set(TraceHeader, contextutil.TraceIDFromContext(ctx))

		started := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logging.WithTrace(ctx).Debugf("%s %s handled in %s", r.Method, r.URL.Path, time.Since(started))
	})
}

func errorResponse(r *iz.Request, err error) iz.Responder {
	status := httpStatusFromError(err)
	if status == 500 {
		logging.WithTrace(r.Context()).Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
	}
	return iz.Respond().Status(status).JSON(appErrors.ErrorResponse{
		Code:    appErrors.CodeOf(err),
		Message: appErrors.MessageOf(err),
	})
}

func (api *Api) HealthHandler(r *iz.Request) iz.Responder {
	return iz.Respond().Status(200).JSON(HealthResponse{Status: "ok", Storage: api.Service.StorageType})
}

func (api *Api) GetIncomeHandler(r *iz.Request) iz.Responder {
	income, err := api.Service.GetIncome(r.Context())
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(200).JSON(IncomeToHttp(income))
}

func (api *Api) UpdateIncomeHandler(r *iz.Request) iz.Responder {
	var incomeReq UpdateIncomeRequest
	if err := json.NewDecoder(r.Body).Decode(&incomeReq); err != nil {
		return iz.Respond().Status(400).Text(invalidBody(err))
	}

	income, err := api.Service.UpdateIncome(r.Context(), budget.IncomeRequest{
		AnnualSalary:       incomeReq.AnnualSalary,
		PretaxContribution: incomeReq.PretaxContribution,
	})
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(200).JSON(IncomeToHttp(income))
}

func (api *Api) GetAllocationHandler(r *iz.Request) iz.Responder {
	allocation, err := api.Service.GetAllocation(r.Context())
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(200).JSON(allocation)
}

func (api *Api) AddCategoryHandler(r *iz.Request) iz.Responder {
	var categoryReq CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&categoryReq); err != nil {
		return iz.Respond().Status(400).Text(invalidBody(err))
	}

	allocation, err := api.Service.AddCategory(r.Context(), budget.CategoryRequest{
		Name:       categoryReq.Name,
		Percentage: categoryReq.Percentage,
		Icon:       categoryReq.Icon,
		Color:      categoryReq.Color,
	})
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(201).JSON(allocation)
}

func (api *Api) UpdateCategoryHandler(r *iz.Request) iz.Responder {
	var categoryReq UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&categoryReq); err != nil {
		return iz.Respond().Status(400).Text(invalidBody(err))
	}
	if categoryReq.Percentage == nil {
		return iz.Respond().Status(400).Text("percentage is required")
	}

	allocation, err := api.Service.UpdateCategoryPercentage(r.Context(), r.PathValue("id"), *categoryReq.Percentage)
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(200).JSON(allocation)
}

func (api *Api) DeleteCategoryHandler(r *iz.Request) iz.Responder {
	allocation, err := api.Service.DeleteCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(200).JSON(allocation)
}

func (api *Api) CreateDefaultCategoriesHandler(r *iz.Request) iz.Responder {
	allocation, err := api.Service.CreateDefaultCategories(r.Context())
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(201).JSON(allocation)
}

func (api *Api) SaveTransactionHandler(r *iz.Request) iz.Responder {
	var transactionReq CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&transactionReq); err != nil {
		logging.WithTrace(r.Context()).Errorf("Failed to parse save transaction request: %v", err)
		return iz.Respond().Status(400).Text(invalidBody(err))
	}

	date, err := parseDate(transactionReq.Date)
	if err != nil {
		return errorResponse(r, err)
	}

	transaction, err := api.Service.SaveTransaction(r.Context(), budget.TransactionRequest{
		AccountID:    transactionReq.AccountID,
		Amount:       transactionReq.Amount,
		Date:         date,
		MerchantName: transactionReq.MerchantName,
		Category:     transactionReq.Category,
		Pending:      transactionReq.Pending,
	})
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(201).JSON(transaction)
}

func (api *Api) GetTransactionsHandler(r *iz.Request) iz.Responder {
	transactions, err := api.Service.GetTransactions(r.Context())
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(200).JSON(ListTransactionResponse{Transactions: transactions})
}

func (api *Api) GetBudgetsHandler(r *iz.Request) iz.Responder {
	budgets, err := api.Service.GetBudgets(r.Context())
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(200).JSON(ListBudgetResponse{Budgets: budgets})
}

func (api *Api) UpdateBudgetLimitHandler(r *iz.Request) iz.Responder {
	var budgetReq UpdateBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&budgetReq); err != nil {
		return iz.Respond().Status(400).Text(invalidBody(err))
	}

	updated, err := api.Service.UpdateBudgetLimit(r.Context(), budget.UpdateBudgetLimitRequest{
		ID:           r.PathValue("id"),
		MonthlyLimit: budgetReq.MonthlyLimit,
		YearlyLimit:  budgetReq.YearlyLimit,
	})
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(200).JSON(updated)
}

func (api *Api) GetDashboardHandler(r *iz.Request) iz.Responder {
	dashboard, err := api.Service.Refresh(r.Context())
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(200).JSON(dashboard)
}

func (api *Api) GetSnapshotsHandler(r *iz.Request) iz.Responder {
	period := periodParam(r.URL.Query())
	snapshots, err := api.Service.GetSnapshots(r.Context(), period)
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(200).JSON(ListSnapshotResponse{Period: period, Snapshots: snapshots})
}

func (api *Api) SaveAlertHandler(r *iz.Request) iz.Responder {
	var alertReq CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&alertReq); err != nil {
		return iz.Respond().Status(400).Text(invalidBody(err))
	}

	date, err := parseDate(alertReq.Date)
	if err != nil {
		return errorResponse(r, err)
	}

	alert, err := api.Service.SaveAlert(r.Context(), budget.AlertRequest{
		EmailID:      alertReq.EmailID,
		Merchant:     alertReq.Merchant,
		Date:         date,
		Amount:       alertReq.Amount,
		RawEmailBody: alertReq.RawEmailBody,
	})
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(201).JSON(alert)
}

func (api *Api) GetAlertsHandler(r *iz.Request) iz.Responder {
	alerts, err := api.Service.GetUnlinkedAlerts(r.Context())
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(200).JSON(ListAlertResponse{Alerts: alerts})
}

func (api *Api) FindMatchingAlertsHandler(r *iz.Request) iz.Responder {
	amount, date, err := MatchValidateParams(r.URL.Query())
	if err != nil {
		return errorResponse(r, err)
	}

	alerts, err := api.Service.FindMatchingAlerts(r.Context(), amount, date)
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(200).JSON(ListAlertResponse{Alerts: alerts})
}

func (api *Api) LinkAlertHandler(r *iz.Request) iz.Responder {
	var linkReq LinkAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&linkReq); err != nil {
		return iz.Respond().Status(400).Text(invalidBody(err))
	}
	if linkReq.TransactionID == "" {
		return iz.Respond().Status(400).Text("transaction_id is required")
	}

	alert, err := api.Service.LinkAlert(r.Context(), r.PathValue("id"), linkReq.TransactionID)
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(200).JSON(alert)
}

func (api *Api) DeleteAlertHandler(r *iz.Request) iz.Responder {
	if err := api.Service.DeleteAlert(r.Context(), r.PathValue("id")); err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(200).Text("alert successfully deleted")
}
