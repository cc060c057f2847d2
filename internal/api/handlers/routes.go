package handlers

import "net/http"

// Handlers groups every endpoint handler. Nil members leave their routes unregistered.
type Handlers struct {
	Imports      *ImportsHandler
	Transactions *TransactionsHandler
	Budget       *BudgetHandler
	Goals        *GoalsHandler
	Dashboard    *DashboardHandler
	Categories   *CategoriesHandler
	Receipts     *ReceiptsHandler
	Advisor      *AdvisorHandler
	Jobs         *JobsHandler
}

// NewRouter registers the API routes. Unsupported methods get 405 from ServeMux.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	if h.Imports != nil {
		mux.HandleFunc("POST /api/imports", h.Imports.Import)
		mux.HandleFunc("POST /api/imports/jobs", h.Imports.EnqueueImport)
		mux.HandleFunc("POST /api/imports/upload", h.Imports.UploadAndEnqueue)
	}
	if h.Transactions != nil {
		mux.HandleFunc("GET /api/transactions", h.Transactions.ListTransactions)
		mux.HandleFunc("POST /api/transactions", h.Transactions.CreateTransaction)
		mux.HandleFunc("PUT /api/transactions/{id}", h.Transactions.UpdateTransaction)
		mux.HandleFunc("DELETE /api/transactions/{id}", h.Transactions.DeleteTransaction)
	}
	if h.Budget != nil {
		mux.HandleFunc("GET /api/budget", h.Budget.ListBudget)
		mux.HandleFunc("PUT /api/budget", h.Budget.ReplaceBudget)
		mux.HandleFunc("POST /api/budget", h.Budget.AddBudgetItem)
	}
	if h.Goals != nil {
		mux.HandleFunc("GET /api/goals", h.Goals.ListGoals)
		mux.HandleFunc("POST /api/goals", h.Goals.UpsertGoal)
		mux.HandleFunc("DELETE /api/goals/{id}", h.Goals.DeleteGoal)
	}
	if h.Dashboard != nil {
		mux.HandleFunc("GET /api/dashboard", h.Dashboard.GetDashboard)
	}
	if h.Categories != nil {
		mux.HandleFunc("GET /api/categories", h.Categories.ListCategories)
	}
	if h.Receipts != nil {
		mux.HandleFunc("POST /api/receipts", h.Receipts.ExtractReceipt)
	}
	if h.Advisor != nil {
		mux.HandleFunc("POST /api/advisor", h.Advisor.Ask)
	}
	if h.Jobs != nil {
		mux.HandleFunc("GET /api/jobs", h.Jobs.ListJobs)
		mux.HandleFunc("GET /api/jobs/{id}", h.Jobs.GetJob)
	}

	mux.HandleFunc("GET /health", Health)
	return mux
}
