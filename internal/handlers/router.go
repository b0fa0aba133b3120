package handlers

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"event-ledger-service/internal/config"
	"event-ledger-service/internal/models"
	"event-ledger-service/internal/services"
)

func SetupRouter(svc *services.Services, cfg *config.Config, logger logrus.FieldLogger) http.Handler {
	router := mux.NewRouter()
	router.Use(loggingMiddleware(logger))

	router.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(jsonContentTypeMiddleware)

	authHandler := NewAuthHandler(svc.Auth, logger)
	stallHandler := NewStallHandler(svc.Stalls, logger)
	dataHandler := NewDataHandler(svc.Stalls, logger)
	billingHandler := NewBillingHandler(svc.Billing, logger)
	paymentHandler := NewPaymentHandler(svc.Payments, logger)
	registrationHandler := NewRegistrationHandler(svc.Registrations, logger)
	reconciliationHandler := NewReconciliationHandler(svc.Accounts, logger)
	enquiryHandler := NewEnquiryHandler(svc.Enquiries, logger)
	directoryHandler := NewDirectoryHandler(svc.Directory, logger)

	// Public routes
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/public/enquiry-fields", enquiryHandler.ListFields).Methods(http.MethodGet)
	api.HandleFunc("/public/enquiries", enquiryHandler.SubmitEnquiry).Methods(http.MethodPost)
	api.HandleFunc("/public/survey-content", directoryHandler.ListSurveyContent).Methods(http.MethodGet)

	// Admin routes, one subrouter per permission
	requireLogin := requireAuth(svc.Auth)
	guarded := func(permission string) *mux.Router {
		sub := api.NewRoute().Subrouter()
		sub.Use(requireLogin, requirePermission(permission))
		return sub
	}

	stalls := guarded(models.PermissionStalls)
	stalls.HandleFunc("/stalls", stallHandler.ListStalls).Methods(http.MethodGet)
	stalls.HandleFunc("/stalls", stallHandler.CreateStall).Methods(http.MethodPost)
	stalls.HandleFunc("/stalls/{id:[0-9]+}", stallHandler.GetStall).Methods(http.MethodGet)
	stalls.HandleFunc("/stalls/{id:[0-9]+}/verify", stallHandler.VerifyStall).Methods(http.MethodPost)
	stalls.HandleFunc("/stalls/{id:[0-9]+}/products", stallHandler.ListProducts).Methods(http.MethodGet)
	stalls.HandleFunc("/stalls/{id:[0-9]+}/products", stallHandler.AddProduct).Methods(http.MethodPost)
	stalls.HandleFunc("/stalls/{id:[0-9]+}/products/bulk", dataHandler.ImportProducts).Methods(http.MethodPost)
	stalls.HandleFunc("/products/{id:[0-9]+}/pricing", stallHandler.UpdateProductPricing).Methods(http.MethodPut)

	billing := guarded(models.PermissionBilling)
	billing.HandleFunc("/billing", billingHandler.ListBillingTransactions).Methods(http.MethodGet)
	billing.HandleFunc("/billing", billingHandler.CreateBillingTransaction).Methods(http.MethodPost)
	billing.HandleFunc("/billing/{id:[0-9]+}", billingHandler.GetBillingTransaction).Methods(http.MethodGet)

	payments := guarded(models.PermissionPayments)
	payments.HandleFunc("/payments", paymentHandler.ListPayments).Methods(http.MethodGet)
	payments.HandleFunc("/payments", paymentHandler.RecordPayment).Methods(http.MethodPost)

	registrations := guarded(models.PermissionRegistrations)
	registrations.HandleFunc("/registrations", registrationHandler.ListRegistrations).Methods(http.MethodGet)
	registrations.HandleFunc("/registrations", registrationHandler.CreateRegistration).Methods(http.MethodPost)

	accounts := guarded(models.PermissionAccounts)
	accounts.HandleFunc("/stalls/{id:[0-9]+}/balance", reconciliationHandler.GetStallBalance).Methods(http.MethodGet)
	accounts.HandleFunc("/accounts/summary", reconciliationHandler.GetAccountsSummary).Methods(http.MethodGet)
	accounts.HandleFunc("/accounts/export", reconciliationHandler.ExportLedger).Methods(http.MethodGet)

	forms := guarded(models.PermissionForms)
	forms.HandleFunc("/enquiry-fields", enquiryHandler.ListFields).Methods(http.MethodGet)
	forms.HandleFunc("/enquiry-fields", enquiryHandler.CreateField).Methods(http.MethodPost)
	forms.HandleFunc("/enquiries", enquiryHandler.ListEnquiries).Methods(http.MethodGet)

	directory := guarded(models.PermissionDirectory)
	directory.HandleFunc("/panchayaths", directoryHandler.ListPanchayaths).Methods(http.MethodGet)
	directory.HandleFunc("/panchayaths", directoryHandler.CreatePanchayath).Methods(http.MethodPost)
	directory.HandleFunc("/panchayaths/{id:[0-9]+}/wards", directoryHandler.ListWards).Methods(http.MethodGet)
	directory.HandleFunc("/panchayaths/{id:[0-9]+}/wards", directoryHandler.CreateWard).Methods(http.MethodPost)
	directory.HandleFunc("/survey-content", directoryHandler.CreateSurveyContent).Methods(http.MethodPost)

	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	})(router)
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status": "healthy",
	}
	respondWithJSON(w, http.StatusOK, response)
}
