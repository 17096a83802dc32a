package routes

import (
	"time"

	"clinicdesk/internal/adapters/http/handlers"
	"clinicdesk/internal/adapters/http/middleware"
	"clinicdesk/internal/adapters/persistence/repositories"
	"clinicdesk/internal/config"
	"clinicdesk/internal/core/domain"
	"clinicdesk/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	doctorRepo := repositories.NewDoctorRepository(db)
	patientRepo := repositories.NewPatientRepository(db)
	apptRepo := repositories.NewAppointmentRepository(db)
	invoiceRepo := repositories.NewInvoiceRepository(db)
	recordRepo := repositories.NewMedicalRecordRepository(db)

	// Initialize services
	accessService := services.NewAccessService(doctorRepo, patientRepo, apptRepo)
	authService := services.NewAuthService(userRepo, refreshTokenRepo, doctorRepo, patientRepo, cfg)
	userService := services.NewUserService(db, userRepo, doctorRepo, patientRepo, refreshTokenRepo)
	doctorService := services.NewDoctorService(db, doctorRepo, userRepo)
	patientService := services.NewPatientService(db, patientRepo, userRepo, apptRepo, accessService)
	apptService := services.NewAppointmentService(db, apptRepo, doctorRepo, patientRepo, invoiceRepo, accessService)
	invoiceService := services.NewInvoiceService(invoiceRepo, patientRepo, accessService)
	recordService := services.NewMedicalRecordService(db, recordRepo, apptRepo, accessService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService, accessService)
	doctorHandler := handlers.NewDoctorHandler(doctorService)
	patientHandler := handlers.NewPatientHandler(patientService, recordService)
	apptHandler := handlers.NewAppointmentHandler(apptService, accessService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	recordHandler := handlers.NewMedicalRecordHandler(recordService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	authn := middleware.AuthMiddleware(cfg, userRepo)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Use(middleware.NoCacheHeaders())

	// Auth routes
	authRoutes := apiV1.Group("/auth")
	authRoutes.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	authRoutes.Post("/refresh", middleware.AuthRateLimiter(), authHandler.RefreshToken)
	authRoutes.Post("/logout", authHandler.Logout)
	authRoutes.Post("/register", authn, middleware.AdminOnly(accessService, "user:register"), authHandler.Register)
	authRoutes.Get("/me", authn, authHandler.Me)
	authRoutes.Post("/logout-all", authn, authHandler.LogoutAll)
	authRoutes.Post("/change-password", authn, authHandler.ChangePassword)

	// User management routes
	userRoutes := apiV1.Group("/users", authn)
	userRoutes.Get("/", middleware.AdminOnly(accessService, "user:list"), userHandler.List)
	userRoutes.Get("/:id", userHandler.Get)
	userRoutes.Put("/:id", userHandler.Update)
	userRoutes.Patch("/:id/active", middleware.AdminOnly(accessService, "user:set-active"), userHandler.SetActive)
	userRoutes.Delete("/:id", middleware.AdminOnly(accessService, "user:delete"), userHandler.Delete)

	// Doctor routes
	doctorRoutes := apiV1.Group("/doctors", authn)
	// The directory is the one read under /api safe to cache briefly
	doctorRoutes.Get("/", middleware.PublicCacheHeaders(5*time.Minute), doctorHandler.List)
	doctorRoutes.Get("/:id", middleware.PublicCacheHeaders(5*time.Minute), doctorHandler.Get)
	doctorRoutes.Post("/", middleware.StaffOnly(accessService, "doctor:create"), doctorHandler.Create)
	doctorRoutes.Put("/:id", middleware.StaffOnly(accessService, "doctor:update"), doctorHandler.Update)
	doctorRoutes.Get("/:id/holidays", doctorHandler.ListHolidays)
	doctorRoutes.Post("/:id/holidays", middleware.StaffOnly(accessService, "holiday:add"), doctorHandler.AddHoliday)
	doctorRoutes.Delete("/:id/holidays/:holidayId", middleware.StaffOnly(accessService, "holiday:remove"), doctorHandler.RemoveHoliday)

	// Patient routes
	patientRoutes := apiV1.Group("/patients", authn)
	patientRoutes.Post("/", middleware.StaffOnly(accessService, "patient:create"), patientHandler.Create)
	patientRoutes.Get("/", middleware.StaffOnly(accessService, "patient:list"), patientHandler.List)
	patientRoutes.Get("/:id", patientHandler.Get)
	patientRoutes.Put("/:id", patientHandler.Update)
	patientRoutes.Get("/:id/appointments", patientHandler.Appointments)
	patientRoutes.Get("/:id/medical-records", patientHandler.MedicalRecords)

	// Appointment routes
	apptRoutes := apiV1.Group("/appointments", authn)
	apptRoutes.Post("/", middleware.StaffOnly(accessService, "appointment:book"), apptHandler.Book)
	apptRoutes.Get("/", apptHandler.List)
	apptRoutes.Get("/:id", apptHandler.Get)
	apptRoutes.Put("/:id", middleware.RequireRoles(accessService, "appointment:update", domain.RoleReceptionist, domain.RoleDoctor), apptHandler.Update)

	// Invoice routes
	invoiceRoutes := apiV1.Group("/invoices", authn)
	invoiceRoutes.Get("/", invoiceHandler.List)
	invoiceRoutes.Get("/:id", invoiceHandler.Get)
	invoiceRoutes.Patch("/:id/payment-status", middleware.StaffOnly(accessService, "invoice:update-payment"), invoiceHandler.UpdatePaymentStatus)

	// Medical record routes
	recordRoutes := apiV1.Group("/medical-records", authn)
	recordRoutes.Post("/", middleware.RequireRoles(accessService, "medical-record:create", domain.RoleDoctor), recordHandler.Create)
}
