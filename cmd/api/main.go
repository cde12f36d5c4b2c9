package main

import (
	"log"
	"os"

	_ "crewops/api/swagger" // swagger docs
	"crewops/internal/database"
	"crewops/internal/handler"
	"crewops/internal/middleware"
	"crewops/internal/repository"
	"crewops/internal/service"
	"crewops/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Crew Operations API
// @version         1.0
// @description     Mission, quote, crew assignment, and invoicing workflow for business aviation operations.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Repositories
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	missionRepo := repository.NewMissionRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Services
	notificationService := service.NewNotificationService(notificationRepo, wsHub)
	userService := service.NewUserService(userRepo, auditRepo, txManager)
	clientService := service.NewClientService(clientRepo)
	missionService := service.NewMissionService(missionRepo, clientRepo, auditRepo, txManager)
	quoteService := service.NewQuoteService(quoteRepo, missionRepo, clientRepo, auditRepo, txManager)
	approvalService := service.NewApprovalService(tokenRepo, quoteRepo, missionRepo, auditRepo, txManager, notificationService)
	assignmentService := service.NewAssignmentService(assignmentRepo, missionRepo, userRepo, documentRepo, auditRepo, txManager)
	documentService := service.NewDocumentService(documentRepo, auditRepo, txManager)
	invoiceService := service.NewInvoiceService(invoiceRepo, assignmentRepo, auditRepo, txManager, notificationService)
	workflowService := service.NewWorkflowService(missionRepo, quoteRepo, assignmentRepo, invoiceRepo, documentRepo, auditRepo, txManager, notificationService)
	invitationService := service.NewInvitationService(invitationRepo, userRepo, auditRepo, txManager)
	auditService := service.NewAuditService(auditRepo)

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	clientHandler := handler.NewClientHandler(clientService)
	missionHandler := handler.NewMissionHandler(missionService, workflowService)
	quoteHandler := handler.NewQuoteHandler(quoteService)
	approvalHandler := handler.NewApprovalHandler(approvalService)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService)
	documentHandler := handler.NewDocumentHandler(documentService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	invitationHandler := handler.NewInvitationHandler(invitationService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Authenticated API
	api := router.Group("/api")
	userHandler.RegisterRoutes(api)
	clientHandler.RegisterRoutes(api)
	missionHandler.RegisterRoutes(api)
	quoteHandler.RegisterRoutes(api)
	approvalHandler.RegisterRoutes(api)
	assignmentHandler.RegisterRoutes(api)
	documentHandler.RegisterRoutes(api)
	invoiceHandler.RegisterRoutes(api)
	invitationHandler.RegisterRoutes(api)
	notificationHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	// Tokenized client approval pages, no session required
	approvalHandler.RegisterPublicRoutes(router.Group("/public"))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
