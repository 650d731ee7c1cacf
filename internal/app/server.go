// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"

	"cobramax-service/internal/config"
	"cobramax-service/internal/db"
	authHandler "cobramax-service/internal/handlers/auth"
	chatbotHandler "cobramax-service/internal/handlers/chatbot"
	notifyHandler "cobramax-service/internal/handlers/notification"
	paymentHandler "cobramax-service/internal/handlers/payment"
	ticketHandler "cobramax-service/internal/handlers/ticket"
	"cobramax-service/internal/middleware"
	"cobramax-service/internal/pkg/jwt"
	"cobramax-service/internal/pkg/ratelimit"
	"cobramax-service/internal/repository/postgres"
	"cobramax-service/internal/scheduler"
	authUsecase "cobramax-service/internal/service/auth"
	billingUsecase "cobramax-service/internal/service/billing"
	chatUsecase "cobramax-service/internal/service/chatbot"
	"cobramax-service/internal/service/email"
	notifyUsecase "cobramax-service/internal/service/notification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	jobs   *scheduler.Scheduler
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Println("[REDIS] ✅ Connected successfully")

	// ----- Logger -----
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	s.logger = logger

	// ----- JWT Manager -----
	jwtManager, err := jwt.NewManager(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to build JWT manager: %w", err)
	}

	// ----- Rate Limiter -----
	rateLimiter := ratelimit.NewLimiter(redisClient)

	// ----- Email -----
	var mailSender notifyUsecase.MailSender
	if smtpSender := email.NewEmailSender(
		s.cfg.SMTPHost,
		s.cfg.SMTPPort,
		s.cfg.SMTPUser,
		s.cfg.SMTPPass,
		s.cfg.SMTPFromName,
		s.cfg.SMTPSecure,
	); smtpSender.Configured() {
		mailSender = smtpSender
	} else {
		logger.Warn("smtp not configured, using simulated delivery")
		mailSender = notifyUsecase.NewSimulatedMailSender(logger)
	}

	// ----- Message Providers -----
	var whatsapp notifyUsecase.Provider
	if twilio := notifyUsecase.NewTwilioWhatsApp(s.cfg.Twilio); twilio.Configured() {
		whatsapp = twilio
	} else {
		logger.Warn("twilio whatsapp not configured, using simulated delivery")
		whatsapp = notifyUsecase.NewSimulatedProvider("whatsapp", logger)
	}

	var sms notifyUsecase.Provider
	if twilio := notifyUsecase.NewTwilioSMS(s.cfg.Twilio); twilio.Configured() {
		sms = twilio
	} else {
		sms = notifyUsecase.NewSimulatedProvider("sms", logger)
	}

	// ----- Repositories -----
	userRepo := postgres.NewUserRepository(pool)
	zoneRepo := postgres.NewZoneRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	eventRepo := postgres.NewAccountEventRepository(pool)
	faqRepo := postgres.NewFAQRepository(pool)
	convRepo := postgres.NewConversationRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)
	notifyRepo := postgres.NewNotificationRepository(pool)

	// ----- AI Backend -----
	var completer chatUsecase.Completer
	if s.cfg.Chatbot.OpenAIKey != "" {
		client := chatUsecase.NewOpenAIClient(s.cfg.Chatbot.OpenAIKey, s.cfg.Chatbot.OpenAIModel)
		completer = chatUsecase.NewRetryingCompleter(
			client,
			s.cfg.Chatbot.RetryCount,
			s.cfg.Chatbot.RetryBackoff,
			logger,
		)
	} else {
		logger.Warn("no OpenAI key configured, chatbot runs on the local engine only")
	}

	// ----- Services -----
	authService := authUsecase.NewAuthService(userRepo, jwtManager, rateLimiter, logger)

	notifService := notifyUsecase.NewNotificationService(
		notifyRepo,
		customerRepo,
		zoneRepo,
		mailSender,
		whatsapp,
		sms,
		logger,
	)

	billingService := billingUsecase.NewBillingService(
		paymentRepo,
		customerRepo,
		eventRepo,
		zoneRepo,
		postgres.NewDB(pool),
		notifService,
		s.cfg.Billing,
		logger,
	)

	chatService := chatUsecase.NewChatService(
		faqRepo,
		convRepo,
		ticketRepo,
		customerRepo,
		rateLimiter,
		completer,
		s.cfg.Chatbot,
		logger,
	)

	// ----- Scheduler -----
	s.jobs = scheduler.New(billingService, notifService, s.cfg.Scheduler, logger)
	s.jobs.Start(context.Background())

	// ----- Handlers -----
	authHandlerInst := authHandler.NewAuthHandler(authService, logger)
	chatbotHandlerInst := chatbotHandler.NewChatbotHandler(chatService, logger)
	paymentHandlerInst := paymentHandler.NewPaymentHandler(billingService, logger)
	ticketHandlerInst := ticketHandler.NewTicketHandler(chatService, logger)
	notifHandlerInst := notifyHandler.NewNotificationHandler(notifService, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:    authHandlerInst,
		ChatbotHandler: chatbotHandlerInst,
		PaymentHandler: paymentHandlerInst,
		TicketHandler:  ticketHandlerInst,
		NotifHandler:   notifHandlerInst,
		AuthMiddleware: authMiddleware,
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	log.Printf("🚀 Server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}

// Shutdown stops the background jobs.
func (s *Server) Shutdown(ctx context.Context) error {
	_ = ctx
	if s.jobs != nil {
		s.jobs.Stop()
	}
	return nil
}
