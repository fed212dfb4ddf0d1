package server

import (
	"net/http"
	"time"

	"agroyield/internal/config"
	"agroyield/internal/handler"
	"agroyield/internal/middleware"
	"agroyield/internal/predictor"
	"agroyield/internal/repository"
	"agroyield/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	cfg    *config.Config
	logger *zap.Logger
	log    *logrus.Logger
}

func NewServer(
	cfg *config.Config,
	farmerRepo repository.FarmerRepository,
	farmRepo repository.FarmRepository,
	predictionRepo repository.PredictionRepository,
	logger *zap.Logger,
	log *logrus.Logger,
) *Server {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{
		router: router,
		cfg:    cfg,
		logger: logger,
		log:    log,
	}
	s.setupRoutes(farmerRepo, farmRepo, predictionRepo)
	return s
}

func (s *Server) setupRoutes(
	farmerRepo repository.FarmerRepository,
	farmRepo repository.FarmRepository,
	predictionRepo repository.PredictionRepository,
) {
	jwtSecret := []byte(s.cfg.Auth.JWTSecret)

	authService := service.NewAuthService(farmerRepo, jwtSecret, s.cfg.TokenTTL(), s.logger)
	portfolioService := service.NewPortfolioService(farmerRepo, farmRepo, s.logger)

	client := predictor.NewClient(s.cfg.ModelService.URL, s.cfg.PredictTimeout())
	broker := predictor.NewBroker(client, s.cfg.PredictTimeout(), s.logger)

	authHandler := handler.NewAuthHandler(authService, s.log)
	farmHandler := handler.NewFarmHandler(portfolioService, s.log)
	predictHandler := handler.NewPredictHandler(broker, predictionRepo, s.cfg.ModelService.URL, s.log)

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// Prediction endpoints stay public so the synthesizer remains reachable
	// for farmers without an account.
	api.POST("/predict", predictHandler.Predict)
	api.POST("/predict/batch", predictHandler.PredictBatch)
	api.POST("/feedback", predictHandler.SubmitFeedback)
	api.GET("/predictions/:id/feedback", predictHandler.ListFeedback)
	api.GET("/analytics/predictions", predictHandler.Analytics)
	api.GET("/metadata", predictHandler.Metadata)

	authRequired := api.Group("")
	authRequired.Use(middleware.AuthMiddleware(jwtSecret, s.logger))
	{
		authRequired.GET("/me", authHandler.Me)
		authRequired.PUT("/me", authHandler.UpdateMe)
		authRequired.DELETE("/me", authHandler.DeleteMe)

		authRequired.GET("/farms", farmHandler.List)
		authRequired.POST("/farms", farmHandler.Create)
		authRequired.PUT("/farms", farmHandler.Reconcile)
		authRequired.PUT("/farms/:id", farmHandler.Update)
		authRequired.DELETE("/farms/:id", farmHandler.Delete)
	}
}

// Router exposes the underlying engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Run(addr string) error {
	s.log.Infof("Server starting on %s...", addr)
	return s.router.Run(addr)
}
