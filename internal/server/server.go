package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/railzwaylabs/directdebit/internal/config"
	"github.com/railzwaylabs/directdebit/internal/payment/domain"
	providerdomain "github.com/railzwaylabs/directdebit/internal/providers/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	requestIDHeader     = "X-Request-ID"
	contextRequestIDKey = "request_id"
)

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(RunHTTP),
)

type Params struct {
	fx.In

	Cfg      config.Config
	Log      *zap.Logger
	Engine   *gin.Engine
	Gatherer prometheus.Gatherer `optional:"true"`

	TransactionSvc    domain.TransactionService
	ProvisioningSvc   domain.ProvisioningService
	ReconciliationSvc domain.ReconciliationService
	ProviderConfigSvc providerdomain.Service
	Gateways          domain.GatewayResolver
}

type Server struct {
	cfg      config.Config
	log      *zap.Logger
	engine   *gin.Engine
	gatherer prometheus.Gatherer

	transactionSvc    domain.TransactionService
	provisioningSvc   domain.ProvisioningService
	reconciliationSvc domain.ReconciliationService
	providerConfigSvc providerdomain.Service
	gateways          domain.GatewayResolver
}

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID(), AccessLog(log.Named("http")))
	return engine
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:               p.Cfg,
		log:               p.Log.Named("server"),
		engine:            p.Engine,
		gatherer:          p.Gatherer,
		transactionSvc:    p.TransactionSvc,
		provisioningSvc:   p.ProvisioningSvc,
		reconciliationSvc: p.ReconciliationSvc,
		providerConfigSvc: p.ProviderConfigSvc,
		gateways:          p.Gateways,
	}
}

func (s *Server) RegisterRoutes() {
	r := s.engine

	r.GET("/health", s.Health)
	r.GET("/health/tenant", s.OrgRequired(), s.TenantHealth)
	r.GET("/metrics", s.Metrics)

	api := r.Group("/api", s.OrgRequired())

	api.POST("/checkout", s.CreateCheckout)
	api.POST("/accounts/:id/mandates", s.FinalizeMandate)

	api.GET("/accounts/:id/payment-methods", s.ListPaymentMethods)
	api.PUT("/accounts/:id/payment-methods", s.ResetPaymentMethods)
	api.GET("/accounts/:id/payment-methods/:pm_id", s.GetPaymentMethod)
	api.DELETE("/accounts/:id/payment-methods/:pm_id", s.DeletePaymentMethod)
	api.POST("/accounts/:id/payment-methods/:pm_id/default", s.SetDefaultPaymentMethod)
	api.GET("/payment-methods/search", s.SearchPaymentMethods)

	api.POST("/transactions", s.ExecuteTransaction)
	api.GET("/accounts/:id/payments/:payment_id/transactions", s.ListTransactions)
	api.GET("/payments/search", s.SearchPayments)

	api.POST("/notifications", s.ProcessNotification)

	api.PUT("/providers/:provider/config", s.UpsertProviderConfig)
}

// RequestID tags every request with a ulid unless the caller supplied one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = ulid.Make().String()
		}
		c.Set(contextRequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func AccessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(contextRequestIDKey)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.Last().Error()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("request failed", fields...)
			return
		}
		log.Info("request", fields...)
	}
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log = log.Named("http")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
