package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/storefront/internal/auth"
	authdomain "github.com/smallbiznis/storefront/internal/auth/domain"
	"github.com/smallbiznis/storefront/internal/auth/session"
	"github.com/smallbiznis/storefront/internal/config"
	"github.com/smallbiznis/storefront/internal/observability"
	obslogger "github.com/smallbiznis/storefront/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/storefront/internal/observability/metrics"
	obstracing "github.com/smallbiznis/storefront/internal/observability/tracing"
	"github.com/smallbiznis/storefront/internal/product"
	productdomain "github.com/smallbiznis/storefront/internal/product/domain"
	"github.com/smallbiznis/storefront/internal/relation"
	relationdomain "github.com/smallbiznis/storefront/internal/relation/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(registerGin),
	auth.Module,
	session.Module,
	product.Module,
	relation.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	authsvc     authdomain.Service
	sessions    *session.Manager
	genID       *snowflake.Node
	productSvc  productdomain.Service
	relationSvc relationdomain.Service
	obsMetrics  *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	Authsvc     authdomain.Service
	Sessions    *session.Manager
	GenID       *snowflake.Node
	ProductSvc  productdomain.Service
	RelationSvc relationdomain.Service
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		authsvc:     p.Authsvc,
		sessions:    p.Sessions,
		genID:       p.GenID,
		productSvc:  p.ProductSvc,
		relationSvc: p.RelationSvc,
		obsMetrics:  p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerCatalogRoutes()

	return svc
}

func (s *Server) registerAuthRoutes() {
	grp := s.engine.Group("/auth")
	grp.POST("/signup", s.Signup)
	grp.POST("/login", s.Login)
	grp.POST("/logout", s.Logout)
	grp.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerCatalogRoutes() {
	api := s.engine.Group("/api")

	// Reads are public; writes resolve and require the caller's identity.
	api.GET("/products", s.AuthOptional(), s.ListProducts)
	api.GET("/products/:id", s.AuthOptional(), s.GetProduct)

	authed := api.Group("", s.AuthRequired())
	authed.POST("/products", s.CreateProduct)
	authed.PUT("/products/:id", s.UpdateProduct)
	authed.PATCH("/products/:id", s.PatchProduct)
	authed.DELETE("/products/:id", s.DeleteProduct)

	authed.GET("/products/:id/relation", s.GetRelation)
	authed.PATCH("/products/:id/relation", s.PatchRelation)
}
