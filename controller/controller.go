package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"prcontacts-backend/docs"
	"prcontacts-backend/middelware"
	"prcontacts-backend/models"
	"prcontacts-backend/services"
	"prcontacts-backend/utils/logger"
	"prcontacts-backend/utils/swagger"
	"prcontacts-backend/worker"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// StatusReporter exposes background worker state on /health
type StatusReporter interface {
	Status() worker.Status
}

type Controller struct {
	Contact *ContactController
	User    *UserController

	config     *models.Config
	logger     logger.Logger
	jwtManager *middelware.JWTManager
	worker     StatusReporter
}

func NewController(cfg *models.Config, log logger.Logger, svc services.ServiceContainerInterface, jwtManager *middelware.JWTManager, status StatusReporter) *Controller {
	return &Controller{
		Contact:    NewContactController(svc.GetContactService(), cfg, log),
		User:       NewUserController(svc.GetUserService(), jwtManager, log),
		config:     cfg,
		logger:     log,
		jwtManager: jwtManager,
		worker:     status,
	}
}

// NewRouter builds the gin engine with middleware and every route mounted
func (c *Controller) NewRouter() *gin.Engine {
	r := gin.New()

	logging := middelware.NewLoggingMiddleware(c.logger)
	r.Use(logging.Recovery())
	r.Use(logging.StructuredLogger())
	r.Use(middelware.NewCORSMiddleware(c.config).CORS())

	c.RegisterRoutes(r, c.config.BasePath)
	return r
}

func (c *Controller) RegisterRoutes(r *gin.Engine, basePath string) {
	api := r.Group(basePath)

	// Health check endpoint (no auth required)
	api.GET("/health", c.Health)

	// Swagger UI with login form
	swaggerConfig := swagger.SwaggerConfig{
		Title:         c.config.AppName + " API",
		SwaggerDocURL: "/swagger/doc.json",
		AuthURL:       basePath + "/auth/login",
	}
	r.GET("/swagger", swagger.ServeSwaggerUI(swaggerConfig))
	r.GET("/swagger/index.html", swagger.ServeSwaggerUI(swaggerConfig))
	r.GET("/swagger/doc.json", swagger.ServeDoc(docs.SwaggerInfo.InstanceName()))

	limiter := middelware.NewRateLimitMiddleware(c.config.AuthRatePerMinute, c.config.AuthRateBurst, c.logger)

	auth := api.Group("/auth")
	auth.POST("/register", limiter.Limit(), c.User.Register)
	auth.POST("/login", limiter.Limit(), c.User.Login)
	auth.POST("/validate", c.jwtManager.ValidateTokenEndpoint)
	auth.GET("/profile", c.jwtManager.AuthMiddleware(), c.User.Profile)
	auth.POST("/logout", c.jwtManager.AuthMiddleware(), c.User.Logout)

	contacts := api.Group("/contacts", c.jwtManager.AuthMiddleware())
	contacts.GET("", c.Contact.ListContacts)
	contacts.GET("/tags", c.Contact.GetTags)
	contacts.GET("/organizations", c.Contact.GetOrganizations)
	contacts.GET("/export", c.Contact.ExportContacts)
	contacts.GET("/:id", c.Contact.GetContact)
	contacts.POST("", c.writeGuard(models.UserRoleEditor, models.UserRoleAdmin), c.Contact.CreateContact)
	contacts.PATCH("/:id", c.writeGuard(models.UserRoleEditor, models.UserRoleAdmin), c.Contact.UpdateContact)
	contacts.DELETE("/:id", c.writeGuard(models.UserRoleAdmin), c.Contact.DeleteContact)
}

// writeGuard enforces roles on writes only when require_editor_for_writes is set
func (c *Controller) writeGuard(roles ...models.UserRole) gin.HandlerFunc {
	if !c.config.RequireEditorForWrites {
		return func(ctx *gin.Context) { ctx.Next() }
	}
	return c.jwtManager.RequireRole(roles...)
}

// Health godoc
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /health [get]
func (c *Controller) Health(ctx *gin.Context) {
	data := gin.H{
		"status":  "healthy",
		"version": c.config.AppVersion,
		"service": c.config.AppName,
		"storage": c.config.StorageDriver,
	}
	if c.worker != nil {
		data["worker"] = c.worker.Status()
	}
	ctx.JSON(http.StatusOK, models.APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: "Service is healthy",
		Data:    data,
	})
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down gracefully
func (c *Controller) Serve(ctx context.Context, handler http.Handler) error {
	srv := &http.Server{
		Addr:    c.config.AppHost + ":" + c.config.AppPort,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		c.logger.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// respondError writes the error envelope for err
func respondError(c *gin.Context, log logger.Logger, message string, err error) {
	resp := models.ErrorResponse(message, err)
	if resp.Code >= http.StatusInternalServerError {
		log.Errorf("%s: %v", message, err)
	} else {
		log.Debugf("%s: %v", message, err)
	}
	c.JSON(resp.Code, resp)
}
