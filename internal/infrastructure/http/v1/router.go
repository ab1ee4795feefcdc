// Package v1 provides HTTP API version 1.
package v1

import (
	"context"

	"github.com/gin-gonic/gin"

	"taskhive/internal/core/apperror"
	"taskhive/internal/core/id"
	"taskhive/internal/domain/activity"
	"taskhive/internal/domain/attachment"
	"taskhive/internal/domain/auth"
	"taskhive/internal/domain/cascade"
	"taskhive/internal/domain/comment"
	"taskhive/internal/domain/department"
	"taskhive/internal/domain/material"
	"taskhive/internal/domain/notification"
	"taskhive/internal/domain/organization"
	"taskhive/internal/domain/refs"
	"taskhive/internal/domain/task"
	"taskhive/internal/domain/user"
	"taskhive/internal/domain/vendor"
	"taskhive/internal/infrastructure/http/v1/handlers"
	"taskhive/internal/infrastructure/http/v1/middleware"
	"taskhive/internal/infrastructure/realtime"
	"taskhive/internal/infrastructure/storage/postgres"
	"taskhive/internal/infrastructure/storage/postgres/auth_repo"
	"taskhive/internal/infrastructure/storage/postgres/entity_repo"
	"taskhive/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWT issues and validates access tokens
	JWT *auth.JWTService

	// Hub broadcasts change events to websocket subscribers (optional)
	Hub *realtime.Hub
}

// NewRouter creates and configures the Gin router. The whole dependency
// graph is assembled here: repositories, probes, the reference resolver,
// services in topological order, and the cascade registry.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	txm := postgres.NewTxManager(cfg.Pool)

	auditSvc, err := postgres.NewAuditService(txm)
	if err != nil {
		return nil, err
	}
	recorder := postgres.NewRecorder(auditSvc, postgres.NewOutboxPublisher(txm))

	// --- Repositories ---
	orgRepo := entity_repo.NewOrganizationRepo(txm)
	deptRepo := entity_repo.NewDepartmentRepo(txm)
	userRepo := entity_repo.NewUserRepo(txm)
	taskRepo := entity_repo.NewTaskRepo(txm)
	activityRepo := entity_repo.NewActivityRepo(txm)
	commentRepo := entity_repo.NewCommentRepo(txm)
	attachmentRepo := entity_repo.NewAttachmentRepo(txm)
	materialRepo := entity_repo.NewMaterialRepo(txm)
	notificationRepo := entity_repo.NewNotificationRepo(txm)
	vendorRepo := entity_repo.NewVendorRepo(txm)
	journalRepo := entity_repo.NewMaterialJournalRepo(txm)

	// --- Probes: live-existence lookups for referential validation ---
	orgProbe := func(ctx context.Context, entityID id.ID) (*refs.Ref, error) {
		o, err := orgRepo.GetByID(ctx, entityID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return &refs.Ref{OrgID: o.ID}, nil
	}
	deptProbe := func(ctx context.Context, entityID id.ID) (*refs.Ref, error) {
		d, err := deptRepo.GetByID(ctx, entityID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return &refs.Ref{OrgID: d.OrgID, DeptID: d.ID}, nil
	}
	taskProbe := func(ctx context.Context, entityID id.ID) (*refs.Ref, error) {
		t, err := taskRepo.GetByID(ctx, entityID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return &refs.Ref{OrgID: t.OrgID, DeptID: t.DeptID}, nil
	}
	activityProbe := func(ctx context.Context, entityID id.ID) (*refs.Ref, error) {
		a, err := activityRepo.GetByID(ctx, entityID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return &refs.Ref{OrgID: a.OrgID, DeptID: a.DeptID}, nil
	}
	commentProbe := func(ctx context.Context, entityID id.ID) (*refs.Ref, error) {
		cm, err := commentRepo.GetByID(ctx, entityID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return &refs.Ref{OrgID: cm.OrgID, DeptID: cm.DeptID}, nil
	}
	matProbe := func(ctx context.Context, entityID id.ID) (*refs.Ref, error) {
		m, err := materialRepo.GetByID(ctx, entityID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return &refs.Ref{OrgID: m.OrgID, DeptID: m.DeptID}, nil
	}
	vendorProbe := func(ctx context.Context, entityID id.ID) (*refs.Ref, error) {
		v, err := vendorRepo.GetByID(ctx, entityID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return &refs.Ref{OrgID: v.OrgID}, nil
	}
	userProbe := func(ctx context.Context, userID id.ID) (*refs.UserRef, error) {
		u, err := userRepo.GetByID(ctx, userID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return &refs.UserRef{OrgID: u.OrgID, DeptID: u.DeptID, Role: u.Role}, nil
	}

	resolver := refs.NewResolver()
	resolver.Register(task.EntityType, taskProbe)
	resolver.Register(activity.EntityType, activityProbe)
	resolver.Register(comment.EntityType, commentProbe)

	// --- Services, leaves first ---
	commentSvc := comment.NewService(commentRepo, txm, attachmentRepo, resolver, userProbe, recorder)
	attachmentSvc := attachment.NewService(attachmentRepo, txm, resolver, userProbe, recorder)
	notificationSvc := notification.NewService(notificationRepo, txm, resolver, userProbe, recorder)
	activitySvc := activity.NewService(
		activityRepo, txm, commentSvc, commentRepo, attachmentRepo,
		taskProbe, matProbe, userProbe, recorder,
	)
	taskSvc := task.NewService(
		taskRepo, txm, activitySvc, activityRepo, commentSvc, commentRepo,
		attachmentRepo, notificationRepo,
		deptProbe, vendorProbe, matProbe, userProbe, recorder,
	)
	userSvc := user.NewService(userRepo, txm, deptProbe, recorder)
	materialSvc := material.NewService(
		materialRepo, txm,
		[]material.LineItemStore{taskRepo, activityRepo},
		journalRepo, deptProbe, recorder,
	)
	vendorSvc := vendor.NewService(vendorRepo, txm, taskRepo, recorder)

	deptNets := []department.ScopedNet{
		{Name: "activities", Store: activityRepo},
		{Name: "comments", Store: commentRepo},
		{Name: "attachments", Store: attachmentRepo},
		{Name: "materials", Store: materialRepo},
		{Name: "notifications", Store: notificationRepo},
	}
	deptSvc := department.NewService(
		deptRepo, txm, userRepo, taskSvc, taskRepo, deptNets, orgProbe, recorder,
	)

	orgNets := []department.ScopedNet{
		{Name: "users", Store: userRepo},
		{Name: "tasks", Store: taskRepo},
		{Name: "activities", Store: activityRepo},
		{Name: "comments", Store: commentRepo},
		{Name: "attachments", Store: attachmentRepo},
		{Name: "materials", Store: materialRepo},
		{Name: "notifications", Store: notificationRepo},
		{Name: "vendors", Store: vendorRepo},
	}
	orgSvc := organization.NewService(orgRepo, txm, deptSvc, deptRepo, orgNets, recorder)

	registry := cascade.NewRegistry()
	registry.Register(organization.EntityType, orgSvc)
	registry.Register(department.EntityType, deptSvc)
	registry.Register(user.EntityType, userSvc)
	registry.Register(task.EntityType, taskSvc)
	registry.Register(activity.EntityType, activitySvc)
	registry.Register(comment.EntityType, commentSvc)
	registry.Register(attachment.EntityType, attachmentSvc)
	registry.Register(notification.EntityType, notificationSvc)
	registry.Register(material.EntityType, materialSvc)

	authSvc := auth.NewService(userSvc, auth_repo.NewTokenRepo(txm), cfg.JWT)

	// --- Handlers & routes ---
	base := handlers.NewBaseHandler()

	apiV1 := router.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(base, authSvc)
	publicAuth := apiV1.Group("/auth")
	protectedAuth := apiV1.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.JWT))
	authHandler.RegisterRoutes(publicAuth, protectedAuth)

	protected := apiV1.Group("")
	protected.Use(middleware.Auth(cfg.JWT))

	RegisterEntityRoutes(protected.Group("/organizations"),
		handlers.NewOrganizationHandler(base, orgSvc, txm, orgRepo.GetByIDAny))
	RegisterEntityRoutes(protected.Group("/departments"),
		handlers.NewDepartmentHandler(base, deptSvc, txm, deptRepo.GetByIDAny))
	RegisterEntityRoutes(protected.Group("/users"),
		handlers.NewUserHandler(base, userSvc, txm, userRepo.GetByIDAny))
	RegisterEntityRoutes(protected.Group("/tasks"),
		handlers.NewTaskHandler(base, taskSvc, txm, taskRepo.GetByIDAny))
	RegisterEntityRoutes(protected.Group("/activities"),
		handlers.NewActivityHandler(base, activitySvc, txm, activityRepo.GetByIDAny))
	RegisterEntityRoutes(protected.Group("/comments"),
		handlers.NewCommentHandler(base, commentSvc, txm, commentRepo.GetByIDAny))
	RegisterEntityRoutes(protected.Group("/attachments"),
		handlers.NewAttachmentHandler(base, attachmentSvc, txm, attachmentRepo.GetByIDAny))
	RegisterEntityRoutes(protected.Group("/materials"),
		handlers.NewMaterialHandler(base, materialSvc, txm, materialRepo.GetByIDAny))
	RegisterEntityRoutes(protected.Group("/vendors"),
		handlers.NewVendorHandler(base, vendorSvc, txm, vendorRepo.GetByIDAny))

	notifications := protected.Group("/notifications")
	notificationHandler := handlers.NewNotificationHandler(base, notificationSvc, txm, notificationRepo.GetByIDAny)
	RegisterEntityRoutes(notifications, notificationHandler)
	notifications.POST("/:id/read", notificationHandler.MarkRead)

	auditHandler := handlers.NewAuditHandler(base, auditSvc)
	protected.GET("/audit/:entityType/:id", auditHandler.History)

	adminHandler := handlers.NewAdminHandler(base, registry, txm)
	admin := protected.Group("/admin/cascade")
	{
		admin.DELETE("/:entityType/:id", adminHandler.Cascade)
		admin.POST("/:entityType/:id/restore", adminHandler.Restore)
	}

	if cfg.Hub != nil {
		wsHandler := handlers.NewWSHandler(base, cfg.Hub)
		protected.GET("/ws", wsHandler.Subscribe)
	}

	return router, nil
}
