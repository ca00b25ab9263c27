package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/jmoiron/sqlx"

	"github.com/AKT74/shareulbi-backend/internal/activity"
	"github.com/AKT74/shareulbi-backend/internal/config"
	"github.com/AKT74/shareulbi-backend/internal/db"
	"github.com/AKT74/shareulbi-backend/internal/markdown"
	"github.com/AKT74/shareulbi-backend/internal/media"
	"github.com/AKT74/shareulbi-backend/internal/repository"
	"github.com/AKT74/shareulbi-backend/internal/service"
	"github.com/AKT74/shareulbi-backend/internal/storage"
)

type App struct {
	Cfg     *config.Config
	DB      *sqlx.DB
	Storage storage.Storage

	bus        *gochannel.GoChannel
	subscriber *activity.Subscriber

	AuthService        *service.AuthService
	UserService        *service.UserService
	EmailService       *service.EmailService
	MediaService       *service.MediaService
	PostService        *service.PostService
	ValidationService  *service.ValidationService
	InteractionService *service.InteractionService
	ReferenceService   *service.ReferenceService
	ModerationService  *service.ModerationService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	fileRepository := repository.NewFileRepository(database)
	postRepository := repository.NewPostRepository(database, fileRepository)
	categoryRepository := repository.NewCategoryRepository(database)
	departmentRepository := repository.NewDepartmentRepository(database)
	interactionRepository := repository.NewInteractionRepository(database)
	topicRepository := repository.NewTopicRepository(database)
	reportRepository := repository.NewReportRepository(database)
	activityRepository := repository.NewActivityRepository(database)

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Activity bus: handlers publish, one consumer writes activity_logs
	bus := activity.NewPubSub()
	subscriber := activity.NewSubscriber(bus, activityRepository)
	err = subscriber.Start(context.Background())
	if err != nil {
		bus.Close()
		database.Close()
		return nil, fmt.Errorf("failed to start activity subscriber: %w", err)
	}
	activityLog := activity.NewPublisher(bus)

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	deriver := media.NewExecDeriver(cfg.FFmpegPath, cfg.FFprobePath, cfg.PdftoppmPath, cfg.MediaTempDir)
	mediaService := service.NewMediaService(fileRepository, fileStorage, deriver, cfg.PDFPreviewPages, cfg.BackgroundTimeout)

	authService := service.NewAuthService(
		userRepository,
		emailService,
		activityLog,
		service.EmailPolicy{
			StudentDomain:  cfg.StudentEmailDomain,
			LecturerDomain: cfg.LecturerEmailDomain,
		},
		cfg.JWTSecret,
		cfg.JWTExpiry,
		cfg.SecureCookies(),
	)
	userService := service.NewUserService(userRepository, activityRepository, emailService, activityLog)
	postService := service.NewPostService(
		postRepository,
		categoryRepository,
		mediaService,
		activityLog,
		markdown.NewParser(),
		service.UploadLimits{
			VideoMaxBytes: cfg.VideoMaxBytes,
			PDFMaxBytes:   cfg.PDFMaxBytes,
		},
	)
	validationService := service.NewValidationService(postRepository, mediaService, activityLog)
	interactionService := service.NewInteractionService(interactionRepository, postRepository, mediaService, activityLog)
	referenceService := service.NewReferenceService(departmentRepository, categoryRepository, activityLog)
	moderationService := service.NewModerationService(topicRepository, reportRepository, postRepository, activityLog)

	return &App{
		Cfg:                cfg,
		DB:                 database,
		Storage:            fileStorage,
		bus:                bus,
		subscriber:         subscriber,
		AuthService:        authService,
		UserService:        userService,
		EmailService:       emailService,
		MediaService:       mediaService,
		PostService:        postService,
		ValidationService:  validationService,
		InteractionService: interactionService,
		ReferenceService:   referenceService,
		ModerationService:  moderationService,
	}, nil
}

func (a *App) UploadLimits() service.UploadLimits {
	return service.UploadLimits{
		VideoMaxBytes: a.Cfg.VideoMaxBytes,
		PDFMaxBytes:   a.Cfg.PDFMaxBytes,
	}
}

// Close drains background PDF work, flushes the activity bus and closes the
// database, in that order. ctx bounds the wait for background work.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if a.MediaService != nil {
		err := a.MediaService.Wait(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("media tasks: %w", err))
		}
	}

	if a.bus != nil {
		err := a.bus.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("activity bus: %w", err))
		}
		a.subscriber.Wait()
	}

	if a.DB != nil {
		err := a.DB.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}

	return errors.Join(errs...)
}
