package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"petmatch/internal/adapter/api"
	"petmatch/internal/adapter/api/handler"
	apimiddleware "petmatch/internal/adapter/api/middleware"
	"petmatch/internal/adapter/api/router"
	"petmatch/internal/adapter/repository"
	"petmatch/internal/domain/service"
	"petmatch/internal/infrastructure/firebase"
	"petmatch/internal/infrastructure/storage"
	"petmatch/internal/infrastructure/websocket"
	"petmatch/internal/usecase"
	"petmatch/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption

	// Service account from environment variable (for production), file path
	// as fallback (for local development).
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	} else if serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); serviceAccountPath != "" {
		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}
		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	}

	authClient, err := firebase.NewAuthClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	petRepo := repository.NewFirestorePetRepository(firestoreClient)
	matchRepo := repository.NewFirestoreMatchRepository(firestoreClient)
	conversationRepo := repository.NewFirestoreConversationRepository(firestoreClient)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	petResolver := service.NewPetResolver(petRepo, userRepo)
	identityResolver := service.NewIdentityResolver(userRepo)

	userUseCase := usecase.NewUserUseCase(userRepo, authClient)
	petUseCase := usecase.NewPetUseCase(petRepo, userRepo, storageClient)
	conversationUseCase := usecase.NewConversationUseCase(conversationRepo, petResolver, identityResolver, wsManager)
	matchUseCase := usecase.NewMatchUseCase(matchRepo, conversationUseCase, petResolver, identityResolver, wsManager)

	// Keep the in-memory match cache current and fan feed events out to
	// connected clients.
	matchUseCase.StartMatchFeed(ctx)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)

	router.Setup(e, router.Handlers{
		User:         handler.NewUserHandler(userUseCase),
		Pet:          handler.NewPetHandler(petUseCase),
		Match:        handler.NewMatchHandler(matchUseCase),
		Conversation: handler.NewConversationHandler(conversationUseCase),
		WebSocket:    handler.NewWebSocketHandler(wsManager, authMiddleware),
		Health:       handler.NewHealthHandler(),
	}, authMiddleware)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
