package auth

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/k1w1proplus/chat-backend/config"
)

// InitializeFirebase initializes the Firebase Admin SDK app.
func InitializeFirebase(cfg *config.FirebaseConfig) (*firebase.App, error) {
	if cfg.CredentialsPath == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required")
	}

	opt := option.WithCredentialsFile(cfg.CredentialsPath)
	fbCfg := &firebase.Config{StorageBucket: cfg.StorageBucket}

	app, err := firebase.NewApp(context.Background(), fbCfg, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	return app, nil
}

// AuthClient returns the Auth client used for ID token verification.
func AuthClient(app *firebase.App) (*auth.Client, error) {
	client, err := app.Auth(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}
	return client, nil
}

// StorageBucket returns the app's default Cloud Storage bucket handle.
func StorageBucket(app *firebase.App) (*storage.BucketHandle, error) {
	client, err := app.Storage(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get Storage client: %w", err)
	}

	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("failed to get default bucket: %w", err)
	}
	return bucket, nil
}
