package auth

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/haulzy/haulzy-backend/config"
)

// FirebaseApp holds the clients derived from one Firebase Admin app.
type FirebaseApp struct {
	Auth      *auth.Client
	Firestore *firestore.Client
}

// InitializeFirebase initializes the Firebase Admin SDK and returns the Auth
// and Firestore clients. Without a credentials file the SDK falls back to
// application default credentials.
func InitializeFirebase(ctx context.Context, cfg *config.FirebaseConfig) (*FirebaseApp, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH or FIREBASE_PROJECT_ID is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	var fbConfig *firebase.Config
	if cfg.ProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firestore client: %w", err)
	}

	return &FirebaseApp{Auth: authClient, Firestore: fs}, nil
}

// Close releases the Firestore connection.
func (a *FirebaseApp) Close() error {
	if a == nil || a.Firestore == nil {
		return nil
	}
	return a.Firestore.Close()
}
