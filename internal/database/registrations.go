// Package database persists RSVPs in Cloud Firestore.
package database

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/jredh-dev/hochzeit/pkg/models"
)

// DefaultCollection holds one document per guest.
const DefaultCollection = "registrations"

// Config locates the Firestore database.
type Config struct {
	ProjectID       string
	CredentialsPath string
	Database        string // "" or "(default)" selects the default database
	Collection      string
}

// RegistrationDB wraps a Firestore client.
type RegistrationDB struct {
	client     *firestore.Client
	collection string
}

// NewRegistrationDB connects to Firestore. FIRESTORE_EMULATOR_HOST is honored
// by the client library.
func NewRegistrationDB(ctx context.Context, cfg Config) (*RegistrationDB, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("missing firebase project id")
	}

	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	var (
		client *firestore.Client
		err    error
	)
	if cfg.Database == "" || cfg.Database == firestore.DefaultDatabaseID {
		app, appErr := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
		if appErr != nil {
			return nil, fmt.Errorf("init firebase app: %w", appErr)
		}
		client, err = app.Firestore(ctx)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, cfg.ProjectID, cfg.Database, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("open firestore: %w", err)
	}

	collection := cfg.Collection
	if collection == "" {
		collection = DefaultCollection
	}
	return &RegistrationDB{client: client, collection: collection}, nil
}

// Close closes the Firestore client.
func (db *RegistrationDB) Close() error {
	return db.client.Close()
}

// SaveRegistration writes reg under key, replacing an earlier RSVP from the
// same guest.
func (db *RegistrationDB) SaveRegistration(ctx context.Context, key string, reg *models.Registration) error {
	if _, err := db.client.Collection(db.collection).Doc(key).Set(ctx, reg); err != nil {
		return fmt.Errorf("save registration %s: %w", reg.ID, err)
	}
	return nil
}
