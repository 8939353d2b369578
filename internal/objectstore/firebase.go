package objectstore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type FirebaseConfig struct {
	ProjectID             string
	Bucket                string
	CredentialsFile       string
	CredentialsJSONBase64 string
}

// FirebaseStore keeps objects in the project's Cloud Storage bucket.
type FirebaseStore struct {
	bucket     *storage.BucketHandle
	bucketName string
}

func NewFirebaseStore(ctx context.Context, cfg FirebaseConfig) (*FirebaseStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("FIREBASE_STORAGE_BUCKET must be set")
	}

	opts := make([]option.ClientOption, 0, 1)

	switch {
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	case cfg.CredentialsJSONBase64 != "":
		jsonKey, err := base64.StdEncoding.DecodeString(cfg.CredentialsJSONBase64)
		if err != nil {
			return nil, errors.New("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is not a valid base64 string")
		}
		opts = append(opts, option.WithCredentialsJSON(jsonKey))
	}
	// no option: application default credentials

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.Bucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase storage: %w", err)
	}

	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("open bucket %q: %w", cfg.Bucket, err)
	}

	return &FirebaseStore{bucket: bucket, bucketName: cfg.Bucket}, nil
}

func (s *FirebaseStore) Put(ctx context.Context, key, contentType string, data []byte) (Object, error) {
	w := s.bucket.Object(key).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000, immutable"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return Object{}, errors.Join(ErrUploadFailed, err)
	}

	if err := w.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			return Object{}, ErrExists
		}
		return Object{}, errors.Join(ErrUploadFailed, err)
	}

	return Object{
		Key:         key,
		URL:         s.publicURL(key),
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (s *FirebaseStore) Delete(ctx context.Context, key string) error {
	err := s.bucket.Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return err
}

// publicURL is the Firebase download URL form for a public object.
func (s *FirebaseStore) publicURL(key string) string {
	return "https://firebasestorage.googleapis.com/v0/b/" + s.bucketName + "/o/" + url.PathEscape(key) + "?alt=media"
}
