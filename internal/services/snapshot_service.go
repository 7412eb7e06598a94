package services

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go"
	"google.golang.org/api/option"

	"github.com/SirClappington/cf-graphql-demo/internal/demo"
	"github.com/SirClappington/cf-graphql-demo/internal/errors"
	"github.com/SirClappington/cf-graphql-demo/internal/models"
)

// SnapshotStore persists a captured space so it can be served as a demo.
type SnapshotStore interface {
	Save(ctx context.Context, data *models.DemoData) error
	Load(ctx context.Context) (*models.DemoData, error)
}

// FileSnapshotStore keeps the dataset in a local JSON file.
type FileSnapshotStore struct {
	path   string
	logger *log.Logger
}

func NewFileSnapshotStore(path string, logger *log.Logger) *FileSnapshotStore {
	return &FileSnapshotStore{path: path, logger: logger}
}

func (fs *FileSnapshotStore) Save(_ context.Context, data *models.DemoData) error {
	if dir := filepath.Dir(fs.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
	}

	f, err := os.Create(fs.path)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer f.Close()

	if err := demo.Encode(f, data); err != nil {
		return err
	}

	fs.logger.Printf("Snapshot of space %s stored in %s", data.SpaceID, fs.path)
	return nil
}

func (fs *FileSnapshotStore) Load(_ context.Context) (*models.DemoData, error) {
	f, err := os.Open(fs.path)
	if stderrors.Is(err, os.ErrNotExist) {
		return nil, errors.NewNotFoundError(fmt.Sprintf("snapshot file %s does not exist", fs.path))
	}
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	data, err := demo.Decode(f)
	if err != nil {
		return nil, err
	}

	fs.logger.Printf("Snapshot of space %s loaded from %s", data.SpaceID, fs.path)
	return data, nil
}

// BucketSnapshotStore keeps the dataset as an object in the Firebase
// project's storage bucket.
type BucketSnapshotStore struct {
	app    *firebase.App
	bucket *storage.BucketHandle
	object string
	logger *log.Logger
}

// NewBucketSnapshotStore falls back to application default credentials when
// credentialsFilePath is empty.
func NewBucketSnapshotStore(ctx context.Context, credentialsFilePath, bucketName, objectName string, logger *log.Logger) (*BucketSnapshotStore, error) {
	if bucketName == "" || objectName == "" {
		return nil, errors.NewValidationError("bucket and object names are required")
	}

	var opts []option.ClientOption
	if credentialsFilePath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFilePath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucketName}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	storageClient, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase storage client: %w", err)
	}

	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("error opening bucket %s: %w", bucketName, err)
	}

	return &BucketSnapshotStore{
		app:    app,
		bucket: bucket,
		object: objectName,
		logger: logger,
	}, nil
}

func (bs *BucketSnapshotStore) Save(ctx context.Context, data *models.DemoData) error {
	var buf bytes.Buffer
	if err := demo.Encode(&buf, data); err != nil {
		return err
	}

	wc := bs.bucket.Object(bs.object).NewWriter(ctx)
	wc.ContentType = "application/json"
	if _, err := wc.Write(buf.Bytes()); err != nil {
		wc.Close()
		return errors.NewExternalError("firebase storage", fmt.Errorf("error writing snapshot: %w", err))
	}
	if err := wc.Close(); err != nil {
		return errors.NewExternalError("firebase storage", fmt.Errorf("error closing writer: %w", err))
	}

	bs.logger.Printf("Snapshot of space %s stored in %s", data.SpaceID, bs.object)
	return nil
}

func (bs *BucketSnapshotStore) Load(ctx context.Context) (*models.DemoData, error) {
	rc, err := bs.bucket.Object(bs.object).NewReader(ctx)
	if stderrors.Is(err, storage.ErrObjectNotExist) {
		return nil, errors.NewNotFoundError(fmt.Sprintf("snapshot object %s does not exist", bs.object))
	}
	if err != nil {
		return nil, errors.NewExternalError("firebase storage", fmt.Errorf("error creating reader: %w", err))
	}
	defer rc.Close()

	data, err := demo.Decode(rc)
	if err != nil {
		return nil, err
	}

	bs.logger.Printf("Snapshot of space %s loaded from %s", data.SpaceID, bs.object)
	return data, nil
}

// CaptureSpace reads a live space into a dataset the demo source can serve.
func CaptureSpace(ctx context.Context, cs *ContentfulService, graph models.SpaceGraph) (*models.DemoData, error) {
	entries, err := cs.GetAllEntries(ctx)
	if err != nil {
		return nil, err
	}
	assets, err := cs.GetAllAssets(ctx)
	if err != nil {
		return nil, err
	}

	// Entries of content types the graph skipped would fail validation.
	kept := entries[:0]
	for _, e := range entries {
		if _, ok := graph.Node(e.ContentTypeID()); ok {
			kept = append(kept, e)
		}
	}

	cs.logger.Printf("Captured space %s: %d entries, %d assets", cs.config.SpaceID, len(kept), len(assets))
	return &models.DemoData{
		SpaceID:    cs.config.SpaceID,
		SpaceGraph: graph,
		Entries:    kept,
		Assets:     assets,
	}, nil
}
