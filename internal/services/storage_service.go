package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/juhum/We-Go-Jim/internal/models"
)

// ErrDataNotFound means the requested document does not exist in the bucket.
var ErrDataNotFound = errors.New("user data not found")

// StorageService is the narrow interface to the per-user document store.
type StorageService interface {
	InitUser(ctx context.Context, sub, role string) error
	GetUserData(ctx context.Context, sub string) (*models.UserDocument, error)
	PutWorkoutPlan(ctx context.Context, sub string, plan []models.DayWorkout) error
	GetUserRecords(ctx context.Context, sub string) (*models.RecordsDocument, error)
	PutUserRecords(ctx context.Context, sub string, records []models.LiftRecord) error
	GetStudentList(ctx context.Context, trainerSub string) ([]string, error)
	AddStudent(ctx context.Context, trainerSub, studentSub string) error
}

// objectStoreAPI is the slice of the MinIO client the service needs.
// Injectable so tests run against an in-memory fake.
type objectStoreAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (io.ReadCloser, error)
}

type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return w.c.BucketExists(ctx, bucket)
}

func (w minioClientWrapper) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucket, opts)
}

func (w minioClientWrapper) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucket, key, r, size, opts)
}

func (w minioClientWrapper) GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := w.c.GetObject(ctx, bucket, key, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

var _ StorageService = (*MinioStorageService)(nil)

// MinioStorageService stores one JSON document per user in an S3-compatible
// bucket: user_data/<sub>.json, user_records/<sub>.json and, for trainers,
// trainer_data/<sub>.json.
type MinioStorageService struct {
	api    objectStoreAPI
	bucket string
}

func NewMinioStorageService(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}
	return newMinioStorageService(ctx, minioClientWrapper{c: client}, bucket)
}

func newMinioStorageService(ctx context.Context, api objectStoreAPI, bucket string) (*MinioStorageService, error) {
	s := &MinioStorageService{api: api, bucket: bucket}

	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return s, nil
}

func userDataKey(sub string) string    { return "user_data/" + sub + ".json" }
func userRecordsKey(sub string) string { return "user_records/" + sub + ".json" }
func trainerDataKey(sub string) string { return "trainer_data/" + sub + ".json" }

func (s *MinioStorageService) putJSON(ctx context.Context, key string, document any) error {
	payload, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	_, err = s.api.PutObject(ctx, s.bucket, key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("upload document: %w", err)
	}
	return nil
}

func (s *MinioStorageService) getJSON(ctx context.Context, key string, document any) error {
	obj, err := s.api.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return mapStoreError(err)
	}
	defer obj.Close()

	// The SDK surfaces missing-object errors on read, not on open.
	payload, err := io.ReadAll(obj)
	if err != nil {
		return mapStoreError(err)
	}
	if err := json.Unmarshal(payload, document); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

func mapStoreError(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrDataNotFound
	}
	return fmt.Errorf("download document: %w", err)
}

func (s *MinioStorageService) InitUser(ctx context.Context, sub, role string) error {
	if err := s.putJSON(ctx, userDataKey(sub), models.NewUserDocument(sub)); err != nil {
		return fmt.Errorf("init user document: %w", err)
	}
	if err := s.putJSON(ctx, userRecordsKey(sub), models.NewRecordsDocument(sub)); err != nil {
		return fmt.Errorf("init records document: %w", err)
	}
	if role == models.RoleTrainer {
		if err := s.putJSON(ctx, trainerDataKey(sub), models.NewTrainerDocument(sub)); err != nil {
			return fmt.Errorf("init trainer document: %w", err)
		}
	}
	return nil
}

func (s *MinioStorageService) GetUserData(ctx context.Context, sub string) (*models.UserDocument, error) {
	var document models.UserDocument
	if err := s.getJSON(ctx, userDataKey(sub), &document); err != nil {
		return nil, err
	}
	return &document, nil
}

// PutWorkoutPlan replaces the user's whole plan. Last write wins; the rest of
// the document (current trainer) is carried over when it already exists.
func (s *MinioStorageService) PutWorkoutPlan(ctx context.Context, sub string, plan []models.DayWorkout) error {
	document, err := s.GetUserData(ctx, sub)
	if errors.Is(err, ErrDataNotFound) {
		document = models.NewUserDocument(sub)
	} else if err != nil {
		return err
	}

	document.WorkoutPlan = plan
	document.LastModified = time.Now().UTC()
	return s.putJSON(ctx, userDataKey(sub), document)
}

func (s *MinioStorageService) GetUserRecords(ctx context.Context, sub string) (*models.RecordsDocument, error) {
	var document models.RecordsDocument
	if err := s.getJSON(ctx, userRecordsKey(sub), &document); err != nil {
		return nil, err
	}
	return &document, nil
}

func (s *MinioStorageService) PutUserRecords(ctx context.Context, sub string, records []models.LiftRecord) error {
	document, err := s.GetUserRecords(ctx, sub)
	if errors.Is(err, ErrDataNotFound) {
		document = models.NewRecordsDocument(sub)
	} else if err != nil {
		return err
	}

	document.RecordsList = records
	document.LastModified = time.Now().UTC()
	return s.putJSON(ctx, userRecordsKey(sub), document)
}

func (s *MinioStorageService) GetStudentList(ctx context.Context, trainerSub string) ([]string, error) {
	var document models.TrainerDocument
	err := s.getJSON(ctx, trainerDataKey(trainerSub), &document)
	if errors.Is(err, ErrDataNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return document.Students, nil
}

func (s *MinioStorageService) AddStudent(ctx context.Context, trainerSub, studentSub string) error {
	var document models.TrainerDocument
	err := s.getJSON(ctx, trainerDataKey(trainerSub), &document)
	if errors.Is(err, ErrDataNotFound) {
		document = *models.NewTrainerDocument(trainerSub)
	} else if err != nil {
		return err
	}

	for _, existing := range document.Students {
		if existing == studentSub {
			return nil
		}
	}
	document.Students = append(document.Students, studentSub)
	document.LastModified = time.Now().UTC()
	return s.putJSON(ctx, trainerDataKey(trainerSub), &document)
}
