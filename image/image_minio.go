package image

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"

	"dicom-vault-api/utils"

	"github.com/minio/minio-go/v7"
)

const contentTypeDICOM = "application/dicom"

// FileStorage keeps the raw DICOM objects in a MinIO bucket, one object per
// image ID.
type FileStorage struct {
	minioClient *minio.Client
	bucketName  string
}

func NewFileStorage(minioClient *minio.Client, bucketName string) *FileStorage {
	return &FileStorage{
		minioClient: minioClient,
		bucketName:  bucketName,
	}
}

func dicomObjectName(imageID string) string {
	return fmt.Sprintf("%s.dcm", imageID)
}

func (storage *FileStorage) MakeBucket() error {
	ctx := context.Background()
	err := storage.minioClient.MakeBucket(ctx, storage.bucketName, minio.MakeBucketOptions{})
	if err != nil {
		exists, errBucketExists := storage.minioClient.BucketExists(ctx, storage.bucketName)
		if errBucketExists == nil && exists {
			return nil
		}
		return err
	}
	return nil
}

// StoreFile uploads the raw bytes of one DICOM object.
func (storage *FileStorage) StoreFile(imageID string, fileData []byte) error {
	ctx := context.Background()

	info, err := storage.minioClient.PutObject(ctx, storage.bucketName, dicomObjectName(imageID),
		bytes.NewReader(fileData), int64(len(fileData)),
		minio.PutObjectOptions{ContentType: contentTypeDICOM})
	if err != nil {
		return err
	}

	utils.LogDebug("stored %s, %d bytes", dicomObjectName(imageID), info.Size)
	return nil
}

// FetchFile reads a stored DICOM object back into memory.
func (storage *FileStorage) FetchFile(imageID string) ([]byte, error) {
	object, err := storage.minioClient.GetObject(context.Background(), storage.bucketName,
		dicomObjectName(imageID), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer object.Close()

	return ioutil.ReadAll(object)
}

func (storage *FileStorage) RemoveFile(imageID string) error {
	return storage.minioClient.RemoveObject(context.Background(), storage.bucketName,
		dicomObjectName(imageID), minio.RemoveObjectOptions{})
}
