package quarantine

import (
	"context"
	"path"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/oksasatya/mediscribe/pkg/helpers"
)

// GCSStore keeps raw model answers that failed validation.
type GCSStore struct {
	client *storage.Client
	bucket string
	newID  func() string
}

func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket, newID: uuid.NewString}
}

// Save uploads raw under malformed/<user id>/<uuid>.txt and returns its gs:// URI.
func (s *GCSStore) Save(ctx context.Context, userID int64, raw string) (string, error) {
	return helpers.UploadObject(ctx, s.client, s.bucket, objectKey(userID, s.newID()), "text/plain; charset=utf-8", strings.NewReader(raw))
}

func objectKey(userID int64, id string) string {
	return path.Join("malformed", strconv.FormatInt(userID, 10), id+".txt")
}
