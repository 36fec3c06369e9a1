package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Storage buckets.
const (
	BucketAvatars        = "avatars"
	BucketExercisesMedia = "exercises-media"
)

// UploadPurpose tells which entity an uploaded object is attached to.
type UploadPurpose string

const (
	PurposeAvatar        UploadPurpose = "avatar"
	PurposeExerciseMedia UploadPurpose = "exercise-media"
)

// MaxUploadSize is the largest accepted file, in bytes.
const MaxUploadSize = 10 << 20

// allowedContentTypes maps accepted MIME types to the media type they become.
var allowedContentTypes = map[string]MediaType{
	"image/jpeg":      MediaImage,
	"image/png":       MediaImage,
	"image/webp":      MediaImage,
	"image/gif":       MediaGIF,
	"video/mp4":       MediaVideo,
	"video/webm":      MediaVideo,
	"video/quicktime": MediaVideo,
}

// MediaTypeFor returns the media type of an accepted content type.
func MediaTypeFor(contentType string) (MediaType, bool) {
	mt, ok := allowedContentTypes[contentType]
	return mt, ok
}

// MediaFolder is the folder inside BucketExercisesMedia for a media type.
func MediaFolder(mt MediaType) string {
	switch mt {
	case MediaVideo:
		return "videos"
	case MediaGIF:
		return "gifs"
	default:
		return "images"
	}
}

// Upload stores metadata about an object written to the file storage.
// The object itself lives in the bucket under ObjectKey.
type Upload struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID     primitive.ObjectID `bson:"ownerId" json:"ownerId"`       // User the object is attached to
	UploadedBy  primitive.ObjectID `bson:"uploadedBy" json:"uploadedBy"` // User who sent it
	EntityID    primitive.ObjectID `bson:"entityId" json:"entityId"`     // User or exercise the object belongs to
	Purpose     UploadPurpose      `bson:"purpose" json:"purpose"`
	Bucket      string             `bson:"bucket" json:"bucket"`
	ObjectKey   string             `bson:"objectKey" json:"-"`
	URL         string             `bson:"url" json:"url"`
	FileName    string             `bson:"fileName" json:"fileName"`
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"`
	UploadedAt  time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}
