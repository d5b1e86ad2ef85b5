package catalog

import "photocat/internal/model"

// Database provides an interface for catalog storage operations.
// Find methods return (nil, nil) when the row does not exist.
type Database interface {
	// Directory operations

	// FindRootDirectories returns every root directory ordered by path.
	FindRootDirectories() ([]*model.Directory, error)

	// FindRootDirectoryByPath returns the root whose absolute path equals path.
	FindRootDirectoryByPath(path string) (*model.Directory, error)

	FindDirectoryByID(id string) (*model.Directory, error)

	// FindChildDirectories returns the direct subdirectories of a directory.
	FindChildDirectories(parentID string) ([]*model.Directory, error)

	// CreateDirectory inserts a single directory (typically a root).
	CreateDirectory(dir *model.Directory) error

	// DeleteDirectory removes a directory with everything below it.
	DeleteDirectory(id string) error

	// DeleteDirectoryContents removes every image and subdirectory of a
	// directory, keeping the directory itself.
	DeleteDirectoryContents(id string) error

	// Image operations

	FindImageByID(id string) (*model.Image, error)
	FindImagesByIDs(ids []string) ([]*model.Image, error)
	FindImagesByDirectory(directoryID string) ([]*model.Image, error)
	FindImageByName(directoryID, filename string) (*model.Image, error)

	// UpdateImage writes all columns of img in a single statement.
	UpdateImage(img *model.Image) error

	UpdateImageThumbnail(id, ref string) error
	DeleteImage(id string) error

	FindImageTagIDs(imageID string) ([]string, error)

	// SetImageTags replaces the tag set of an image atomically.
	SetImageTags(imageID string, tagIDs []string) error

	// CreateScanBatch persists the new directories and images found at one
	// directory level, with their tags, in a single transaction.
	CreateScanBatch(dirs []*model.Directory, images []*model.Image, imageTags map[string][]string) error

	// Attachment operations

	FindAttachmentsByImage(imageID string) ([]*model.Attachment, error)
	CreateAttachments(attachments []*model.Attachment) error
	UpdateAttachment(attachment *model.Attachment) error
	DeleteAttachment(id string) error

	// Tag operations

	FindTagByID(id string) (*model.Tag, error)

	// FindChildTag returns the tag called name below parentID, or the root
	// tag called name when parentID is empty.
	FindChildTag(parentID, name string) (*model.Tag, error)

	CreateTag(tag *model.Tag) error
	ListTags() ([]*model.Tag, error)

	// Author operations

	FindAuthorByID(id string) (*model.Author, error)
	FindAuthorByName(name string) (*model.Author, error)
	CreateAuthor(author *model.Author) error
	ListAuthors() ([]*model.Author, error)

	// Camera operations

	// ListCameras returns the camera registry in registration order.
	ListCameras() ([]*model.Camera, error)
	FindCameraByID(id string) (*model.Camera, error)
	FindCameraByKey(key string) (*model.Camera, error)
	CreateCamera(camera *model.Camera) error

	// Operation tracking

	CreateOperation(operation, parameters string) (*model.Operation, error)
	FinishOperation(id int64, status string) error
	ListOperations(limit int) ([]*model.Operation, error)
	MaxOperationID() (int64, error)

	// CheckMigrations verifies the schema is up to date.
	CheckMigrations() error

	// BackupTo writes a consistent copy of the catalog to destPath.
	BackupTo(destPath string) error

	Close() error
}
