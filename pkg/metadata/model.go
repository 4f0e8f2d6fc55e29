package metadata

// FileType classifies a FileRecord.
//
// Folders are pure hierarchy nodes and never reference a blob. Files and
// images carry content; images additionally get thumbnail variants
// generated asynchronously after upload.
type FileType string

const (
	TypeFolder FileType = "folder"
	TypeFile   FileType = "file"
	TypeImage  FileType = "image"
)

// Valid reports whether t is one of the three accepted types.
func (t FileType) Valid() bool {
	switch t {
	case TypeFolder, TypeFile, TypeImage:
		return true
	default:
		return false
	}
}

// HasContent reports whether records of this type reference a blob.
func (t FileType) HasContent() bool {
	return t.Valid() && t != TypeFolder
}

// RootParentID is the canonical parent id for top-level records.
//
// Parent ids are compared as opaque strings, so every producer must
// normalize "no parent" to this value before storing or querying.
const RootParentID = "0"

// BlobID identifies a blob inside a blob store.
//
// The value is opaque to the metadata layer: the filesystem store maps it
// to a path under its root, the S3 store to an object key. Thumbnail
// variants derive their ids from the original via VariantBlobID.
type BlobID string

// FileRecord is a single node in a user's file hierarchy.
//
// Type and UserID are immutable after creation; IsPublic is the only
// mutable field. LocalPath is storage-internal and never serialized.
type FileRecord struct {
	ID       string   `json:"id"`
	UserID   string   `json:"userId"`
	Name     string   `json:"name"`
	Type     FileType `json:"type"`
	IsPublic bool     `json:"isPublic"`

	// ParentID is either RootParentID or the id of an existing folder.
	// Validity is checked at creation time only; there is no enforcement
	// of continued validity afterwards.
	ParentID string `json:"parentId"`

	// LocalPath references the blob holding the original content.
	// Empty exactly when Type == TypeFolder.
	LocalPath BlobID `json:"-"`
}

// NewFolder builds an unpersisted folder record.
func NewFolder(userID, name, parentID string, isPublic bool) *FileRecord {
	return &FileRecord{
		UserID:   userID,
		Name:     name,
		Type:     TypeFolder,
		IsPublic: isPublic,
		ParentID: parentID,
	}
}

// NewFile builds an unpersisted file or image record referencing the blob
// at localPath.
func NewFile(userID, name string, fileType FileType, parentID string, isPublic bool, localPath BlobID) *FileRecord {
	return &FileRecord{
		UserID:    userID,
		Name:      name,
		Type:      fileType,
		IsPublic:  isPublic,
		ParentID:  parentID,
		LocalPath: localPath,
	}
}

// Validate enforces the structural invariants of a record. Stores call
// this before inserting; it is the Go stand-in for a tagged union over
// folder/file/image shapes.
func (r *FileRecord) Validate() error {
	if r.Name == "" {
		return InvalidArgument("record name must not be empty")
	}
	if !r.Type.Valid() {
		return InvalidArgument("unknown file type: " + string(r.Type))
	}
	if r.UserID == "" {
		return InvalidArgument("record has no owner")
	}
	if r.ParentID == "" {
		return InvalidArgument("record parent id must be set (use RootParentID for top-level records)")
	}
	if r.Type == TypeFolder && r.LocalPath != "" {
		return InvalidArgument("folder records must not reference a blob")
	}
	if r.Type.HasContent() && r.LocalPath == "" {
		return InvalidArgument(string(r.Type) + " records must reference a blob")
	}
	return nil
}

// User is the slice of the users collection the service reads. Credentials
// are owned by the external authentication service and never loaded here.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
