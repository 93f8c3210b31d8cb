// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/avoronov/storebox/internal/filex"
)

// File describes metadata for one uploaded blob. The binary content itself
// lives in object storage under BucketFileID; a File row with no backing
// blob (or the reverse) must never be observable, which the upload and
// delete paths guarantee by ordering and compensation.
type File struct {
	// ID is the store-assigned document id.
	ID string
	// Name is the display name including extension; mutable via rename.
	Name string
	// Type and Extension are derived from the name at upload time and are
	// immutable afterwards.
	Type      filex.Category
	Extension string
	// URL is derived deterministically from the backing blob id.
	URL string
	// Size is the byte count of the original upload.
	Size int64
	// Owner is the id of the principal that performed the upload.
	Owner string
	// AccountID is the account namespace; an alternate authorization match.
	AccountID string
	// Users is the ordered list of email addresses granted read access.
	// Duplicates are tolerated.
	Users []string
	// BucketFileID is the object-storage key of the backing blob, required
	// for deletion compensation.
	BucketFileID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnerInfo is the resolved identity attached to a listed file. When the
// owner cannot be resolved the sentinel UnknownOwner is used instead of
// failing the listing.
type OwnerInfo struct {
	FullName string
	Email    string
	Avatar   string
}

// UnknownOwner is substituted when an owner lookup finds no user.
var UnknownOwner = OwnerInfo{FullName: "Unknown User"}

// EnrichedFile is a File with its owner id resolved to an identity.
type EnrichedFile struct {
	File
	OwnerInfo OwnerInfo
}
