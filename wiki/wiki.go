package wiki

import (
	"errors"
	"strings"
	"time"
)

// User identifies the account (or IP address, or temporary account) performing an action.
type User struct {
	ID   int64
	Name string
}

// IsRegistered tells whether the user has an account. Anonymous users have ID 0.
func (u User) IsRegistered() bool {
	return u.ID != 0
}

// Title identifies a page.
type Title struct {
	Namespace int
	DBKey     string
}

var namespaceNames = map[int]string{
	-2: "Media",
	-1: "Special",
	1:  "Talk",
	2:  "User",
	3:  "User_talk",
	4:  "Project",
	5:  "Project_talk",
	6:  "File",
	7:  "File_talk",
	8:  "MediaWiki",
	9:  "MediaWiki_talk",
	10: "Template",
	11: "Template_talk",
	12: "Help",
	13: "Help_talk",
	14: "Category",
	15: "Category_talk",
}

// Text is the title without namespace, with spaces instead of underscores.
func (t Title) Text() string {
	return strings.Replace(t.DBKey, "_", " ", -1)
}

// PrefixedText is the title including its namespace prefix, with spaces instead of underscores.
func (t Title) PrefixedText() string {
	ns, ok := namespaceNames[t.Namespace]
	if !ok || t.Namespace == 0 {
		return t.Text()
	}
	return strings.Replace(ns, "_", " ", -1) + ":" + t.Text()
}

// Revision is a single saved version of a page.
type Revision struct {
	ID           int64
	PageID       int64
	Timestamp    time.Time
	Author       string
	Text         string
	ContentModel string
}

// RevisionLookup reads revisions. Lookups of missing revisions return nil without an error.
type RevisionLookup interface {
	GetRevisionByID(id int64) (*Revision, error)
	GetFirstRevision(title Title) (*Revision, error)
	GetRecentRevisions(title Title, limit int) ([]Revision, error)
}

// UserEditTracker counts edits.
type UserEditTracker interface {
	GetUserEditCount(user User) (int64, error)
}

// UserOptions holds account settings.
type UserOptions interface {
	IsEmailConfirmed(user User) (bool, error)
}

// UserRegistry knows when accounts were created. ok is false when the registration time is unknown.
type UserRegistry interface {
	GetRegistration(user User) (registration time.Time, ok bool, err error)
}

// UserGroupManager resolves group memberships.
type UserGroupManager interface {
	GetUserEffectiveGroups(user User) ([]string, error)
}

// PermissionManager resolves rights.
type PermissionManager interface {
	GetUserPermissions(user User) ([]string, error)
}

// BlockLookup tells whether a user is currently blocked.
type BlockLookup interface {
	IsBlocked(user User) (bool, error)
}

// RestrictionStore reads page protection levels.
type RestrictionStore interface {
	GetRestrictions(title Title, action string) ([]string, error)
}

// UserNameUtils classifies user names.
type UserNameUtils interface {
	IsTemp(name string) bool
}

// ErrBlobNotFound is returned by a BlobStore when nothing is stored at the address.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is an address-keyed durable store.
type BlobStore interface {
	StoreBlob(data []byte) (address string, err error)
	GetBlob(address string) (data []byte, err error)
}

// Authority is the viewer of a stored variable dump.
type Authority interface {
	Name() string
	CanViewProtectedVariables(names []string) bool
}
