// Package models defines the gallery data model. All server state lives in
// a single StorageAggregate document, persisted as one JSON value.
package models

import (
	"slices"
	"time"
)

// Reservation is a time-bounded claim on storage capacity, created before
// any bytes are transferred and finalized by commit.
//
// While Committed is false and the reservation is younger than its live
// window, its TotalSizeBytes count toward the storage cap. Reservations past
// the hard expiry are garbage-collected regardless of commit state.
type Reservation struct {
	ID             string    `json:"id"`
	FileCount      int       `json:"fileCount"`
	TotalSizeBytes int64     `json:"totalSizeBytes"`
	CreatedAt      time.Time `json:"createdAt"`
	Committed      bool      `json:"committed"`
}

// PhotoRecord is one committed photo. A record contributes to the aggregate
// byte total from creation until purge, soft-deleted or not.
type PhotoRecord struct {
	ID           string     `json:"id"`
	SizeBytes    int64      `json:"sizeBytes"`
	StorageKey   string     `json:"storageKey"`
	ThumbnailKey string     `json:"thumbnailKey"`
	Note         string     `json:"note"`
	NoteAuthor   string     `json:"noteAuthor,omitempty"`
	UploadedAt   time.Time  `json:"uploadedAt"`
	AlbumDay     string     `json:"albumDay"`
	UploaderID   string     `json:"uploaderId"`
	AlbumTag     string     `json:"albumTag,omitempty"`
	FavoritedBy  []string   `json:"favoritedBy"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
}

// IsDeleted reports whether the record is in the recycle bin.
func (p *PhotoRecord) IsDeleted() bool {
	return p.DeletedAt != nil
}

// ToggleFavorite flips userID's membership in FavoritedBy and returns the
// resulting set. The set stays sorted so the persisted document is stable.
func (p *PhotoRecord) ToggleFavorite(userID string) []string {
	if i := slices.Index(p.FavoritedBy, userID); i >= 0 {
		p.FavoritedBy = slices.Delete(p.FavoritedBy, i, i+1)
	} else {
		p.FavoritedBy = append(p.FavoritedBy, userID)
		slices.Sort(p.FavoritedBy)
	}
	return p.FavoritedBy
}

// PhotoDraft is the caller-supplied description of one uploaded blob,
// handed to commit. Keys and sizes come from the reserve step; the core
// never inspects blob content.
type PhotoDraft struct {
	SizeBytes    int64  `json:"sizeBytes"`
	StorageKey   string `json:"storageKey"`
	ThumbnailKey string `json:"thumbnailKey"`
	Note         string `json:"note"`
	AlbumDay     string `json:"albumDay"`
	UploaderID   string `json:"uploaderId"`
	AlbumTag     string `json:"albumTag"`
}

// StorageAggregate is the single persisted document backing the gallery.
//
// Invariant: TotalBytes equals the sum of SizeBytes over Photos at every
// observable point. Committing a reservation is the only event that raises
// it; purging (manual or janitor) is the only event that lowers it.
type StorageAggregate struct {
	TotalBytes        int64                  `json:"totalBytes"`
	Photos            []PhotoRecord          `json:"photos"`
	Reservations      map[string]Reservation `json:"reservations"`
	DailyUploadCounts map[string]int         `json:"dailyUploadCounts"`
}

// NewStorageAggregate returns an empty aggregate with initialized maps.
func NewStorageAggregate() *StorageAggregate {
	return &StorageAggregate{
		Photos:            []PhotoRecord{},
		Reservations:      map[string]Reservation{},
		DailyUploadCounts: map[string]int{},
	}
}

// Normalize initializes nil collections after decoding an older or empty
// document.
func (a *StorageAggregate) Normalize() {
	if a.Photos == nil {
		a.Photos = []PhotoRecord{}
	}
	if a.Reservations == nil {
		a.Reservations = map[string]Reservation{}
	}
	if a.DailyUploadCounts == nil {
		a.DailyUploadCounts = map[string]int{}
	}
}

// Clone returns a deep copy. Mutating operations work on a clone, persist
// it, and only then publish it, so a failed persist leaves the currently
// visible aggregate untouched.
func (a *StorageAggregate) Clone() *StorageAggregate {
	c := &StorageAggregate{
		TotalBytes:        a.TotalBytes,
		Photos:            make([]PhotoRecord, len(a.Photos)),
		Reservations:      make(map[string]Reservation, len(a.Reservations)),
		DailyUploadCounts: make(map[string]int, len(a.DailyUploadCounts)),
	}
	for i, p := range a.Photos {
		cp := p
		cp.FavoritedBy = slices.Clone(p.FavoritedBy)
		if p.DeletedAt != nil {
			ts := *p.DeletedAt
			cp.DeletedAt = &ts
		}
		c.Photos[i] = cp
	}
	for id, r := range a.Reservations {
		c.Reservations[id] = r
	}
	for day, n := range a.DailyUploadCounts {
		c.DailyUploadCounts[day] = n
	}
	return c
}

// Photo returns a pointer to the record with the given id, or nil.
func (a *StorageAggregate) Photo(id string) *PhotoRecord {
	for i := range a.Photos {
		if a.Photos[i].ID == id {
			return &a.Photos[i]
		}
	}
	return nil
}

// RemovePhoto deletes the record with the given id from the sequence,
// returning the removed record. Byte accounting is the caller's job.
func (a *StorageAggregate) RemovePhoto(id string) (PhotoRecord, bool) {
	for i := range a.Photos {
		if a.Photos[i].ID == id {
			removed := a.Photos[i]
			a.Photos = slices.Delete(a.Photos, i, i+1)
			return removed, true
		}
	}
	return PhotoRecord{}, false
}

// DateKey formats t as the YYYY-MM-DD key used by DailyUploadCounts and
// AlbumDay. Keys are taken in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
