package domain

import "time"

// DirectoryKind groups directory entries into the lists the back office maintains.
type DirectoryKind string

const (
	DirectoryImporter     DirectoryKind = "importer"
	DirectoryShippingLine DirectoryKind = "shipping_line"
	DirectoryCFS          DirectoryKind = "cfs"
	DirectoryCustomHouse  DirectoryKind = "custom_house"
	DirectoryTransporter  DirectoryKind = "transporter"
)

var directoryKinds = map[DirectoryKind]struct{}{
	DirectoryImporter:     {},
	DirectoryShippingLine: {},
	DirectoryCFS:          {},
	DirectoryCustomHouse:  {},
	DirectoryTransporter:  {},
}

// ParseDirectoryKind validates a kind coming from a URL segment.
func ParseDirectoryKind(value string) (DirectoryKind, bool) {
	kind := DirectoryKind(value)
	_, ok := directoryKinds[kind]
	return kind, ok
}

// DirectoryEntry is an importer, shipping line, CFS or other party the jobs refer to.
type DirectoryEntry struct {
	ID        int64         `json:"id" db:"id"`
	Kind      DirectoryKind `json:"kind" db:"kind"`
	Name      string        `json:"name" db:"name" binding:"required,max=200"`
	Code      string        `json:"code" db:"code" binding:"max=50"`
	Address   string        `json:"address" db:"address"`
	GSTIN     string        `json:"gstin" db:"gstin" binding:"omitempty,gstin"`
	Email     string        `json:"email" db:"email" binding:"omitempty,email"`
	Phone     string        `json:"phone" db:"phone"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}
