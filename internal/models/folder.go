package models

// Folder groups receipts for its owner. Access control on folders lives
// outside this service; the engine only stores the reference.
type Folder struct {
	// ID is the unique identifier for the folder (UUID format).
	ID string `json:"id"`

	OwnerID string `json:"owner_id"`

	Name  string `json:"name"`
	Color string `json:"color,omitempty"`

	// CreatedAt is the Unix timestamp when the folder was created.
	CreatedAt int64 `json:"created_at"`
}
