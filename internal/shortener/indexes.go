package shortener

// Field names of the URL record as persisted.
const (
	FieldLong           = "long"
	FieldShort          = "short"
	FieldAlias          = "alias"
	FieldExpirationDate = "expirationDate"
	FieldCreatedAt      = "createdAt"
	FieldUpdatedAt      = "updatedAt"
	FieldUserID         = "userId"
)

// Index declares a constraint the store must enforce.
type Index struct {
	// Keys in index order, e.g. ["userId", "long"] for a compound index.
	Keys []string
	// Unique enforces uniqueness over Keys.
	Unique bool
	// Sparse skips records where the key is missing.
	Sparse bool
}

// DefaultIndexes returns the constraints every store must enforce.
func DefaultIndexes() []Index {
	return []Index{
		{Keys: []string{FieldUserID, FieldLong}, Unique: true},
		{Keys: []string{FieldShort}, Unique: true},
		{Keys: []string{FieldAlias}, Unique: true, Sparse: true},
	}
}
