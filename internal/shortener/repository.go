package shortener

import "context"

// Filter matches a URL when any of its non-empty clauses holds:
// short == Short, alias == Alias, or userId == UserID and long == Long.
type Filter struct {
	Short  string
	Alias  string
	UserID string
	Long   string
}

// ByCode matches a URL whose short code or alias equals code.
func ByCode(code string) Filter {
	return Filter{Short: code, Alias: code}
}

// ByAlias matches a URL bound to alias.
func ByAlias(alias string) Filter {
	return Filter{Alias: alias}
}

// ByOwner matches the URL a user created for long.
func ByOwner(userID, long string) Filter {
	return Filter{UserID: userID, Long: long}
}

// HasOwner reports whether the (userId, long) clause is set.
func (f Filter) HasOwner() bool {
	return f.UserID != "" && f.Long != ""
}

// IsEmpty reports whether no clause is set.
func (f Filter) IsEmpty() bool {
	return f.Short == "" && f.Alias == "" && !f.HasOwner()
}

// Matches evaluates the filter against u.
func (f Filter) Matches(u *URL) bool {
	if f.Short != "" && u.Short == f.Short {
		return true
	}

	if f.Alias != "" && u.Alias != nil && *u.Alias == f.Alias {
		return true
	}

	return f.HasOwner() && u.UserID == f.UserID && u.Long == f.Long
}

// Repository is the durable store of URL bindings.
// Implementations report misses as ErrNotFound.
type Repository interface {
	Get(ctx context.Context, short string) (*URL, error)
	Insert(ctx context.Context, url *URL) error
	// ReplaceIfExists replaces the record currently stored under previousShort with url.
	ReplaceIfExists(ctx context.Context, previousShort string, url *URL) error
	Find(ctx context.Context, filter Filter) (*URL, error)
}

// Cache is the write-through cache of URL bindings.
// Lookups report misses as ErrNotFound; every other failure is returned to the caller.
type Cache interface {
	GetByShort(ctx context.Context, short string) (*URL, error)
	GetByAlias(ctx context.Context, alias string) (*URL, error)
	GetByOwner(ctx context.Context, userID, long string) (*URL, error)
	// Set writes every key derived from url: short, alias if present, and (userId, long).
	Set(ctx context.Context, url *URL) error
	// Evict removes every key derived from url.
	Evict(ctx context.Context, url *URL) error
}

// IDAllocator hands out globally unique integer ids.
type IDAllocator interface {
	NextID(ctx context.Context) (uint64, error)
}

// Encoder turns an allocated id into a short code.
type Encoder func(id uint64) string
