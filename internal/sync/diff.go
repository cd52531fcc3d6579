package sync

// UserRecord is the fixed field set reconciled from the central directory
// into each branch store.
type UserRecord struct {
	CentralID    int64
	Email        string
	FirstName    string
	LastName     string
	Phone        string
	Language     string
	Role         string
	IsActive     bool
	PasswordHash string
}

func (u UserRecord) equal(other UserRecord) bool {
	return u.Email == other.Email &&
		u.FirstName == other.FirstName &&
		u.LastName == other.LastName &&
		u.Phone == other.Phone &&
		u.Language == other.Language &&
		u.Role == other.Role &&
		u.IsActive == other.IsActive &&
		u.PasswordHash == other.PasswordHash
}

// DiffUsers compares the central view (expected) against a branch view
// (actual) by central id. The central side is authoritative: branch-only
// rows are left alone.
func DiffUsers(expected, actual []UserRecord) (missing, changed []UserRecord) {
	byID := make(map[int64]UserRecord, len(actual))
	for _, user := range actual {
		byID[user.CentralID] = user
	}

	for _, want := range expected {
		have, ok := byID[want.CentralID]
		if !ok {
			missing = append(missing, want)
			continue
		}
		if !want.equal(have) {
			changed = append(changed, want)
		}
	}
	return missing, changed
}
