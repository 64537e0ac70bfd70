package activation

import "strings"

// Column positions in the users table.
const (
	UserColHandle = iota
	UserColLabel
	UserColRole
	UserColStatus
)

var userHeader = []string{"HANDLE", "NAMA", "ROLE", "STATUS"}

// UserHeader returns the column names of the users table.
func UserHeader() []string {
	return append([]string(nil), userHeader...)
}

const (
	RoleAdmin    = "ADMIN"
	StatusActive = "AKTIF"
)

// User is one operator allowed to submit and query activations.
type User struct {
	Handle string
	Label  string
	Role   string
	Status string
}

// IsActive reports whether the user's status is AKTIF.
func (u User) IsActive() bool {
	return strings.EqualFold(strings.TrimSpace(u.Status), StatusActive)
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u User) IsAdmin() bool {
	return strings.EqualFold(strings.TrimSpace(u.Role), RoleAdmin)
}

// DisplayLabel returns the technician label, or the bare handle when no
// label is stored.
func (u User) DisplayLabel() string {
	if l := strings.TrimSpace(u.Label); l != "" {
		return l
	}
	return u.Handle
}

// FindUser looks up handle in the raw users table. The first row is the
// header. Handles compare case-insensitively and ignore a leading "@".
func FindUser(rows [][]string, handle string) (User, bool) {
	want := normalizeHandle(handle)
	if want == "" {
		return User{}, false
	}
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		cell := func(c int) string {
			if c < len(row) {
				return strings.TrimSpace(row[c])
			}
			return ""
		}
		if normalizeHandle(cell(UserColHandle)) != want {
			continue
		}
		return User{
			Handle: cell(UserColHandle),
			Label:  cell(UserColLabel),
			Role:   cell(UserColRole),
			Status: cell(UserColStatus),
		}, true
	}
	return User{}, false
}

func normalizeHandle(h string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(h), "@"))
}
