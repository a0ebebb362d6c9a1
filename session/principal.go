package session

// Kind discriminates the Principal union.
type Kind string

const (
	KindAnonymous Kind = ""
	KindAdmin     Kind = "admin"
	KindUser      Kind = "user"
)

// Principal identifies the caller of a request: anonymous, the configured
// administrator, or a stored user.
type Principal struct {
	Kind   Kind   `json:"kind"`
	UserID uint   `json:"user_id,omitempty"`
	Email  string `json:"email"`
}

var Anonymous = Principal{}

func AdminPrincipal(email string) Principal {
	return Principal{Kind: KindAdmin, Email: email}
}

func UserPrincipal(id uint, email string) Principal {
	return Principal{Kind: KindUser, UserID: id, Email: email}
}

func (p Principal) IsAnonymous() bool { return p.Kind != KindAdmin && p.Kind != KindUser }
func (p Principal) IsAdmin() bool     { return p.Kind == KindAdmin }
func (p Principal) IsUser() bool      { return p.Kind == KindUser && p.UserID != 0 }
