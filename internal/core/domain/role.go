package domain

type Role string

const (
	RoleGuide       Role = "guide"
	RoleParticipant Role = "participant"
)

func (r Role) Valid() bool {
	return r == RoleGuide || r == RoleParticipant
}

func (r Role) String() string {
	return string(r)
}

// Identity is what a connection is bound to after a successful join.
type Identity struct {
	UserID UserID
	TourID TourID
	Role   Role
}
