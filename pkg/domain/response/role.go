package response

// Role selects which field of a Record is read and written.
type Role string

const (
	RoleAuthor   Role = "author"
	RoleReviewer Role = "reviewer"
)

// DefaultRole is the role every session starts in.
const DefaultRole = RoleReviewer

// NormalizeRole maps "author" to RoleAuthor and anything else to RoleReviewer.
func NormalizeRole(s string) Role {
	if Role(s) == RoleAuthor {
		return RoleAuthor
	}
	return RoleReviewer
}

// IsValid returns true for the two known roles.
func (r Role) IsValid() bool {
	return r == RoleAuthor || r == RoleReviewer
}

// Other returns the opposite role.
func (r Role) Other() Role {
	if r == RoleAuthor {
		return RoleReviewer
	}
	return RoleAuthor
}

func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable display name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleAuthor:
		return "Author"
	case RoleReviewer:
		return "Reviewer"
	default:
		return string(r)
	}
}

// ChoicesFor returns the ordered set of selectable choices for a role.
// Unknown roles get the reviewer choices, matching NormalizeRole.
func ChoicesFor(r Role) []Choice {
	if r == RoleAuthor {
		return []Choice{ChoiceNA, ChoiceNo, ChoiceYes}
	}
	return []Choice{ChoiceOK, ChoiceMinorRevision, ChoiceMajorRevision}
}
