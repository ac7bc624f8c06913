package user

const (
	RoleCaptain  = "captain"
	RoleDirector = "director"
)

// Principal is the authenticated actor attached to a request.
type Principal struct {
	UserID string
	Name   string
	Email  string
	TeamID string
	Role   string
}

func (p Principal) IsDirector() bool {
	return p.Role == RoleDirector
}

// OwnsTeam reports whether the principal captains the given team.
// Directors own everything.
func (p Principal) OwnsTeam(teamID string) bool {
	if p.IsDirector() {
		return true
	}
	return p.TeamID != "" && p.TeamID == teamID
}
