package domain

import "time"

// Role is a closed set. Anything a token carries that we do not recognise
// parses to RoleUnknown; roles we recognise but do not serve (e.g. admin
// tooling) parse to RoleUnsupported. Dispatch on Role is always an exhaustive
// switch so a new role is a compile-visible change.
type Role string

const (
	RoleArtist      Role = "artist"
	RoleEngineer    Role = "engineer"
	RoleStudioOwner Role = "studio_owner"
	RoleUnsupported Role = "unsupported"
	RoleUnknown     Role = "unknown"
)

func ParseRole(s string) Role {
	switch Role(s) {
	case RoleArtist, RoleEngineer, RoleStudioOwner:
		return Role(s)
	case Role("admin"), Role("manager"):
		return RoleUnsupported
	default:
		return RoleUnknown
	}
}

type EngineerSettings struct {
	InstantBookEnabled bool     `json:"instant_book_enabled"`
	HourlyRate         *float64 `json:"hourly_rate,omitempty"`
	Genres             []string `json:"genres,omitempty"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email" validate:"required,email"`
	Role      Role      `json:"role"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Only populated for engineers.
	EngineerSettings *EngineerSettings `json:"engineer_settings,omitempty"`
}
