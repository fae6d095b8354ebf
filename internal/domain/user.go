package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/aiknowledgehub/hub-server/internal/normalize"
)

// Role represents the user's permission level.
type Role string

const (
	// RoleUser grants standard access.
	RoleUser Role = "user"
	// RoleModerator may manage catalog content.
	RoleModerator Role = "moderator"
	// RoleAdmin may manage content and users.
	RoleAdmin Role = "admin"
)

// Theme is the preferred UI theme.
type Theme string

// Themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

const maxDisplayNameLength = 100

// emailPattern is a deliberately light check: something@something.tld, no whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Preferences holds per-user settings.
type Preferences struct {
	Theme         Theme  `json:"theme" validate:"oneof=light dark auto"`
	Language      string `json:"language" validate:"required"`
	Notifications bool   `json:"notifications"`
}

// DefaultPreferences returns the preferences given to new users.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:         ThemeAuto,
		Language:      "en",
		Notifications: true,
	}
}

// User is an account in the hub.
// Role changes are unconditional; authorization belongs to the caller.
type User struct {
	timestamps

	id              string
	email           string
	displayName     string
	avatarURL       string
	isEmailVerified bool
	role            Role
	preferences     Preferences
	lastLoginAt     time.Time
	isActive        bool
}

// NewUser creates an active, unverified user with the default role and preferences.
func (f *Factory) NewUser(email, displayName string) (*User, error) {
	email = normalizeEmail(email)
	displayName = strings.TrimSpace(displayName)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateDisplayName(displayName); err != nil {
		return nil, err
	}

	return &User{
		timestamps:  newTimestamps(f.now),
		id:          f.ids.NewUUID(),
		email:       email,
		displayName: displayName,
		role:        RoleUser,
		preferences: DefaultPreferences(),
		isActive:    true,
	}, nil
}

// UserRecord is the stored shape of a user.
type UserRecord struct {
	CreatedAt       time.Time   `json:"created_at" validate:"required"`
	UpdatedAt       time.Time   `json:"updated_at" validate:"required"`
	LastLoginAt     time.Time   `json:"last_login_at,omitzero"`
	ID              string      `json:"id" validate:"required"`
	Email           string      `json:"email" validate:"required"`
	DisplayName     string      `json:"display_name,omitempty"`
	AvatarURL       string      `json:"avatar_url,omitempty"`
	Role            Role        `json:"role" validate:"oneof=user admin moderator"`
	Preferences     Preferences `json:"preferences"`
	IsEmailVerified bool        `json:"is_email_verified"`
	IsActive        bool        `json:"is_active"`
}

// RestoreUser rebuilds a user from storage. Role and theme must be known
// values; the email format rule is not re-checked.
func (f *Factory) RestoreUser(rec UserRecord) (*User, error) {
	if err := f.restore("user", rec); err != nil {
		return nil, err
	}
	return &User{
		timestamps:      timestamps{createdAt: rec.CreatedAt, updatedAt: rec.UpdatedAt, now: f.now},
		id:              rec.ID,
		email:           rec.Email,
		displayName:     rec.DisplayName,
		avatarURL:       rec.AvatarURL,
		isEmailVerified: rec.IsEmailVerified,
		role:            rec.Role,
		preferences:     rec.Preferences,
		lastLoginAt:     rec.LastLoginAt,
		isActive:        rec.IsActive,
	}, nil
}

// Record returns the stored shape.
func (u *User) Record() UserRecord {
	return UserRecord{
		CreatedAt:       u.createdAt,
		UpdatedAt:       u.updatedAt,
		LastLoginAt:     u.lastLoginAt,
		ID:              u.id,
		Email:           u.email,
		DisplayName:     u.displayName,
		AvatarURL:       u.avatarURL,
		Role:            u.role,
		Preferences:     u.preferences,
		IsEmailVerified: u.isEmailVerified,
		IsActive:        u.isActive,
	}
}

// Validate re-runs the business rules.
func (u *User) Validate() error {
	if err := validateEmail(u.email); err != nil {
		return err
	}
	if err := validateDisplayName(u.displayName); err != nil {
		return err
	}
	return validatePreferences(u.preferences)
}

// ID returns the user id.
func (u *User) ID() string { return u.id }

// Email returns the normalized email address.
func (u *User) Email() string { return u.email }

// DisplayName returns the display name, possibly empty.
func (u *User) DisplayName() string { return u.displayName }

// AvatarURL returns the avatar URL, possibly empty.
func (u *User) AvatarURL() string { return u.avatarURL }

// IsEmailVerified reports whether the current email has been verified.
func (u *User) IsEmailVerified() bool { return u.isEmailVerified }

// Role returns the permission level.
func (u *User) Role() Role { return u.role }

// Preferences returns the user settings.
func (u *User) Preferences() Preferences { return u.preferences }

// LastLoginAt returns the last login time, zero before the first login.
func (u *User) LastLoginAt() time.Time { return u.lastLoginAt }

// IsActive reports whether the account is enabled.
func (u *User) IsActive() bool { return u.isActive }

// Name returns the display name, falling back to the email address.
func (u *User) Name() string {
	if u.displayName != "" {
		return u.displayName
	}
	return u.email
}

// IsAdmin reports the admin role.
func (u *User) IsAdmin() bool { return u.role == RoleAdmin }

// IsModerator reports the moderator role. Admins count as moderators.
func (u *User) IsModerator() bool { return u.role == RoleModerator || u.role == RoleAdmin }

// CanManageContent reports whether the user may edit catalog content.
func (u *User) CanManageContent() bool { return u.IsModerator() }

// CanManageUsers reports whether the user may manage other accounts.
func (u *User) CanManageUsers() bool { return u.IsAdmin() }

// UpdateEmail changes the email and resets verification.
func (u *User) UpdateEmail(email string) error {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	u.email = email
	u.isEmailVerified = false
	u.touch()
	return nil
}

// UpdateDisplayName changes the display name. An empty string clears it.
func (u *User) UpdateDisplayName(displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if err := validateDisplayName(displayName); err != nil {
		return err
	}
	u.displayName = displayName
	u.touch()
	return nil
}

// UpdateAvatarURL changes the avatar URL. An empty string clears it.
func (u *User) UpdateAvatarURL(avatarURL string) {
	u.avatarURL = strings.TrimSpace(avatarURL)
	u.touch()
}

// VerifyEmail marks the current email as verified.
func (u *User) VerifyEmail() {
	u.isEmailVerified = true
	u.touch()
}

// UpdatePreferences replaces the preferences. The language is normalized to
// its base code ("en-US" → "en").
func (u *User) UpdatePreferences(p Preferences) error {
	if code := normalize.LanguageCode(p.Language); code != "" {
		p.Language = code
	}
	if err := validatePreferences(p); err != nil {
		return err
	}
	u.preferences = p
	u.touch()
	return nil
}

// RecordLogin stamps the last login time.
func (u *User) RecordLogin() {
	u.lastLoginAt = u.now()
	u.touch()
}

// Activate re-enables the account.
func (u *User) Activate() {
	u.isActive = true
	u.touch()
}

// Deactivate disables the account.
func (u *User) Deactivate() {
	u.isActive = false
	u.touch()
}

// PromoteToAdmin sets the admin role.
func (u *User) PromoteToAdmin() { u.setRole(RoleAdmin) }

// PromoteToModerator sets the moderator role.
func (u *User) PromoteToModerator() { u.setRole(RoleModerator) }

// DemoteToUser sets the standard role.
func (u *User) DemoteToUser() { u.setRole(RoleUser) }

func (u *User) setRole(r Role) {
	u.role = r
	u.touch()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return invalidField(KindUserValidation, "email", email, "cannot be empty")
	}
	if !emailPattern.MatchString(email) {
		return invalidField(KindUserValidation, "email", email, "must be a valid email address")
	}
	return nil
}

func validateDisplayName(displayName string) error {
	return checkLength(KindUserValidation, "display_name", displayName, 0, maxDisplayNameLength)
}

func validatePreferences(p Preferences) error {
	switch p.Theme {
	case ThemeLight, ThemeDark, ThemeAuto:
	default:
		return invalidField(KindUserValidation, "theme", string(p.Theme), "must be one of: light dark auto")
	}
	if normalize.LanguageCode(p.Language) == "" {
		return invalidField(KindUserValidation, "language", p.Language, "must be a valid language code")
	}
	return nil
}
