package domain

import (
	"github.com/aiknowledgehub/hub-server/internal/errors"
)

// Error kinds raised by the domain. Every entity invariant violation maps to
// exactly one of these.
const (
	// Value objects.
	KindToolIDInvalid         errors.Kind = "TOOL_ID_INVALID"
	KindConfidenceInvalid     errors.Kind = "CONFIDENCE_INVALID"
	KindClassificationInvalid errors.Kind = "CLASSIFICATION_INVALID"

	// Playlists.
	KindPlaylistNotFound            errors.Kind = "PLAYLIST_NOT_FOUND"
	KindPlaylistNameAlreadyExists   errors.Kind = "PLAYLIST_NAME_ALREADY_EXISTS"
	KindPlaylistAccessDenied        errors.Kind = "PLAYLIST_ACCESS_DENIED"
	KindMaxToolsPerPlaylistExceeded errors.Kind = "MAX_TOOLS_PER_PLAYLIST_EXCEEDED"
	KindPlaylistValidation          errors.Kind = "PLAYLIST_VALIDATION_FAILED"
	KindToolAlreadyInPlaylist       errors.Kind = "TOOL_ALREADY_IN_PLAYLIST"
	KindToolNotInPlaylist           errors.Kind = "TOOL_NOT_IN_PLAYLIST"
	KindPlaylistNotEmpty            errors.Kind = "PLAYLIST_NOT_EMPTY"

	// Tools.
	KindToolNotFound             errors.Kind = "TOOL_NOT_FOUND"
	KindDuplicateToolURL         errors.Kind = "DUPLICATE_TOOL_URL"
	KindToolValidation           errors.Kind = "TOOL_VALIDATION_FAILED"
	KindToolWebsiteNotAccessible errors.Kind = "TOOL_WEBSITE_NOT_ACCESSIBLE"
	KindTagAlreadyExists         errors.Kind = "TAG_ALREADY_EXISTS"
	KindTagNotFound              errors.Kind = "TAG_NOT_FOUND"
	KindRelatedToolAlreadyExists errors.Kind = "RELATED_TOOL_ALREADY_EXISTS"
	KindRelatedToolNotFound      errors.Kind = "RELATED_TOOL_NOT_FOUND"
	KindUserValidation           errors.Kind = "USER_VALIDATION_FAILED"
	KindContentValidation        errors.Kind = "CONTENT_VALIDATION_FAILED"
	KindRecordInvalid            errors.Kind = "RECORD_INVALID"
	KindDuplicateRecordID        errors.Kind = "DUPLICATE_RECORD_ID"
	KindUserNotFound             errors.Kind = "USER_NOT_FOUND"
	KindContentNotFound          errors.Kind = "CONTENT_NOT_FOUND"
)

// PlaylistNotFound reports a playlist id with no stored playlist.
func PlaylistNotFound(playlistID string) *errors.Error {
	return errors.NotFoundf("playlist %q not found", playlistID).
		WithKind(KindPlaylistNotFound).
		With("playlist_id", playlistID)
}

// PlaylistNameAlreadyExists reports a name collision, scoped to userID when set.
func PlaylistNameAlreadyExists(name, userID string) *errors.Error {
	var err *errors.Error
	if userID != "" {
		err = errors.AlreadyExistsf("playlist named %q already exists for user %q", name, userID).
			With("user_id", userID)
	} else {
		err = errors.AlreadyExistsf("playlist named %q already exists", name)
	}
	return err.WithKind(KindPlaylistNameAlreadyExists).With("name", name)
}

// PlaylistAccessDenied reports that userID may not perform action on the playlist.
func PlaylistAccessDenied(playlistID, userID, action string) *errors.Error {
	return errors.Forbiddenf("user %q cannot %s playlist %q", userID, action, playlistID).
		WithKind(KindPlaylistAccessDenied).
		With("playlist_id", playlistID).
		With("user_id", userID).
		With("action", action)
}

// MaxToolsPerPlaylistExceeded reports a playlist that is already at its tool ceiling.
func MaxToolsPerPlaylistExceeded(playlistID string, maxTools int) *errors.Error {
	return errors.QuotaExceededf("playlist %q cannot hold more than %d tools", playlistID, maxTools).
		WithKind(KindMaxToolsPerPlaylistExceeded).
		With("playlist_id", playlistID).
		With("max_tools", maxTools)
}

// PlaylistNotEmpty reports an attempt to delete a playlist that still holds tools.
func PlaylistNotEmpty(playlistID string, toolCount int) *errors.Error {
	return errors.Conflictf("playlist %q still holds %d tools", playlistID, toolCount).
		WithKind(KindPlaylistNotEmpty).
		With("playlist_id", playlistID).
		With("tool_count", toolCount)
}

// ToolNotFound reports a tool id with no stored tool.
func ToolNotFound(toolID string) *errors.Error {
	return errors.NotFoundf("tool %q not found", toolID).
		WithKind(KindToolNotFound).
		With("tool_id", toolID)
}

// DuplicateToolURL reports a website URL already used by another tool.
func DuplicateToolURL(url, existingToolID string) *errors.Error {
	err := errors.AlreadyExistsf("a tool with URL %q already exists", url).
		WithKind(KindDuplicateToolURL).
		With("url", url)
	if existingToolID != "" {
		err = err.With("existing_tool_id", existingToolID)
	}
	return err
}

// DuplicateRecordID reports a second record of entityType with an id already in use.
func DuplicateRecordID(entityType, id string) *errors.Error {
	return errors.AlreadyExistsf("%s %q already exists", entityType, id).
		WithKind(KindDuplicateRecordID).
		With("entity_type", entityType).
		With("id", id)
}

// UserNotFound reports a user id with no stored user.
func UserNotFound(userID string) *errors.Error {
	return errors.NotFoundf("user %q not found", userID).
		WithKind(KindUserNotFound).
		With("user_id", userID)
}

// UserEmailNotFound reports an email with no registered user.
func UserEmailNotFound(email string) *errors.Error {
	return errors.NotFoundf("no user registered with email %q", email).
		WithKind(KindUserNotFound).
		With("email", email)
}

// ContentNotFound reports a video id with no stored content.
func ContentNotFound(videoID string) *errors.Error {
	return errors.NotFoundf("content for video %q not found", videoID).
		WithKind(KindContentNotFound).
		With("video_id", videoID)
}

// ToolValidation reports an invalid tool field.
func ToolValidation(field string, value any, reason string) *errors.Error {
	return invalidField(KindToolValidation, field, value, reason)
}

// ToolWebsiteNotAccessible reports a website that could not be reached.
// statusCode is zero when no response was received.
func ToolWebsiteNotAccessible(url string, statusCode int) *errors.Error {
	var err *errors.Error
	if statusCode != 0 {
		err = errors.Unavailablef("website %q is not accessible (status %d)", url, statusCode).
			With("status_code", statusCode)
	} else {
		err = errors.Unavailablef("website %q is not accessible", url)
	}
	return err.WithKind(KindToolWebsiteNotAccessible).With("url", url)
}

func invalidField(kind errors.Kind, field string, value any, reason string) *errors.Error {
	return errors.Validationf("invalid %s: %s", field, reason).
		WithKind(kind).
		With("field", field).
		With("value", value).
		With("reason", reason)
}

func conflict(kind errors.Kind, msg string) *errors.Error {
	return errors.Conflict(msg).WithKind(kind)
}

func missing(kind errors.Kind, msg string) *errors.Error {
	return errors.NotFound(msg).WithKind(kind)
}
