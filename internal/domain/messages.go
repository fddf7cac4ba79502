package domain

import (
	"errors"
	"unicode/utf8"
)

// Status messages shown by the popup after an operation.
const (
	MsgItemSaved      = "Item saved successfully!"
	MsgItemDeleted    = "Item deleted"
	MsgAllCleared     = "All items cleared"
	MsgNothingToUndo  = "Nothing to undo"
	MsgActionUndone   = "Action undone"
	MsgSelectCategory = "Please select a category"
	MsgItemNotFound   = "Item not found"
	MsgStorageFailed  = "Could not save changes, please retry"
	MsgConfirmClear   = "Clearing all items requires confirmation"
)

// DefaultTitle is used when the tab has no title.
const DefaultTitle = "Untitled Page"

// DefaultMaxPreviewLength bounds stored titles.
const DefaultMaxPreviewLength = 50

var undoMessages = map[Action]string{
	ActionAdd:      "Item addition undone",
	ActionDelete:   "Item deletion undone",
	ActionClearAll: "Clear all undone",
}

// UndoMessage returns the status message for undoing action.
func UndoMessage(action Action) string {
	if msg, ok := undoMessages[action]; ok {
		return msg
	}
	return MsgActionUndone
}

// ErrorMessage maps an operation error to the message shown to the user.
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCategory):
		return MsgSelectCategory
	case errors.Is(err, ErrNotFound):
		return MsgItemNotFound
	case errors.Is(err, ErrEmptyHistory):
		return MsgNothingToUndo
	default:
		return MsgStorageFailed
	}
}

// PreviewTitle returns the title to store for a tab: DefaultTitle when empty,
// otherwise at most limit runes. A limit <= 0 disables truncation.
func PreviewTitle(title string, limit int) string {
	if title == "" {
		return DefaultTitle
	}
	if limit <= 0 || utf8.RuneCountInString(title) <= limit {
		return title
	}
	runes := []rune(title)
	return string(runes[:limit])
}
