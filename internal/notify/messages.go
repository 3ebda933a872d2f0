// Package notify turns settled ledger operations into short user-facing
// notifications and fans them out to sinks.
package notify

import (
	"errors"

	"ledger/internal/core"
	"ledger/internal/ledger"
)

// Level mirrors the toast kinds shown to the user.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

const (
	MsgTransactionAdded   = "Transaction added successfully!"
	MsgTransactionUpdated = "Transaction updated successfully!"
	MsgTransactionRemoved = "Transaction removed"
	MsgCategoryAdded      = "Category added successfully!"
	MsgCategoryRemoved    = "Category removed"

	MsgMissingFields       = "Please enter description, amount, and select a category."
	MsgDescriptionTooLong  = "Description must be at most 200 characters."
	MsgEmptyCategoryName   = "Category name cannot be empty"
	MsgDuplicateCategory   = "This category already exists"
	MsgTransactionNotFound = "Transaction not found"
	MsgCategoryNotFound    = "Category not found"
	MsgUnexpected          = "Something went wrong"
)

// MessageFor maps an operation outcome to the notification shown to the
// user.
func MessageFor(op ledger.Op, err error) (Level, string) {
	if err == nil {
		switch op {
		case ledger.OpAddTransaction:
			return LevelSuccess, MsgTransactionAdded
		case ledger.OpEditTransaction:
			return LevelSuccess, MsgTransactionUpdated
		case ledger.OpRemoveTransaction:
			return LevelInfo, MsgTransactionRemoved
		case ledger.OpAddCategory:
			return LevelSuccess, MsgCategoryAdded
		case ledger.OpRemoveCategory:
			return LevelInfo, MsgCategoryRemoved
		}
		return LevelInfo, string(op)
	}

	var nf *core.NotFoundError
	switch {
	case errors.Is(err, core.ErrEmptyLabel):
		return LevelError, MsgEmptyCategoryName
	case errors.Is(err, core.ErrLongDescription):
		return LevelError, MsgDescriptionTooLong
	case core.IsValidation(err):
		return LevelError, MsgMissingFields
	case core.IsDuplicate(err):
		return LevelError, MsgDuplicateCategory
	case errors.As(err, &nf):
		if nf.Kind == "category" {
			return LevelError, MsgCategoryNotFound
		}
		return LevelError, MsgTransactionNotFound
	}
	return LevelError, MsgUnexpected
}
