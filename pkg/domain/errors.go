package domain

import "errors"

var (
	// ErrUnauthorized indicates no authenticated session at save/remove time.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSaveFailed indicates the book document write failed.
	ErrSaveFailed = errors.New("save failed")
	// ErrCoverUpload indicates the post-save cover pipeline failed; the book
	// record itself may already be durably saved.
	ErrCoverUpload = errors.New("cover upload failed")
	// ErrStoreUnavailable indicates a transport or service level failure on
	// a document read or delete.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrUploadFailed indicates a blob write failure.
	ErrUploadFailed = errors.New("upload failed")
	// ErrNotFound indicates a live document feed reported absence.
	ErrNotFound = errors.New("book not found")
)
