package muse

import (
	"errors"
	"fmt"

	"github.com/muse-vcs/muse/modules/objstore"
	"github.com/muse-vcs/muse/modules/refstore"
)

// NotARepositoryError reports that .muse/ could not be found walking up
// from the starting directory.
type NotARepositoryError struct {
	Path string
}

func (e *NotARepositoryError) Error() string {
	return fmt.Sprintf("not a muse repository (or any parent up to %q)", e.Path)
}

func IsNotARepository(err error) bool {
	var target *NotARepositoryError
	return errors.As(err, &target)
}

// RepoCorruptError reports that .muse/ exists but an essential file is
// unreadable or malformed.
type RepoCorruptError struct {
	Detail string
}

func (e *RepoCorruptError) Error() string {
	return "repository corrupt: " + e.Detail
}

func IsRepoCorrupt(err error) bool {
	var target *RepoCorruptError
	return errors.As(err, &target)
}

// UserErr reports a bad argument, invalid ref, ambiguous prefix, empty
// workdir on commit, or a forbidden-while-conflicted operation.
type UserErr struct {
	Detail string
}

func (e *UserErr) Error() string {
	return e.Detail
}

func NewUserError(format string, a ...any) error {
	return &UserErr{Detail: fmt.Sprintf(format, a...)}
}

func IsUserError(err error) bool {
	var target *UserErr
	return errors.As(err, &target)
}

// MergeInProgressError reports that a mutating operation was attempted
// while MERGE_STATE.json exists.
type MergeInProgressError struct{}

func (e *MergeInProgressError) Error() string {
	return "a merge is in progress; resolve conflicts and commit, or abort the merge"
}

func IsMergeInProgress(err error) bool {
	var target *MergeInProgressError
	return errors.As(err, &target)
}

// NoCommonAncestorError reports that a merge or divergence was requested on
// disjoint histories.
type NoCommonAncestorError struct {
	A, B string
}

func (e *NoCommonAncestorError) Error() string {
	return fmt.Sprintf("no common ancestor between %q and %q", e.A, e.B)
}

func IsNoCommonAncestor(err error) bool {
	var target *NoCommonAncestorError
	return errors.As(err, &target)
}

// InternalError reports an invariant violation: a bug, not a user mistake.
// It always carries the offending IDs for forensics.
type InternalError struct {
	Detail string
	Cause  error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return "internal error: " + e.Detail + ": " + e.Cause.Error()
	}
	return "internal error: " + e.Detail
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(detail string, cause error) error {
	return &InternalError{Detail: detail, Cause: cause}
}

func IsInternal(err error) bool {
	var target *InternalError
	return errors.As(err, &target)
}

// IsCasMismatch reports whether err is a ref compare-and-swap mismatch: an
// expected contention condition between concurrent scripting agents racing
// the same branch ref, not an invariant violation.
func IsCasMismatch(err error) bool {
	return refstore.IsCasMismatch(err)
}

// IsMissingObject reports whether err names an object absent from the
// content-addressed store.
func IsMissingObject(err error) bool {
	return objstore.IsMissingObject(err)
}
