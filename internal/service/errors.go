package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"connectrpc.com/connect"

	"github.com/splitme/splitme/internal/auth"
	"github.com/splitme/splitme/internal/middleware"
	"github.com/splitme/splitme/internal/models"
	"github.com/splitme/splitme/internal/storage"
	"github.com/splitme/splitme/internal/wallet"
)

const (
	maxGroupNameLen   = 50
	maxCategoryLen    = 50
	maxDescriptionLen = 100
	maxOwnerNameLen   = 100
)

var errNotMember = errors.New("caller is not a member of the group")

// connectError maps domain errors onto Connect codes.
func connectError(err error) *connect.Error {
	var ce *connect.Error
	switch {
	case errors.As(err, &ce):
		return ce
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrAlreadyExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, wallet.ErrInvalidAddress),
		errors.Is(err, wallet.ErrInvalidAmount),
		errors.Is(err, wallet.ErrInvalidTxHash):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, errNotMember):
		return connect.NewError(connect.CodePermissionDenied, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func invalidArgument(format string, args ...any) *connect.Error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// callerAddress returns the signed-in address set by the auth interceptor.
func callerAddress(ctx context.Context) (string, error) {
	addr := middleware.GetAddress(ctx)
	if addr == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return addr, nil
}

func requireMember(group *models.Group, address string) error {
	if !group.HasMember(address) {
		return connect.NewError(connect.CodePermissionDenied, errNotMember)
	}
	return nil
}

// requiredText trims s and checks it is non-empty and at most max
// characters long.
func requiredText(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalidArgument("%s is required", field)
	}
	if utf8.RuneCountInString(s) > max {
		return "", invalidArgument("%s must be %d characters or less", field, max)
	}
	return s, nil
}
