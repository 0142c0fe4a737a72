package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/tablewise/internal/lifecycle"
	"github.com/mmynk/tablewise/internal/storage"
)

// toConnectError maps domain errors onto stable Connect codes:
// validation -> invalid_argument, not found -> not_found, storage -> internal.
func toConnectError(err error) *connect.Error {
	switch {
	case errors.Is(err, lifecycle.ErrValidation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, lifecycle.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	}

	var storeErr *storage.Error
	if errors.As(err, &storeErr) {
		return connect.NewError(connect.CodeInternal, storeErr)
	}
	return connect.NewError(connect.CodeInternal, err)
}

func isStorageError(err error) bool {
	var storeErr *storage.Error
	return errors.As(err, &storeErr)
}
