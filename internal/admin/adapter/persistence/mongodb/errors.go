package mongodb

import (
	"context"
	stderrors "errors"

	"mongo-admin/internal/shared/errors"
	"mongo-admin/internal/shared/metrics"

	"go.mongodb.org/mongo-driver/mongo"
)

// namespaceExistsCode is returned by create on an existing collection.
const namespaceExistsCode = 48

// observe records the outcome of a store operation. Methods defer it with a
// pointer to their named error result.
func observe(operation string, err *error) {
	metrics.ObserveStore(operation, *err)
}

// translate maps a driver error into the application taxonomy. Context
// cancellation is returned unchanged.
func translate(operation string, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.Canceled) {
		return err
	}
	if _, ok := errors.AsAppError(err); ok {
		return err
	}
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return errors.NewNotFoundError("document")
	}
	if mongo.IsDuplicateKeyError(err) {
		return errors.NewConflictError("a document with this id already exists").WithCause(err)
	}
	var cmdErr mongo.CommandError
	if stderrors.As(err, &cmdErr) && cmdErr.Code == namespaceExistsCode {
		return errors.NewConflictError("collection already exists").WithCause(err)
	}
	return errors.NewStoreUnavailableError(operation, err).WithComponent("mongodb")
}
