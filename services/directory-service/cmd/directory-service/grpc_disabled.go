//go:build !protogen

package main

import (
	"context"
	"log/slog"

	"github.com/citaplan/citaplan/libs/db"
	"github.com/citaplan/citaplan/services/directory-service/internal/storage"
)

// Built without the protogen tag the gRPC surface is absent; HTTP callers
// use /internal/policy instead.
func startGrpcServer(_ context.Context, _ *slog.Logger, _ *db.Pool, _ *storage.Repository, _ []int) error {
	return nil
}
