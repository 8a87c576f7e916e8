// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the client-side transport to the remote system
// of record.
//
// The primary abstraction is [RemoteStore], which decouples the service
// layer from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPRemoteStore]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrTransient] for 5xx and network failures,
// [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-flock-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_store_mock.go -package=mock

// RemoteStore is the authoritative remote record store.
//
// The store does not guarantee read-after-write consistency beyond what a
// single successful call returns; callers that need the resulting state
// refetch with QueryAll.
type RemoteStore interface {
	// DeleteByKey removes every record of collection matching filter and
	// returns the number of rows removed. Deleting nothing is not an error.
	DeleteByKey(ctx context.Context, collection string, filter models.RecordFilter) (int64, error)

	// BulkInsert inserts records in one request and returns their ids.
	// Records with an id already present replace the stored row.
	BulkInsert(ctx context.Context, collection string, records []models.RemoteRecord) ([]string, error)

	// DeletePoint removes one record by id. Deleting an absent id is not an
	// error.
	DeletePoint(ctx context.Context, collection, id string) error

	// QueryAll returns every record of collection matching filter.
	QueryAll(ctx context.Context, collection string, filter models.RecordFilter) ([]models.RemoteRecord, error)

	// Ping reports whether the system of record is reachable.
	Ping(ctx context.Context) error
}
