// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a narrow Client interface covering the
// operations the snapshot store needs: bucket existence/creation, object
// upload, download and removal. The abstraction supports both AWS S3 and
// self-hosted MinIO instances, and makes the storage interactions easy to
// mock in unit tests (see core/storage/mocks).
package storage
