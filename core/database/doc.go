// Package database provides the GORM connection used by fetch adapters.
//
// Connect supports mysql for deployments and sqlite for local development
// and tests (the feature tests open an in-memory sqlite database through
// this same entry point). Pool limits and timeouts are applied for mysql;
// connections are verified with a ping before being handed out.
package database
