// Package store defines the persistence contracts for tasks and their tag
// associations. Implementations live under internal/platform; the service
// layer depends only on these interfaces and on RunInTransaction.
package store
