// Package domain contains the core business entities of the task manager:
// tasks, their tag associations, filters, system views and the closed set
// of batch-updatable fields. It has no knowledge of storage or transport.
//
// Every validation failure produced here wraps ErrValidation so that outer
// layers can classify malformed input with a single errors.Is check.
package domain
