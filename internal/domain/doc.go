// Package domain defines the core domain types shared across the service.
//
// Concept-oriented files (account.go, results.go, errors.go) hold the account
// model, operation results, and sentinel errors. No implementation code lives
// here - just contracts. Interfaces stay on the consumer side to prevent
// circular imports.
package domain
