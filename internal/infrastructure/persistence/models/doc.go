// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
// - base.go: shared identity, timestamp and version columns
// - billing.go: bills, bill items, payments and the daily bill sequence
// - inventory.go: the append-only inventory ledger
// - catalog.go, partner.go, settings.go: reference data read by billing
package models
