// Package models holds the GORM row types for the costing tables and their
// conversions to and from domain objects. Domain types carry no ORM tags;
// repositories only ever hand models to GORM.
//
// Decimal amounts are stored through shopspring/decimal's SQL support, and
// allocation targets are kept as a JSON text column.
package models
