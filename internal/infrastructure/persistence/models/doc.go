// Package models contains GORM persistence models that map to database tables.
// Models stay separate from domain types: the designer package carries no
// ORM tags, and each model converts with ToDomain / ...FromDomain.
//
// - base.go: shared id, timestamp and version columns
// - card_template.go: saved card templates with their scene snapshot
package models
