// Package models contains GORM persistence models. Domain entities carry no
// ORM tags; each model converts to and from its domain type with ToDomain and
// a ...FromDomain constructor.
package models
