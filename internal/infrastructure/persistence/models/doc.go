// Package models holds the GORM persistence models.
//
// Models are kept apart from domain entities: repositories convert with
// ToDomain and FromDomain so that gorm tags and relation fields never leak
// into the domain packages. The SQL schema itself is owned by the migrations
// directory; AutoMigrate on these models is only used by tests running on
// SQLite.
package models
