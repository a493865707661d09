// Package types defines the Collection interface that every remote collection
// service satisfies, the entity and payload types for the building's managed
// collections, and the standard errors shared by stores and backends.
package types
