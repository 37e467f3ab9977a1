// Package mysql persists submitted transaction records into MySQL. The
// schema is applied from the embedded migrations in deploy/migrations.
package mysql
