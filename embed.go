// Package checkout carries assets embedded into the service binary.
package checkout

import "embed"

//go:embed migrations/*.sql
var MigrationsFS embed.FS
