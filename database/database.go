// Package database embeds the schema migrations so binaries do not depend on
// the working directory.
package database

import "embed"

// Migrations holds the golang-migrate files under migrations/.
//
//go:embed migrations/*.json
var Migrations embed.FS
