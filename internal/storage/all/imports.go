// Package all wires all built-in storage backends into the storage factory.
//
// Importing it (even as a blank import) runs each backend's init, which
// registers the following kinds with storage.Register:
//
//   - "sqlite"   (csvload/internal/storage/sqlite)
//   - "postgres" (csvload/internal/storage/postgres)
//   - "mssql"    (csvload/internal/storage/mssql)
//   - "mysql"    (csvload/internal/storage/mysql)
//
// A binary that needs only a subset can import the backends individually.
package all

import (
	_ "csvload/internal/storage/mssql"
	_ "csvload/internal/storage/mysql"
	_ "csvload/internal/storage/postgres"
	_ "csvload/internal/storage/sqlite"
)
