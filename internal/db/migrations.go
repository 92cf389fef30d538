package db

// additiveColumns are run after table creation on every start. Each must be an
// ALTER TABLE ... ADD COLUMN that is harmless to fail when the column exists.
// Append new columns at the end.
var additiveColumns = []string{
	// Databases created before quantities were tracked.
	`ALTER TABLE inventory ADD COLUMN required_quantity INTEGER NOT NULL DEFAULT 0`,
	`ALTER TABLE inventory ADD COLUMN available_quantity INTEGER NOT NULL DEFAULT 0`,
}
