package database

func (d *Database) RunMigrations() error {
	if err := d.db.AutoMigrate(&GeocodeEntry{}); err != nil {
		return err
	}

	// Sessions are purged by scope
	return d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_geocode_cache_scope
		ON geocode_cache(scope);
	`).Error
}
