package repository

import "gorm.io/gorm"

// Migrate creates or updates the schema for every model in this package. On
// Postgres it also installs the overlap guard that makes double-booking a
// room impossible at the store level; SQLite deployments rely on the
// open-window check in the booking service alone.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&userModel{},
		&studioModel{},
		&roomModel{},
		&bookingModel{},
		&availabilityModel{},
	); err != nil {
		return err
	}

	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
			return err
		}
		return db.Exec(`
			DO $$ BEGIN
				ALTER TABLE bookings ADD CONSTRAINT idx_no_overbooking
					EXCLUDE USING gist (
						room_id WITH =,
						tsrange(requested_start, requested_end) WITH &&
					)
					WHERE (status IN ('pending', 'confirmed', 'rescheduled-pending'));
			EXCEPTION
				WHEN duplicate_object THEN NULL;
				WHEN duplicate_table THEN NULL;
			END $$;
		`).Error
	}
	return nil
}
