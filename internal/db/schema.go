package db

import "database/sql"

// EnsureSchema creates the engine's tables when they are missing. Existing
// tables are left untouched.
func EnsureSchema(conn *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS bookings (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NULL,
			customer_name VARCHAR(255) NOT NULL,
			customer_phone VARCHAR(100) NOT NULL,
			customer_email VARCHAR(255) NULL,
			service_type VARCHAR(20) NOT NULL,
			origin VARCHAR(255) NULL,
			destination VARCHAR(255) NULL,
			vehicle_type VARCHAR(50) NULL,
			passenger_count INT NOT NULL DEFAULT 0,
			hours INT NOT NULL DEFAULT 0,
			trip_date VARCHAR(20) NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			total DECIMAL(10,2) NOT NULL DEFAULT 0,
			payment_id VARCHAR(64) NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			KEY idx_booking_status (status)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS payments (
			id VARCHAR(64) PRIMARY KEY,
			booking_id BIGINT NOT NULL,
			method VARCHAR(20) NOT NULL,
			amount DECIMAL(10,2) NOT NULL,
			currency VARCHAR(10) NOT NULL DEFAULT 'EUR',
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			provider_ref VARCHAR(128) NULL,
			provider_tx VARCHAR(128) NULL,
			details JSON NULL,
			failure_reason VARCHAR(255) NULL,
			completed_at TIMESTAMP NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_provider_ref (provider_ref),
			KEY idx_payment_booking (booking_id, status)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NULL,
			email VARCHAR(255) NULL,
			points BIGINT NOT NULL DEFAULT 0,
			total_spent DECIMAL(12,2) NOT NULL DEFAULT 0,
			total_bookings BIGINT NOT NULL DEFAULT 0,
			membership_level VARCHAR(20) NOT NULL DEFAULT 'bronze',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS rewards (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description VARCHAR(500) NULL,
			type VARCHAR(20) NOT NULL,
			points_required BIGINT NOT NULL,
			active TINYINT(1) NOT NULL DEFAULT 1,
			valid_until TIMESTAMP NULL,
			max_redemptions BIGINT NOT NULL DEFAULT 0,
			current_redemptions BIGINT NOT NULL DEFAULT 0,
			UNIQUE KEY uniq_reward_name (name)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS points_history (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			booking_id BIGINT NULL,
			payment_id VARCHAR(64) NULL,
			delta BIGINT NOT NULL,
			balance_after BIGINT NOT NULL DEFAULT 0,
			description VARCHAR(500) NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_points_payment (payment_id),
			KEY idx_points_user (user_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS user_rewards (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			reward_id BIGINT NOT NULL,
			redeemed_at TIMESTAMP NULL,
			used TINYINT(1) NOT NULL DEFAULT 0,
			KEY idx_user_rewards (user_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
	}

	for _, stmt := range ddl {
		if _, err := conn.Exec(stmt); err != nil {
			return err
		}
	}
	return upgradeSchema(conn)
}

// upgradeSchema adds columns introduced after the initial deployments.
// CREATE TABLE IF NOT EXISTS covers fresh installs only.
func upgradeSchema(conn *sql.DB) error {
	type column struct {
		table string
		name  string
		ddl   string
	}
	columns := []column{
		{"payments", "provider_tx",
			`ALTER TABLE payments ADD COLUMN provider_tx VARCHAR(128) NULL AFTER provider_ref`},
		{"bookings", "payment_id",
			`ALTER TABLE bookings ADD COLUMN payment_id VARCHAR(64) NULL AFTER total`},
		{"users", "membership_level",
			`ALTER TABLE users ADD COLUMN membership_level VARCHAR(20) NOT NULL DEFAULT 'bronze'`},
	}

	for _, c := range columns {
		if !HasTable(conn, c.table) || HasColumn(conn, c.table, c.name) {
			continue
		}
		if _, err := conn.Exec(c.ddl); err != nil {
			return err
		}
	}
	return nil
}
