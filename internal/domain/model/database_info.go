package model

import "database/sql"

// ConnectionSummary describes the configured database without credentials.
type ConnectionSummary struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	User     string `json:"user"`
	SSLMode  string `json:"sslmode"`
}

// DatabaseInfo is live server information gathered on demand.
type DatabaseInfo struct {
	ServerVersion string      `json:"serverVersion" db:"server_version"`
	Database      string      `json:"database"      db:"database"`
	CurrentUser   string      `json:"currentUser"   db:"current_user"`
	SizeBytes     int64       `json:"sizeBytes"     db:"size_bytes"`
	Stats         sql.DBStats `json:"stats"         db:"-"`
}

// DatabaseReport is what the diagnostics page renders.
type DatabaseReport struct {
	Connection ConnectionSummary `json:"connection"`
	Info       DatabaseInfo      `json:"info"`
}
