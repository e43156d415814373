package config

const (
	// DefaultDatabasePath is the default path for the board database
	DefaultDatabasePath = "./ipcboard.db"

	// DefaultUploadsDir is where uploaded documents are kept with the local backend
	DefaultUploadsDir = "./uploads"
)
