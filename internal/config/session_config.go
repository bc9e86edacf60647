package config

import "path/filepath"

const (
	sessionStoreEnvVar = "SESSION_STORE"
	sessionFileEnvVar  = "SESSION_FILE"

	SessionStoreFile   = "file"
	SessionStoreMemory = "memory"
)

type SessionConfig interface {
	GetSessionStore() string
	GetSessionFile() string
}

type Session struct {
	file   SessionFileConfig
	folder string
}

var _ SessionConfig = Session{}

// GetSessionStore selects where the session survives: "file" keeps it across
// restarts, "memory" forgets it when the process exits.
func (s Session) GetSessionStore() string {
	switch GetEnv(sessionStoreEnvVar, s.file.Store) {
	case SessionStoreMemory:
		return SessionStoreMemory
	default:
		return SessionStoreFile
	}
}

func (s Session) GetSessionFile() string {
	folder := GetEnv(folderEnvVar, orDefault(s.folder, "./data"))
	return GetEnv(sessionFileEnvVar, orDefault(s.file.File, filepath.Join(folder, "session.json")))
}
