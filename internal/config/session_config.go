package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	sessionBackendEnvVar = "PORTAL_SESSION_BACKEND"
	sessionFileEnvVar    = "PORTAL_SESSION_FILE"
	sessionProfileVar    = "PORTAL_SESSION_PROFILE"
	redisAddrEnvVar      = "PORTAL_REDIS_ADDR"
	redisPasswordEnvVar  = "PORTAL_REDIS_PASSWORD"
	redisDBEnvVar        = "PORTAL_REDIS_DB"

	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"
)

type SessionConfig interface {
	GetSessionBackend() string
	GetSessionFile() string
	GetSessionProfile() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionBackend() string {
	backend := strings.ToLower(GetEnv(sessionBackendEnvVar, SessionBackendFile))
	if backend != SessionBackendRedis {
		return SessionBackendFile
	}
	return backend
}

// GetSessionFile defaults to <user config dir>/college-portal/session.json
func (Session) GetSessionFile() string {
	if path := os.Getenv(sessionFileEnvVar); path != "" {
		return path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "college-portal", "session.json")
}

// GetSessionProfile namespaces the redis keys so several identities can share one server
func (Session) GetSessionProfile() string {
	return GetEnv(sessionProfileVar, "default")
}

func (Session) GetRedisAddr() string {
	return GetEnv(redisAddrEnvVar, "localhost:6379")
}

func (Session) GetRedisPassword() string {
	return GetEnv(redisPasswordEnvVar, "")
}

func (Session) GetRedisDB() int {
	db, err := strconv.Atoi(GetEnv(redisDBEnvVar, "0"))
	if err != nil || db < 0 {
		return 0
	}
	return db
}
