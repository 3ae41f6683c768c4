package config

const (
	storageEnvVar        = "STORAGE"
	redisAddrEnvVar      = "REDIS_ADDR"
	redisPasswordEnvVar  = "REDIS_PASSWORD"
	redisDBEnvVar        = "REDIS_DB"
	redisKeyPrefixEnvVar = "REDIS_KEY_PREFIX"

	StorageMemory = "memory"
	StorageRedis  = "redis"
)

type StorageConfig interface {
	GetStorage() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKeyPrefix() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

// GetStorage selects the backing store for authorization codes and refresh tokens.
func (Storage) GetStorage() string {
	return GetEnv(storageEnvVar, StorageMemory)
}

func (Storage) GetRedisAddr() string {
	return GetEnv(redisAddrEnvVar, "localhost:6379")
}

func (Storage) GetRedisPassword() string {
	return GetEnv(redisPasswordEnvVar, "")
}

func (Storage) GetRedisDB() int {
	return GetEnvInt(redisDBEnvVar, 0)
}

func (Storage) GetRedisKeyPrefix() string {
	return GetEnv(redisKeyPrefixEnvVar, "oauth:")
}
