package cache

import (
	"context"
	"log"

	"judgeboard/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

// RDB backs the per-session contest verification sets. Nothing durable lives
// here: losing Redis only forces users to re-verify.
var RDB *redis.Client

func ConnectRedis() {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	ctx := context.Background()
	if _, err := RDB.Ping(ctx).Result(); err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
	}
}
