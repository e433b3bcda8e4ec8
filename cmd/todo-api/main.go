package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"todoboard/api"
	"todoboard/storage"
	"todoboard/token"
)

const defaultCacheTTL = time.Minute

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "todo.db"
	}
	store, err := storage.OpenTaskStore(dbPath)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()

	var taskStore api.Storage = store
	if redisConn := os.Getenv("REDIS_CONNECTION_STRING"); redisConn != "" {
		redisOpts, err := redis.ParseURL(redisConn)
		if err != nil {
			log.Fatalf("invalid REDIS_CONNECTION_STRING: %v", err)
		}
		ttl := defaultCacheTTL
		if v := os.Getenv("CACHE_TTL"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				log.Fatalf("invalid CACHE_TTL: %v", err)
			}
			ttl = d
		}
		taskStore = storage.NewCache(store, redis.NewClient(redisOpts), ttl)
	}

	var auth *api.Auth
	if jwksURL := os.Getenv("JWKS_URL"); jwksURL != "" {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
		auth = api.NewAuthJWKS(jwks)
	} else {
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			secret = "dev-secret"
			log.Warn("JWT_SECRET not set, using development secret")
		}
		algorithm := os.Getenv("JWT_ALGORITHM")
		if algorithm == "" {
			algorithm = "HS256"
		}
		codec, err := token.NewCodec([]byte(secret), algorithm)
		if err != nil {
			log.Fatalf("token codec: %v", err)
		}
		auth = api.NewAuth(codec)
	}

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: corsOrigins(),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	logger := log.StandardLogger()
	hub := api.NewHub(logger)
	api.Register(e, taskStore, auth, hub, logger)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("TODO_API_PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}

func corsOrigins() []string {
	raw := os.Getenv("CORS_ORIGINS")
	if raw == "" {
		return []string{"*"}
	}
	origins := []string{}
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
