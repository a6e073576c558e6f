package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
)

type Settings struct {
	MariaDBDSN      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ServerPort      int

	BucketName     string
	DistributionID string
	Region         string
	AccessKeyID    string
	SecretKey      string
	S3Endpoint     string
	S3UseSSL       bool

	Bitrates           []int
	StorageCallTimeout time.Duration
	UploadMaxRetries   int
	FFmpegBinary       string

	RedisAddr        string
	RedisPassword    string
	VariantsCacheTTL time.Duration

	JWTPublicKey string
	// PublisherRoles may upload and delete tracks; any authenticated caller may stream.
	PublisherRoles []string
}

// StorageConfigured reports whether enough is set to talk to the object store.
// A service without it still starts, uploads then answer "storage unavailable".
func (s *Settings) StorageConfigured() bool {
	return s.BucketName != "" && s.AccessKeyID != "" && s.SecretKey != ""
}

// requiredKeys must be present in the environment or in .env.
var requiredKeys = []string{
	"MARIADB_DSN",
	"MARIADB_MAX_OPEN_CONN",
	"MARIADB_MAX_IDLE_CONNS",
	"MARIADB_CONN_MAX_LIFETIME",
	"SERVER_PORT",
}

var defaults = map[string]any{
	"AWS_REGION":           "us-east-1",
	"S3_ENDPOINT":          "s3.amazonaws.com",
	"S3_USE_SSL":           true,
	"MEDIA_BITRATES":       "128,192,320",
	"STORAGE_CALL_TIMEOUT": 30,
	"UPLOAD_MAX_RETRIES":   2,
	"VARIANTS_CACHE_TTL":   3600,
	"PUBLISHER_ROLES":      "artist,admin",
}

// Load reads settings from the process environment, with a .env file in the
// working directory filling the gaps. Durations are given in seconds.
func Load() (*Settings, error) {
	ctx := context.Background()
	if err := godotenv.Load(".env"); err != nil {
		logger.Debug(ctx, "no .env file, using the process environment only")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warnf(ctx, "⚠️  Could not parse .env: %v", err)
	}
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	for _, key := range requiredKeys {
		if !v.IsSet(key) {
			return nil, fmt.Errorf("%s is required", key)
		}
	}

	bitrates, err := parseBitrates(v.GetString("MEDIA_BITRATES"))
	if err != nil {
		return nil, err
	}
	seconds := func(key string) time.Duration { return time.Duration(v.GetInt(key)) * time.Second }

	return &Settings{
		MariaDBDSN:      v.GetString("MARIADB_DSN"),
		MaxOpenConns:    v.GetInt("MARIADB_MAX_OPEN_CONN"),
		MaxIdleConns:    v.GetInt("MARIADB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: seconds("MARIADB_CONN_MAX_LIFETIME"),
		ServerPort:      v.GetInt("SERVER_PORT"),

		BucketName:     v.GetString("AWS_S3_BUCKET_NAME"),
		DistributionID: v.GetString("AWS_CLOUDFRONT_DISTRIBUTION_ID"),
		Region:         v.GetString("AWS_REGION"),
		AccessKeyID:    v.GetString("AWS_ACCESS_KEY_ID"),
		SecretKey:      v.GetString("AWS_SECRET_ACCESS_KEY"),
		S3Endpoint:     v.GetString("S3_ENDPOINT"),
		S3UseSSL:       v.GetBool("S3_USE_SSL"),

		Bitrates:           bitrates,
		StorageCallTimeout: seconds("STORAGE_CALL_TIMEOUT"),
		UploadMaxRetries:   v.GetInt("UPLOAD_MAX_RETRIES"),
		FFmpegBinary:       v.GetString("FFMPEG_BINARY"),

		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		VariantsCacheTTL: seconds("VARIANTS_CACHE_TTL"),

		JWTPublicKey:   v.GetString("JWT_PUBLIC_KEY"),
		PublisherRoles: splitList(v.GetString("PUBLISHER_ROLES")),
	}, nil
}

func parseBitrates(raw string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b, err := strconv.Atoi(part)
		if err != nil || b <= 0 {
			return nil, fmt.Errorf("MEDIA_BITRATES: invalid bitrate %q", part)
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("MEDIA_BITRATES must list at least one bitrate")
	}
	return out, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
