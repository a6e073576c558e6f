package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/ory/dockertest/v3"

	"github.com/fhuszti/music-delivery-ms-go/internal/storage"
)

const (
	MinIORootUser     = "minioadmin"
	MinIORootPassword = "minioadmin"
)

type MinIOContainerInfo struct {
	Endpoint string
	// Store is the service's own storage adapter.
	Store *storage.MinioStorage
	// Client is a raw SDK client for assertions on bucket contents.
	Client  *minio.Client
	Cleanup func()
}

func StartMinIOContainer() (*MinIOContainerInfo, error) {
	var client *minio.Client
	endpoint, purge, err := runContainer("minio", &dockertest.RunOptions{
		Repository: "minio/minio",
		Tag:        "latest",
		Env: []string{
			fmt.Sprintf("MINIO_ROOT_USER=%s", MinIORootUser),
			fmt.Sprintf("MINIO_ROOT_PASSWORD=%s", MinIORootPassword),
		},
		Cmd: []string{"server", "/data"},
	}, "9000/tcp", func(addr string) error {
		c, err := minio.New(addr, &minio.Options{
			Creds:  credentials.NewStaticV4(MinIORootUser, MinIORootPassword, ""),
			Secure: false,
		})
		if err != nil {
			return err
		}
		// ListBuckets is a light operation to check health
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := c.ListBuckets(ctx); err != nil {
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStorage(endpoint, MinIORootUser, MinIORootPassword, "us-east-1", false)
	if err != nil {
		purge()
		return nil, fmt.Errorf("could not create storage adapter: %w", err)
	}

	return &MinIOContainerInfo{
		Endpoint: endpoint,
		Store:    store,
		Client:   client,
		Cleanup:  purge,
	}, nil
}
