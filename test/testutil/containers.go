package testutil

import (
	"context"
	"fmt"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
)

// runContainer starts a throwaway container and retries ready against the
// host address of internalPort until it succeeds.
func runContainer(name string, opts *dockertest.RunOptions, internalPort string, ready func(hostAddr string) error) (string, func(), error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return "", nil, fmt.Errorf("could not connect to docker: %w", err)
	}

	resource, err := pool.RunWithOptions(opts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return "", nil, fmt.Errorf("could not start %s container: %w", name, err)
	}

	purge := func() {
		if err := pool.Purge(resource); err != nil {
			logger.Warnf(context.Background(), "could not purge %s container: %s", name, err)
		}
	}

	hostAddr := fmt.Sprintf("localhost:%s", resource.GetPort(internalPort))
	if err := pool.Retry(func() error { return ready(hostAddr) }); err != nil {
		purge()
		return "", nil, fmt.Errorf("%s did not become ready: %w", name, err)
	}
	return hostAddr, purge, nil
}
