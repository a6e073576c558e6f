package e2e

import (
	"fmt"
	"os"
	"testing"

	"github.com/fhuszti/music-delivery-ms-go/test/testutil"
)

// minioInfo is the MinIO instance every e2e test presigns against.
var minioInfo *testutil.MinIOContainerInfo

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	mi, err := testutil.StartMinIOContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "e2e: start MinIO: %v\n", err)
		return 1
	}
	defer mi.Cleanup()

	minioInfo = mi
	return m.Run()
}
