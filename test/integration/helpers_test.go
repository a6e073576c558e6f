package integration

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"mime/multipart"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"

	"github.com/fhuszti/music-delivery-ms-go/internal/cache"
	"github.com/fhuszti/music-delivery-ms-go/internal/delivery"
	"github.com/fhuszti/music-delivery-ms-go/internal/handler/api"
	cMiddleware "github.com/fhuszti/music-delivery-ms-go/internal/middleware"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
	"github.com/fhuszti/music-delivery-ms-go/internal/repository/mariadb"
	"github.com/fhuszti/music-delivery-ms-go/internal/transcoder"
	"github.com/fhuszti/music-delivery-ms-go/internal/usecase/track"
	"github.com/fhuszti/music-delivery-ms-go/test/testutil"
)

const testDistribution = "E2TEST"

// recordingCDN stands in for CloudFront and optionally fails every call.
type recordingCDN struct {
	mu    sync.Mutex
	fail  bool
	paths [][]string
}

func (c *recordingCDN) Invalidate(_ context.Context, _ string, paths []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("cloudfront throttled")
	}
	c.paths = append(c.paths, append([]string(nil), paths...))
	return nil
}

func (c *recordingCDN) calls() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]string(nil), c.paths...)
}

type trackEnv struct {
	Router  http.Handler
	Bucket  string
	Repo    *mariadb.AssetRepository
	Pending *mariadb.PendingUploadRepository
	CDN     *recordingCDN
	Service *delivery.Service
	signer  *rsa.PrivateKey
}

func newDeliveryService(bucket string, edge port.CDN) *delivery.Service {
	return delivery.New(delivery.Options{
		Store:          GlobalStore,
		CDN:            edge,
		Transcoder:     transcoder.NewPassthrough(),
		BucketName:     bucket,
		DistributionID: testDistribution,
		Bitrates:       []int{128, 192, 320},
		CallTimeout:    10 * time.Second,
	})
}

// setupTrackEnv wires the HTTP routes the way the API binary does, against
// real MariaDB, MinIO and Redis.
func setupTrackEnv(t *testing.T, dispatcher port.TaskDispatcher) *trackEnv {
	t.Helper()

	database := testutil.NewMigratedDB(t)
	bucket := testutil.NewTestBucket(t, GlobalMinioClient, "music")

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	edge := &recordingCDN{}
	svc := newDeliveryService(bucket, edge)
	repo := mariadb.NewAssetRepository(database)
	pending := mariadb.NewPendingUploadRepository(database)
	ca := cache.NewCache(RedisAddr, "", time.Minute)

	r := chi.NewRouter()
	r.NotFound(api.NotFoundHandler())
	r.Get("/health", api.HealthHandler(svc.IsAvailable))
	r.Group(func(r chi.Router) {
		r.Use(cMiddleware.WithDSTAuth(string(pubPEM)))
		publishers := cMiddleware.WithRoles(string(pubPEM), "artist", "admin")

		r.With(publishers).
			Post("/tracks/upload_link", api.GenerateUploadLinkHandler(track.NewUploadLinkGenerator(svc, repo, pending, func() string { return "generated-id" })))
		r.With(publishers, cMiddleware.WithAssetID()).
			Post("/tracks/{id}/finalise", api.FinaliseUploadHandler(track.NewUploadFinaliser(svc, repo, pending, ca, dispatcher)))
		r.With(publishers, cMiddleware.WithAssetID(), cMiddleware.WithUploadGate(delivery.MaxFileSize)).
			Post("/tracks/{id}/audio", api.UploadAudioHandler(track.NewTrackUploader(svc, repo, ca, dispatcher)))
		r.With(cMiddleware.WithAssetID()).
			Get("/tracks/{id}/stream", api.StreamHandler(track.NewStreamResolver(svc, repo, ca)))
		r.With(publishers, cMiddleware.WithAssetID()).
			Delete("/tracks/{id}", api.DeleteTrackHandler(track.NewTrackDeleter(svc, repo, pending, ca, dispatcher)))
	})

	return &trackEnv{Router: r, Bucket: bucket, Repo: repo, Pending: pending, CDN: edge, Service: svc, signer: key}
}

// token signs a short-lived DST for an artist on the given tier.
func (e *trackEnv) token(t *testing.T, tier string) string {
	t.Helper()
	return e.signedToken(t, tier, "dst", "artist")
}

// listenerToken signs a DST without any publishing role.
func (e *trackEnv) listenerToken(t *testing.T, tier string) string {
	t.Helper()
	return e.signedToken(t, tier, "dst", "listener")
}

func (e *trackEnv) signedToken(t *testing.T, tier string, roles ...string) string {
	t.Helper()
	claimRoles := make([]any, 0, len(roles))
	for _, r := range roles {
		claimRoles = append(claimRoles, r)
	}
	claims := jwt.MapClaims{
		"iss":   "core",
		"aud":   "music-delivery",
		"exp":   time.Now().Add(time.Minute).Unix(),
		"iat":   time.Now().Unix(),
		"sub":   "user-123",
		"roles": claimRoles,
		"tier":  tier,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(e.signer)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func uploadBody(t *testing.T, filename string, data []byte, bitrates string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if bitrates != "" {
		if err := mw.WriteField("bitrates", bitrates); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, mw.FormDataContentType()
}
