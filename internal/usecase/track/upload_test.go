package track

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/fhuszti/music-delivery-ms-go/internal/delivery"
	"github.com/fhuszti/music-delivery-ms-go/internal/mock"
	"github.com/fhuszti/music-delivery-ms-go/internal/model"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func newUploader(d *mock.Delivery, repo *mock.AssetRepo, cache *mock.Cache) *trackUploaderSrv {
	s := NewTrackUploader(d, repo, cache, &mock.MockDispatcher{}).(*trackUploaderSrv)
	s.now = func() time.Time { return now }
	return s
}

func TestUploadTrack_Success(t *testing.T) {
	variants := model.Variants{128: "u128", 320: "u320"}
	d := &mock.Delivery{Available: true, VariantsOut: variants}
	repo := &mock.AssetRepo{GetErr: sql.ErrNoRows}
	cache := &mock.Cache{}

	asset, err := newUploader(d, repo, cache).UploadTrack(context.Background(), port.UploadTrackInput{
		AssetID:  "song-1",
		Data:     []byte("ID3"),
		MimeType: "audio/mpeg",
		Filename: "Song.MP3",
		Bitrates: []int{128, 320},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(d.UploadBitrates, []int{128, 320}) {
		t.Errorf("bitrates = %v", d.UploadBitrates)
	}
	if asset.Extension != "mp3" || asset.MimeType != "audio/mpeg" || asset.OriginalFilename != "Song.MP3" {
		t.Errorf("asset = %+v", asset)
	}
	if !asset.CreatedAt.Equal(now) || !asset.UpdatedAt.Equal(now) {
		t.Errorf("timestamps = %v / %v", asset.CreatedAt, asset.UpdatedAt)
	}
	if repo.Saved != asset {
		t.Error("expected the asset to be saved")
	}
	if !cache.SetCalled || !reflect.DeepEqual(cache.Stored, variants) {
		t.Error("expected variants to be cached")
	}
	if d.DeleteCalled {
		t.Error("no cleanup expected on a first upload")
	}
}

func TestUploadTrack_StorageUnavailable(t *testing.T) {
	d := &mock.Delivery{}
	repo := &mock.AssetRepo{}

	_, err := newUploader(d, repo, &mock.Cache{}).UploadTrack(context.Background(), port.UploadTrackInput{AssetID: "a", Filename: "a.mp3"})
	if !errors.Is(err, delivery.ErrStorageUnavailable) {
		t.Fatalf("error = %v; want ErrStorageUnavailable", err)
	}
	if repo.GetCalled || d.UploadCalled {
		t.Error("nothing should be touched when storage is unavailable")
	}
}

func TestUploadTrack_UploadFails(t *testing.T) {
	upErr := &delivery.UploadFailedError{Bitrate: 192, Err: errors.New("boom")}
	d := &mock.Delivery{Available: true, UploadErr: upErr}
	repo := &mock.AssetRepo{GetErr: sql.ErrNoRows}
	cache := &mock.Cache{}

	asset, err := newUploader(d, repo, cache).UploadTrack(context.Background(), port.UploadTrackInput{AssetID: "a", MimeType: "audio/mpeg"})
	if asset != nil {
		t.Errorf("asset = %+v; want nil", asset)
	}
	var target *delivery.UploadFailedError
	if !errors.As(err, &target) {
		t.Fatalf("error = %v; want *UploadFailedError", err)
	}
	if repo.Saved != nil || cache.SetCalled {
		t.Error("a failed upload must not be recorded")
	}
	if d.InvalidateCalled || cache.DelCalled {
		t.Error("a first upload has nothing to invalidate")
	}
}

func TestUploadTrack_RepoErrors(t *testing.T) {
	d := &mock.Delivery{Available: true, VariantsOut: model.Variants{128: "u"}}

	_, err := newUploader(d, &mock.AssetRepo{GetErr: errors.New("db down")}, &mock.Cache{}).
		UploadTrack(context.Background(), port.UploadTrackInput{AssetID: "a", Filename: "a.mp3"})
	if err == nil || err.Error() != "db down" {
		t.Fatalf("expected db down, got %v", err)
	}
	if d.UploadCalled {
		t.Error("upload should not start when the record lookup fails")
	}

	_, err = newUploader(d, &mock.AssetRepo{GetErr: sql.ErrNoRows, SaveErr: errors.New("save fail")}, &mock.Cache{}).
		UploadTrack(context.Background(), port.UploadTrackInput{AssetID: "a", Filename: "a.mp3"})
	if err == nil || err.Error() != "save fail" {
		t.Fatalf("expected save fail, got %v", err)
	}
}

func TestUploadTrack_UnsupportedFormat(t *testing.T) {
	d := &mock.Delivery{Available: true}
	_, err := newUploader(d, &mock.AssetRepo{}, &mock.Cache{}).
		UploadTrack(context.Background(), port.UploadTrackInput{AssetID: "a", MimeType: "video/mp4"})
	if !errors.Is(err, delivery.ErrUnsupportedFormat) {
		t.Fatalf("error = %v; want ErrUnsupportedFormat", err)
	}
}

func TestUploadTrack_ReplacesOtherFormat(t *testing.T) {
	created := now.Add(-48 * time.Hour)
	previous := &model.Asset{ID: "a", Extension: "wav", Variants: model.Variants{128: "old128", 192: "old192"}, CreatedAt: created}
	d := &mock.Delivery{Available: true, VariantsOut: model.Variants{128: "new128"}}
	repo := &mock.AssetRepo{AssetRecord: previous}

	asset, err := newUploader(d, repo, &mock.Cache{}).
		UploadTrack(context.Background(), port.UploadTrackInput{AssetID: "a", MimeType: "audio/flac", Filename: "a.flac"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !asset.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v; want %v", asset.CreatedAt, created)
	}
	if !d.DeleteCalled || d.DeleteExtension != "wav" || !reflect.DeepEqual(d.DeleteBitrates, []int{128, 192}) {
		t.Errorf("cleanup: called=%v ext=%q bitrates=%v", d.DeleteCalled, d.DeleteExtension, d.DeleteBitrates)
	}
}

func TestUploadTrack_SameFormatNoCleanup(t *testing.T) {
	previous := &model.Asset{ID: "a", Extension: "mp3", Variants: model.Variants{128: "old"}}
	d := &mock.Delivery{Available: true, VariantsOut: model.Variants{128: "new"}, DeleteErr: errors.New("unused")}
	repo := &mock.AssetRepo{AssetRecord: previous}

	if _, err := newUploader(d, repo, &mock.Cache{}).
		UploadTrack(context.Background(), port.UploadTrackInput{AssetID: "a", MimeType: "audio/mpeg", Filename: "a.mp3"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.DeleteCalled {
		t.Error("same keys are overwritten, nothing to delete")
	}
}

func TestUploadTrack_RemovesDroppedBitrates(t *testing.T) {
	previous := &model.Asset{ID: "a", Extension: "mp3", Variants: model.Variants{128: "o1", 192: "o2", 320: "o3"}}
	d := &mock.Delivery{Available: true, VariantsOut: model.Variants{128: "n1"}}

	asset, err := newUploader(d, &mock.AssetRepo{AssetRecord: previous}, &mock.Cache{}).
		UploadTrack(context.Background(), port.UploadTrackInput{AssetID: "a", MimeType: "audio/mpeg", Filename: "a.mp3", Bitrates: []int{128}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(d.DeleteCalls, map[string][]int{"mp3": {192, 320}}) {
		t.Errorf("delete calls = %v; want the dropped mp3 variants", d.DeleteCalls)
	}
	if !reflect.DeepEqual(asset.Variants, model.Variants{128: "n1"}) {
		t.Errorf("variants = %v", asset.Variants)
	}
}

func TestUploadTrack_StaleCleanupQueuesInvalidation(t *testing.T) {
	previous := &model.Asset{ID: "a", Extension: "wav", Variants: model.Variants{128: "o1"}}
	invErr := &delivery.InvalidationFailedError{AssetID: "a", Paths: []string{"/music/128kbps/a.*"}, Err: errors.New("throttled")}
	d := &mock.Delivery{Available: true, VariantsOut: model.Variants{128: "n1"}, DeleteErr: invErr}
	disp := &mock.MockDispatcher{}

	s := NewTrackUploader(d, &mock.AssetRepo{AssetRecord: previous}, &mock.Cache{}, disp)
	if _, err := s.UploadTrack(context.Background(), port.UploadTrackInput{AssetID: "a", MimeType: "audio/mpeg", Filename: "a.mp3"}); err != nil {
		t.Fatalf("cleanup failures must not fail the upload: %v", err)
	}
	if !disp.InvalidateCalled || disp.InvalidateIDs[0] != "a" {
		t.Errorf("dispatcher ids = %v", disp.InvalidateIDs)
	}
}

func TestUploadTrack_FailedReuploadInvalidatesPrevious(t *testing.T) {
	previous := &model.Asset{ID: "a", Extension: "mp3", Variants: model.Variants{128: "o1", 192: "o2", 320: "o3"}}
	upErr := &delivery.UploadFailedError{Bitrate: 320, Err: errors.New("boom")}

	tests := []struct {
		name      string
		requested []int
		wantPaths []string
	}{
		{"configured bitrates", nil, delivery.InvalidationPaths("a", []int{128, 192, 320})},
		{"requested subset", []int{320, 192}, delivery.InvalidationPaths("a", []int{192, 320})},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := &mock.Delivery{Available: true, BitratesOut: []int{128, 192, 320}, UploadErr: upErr}
			repo := &mock.AssetRepo{AssetRecord: previous}
			cache := &mock.Cache{}

			_, err := newUploader(d, repo, cache).UploadTrack(context.Background(),
				port.UploadTrackInput{AssetID: "a", MimeType: "audio/mpeg", Filename: "a.mp3", Bitrates: tc.requested})
			if !errors.As(err, new(*delivery.UploadFailedError)) {
				t.Fatalf("error = %v; want *UploadFailedError", err)
			}
			if repo.Saved != nil {
				t.Error("the previous record must be kept")
			}
			if !cache.DelCalled || cache.DelID != "a" {
				t.Error("expected the cached variant map to be dropped")
			}
			if !d.InvalidateCalled || !reflect.DeepEqual(d.InvalidatePaths, tc.wantPaths) {
				t.Errorf("invalidated = %v; want %v", d.InvalidatePaths, tc.wantPaths)
			}
		})
	}
}

func TestUploadTrack_FailedReuploadQueuesInvalidation(t *testing.T) {
	previous := &model.Asset{ID: "a", Extension: "mp3", Variants: model.Variants{128: "o1"}}
	d := &mock.Delivery{
		Available:     true,
		UploadErr:     &delivery.UploadFailedError{Bitrate: 128, Err: errors.New("boom")},
		InvalidateErr: &delivery.InvalidationFailedError{AssetID: "a", Paths: []string{"/music/128kbps/a.*"}, Err: errors.New("throttled")},
	}
	disp := &mock.MockDispatcher{}

	s := NewTrackUploader(d, &mock.AssetRepo{AssetRecord: previous}, &mock.Cache{}, disp)
	_, _ = s.UploadTrack(context.Background(), port.UploadTrackInput{AssetID: "a", MimeType: "audio/mpeg", Filename: "a.mp3", Bitrates: []int{128}})
	if !disp.InvalidateCalled || !reflect.DeepEqual(disp.InvalidatePaths[0], []string{"/music/128kbps/a.*"}) {
		t.Errorf("dispatcher paths = %v", disp.InvalidatePaths)
	}
}

func TestUploadTrack_FailedReuploadInOtherFormat(t *testing.T) {
	previous := &model.Asset{ID: "a", Extension: "wav", Variants: model.Variants{128: "o1"}}
	d := &mock.Delivery{Available: true, UploadErr: &delivery.UploadFailedError{Bitrate: 128, Err: errors.New("boom")}}
	cache := &mock.Cache{}

	_, _ = newUploader(d, &mock.AssetRepo{AssetRecord: previous}, cache).
		UploadTrack(context.Background(), port.UploadTrackInput{AssetID: "a", MimeType: "audio/mpeg", Filename: "a.mp3"})
	if d.InvalidateCalled || cache.DelCalled {
		t.Error("the previous wav objects were not touched, nothing to invalidate")
	}
}
