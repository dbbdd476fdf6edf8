package engine

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/camsync/internal/camera/cloud"
	"github.com/dmitrijs2005/camsync/internal/camera/media"
	"github.com/dmitrijs2005/camsync/internal/camera/models"
	"github.com/dmitrijs2005/camsync/internal/camera/records"
	"github.com/dmitrijs2005/camsync/internal/logging"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeStore is an in-memory records.Repository that remembers every status
// transition per key.
type fakeStore struct {
	mu           sync.Mutex
	statuses     map[models.RecordKey][]models.UploadStatus
	fingerprints map[models.RecordKey]string
	tempPaths    map[models.RecordKey]string
	transfers    []*records.CompletedTransfer
	statusErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		statuses:     map[models.RecordKey][]models.UploadStatus{},
		fingerprints: map[models.RecordKey]string{},
		tempPaths:    map[models.RecordKey]string{},
	}
}

func (s *fakeStore) UpsertMany(ctx context.Context, recs []*models.UploadRecord) error { return nil }

func (s *fakeStore) GetByStatusAndType(ctx context.Context, statuses []models.UploadStatus, types []models.ItemType, folders []models.FolderClass) ([]*models.UploadRecord, error) {
	return nil, nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, key models.RecordKey, status models.UploadStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusErr != nil {
		return s.statusErr
	}
	s.statuses[key] = append(s.statuses[key], status)
	return nil
}

func (s *fakeStore) UpdateGeneratedFingerprint(ctx context.Context, key models.RecordKey, fingerprint, tempPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fingerprints[key] = fingerprint
	s.tempPaths[key] = tempPath
	return nil
}

func (s *fakeStore) RecordCompletedTransfer(ctx context.Context, ct *records.CompletedTransfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transfers = append(s.transfers, ct)
	return nil
}

func (s *fakeStore) lastStatus(key models.RecordKey) models.UploadStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.statuses[key]
	if len(h) == 0 {
		return ""
	}
	return h[len(h)-1]
}

// fakeSearcher is a fingerprint index. Uploads register nodes here so a
// second invocation resolves them as already existing.
type fakeSearcher struct {
	mu    sync.Mutex
	nodes map[string][]cloud.Node
	errs  map[string]error
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{nodes: map[string][]cloud.Node{}, errs: map[string]error{}}
}

func (s *fakeSearcher) add(fingerprint string, n cloud.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[fingerprint] = append(s.nodes[fingerprint], n)
}

func (s *fakeSearcher) SearchByFingerprint(ctx context.Context, fingerprint string) ([]cloud.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs[fingerprint]; err != nil {
		return nil, err
	}
	return append([]cloud.Node(nil), s.nodes[fingerprint]...), nil
}

// fakeUploader emits a scripted transfer lifecycle and tracks concurrency.
type fakeUploader struct {
	mu            sync.Mutex
	paths         []string
	concurrent    int
	maxConcurrent int
	finishErr     error
	tempErr       error // emitted as a TransferTemporaryError mid-stream
	delay         time.Duration
	registry      *fakeSearcher // successful uploads are indexed here
}

func (u *fakeUploader) uploadedPaths() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.paths...)
}

func (u *fakeUploader) Upload(ctx context.Context, localPath string, parent cloud.NodeID, name string, fingerprint string) <-chan cloud.TransferEvent {
	ch := make(chan cloud.TransferEvent, 8)
	go func() {
		defer close(ch)

		u.mu.Lock()
		u.paths = append(u.paths, localPath)
		u.concurrent++
		if u.concurrent > u.maxConcurrent {
			u.maxConcurrent = u.concurrent
		}
		u.mu.Unlock()
		defer func() {
			u.mu.Lock()
			u.concurrent--
			u.mu.Unlock()
		}()

		if u.delay > 0 {
			time.Sleep(u.delay)
		}

		if u.finishErr != nil {
			ch <- cloud.TransferFinish{NodeID: cloud.NodeID(string(parent) + name), Err: u.finishErr}
			return
		}

		size := int64(0)
		if fi, err := os.Stat(localPath); err == nil {
			size = fi.Size()
		}

		ch <- cloud.TransferStart{Tag: "tag-" + name, TotalBytes: size}
		if u.tempErr != nil {
			ch <- cloud.TransferTemporaryError{Err: u.tempErr}
		}
		ch <- cloud.TransferProgress{Transferred: size}

		id := cloud.NodeID(string(parent) + name)
		if u.registry != nil {
			u.registry.add(fingerprint, cloud.Node{ID: id, ParentID: parent, Fingerprint: fingerprint})
		}
		ch <- cloud.TransferFinish{NodeID: id}
	}()
	return ch
}

type fakeCopier struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *fakeCopier) Copy(ctx context.Context, node cloud.Node, parent cloud.NodeID, name string) (cloud.NodeID, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	return cloud.NodeID(string(parent) + name), nil
}

type fakeCoords struct {
	mu     sync.Mutex
	coords map[cloud.NodeID]*cloud.Coordinates
	sets   map[cloud.NodeID]cloud.Coordinates
}

func newFakeCoords() *fakeCoords {
	return &fakeCoords{coords: map[cloud.NodeID]*cloud.Coordinates{}, sets: map[cloud.NodeID]cloud.Coordinates{}}
}

func (c *fakeCoords) NodeCoordinates(ctx context.Context, id cloud.NodeID) (*cloud.Coordinates, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.coords[id], nil
}

func (c *fakeCoords) SetNodeCoordinates(ctx context.Context, id cloud.NodeID, coords cloud.Coordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets[id] = coords
	return nil
}

type fakeFingerprintSetter struct {
	mu   sync.Mutex
	sets map[cloud.NodeID]string
}

func newFakeFingerprintSetter() *fakeFingerprintSetter {
	return &fakeFingerprintSetter{sets: map[cloud.NodeID]string{}}
}

func (f *fakeFingerprintSetter) SetOriginalFingerprint(ctx context.Context, id cloud.NodeID, fingerprint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets[id] = fingerprint
	return nil
}

type fakePreviews struct {
	mu      sync.Mutex
	deletes []models.RecordKey
	creates []models.RecordKey
	err     error
}

func (p *fakePreviews) DeletePreviews(ctx context.Context, key models.RecordKey) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.deletes = append(p.deletes, key)
	return nil
}

func (p *fakePreviews) CreatePreviews(ctx context.Context, key models.RecordKey, sourcePath string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.creates = append(p.creates, key)
	return nil
}

// fakeTranscoder writes its output file on success and tracks concurrency.
type fakeTranscoder struct {
	mu            sync.Mutex
	concurrent    int
	maxConcurrent int
	fail          error
	delay         time.Duration
}

func (tr *fakeTranscoder) Transcode(ctx context.Context, src, dst string, quality media.VideoQuality) <-chan media.TranscodeEvent {
	ch := make(chan media.TranscodeEvent, 8)
	go func() {
		defer close(ch)

		tr.mu.Lock()
		tr.concurrent++
		if tr.concurrent > tr.maxConcurrent {
			tr.maxConcurrent = tr.concurrent
		}
		tr.mu.Unlock()
		defer func() {
			tr.mu.Lock()
			tr.concurrent--
			tr.mu.Unlock()
		}()

		if tr.delay > 0 {
			time.Sleep(tr.delay)
		}

		ch <- media.TranscodeProgress{Percent: 50}

		if tr.fail != nil {
			ch <- media.TranscodeFailed{Err: tr.fail}
			return
		}

		if err := os.WriteFile(dst, []byte("transcoded"), 0o660); err != nil {
			ch <- media.TranscodeFailed{Err: err}
			return
		}
		ch <- media.TranscodeSuccessful{}
	}()
	return ch
}

// passStripper copies the source file without modification.
type passStripper struct{}

func (passStripper) StripLocation(ctx context.Context, src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o660)
}

// failStripper always fails with a fixed error.
type failStripper struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *failStripper) StripLocation(ctx context.Context, src, dst string) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.err
}

// testDeps bundles all fakes for one engine under test.
type testDeps struct {
	store    *fakeStore
	search   *fakeSearcher
	upload   *fakeUploader
	copier   *fakeCopier
	coords   *fakeCoords
	fps      *fakeFingerprintSetter
	previews *fakePreviews
}

func newTestDeps() *testDeps {
	search := newFakeSearcher()
	return &testDeps{
		store:    newFakeStore(),
		search:   search,
		upload:   &fakeUploader{registry: search},
		copier:   &fakeCopier{},
		coords:   newFakeCoords(),
		fps:      newFakeFingerprintSetter(),
		previews: &fakePreviews{},
	}
}

func (d *testDeps) deps() Deps {
	return Deps{
		Store:        d.store,
		Search:       d.search,
		Upload:       d.upload,
		Copy:         d.copier,
		Coords:       d.coords,
		Fingerprints: d.fps,
		Previews:     d.previews,
		Logger:       discardLogger(),
	}
}

// collectByKey drains the event stream and groups events per record.
func collectByKey(events <-chan Event) map[models.RecordKey][]Event {
	result := map[models.RecordKey][]Event{}
	for ev := range events {
		result[ev.RecordKey()] = append(result[ev.RecordKey()], ev)
	}
	return result
}
