package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/3Eeeecho/go-filelabel/internal/models"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/storage"
	"github.com/3Eeeecho/go-filelabel/internal/pkg/xerr"
	"github.com/3Eeeecho/go-filelabel/internal/repositories"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fixture 把服务层测试要用的东西装在一起,底下是 sqlite 内存库和内存对象存储
type fixture struct {
	db          *gorm.DB
	store       *memStore
	gateway     *storage.Gateway
	files       repositories.FileRepository
	labels      repositories.LabelRepository
	assignments repositories.AssignmentRepository

	fileService       *FileService
	labelService      *LabelService
	assignmentService *AssignmentService
}

var fixtureSeq int

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fixtureSeq++
	dsn := fmt.Sprintf("file:catalog_test_%d?mode=memory&cache=shared", fixtureSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.File{},
		&models.Label{},
		&models.LabelAssignment{},
	))

	store := newMemStore()
	gateway := storage.NewGatewayWithStore(store, "test-bucket", 2)

	fileRepo := repositories.NewFileRepository(db)
	labelRepo := repositories.NewLabelRepository(db)
	assignmentRepo := repositories.NewAssignmentRepository(db)
	tm := NewTransactionManager(db)
	cascade := NewCascader(tm, assignmentRepo)

	return &fixture{
		db:                db,
		store:             store,
		gateway:           gateway,
		files:             fileRepo,
		labels:            labelRepo,
		assignments:       assignmentRepo,
		fileService:       NewFileService(tm, fileRepo, assignmentRepo, gateway, cascade, nil),
		labelService:      NewLabelService(tm, labelRepo, cascade),
		assignmentService: NewAssignmentService(tm, fileRepo, labelRepo, assignmentRepo),
	}
}

// putObject 往内存存储写一个对象并返回资源地址
func (f *fixture) putObject(t *testing.T, key string, data []byte) string {
	t.Helper()
	url, err := f.gateway.Store(context.Background(), key, bytes.NewReader(data), int64(len(data)), "application/octet-stream")
	require.NoError(t, err)
	return url
}

func (f *fixture) createFile(t *testing.T, actorID uint64, name, path string) models.File {
	t.Helper()
	url := f.putObject(t, "objects"+path+name, []byte("payload-"+name))
	files, err := f.fileService.BulkCreate(context.Background(), actorID, []FileInput{
		{Name: name, Path: path, ResourceURL: url},
	})
	require.NoError(t, err)
	require.Len(t, files, 1)
	return files[0]
}

func (f *fixture) createLabel(t *testing.T, actorID uint64, name string) models.Label {
	t.Helper()
	labels, err := f.labelService.BulkCreate(context.Background(), actorID, []LabelInput{{Name: name}})
	require.NoError(t, err)
	require.Len(t, labels, 1)
	return labels[0]
}

func (f *fixture) countAssignmentRows(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.LabelAssignment{}).Count(&n).Error)
	return n
}

// memStore 内存对象存储,测试替身
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

var _ storage.ObjectStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) objectKey(bucket, key string) string {
	return bucket + "/" + key
}

func (m *memStore) Put(ctx context.Context, bucket, key string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[m.objectKey(bucket, key)] = data
	return nil
}

func (m *memStore) Get(ctx context.Context, bucket, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	info, err := m.Head(ctx, bucket, key)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	m.mu.Lock()
	data := m.objects[m.objectKey(bucket, key)]
	m.mu.Unlock()
	return io.NopCloser(bytes.NewReader(data)), info, nil
}

func (m *memStore) Head(ctx context.Context, bucket, key string) (storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[m.objectKey(bucket, key)]
	if !ok {
		return storage.ObjectInfo{}, fmt.Errorf("object %s/%s: %w", bucket, key, xerr.ErrResourceNotFound)
	}
	return storage.ObjectInfo{Size: int64(len(data)), ContentType: "application/octet-stream"}, nil
}

func (m *memStore) Presign(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	return m.ObjectURL(bucket, key) + "?signed=1", nil
}

func (m *memStore) EnsureBucket(ctx context.Context, bucket string) error {
	return nil
}

func (m *memStore) ObjectURL(bucket, key string) string {
	return "mem://" + bucket + "/" + key
}

func (m *memStore) Locate(rawURL string) (string, string, error) {
	rest := strings.TrimPrefix(rawURL, "mem://")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("unrecognized resource url %s: %w", rawURL, xerr.ErrInvalidParams)
	}
	return parts[0], parts[1], nil
}
