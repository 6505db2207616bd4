package workspace

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/codeforge/backend/internal/domain/identity"
	"github.com/codeforge/backend/internal/domain/shared"
	"github.com/codeforge/backend/internal/domain/workspace"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProjectRepository is a mock implementation of workspace.ProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *workspace.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) Update(ctx context.Context, project *workspace.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*workspace.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workspace.Project), args.Error(1)
}

func (m *MockProjectRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, filter workspace.ProjectFilter) ([]*workspace.Project, int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]*workspace.Project), args.Get(1).(int64), args.Error(2)
}

func (m *MockProjectRepository) FindAccessible(ctx context.Context, userID uuid.UUID, filter workspace.ProjectFilter) ([]*workspace.Project, int64, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]*workspace.Project), args.Get(1).(int64), args.Error(2)
}

func (m *MockProjectRepository) ExistsByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (bool, error) {
	args := m.Called(ctx, ownerID, name)
	return args.Bool(0), args.Error(1)
}

// MockCollaborationRepository is a mock implementation of workspace.CollaborationRepository
type MockCollaborationRepository struct {
	mock.Mock
}

func (m *MockCollaborationRepository) Create(ctx context.Context, collab *workspace.Collaboration) error {
	args := m.Called(ctx, collab)
	return args.Error(0)
}

func (m *MockCollaborationRepository) Update(ctx context.Context, collab *workspace.Collaboration) error {
	args := m.Called(ctx, collab)
	return args.Error(0)
}

func (m *MockCollaborationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCollaborationRepository) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

func (m *MockCollaborationRepository) FindByID(ctx context.Context, id uuid.UUID) (*workspace.Collaboration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workspace.Collaboration), args.Error(1)
}

func (m *MockCollaborationRepository) FindByProjectAndUser(ctx context.Context, projectID, userID uuid.UUID) (*workspace.Collaboration, error) {
	args := m.Called(ctx, projectID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workspace.Collaboration), args.Error(1)
}

func (m *MockCollaborationRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]*workspace.Collaboration, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]*workspace.Collaboration), args.Error(1)
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByGoogleSub(ctx context.Context, googleSub string) (*identity.User, error) {
	args := m.Called(ctx, googleSub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ExistsByGoogleSub(ctx context.Context, googleSub string) (bool, error) {
	args := m.Called(ctx, googleSub)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// fakeFileStore is an in-memory FileStore for service tests
type fakeFileStore struct {
	mu    sync.Mutex
	files map[string]map[string][]byte // sandbox -> path -> content
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: make(map[string]map[string][]byte)}
}

func (f *fakeFileStore) ProjectDir(sandbox string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[sandbox]; !ok {
		f.files[sandbox] = make(map[string][]byte)
	}
	return "/workspace/" + sandbox, nil
}

func (f *fakeFileStore) ReadFile(sandbox, relPath string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[sandbox][relPath]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return data, nil
}

func (f *fakeFileStore) WriteFile(sandbox, relPath string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[sandbox]; !ok {
		f.files[sandbox] = make(map[string][]byte)
	}
	f.files[sandbox][relPath] = data
	return nil
}

func (f *fakeFileStore) DeleteFile(sandbox, relPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[sandbox][relPath]; !ok {
		return shared.ErrNotFound
	}
	delete(f.files[sandbox], relPath)
	return nil
}

func (f *fakeFileStore) DeleteProject(sandbox string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, sandbox)
	return nil
}

func (f *fakeFileStore) ListFiles(sandbox string) ([]FileEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []FileEntry
	for path, data := range f.files[sandbox] {
		entries = append(entries, FileEntry{Path: path, Size: int64(len(data))})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

func (f *fakeFileStore) Archive(sandbox string) ([]byte, error) {
	return []byte("zip:" + sandbox), nil
}

// fakeArchiveStore records uploads and hands out canned URLs
type fakeArchiveStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	uploads int
}

func newFakeArchiveStore() *fakeArchiveStore {
	return &fakeArchiveStore{objects: make(map[string][]byte)}
}

func (f *fakeArchiveStore) Upload(_ context.Context, key string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.uploads++
	return nil
}

func (f *fakeArchiveStore) GenerateDownloadURL(_ context.Context, key string, _ time.Duration) (string, time.Time, error) {
	return "https://storage.example.com/" + key, time.Now().Add(15 * time.Minute), nil
}

func (f *fakeArchiveStore) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeArchiveStore) ObjectExists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}
