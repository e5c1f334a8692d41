package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rmarin/tablero/internal/domain"
)

// fakeStorage implements domain.Storage against in-memory fixtures keyed by
// the exact query string the code under test builds.
type fakeStorage struct {
	mu sync.Mutex

	searches    map[string][]domain.Entry
	searchErr   map[string]error
	files       map[string][]byte
	downloadErr map[string]error

	uploads     map[string][][]byte
	uploadErr   error
	uploadLimit int // uploads beyond this count fail with uploadErr; 0 = no limit

	created []domain.FolderHandle

	searchCalls int
	onSearch    func(query string)
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		searches:    make(map[string][]domain.Entry),
		searchErr:   make(map[string]error),
		files:       make(map[string][]byte),
		downloadErr: make(map[string]error),
		uploads:     make(map[string][][]byte),
	}
}

func (f *fakeStorage) Search(ctx context.Context, query, fields string) ([]domain.Entry, error) {
	f.mu.Lock()
	f.searchCalls++
	hook := f.onSearch
	err := f.searchErr[query]
	entries := f.searches[query]
	f.mu.Unlock()

	if hook != nil {
		hook(query)
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (f *fakeStorage) Download(ctx context.Context, fileID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.downloadErr[fileID]; err != nil {
		return nil, err
	}
	data, ok := f.files[fileID]
	if !ok {
		return nil, fmt.Errorf("no fixture for file %q", fileID)
	}
	return data, nil
}

func (f *fakeStorage) UploadReplace(ctx context.Context, fileID string, content []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	uploaded := 0
	for _, versions := range f.uploads {
		uploaded += len(versions)
	}
	if f.uploadErr != nil && uploaded >= f.uploadLimit {
		return f.uploadErr
	}
	f.files[fileID] = content
	f.uploads[fileID] = append(f.uploads[fileID], content)
	return nil
}

func (f *fakeStorage) CreateFolder(ctx context.Context, name, parentID string) (domain.FolderHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	handle := domain.FolderHandle{
		ID:       fmt.Sprintf("created-%s-%d", name, len(f.created)+1),
		Name:     name,
		ParentID: parentID,
	}
	f.created = append(f.created, handle)
	return handle, nil
}

// lastUpload returns the most recent content uploaded for a file id
func (f *fakeStorage) lastUpload(fileID string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	versions := f.uploads[fileID]
	if len(versions) == 0 {
		return nil, false
	}
	return versions[len(versions)-1], true
}

func (f *fakeStorage) uploadCount(fileID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads[fileID])
}
