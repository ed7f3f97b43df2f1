package mocks

import (
	"context"
	"io"
	"time"

	"github.com/brettbedarf/areafs"
	"github.com/stretchr/testify/mock"
)

// MockArea implements areafs.Area for testing across packages
type MockArea struct {
	mock.Mock
}

func (m *MockArea) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockArea) ReadFile(ctx context.Context, path string) ([]byte, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockArea) Rename(ctx context.Context, oldPath, newPath string) error {
	return m.Called(ctx, oldPath, newPath).Error(0)
}

func (m *MockArea) Copy(ctx context.Context, oldPath, newPath string) error {
	return m.Called(ctx, oldPath, newPath).Error(0)
}

func (m *MockArea) Update(ctx context.Context, dir, base string, content []byte, f *areafs.File) error {
	return m.Called(ctx, dir, base, content, f).Error(0)
}

func (m *MockArea) Delete(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *MockArea) URL(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

func (m *MockArea) Permissions(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

func (m *MockArea) Time(ctx context.Context, path string, kind areafs.TimeKind) (time.Time, error) {
	args := m.Called(ctx, path, kind)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockArea) Size(ctx context.Context, path string) (int64, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockArea) ResolvePath(raw string) (string, error) {
	args := m.Called(raw)
	// Handle function return types so tests can echo the input
	if fn, ok := args.Get(0).(func(string) string); ok {
		return fn(raw), args.Error(1)
	}
	return args.String(0), args.Error(1)
}

var _ areafs.Area = (*MockArea)(nil)
