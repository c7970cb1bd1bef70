package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/DRSN-tech/storefront/internal/domain"
)

var errStoreDown = errors.New("store down")

// fakeStore — in-memory KeyValueStore с возможностью отказа записи.
type fakeStore struct {
	mu      sync.Mutex
	data    map[string]string
	failSet bool
	sets    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (s *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[key]
	return v, ok, nil
}

func (s *fakeStore) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sets++
	if s.failSet {
		return errStoreDown
	}
	s.data[key] = value
	return nil
}

func (s *fakeStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

func (s *fakeStore) setCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sets
}

type fakeSource struct {
	name     string
	products []domain.Product
	err      error
	panics   bool
	calls    atomic.Int32
	release  chan struct{}
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.panics {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Product, len(f.products))
	copy(out, f.products)
	return out, nil
}

type fakeImages struct {
	uploads []*UploadImageReq
	cleaned []string
	err     error
}

func (f *fakeImages) UploadImage(_ context.Context, req *UploadImageReq) (*UploadImageRes, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.uploads = append(f.uploads, req)
	return NewUploadImageRes("products/img.png", "http://minio.local/images/products/img.png"), nil
}

func (f *fakeImages) CleanupImages(imageURLs []string) {
	f.cleaned = append(f.cleaned, imageURLs...)
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []domain.OutboxEvent
}

func (f *fakeOutbox) Create(_ context.Context, event domain.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutbox) GetPending(_ context.Context, _ int) ([]domain.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkAsProcessed(_ context.Context, _ string) error { return nil }

func (f *fakeOutbox) MarkAsFailed(_ context.Context, _ string) error { return nil }

type fakeEncoder struct{}

func (fakeEncoder) EncodeOrderPlaced(order domain.Order) ([]byte, error) {
	return []byte(order.ID), nil
}

func product(id int64, title string, price int64, category string) domain.Product {
	return domain.Product{ID: id, Title: title, Price: price, Category: category}
}
