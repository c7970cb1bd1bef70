package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourcesCfg(primary, secondary string, retries int) *cfg.SourcesCfg {
	return &cfg.SourcesCfg{
		PrimaryURL:   primary,
		SecondaryURL: secondary,
		Limit:        100,
		Timeout:      time.Second,
		MaxRetries:   retries,
	}
}

func TestFakeStoreSource_FetchProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":1,"title":"Backpack","price":109.95,"description":"bag","category":"men's clothing",
			 "image":"https://fakestoreapi.com/img/1.jpg","rating":{"rate":3.9,"count":120}}
		]`))
	}))
	defer srv.Close()

	src := NewFakeStoreSource(sourcesCfg(srv.URL, "", 1), srv.Client(), logger.NewNop())
	products, err := src.FetchProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, domain.Product{
		ID:          1,
		Title:       "Backpack",
		Price:       10995,
		Description: "bag",
		Category:    "men's clothing",
		Image:       "https://fakestoreapi.com/img/1.jpg",
		Rating:      domain.Rating{Rate: 3.9, Count: 120},
	}, products[0])
	assert.Equal(t, "fakestore", src.Name())
}

func TestDummyJSONSource_FetchProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		_, _ = w.Write([]byte(`{"products":[
			{"id":7,"title":"Mascara","price":9.99,"description":"d","category":"beauty",
			 "thumbnail":"https://cdn/7/thumb.png","images":["https://cdn/7/1.png"],"rating":4.94,"stock":5},
			{"id":8,"title":"Lipstick","price":12.5,"description":"d","category":"beauty",
			 "thumbnail":"","images":["https://cdn/8/1.png"],"rating":2.5,"stock":0},
			{"id":9,"title":"Nothing","price":1,"category":"misc","images":[]}
		],"total":3}`))
	}))
	defer srv.Close()

	src := NewDummyJSONSource(sourcesCfg("", srv.URL, 1), srv.Client(), logger.NewNop())
	products, err := src.FetchProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 3)
	assert.Equal(t, int64(7), products[0].ID)
	assert.Equal(t, int64(999), products[0].Price)
	assert.Equal(t, "https://cdn/7/thumb.png", products[0].Image)
	assert.Equal(t, domain.Rating{Rate: 4.94, Count: 5}, products[0].Rating)
	assert.Equal(t, "https://cdn/8/1.png", products[1].Image)
	assert.Equal(t, int64(1250), products[1].Price)
	assert.Empty(t, products[2].Image)
}

func TestSource_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	src := NewFakeStoreSource(sourcesCfg(srv.URL, "", 1), srv.Client(), logger.NewNop())
	_, err := src.FetchProducts(context.Background())
	assert.ErrorIs(t, err, e.ErrSourceStatus)
}

func TestSource_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products": "nope"}`))
	}))
	defer srv.Close()

	src := NewDummyJSONSource(sourcesCfg("", srv.URL, 1), srv.Client(), logger.NewNop())
	_, err := src.FetchProducts(context.Background())
	assert.Error(t, err)
}

func TestSource_Retries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"id":1,"title":"a","price":1}]`))
	}))
	defer srv.Close()

	src := NewFakeStoreSource(sourcesCfg(srv.URL, "", 3), srv.Client(), logger.NewNop())
	products, err := src.FetchProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSource_RetriesOnlyTransientStatuses(t *testing.T) {
	tests := []struct {
		status    int
		wantCalls int32
	}{
		{http.StatusBadRequest, 1},
		{http.StatusNotFound, 1},
		{http.StatusForbidden, 1},
		{http.StatusTooManyRequests, 3},
		{http.StatusInternalServerError, 3},
		{http.StatusBadGateway, 3},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			src := NewFakeStoreSource(sourcesCfg(srv.URL, "", 3), srv.Client(), logger.NewNop())
			_, err := src.FetchProducts(context.Background())
			assert.ErrorIs(t, err, e.ErrSourceStatus)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestSource_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	src := NewFakeStoreSource(sourcesCfg(srv.URL, "", 1), srv.Client(), logger.NewNop())
	_, err := src.FetchProducts(ctx)
	assert.Error(t, err)
}

func TestPriceToCents(t *testing.T) {
	assert.Equal(t, int64(10995), priceToCents(109.95))
	assert.Equal(t, int64(1), priceToCents(0.005))
	assert.Equal(t, int64(2200), priceToCents(22))
	assert.Equal(t, int64(56), priceToCents(0.555))
}
