package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
)

const (
	// DefaultSearchDebounce задаёт паузу ввода перед поиском.
	DefaultSearchDebounce = 300 * time.Millisecond

	minSuggestionQueryLen = 2
	maxSuggestions        = 5
)

type CatalogReader interface {
	GetCatalog(ctx context.Context) ([]domain.Product, error)
}

// Suggest возвращает до 5 товаров, у которых title или category содержат запрос.
// Запрос короче 2 символов после обрезки пробелов даёт пустой результат.
func Suggest(ctx context.Context, catalog CatalogReader, query string) ([]domain.Product, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) < minSuggestionQueryLen {
		return []domain.Product{}, nil
	}

	products, err := catalog.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}

	return matchSuggestions(products, q), nil
}

func matchSuggestions(products []domain.Product, q string) []domain.Product {
	out := make([]domain.Product, 0, maxSuggestions)
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Category), q) {
			out = append(out, p)
			if len(out) == maxSuggestions {
				break
			}
		}
	}

	return out
}

// Suggester выполняет поиск с задержкой после последнего ввода.
// Результат доставляется, только если после его запроса не было нового ввода.
type Suggester struct {
	catalog CatalogReader
	delay   time.Duration
	deliver func(SuggestionResult)

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	timer  *time.Timer
	seq    uint64
	closed bool
}

// NewSuggester создаёт поиск с задержкой. deliver вызывается из отдельной горутины.
func NewSuggester(catalog CatalogReader, delay time.Duration, deliver func(SuggestionResult)) *Suggester {
	ctx, cancel := context.WithCancel(context.Background())
	return &Suggester{
		catalog: catalog,
		delay:   delay,
		deliver: deliver,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Type регистрирует новый ввод и перезапускает таймер.
func (s *Suggester) Type(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.seq++
	seq := s.seq
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.lookup(seq, query)
	})
}

func (s *Suggester) lookup(seq uint64, query string) {
	products, err := Suggest(s.ctx, s.catalog, query)

	s.mu.Lock()
	stale := s.closed || seq != s.seq
	s.mu.Unlock()
	if stale {
		return
	}

	s.deliver(SuggestionResult{
		Query:    query,
		Products: products,
		Err:      err,
	})
}

// Close отменяет ожидающий поиск. После Close результаты не доставляются.
func (s *Suggester) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.cancel()
}
