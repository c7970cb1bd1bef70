package usecase

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// SecondaryIDOffset сдвигает идентификаторы второго источника,
// чтобы они не пересекались с первым.
const SecondaryIDOffset int64 = 1000

const catalogFlightKey = "catalog"

// catalogFetchTimeout ограничивает общую загрузку каталога, которая не зависит от отмены запросов ожидающих её клиентов.
const catalogFetchTimeout = 30 * time.Second

// CatalogUseCase объединяет товары двух внешних источников и локальные товары.
type CatalogUseCase struct {
	primary   ProductSource
	secondary ProductSource
	store     KeyValueStore
	images    ImagesInfra
	logger    logger.Logger

	flight singleflight.Group

	mu     sync.RWMutex
	local  []domain.Product
	remote []domain.Product // последний успешный снимок внешних источников
}

// NewCatalogUC создаёт каталог. images может быть nil: загрузка изображений тогда отключена.
func NewCatalogUC(
	primary ProductSource,
	secondary ProductSource,
	store KeyValueStore,
	images ImagesInfra,
	logger logger.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		primary:   primary,
		secondary: secondary,
		store:     store,
		images:    images,
		logger:    logger,
		local:     []domain.Product{},
	}
}

// GetCatalog загружает оба источника параллельно и возвращает
// товары первого источника, затем второго (со сдвигом id), затем локальные.
// Ошибка возвращается, только если недоступны оба источника.
func (c *CatalogUseCase) GetCatalog(ctx context.Context) ([]domain.Product, error) {
	const op = "CatalogUseCase.GetCatalog"

	ch := c.flight.DoChan(catalogFlightKey, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), catalogFetchTimeout)
		defer cancel()

		return c.fetchCatalog(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return nil, e.Wrap(op, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, e.Wrap(op, res.Err)
		}
		return slices.Clone(res.Val.([]domain.Product)), nil
	}
}

func (c *CatalogUseCase) fetchCatalog(ctx context.Context) ([]domain.Product, error) {
	var (
		g                        errgroup.Group
		primary, secondary       []domain.Product
		primaryErr, secondaryErr error
	)

	g.Go(func() error {
		primary, primaryErr = c.fetchSource(ctx, c.primary)
		return nil
	})
	g.Go(func() error {
		secondary, secondaryErr = c.fetchSource(ctx, c.secondary)
		return nil
	})
	_ = g.Wait()

	if primaryErr != nil && secondaryErr != nil {
		return nil, fmt.Errorf("%w: %v; %v", e.ErrCatalogUnavailable, primaryErr, secondaryErr)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	remote := make([]domain.Product, 0, len(primary)+len(secondary))
	remote = append(remote, primary...)
	remote = append(remote, RemapSecondary(secondary)...)
	c.remote = remote

	merged := make([]domain.Product, 0, len(remote)+len(c.local))
	merged = append(merged, remote...)
	merged = append(merged, c.local...)

	if collisions := FindIDCollisions(merged); len(collisions) > 0 {
		c.logger.Warnf("catalog contains duplicate product ids: %v", collisions)
	}

	return merged, nil
}

// fetchSource загружает один источник. Ошибка и паника источника не выходят за его пределы.
func (c *CatalogUseCase) fetchSource(ctx context.Context, src ProductSource) (products []domain.Product, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("source %s panicked: %v", src.Name(), r)
			products = nil
			c.logger.Errorf(err, "product source failed")
		}
	}()

	products, err = src.FetchProducts(ctx)
	if err != nil {
		c.logger.Warnf("product source %s unavailable: %v", src.Name(), err)
		return nil, err
	}

	return products, nil
}

// RemapSecondary возвращает копию товаров второго источника со сдвинутыми идентификаторами.
func RemapSecondary(products []domain.Product) []domain.Product {
	out := make([]domain.Product, len(products))
	for i, p := range products {
		p.ID += SecondaryIDOffset
		out[i] = p
	}

	return out
}

// FindIDCollisions возвращает отсортированный список идентификаторов, встречающихся более одного раза.
func FindIDCollisions(products []domain.Product) []int64 {
	seen := make(map[int64]int, len(products))
	for _, p := range products {
		seen[p.ID]++
	}

	var collisions []int64
	for id, n := range seen {
		if n > 1 {
			collisions = append(collisions, id)
		}
	}
	slices.Sort(collisions)

	return collisions
}

// GetProduct ищет товар среди локальных и последнего снимка внешних источников.
func (c *CatalogUseCase) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	const op = "CatalogUseCase.GetProduct"

	c.mu.RLock()
	p, ok := c.findLocked(id)
	loaded := c.remote != nil
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	if !loaded {
		catalog, err := c.GetCatalog(ctx)
		if err != nil {
			return domain.Product{}, e.Wrap(op, err)
		}
		for _, p := range catalog {
			if p.ID == id {
				return p, nil
			}
		}
	}

	return domain.Product{}, e.Wrap(op, e.ErrProductNotFound)
}

// ensureRemoteLoaded загружает каталог, если снимка внешних источников ещё нет.
func (c *CatalogUseCase) ensureRemoteLoaded(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.remote != nil
	c.mu.RUnlock()
	if loaded {
		return nil
	}

	_, err := c.GetCatalog(ctx)
	return err
}

func (c *CatalogUseCase) findLocked(id int64) (domain.Product, bool) {
	for _, p := range c.local {
		if p.ID == id {
			return p, true
		}
	}
	for _, p := range c.remote {
		if p.ID == id {
			return p, true
		}
	}

	return domain.Product{}, false
}

// AddLocalProduct создаёт локальный товар с id = max(все id) + 1 и нулевым рейтингом.
// Если внешние источники ещё не загружались, каталог загружается до выдачи id.
func (c *CatalogUseCase) AddLocalProduct(ctx context.Context, req *AddLocalProductReq) (domain.Product, error) {
	const op = "CatalogUseCase.AddLocalProduct"

	draft := req.Draft
	draft.Title = strings.TrimSpace(draft.Title)
	if err := validateDraft(draft); err != nil {
		return domain.Product{}, e.Wrap(op, err)
	}

	if req.Image != nil && c.images == nil {
		return domain.Product{}, e.Wrap(op, e.ErrImagesDisabled)
	}

	if err := c.ensureRemoteLoaded(ctx); err != nil {
		return domain.Product{}, e.Wrap(op, err)
	}

	var uploaded *UploadImageRes
	if req.Image != nil {
		res, err := c.images.UploadImage(ctx, NewUploadImageReq(draft.Title, *req.Image))
		if err != nil {
			return domain.Product{}, e.Wrap(op, err)
		}
		uploaded = res
		draft.Image = res.URL
	}

	c.mu.Lock()
	id := domain.MaxProductID(c.remote, c.local) + 1
	product := domain.NewProduct(id, draft)
	c.local = append(slices.Clone(c.local), product)
	snapshot := c.local
	c.mu.Unlock()

	if err := saveJSON(ctx, c.store, LocalProductsKey, snapshot); err != nil {
		c.logger.Warnf("Failed to persist local products: %v", e.Wrap(op, err))
	}

	if uploaded != nil {
		c.logger.Infof("local product %d created with image %s", product.ID, uploaded.Key)
	}

	return product, nil
}

// UpdateLocalProduct применяет патч к локальному товару. Товары внешних источников только для чтения.
func (c *CatalogUseCase) UpdateLocalProduct(ctx context.Context, id int64, patch domain.ProductPatch) (domain.Product, error) {
	const op = "CatalogUseCase.UpdateLocalProduct"

	c.mu.Lock()
	idx := slices.IndexFunc(c.local, func(p domain.Product) bool { return p.ID == id })
	if idx < 0 {
		err := c.notLocalErrLocked(id)
		c.mu.Unlock()
		return domain.Product{}, e.Wrap(op, err)
	}

	updated := c.local[idx].Apply(patch)
	updated.Title = strings.TrimSpace(updated.Title)
	if err := validateProduct(updated); err != nil {
		c.mu.Unlock()
		return domain.Product{}, e.Wrap(op, err)
	}

	local := slices.Clone(c.local)
	local[idx] = updated
	c.local = local
	c.mu.Unlock()

	if err := saveJSON(ctx, c.store, LocalProductsKey, local); err != nil {
		c.logger.Warnf("Failed to persist local products: %v", e.Wrap(op, err))
	}

	return updated, nil
}

// DeleteLocalProduct удаляет локальный товар.
func (c *CatalogUseCase) DeleteLocalProduct(ctx context.Context, id int64) error {
	const op = "CatalogUseCase.DeleteLocalProduct"

	c.mu.Lock()
	idx := slices.IndexFunc(c.local, func(p domain.Product) bool { return p.ID == id })
	if idx < 0 {
		err := c.notLocalErrLocked(id)
		c.mu.Unlock()
		return e.Wrap(op, err)
	}

	removed := c.local[idx]
	local := slices.Delete(slices.Clone(c.local), idx, idx+1)
	c.local = local
	c.mu.Unlock()

	if c.images != nil && removed.Image != "" {
		c.images.CleanupImages([]string{removed.Image})
	}

	if err := saveJSON(ctx, c.store, LocalProductsKey, local); err != nil {
		c.logger.Warnf("Failed to persist local products: %v", e.Wrap(op, err))
	}

	return nil
}

func (c *CatalogUseCase) notLocalErrLocked(id int64) error {
	for _, p := range c.remote {
		if p.ID == id {
			return e.ErrRemoteProductReadOnly
		}
	}

	return e.ErrProductNotFound
}

// LocalProducts возвращает копию локальных товаров.
func (c *CatalogUseCase) LocalProducts() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.local)
}

// LoadLocalProducts восстанавливает локальные товары из хранилища.
// Повреждённые данные игнорируются: набор остаётся пустым.
func (c *CatalogUseCase) LoadLocalProducts(ctx context.Context) {
	const op = "CatalogUseCase.LoadLocalProducts"

	var products []domain.Product
	ok, err := loadJSON(ctx, c.store, LocalProductsKey, &products)
	if err != nil {
		c.logger.Warnf("Failed to load local products, starting empty: %v", e.Wrap(op, err))
		return
	}
	if !ok || products == nil {
		return
	}

	c.mu.Lock()
	c.local = products
	c.mu.Unlock()
}

// Categories возвращает уникальные непустые категории в порядке первого появления.
func Categories(products []domain.Product) []string {
	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}

	return categories
}

// PriceBounds возвращает границы цен, округлённые до целых единиц валюты:
// минимум вниз, максимум вверх. false для пустого списка.
func PriceBounds(products []domain.Product) (domain.PriceRange, bool) {
	if len(products) == 0 {
		return domain.PriceRange{}, false
	}

	minPrice, maxPrice := products[0].Price, products[0].Price
	for _, p := range products[1:] {
		minPrice = min(minPrice, p.Price)
		maxPrice = max(maxPrice, p.Price)
	}

	return domain.PriceRange{
		Min: floorToUnit(minPrice),
		Max: ceilToUnit(maxPrice),
	}, true
}

const centsPerUnit = 100

func floorToUnit(cents int64) int64 {
	q := cents / centsPerUnit
	if cents%centsPerUnit < 0 {
		q--
	}
	return q * centsPerUnit
}

func ceilToUnit(cents int64) int64 {
	q := cents / centsPerUnit
	if cents%centsPerUnit > 0 {
		q++
	}
	return q * centsPerUnit
}

func validateDraft(draft domain.ProductDraft) error {
	return validateProduct(domain.NewProduct(0, draft))
}

func validateProduct(p domain.Product) error {
	if p.Title == "" {
		return e.ErrProductTitleRequired
	}
	if p.Price <= 0 {
		return e.ErrPriceMustBePositive
	}
	if p.Image != "" {
		u, err := url.ParseRequestURI(p.Image)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return e.ErrInvalidImageURL
		}
	}

	return nil
}
