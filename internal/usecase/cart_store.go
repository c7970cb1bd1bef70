package usecase

import (
	"context"
	"sync"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

// CartAction — действие над корзиной.
type CartAction interface {
	cartAction()
}

type (
	// AddToCart добавляет товар или увеличивает количество на Quantity. Quantity < 1 означает 1.
	AddToCart struct {
		Product  domain.Product
		Quantity int
	}
	// RemoveFromCart удаляет строку. Отсутствующий id не ошибка.
	RemoveFromCart struct{ ID int64 }
	// UpdateQuantity задаёт количество. Значение <= 0 удаляет строку.
	UpdateQuantity struct {
		ID       int64
		Quantity int
	}
	ClearCart struct{}
	// LoadCart заменяет состояние целиком. Не сохраняется в хранилище.
	LoadCart struct{ State domain.CartState }
)

func (AddToCart) cartAction()      {}
func (RemoveFromCart) cartAction() {}
func (UpdateQuantity) cartAction() {}
func (ClearCart) cartAction()      {}
func (LoadCart) cartAction()       {}

// ReduceCart — чистая функция перехода состояния корзины.
// Итоги всегда пересчитываются по строкам, входное состояние не изменяется.
func ReduceCart(state domain.CartState, action CartAction) domain.CartState {
	return domain.NewCartState(reduceLines(state.Lines, action))
}

func reduceLines(lines []domain.CartLine, action CartAction) []domain.CartLine {
	switch a := action.(type) {
	case AddToCart:
		quantity := max(1, a.Quantity)
		next := domain.CloneLines(lines)
		for i := range next {
			if next[i].ID == a.Product.ID {
				next[i].Quantity += quantity
				return next
			}
		}
		return append(next, domain.CartLine{Product: a.Product, Quantity: quantity})

	case RemoveFromCart:
		next := make([]domain.CartLine, 0, len(lines))
		for _, line := range lines {
			if line.ID != a.ID {
				next = append(next, line)
			}
		}
		return next

	case UpdateQuantity:
		if a.Quantity <= 0 {
			return reduceLines(lines, RemoveFromCart{ID: a.ID})
		}
		next := domain.CloneLines(lines)
		for i := range next {
			if next[i].ID == a.ID {
				next[i].Quantity = a.Quantity
			}
		}
		return next

	case ClearCart:
		return nil

	case LoadCart:
		next := make([]domain.CartLine, 0, len(a.State.Lines))
		for _, line := range a.State.Lines {
			if line.Quantity >= 1 {
				next = append(next, line)
			}
		}
		return next

	default:
		return domain.CloneLines(lines)
	}
}

// CartStore хранит текущую корзину и сохраняет её после каждого действия, кроме LoadCart.
// Ошибка сохранения не откатывает состояние: в памяти корзина остаётся актуальной.
type CartStore struct {
	store  KeyValueStore
	logger logger.Logger

	mu         sync.Mutex
	state      domain.CartState
	persistErr error
}

func NewCartStore(store KeyValueStore, logger logger.Logger) *CartStore {
	return &CartStore{
		store:  store,
		logger: logger,
		state:  domain.EmptyCart(),
	}
}

// Dispatch применяет действие и возвращает новое состояние.
func (c *CartStore) Dispatch(ctx context.Context, action CartAction) domain.CartState {
	const op = "CartStore.Dispatch"

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = ReduceCart(c.state, action)
	if _, isLoad := action.(LoadCart); !isLoad {
		c.persistErr = saveJSON(ctx, c.store, CartKey, c.state)
		if c.persistErr != nil {
			c.logger.Warnf("Failed to persist cart: %v", e.Wrap(op, c.persistErr))
		}
	}

	return cloneCart(c.state)
}

// Hydrate восстанавливает корзину из хранилища. Повреждённые данные дают пустую корзину.
func (c *CartStore) Hydrate(ctx context.Context) {
	const op = "CartStore.Hydrate"

	var stored domain.CartState
	ok, err := loadJSON(ctx, c.store, CartKey, &stored)
	if err != nil {
		c.logger.Warnf("Failed to load cart, starting empty: %v", e.Wrap(op, err))
		return
	}
	if !ok {
		return
	}

	c.Dispatch(ctx, LoadCart{State: stored})
}

// State возвращает копию текущего состояния.
func (c *CartStore) State() domain.CartState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return cloneCart(c.state)
}

// PersistErr возвращает ошибку последнего сохранения или nil.
func (c *CartStore) PersistErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.persistErr
}

func (c *CartStore) Add(ctx context.Context, product domain.Product) domain.CartState {
	return c.Dispatch(ctx, AddToCart{Product: product, Quantity: 1})
}

// AddQuantity добавляет quantity единиц товара одним действием.
func (c *CartStore) AddQuantity(ctx context.Context, product domain.Product, quantity int) domain.CartState {
	return c.Dispatch(ctx, AddToCart{Product: product, Quantity: quantity})
}

func (c *CartStore) Remove(ctx context.Context, id int64) domain.CartState {
	return c.Dispatch(ctx, RemoveFromCart{ID: id})
}

func (c *CartStore) SetQuantity(ctx context.Context, id int64, quantity int) domain.CartState {
	return c.Dispatch(ctx, UpdateQuantity{ID: id, Quantity: quantity})
}

func (c *CartStore) Clear(ctx context.Context) domain.CartState {
	return c.Dispatch(ctx, ClearCart{})
}

func (c *CartStore) Load(ctx context.Context, state domain.CartState) domain.CartState {
	return c.Dispatch(ctx, LoadCart{State: state})
}

func cloneCart(state domain.CartState) domain.CartState {
	return domain.NewCartState(domain.CloneLines(state.Lines))
}
