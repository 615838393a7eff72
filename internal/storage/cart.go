package storage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/avtomir/autoservice-system/internal/kv"
	"github.com/avtomir/autoservice-system/internal/model"
)

// Cart хранит корзину запчастей. Корзина анонимна: она живёт под одним
// фиксированным ключом и не привязана к пользователю.
type Cart struct {
	store kv.Store

	mu    sync.Mutex
	items []model.CartItem
}

// NewCart создаёт корзину и один раз загружает её содержимое из хранилища.
func NewCart(ctx context.Context, store kv.Store) *Cart {
	c := &Cart{store: store}

	raw, ok, err := store.Get(ctx, cartKey)
	if err != nil || !ok {
		return c
	}

	var items []model.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return c
	}
	c.items = items

	return c
}

// Items возвращает копию позиций корзины в порядке добавления.
func (c *Cart) Items() []model.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Count возвращает суммарное количество по всем позициям. Значение каждый
// раз пересчитывается и нигде не хранится отдельно.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	sum := 0
	for _, it := range c.items {
		sum += it.Quantity
	}
	return sum
}

// AddItem добавляет запчасть в корзину. Если позиция с таким id уже есть,
// её количество увеличивается; иначе позиция добавляется в конец.
func (c *Cart) AddItem(ctx context.Context, part model.Part, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == part.ID {
			c.items[i].Quantity += quantity
			return c.persist(ctx)
		}
	}

	c.items = append(c.items, model.CartItem{Part: part, Quantity: quantity})
	return c.persist(ctx)
}

// RemoveItem удаляет позицию по id запчасти. Отсутствие позиции не ошибка.
func (c *Cart) RemoveItem(ctx context.Context, partID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.removeLocked(ctx, partID)
}

// UpdateQuantity устанавливает точное количество для позиции. Количество
// меньше единицы эквивалентно удалению позиции.
func (c *Cart) UpdateQuantity(ctx context.Context, partID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity < 1 {
		return c.removeLocked(ctx, partID)
	}

	for i := range c.items {
		if c.items[i].ID == partID {
			c.items[i].Quantity = quantity
			return c.persist(ctx)
		}
	}
	return nil
}

// Clear опустошает корзину.
func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	return c.persist(ctx)
}

func (c *Cart) removeLocked(ctx context.Context, partID string) error {
	for i := range c.items {
		if c.items[i].ID == partID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return c.persist(ctx)
		}
	}
	return nil
}

func (c *Cart) persist(ctx context.Context) error {
	items := c.items
	if items == nil {
		items = []model.CartItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, cartKey, string(raw))
}
