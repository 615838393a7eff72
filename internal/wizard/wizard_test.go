package wizard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avtomir/autoservice-system/internal/catalog"
	"github.com/avtomir/autoservice-system/internal/kv"
	"github.com/avtomir/autoservice-system/internal/model"
	"github.com/avtomir/autoservice-system/internal/storage"
)

const testUser = "ivan@example.com"

// service-2 «Диагностика» не требует запчастей, service-3 «Ремонт подвески» требует.
const (
	serviceNoParts   = "service-2"
	serviceWithParts = "service-3"
)

func newTestEnv(t *testing.T) (*storage.Account, *storage.Cart) {
	t.Helper()
	store := kv.NewMemory()
	return storage.NewAccount(store), storage.NewCart(context.Background(), store)
}

func TestWizardPartsFlow(t *testing.T) {
	ctx := context.Background()
	accounts, cart := newTestEnv(t)

	car, err := accounts.AddCar(ctx, "А123ВЕ777", "Toyota Camry", testUser)
	require.NoError(t, err)

	w := New(testUser, accounts, cart)
	require.Equal(t, StepService, w.State().Step)

	require.NoError(t, w.SelectService(serviceWithParts))
	require.Equal(t, StepCar, w.State().Step)

	require.NoError(t, w.SelectCar(ctx, car.ID))
	require.Equal(t, StepParts, w.State().Step)

	require.NoError(t, w.AddPartFromCatalog("part-1"))
	require.Len(t, w.State().Parts, 1)

	// Уменьшение количества ниже единицы убирает запчасть из заявки.
	require.NoError(t, w.UpdatePartQuantity("part-1", 0))
	assert.Empty(t, w.State().Parts)
}

func TestWizardNoPartsServiceCommitsImmediately(t *testing.T) {
	ctx := context.Background()
	accounts, cart := newTestEnv(t)

	car, err := accounts.AddCar(ctx, "А123ВЕ777", "Toyota Camry", testUser)
	require.NoError(t, err)

	w := New(testUser, accounts, cart)
	require.NoError(t, w.SelectService(serviceNoParts))
	require.NoError(t, w.SelectCar(ctx, car.ID))

	state := w.State()
	require.Equal(t, StepDone, state.Step)
	require.NotNil(t, state.Record)
	assert.Equal(t, "Диагностика", state.Record.Description)
	assert.Equal(t, 2000, state.Record.Amount)
	assert.Equal(t, car.ID, state.Record.CarID)

	history := accounts.RepairHistory(ctx, testUser)
	require.Len(t, history, 1)
	assert.Equal(t, state.Record.ID, history[0].ID)
}

func TestWizardSubmitAfterParts(t *testing.T) {
	ctx := context.Background()
	accounts, cart := newTestEnv(t)

	car, err := accounts.AddCar(ctx, "А123ВЕ777", "Toyota Camry", testUser)
	require.NoError(t, err)

	w := New(testUser, accounts, cart)
	require.NoError(t, w.SelectService(serviceWithParts))
	require.NoError(t, w.SelectCar(ctx, car.ID))
	require.NoError(t, w.AddPartFromCatalog("part-2"))

	record, err := w.Submit(ctx)
	require.NoError(t, err)

	svc, _ := catalog.ServiceByID(serviceWithParts)
	assert.Equal(t, svc.Name, record.Description)
	// Запчасти в сумму записи не входят: учитывается только стоимость услуги.
	assert.Equal(t, svc.Price, record.Amount)
	assert.Equal(t, StepDone, w.State().Step)
}

func TestWizardCreateAndSelectCar(t *testing.T) {
	ctx := context.Background()
	accounts, cart := newTestEnv(t)

	w := New(testUser, accounts, cart)
	require.NoError(t, w.SelectService(serviceWithParts))

	require.NoError(t, w.CreateAndSelectCar(ctx, "а 123 ве 777", "Toyota Camry"))

	state := w.State()
	assert.Equal(t, StepParts, state.Step)

	cars := accounts.Cars(ctx, testUser)
	require.Len(t, cars, 1)
	assert.Equal(t, "А123ВЕ777", cars[0].PlateNumber)
	assert.Equal(t, cars[0].ID, state.CarID)
}

func TestWizardCreateAndSelectCarInvalidPlate(t *testing.T) {
	ctx := context.Background()
	accounts, cart := newTestEnv(t)

	w := New(testUser, accounts, cart)
	require.NoError(t, w.SelectService(serviceWithParts))

	err := w.CreateAndSelectCar(ctx, "123АБВ", "Toyota Camry")
	require.ErrorIs(t, err, ErrInvalidPlate)

	// Некорректный номер ничего не меняет: ни в заявке, ни в кабинете.
	assert.Equal(t, StepCar, w.State().Step)
	assert.Empty(t, accounts.Cars(ctx, testUser))
}

func TestWizardCreateAndSelectCarNoPartsService(t *testing.T) {
	ctx := context.Background()
	accounts, cart := newTestEnv(t)

	w := New(testUser, accounts, cart)
	require.NoError(t, w.SelectService(serviceNoParts))
	require.NoError(t, w.CreateAndSelectCar(ctx, "А123ВЕ777", "Toyota Camry"))

	state := w.State()
	require.Equal(t, StepDone, state.Step)
	require.NotNil(t, state.Record)
}

func TestWizardCartPartsCopiedNotMoved(t *testing.T) {
	ctx := context.Background()
	accounts, cart := newTestEnv(t)

	part, ok := catalog.PartByID("part-1")
	require.True(t, ok)
	require.NoError(t, cart.AddItem(ctx, part, 2))

	car, err := accounts.AddCar(ctx, "А123ВЕ777", "Toyota Camry", testUser)
	require.NoError(t, err)

	w := New(testUser, accounts, cart)
	require.NoError(t, w.SelectService(serviceWithParts))
	require.NoError(t, w.SelectCar(ctx, car.ID))

	require.NoError(t, w.AddPartFromCart("part-1"))

	state := w.State()
	require.Len(t, state.Parts, 1)
	assert.Equal(t, 2, state.Parts[0].Quantity)
	assert.Equal(t, model.PartSourceCart, state.Parts[0].Source)

	// Корзина не изменилась: позиция копируется, а не переносится.
	require.Len(t, cart.Items(), 1)
	assert.Equal(t, 2, cart.Items()[0].Quantity)

	// Повторное добавление увеличивает количество в заявке, а не дублирует позицию.
	require.NoError(t, w.AddPartFromCart("part-1"))
	state = w.State()
	require.Len(t, state.Parts, 1)
	assert.Equal(t, 3, state.Parts[0].Quantity)
}

func TestWizardUserPartHasZeroPrice(t *testing.T) {
	ctx := context.Background()
	accounts, cart := newTestEnv(t)

	car, err := accounts.AddCar(ctx, "А123ВЕ777", "Toyota Camry", testUser)
	require.NoError(t, err)

	w := New(testUser, accounts, cart)
	require.NoError(t, w.SelectService(serviceWithParts))
	require.NoError(t, w.SelectCar(ctx, car.ID))

	require.NoError(t, w.AddUserPart())
	require.NoError(t, w.AddUserPart())

	state := w.State()
	// У каждой своей запчасти собственный id, поэтому они не сливаются.
	require.Len(t, state.Parts, 2)
	for _, p := range state.Parts {
		assert.Equal(t, "0 ₽", p.Price)
		assert.Equal(t, model.PartSourceUser, p.Source)
	}
}

func TestWizardBackDiscardsState(t *testing.T) {
	ctx := context.Background()
	accounts, cart := newTestEnv(t)

	car, err := accounts.AddCar(ctx, "А123ВЕ777", "Toyota Camry", testUser)
	require.NoError(t, err)

	w := New(testUser, accounts, cart)
	require.NoError(t, w.SelectService(serviceWithParts))
	require.NoError(t, w.SelectCar(ctx, car.ID))
	require.NoError(t, w.AddPartFromCatalog("part-1"))

	require.NoError(t, w.Back())
	state := w.State()
	assert.Equal(t, StepCar, state.Step)
	assert.Empty(t, state.Parts)

	require.NoError(t, w.Back())
	state = w.State()
	assert.Equal(t, StepService, state.Step)
	assert.Nil(t, state.Service)

	require.ErrorIs(t, w.Back(), ErrWrongStep)
}

func TestWizardSubmitWithoutCarBlocked(t *testing.T) {
	ctx := context.Background()
	accounts, cart := newTestEnv(t)

	w := New(testUser, accounts, cart)
	require.NoError(t, w.SelectService(serviceWithParts))

	_, err := w.Submit(ctx)
	require.ErrorIs(t, err, ErrIncomplete)
	assert.Equal(t, StepCar, w.State().Step)
	assert.Empty(t, accounts.RepairHistory(ctx, testUser))
}

func TestWizardUnknownIDs(t *testing.T) {
	ctx := context.Background()
	accounts, cart := newTestEnv(t)

	w := New(testUser, accounts, cart)
	require.ErrorIs(t, w.SelectService("service-999"), ErrUnknownService)

	require.NoError(t, w.SelectService(serviceWithParts))
	require.ErrorIs(t, w.SelectCar(ctx, "ghost"), ErrUnknownCar)
}

func TestWizardStepGuards(t *testing.T) {
	ctx := context.Background()
	accounts, cart := newTestEnv(t)

	w := New(testUser, accounts, cart)

	require.ErrorIs(t, w.SelectCar(ctx, "any"), ErrWrongStep)
	require.ErrorIs(t, w.AddPartFromCatalog("part-1"), ErrWrongStep)
	require.ErrorIs(t, w.AddUserPart(), ErrWrongStep)
}

func TestManagerSessions(t *testing.T) {
	accounts, cart := newTestEnv(t)
	m := NewManager(accounts, cart)

	w := m.Start(testUser)

	got, ok := m.Get(w.ID(), testUser)
	require.True(t, ok)
	assert.Same(t, w, got)

	// Чужую заявку получить нельзя.
	_, ok = m.Get(w.ID(), "anna@example.com")
	assert.False(t, ok)

	// Каждый запуск создаёт новую заявку с чистым состоянием.
	w2 := m.Start(testUser)
	assert.NotEqual(t, w.ID(), w2.ID())
	assert.Equal(t, StepService, w2.State().Step)

	m.Drop(w.ID())
	_, ok = m.Get(w.ID(), testUser)
	assert.False(t, ok)
}
