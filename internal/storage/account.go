package storage

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avtomir/autoservice-system/internal/kv"
	"github.com/avtomir/autoservice-system/internal/model"
	"github.com/avtomir/autoservice-system/internal/validation"
)

// accountData — персистируемый набор данных кабинета одного пользователя.
// Набор всегда сохраняется целиком одной записью, частичных обновлений нет.
type accountData struct {
	Cars           []model.UserCar       `json:"cars"`
	RepairHistory  []model.RepairRecord  `json:"repairHistory"`
	PaymentMethods []model.PaymentMethod `json:"paymentMethods"`
}

// RepairEntry — данные новой записи истории ремонтов. Идентификатор и
// привязку к пользователю добавляет само хранилище.
type RepairEntry struct {
	Date        string
	Description string
	CarID       string
	Amount      int
}

// Account хранит данные личного кабинета: автомобили, историю ремонтов и
// способы оплаты. Данные загружаются лениво при смене активного пользователя.
// Все операции с пустым идентификатором пользователя молча ничего не делают.
type Account struct {
	store kv.Store

	mu     sync.Mutex
	userID string
	data   accountData
}

// NewAccount создаёт хранилище данных кабинета.
func NewAccount(store kv.Store) *Account {
	return &Account{store: store}
}

// switchUser делает userID активным, при необходимости перечитывая его набор
// данных. Пустой userID даёт пустой набор без обращения к хранилищу.
func (a *Account) switchUser(ctx context.Context, userID string) {
	if a.userID == userID && userID != "" {
		return
	}

	a.userID = userID
	a.data = accountData{}
	if userID == "" {
		return
	}

	raw, ok, err := a.store.Get(ctx, accountKey(userID))
	if err != nil || !ok {
		return
	}

	var data accountData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return
	}
	a.data = data
}

// Cars возвращает автомобили пользователя.
func (a *Account) Cars(ctx context.Context, userID string) []model.UserCar {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.switchUser(ctx, userID)
	out := make([]model.UserCar, len(a.data.Cars))
	copy(out, a.data.Cars)
	return out
}

// RepairHistory возвращает историю ремонтов пользователя, новые записи первыми.
func (a *Account) RepairHistory(ctx context.Context, userID string) []model.RepairRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.switchUser(ctx, userID)
	out := make([]model.RepairRecord, len(a.data.RepairHistory))
	copy(out, a.data.RepairHistory)
	return out
}

// PaymentMethods возвращает способы оплаты пользователя.
func (a *Account) PaymentMethods(ctx context.Context, userID string) []model.PaymentMethod {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.switchUser(ctx, userID)
	out := make([]model.PaymentMethod, len(a.data.PaymentMethods))
	copy(out, a.data.PaymentMethods)
	return out
}

// AddCar добавляет автомобиль пользователю. Гос. номер нормализуется
// (пробелы удаляются, буквы переводятся в верхний регистр) на каждом пути
// записи; нормализация идемпотентна.
func (a *Account) AddCar(ctx context.Context, plateNumber, carModel, userID string) (model.UserCar, error) {
	if userID == "" {
		return model.UserCar{}, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.switchUser(ctx, userID)

	car := model.UserCar{
		ID:          uuid.NewString(),
		PlateNumber: validation.NormalizePlate(plateNumber),
		Model:       carModel,
		UserID:      userID,
	}
	a.data.Cars = append(a.data.Cars, car)

	if err := a.persist(ctx); err != nil {
		return model.UserCar{}, err
	}
	return car, nil
}

// RemoveCar удаляет автомобиль и каскадно все записи истории ремонтов,
// ссылающиеся на него. Обе правки сохраняются одной записью. Отсутствие
// автомобиля не ошибка.
func (a *Account) RemoveCar(ctx context.Context, userID, id string) error {
	if userID == "" {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.switchUser(ctx, userID)

	cars := a.data.Cars[:0]
	removed := false
	for _, c := range a.data.Cars {
		if c.ID == id {
			removed = true
			continue
		}
		cars = append(cars, c)
	}
	if !removed {
		return nil
	}
	a.data.Cars = cars

	history := a.data.RepairHistory[:0]
	for _, r := range a.data.RepairHistory {
		if r.CarID == id {
			continue
		}
		history = append(history, r)
	}
	a.data.RepairHistory = history

	return a.persist(ctx)
}

// AddRepairRecord добавляет запись в начало истории ремонтов, присваивая ей
// новый идентификатор.
func (a *Account) AddRepairRecord(ctx context.Context, entry RepairEntry, userID string) (model.RepairRecord, error) {
	if userID == "" {
		return model.RepairRecord{}, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.switchUser(ctx, userID)

	date := entry.Date
	if date == "" {
		date = time.Now().Format(time.RFC3339)
	}

	rec := model.RepairRecord{
		ID:          uuid.NewString(),
		Date:        date,
		Description: entry.Description,
		CarID:       entry.CarID,
		Amount:      entry.Amount,
		UserID:      userID,
	}
	a.data.RepairHistory = append([]model.RepairRecord{rec}, a.data.RepairHistory...)

	if err := a.persist(ctx); err != nil {
		return model.RepairRecord{}, err
	}
	return rec, nil
}

// AddPaymentMethod добавляет способ оплаты. Самый первый способ пользователя
// становится способом по умолчанию; при последующих добавлениях флаг
// по умолчанию снимается со всех существующих, а новый способ добавляется
// без флага.
func (a *Account) AddPaymentMethod(ctx context.Context, methodType model.PaymentMethodType, title, userID, last4 string) (model.PaymentMethod, error) {
	if userID == "" {
		return model.PaymentMethod{}, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.switchUser(ctx, userID)

	isFirst := len(a.data.PaymentMethods) == 0
	for i := range a.data.PaymentMethods {
		a.data.PaymentMethods[i].IsDefault = false
	}

	method := model.PaymentMethod{
		ID:        uuid.NewString(),
		Type:      methodType,
		Title:     title,
		Last4:     last4,
		IsDefault: isFirst,
		UserID:    userID,
	}
	a.data.PaymentMethods = append(a.data.PaymentMethods, method)

	if err := a.persist(ctx); err != nil {
		return model.PaymentMethod{}, err
	}
	return method, nil
}

// SetDefaultPaymentMethod делает способ оплаты с указанным id способом
// по умолчанию, снимая флаг со всех остальных.
func (a *Account) SetDefaultPaymentMethod(ctx context.Context, userID, id string) error {
	if userID == "" {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.switchUser(ctx, userID)

	for i := range a.data.PaymentMethods {
		a.data.PaymentMethods[i].IsDefault = a.data.PaymentMethods[i].ID == id
	}

	return a.persist(ctx)
}

// RemovePaymentMethod удаляет способ оплаты. Если удалён способ по умолчанию,
// флаг не переназначается: допустимо состояние без способа по умолчанию.
// Отсутствие способа не ошибка.
func (a *Account) RemovePaymentMethod(ctx context.Context, userID, id string) error {
	if userID == "" {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.switchUser(ctx, userID)

	methods := a.data.PaymentMethods[:0]
	removed := false
	for _, m := range a.data.PaymentMethods {
		if m.ID == id {
			removed = true
			continue
		}
		methods = append(methods, m)
	}
	if !removed {
		return nil
	}
	a.data.PaymentMethods = methods

	return a.persist(ctx)
}

func (a *Account) persist(ctx context.Context) error {
	data := a.data
	if data.Cars == nil {
		data.Cars = []model.UserCar{}
	}
	if data.RepairHistory == nil {
		data.RepairHistory = []model.RepairRecord{}
	}
	if data.PaymentMethods == nil {
		data.PaymentMethods = []model.PaymentMethod{}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, accountKey(a.userID), string(raw))
}
