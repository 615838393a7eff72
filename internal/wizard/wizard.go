// Package wizard реализует пошаговое оформление заявки на ремонт:
// выбор услуги, выбор автомобиля и, если услуга требует запчастей,
// подбор запчастей. Состояние заявки живёт только в памяти; в хранилище
// попадает лишь итоговая запись истории ремонтов.
package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avtomir/autoservice-system/internal/catalog"
	"github.com/avtomir/autoservice-system/internal/model"
	"github.com/avtomir/autoservice-system/internal/storage"
	"github.com/avtomir/autoservice-system/internal/validation"
)

// Step описывает текущий шаг заявки.
type Step string

const (
	StepService Step = "service"
	StepCar     Step = "car"
	StepParts   Step = "parts"
	StepDone    Step = "done"
)

var (
	// ErrWrongStep возвращается, когда операция не относится к текущему шагу.
	ErrWrongStep = errors.New("operation not allowed at current step")
	// ErrUnknownService возвращается при выборе услуги с неизвестным id.
	ErrUnknownService = errors.New("unknown service")
	// ErrUnknownCar возвращается при выборе автомобиля, которого нет у пользователя.
	ErrUnknownCar = errors.New("unknown car")
	// ErrUnknownPart возвращается при добавлении запчасти с неизвестным id.
	ErrUnknownPart = errors.New("unknown part")
	// ErrInvalidPlate возвращается при добавлении автомобиля с некорректным гос. номером.
	ErrInvalidPlate = errors.New("invalid plate number")
	// ErrIncomplete возвращается при попытке оформить заявку без услуги или автомобиля.
	ErrIncomplete = errors.New("service and car must be selected")
)

// AccountStore описывает операции кабинета, используемые заявкой.
type AccountStore interface {
	Cars(ctx context.Context, userID string) []model.UserCar
	AddCar(ctx context.Context, plateNumber, carModel, userID string) (model.UserCar, error)
	AddRepairRecord(ctx context.Context, entry storage.RepairEntry, userID string) (model.RepairRecord, error)
}

// CartStore описывает доступ к корзине, используемый заявкой.
type CartStore interface {
	Items() []model.CartItem
}

// Wizard — одна заявка на ремонт. Экземпляр одноразовый: после оформления
// или отказа от заявки создаётся новый, без памяти о предыдущем.
type Wizard struct {
	id       string
	userID   string
	accounts AccountStore
	cart     CartStore

	mu      sync.Mutex
	step    Step
	service *model.Service
	carID   string
	parts   []model.SelectedPart
	record  *model.RepairRecord
}

// New создаёт заявку для указанного пользователя на шаге выбора услуги.
func New(userID string, accounts AccountStore, cart CartStore) *Wizard {
	return &Wizard{
		id:       uuid.NewString(),
		userID:   userID,
		accounts: accounts,
		cart:     cart,
		step:     StepService,
	}
}

// ID возвращает идентификатор заявки.
func (w *Wizard) ID() string { return w.id }

// UserID возвращает пользователя, оформляющего заявку.
func (w *Wizard) UserID() string { return w.userID }

// Snapshot — сериализуемое состояние заявки.
type Snapshot struct {
	ID      string               `json:"id"`
	Step    Step                 `json:"step"`
	Service *model.Service       `json:"service,omitempty"`
	CarID   string               `json:"carId,omitempty"`
	Parts   []model.SelectedPart `json:"parts"`
	Record  *model.RepairRecord  `json:"record,omitempty"`
}

// State возвращает снимок текущего состояния заявки.
func (w *Wizard) State() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := Snapshot{
		ID:    w.id,
		Step:  w.step,
		CarID: w.carID,
		Parts: make([]model.SelectedPart, len(w.parts)),
	}
	copy(snap.Parts, w.parts)
	if w.service != nil {
		svc := *w.service
		snap.Service = &svc
	}
	if w.record != nil {
		rec := *w.record
		snap.Record = &rec
	}
	return snap
}

// SelectService выбирает услугу, сбрасывает ранее выбранные запчасти и
// переводит заявку к выбору автомобиля.
func (w *Wizard) SelectService(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepService {
		return ErrWrongStep
	}

	svc, ok := catalog.ServiceByID(id)
	if !ok {
		return ErrUnknownService
	}

	w.service = &svc
	w.parts = nil
	w.step = StepCar
	return nil
}

// SelectCar выбирает автомобиль пользователя. Если услуга требует запчастей,
// заявка переходит к их подбору, иначе оформляется сразу.
func (w *Wizard) SelectCar(ctx context.Context, carID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepCar {
		return ErrWrongStep
	}

	found := false
	for _, c := range w.accounts.Cars(ctx, w.userID) {
		if c.ID == carID {
			found = true
			break
		}
	}
	if !found {
		return ErrUnknownCar
	}

	w.carID = carID
	return w.advanceOrCommit(ctx)
}

// CreateAndSelectCar добавляет автомобиль через кабинет и сразу выбирает его.
// Гос. номер проверяется до обращения к хранилищу; при некорректном номере
// ничего не изменяется. Созданный автомобиль перечитывается из кабинета по
// паре номер+модель, поэтому ждать асинхронного обновления не требуется.
func (w *Wizard) CreateAndSelectCar(ctx context.Context, plateNumber, carModel string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepCar {
		return ErrWrongStep
	}

	plate := validation.NormalizePlate(plateNumber)
	if carModel == "" || !validation.IsValidPlate(plate) {
		return ErrInvalidPlate
	}

	if _, err := w.accounts.AddCar(ctx, plate, carModel, w.userID); err != nil {
		return err
	}

	for _, c := range w.accounts.Cars(ctx, w.userID) {
		if c.PlateNumber == plate && c.Model == carModel {
			w.carID = c.ID
			return w.advanceOrCommit(ctx)
		}
	}
	return ErrUnknownCar
}

func (w *Wizard) advanceOrCommit(ctx context.Context) error {
	if w.service != nil && w.service.RequiresParts {
		w.step = StepParts
		return nil
	}
	return w.commit(ctx)
}

// AddPartFromCart добавляет запчасть из корзины. Позиция копируется:
// из самой корзины ничего не удаляется. Повторное добавление увеличивает
// количество в заявке на единицу.
func (w *Wizard) AddPartFromCart(partID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepParts {
		return ErrWrongStep
	}

	if w.bumpExisting(partID) {
		return nil
	}

	for _, it := range w.cart.Items() {
		if it.ID == partID {
			w.parts = append(w.parts, model.SelectedPart{
				PartID:   it.ID,
				Name:     it.Name,
				Brand:    it.Brand,
				Price:    it.Price,
				Quantity: it.Quantity,
				Source:   model.PartSourceCart,
			})
			return nil
		}
	}
	return ErrUnknownPart
}

// AddPartFromCatalog добавляет запчасть из каталога. Повторное добавление
// увеличивает количество в заявке на единицу.
func (w *Wizard) AddPartFromCatalog(partID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepParts {
		return ErrWrongStep
	}

	if w.bumpExisting(partID) {
		return nil
	}

	part, ok := catalog.PartByID(partID)
	if !ok {
		return ErrUnknownPart
	}

	w.parts = append(w.parts, model.SelectedPart{
		PartID:   part.ID,
		Name:     part.Name,
		Brand:    part.Brand,
		Price:    part.Price,
		Quantity: 1,
		Source:   model.PartSourceCatalog,
	})
	return nil
}

// AddUserPart добавляет запчасть, которую пользователь приносит с собой.
// Такая запчасть имеет нулевую цену и сгенерированный идентификатор.
func (w *Wizard) AddUserPart() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepParts {
		return ErrWrongStep
	}

	w.parts = append(w.parts, model.SelectedPart{
		PartID:   "user-part-" + uuid.NewString(),
		Name:     "Запчасть пользователя",
		Brand:    "Своя",
		Price:    "0 ₽",
		Quantity: 1,
		Source:   model.PartSourceUser,
	})
	return nil
}

func (w *Wizard) bumpExisting(partID string) bool {
	for i := range w.parts {
		if w.parts[i].PartID == partID {
			w.parts[i].Quantity++
			return true
		}
	}
	return false
}

// UpdatePartQuantity устанавливает точное количество выбранной запчасти.
// Количество меньше единицы удаляет запчасть из заявки.
func (w *Wizard) UpdatePartQuantity(partID string, quantity int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepParts {
		return ErrWrongStep
	}

	if quantity < 1 {
		w.removePartLocked(partID)
		return nil
	}

	for i := range w.parts {
		if w.parts[i].PartID == partID {
			w.parts[i].Quantity = quantity
			return nil
		}
	}
	return nil
}

// RemovePart удаляет запчасть из заявки. Отсутствие запчасти не ошибка.
func (w *Wizard) RemovePart(partID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepParts {
		return ErrWrongStep
	}

	w.removePartLocked(partID)
	return nil
}

func (w *Wizard) removePartLocked(partID string) {
	for i := range w.parts {
		if w.parts[i].PartID == partID {
			w.parts = append(w.parts[:i], w.parts[i+1:]...)
			return
		}
	}
}

// Back возвращает заявку на предыдущий шаг. Возврат с подбора запчастей
// сбрасывает все выбранные запчасти, возврат с выбора автомобиля сбрасывает
// услугу.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.step {
	case StepParts:
		w.parts = nil
		w.step = StepCar
		return nil
	case StepCar:
		w.service = nil
		w.carID = ""
		w.step = StepService
		return nil
	default:
		return ErrWrongStep
	}
}

// Submit оформляет заявку: добавляет запись в историю ремонтов и завершает
// заявку. Без выбранных услуги и автомобиля оформление заблокировано.
func (w *Wizard) Submit(ctx context.Context) (model.RepairRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepParts && w.step != StepCar {
		return model.RepairRecord{}, ErrWrongStep
	}
	if err := w.commit(ctx); err != nil {
		return model.RepairRecord{}, err
	}
	return *w.record, nil
}

// commit переводит заявку в завершённое состояние. Выбранные запчасти в
// запись истории не попадают и на сумму не влияют: в запись идёт только
// стоимость услуги.
func (w *Wizard) commit(ctx context.Context) error {
	if w.service == nil || w.carID == "" {
		return ErrIncomplete
	}

	rec, err := w.accounts.AddRepairRecord(ctx, storage.RepairEntry{
		Date:        time.Now().Format(time.RFC3339),
		Description: w.service.Name,
		CarID:       w.carID,
		Amount:      w.service.Price,
	}, w.userID)
	if err != nil {
		return err
	}

	w.record = &rec
	w.step = StepDone
	return nil
}
