package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/avtomir/autoservice-system/internal/middleware"
	"github.com/avtomir/autoservice-system/internal/model"
	"github.com/avtomir/autoservice-system/internal/wizard"
)

// StartRepair создаёт новую заявку на ремонт для текущего пользователя.
func (h *Handler) StartRepair(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	wz := h.wizards.Start(userID)
	h.writeJSON(w, http.StatusCreated, wz.State())
}

// GetRepair возвращает состояние заявки.
func (h *Handler) GetRepair(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.repairFromRequest(w, r)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, wz.State())
}

type selectServiceRequest struct {
	ID string `json:"id"`
}

// SelectRepairService выбирает услугу для заявки.
func (h *Handler) SelectRepairService(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.repairFromRequest(w, r)
	if !ok {
		return
	}

	var req selectServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := wz.SelectService(req.ID); err != nil {
		h.writeWizardError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, wz.State())
}

type selectCarRequest struct {
	ID string `json:"id"`
}

// SelectRepairCar выбирает автомобиль для заявки.
func (h *Handler) SelectRepairCar(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.repairFromRequest(w, r)
	if !ok {
		return
	}

	var req selectCarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := wz.SelectCar(r.Context(), req.ID); err != nil {
		h.writeWizardError(w, err)
		return
	}

	h.finishIfDone(wz)
	h.writeJSON(w, http.StatusOK, wz.State())
}

type newCarRequest struct {
	PlateNumber string `json:"plateNumber"`
	Model       string `json:"model"`
}

// CreateRepairCar добавляет автомобиль, не покидая шага выбора, и сразу
// выбирает его для заявки.
func (h *Handler) CreateRepairCar(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.repairFromRequest(w, r)
	if !ok {
		return
	}

	var req newCarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := wz.CreateAndSelectCar(r.Context(), req.PlateNumber, req.Model); err != nil {
		h.writeWizardError(w, err)
		return
	}

	h.finishIfDone(wz)
	h.writeJSON(w, http.StatusOK, wz.State())
}

type addRepairPartRequest struct {
	Source model.PartSource `json:"source"`
	ID     string           `json:"id"`
}

// AddRepairPart добавляет запчасть в заявку из корзины, каталога или
// запчасть пользователя.
func (h *Handler) AddRepairPart(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.repairFromRequest(w, r)
	if !ok {
		return
	}

	var req addRepairPartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var err error
	switch req.Source {
	case model.PartSourceCart:
		err = wz.AddPartFromCart(req.ID)
	case model.PartSourceCatalog:
		err = wz.AddPartFromCatalog(req.ID)
	case model.PartSourceUser:
		err = wz.AddUserPart()
	default:
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.writeWizardError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, wz.State())
}

type updateRepairPartRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateRepairPart устанавливает количество выбранной запчасти.
func (h *Handler) UpdateRepairPart(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.repairFromRequest(w, r)
	if !ok {
		return
	}

	var req updateRepairPartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := wz.UpdatePartQuantity(pathParam(r, "partId"), req.Quantity); err != nil {
		h.writeWizardError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, wz.State())
}

// RemoveRepairPart удаляет запчасть из заявки.
func (h *Handler) RemoveRepairPart(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.repairFromRequest(w, r)
	if !ok {
		return
	}

	if err := wz.RemovePart(pathParam(r, "partId")); err != nil {
		h.writeWizardError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, wz.State())
}

// RepairBack возвращает заявку на предыдущий шаг.
func (h *Handler) RepairBack(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.repairFromRequest(w, r)
	if !ok {
		return
	}

	if err := wz.Back(); err != nil {
		h.writeWizardError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, wz.State())
}

// SubmitRepair оформляет заявку и возвращает созданную запись истории ремонтов.
func (h *Handler) SubmitRepair(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.repairFromRequest(w, r)
	if !ok {
		return
	}

	record, err := wz.Submit(r.Context())
	if err != nil {
		h.writeWizardError(w, err)
		return
	}

	h.wizards.Drop(wz.ID())
	h.writeJSON(w, http.StatusOK, record)
}

func (h *Handler) repairFromRequest(w http.ResponseWriter, r *http.Request) (*wizard.Wizard, bool) {
	userID, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return nil, false
	}

	wz, ok := h.wizards.Get(pathParam(r, "id"), userID)
	if !ok {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return nil, false
	}
	return wz, true
}

// finishIfDone убирает оформленную заявку из менеджера: выбор автомобиля
// для услуги без запчастей завершает заявку сразу.
func (h *Handler) finishIfDone(wz *wizard.Wizard) {
	if wz.State().Step == wizard.StepDone {
		h.wizards.Drop(wz.ID())
	}
}

func (h *Handler) writeWizardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, wizard.ErrInvalidPlate):
		http.Error(w, "Неверный формат гос. номера", http.StatusUnprocessableEntity)
	case errors.Is(err, wizard.ErrUnknownService), errors.Is(err, wizard.ErrUnknownCar), errors.Is(err, wizard.ErrUnknownPart):
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	case errors.Is(err, wizard.ErrIncomplete), errors.Is(err, wizard.ErrWrongStep):
		http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
	default:
		h.logger.Error("repair wizard error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
