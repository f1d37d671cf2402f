package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vitalis/turnos/internal/appointments"
	"github.com/vitalis/turnos/internal/validation"
	apperrors "github.com/vitalis/turnos/pkg/errors"
	"github.com/vitalis/turnos/pkg/logger"
)

// maxBodyBytes ограничивает размер тела запроса
const maxBodyBytes = 64 << 10

// queryConfirmer - подтверждение через параметр ?confirm=true.
// Запоминает ответ, чтобы отличить отказ от отсутствия записи.
type queryConfirmer struct {
	r        *http.Request
	asked    int
	accepted bool
}

func newQueryConfirmer(r *http.Request) *queryConfirmer {
	return &queryConfirmer{r: r}
}

func (q *queryConfirmer) Confirm(_ context.Context, _ string) bool {
	q.asked++
	ok, err := strconv.ParseBool(q.r.URL.Query().Get("confirm"))
	q.accepted = err == nil && ok
	return q.accepted
}

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	s.success(w, r, "", s.store.History())
}

func (s *Server) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	fields := map[string]string{}
	if err := decodeBody(w, r, &fields); err != nil {
		s.fail(w, r, http.StatusBadRequest, "Solicitud inválida", err.Error())
		return
	}

	appointment, err := s.store.Create(r.Context(), fields)
	if err != nil {
		var verrs validation.Errors
		if stderrors.As(err, &verrs) {
			s.invalid(w, r, "Por favor corrija los campos marcados", verrs.Map())
			return
		}
		s.storageFailure(w, r, err)
		return
	}

	s.created(w, r, appointments.ConfirmationMessage, appointment)
}

func (s *Server) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	log := s.logger.WithContext(r.Context())

	confirmer := s.confirmerFor(r)
	deleted, err := s.store.ConfirmAndDelete(r.Context(), id, confirmer)
	if err != nil {
		s.storageFailure(w, r, err)
		return
	}
	if !confirmer.accepted {
		s.success(w, r, appointments.ConfirmDeleteMessage, map[string]bool{"deleted": false})
		return
	}
	if !deleted {
		log.Debug("Appointment to delete not found", logger.String("id", id))
		appErr := apperrors.ErrAppointmentNotFound.WithContext(map[string]string{"id": id})
		s.fail(w, r, http.StatusNotFound, appErr.Message, appErr.Code)
		return
	}

	s.success(w, r, "Turno eliminado", map[string]bool{"deleted": true})
}

func (s *Server) handleClearAppointments(w http.ResponseWriter, r *http.Request) {
	cleared, err := s.store.ConfirmAndClear(r.Context(), s.confirmerFor(r))
	if err != nil {
		s.storageFailure(w, r, err)
		return
	}
	if !cleared {
		s.success(w, r, appointments.ConfirmClearMessage, map[string]bool{"cleared": false})
		return
	}

	s.success(w, r, "Historial eliminado", map[string]bool{"cleared": true})
}

type validateRequest struct {
	Value string `json:"value"`
}

type validateResult struct {
	Field   string `json:"field"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleValidateField(w http.ResponseWriter, r *http.Request) {
	field, ok := validation.ParseField(chi.URLParam(r, "field"))
	if !ok {
		s.fail(w, r, http.StatusNotFound, apperrors.ErrInvalidField.Message, apperrors.ErrInvalidField.Code)
		return
	}

	var req validateRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.fail(w, r, http.StatusBadRequest, "Solicitud inválida", err.Error())
		return
	}

	result := validateResult{Field: field.String(), Valid: true}
	if fe := validation.ValidateOne(field, req.Value); fe != nil {
		result.Valid = false
		result.Message = fe.Message
	}

	s.success(w, r, "", result)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.store.LoadProfile(r.Context())
	if !ok {
		s.fail(w, r, http.StatusNotFound, "No hay datos personales guardados", "PROFILE_NOT_FOUND")
		return
	}
	s.success(w, r, "", profile)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	office := r.URL.Query().Get("office")
	day := r.URL.Query().Get("day")

	summary, ok := appointments.Summarize(office, day)
	if !ok {
		errs := map[string]string{}
		if !validation.ValidateOffice(office) {
			errs[validation.FieldOffice.String()] = validation.Message(validation.FieldOffice)
		}
		if !validation.ValidateDay(day) {
			errs[validation.FieldDay.String()] = validation.Message(validation.FieldDay)
		}
		s.invalid(w, r, "Seleccione consultorio y día", errs)
		return
	}

	s.success(w, r, "", summary)
}

func (s *Server) handleTreatments(w http.ResponseWriter, r *http.Request) {
	s.success(w, r, "", s.catalog.Treatments())
}

type optionsResponse struct {
	Offices  []string                `json:"offices"`
	Schedule []appointments.DayHours `json:"schedule"`
	Note     string                  `json:"note"`
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	s.success(w, r, "", optionsResponse{
		Offices:  validation.Offices(),
		Schedule: appointments.Schedule(),
		Note:     appointments.ContactNote,
	})
}

// storageFailure отвечает 500 и логирует ошибку хранилища
func (s *Server) storageFailure(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.WithContext(r.Context()).Error("Storage operation failed", logger.Error(err))

	appErr := apperrors.ErrStorageWrite
	if ae, ok := apperrors.GetAppError(err); ok {
		appErr = ae
	}
	s.fail(w, r, http.StatusInternalServerError, appErr.Message, appErr.Code)
}

// decodeBody читает JSON тело запроса; пустое тело оставляет dst без изменений
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !stderrors.Is(err, io.EOF) {
		return err
	}
	return nil
}
