package appointments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vitalis/turnos/internal/storage"
	"github.com/vitalis/turnos/internal/storage/memory"
	"github.com/vitalis/turnos/internal/storage/models"
	"github.com/vitalis/turnos/internal/validation"
	apperrors "github.com/vitalis/turnos/pkg/errors"
)

func validFields() map[string]string {
	return map[string]string{
		"name":       "Juan Perez",
		"nationalId": "12345678",
		"phone":      "3511234567",
		"email":      "j@p.com",
		"office":     "Colonia Tirolesa",
		"day":        "Lunes",
	}
}

// fixedClock возвращает одно и то же время при каждом вызове
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *memory.Storage) {
	t.Helper()
	kv := memory.New()
	return New(context.Background(), storage.NewRecords(kv, nil), opts...), kv
}

func TestCreate_EndToEnd(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore(t)

	created, err := store.Create(ctx, validFields())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == 0 || created.CreatedAt == "" {
		t.Errorf("auto-assigned fields are empty: %+v", created)
	}

	// Новый Store поверх того же хранилища видит запись
	reloaded := New(ctx, storage.NewRecords(kv, nil))
	list := reloaded.Load(ctx)
	if len(list) != 1 {
		t.Fatalf("Load() returned %d records, want 1", len(list))
	}

	got := list[0]
	want := models.Appointment{
		ID:         created.ID,
		Name:       "Juan Perez",
		NationalID: "12345678",
		Phone:      "3511234567",
		Email:      "j@p.com",
		Office:     "Colonia Tirolesa",
		Day:        "Lunes",
		CreatedAt:  created.CreatedAt,
	}
	if got != want {
		t.Errorf("Load()[0] = %+v, want %+v", got, want)
	}

	hours, ok := HoursFor(got.Day)
	if !ok || hours != "9:00 AM - 6:00 PM" {
		t.Errorf("HoursFor(%q) = %q, %v", got.Day, hours, ok)
	}
}

func TestCreate_SingleTokenNameFails(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore(t)

	fields := validFields()
	fields["name"] = "Juan"

	created, err := store.Create(ctx, fields)
	if created != nil {
		t.Fatalf("Create() returned a record on invalid input: %+v", created)
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("Create() error = %v, want validation.Errors", err)
	}
	if len(verrs) != 1 || !verrs.Has(validation.FieldName) {
		t.Errorf("validation errors = %v, want only name", verrs)
	}

	if len(store.List()) != 0 {
		t.Error("collection must stay empty")
	}
	if kv.Has(storage.KeyAppointments) {
		t.Error("nothing should be persisted")
	}
}

func TestCreate_ReportsEveryInvalidField(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Create(context.Background(), map[string]string{
		"name":  "  ",
		"email": "a b@c.com",
	})

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("Create() error = %v, want validation.Errors", err)
	}
	if len(verrs) != len(validation.RequiredFields()) {
		t.Errorf("got %d errors, want one per required field: %v", len(verrs), verrs)
	}
}

func TestCreate_TrimsAndKeepsOptionalFields(t *testing.T) {
	store, _ := newTestStore(t)

	fields := validFields()
	fields["name"] = "  Juan Perez  "
	fields["phone"] = " 3511234567 "
	fields["treatment"] = "Limpieza facial"
	fields["notes"] = "  Prefiero por la tarde "
	fields["unknown"] = "ignored"

	created, err := store.Create(context.Background(), fields)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Name != "Juan Perez" || created.Phone != "3511234567" {
		t.Errorf("values were not trimmed: %+v", created)
	}
	if created.Treatment != "Limpieza facial" || created.Notes != "Prefiero por la tarde" {
		t.Errorf("optional fields = %q, %q", created.Treatment, created.Notes)
	}
}

func TestCreate_AcceptsSpanishFormKeys(t *testing.T) {
	store, _ := newTestStore(t)

	created, err := store.Create(context.Background(), map[string]string{
		"nombre":        "Ana Gomez",
		"dni":           "1234567",
		"telefono":      "3511234567",
		"email":         "ana@gomez.com",
		"consultorio":   "Villa Carlos Paz",
		"dia":           "Sábado",
		"observaciones": "Primera vez",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Day != "Sábado" || created.Notes != "Primera vez" {
		t.Errorf("created = %+v", created)
	}
}

func TestCreate_UniqueIDsInRapidSuccession(t *testing.T) {
	at := time.Date(2026, 10, 19, 14, 5, 9, 0, time.UTC)
	store, _ := newTestStore(t, WithClock(fixedClock(at)))
	ctx := context.Background()

	first, err := store.Create(ctx, validFields())
	if err != nil {
		t.Fatalf("first Create() error = %v", err)
	}
	second, err := store.Create(ctx, validFields())
	if err != nil {
		t.Fatalf("second Create() error = %v", err)
	}

	if first.ID == second.ID {
		t.Fatalf("ids collide: %d", first.ID)
	}
	if int64(first.ID) != at.UnixMilli() {
		t.Errorf("first id = %d, want creation time in ms %d", first.ID, at.UnixMilli())
	}
	if second.ID <= first.ID {
		t.Errorf("second id %d should be greater than %d", second.ID, first.ID)
	}
}

func TestCreate_IDsDoNotCollideWithLoadedRecords(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	records := storage.NewRecords(kv, nil)

	future := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = records.SaveAppointments(ctx, []models.Appointment{{ID: models.AppointmentID(future.UnixMilli()), Name: "Old Record", Day: "Lunes"}})

	store := New(ctx, records, WithClock(fixedClock(future.Add(-time.Hour))))
	created, err := store.Create(ctx, validFields())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if int64(created.ID) <= future.UnixMilli() {
		t.Errorf("id %d collides with or precedes stored id %d", created.ID, future.UnixMilli())
	}
}

func TestCreate_CreatedAtUsesClinicLocation(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	at := time.Date(2026, 10, 19, 17, 5, 9, 0, time.UTC)
	store, _ := newTestStore(t, WithClock(fixedClock(at)), WithLocation(loc))

	created, err := store.Create(context.Background(), validFields())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.CreatedAt != "19/10/2026, 14:05:09" {
		t.Errorf("CreatedAt = %q, want 19/10/2026, 14:05:09", created.CreatedAt)
	}
}

func TestCreate_UpdatesProfile(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	if _, ok := store.LoadProfile(ctx); ok {
		t.Fatal("profile should be absent initially")
	}

	if _, err := store.Create(ctx, validFields()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	second := validFields()
	second["name"] = "Ana Gomez"
	second["email"] = "ana@gomez.com"
	if _, err := store.Create(ctx, second); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	profile, ok := store.LoadProfile(ctx)
	if !ok {
		t.Fatal("profile should be cached after create")
	}
	want := models.PersonalProfile{Name: "Ana Gomez", NationalID: "12345678", Phone: "3511234567", Email: "ana@gomez.com"}
	if *profile != want {
		t.Errorf("profile = %+v, want %+v", *profile, want)
	}
}

func TestDeleteByID(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore(t)

	a, _ := store.Create(ctx, validFields())
	bFields := validFields()
	bFields["name"] = "Ana Gomez"
	b, _ := store.Create(ctx, bFields)

	removed, err := store.DeleteByID(ctx, a.ID.String())
	if err != nil || !removed {
		t.Fatalf("DeleteByID() = %v, %v; want true, nil", removed, err)
	}

	list := New(ctx, storage.NewRecords(kv, nil)).List()
	if len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("remaining = %+v, want only B", list)
	}

	removed, err = store.DeleteByID(ctx, a.ID.String())
	if err != nil || removed {
		t.Errorf("second DeleteByID() = %v, %v; want false, nil", removed, err)
	}

	removed, _ = store.DeleteByID(ctx, "not-an-id")
	if removed {
		t.Error("unknown id should not remove anything")
	}
}

func TestDeleteByID_StringComparisonTolerant(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	a, _ := store.Create(ctx, validFields())

	removed, err := store.DeleteByID(ctx, " "+a.ID.String()+" ")
	if err != nil || !removed {
		t.Errorf("DeleteByID with padded id = %v, %v", removed, err)
	}
}

func TestClear_Idempotent(t *testing.T) {
	ctx := context.Background()
	store, kv := newTestStore(t)

	_, _ = store.Create(ctx, validFields())

	for i := 0; i < 2; i++ {
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("Clear() #%d error = %v", i+1, err)
		}
		if len(store.List()) != 0 {
			t.Errorf("collection not empty after Clear() #%d", i+1)
		}
		if kv.Has(storage.KeyAppointments) {
			t.Errorf("persisted key still present after Clear() #%d", i+1)
		}
	}

	// Профиль живет отдельно от записей
	if _, ok := store.LoadProfile(ctx); !ok {
		t.Error("profile should survive Clear()")
	}
}

func TestConfirmGate(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	a, _ := store.Create(ctx, validFields())

	var asked []string
	decline := ConfirmFunc(func(ctx context.Context, message string) bool {
		asked = append(asked, message)
		return false
	})

	removed, err := store.ConfirmAndDelete(ctx, a.ID.String(), decline)
	if err != nil || removed {
		t.Errorf("declined delete = %v, %v", removed, err)
	}
	cleared, err := store.ConfirmAndClear(ctx, decline)
	if err != nil || cleared {
		t.Errorf("declined clear = %v, %v", cleared, err)
	}
	if len(store.List()) != 1 {
		t.Fatal("declining must leave the collection unchanged")
	}
	if len(asked) != 2 || asked[0] != ConfirmDeleteMessage || asked[1] != ConfirmClearMessage {
		t.Errorf("confirm prompts = %v", asked)
	}

	if removed, _ := store.ConfirmAndDelete(ctx, a.ID.String(), nil); removed {
		t.Error("nil confirmer must be treated as declined")
	}

	removed, err = store.ConfirmAndDelete(ctx, a.ID.String(), Always(true))
	if err != nil || !removed {
		t.Errorf("confirmed delete = %v, %v", removed, err)
	}

	_, _ = store.Create(ctx, validFields())
	cleared, err = store.ConfirmAndClear(ctx, Always(true))
	if err != nil || !cleared || len(store.List()) != 0 {
		t.Errorf("confirmed clear = %v, %v, len %d", cleared, err, len(store.List()))
	}
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, _ = store.Create(ctx, validFields())
	saturday := validFields()
	saturday["day"] = "Sábado"
	_, _ = store.Create(ctx, saturday)

	history := store.History()
	if len(history) != 2 {
		t.Fatalf("History() returned %d entries", len(history))
	}
	if history[0].Index != 1 || history[0].Title != "Turno #1" || history[0].Hours != "9:00 AM - 6:00 PM" {
		t.Errorf("history[0] = %+v", history[0])
	}
	if history[1].Index != 2 || history[1].Title != "Turno #2" || history[1].Hours != "9:00 AM - 1:00 PM" {
		t.Errorf("history[1] = %+v", history[1])
	}
}

func TestLoad_CorruptStorageIsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	_ = kv.Set(ctx, storage.KeyAppointments, "definitely not json")

	store := New(ctx, storage.NewRecords(kv, nil))
	if got := store.Load(ctx); len(got) != 0 {
		t.Errorf("Load() = %v, want empty", got)
	}

	// Хранилище остается рабочим после поврежденных данных
	if _, err := store.Create(ctx, validFields()); err != nil {
		t.Fatalf("Create() after corrupt load error = %v", err)
	}
	if len(store.Load(ctx)) != 1 {
		t.Error("expected the new record to overwrite the corrupt blob")
	}
}

// brokenKV читает нормально, но не может писать
type brokenKV struct {
	*memory.Storage
}

func (brokenKV) Set(ctx context.Context, key, value string) error {
	return errors.New("disk full")
}

func (brokenKV) Remove(ctx context.Context, key string) error {
	return errors.New("disk full")
}

func TestCreate_WriteFailureLeavesCollectionUnchanged(t *testing.T) {
	ctx := context.Background()
	store := New(ctx, storage.NewRecords(brokenKV{memory.New()}, nil))

	created, err := store.Create(ctx, validFields())
	if created != nil {
		t.Errorf("Create() returned %+v on write failure", created)
	}
	if !errors.Is(err, apperrors.ErrStorageWrite) {
		t.Errorf("Create() error = %v, want STORAGE_WRITE", err)
	}
	if len(store.List()) != 0 {
		t.Error("failed write must not leave a partial record")
	}

	if err := store.Clear(ctx); !errors.Is(err, apperrors.ErrStorageWrite) {
		t.Errorf("Clear() error = %v, want STORAGE_WRITE", err)
	}
}

type recordingNotifier struct {
	mu     sync.Mutex
	booked []models.Appointment
	err    error
}

func (n *recordingNotifier) NotifyBooked(ctx context.Context, a models.Appointment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.booked = append(n.booked, a)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.booked)
}

func TestCreate_NotifiesAndIgnoresNotifierFailure(t *testing.T) {
	n := &recordingNotifier{err: errors.New("telegram down")}
	store, _ := newTestStore(t, WithNotifier(n))

	created, err := store.Create(context.Background(), validFields())
	if err != nil {
		t.Fatalf("Create() error = %v, notifier failures must not surface", err)
	}
	store.Wait()
	if n.count() != 1 || n.booked[0].ID != created.ID {
		t.Errorf("notifier received %+v", n.booked)
	}

	fields := validFields()
	fields["phone"] = "123"
	_, _ = store.Create(context.Background(), fields)
	store.Wait()
	if n.count() != 1 {
		t.Error("invalid bookings must not be notified")
	}
}

// blockingNotifier держит отправку до закрытия release
type blockingNotifier struct {
	started chan struct{}
	release chan struct{}
	ctxErr  chan error
}

func (n *blockingNotifier) NotifyBooked(ctx context.Context, a models.Appointment) error {
	close(n.started)
	<-n.release
	n.ctxErr <- ctx.Err()
	return nil
}

func TestCreate_DoesNotWaitForNotifier(t *testing.T) {
	n := &blockingNotifier{
		started: make(chan struct{}),
		release: make(chan struct{}),
		ctxErr:  make(chan error, 1),
	}
	store, _ := newTestStore(t, WithNotifier(n))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := store.Create(ctx, validFields())
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Create() blocked on the notifier")
	}

	select {
	case <-n.started:
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was never called")
	}

	// отмена контекста запроса не прерывает уже запущенное уведомление
	cancel()
	close(n.release)
	store.Wait()

	if err := <-n.ctxErr; err != nil {
		t.Errorf("notifier context error = %v, want nil", err)
	}
	if got := len(store.List()); got != 1 {
		t.Errorf("List() has %d records, want 1", got)
	}
}
