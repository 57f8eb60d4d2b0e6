package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/garyjia/perdin-approval/internal/application/dispatcher"
	"github.com/garyjia/perdin-approval/internal/domain/apperr"
	"github.com/garyjia/perdin-approval/internal/domain/auth"
	"github.com/garyjia/perdin-approval/internal/domain/entity"
	"github.com/garyjia/perdin-approval/internal/domain/event"
	"github.com/garyjia/perdin-approval/internal/domain/workflow"
)

// Seed cities used across tests
var (
	jakarta   = &entity.City{ID: 1, Name: "Jakarta", Latitude: -6.21462, Longitude: 106.84513, Province: "DKI Jakarta", Island: "Jawa"}
	bandung   = &entity.City{ID: 2, Name: "Bandung", Latitude: -6.91746, Longitude: 107.61912, Province: "Jawa Barat", Island: "Jawa"}
	singapore = &entity.City{ID: 5, Name: "Singapore", Latitude: 1.35208, Longitude: 103.81983, IsForeign: true}
	bogor     = &entity.City{ID: 12, Name: "Bogor", Latitude: -6.59504, Longitude: 106.81667, Province: "Jawa Barat", Island: "Jawa"}
	cirebon   = &entity.City{ID: 13, Name: "Cirebon", Latitude: -6.70630, Longitude: 108.55700, Province: "Jawa Barat", Island: "Jawa"}
)

var (
	pegawai = &auth.Principal{UserID: 10, Username: "budi", Role: auth.RolePegawai}
	sdm     = &auth.Principal{UserID: 20, Username: "sari", Role: auth.RoleSDM}
)

type mockCityRepo struct {
	mu     sync.Mutex
	cities map[int64]*entity.City
	nextID int64

	createFunc func(ctx context.Context, city *entity.City) error
	listFunc   func(ctx context.Context) ([]*entity.City, error)
}

func newMockCityRepo(cities ...*entity.City) *mockCityRepo {
	m := &mockCityRepo{cities: make(map[int64]*entity.City), nextID: 100}
	for _, c := range cities {
		m.cities[c.ID] = c
	}
	return m
}

func (m *mockCityRepo) Create(ctx context.Context, city *entity.City) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, city)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cities {
		if c.Name == city.Name {
			return apperr.Conflict("city %q already exists", city.Name)
		}
	}
	m.nextID++
	city.ID = m.nextID
	m.cities[city.ID] = city
	return nil
}

func (m *mockCityRepo) GetByID(ctx context.Context, id int64) (*entity.City, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cities[id]
	if !ok {
		return nil, apperr.NotFound("city %d not found", id)
	}
	return c, nil
}

func (m *mockCityRepo) List(ctx context.Context) ([]*entity.City, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.City, 0, len(m.cities))
	for _, c := range m.cities {
		out = append(out, c)
	}
	return out, nil
}

// mockTripRepo keeps trips in memory and honours the compare-and-set contract
type mockTripRepo struct {
	mu     sync.Mutex
	trips  map[int64]*entity.TripRequest
	nextID int64

	amountWrites int
	createFunc   func(ctx context.Context, trip *entity.TripRequest) error
	casFunc      func(ctx context.Context, id int64, from, to workflow.State) (bool, error)
	listFunc     func(ctx context.Context, status workflow.State) ([]*entity.TripView, error)
}

func newMockTripRepo(trips ...*entity.TripRequest) *mockTripRepo {
	m := &mockTripRepo{trips: make(map[int64]*entity.TripRequest)}
	for _, t := range trips {
		m.trips[t.ID] = t
		if t.ID > m.nextID {
			m.nextID = t.ID
		}
	}
	return m
}

func (m *mockTripRepo) Create(ctx context.Context, trip *entity.TripRequest) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, trip)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	trip.ID = m.nextID
	cp := *trip
	m.trips[trip.ID] = &cp
	return nil
}

func (m *mockTripRepo) GetByID(ctx context.Context, id int64) (*entity.TripRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok {
		return nil, apperr.NotFound("trip %d not found", id)
	}
	cp := *t
	return &cp, nil
}

func (m *mockTripRepo) GetView(ctx context.Context, id int64) (*entity.TripView, error) {
	t, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &entity.TripView{TripRequest: *t}, nil
}

func (m *mockTripRepo) ListViews(ctx context.Context, status workflow.State) ([]*entity.TripView, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.TripView
	for _, t := range m.trips {
		if status == "" || t.Status == status {
			out = append(out, &entity.TripView{TripRequest: *t})
		}
	}
	return out, nil
}

func (m *mockTripRepo) UpdateAmount(ctx context.Context, id int64, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok {
		return apperr.NotFound("trip %d not found", id)
	}
	t.ReimbursementAmount = amount
	m.amountWrites++
	return nil
}

func (m *mockTripRepo) CompareAndSetStatus(ctx context.Context, id int64, from, to workflow.State, decidedBy int64, decidedAt time.Time) (bool, error) {
	if m.casFunc != nil {
		return m.casFunc(ctx, id, from, to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	t.DecidedBy = &decidedBy
	t.DecidedAt = &decidedAt
	return true, nil
}

func (m *mockTripRepo) status(id int64) workflow.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trips[id].Status
}

func (m *mockTripRepo) amount(id int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trips[id].ReimbursementAmount
}

type mockHistoryRepo struct {
	mu      sync.Mutex
	records []*entity.TripHistory

	createFunc func(ctx context.Context, history *entity.TripHistory) error
}

func (m *mockHistoryRepo) Create(ctx context.Context, history *entity.TripHistory) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, history)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	history.ID = int64(len(m.records) + 1)
	m.records = append(m.records, history)
	return nil
}

func (m *mockHistoryRepo) GetByTripID(ctx context.Context, tripID int64) ([]*entity.TripHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.TripHistory
	for _, r := range m.records {
		if r.TripID == tripID {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockUserRepo struct {
	users map[string]*entity.User

	createFunc func(ctx context.Context, user *entity.User) error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*entity.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	if _, ok := m.users[user.Username]; ok {
		return apperr.Conflict("username %q is taken", user.Username)
	}
	user.ID = int64(len(m.users) + 1)
	m.users[user.Username] = user
	return nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, apperr.NotFound("user %q not found", username)
	}
	return u, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperr.NotFound("user %d not found", id)
}

// mockHasher prefixes passwords instead of hashing them
type mockHasher struct {
	hashFunc func(password string) (string, error)
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed:" + password, nil
}

func (m *mockHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return apperr.Unauthenticated("password mismatch")
	}
	return nil
}

type mockIssuer struct {
	issued []auth.Principal
}

func (m *mockIssuer) Issue(principal auth.Principal) (string, error) {
	m.issued = append(m.issued, principal)
	return "token-for-" + principal.Username, nil
}

type mockExporter struct {
	exportFunc func(ctx context.Context, w io.Writer, trips []*entity.TripView) error
	exported   []*entity.TripView
}

func (m *mockExporter) ContentType() string   { return "text/csv" }
func (m *mockExporter) FileExtension() string { return ".csv" }

func (m *mockExporter) Export(ctx context.Context, w io.Writer, trips []*entity.TripView) error {
	if m.exportFunc != nil {
		return m.exportFunc(ctx, w, trips)
	}
	m.exported = trips
	_, err := io.WriteString(w, "ok")
	return err
}

// recordingDispatcher captures events synchronously
type recordingDispatcher struct {
	mu     sync.Mutex
	events []*event.Event
}

func (d *recordingDispatcher) Subscribe(eventType event.Type, name string, handler dispatcher.Handler) {
}

func (d *recordingDispatcher) DispatchAsync(ctx context.Context, evt *event.Event) {
	d.record(evt)
}

func (d *recordingDispatcher) Handlers(eventType event.Type) []string { return nil }

func (d *recordingDispatcher) Close() error { return nil }

func (d *recordingDispatcher) record(evt *event.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, evt)
}

func (d *recordingDispatcher) last(eventType event.Type) *event.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.events) - 1; i >= 0; i-- {
		if d.events[i].Type == eventType {
			return d.events[i]
		}
	}
	return nil
}

func (d *recordingDispatcher) types() []event.Type {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]event.Type, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}
