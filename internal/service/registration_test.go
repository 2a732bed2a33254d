package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/eventdesk/internal/adapters/memgateway"
	"github.com/target/eventdesk/internal/domain/model"
	"github.com/target/eventdesk/internal/domain/table"
	apperrors "github.com/target/eventdesk/internal/errors"
	"github.com/target/eventdesk/internal/mocks"
	"github.com/target/eventdesk/internal/ports"
)

func validRegistration() model.RegistrationRequest {
	return model.RegistrationRequest{
		Name:          "Ada Lovelace",
		Email:         "ada@example.com",
		PRN:           "PRN-001",
		Department:    "CS",
		Year:          "3",
		Phone:         "+1 234-567-8901",
		TransactionID: "TX-9",
		EventName:     "Talk",
		EventDate:     "2026-06-01",
	}
}

func newRegistrationService(t *testing.T) (*RegistrationService, *EventService, *memgateway.Gateway) {
	t.Helper()
	gw := memgateway.New()
	events := NewEventService(EventServiceOptions{Gateway: gw})
	return NewRegistrationService(RegistrationServiceOptions{Gateway: gw, Events: events}), events, gw
}

func TestRegistrationService_SubmitStampsEvent(t *testing.T) {
	t.Parallel()
	svc, events, _ := newRegistrationService(t)
	ctx := context.Background()

	ev, err := events.Create(ctx, sampleRequest("Talk"))
	require.NoError(t, err)

	reg, err := svc.Submit(ctx, validRegistration())
	require.NoError(t, err)
	require.NotNil(t, reg.EventID)
	assert.Equal(t, ev.ID, *reg.EventID)

	got, err := events.Get(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.RegistrationCount)
}

func TestRegistrationService_UnknownEventTitle(t *testing.T) {
	t.Parallel()
	svc, _, _ := newRegistrationService(t)

	reg, err := svc.Submit(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.Nil(t, reg.EventID)
}

func TestRegistrationService_DuplicateUpsertLeavesOneRecord(t *testing.T) {
	t.Parallel()
	svc, _, gw := newRegistrationService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, validRegistration())
	require.NoError(t, err)

	again := validRegistration()
	again.Email = "new@example.com"
	second, err := svc.Submit(ctx, again)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "new@example.com", second.Email)
	assert.Equal(t, 1, gw.Len(table.Registrations))
}

func TestRegistrationService_ValidationBeforeGateway(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl) // no calls expected
	svc := NewRegistrationService(RegistrationServiceOptions{Gateway: gw})

	tests := []struct {
		name   string
		mutate func(*model.RegistrationRequest)
		msg    string
	}{
		{"missing transaction id", func(r *model.RegistrationRequest) { r.TransactionID = "  " }, "Please fill out transaction id."},
		{"bad email", func(r *model.RegistrationRequest) { r.Email = "a-b.co" }, "Invalid email address"},
		{"bad phone", func(r *model.RegistrationRequest) { r.Phone = "abc" }, "Invalid phone number"},
		{"short phone", func(r *model.RegistrationRequest) { r.Phone = "12345" }, "Invalid phone number"},
		{"no event", func(r *model.RegistrationRequest) { r.EventName = "" }, "No event selected."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := validRegistration()
			tt.mutate(&req)
			_, err := svc.Submit(context.Background(), req)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestRegistrationService_GatewayError(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	svc := NewRegistrationService(RegistrationServiceOptions{Gateway: gw})
	ctx := context.Background()

	gw.EXPECT().Upsert(gomock.Any(), table.Registrations, gomock.Any(), []string{"event_name", "prn"}).
		Return(nil, apperrors.Conflict("duplicate key"))
	_, err := svc.Submit(ctx, validRegistration())
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestRegistrationService_ConcurrentDuplicatesCollapse(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	gw := mocks.NewMockGateway(ctrl)
	svc := NewRegistrationService(RegistrationServiceOptions{Gateway: gw})
	ctx := context.Background()

	release := make(chan struct{})
	var calls atomic.Int32
	gw.EXPECT().Upsert(gomock.Any(), table.Registrations, gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, table.Row, []string) (table.Row, error) {
			calls.Add(1)
			<-release
			return table.Row{"id": "r1", "event_name": "Talk", "prn": "PRN-001"}, nil
		}).MinTimes(1).MaxTimes(2)

	const n = 8
	var wg sync.WaitGroup
	results := make([]model.Registration, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg, err := svc.Submit(ctx, validRegistration())
			assert.NoError(t, err)
			results[i] = reg
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(2))
	for _, r := range results {
		assert.Equal(t, "r1", r.ID)
	}
}

// heldGateway blocks Upsert until release is closed.
type heldGateway struct {
	ports.Gateway
	entered chan struct{}
	release chan struct{}
}

func newHeldGateway() *heldGateway {
	return &heldGateway{
		Gateway: memgateway.New(),
		entered: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
}

func (g *heldGateway) Upsert(ctx context.Context, tbl string, row table.Row, onConflict []string) (table.Row, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.Gateway.Upsert(ctx, tbl, row, onConflict)
}

func TestRegistrationService_ConcurrentDifferentPayloadsBothWrite(t *testing.T) {
	t.Parallel()
	gw := newHeldGateway()
	svc := NewRegistrationService(RegistrationServiceOptions{Gateway: gw})
	ctx := context.Background()

	type result struct {
		reg model.Registration
		err error
	}
	first := make(chan result, 1)
	go func() {
		reg, err := svc.Submit(ctx, validRegistration())
		first <- result{reg, err}
	}()
	<-gw.entered

	changed := validRegistration()
	changed.Phone = "+44 7770001111"
	second := make(chan result, 1)
	go func() {
		reg, err := svc.Submit(ctx, changed)
		second <- result{reg, err}
	}()

	select {
	case <-gw.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("second submission did not reach the gateway")
	}
	close(gw.release)

	r1, r2 := <-first, <-second
	require.NoError(t, r1.err)
	require.NoError(t, r2.err)
	assert.Equal(t, "+1 234-567-8901", r1.reg.Phone)
	assert.Equal(t, "+44 7770001111", r2.reg.Phone)
	assert.Equal(t, 1, gw.Gateway.(*memgateway.Gateway).Len(table.Registrations))
}

func TestRegistrationService_CancelledCallerDoesNotFailOthers(t *testing.T) {
	t.Parallel()
	gw := newHeldGateway()
	svc := NewRegistrationService(RegistrationServiceOptions{Gateway: gw})

	ctx1, cancel1 := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := svc.Submit(ctx1, validRegistration())
		first <- err
	}()
	<-gw.entered

	cancel1()
	require.ErrorIs(t, <-first, context.Canceled)

	second := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), validRegistration())
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)
	close(gw.release)

	require.NoError(t, <-second)
	assert.Equal(t, 1, gw.Gateway.(*memgateway.Gateway).Len(table.Registrations))
}

type recordingSink struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (r *recordingSink) Count(name string, value int64, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int64{}
	}
	r.counts[name+"/"+tags["result"]] += value
}

func (r *recordingSink) Timing(string, time.Duration, map[string]string) {}

func TestRegistrationService_RecordsOutcomes(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{}
	svc := NewRegistrationService(RegistrationServiceOptions{Gateway: memgateway.New(), Metrics: sink})
	ctx := context.Background()

	_, err := svc.Submit(ctx, validRegistration())
	require.NoError(t, err)
	bad := validRegistration()
	bad.Name = ""
	_, err = svc.Submit(ctx, bad)
	require.Error(t, err)

	assert.Equal(t, int64(1), sink.counts["registrations.submitted/ok"])
	assert.Equal(t, int64(1), sink.counts["registrations.submitted/validation"])
}
