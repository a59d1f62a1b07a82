package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/example/configurator-checkout/internal/domain"
)

type fakeConfigurations map[string]domain.Configuration

func (f fakeConfigurations) Get(_ context.Context, id string) (domain.Configuration, error) {
	c, ok := f[id]
	if !ok {
		return domain.Configuration{}, domain.ErrConfigurationNotFound
	}
	return c, nil
}

type fakeSession struct {
	user *domain.User
}

func (f fakeSession) CurrentUser(context.Context) (domain.User, error) {
	if f.user == nil {
		return domain.User{}, domain.ErrUserNotFound
	}
	return *f.user, nil
}

type fakeOrderRepo struct {
	mu      sync.Mutex
	orders  map[[2]string]domain.Order
	finds   int
	inserts int
	// raceWinner сохраняется при первой вставке, имитируя параллельный запрос.
	raceWinner *domain.Order
	findErr    error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[[2]string]domain.Order)}
}

func (f *fakeOrderRepo) FindByUserAndConfiguration(_ context.Context, userID, configurationID string) (domain.Order, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds++
	if f.findErr != nil {
		return domain.Order{}, false, f.findErr
	}
	o, ok := f.orders[[2]string{userID, configurationID}]
	return o, ok, nil
}

func (f *fakeOrderRepo) Create(_ context.Context, o domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	key := [2]string{o.UserID, o.ConfigurationID}
	if f.raceWinner != nil {
		f.orders[key] = *f.raceWinner
		f.raceWinner = nil
	}
	if _, exists := f.orders[key]; exists {
		return domain.ErrOrderExists
	}
	f.orders[key] = o
	return nil
}

type fakePayments struct {
	intents []domain.PaymentIntent
	err     error
}

func (f *fakePayments) CreateTransaction(_ context.Context, intent domain.PaymentIntent) (domain.Transaction, error) {
	f.intents = append(f.intents, intent)
	if f.err != nil {
		return domain.Transaction{}, f.err
	}
	return domain.Transaction{ID: "PAY-" + intent.ReferenceID, Status: "CREATED"}, nil
}

type fakeEvents struct {
	events []domain.OrderEvent
	err    error
}

func (f *fakeEvents) Publish(_ context.Context, e domain.OrderEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

var errBoom = errors.New("boom")
