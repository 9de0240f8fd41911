package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/B3hnamR/viranumpro/internal/domain/errors"
	"github.com/B3hnamR/viranumpro/internal/domain/model"
	testhelpers "github.com/B3hnamR/viranumpro/internal/test"
)

func newMockStorage(t *testing.T) (*Storage, pgxmockv3.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmockv3.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	storage := &Storage{pool: mock, logger: testhelpers.NewLogger()}
	return storage, mock
}

func expectSchema(mock pgxmockv3.PgxPoolIface) {
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS orders").WillReturnResult(pgxmockv3.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS order_sms").WillReturnResult(pgxmockv3.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_orders_owner ON orders").WillReturnResult(pgxmockv3.NewResult("CREATE", 0))
}

func sampleOrder() *model.Order {
	return &model.Order{
		ID:        "11631253",
		OwnerID:   7,
		Product:   "telegram",
		Country:   "russia",
		Operator:  "any",
		Phone:     "+79000000000",
		Price:     12.5,
		Status:    model.OrderStatusPending,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}
}

func TestInitSchema(t *testing.T) {
	storage, mock := newMockStorage(t)
	expectSchema(mock)

	if err := storage.initSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsert(t *testing.T) {
	storage, mock := newMockStorage(t)
	order := sampleOrder()

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(order.ID, order.OwnerID, order.Product, order.Country, order.Operator,
			order.Phone, order.Price, order.Status, order.CreatedAt, order.ExpiresAt).
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))

	if err := storage.Insert(context.Background(), order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInsertDuplicate(t *testing.T) {
	storage, mock := newMockStorage(t)
	order := sampleOrder()

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(order.ID, order.OwnerID, order.Product, order.Country, order.Operator,
			order.Phone, order.Price, order.Status, order.CreatedAt, order.ExpiresAt).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	if err := storage.Insert(context.Background(), order); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	storage, mock := newMockStorage(t)

	mock.ExpectQuery("SELECT id, owner_id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	if _, err := storage.Get(context.Background(), "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetWithMessages(t *testing.T) {
	storage, mock := newMockStorage(t)
	order := sampleOrder()

	mock.ExpectQuery("SELECT id, owner_id").
		WithArgs(order.ID).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "owner_id", "product", "country", "operator", "phone", "price", "status", "created_at", "expires_at"}).
			AddRow(order.ID, order.OwnerID, order.Product, order.Country, order.Operator,
				order.Phone, order.Price, order.Status, order.CreatedAt, order.ExpiresAt))

	received := time.Now()
	mock.ExpectQuery("SELECT order_id, sms_id").
		WithArgs([]string{order.ID}).
		WillReturnRows(pgxmockv3.NewRows([]string{"order_id", "sms_id", "sender", "text", "code", "received_at"}).
			AddRow(order.ID, "101", "Telegram", "Login code: 415127", "415127", received))

	got, err := storage.Get(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != order.ID || got.Status != model.OrderStatusPending {
		t.Fatalf("unexpected order %+v", got)
	}
	if len(got.SMS) != 1 || got.SMS[0].Code != "415127" {
		t.Fatalf("unexpected sms %+v", got.SMS)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateStatusApplied(t *testing.T) {
	storage, mock := newMockStorage(t)

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(model.OrderStatusReceived, "11631253", []string{"PENDING"}).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))

	applied, err := storage.UpdateStatus(context.Background(), "11631253", model.OrderStatusReceived)
	if err != nil || !applied {
		t.Fatalf("expected applied, got applied=%v err=%v", applied, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateStatusStale(t *testing.T) {
	storage, mock := newMockStorage(t)
	order := sampleOrder()

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(model.OrderStatusCanceled, order.ID, []string{"PENDING"}).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))

	// The registry re-reads the row to tell stale apart from missing.
	mock.ExpectQuery("SELECT id, owner_id").
		WithArgs(order.ID).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "owner_id", "product", "country", "operator", "phone", "price", "status", "created_at", "expires_at"}).
			AddRow(order.ID, order.OwnerID, order.Product, order.Country, order.Operator,
				order.Phone, order.Price, model.OrderStatusFinished, order.CreatedAt, order.ExpiresAt))
	mock.ExpectQuery("SELECT order_id, sms_id").
		WithArgs([]string{order.ID}).
		WillReturnRows(pgxmockv3.NewRows([]string{"order_id", "sms_id", "sender", "text", "code", "received_at"}))

	applied, err := storage.UpdateStatus(context.Background(), order.ID, model.OrderStatusCanceled)
	if err != nil {
		t.Fatalf("stale update must not error: %v", err)
	}
	if applied {
		t.Fatal("stale update must not be applied")
	}
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	storage, mock := newMockStorage(t)

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(model.OrderStatusReceived, "missing", []string{"PENDING"}).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT id, owner_id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	if _, err := storage.UpdateStatus(context.Background(), "missing", model.OrderStatusReceived); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendSMS(t *testing.T) {
	storage, mock := newMockStorage(t)
	sms := model.SMS{ID: "101", Sender: "Telegram", Text: "Login code: 415127", Code: "415127", ReceivedAt: time.Now()}

	mock.ExpectExec("INSERT INTO order_sms").
		WithArgs("11631253", sms.ID, sms.Sender, sms.Text, sms.Code, sms.ReceivedAt).
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))

	applied, err := storage.AppendSMS(context.Background(), "11631253", sms)
	if err != nil || !applied {
		t.Fatalf("expected applied, got applied=%v err=%v", applied, err)
	}

	mock.ExpectExec("INSERT INTO order_sms").
		WithArgs("11631253", sms.ID, sms.Sender, sms.Text, sms.Code, sms.ReceivedAt).
		WillReturnResult(pgxmockv3.NewResult("INSERT", 0))

	applied, err = storage.AppendSMS(context.Background(), "11631253", sms)
	if err != nil || applied {
		t.Fatalf("expected duplicate skipped, got applied=%v err=%v", applied, err)
	}
}

func TestAppendSMSUnknownOrder(t *testing.T) {
	storage, mock := newMockStorage(t)
	sms := model.SMS{ID: "101", ReceivedAt: time.Now()}

	mock.ExpectExec("INSERT INTO order_sms").
		WithArgs("missing", sms.ID, sms.Sender, sms.Text, sms.Code, sms.ReceivedAt).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	if _, err := storage.AppendSMS(context.Background(), "missing", sms); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	storage, mock := newMockStorage(t)

	mock.ExpectExec("DELETE FROM orders").
		WithArgs("11631253").
		WillReturnResult(pgxmockv3.NewResult("DELETE", 1))
	if err := storage.Remove(context.Background(), "11631253"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("DELETE FROM orders").
		WithArgs("missing").
		WillReturnResult(pgxmockv3.NewResult("DELETE", 0))
	if err := storage.Remove(context.Background(), "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListByOwner(t *testing.T) {
	storage, mock := newMockStorage(t)
	order := sampleOrder()

	mock.ExpectQuery("SELECT id, owner_id").
		WithArgs(order.OwnerID).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "owner_id", "product", "country", "operator", "phone", "price", "status", "created_at", "expires_at"}).
			AddRow(order.ID, order.OwnerID, order.Product, order.Country, order.Operator,
				order.Phone, order.Price, order.Status, order.CreatedAt, order.ExpiresAt))
	mock.ExpectQuery("SELECT order_id, sms_id").
		WithArgs([]string{order.ID}).
		WillReturnRows(pgxmockv3.NewRows([]string{"order_id", "sms_id", "sender", "text", "code", "received_at"}))

	orders, err := storage.ListByOwner(context.Background(), order.OwnerID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != order.ID {
		t.Fatalf("unexpected orders %+v", orders)
	}
}

func TestHealthCheck(t *testing.T) {
	storage, mock := newMockStorage(t)
	mock.ExpectPing()
	if err := storage.HealthCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
