package billing

import (
	"context"

	"github.com/posledger/backend/internal/domain/billing"
	"github.com/posledger/backend/internal/domain/catalog"
	"github.com/posledger/backend/internal/domain/inventory"
	"github.com/posledger/backend/internal/domain/partner"
)

// TransactionScope runs a unit of work. Every repository handed to fn shares
// one database transaction: fn returning an error rolls all of it back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories a billing unit of work
// may touch. They are only valid inside the Execute callback.
type TransactionalRepositories interface {
	BillRepo() billing.BillRepository
	PaymentRepo() billing.PaymentRepository
	SequenceRepo() billing.SequenceRepository
	LedgerRepo() inventory.TransactionRepository
	ProductRepo() catalog.ProductRepository
	CustomerRepo() partner.CustomerRepository
}

// NoOpTransactionScope calls fn directly with fixed repositories. Useful with
// in-memory fakes in tests.
type NoOpTransactionScope struct {
	Bills     billing.BillRepository
	Payments  billing.PaymentRepository
	Sequences billing.SequenceRepository
	Ledger    inventory.TransactionRepository
	Products  catalog.ProductRepository
	Customers partner.CustomerRepository
}

// Execute runs fn without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) BillRepo() billing.BillRepository            { return s.Bills }
func (s *NoOpTransactionScope) PaymentRepo() billing.PaymentRepository      { return s.Payments }
func (s *NoOpTransactionScope) SequenceRepo() billing.SequenceRepository    { return s.Sequences }
func (s *NoOpTransactionScope) LedgerRepo() inventory.TransactionRepository { return s.Ledger }
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository      { return s.Products }
func (s *NoOpTransactionScope) CustomerRepo() partner.CustomerRepository    { return s.Customers }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
