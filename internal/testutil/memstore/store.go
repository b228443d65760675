// Package memstore is an in-memory implementation of every repository and of
// tx.Manager for service tests. It enforces the same natural-key uniqueness as
// the database schema and rolls back all writes of a failed transaction.
package memstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/domain/catalog"
	"retailops/internal/domain/distribution"
	"retailops/internal/domain/purchase"
	"retailops/internal/domain/warehouse"
)

type state struct {
	stores        map[id.ID]catalog.Store
	categories    map[id.ID]catalog.Category
	suppliers     map[id.ID]catalog.Supplier
	products      map[id.ID]catalog.Product
	warehouses    map[id.ID]warehouse.Warehouse
	distributions map[id.ID]distribution.Distribution
	purchases     map[id.ID]purchase.Purchase
	users         map[string]string
	sequences     map[string]int64
}

func newState() *state {
	return &state{
		stores:        make(map[id.ID]catalog.Store),
		categories:    make(map[id.ID]catalog.Category),
		suppliers:     make(map[id.ID]catalog.Supplier),
		products:      make(map[id.ID]catalog.Product),
		warehouses:    make(map[id.ID]warehouse.Warehouse),
		distributions: make(map[id.ID]distribution.Distribution),
		purchases:     make(map[id.ID]purchase.Purchase),
		users:         make(map[string]string),
		sequences:     make(map[string]int64),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (st *state) clone() *state {
	purchases := make(map[id.ID]purchase.Purchase, len(st.purchases))
	for k, p := range st.purchases {
		p.Items = append([]purchase.Item(nil), p.Items...)
		purchases[k] = p
	}
	return &state{
		stores:        cloneMap(st.stores),
		categories:    cloneMap(st.categories),
		suppliers:     cloneMap(st.suppliers),
		products:      cloneMap(st.products),
		warehouses:    cloneMap(st.warehouses),
		distributions: cloneMap(st.distributions),
		purchases:     purchases,
		users:         cloneMap(st.users),
		sequences:     cloneMap(st.sequences),
	}
}

type fault struct {
	after int
	err   error
}

type txKey struct{}

// Store holds all data. Transactions are serialized.
type Store struct {
	txMu sync.Mutex

	mu     sync.Mutex
	data   *state
	faults map[string]*fault
	misses map[string]int
	calls  map[string]int
	now    func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		data:   newState(),
		faults: make(map[string]*fault),
		misses: make(map[string]int),
		calls:  make(map[string]int),
		now:    time.Now,
	}
}

// RunInTransaction implements tx.Manager. Nested calls join the outer transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.restore(snapshot)
			panic(r)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, true))
}

func (s *Store) restore(snapshot *state) {
	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
}

// FailOn makes the n-th next call (1-based) of op fail with err.
// Ops are "<table>.<method>", e.g. "products.insert" or "distributions.insert".
func (s *Store) FailOn(op string, n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = &fault{after: n, err: err}
}

// MissOnce makes the next lookup of op report NotFound even when a row exists,
// imitating a writer that checked before a concurrent insert committed.
// Ops are "<table>.find".
func (s *Store) MissOnce(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.misses[op]++
}

// Calls returns how many times op ran.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// check records the call and returns an injected fault. Caller holds mu.
func (s *Store) check(op string) error {
	s.calls[op]++
	f, ok := s.faults[op]
	if !ok {
		return nil
	}
	f.after--
	if f.after == 0 {
		delete(s.faults, op)
		return f.err
	}
	return nil
}

// missed consumes a pending MissOnce. Caller holds mu.
func (s *Store) missed(op string) bool {
	if s.misses[op] > 0 {
		s.misses[op]--
		return true
	}
	return false
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// --- seeding helpers ---

// AddUser registers a username in the user directory.
func (s *Store) AddUser(userID, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.users[userID] = username
}

// AddStore inserts a store and returns it.
func (s *Store) AddStore(name, code string, kind catalog.StoreKind, status catalog.StoreStatus) *catalog.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := catalog.Store{
		ID:        id.New(),
		Name:      name,
		Code:      code,
		Kind:      kind,
		Status:    status,
		CreatedAt: s.timestamp(),
		UpdatedAt: s.timestamp(),
	}
	s.data.stores[st.ID] = st
	return &st
}

// AddRetailStore inserts an active retail store.
func (s *Store) AddRetailStore(name string) *catalog.Store {
	code := strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
	return s.AddStore(name, code, catalog.StoreKindRetail, catalog.StoreActive)
}

// ProductByCode returns a copy of the product with code in storeID, or nil.
func (s *Store) ProductByCode(storeID id.ID, code string) *catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.data.products {
		if p.StoreID == storeID && p.ProductCode == code {
			return &p
		}
	}
	return nil
}

// RemoveProduct deletes a product row outright.
func (s *Store) RemoveProduct(productID id.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.products, productID)
}

// CountCategories returns how many categories storeID owns.
func (s *Store) CountCategories(storeID id.ID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.data.categories {
		if c.StoreID == storeID {
			n++
		}
	}
	return n
}

// CountSuppliers returns how many suppliers storeID owns.
func (s *Store) CountSuppliers(storeID id.ID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.data.suppliers {
		if c.StoreID == storeID {
			n++
		}
	}
	return n
}

// CountProducts returns how many products storeID owns.
func (s *Store) CountProducts(storeID id.ID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.data.products {
		if p.StoreID == storeID {
			n++
		}
	}
	return n
}

// Distributions returns every distribution line ordered by id.
func (s *Store) Distributions() []distribution.Distribution {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]distribution.Distribution, 0, len(s.data.distributions))
	for _, d := range s.data.distributions {
		out = append(out, s.joinDistribution(d))
	}
	sortDistributionsByID(out)
	return out
}

// Purchases returns every purchase of storeID.
func (s *Store) Purchases(storeID id.ID) []purchase.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []purchase.Purchase
	for _, p := range s.data.purchases {
		if p.StoreID == storeID {
			p.Items = append([]purchase.Item(nil), p.Items...)
			out = append(out, p)
		}
	}
	return out
}

func notFound(entity string, key any) error {
	return apperror.NewNotFound(entity, key)
}
