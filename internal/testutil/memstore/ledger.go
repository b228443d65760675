package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"retailops/internal/core/id"
	"retailops/internal/core/numerator"
	"retailops/internal/core/types"
	"retailops/internal/domain/distribution"
	"retailops/internal/domain/purchase"
)

var (
	_ distribution.Repository = (*DistributionRepo)(nil)
	_ purchase.Repository     = (*PurchaseRepo)(nil)
	_ numerator.Generator     = (*Numerator)(nil)
)

func sortDistributionsByID(rows []distribution.Distribution) {
	sort.Slice(rows, func(i, j int) bool { return id.Less(rows[i].ID, rows[j].ID) })
}

// joinDistribution fills the read-only joined columns. Caller holds mu.
func (s *Store) joinDistribution(d distribution.Distribution) distribution.Distribution {
	if st, ok := s.data.stores[d.StoreID]; ok {
		d.StoreName = st.Name
	}
	if p, ok := s.data.products[d.ProductID]; ok {
		d.ProductCode = p.ProductCode
		d.ProductName = p.Name
	}
	if name, ok := s.data.users[d.DistributedBy]; ok {
		d.DistributedByName = &name
	}
	return d
}

// DistributionRepo is the distribution.Repository view of Store.
type DistributionRepo struct{ s *Store }

// DistributionsRepo returns the distribution repository.
func (s *Store) DistributionsRepo() *DistributionRepo { return &DistributionRepo{s} }

func (r *DistributionRepo) Insert(_ context.Context, d *distribution.Distribution) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("distributions.insert"); err != nil {
		return err
	}
	if _, ok := r.s.data.distributions[d.ID]; ok {
		return fmt.Errorf("duplicate distribution id %s", d.ID)
	}
	r.s.data.distributions[d.ID] = *d
	return nil
}

func (r *DistributionRepo) GetByID(_ context.Context, distributionID id.ID) (*distribution.Distribution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.data.distributions[distributionID]
	if !ok {
		return nil, notFound("distribution", distributionID)
	}
	d = r.s.joinDistribution(d)
	return &d, nil
}

func (r *DistributionRepo) MarkAccepted(_ context.Context, distributionID id.ID, upd distribution.AcceptUpdate) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("distributions.accept"); err != nil {
		return false, err
	}
	d, ok := r.s.data.distributions[distributionID]
	if !ok || d.Status != distribution.StatusPendingAcceptance {
		return false, nil
	}

	d.Status = distribution.StatusAccepted
	acceptedAt := upd.AcceptedAt
	acceptedBy := upd.AcceptedBy
	d.AcceptedAt = &acceptedAt
	d.AcceptedBy = &acceptedBy
	notes := upd.Note
	if d.Notes != nil && *d.Notes != "" {
		notes = *d.Notes + "\n" + upd.Note
	}
	d.Notes = &notes
	r.s.data.distributions[distributionID] = d
	return true, nil
}

func (r *DistributionRepo) ListRows(_ context.Context, f distribution.RowFilter) ([]distribution.Distribution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []distribution.Distribution{}
	for _, d := range r.s.data.distributions {
		if d.WarehouseID != f.WarehouseID {
			continue
		}
		if f.StoreID != nil && d.StoreID != *f.StoreID {
			continue
		}
		if f.Status != nil && d.Status != *f.Status {
			continue
		}
		if f.From != nil && d.DistributedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && d.DistributedAt.After(*f.To) {
			continue
		}
		out = append(out, r.s.joinDistribution(d))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DistributedAt.Equal(out[j].DistributedAt) {
			return out[i].DistributedAt.After(out[j].DistributedAt)
		}
		return id.Less(out[i].ID, out[j].ID)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *DistributionRepo) ListByBatchKey(_ context.Context, key distribution.BatchKey) ([]distribution.Distribution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []distribution.Distribution{}
	for _, d := range r.s.data.distributions {
		if sameKey(d.Key(), key) {
			out = append(out, r.s.joinDistribution(d))
		}
	}
	sortDistributionsByID(out)
	return out, nil
}

func sameKey(a, b distribution.BatchKey) bool {
	return a.DistributedAt.Equal(b.DistributedAt) &&
		a.StoreID == b.StoreID &&
		a.WarehouseID == b.WarehouseID &&
		a.DistributedBy == b.DistributedBy
}

// PurchaseRepo is the purchase.Repository view of Store.
type PurchaseRepo struct{ s *Store }

// PurchasesRepo returns the purchase repository.
func (s *Store) PurchasesRepo() *PurchaseRepo { return &PurchaseRepo{s} }

func (r *PurchaseRepo) Insert(_ context.Context, p *purchase.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("purchases.insert"); err != nil {
		return err
	}
	for _, existing := range r.s.data.purchases {
		if existing.Number == p.Number {
			return fmt.Errorf("duplicate purchase number %s", p.Number)
		}
	}
	p.CreatedAt = r.s.timestamp()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	stored.Items = append([]purchase.Item(nil), p.Items...)
	r.s.data.purchases[p.ID] = stored
	return nil
}

func (r *PurchaseRepo) get(purchaseID id.ID) (*purchase.Purchase, error) {
	p, ok := r.s.data.purchases[purchaseID]
	if !ok {
		return nil, notFound("purchase", purchaseID)
	}
	p.Items = append([]purchase.Item(nil), p.Items...)
	return &p, nil
}

func (r *PurchaseRepo) GetByID(_ context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.get(purchaseID)
}

// GetForUpdate needs no lock: transactions are serialized.
func (r *PurchaseRepo) GetForUpdate(_ context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.get(purchaseID)
}

func (r *PurchaseRepo) UpdateStatus(_ context.Context, purchaseID id.ID, status purchase.Status, notes *string, total types.Money) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("purchases.update"); err != nil {
		return err
	}
	p, ok := r.s.data.purchases[purchaseID]
	if !ok {
		return notFound("purchase", purchaseID)
	}
	p.Status = status
	p.Notes = notes
	p.TotalAmount = total
	p.UpdatedAt = r.s.timestamp()
	r.s.data.purchases[purchaseID] = p
	return nil
}

func (r *PurchaseRepo) Delete(_ context.Context, purchaseID id.ID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("purchases.delete"); err != nil {
		return err
	}
	if _, ok := r.s.data.purchases[purchaseID]; !ok {
		return notFound("purchase", purchaseID)
	}
	delete(r.s.data.purchases, purchaseID)
	return nil
}

func (r *PurchaseRepo) List(_ context.Context, f purchase.Filter) ([]purchase.Purchase, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []purchase.Purchase
	for _, p := range r.s.data.purchases {
		if f.StoreID != nil && p.StoreID != *f.StoreID {
			continue
		}
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		if f.Source != nil && p.Source != *f.Source {
			continue
		}
		p.Items = append([]purchase.Item(nil), p.Items...)
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].PurchaseDate.Equal(matched[j].PurchaseDate) {
			return matched[i].PurchaseDate.After(matched[j].PurchaseDate)
		}
		return id.Less(matched[j].ID, matched[i].ID)
	})

	total := int64(len(matched))
	start := min(f.Offset, len(matched))
	end := len(matched)
	if f.Limit > 0 {
		end = min(start+f.Limit, len(matched))
	}
	return matched[start:end], total, nil
}

// Numerator is a numerator.Generator whose counters roll back with transactions.
type Numerator struct{ s *Store }

// Numerator returns the number generator.
func (s *Store) Numerator() *Numerator { return &Numerator{s} }

func (n *Numerator) GetNextNumber(_ context.Context, cfg numerator.Config, _ *numerator.Options, period time.Time) (string, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()

	key := fmt.Sprintf("%s_%d", cfg.Prefix, period.Year())
	n.s.data.sequences[key]++
	return fmt.Sprintf("%s-%d-%05d", cfg.Prefix, period.Year(), n.s.data.sequences[key]), nil
}
