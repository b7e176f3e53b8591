package catalog

import (
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	lockProducts = "products"
	lockNextID   = "next_id"
)

type Options struct {
	Bounds   Bounds
	Log      *zap.Logger
	Registry prometheus.Registerer
}

// Service is the single owner of a catalog. It is safe for concurrent use;
// every Product it hands out is a copy.
type Service struct {
	id      string
	bounds  Bounds
	log     *zap.Logger
	metrics *serviceMetrics

	// products is kept sorted by ID.
	products guard[[]Product]
	// nextID holds the last ID handed out.
	nextID guard[uint64]
	// issued is the highest ID ever handed out; it survives deletes and a
	// corrupted nextID.
	issued atomic.Uint64
}

func NewService(opts Options) *Service {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	s := &Service{
		id:      uuid.NewString(),
		bounds:  opts.Bounds.Clamp(),
		metrics: newServiceMetrics(opts.Registry),
	}
	s.log = log.With(zap.String("catalog_instance", s.id))

	s.products.name = lockProducts
	s.products.repair = s.repairProducts
	s.products.onRecover = s.lockRecovered

	s.nextID.name = lockNextID
	s.nextID.repair = s.repairNextID
	s.nextID.onRecover = s.lockRecovered

	return s
}

func (s *Service) InstanceID() string { return s.id }

func (s *Service) Bounds() Bounds { return s.bounds }

func (s *Service) Create(np NewProduct) (Product, error) {
	if err := ValidateNewProduct(np, s.bounds); err != nil {
		s.metrics.op("create", resultInvalid)
		return Product{}, err
	}

	var id uint64
	s.nextID.write(func(next *uint64) {
		*next++
		id = *next
		s.issued.Store(id)
	})

	p := np.product(id)
	s.products.write(func(items *[]Product) {
		*items = insertSorted(*items, p)
		s.metrics.setProducts(len(*items))
	})

	s.metrics.op("create", resultOK)
	s.log.Debug("product created", zap.Uint64("id", id), zap.String("name", p.Name))
	return p, nil
}

func (s *Service) Get(id uint64) (Product, bool) {
	var (
		p  Product
		ok bool
	)
	s.products.read(func(items []Product) {
		if i, found := indexOf(items, id); found {
			p, ok = items[i], true
		}
	})
	return p, ok
}

func (s *Service) List() []Product {
	var out []Product
	s.products.read(func(items []Product) {
		out = cloneProducts(items)
	})
	return out
}

func (s *Service) Len() int {
	var n int
	s.products.read(func(items []Product) { n = len(items) })
	return n
}

func (s *Service) UpdateInventory(id uint64, stock int) (Product, error) {
	if err := ValidateStock(stock, s.bounds); err != nil {
		s.metrics.op("update_inventory", resultInvalid)
		return Product{}, invalidStock(id, stock, err)
	}

	var (
		p     Product
		found bool
	)
	s.products.write(func(items *[]Product) {
		i, ok := indexOf(*items, id)
		if !ok {
			return
		}
		(*items)[i].Stock = stock
		p, found = (*items)[i], true
	})

	if !found {
		s.metrics.op("update_inventory", resultNotFound)
		return Product{}, notFound(id)
	}

	s.metrics.op("update_inventory", resultOK)
	s.log.Debug("inventory updated", zap.Uint64("id", id), zap.Int("stock", stock))
	return p, nil
}

func (s *Service) Delete(id uint64) error {
	var found bool
	s.products.write(func(items *[]Product) {
		i, ok := indexOf(*items, id)
		if !ok {
			return
		}
		*items = removeAt(*items, i)
		found = true
		s.metrics.setProducts(len(*items))
	})

	if !found {
		s.metrics.op("delete", resultNotFound)
		return notFound(id)
	}

	s.metrics.op("delete", resultOK)
	s.log.Debug("product deleted", zap.Uint64("id", id))
	return nil
}

// Filter returns the products matching f in ID order. Price bounds outside
// MaxPriceScale or MaxPriceDigits are rejected before the catalog is locked.
func (s *Service) Filter(f Filter) ([]Product, error) {
	if err := ValidateFilter(f); err != nil {
		s.metrics.op("filter", resultInvalid)
		return nil, err
	}

	var out []Product
	s.products.read(func(items []Product) {
		out = filterProducts(items, f)
	})
	return out, nil
}

func (s *Service) lockRecovered(lock string, fixed int) {
	s.metrics.recovered(lock)
	s.log.Warn("recovered poisoned lock", zap.String("lock", lock), zap.Int("repaired", fixed))
}

// repairProducts restores the storage invariants after a writer panicked:
// strictly increasing IDs, no duplicates, no record outside price/stock limits.
func (s *Service) repairProducts(items *[]Product) int {
	in := *items
	fixed := 0
	if !sort.SliceIsSorted(in, func(i, j int) bool { return in[i].ID < in[j].ID }) {
		sort.SliceStable(in, func(i, j int) bool { return in[i].ID < in[j].ID })
		fixed++
	}

	out := in[:0]
	for _, p := range in {
		dup := len(out) > 0 && out[len(out)-1].ID == p.ID
		if dup || p.ID == 0 || p.Price.IsNegative() || !priceInRange(p.Price) || ValidateStock(p.Stock, s.bounds) != nil {
			fixed++
			continue
		}
		out = append(out, p)
	}
	clear(in[len(out):])

	*items = out
	s.metrics.setProducts(len(out))
	return fixed
}

// repairNextID never lets the counter fall behind an ID that was ever issued
// or that sits in storage. Called with nextID held; taking the products lock
// here keeps the nextID -> products order used by Create.
func (s *Service) repairNextID(next *uint64) int {
	highest := s.issued.Load()
	s.products.read(func(items []Product) {
		if n := len(items); n > 0 && items[n-1].ID > highest {
			highest = items[n-1].ID
		}
	})
	if *next < highest {
		*next = highest
		return 1
	}
	return 0
}

func indexOf(items []Product, id uint64) (int, bool) {
	i := sort.Search(len(items), func(i int) bool { return items[i].ID >= id })
	return i, i < len(items) && items[i].ID == id
}

func insertSorted(items []Product, p Product) []Product {
	if n := len(items); n == 0 || items[n-1].ID < p.ID {
		return append(items, p)
	}
	i, _ := indexOf(items, p.ID)
	items = append(items, Product{})
	copy(items[i+1:], items[i:])
	items[i] = p
	return items
}

func removeAt(items []Product, i int) []Product {
	copy(items[i:], items[i+1:])
	items[len(items)-1] = Product{}
	return items[:len(items)-1]
}
