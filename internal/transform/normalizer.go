package transform

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"unicode/utf8"

	"fashionetl/internal/model"
)

// Normalizer cleans a batch of raw products in ordered passes: title, fields,
// duplicates, completeness and type finalization.
type Normalizer struct {
	price    PriceCleaner
	workers  int
	observer Observer
}

type Option func(*Normalizer)

// WithRate sets the USD to target currency conversion rate.
func WithRate(rate float64) Option {
	return func(n *Normalizer) {
		if rate > 0 {
			n.price.Rate = rate
		}
	}
}

// WithWorkers cleans fields on n goroutines. Output order is unaffected.
func WithWorkers(workers int) Option {
	return func(n *Normalizer) {
		if workers > 0 {
			n.workers = workers
		}
	}
}

func WithObserver(o Observer) Option {
	return func(n *Normalizer) {
		if o != nil {
			n.observer = o
		}
	}
}

func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		price:    PriceCleaner{Rate: DefaultRate},
		workers:  1,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// coreFields is also the duplicate key. Missing values are zero with the
// flag unset, so two missing values compare equal.
type coreFields struct {
	title     string
	price     float64
	hasPrice  bool
	rating    float64
	hasRating bool
	colors    int
	hasColors bool
	size      string
	hasSize   bool
	gender    string
	hasGender bool
}

func (c coreFields) complete() bool {
	return c.hasPrice && c.hasRating && c.hasColors && c.hasSize && c.hasGender
}

type pending struct {
	coreFields
	timestamp string
}

// Normalize never returns nil; a batch that empties at any pass yields an
// empty slice.
func (n *Normalizer) Normalize(raws []model.RawProduct) []model.Product {
	out := []model.Product{}
	n.observer.StageDone(StageRaw, len(raws))
	if len(raws) == 0 {
		return out
	}

	// 1. Título
	var kept []model.RawProduct
	var titles []string
	for _, r := range raws {
		if title, ok := CleanTitle(r.Title); ok {
			kept = append(kept, r)
			titles = append(titles, title)
		}
	}
	n.observer.StageDone(StageTitle, len(kept))
	if len(kept) == 0 {
		return out
	}

	// 2. Demais campos
	rows := n.cleanFields(kept, titles)

	// 3. Duplicados
	rows = dedupe(rows)
	n.observer.StageDone(StageDedupe, len(rows))
	if len(rows) == 0 {
		return out
	}

	// 4. Campos obrigatórios
	complete := rows[:0]
	for _, p := range rows {
		if p.complete() {
			complete = append(complete, p)
		}
	}
	n.observer.StageDone(StageComplete, len(complete))
	if len(complete) == 0 {
		return out
	}

	// 5. Tipos finais
	out, err := finalize(complete)
	if err != nil {
		n.observer.CoercionFailed(err)
	}
	n.observer.StageDone(StageFinal, len(out))
	return out
}

func (n *Normalizer) cleanFields(raws []model.RawProduct, titles []string) []pending {
	rows := make([]pending, len(raws))
	if n.workers <= 1 || len(raws) < 2 {
		for i := range raws {
			rows[i] = n.cleanRecord(raws[i], titles[i])
		}
		return rows
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < n.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rows[i] = n.cleanRecord(raws[i], titles[i])
			}
		}()
	}
	for i := range raws {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return rows
}

func (n *Normalizer) cleanRecord(r model.RawProduct, title string) pending {
	p := pending{timestamp: r.Timestamp}
	p.title = title
	p.price, p.hasPrice = n.price.Clean(r.Price)
	p.rating, p.hasRating = CleanRating(r.Rating)
	p.colors, p.hasColors = CleanColors(r.Colors)
	p.size, p.hasSize = CleanSize(r.Size)
	p.gender, p.hasGender = CleanGender(r.Gender)
	return p
}

func dedupe(rows []pending) []pending {
	seen := make(map[coreFields]struct{}, len(rows))
	out := make([]pending, 0, len(rows))
	for _, p := range rows {
		if _, dup := seen[p.coreFields]; dup {
			continue
		}
		seen[p.coreFields] = struct{}{}
		out = append(out, p)
	}
	return out
}

var errCoercion = errors.New("final type coercion failed")

func (p pending) product() model.Product {
	return model.Product{
		Title:     p.title,
		Price:     p.price,
		Rating:    p.rating,
		Colors:    p.colors,
		Size:      p.size,
		Gender:    p.gender,
		Timestamp: p.timestamp,
	}
}

// finalize converts complete rows to products. If any row fails coercion the
// whole batch is returned with its cleaned values as-is, together with the error.
func finalize(rows []pending) ([]model.Product, error) {
	out := make([]model.Product, len(rows))
	var errs []error
	for i, p := range rows {
		if err := checkTypes(p); err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", i, err))
		}
		out[i] = p.product()
	}
	if len(errs) > 0 {
		return out, fmt.Errorf("%w: %w", errCoercion, errors.Join(errs...))
	}
	return out, nil
}

func checkTypes(p pending) error {
	strs := []struct{ name, v string }{{"title", p.title}, {"size", p.size}, {"gender", p.gender}, {"timestamp", p.timestamp}}
	for _, f := range strs {
		if !utf8.ValidString(f.v) {
			return fmt.Errorf("%s is not valid UTF-8", f.name)
		}
	}
	if math.IsNaN(p.price) || math.IsInf(p.price, 0) {
		return errors.New("price is not a finite number")
	}
	if math.IsNaN(p.rating) || math.IsInf(p.rating, 0) {
		return errors.New("rating is not a finite number")
	}
	if p.colors < 0 {
		return fmt.Errorf("colors is negative: %d", p.colors)
	}
	return nil
}
