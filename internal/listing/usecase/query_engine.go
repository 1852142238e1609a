package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/Abdurahmanit/webimoveis/internal/listing/currency"
	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
	"github.com/Abdurahmanit/webimoveis/internal/listing/snapshot"
	"github.com/Abdurahmanit/webimoveis/internal/platform/logger"
	"github.com/Abdurahmanit/webimoveis/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// QueryEngine owns the visible result set of one view and the single filter
// driving it. Every activation replaces the filter, issues exactly one query
// and swaps the results in only if no newer activation was issued meanwhile.
type QueryEngine struct {
	repo     domain.ListingRepository
	identity domain.IdentitySource
	logger   *logger.Logger
	metrics  *metrics.MetricsManager
	tracer   trace.Tracer

	mu      sync.Mutex
	seq     uint64
	owner   string // non-empty when the engine shows one user's listings
	filter  domain.FilterState
	results []*domain.Listing

	// scope the current results were loaded with, restored on failure
	appliedOwner  string
	appliedFilter domain.FilterState
}

func NewQueryEngine(repo domain.ListingRepository, identity domain.IdentitySource, m *metrics.MetricsManager, log *logger.Logger) *QueryEngine {
	return &QueryEngine{
		repo:          repo,
		identity:      identity,
		logger:        log,
		metrics:       m,
		tracer:        otel.Tracer("webimoveis/listing/usecase"),
		filter:        domain.NoFilter(),
		results:       []*domain.Listing{},
		appliedFilter: domain.NoFilter(),
	}
}

// LoadAll shows every listing, newest first, with no filter.
func (e *QueryEngine) LoadAll(ctx context.Context) error {
	return e.activate(ctx, "QueryEngine.LoadAll", func() domain.FilterState {
		e.owner = ""
		return domain.NoFilter()
	})
}

// LoadOwned shows the signed-in user's listings, newest first.
func (e *QueryEngine) LoadOwned(ctx context.Context) error {
	id := e.identity.Identity()
	if id == nil {
		return domain.ErrUnauthenticated
	}
	return e.activate(ctx, "QueryEngine.LoadOwned", func() domain.FilterState {
		e.owner = id.UID
		return domain.NoFilter()
	})
}

func (e *QueryEngine) SelectRooms(ctx context.Context, n int) error {
	return e.selectCount(ctx, "QueryEngine.SelectRooms", "rooms", n, domain.RoomsFilter)
}

func (e *QueryEngine) SelectBathrooms(ctx context.Context, n int) error {
	return e.selectCount(ctx, "QueryEngine.SelectBathrooms", "bathrooms", n, domain.BathroomsFilter)
}

func (e *QueryEngine) SelectParkingSpaces(ctx context.Context, n int) error {
	return e.selectCount(ctx, "QueryEngine.SelectParkingSpaces", "parkingSpaces", n, domain.ParkingSpacesFilter)
}

// selectCount activates a count bucket. Selecting the active bucket again
// toggles the filter off.
func (e *QueryEngine) selectCount(ctx context.Context, op, field string, n int, build func(int) domain.FilterState) error {
	if n < 1 || n > domain.CountBucketMax {
		return domain.NewValidationError(field, "choose 1, 2 or 3+")
	}
	next := build(n)
	return e.activate(ctx, op, func() domain.FilterState {
		if e.filter.Kind == next.Kind && e.filter.Count == next.Count {
			return domain.NoFilter()
		}
		return next
	})
}

// SetMinPrice filters by price >= the amount typed in input. An input without
// digits clears the filter.
func (e *QueryEngine) SetMinPrice(ctx context.Context, input string) error {
	return e.setPrice(ctx, "QueryEngine.SetMinPrice", input, domain.MinPriceFilter)
}

func (e *QueryEngine) SetMaxPrice(ctx context.Context, input string) error {
	return e.setPrice(ctx, "QueryEngine.SetMaxPrice", input, domain.MaxPriceFilter)
}

func (e *QueryEngine) setPrice(ctx context.Context, op, input string, build func(float64, string) domain.FilterState) error {
	next := domain.NoFilter()
	if currency.HasDigits(input) {
		next = build(currency.ParseCents(input), currency.FormatInput(input))
	}
	return e.activate(ctx, op, func() domain.FilterState {
		return next
	})
}

func (e *QueryEngine) SelectModality(ctx context.Context, m domain.Modality) error {
	if !m.Valid() {
		return domain.NewValidationError("modality", "select sale or rent")
	}
	return e.activate(ctx, "QueryEngine.SelectModality", func() domain.FilterState {
		return domain.ModalityFilter(m)
	})
}

// Search matches cities starting with the given text, case-insensitively.
func (e *QueryEngine) Search(ctx context.Context, city string) error {
	city = strings.ToUpper(strings.TrimSpace(city))
	next := domain.NoFilter()
	if city != "" {
		next = domain.CitySearchFilter(city)
	}
	return e.activate(ctx, "QueryEngine.Search", func() domain.FilterState {
		return next
	})
}

func (e *QueryEngine) Clear(ctx context.Context) error {
	return e.activate(ctx, "QueryEngine.Clear", func() domain.FilterState {
		return domain.NoFilter()
	})
}

// Results returns a copy of the visible listings.
func (e *QueryEngine) Results() []*domain.Listing {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*domain.Listing, len(e.results))
	copy(out, e.results)
	return out
}

func (e *QueryEngine) Filter() domain.FilterState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter
}

// Evict drops a deleted listing from the visible results.
func (e *QueryEngine) Evict(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.results[:0:0]
	for _, l := range e.results {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	e.results = kept
}

// activate runs one filter transition. next is called with mu held and
// returns the filter to apply.
func (e *QueryEngine) activate(ctx context.Context, op string, next func() domain.FilterState) error {
	ctx, span := e.tracer.Start(ctx, op)
	defer span.End()

	e.mu.Lock()
	filter := next()
	e.seq++
	token := e.seq
	e.filter = filter
	q := e.queryFor(filter)
	e.mu.Unlock()

	span.SetAttributes(
		attribute.String("listing.filter", string(filter.Kind)),
		attribute.Int64("listing.query_token", int64(token)),
	)
	e.metrics.QueryIssued(string(filter.Kind))
	e.logger.Debug(op+": issuing query", "filter", string(filter.Kind), "query", q.String(), "token", token)

	snap, err := e.repo.Find(ctx, q)

	e.mu.Lock()
	defer e.mu.Unlock()
	if token != e.seq {
		e.metrics.StaleDiscarded()
		e.logger.Debug(op+": discarding stale response", "token", token, "latest", e.seq)
		return nil
	}
	if err != nil {
		e.filter = e.appliedFilter
		e.owner = e.appliedOwner
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Error(op+": query failed", "query", q.String(), "error", err.Error())
		return domain.RemoteCallFailure("load listings", err)
	}
	e.results = snapshot.Map(snap)
	e.appliedFilter = filter
	e.appliedOwner = e.owner
	span.SetAttributes(attribute.Int("listing.results", len(e.results)))
	return nil
}

// queryFor must be called with mu held.
func (e *QueryEngine) queryFor(f domain.FilterState) domain.Query {
	if e.owner == "" {
		return f.Query()
	}
	if f.IsNone() {
		return domain.OwnedQuery(e.owner)
	}
	q := f.Query()
	q.Where = append([]domain.Predicate{{Field: domain.FieldUID, Op: domain.OpEq, Value: e.owner}}, q.Where...)
	return q
}
