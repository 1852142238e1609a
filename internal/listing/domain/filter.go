package domain

import (
	"fmt"
	"strings"
)

// Field names of the persisted listing document used by queries.
const (
	FieldCreated      = "created"
	FieldRooms        = "rooms"
	FieldBathrooms    = "bathrooms"
	FieldParkingSpace = "parkingSpace"
	FieldPrice        = "price"
	FieldModality     = "modality"
	FieldCity         = "city"
	FieldUID          = "uid"
)

// PrefixSentinel is appended to a prefix to build the upper bound of a
// "starts with" range query on stores that only order strings.
const PrefixSentinel = "\uf8ff"

// CountBucketMax is the "3+" bucket exposed by the room/bathroom/parking filters.
const CountBucketMax = 3

type Op string

const (
	OpEq  Op = "=="
	OpGte Op = ">="
	OpLte Op = "<="
)

type Predicate struct {
	Field string
	Op    Op
	Value interface{}
}

type OrderBy struct {
	Field string
	Desc  bool
}

// Query is the store-agnostic description of one collection query.
type Query struct {
	Where   []Predicate
	OrderBy *OrderBy
}

func (q Query) String() string {
	parts := make([]string, 0, len(q.Where)+1)
	for _, p := range q.Where {
		parts = append(parts, fmt.Sprintf("%s %s %v", p.Field, p.Op, p.Value))
	}
	if q.OrderBy != nil {
		dir := "asc"
		if q.OrderBy.Desc {
			dir = "desc"
		}
		parts = append(parts, fmt.Sprintf("order by %s %s", q.OrderBy.Field, dir))
	}
	return strings.Join(parts, ", ")
}

// DefaultQuery is the unfiltered listing query, newest first.
func DefaultQuery() Query {
	return Query{OrderBy: &OrderBy{Field: FieldCreated, Desc: true}}
}

// OwnedQuery selects the listings of one owner, newest first.
func OwnedQuery(uid string) Query {
	return Query{
		Where:   []Predicate{{Field: FieldUID, Op: OpEq, Value: uid}},
		OrderBy: &OrderBy{Field: FieldCreated, Desc: true},
	}
}

type FilterKind string

const (
	FilterNone          FilterKind = "none"
	FilterRooms         FilterKind = "rooms"
	FilterBathrooms     FilterKind = "bathrooms"
	FilterParkingSpaces FilterKind = "parkingSpaces"
	FilterMinPrice      FilterKind = "minPrice"
	FilterMaxPrice      FilterKind = "maxPrice"
	FilterModality      FilterKind = "modality"
	FilterCitySearch    FilterKind = "citySearch"
)

// FilterState is the single active facet of the listing list. Only the
// fields belonging to Kind are meaningful; constructors below are the only
// way the query engine builds one, so two dimensions can never be set at once.
type FilterState struct {
	Kind     FilterKind `json:"kind"`
	Count    int        `json:"count,omitempty"`
	Price    float64    `json:"price,omitempty"`
	Display  string     `json:"display,omitempty"`
	Modality Modality   `json:"modality,omitempty"`
	City     string     `json:"city,omitempty"`
}

func NoFilter() FilterState {
	return FilterState{Kind: FilterNone}
}

func RoomsFilter(n int) FilterState {
	return FilterState{Kind: FilterRooms, Count: n}
}

func BathroomsFilter(n int) FilterState {
	return FilterState{Kind: FilterBathrooms, Count: n}
}

func ParkingSpacesFilter(n int) FilterState {
	return FilterState{Kind: FilterParkingSpaces, Count: n}
}

// MinPriceFilter keeps both the parsed bound and the masked input shown to the user.
func MinPriceFilter(v float64, display string) FilterState {
	return FilterState{Kind: FilterMinPrice, Price: v, Display: display}
}

func MaxPriceFilter(v float64, display string) FilterState {
	return FilterState{Kind: FilterMaxPrice, Price: v, Display: display}
}

func ModalityFilter(m Modality) FilterState {
	return FilterState{Kind: FilterModality, Modality: m}
}

func CitySearchFilter(city string) FilterState {
	return FilterState{Kind: FilterCitySearch, City: city}
}

func (f FilterState) IsNone() bool {
	return f.Kind == "" || f.Kind == FilterNone
}

// IsDiscrete reports whether re-selecting the active value toggles the filter off.
func (f FilterState) IsDiscrete() bool {
	switch f.Kind {
	case FilterRooms, FilterBathrooms, FilterParkingSpaces:
		return true
	}
	return false
}

// ActiveDimensions counts the dimensions carrying a value. It is 0 for None
// and 1 for everything else.
func (f FilterState) ActiveDimensions() int {
	if f.IsNone() {
		return 0
	}
	return 1
}

// Query builds the one backend query for this state.
func (f FilterState) Query() Query {
	switch f.Kind {
	case FilterRooms:
		return countQuery(FieldRooms, f.Count)
	case FilterBathrooms:
		return countQuery(FieldBathrooms, f.Count)
	case FilterParkingSpaces:
		return countQuery(FieldParkingSpace, f.Count)
	case FilterMinPrice:
		return Query{Where: []Predicate{{Field: FieldPrice, Op: OpGte, Value: f.Price}}}
	case FilterMaxPrice:
		return Query{Where: []Predicate{{Field: FieldPrice, Op: OpLte, Value: f.Price}}}
	case FilterModality:
		return Query{Where: []Predicate{{Field: FieldModality, Op: OpEq, Value: string(f.Modality)}}}
	case FilterCitySearch:
		return Query{Where: []Predicate{
			{Field: FieldCity, Op: OpGte, Value: f.City},
			{Field: FieldCity, Op: OpLte, Value: f.City + PrefixSentinel},
		}}
	default:
		return DefaultQuery()
	}
}

func countQuery(field string, n int) Query {
	if n >= CountBucketMax {
		return Query{Where: []Predicate{{Field: field, Op: OpGte, Value: CountBucketMax}}}
	}
	return Query{Where: []Predicate{{Field: field, Op: OpEq, Value: n}}}
}
