package mongodb

import (
	"fmt"
	"time"

	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// listingDocument is the stored shape of a listing in the "imoveis" collection.
type listingDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Title        string             `bson:"title"`
	Address      string             `bson:"address"`
	Area         string             `bson:"area"`
	Rooms        int                `bson:"rooms"`
	Bathrooms    int                `bson:"bathrooms"`
	ParkingSpace *int               `bson:"parkingSpace,omitempty"`
	Modality     string             `bson:"modality"`
	Price        float64            `bson:"price"`
	IPTU         string             `bson:"iptu,omitempty"`
	Cond         string             `bson:"cond,omitempty"`
	City         string             `bson:"city"`
	Neighborhood string             `bson:"neighborhood"`
	Tel          int64              `bson:"tel"`
	Desc         string             `bson:"desc"`
	Created      time.Time          `bson:"created"`
	Owner        string             `bson:"owner"`
	UID          string             `bson:"uid"`
	Images       []imageDocument    `bson:"images"`
}

type imageDocument struct {
	Name string `bson:"name"`
	UID  string `bson:"uid"`
	URL  string `bson:"url"`
}

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    time.Time          `bson:"created_at"`
}

// toListingDocument converts the domain listing. An empty ID stays
// NilObjectID so that the repository assigns one.
func toListingDocument(l *domain.Listing) (*listingDocument, error) {
	if l == nil {
		return nil, nil
	}

	docID := primitive.NilObjectID
	if l.ID != "" {
		var err error
		docID, err = primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, fmt.Errorf("toListingDocument: invalid ID format '%s': %w", l.ID, err)
		}
	}

	images := make([]imageDocument, 0, len(l.Images))
	for _, img := range l.Images {
		images = append(images, imageDocument{Name: img.Name, UID: img.UID, URL: img.URL})
	}

	return &listingDocument{
		ID:           docID,
		Title:        l.Title,
		Address:      l.Address,
		Area:         l.Area,
		Rooms:        l.Rooms,
		Bathrooms:    l.Bathrooms,
		ParkingSpace: l.ParkingSpace,
		Modality:     string(l.Modality),
		Price:        l.Price,
		IPTU:         l.IPTU,
		Cond:         l.Cond,
		City:         l.City,
		Neighborhood: l.Neighborhood,
		Tel:          l.Tel,
		Desc:         l.Desc,
		Created:      l.Created,
		Owner:        l.Owner,
		UID:          l.UID,
		Images:       images,
	}, nil
}

func toUserDocument(a *domain.Account) (*userDocument, error) {
	docID := primitive.NilObjectID
	if a.ID != "" {
		var err error
		docID, err = primitive.ObjectIDFromHex(a.ID)
		if err != nil {
			return nil, fmt.Errorf("toUserDocument: invalid ID format '%s': %w", a.ID, err)
		}
	}
	return &userDocument{
		ID:           docID,
		Name:         a.Name,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt,
	}, nil
}

func toDomainAccount(d *userDocument) *domain.Account {
	if d == nil {
		return nil
	}
	return &domain.Account{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

// toDocument turns a raw result into a store-agnostic document. Driver types
// are replaced by plain Go values so the snapshot mapper never sees bson.
func toDocument(raw bson.M) domain.Document {
	doc := domain.Document{Data: make(map[string]interface{}, len(raw))}
	for k, v := range raw {
		if k == "_id" {
			switch id := v.(type) {
			case primitive.ObjectID:
				doc.ID = id.Hex()
			default:
				doc.ID = fmt.Sprint(id)
			}
			continue
		}
		doc.Data[k] = plain(v)
	}
	return doc
}

func plain(v interface{}) interface{} {
	switch x := v.(type) {
	case primitive.DateTime:
		return x.Time().UTC()
	case primitive.ObjectID:
		return x.Hex()
	case primitive.A:
		out := make([]interface{}, 0, len(x))
		for _, item := range x {
			out = append(out, plain(item))
		}
		return out
	case bson.M:
		out := make(map[string]interface{}, len(x))
		for k, item := range x {
			out[k] = plain(item)
		}
		return out
	case bson.D:
		out := make(map[string]interface{}, len(x))
		for _, e := range x {
			out[e.Key] = plain(e.Value)
		}
		return out
	default:
		return v
	}
}

var mongoOps = map[domain.Op]string{
	domain.OpEq:  "$eq",
	domain.OpGte: "$gte",
	domain.OpLte: "$lte",
}

// buildFilter translates a query into a bson filter and find options.
// Predicates on the same field are merged into one operator document.
func buildFilter(q domain.Query) (bson.M, *options.FindOptions, error) {
	filter := bson.M{}
	for _, p := range q.Where {
		op, ok := mongoOps[p.Op]
		if !ok {
			return nil, nil, fmt.Errorf("buildFilter: unsupported operator %q on %s", p.Op, p.Field)
		}
		ops, _ := filter[p.Field].(bson.M)
		if ops == nil {
			ops = bson.M{}
			filter[p.Field] = ops
		}
		ops[op] = p.Value
	}
	for field, v := range filter {
		if ops := v.(bson.M); len(ops) == 1 {
			if eq, ok := ops["$eq"]; ok {
				filter[field] = eq
			}
		}
	}

	opts := options.Find()
	if q.OrderBy != nil {
		dir := 1
		if q.OrderBy.Desc {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: q.OrderBy.Field, Value: dir}})
	}
	return filter, opts, nil
}
