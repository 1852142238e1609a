package mongodb

import (
	"testing"
	"time"

	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildFilter_MergesRangeOnSameField(t *testing.T) {
	filter, opts, err := buildFilter(domain.CitySearchFilter("SP").Query())
	require.NoError(t, err)

	assert.Equal(t, bson.M{"city": bson.M{"$gte": "SP", "$lte": "SP" + domain.PrefixSentinel}}, filter)
	assert.Nil(t, opts.Sort)
}

func TestBuildFilter_EqualityAndSort(t *testing.T) {
	filter, opts, err := buildFilter(domain.OwnedQuery("u1"))
	require.NoError(t, err)

	assert.Equal(t, bson.M{"uid": "u1"}, filter)
	assert.Equal(t, bson.D{{Key: "created", Value: -1}}, opts.Sort)
}

func TestBuildFilter_CountBucket(t *testing.T) {
	filter, _, err := buildFilter(domain.RoomsFilter(3).Query())
	require.NoError(t, err)
	assert.Equal(t, bson.M{"rooms": bson.M{"$gte": 3}}, filter)

	filter, _, err = buildFilter(domain.Query{})
	require.NoError(t, err)
	assert.Empty(t, filter)
}

func TestBuildFilter_UnknownOperator(t *testing.T) {
	_, _, err := buildFilter(domain.Query{Where: []domain.Predicate{{Field: "price", Op: "!=", Value: 1}}})
	assert.Error(t, err)
}

func TestToDocument_NormalizesDriverTypes(t *testing.T) {
	id := primitive.NewObjectID()
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	raw := bson.M{
		"_id":     id,
		"title":   "Casa",
		"created": primitive.NewDateTimeFromTime(created),
		"images":  primitive.A{bson.M{"name": "n1", "uid": "u1", "url": "http://x"}, bson.D{{Key: "name", Value: "n2"}}},
	}

	doc := toDocument(raw)
	assert.Equal(t, id.Hex(), doc.ID)
	assert.NotContains(t, doc.Data, "_id")
	assert.Equal(t, created, doc.Data["created"])
	assert.Equal(t, []interface{}{
		map[string]interface{}{"name": "n1", "uid": "u1", "url": "http://x"},
		map[string]interface{}{"name": "n2"},
	}, doc.Data["images"])
}

func TestToListingDocument(t *testing.T) {
	parking := 2
	doc, err := toListingDocument(&domain.Listing{
		Title:        "Casa",
		ParkingSpace: &parking,
		Modality:     domain.ModalityRent,
		Images:       []domain.Image{{Name: "n", UID: "u", URL: "x"}},
	})
	require.NoError(t, err)
	assert.Equal(t, primitive.NilObjectID, doc.ID)
	assert.Equal(t, "rent", doc.Modality)
	assert.Equal(t, []imageDocument{{Name: "n", UID: "u", URL: "x"}}, doc.Images)

	_, err = toListingDocument(&domain.Listing{ID: "not-hex"})
	assert.Error(t, err)
}
