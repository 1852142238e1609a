// Package snapshot turns generic document store results into listing records.
package snapshot

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
)

// Map converts every document of the snapshot, keeping store order.
func Map(s domain.Snapshot) []*domain.Listing {
	listings := make([]*domain.Listing, 0, len(s.Docs))
	for _, doc := range s.Docs {
		listings = append(listings, MapDocument(doc))
	}
	return listings
}

// MapDocument converts a single document. Missing or mistyped fields are
// left at their zero value.
func MapDocument(doc domain.Document) *domain.Listing {
	d := doc.Data
	l := &domain.Listing{
		ID:           doc.ID,
		Owner:        toString(d["owner"]),
		UID:          toString(d["uid"]),
		Title:        toString(d["title"]),
		Address:      toString(d["address"]),
		Area:         toString(d["area"]),
		Rooms:        int(toInt(d["rooms"])),
		Bathrooms:    int(toInt(d["bathrooms"])),
		Modality:     domain.Modality(toString(d["modality"])),
		Price:        toFloat(d["price"]),
		IPTU:         toString(d["iptu"]),
		Cond:         toString(d["cond"]),
		City:         toString(d["city"]),
		Neighborhood: toString(d["neighborhood"]),
		Tel:          toInt(d["tel"]),
		Desc:         toString(d["desc"]),
		Created:      toTime(d["created"]),
		Images:       toImages(d["images"]),
	}
	if v, ok := d["parkingSpace"]; ok && v != nil && v != "" {
		n := int(toInt(v))
		l.ParkingSpace = &n
	}
	return l
}

func toString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int, int32, int64:
		return fmt.Sprintf("%d", x)
	default:
		return fmt.Sprint(x)
	}
}

func toFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		f, _ := x.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func toInt(v interface{}) int64 {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return int64(math.Trunc(toFloat(x)))
		}
		return n
	default:
		return int64(math.Trunc(toFloat(x)))
	}
}

func toTime(v interface{}) time.Time {
	switch x := v.(type) {
	case time.Time:
		return x
	case string:
		t, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return time.Time{}
		}
		return t
	case int64:
		return time.UnixMilli(x).UTC()
	default:
		return time.Time{}
	}
}

func toImages(v interface{}) []domain.Image {
	var raw []map[string]interface{}
	switch x := v.(type) {
	case []map[string]interface{}:
		raw = x
	case []interface{}:
		for _, item := range x {
			if m, ok := item.(map[string]interface{}); ok {
				raw = append(raw, m)
			}
		}
	case []domain.Image:
		return append([]domain.Image(nil), x...)
	}

	images := make([]domain.Image, 0, len(raw))
	for _, m := range raw {
		images = append(images, domain.Image{
			Name: toString(m["name"]),
			UID:  toString(m["uid"]),
			URL:  toString(m["url"]),
		})
	}
	return images
}
