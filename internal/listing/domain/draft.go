package domain

import (
	"strconv"
	"strings"

	"github.com/Abdurahmanit/webimoveis/internal/listing/currency"
)

// minPhoneDigits is a mobile number with area code, "(DD) NNNNN-NNNN".
const minPhoneDigits = 11

// Draft is the raw input of the "new listing" form, as typed by the user.
type Draft struct {
	Title        string `json:"title"`
	Address      string `json:"address"`
	Area         string `json:"area"`
	Rooms        string `json:"rooms"`
	Bathrooms    string `json:"bathrooms"`
	ParkingSpace string `json:"parkingSpace"`
	Modality     string `json:"modality"`
	Price        string `json:"price"`
	IPTU         string `json:"iptu"`
	Cond         string `json:"condominium"`
	City         string `json:"city"`
	Neighborhood string `json:"neighborhood"`
	Whatsapp     string `json:"whatsapp"`
	Description  string `json:"description"`
}

// Validate collects every field error; it never touches the network.
func (d Draft) Validate() error {
	verr := &ValidationError{}

	required := []struct{ field, value, msg string }{
		{"title", d.Title, "title is required"},
		{"address", d.Address, "address is required"},
		{"area", d.Area, "area is required"},
		{"price", d.Price, "price is required"},
		{"city", d.City, "city is required"},
		{"neighborhood", d.Neighborhood, "neighborhood is required"},
		{"description", d.Description, "description is required"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			verr.Add(r.field, r.msg)
		}
	}

	if _, err := parseCount(d.Rooms, 1); err != "" {
		verr.Add("rooms", err)
	}
	if _, err := parseCount(d.Bathrooms, 1); err != "" {
		verr.Add("bathrooms", err)
	}
	if strings.TrimSpace(d.ParkingSpace) != "" {
		if _, err := parseCount(d.ParkingSpace, 0); err != "" {
			verr.Add("parkingSpace", err)
		}
	}
	if strings.TrimSpace(d.Area) != "" && !currency.HasDigits(d.Area) {
		verr.Add("area", "enter a valid area")
	}
	if !Modality(d.Modality).Valid() {
		verr.Add("modality", "select sale or rent")
	}
	if len(currency.Digits(d.Whatsapp)) < minPhoneDigits {
		verr.Add("whatsapp", "enter a valid phone number")
	}

	if verr.Empty() {
		return nil
	}
	return verr
}

// ToListing normalizes a validated draft into the record that gets persisted.
// ID, Created, ownership and images are stamped by the caller.
func (d Draft) ToListing() *Listing {
	rooms, _ := parseCount(d.Rooms, 1)
	bathrooms, _ := parseCount(d.Bathrooms, 1)

	l := &Listing{
		Title:        strings.TrimSpace(d.Title),
		Address:      strings.ToUpper(strings.TrimSpace(d.Address)),
		Area:         currency.FormatInput(d.Area),
		Rooms:        rooms,
		Bathrooms:    bathrooms,
		Modality:     Modality(d.Modality),
		Price:        currency.ParseCents(d.Price),
		IPTU:         displayAmount(d.IPTU),
		Cond:         displayAmount(d.Cond),
		City:         strings.ToUpper(strings.TrimSpace(d.City)),
		Neighborhood: strings.ToUpper(strings.TrimSpace(d.Neighborhood)),
		Desc:         d.Description,
	}
	if strings.TrimSpace(d.ParkingSpace) != "" {
		if n, msg := parseCount(d.ParkingSpace, 0); msg == "" {
			l.ParkingSpace = &n
		}
	}
	if tel, err := strconv.ParseInt(currency.Digits(d.Whatsapp), 10, 64); err == nil {
		l.Tel = tel
	}
	return l
}

func displayAmount(s string) string {
	if !currency.HasDigits(s) {
		return ""
	}
	return currency.FormatBRL(currency.ParseCents(s))
}

func parseCount(s string, min int) (int, string) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, "enter a valid number"
	}
	if n < min {
		if min > 0 {
			return n, "at least " + strconv.Itoa(min) + " is required"
		}
		return n, "must not be negative"
	}
	return n, ""
}
