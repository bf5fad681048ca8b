package billing

import (
	"testing"

	"github.com/slabworks/slabdesk-backend/pkg/types"
)

func TestAddressKeyNormalizesCaseAndSpacing(t *testing.T) {
	a := types.ShippingAddress{
		Name:    "Dana Reyes",
		Line1:   "12 Elm St",
		City:    "Austin",
		Region:  "TX",
		Postal:  "78701",
		Country: "US",
	}
	b := types.ShippingAddress{
		Name:    "  dana reyes ",
		Line1:   "12 ELM ST",
		City:    "austin",
		Region:  "tx ",
		Postal:  " 78701",
		Country: "us",
	}
	if AddressKey(&a) != AddressKey(&b) {
		t.Fatalf("expected equal keys, got %q vs %q", AddressKey(&a), AddressKey(&b))
	}
}

func TestAddressKeyDistinguishesLines(t *testing.T) {
	a := types.ShippingAddress{Line1: "12 Elm St", City: "Austin"}
	b := types.ShippingAddress{Line1: "13 Elm St", City: "Austin"}
	if AddressKey(&a) == AddressKey(&b) {
		t.Fatal("different street lines must produce different keys")
	}
}

func TestAddressKeyNil(t *testing.T) {
	if AddressKey(nil) != "" {
		t.Fatalf("nil address should key to empty, got %q", AddressKey(nil))
	}
}

func TestAddressFromFieldsAliases(t *testing.T) {
	address := AddressFromFields(map[string]string{
		"full_name": "Lee Park",
		"street":    "44 Oak Rd",
		"address2":  "Unit 9",
		"town":      "Denver",
		"province":  "CO",
		"zip":       "80203",
		"country":   "US",
	})
	if address.Name != "Lee Park" || address.Line1 != "44 Oak Rd" || address.Line2 != "Unit 9" {
		t.Fatalf("unexpected name/lines: %+v", address)
	}
	if address.City != "Denver" || address.Region != "CO" || address.Postal != "80203" {
		t.Fatalf("unexpected locality fields: %+v", address)
	}

	viaCanonical := AddressFromFields(map[string]string{
		"name":    "Lee Park",
		"line1":   "44 Oak Rd",
		"line2":   "Unit 9",
		"city":    "Denver",
		"region":  "CO",
		"postal":  "80203",
		"country": "US",
	})
	if AddressKey(&address) != AddressKey(&viaCanonical) {
		t.Fatal("aliased and canonical field names must key identically")
	}
}
