package billing

import (
	"strings"

	"github.com/slabworks/slabdesk-backend/pkg/types"
)

// AddressKey builds the canonical clustering key for a shipping address.
// Fields are lower-cased and trimmed; two addresses that differ only in case
// or spacing bill onto the same invoice.
func AddressKey(addr *types.ShippingAddress) string {
	if addr == nil {
		return ""
	}
	parts := []string{
		addr.Name,
		addr.Line1,
		addr.Line2,
		addr.City,
		addr.Region,
		addr.Postal,
		addr.Country,
	}
	for i, part := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(part))
	}
	return strings.Join(parts, "|")
}

// AddressFromFields folds a loosely keyed field map into a ShippingAddress.
// Common aliases are unified: zip and postcode both land in postal, state and
// province in region.
func AddressFromFields(fields map[string]string) types.ShippingAddress {
	normalized := make(map[string]string, len(fields))
	for key, value := range fields {
		normalized[canonicalFieldName(key)] = strings.TrimSpace(value)
	}
	return types.ShippingAddress{
		Name:    normalized["name"],
		Line1:   normalized["line1"],
		Line2:   normalized["line2"],
		City:    normalized["city"],
		Region:  normalized["region"],
		Postal:  normalized["postal"],
		Country: normalized["country"],
	}
}

func canonicalFieldName(key string) string {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "zip", "postcode", "postal", "postal_code", "zip_code":
		return "postal"
	case "state", "province", "region":
		return "region"
	case "address1", "line1", "address_line1", "street":
		return "line1"
	case "address2", "line2", "address_line2":
		return "line2"
	case "name", "full_name", "recipient":
		return "name"
	case "city", "town":
		return "city"
	case "country", "country_code":
		return "country"
	default:
		return strings.ToLower(strings.TrimSpace(key))
	}
}
