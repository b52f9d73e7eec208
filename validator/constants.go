package validator

// VALID_AVAILABILITY enumerates the Availability values R7 accepts.
var VALID_AVAILABILITY = []string{
	"InStock", "OutOfStock", "PreOrder", "BackOrder", "Discontinued", "LimitedAvailability",
}

// VALID_CONDITION enumerates the Condition values R8 accepts.
var VALID_CONDITION = []string{"New", "Used", "Refurbished", "Damaged"}

// VALID_STOCK_STATUS enumerates the StockStatus values R10 accepts.
var VALID_STOCK_STATUS = []string{"InStock", "OutOfStock", "LowStock", "Backorder", "PreOrder"}

// INVENTORY_STALE_HOURS is the age (hours) past which R11 warns that
// inventory data is stale.
const INVENTORY_STALE_HOURS = 72

// INVENTORY_VERY_STALE_HOURS is the age (hours) past which R11 warns
// that inventory data is very stale.
const INVENTORY_VERY_STALE_HOURS = 7 * 24

// trustedReviewDomains are the registrable domains R14 treats as
// verified review sources regardless of the document's own domain.
var trustedReviewDomains = []string{"trustpilot.com", "google.com", "amazon.com", "yelp.com"}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
