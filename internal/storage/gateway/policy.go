package gateway

// Policy decides how an operation moves between the durable backend and
// the fallback store.
type Policy int

const (
	// FallbackOnError tries the durable backend and retries against the
	// fallback store on any error except validation and not-found.
	FallbackOnError Policy = iota
	// ProbeFirst runs the durable health check before a read. A failed probe
	// serves the whole response from the fallback store, so one response
	// never mixes data from both backends.
	ProbeFirst
	// LookupBoth behaves like FallbackOnError and additionally consults the
	// fallback store when the durable backend reports not-found. Orders
	// created during an outage live only in memory.
	LookupBoth
	// FallbackOnly never touches the durable backend.
	FallbackOnly
)

func (p Policy) String() string {
	switch p {
	case FallbackOnError:
		return "fallback_on_error"
	case ProbeFirst:
		return "probe_first"
	case LookupBoth:
		return "lookup_both"
	case FallbackOnly:
		return "fallback_only"
	}
	return "unknown"
}

// Operation names, also used as log fields.
const (
	OpListOrders        = "list_orders"
	OpGetOrder          = "get_order"
	OpCreateOrder       = "create_order"
	OpUpdateOrderStatus = "update_order_status"
	OpDeleteOrder       = "delete_order"

	OpListTables        = "list_tables"
	OpGetTable          = "get_table"
	OpResolveTable      = "resolve_table"
	OpUpdateTableStatus = "update_table_status"

	OpListCategories = "list_categories"
	OpGetCategory    = "get_category"
	OpCreateCategory = "create_category"
	OpUpdateCategory = "update_category"
	OpDeleteCategory = "delete_category"

	OpListProducts  = "list_products"
	OpGetProduct    = "get_product"
	OpCreateProduct = "create_product"
	OpUpdateProduct = "update_product"
	OpDeleteProduct = "delete_product"

	OpGetSettings    = "get_settings"
	OpUpdateSettings = "update_settings"
	OpAnalytics      = "analytics"

	OpListServiceRequests   = "list_service_requests"
	OpCreateServiceRequest  = "create_service_request"
	OpResolveServiceRequest = "resolve_service_request"
)

// Policies is the declared fallback policy of every gateway operation.
var Policies = map[string]Policy{
	OpListOrders:        ProbeFirst,
	OpGetOrder:          LookupBoth,
	OpCreateOrder:       FallbackOnError,
	OpUpdateOrderStatus: LookupBoth,
	OpDeleteOrder:       LookupBoth,

	OpListTables:        ProbeFirst,
	OpGetTable:          LookupBoth,
	OpResolveTable:      FallbackOnError,
	OpUpdateTableStatus: LookupBoth,

	OpListCategories: ProbeFirst,
	OpGetCategory:    FallbackOnError,
	OpCreateCategory: FallbackOnError,
	OpUpdateCategory: FallbackOnError,
	OpDeleteCategory: FallbackOnError,

	OpListProducts:  ProbeFirst,
	OpGetProduct:    FallbackOnError,
	OpCreateProduct: FallbackOnError,
	OpUpdateProduct: FallbackOnError,
	OpDeleteProduct: FallbackOnError,

	OpGetSettings:    FallbackOnError,
	OpUpdateSettings: FallbackOnError,
	OpAnalytics:      ProbeFirst,

	OpListServiceRequests:   FallbackOnly,
	OpCreateServiceRequest:  FallbackOnly,
	OpResolveServiceRequest: FallbackOnly,
}

func policyFor(op string) Policy {
	if p, ok := Policies[op]; ok {
		return p
	}
	return FallbackOnError
}
