package domain

// SortField is the sort key a caller may request.
// Value object - immutable string enum.
type SortField string

const (
	SortByDate         SortField = "date"
	SortByQuantity     SortField = "quantity"
	SortByCustomerName SortField = "customerName"
)

// SortOrder is the requested sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Field names a SaleRecord attribute addressable by filter and sort clauses.
// Adapters translate Field values to their native column or document paths.
type Field string

const (
	FieldCustomerName    Field = "customerName"
	FieldPhoneNumber     Field = "phoneNumber"
	FieldGender          Field = "gender"
	FieldAge             Field = "age"
	FieldCustomerRegion  Field = "customerRegion"
	FieldProductCategory Field = "productCategory"
	FieldTags            Field = "tags"
	FieldPaymentMethod   Field = "paymentMethod"
	FieldDate            Field = "date"
	FieldQuantity        Field = "quantity"
)

// Default query values applied when a request leaves them unset.
const (
	DefaultPage      = 1
	DefaultPageSize  = 10
	DefaultSortField = SortByDate
	DefaultSortOrder = SortDesc
)
