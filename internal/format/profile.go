package format

// Role names a column's purpose in the import mapping.
type Role string

const (
	RoleDate        Role = "date"
	RoleVendor      Role = "vendor"
	RoleAmount      Role = "amount"
	RoleInflow      Role = "inflow"
	RoleOutflow     Role = "outflow"
	RoleDescription Role = "description"
	RoleCategory    Role = "category"
)

// Format identifies which exporter profile matched the header row.
type Format string

const (
	FormatYNAB     Format = "ynab"
	FormatStarling Format = "starling"
	FormatCustom   Format = "custom"
)

// Mapping assigns a column index to each role. Unmapped roles are -1.
// Exactly one of Amount or the Inflow/Outflow pair should end up populated.
type Mapping struct {
	Date        int
	Vendor      int
	Amount      int
	Inflow      int
	Outflow     int
	Description int
	Category    int
}

// NewMapping returns a mapping with every role unmapped.
func NewMapping() Mapping {
	return Mapping{Date: -1, Vendor: -1, Amount: -1, Inflow: -1, Outflow: -1, Description: -1, Category: -1}
}

// HasAmount reports whether the mapping resolves an amount, either as a single
// signed column or as an inflow/outflow pair.
func (m Mapping) HasAmount() bool {
	return m.Amount >= 0 || (m.Inflow >= 0 && m.Outflow >= 0)
}

// Complete reports whether the mapping is sufficient to build transactions.
func (m Mapping) Complete() bool {
	return m.Date >= 0 && m.Vendor >= 0 && m.HasAmount()
}

func (m *Mapping) set(role Role, idx int) {
	switch role {
	case RoleDate:
		m.Date = idx
	case RoleVendor:
		m.Vendor = idx
	case RoleAmount:
		m.Amount = idx
	case RoleInflow:
		m.Inflow = idx
	case RoleOutflow:
		m.Outflow = idx
	case RoleDescription:
		m.Description = idx
	case RoleCategory:
		m.Category = idx
	}
}

// profile describes one exporter's header shape. Candidates are matched against
// lower-cased trimmed headers, exact name first, then substring containment.
type profile struct {
	format     Format
	confidence float64
	mandatory  []roleCandidates
	optional   []roleCandidates
}

type roleCandidates struct {
	role       Role
	candidates []string
}

// profiles is the ordered detector list. More specific exporters come first so
// a generic amount column does not shadow an inflow/outflow pair.
var profiles = []profile{
	{
		format:     FormatYNAB,
		confidence: 0.9,
		mandatory: []roleCandidates{
			{RoleDate, []string{"date"}},
			{RoleVendor, []string{"payee"}},
			{RoleInflow, []string{"inflow"}},
			{RoleOutflow, []string{"outflow"}},
		},
		optional: []roleCandidates{
			{RoleDescription, []string{"memo", "notes"}},
			{RoleCategory, []string{"category group", "category"}},
		},
	},
	{
		format:     FormatStarling,
		confidence: 0.85,
		mandatory: []roleCandidates{
			{RoleDate, []string{"date"}},
			{RoleVendor, []string{"counter party", "counterparty"}},
			{RoleAmount, []string{"amount"}},
		},
		optional: []roleCandidates{
			{RoleDescription, []string{"reference", "ref", "memo"}},
			{RoleCategory, []string{"spending category", "category"}},
		},
	},
}

// generic is tried after the named profiles, at a lower confidence bar.
var generic = profile{
	format:     FormatCustom,
	confidence: 0.6,
	mandatory: []roleCandidates{
		{RoleDate, []string{"date", "transaction date", "posting date", "value date"}},
		{RoleAmount, []string{"amount", "value", "total"}},
	},
	optional: []roleCandidates{
		{RoleVendor, []string{"payee", "vendor", "merchant", "counterparty", "counter party", "name", "description"}},
		{RoleDescription, []string{"memo", "notes", "reference", "details"}},
		{RoleCategory, []string{"category"}},
	},
}
