package domain

// Currency is a user-defined currency.
type Currency struct {
	ID           string `json:"id"`
	Abbreviation string `json:"abbreviation"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
}

// CreateCurrencyInput creates a currency. It doubles as the row type of the
// rate service catalogue.
type CreateCurrencyInput struct {
	ClientMutationID string `json:"clientMutationId,omitempty"`
	Abbreviation     string `json:"abbreviation" validate:"required,max=15"`
	Symbol           string `json:"symbol" validate:"required,max=15"`
	Name             string `json:"name" validate:"required,max=50"`
}

// UpdateCurrencyInput changes a currency. The abbreviation is immutable.
type UpdateCurrencyInput struct {
	ClientMutationID string  `json:"clientMutationId,omitempty"`
	ID               string  `json:"id" validate:"required"`
	Symbol           *string `json:"symbol,omitempty" validate:"omitempty,max=15"`
	Name             *string `json:"name,omitempty" validate:"omitempty,max=50"`
}

// CurrencyFilter narrows currency lists.
type CurrencyFilter struct {
	IDContains           *string `json:"id_Icontains,omitempty"`
	AbbreviationContains *string `json:"abbreviation_Icontains,omitempty"`
	NameContains         *string `json:"name_Icontains,omitempty"`
	SymbolContains       *string `json:"symbol_Icontains,omitempty"`
}

// CurrencyOrder is a sort key understood by listCurrencies.
type CurrencyOrder string

const (
	CurrencyAbbreviationAsc  CurrencyOrder = "ABBREVIATION_ASC"
	CurrencyAbbreviationDesc CurrencyOrder = "ABBREVIATION_DESC"
	CurrencyIDAsc            CurrencyOrder = "ID_ASC"
	CurrencyIDDesc           CurrencyOrder = "ID_DESC"
	CurrencyNameAsc          CurrencyOrder = "NAME_ASC"
	CurrencyNameDesc         CurrencyOrder = "NAME_DESC"
	CurrencySymbolAsc        CurrencyOrder = "SYMBOL_ASC"
	CurrencySymbolDesc       CurrencyOrder = "SYMBOL_DESC"
	CurrencyUserAsc          CurrencyOrder = "USER_ASC"
	CurrencyUserDesc         CurrencyOrder = "USER_DESC"
)

// CurrencyOrders lists every valid CurrencyOrder.
var CurrencyOrders = []CurrencyOrder{
	CurrencyAbbreviationAsc, CurrencyAbbreviationDesc,
	CurrencyIDAsc, CurrencyIDDesc,
	CurrencyNameAsc, CurrencyNameDesc,
	CurrencySymbolAsc, CurrencySymbolDesc,
	CurrencyUserAsc, CurrencyUserDesc,
}
