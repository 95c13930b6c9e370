package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single movement of money on an account.
type Transaction struct {
	ID                      string              `json:"id"`
	Account                 Account             `json:"account"`
	Amount                  decimal.Decimal     `json:"amount"`
	Datetime                time.Time           `json:"datetime"`
	Name                    string              `json:"name"`
	Description             string              `json:"description"`
	Tags                    []Tag               `json:"tagSet"`
	ResultingAccountBalance decimal.NullDecimal `json:"resultingAccountBalance"`
}

// TagNames returns the names of the transaction's tags in server order.
func (t Transaction) TagNames() []string {
	names := make([]string, 0, len(t.Tags))
	for _, tag := range t.Tags {
		names = append(names, tag.Name)
	}
	return names
}

// CreateTransactionInput records a transaction. Tags may be referenced by id or
// created on the fly by name.
type CreateTransactionInput struct {
	ClientMutationID string           `json:"clientMutationId,omitempty"`
	Account          string           `json:"account" validate:"required"`
	Amount           *decimal.Decimal `json:"amount,omitempty" validate:"required"`
	Datetime         *time.Time       `json:"datetime,omitempty" validate:"required"`
	Name             *string          `json:"name,omitempty" validate:"omitempty,max=50"`
	Description      *string          `json:"description,omitempty" validate:"omitempty,max=250"`
	TagIDs           []string         `json:"tagIds,omitempty"`
	Tags             []string         `json:"tags,omitempty" validate:"omitempty,dive,max=50"`
}

// UpdateTransactionInput changes a transaction. Tags are added and removed
// explicitly rather than replaced.
type UpdateTransactionInput struct {
	ClientMutationID string           `json:"clientMutationId,omitempty"`
	ID               string           `json:"id" validate:"required"`
	Account          *string          `json:"account,omitempty"`
	Amount           *decimal.Decimal `json:"amount,omitempty"`
	Datetime         *time.Time       `json:"datetime,omitempty"`
	Name             *string          `json:"name,omitempty" validate:"omitempty,max=50"`
	Description      *string          `json:"description,omitempty" validate:"omitempty,max=250"`
	AddTagIDs        []string         `json:"addTagIds,omitempty"`
	AddTags          []string         `json:"addTags,omitempty"`
	RemoveTagIDs     []string         `json:"removeTagIds,omitempty"`
	RemoveTags       []string         `json:"removeTags,omitempty"`
}

// TransactionFilter narrows transaction lists.
type TransactionFilter struct {
	AccountIDContains   *string    `json:"account_Id_Icontains,omitempty"`
	AmountContains      *string    `json:"amount_Icontains,omitempty"`
	IDContains          *string    `json:"id_Icontains,omitempty"`
	NameContains        *string    `json:"name_Icontains,omitempty"`
	DescriptionContains *string    `json:"description_Icontains,omitempty"`
	DatetimeGte         *time.Time `json:"datetime_Gte,omitempty"`
	DatetimeLte         *time.Time `json:"datetime_Lte,omitempty"`
	DatetimeYear        *int       `json:"datetime_Year,omitempty"`
	DatetimeMonth       *int       `json:"datetime_Month,omitempty"`
}

// TransactionOrder is a sort key understood by listTransactions.
type TransactionOrder string

const (
	TransactionDatetimeAsc  TransactionOrder = "DATETIME_ASC"
	TransactionDatetimeDesc TransactionOrder = "DATETIME_DESC"
	TransactionIDAsc        TransactionOrder = "ID_ASC"
	TransactionIDDesc       TransactionOrder = "ID_DESC"
)

// TransactionOrders lists every valid TransactionOrder.
var TransactionOrders = []TransactionOrder{
	TransactionDatetimeAsc, TransactionDatetimeDesc,
	TransactionIDAsc, TransactionIDDesc,
}
