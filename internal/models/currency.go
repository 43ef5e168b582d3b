package models

// Currency is the currencies table row.
type Currency struct {
	CurrencyCode string `db:"currency_code"`
	Symbol       string `db:"symbol"`
	Name         string `db:"name"`
	Precision    int32  `db:"precision"`
	AuditFields
}
