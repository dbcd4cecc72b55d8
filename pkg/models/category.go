// Package models contains the shared domain types for document triage.
package models

// Category is one label from the fixed document taxonomy.
type Category string

const (
	CategorySalesContract      Category = "Sales Contract"
	CategoryInvoices           Category = "Invoices"
	CategoryTax                Category = "Tax"
	CategoryFinancialReport    Category = "Financial Report"
	CategoryEmploymentContract Category = "Employment Contract"
	CategoryPII                Category = "PII"
	// CategoryOther is the sentinel for documents nothing else matched.
	CategoryOther Category = "Other"
)
