// Package models defines the data models used in the application.
package models

// Invoice is one invoice record. RequestID is the DynamoDB hash key; it is
// assigned at creation and never changes.
type Invoice struct {
	RequestID string   `json:"requestId" dynamodbav:"RequestId"`
	UserID    string   `json:"userId" dynamodbav:"UserId"`
	BillTo    *Address `json:"billTo,omitempty" dynamodbav:"BillTo,omitempty"`
	ShipTo    *Address `json:"shipTo,omitempty" dynamodbav:"ShipTo,omitempty"`
	Details   []Detail `json:"details" dynamodbav:"Details"`
}

// Address is a bill-to or ship-to entry.
type Address struct {
	Name    string `json:"name,omitempty" dynamodbav:"Name,omitempty"`
	ZipCode string `json:"zipCode,omitempty" dynamodbav:"ZipCode,omitempty"`
}

// Detail is one invoice line.
type Detail struct {
	Description string `json:"description" dynamodbav:"Description"`
	Remarks     string `json:"remarks,omitempty" dynamodbav:"Remarks,omitempty"`
	UnitCost    Money  `json:"unitCost" dynamodbav:"UnitCost"`
	Quantity    int    `json:"quantity" dynamodbav:"Quantity"`
	Amount      Money  `json:"amount" dynamodbav:"Amount"`
}

// Normalize replaces a nil detail list with an empty one.
func (inv *Invoice) Normalize() {
	if inv.Details == nil {
		inv.Details = []Detail{}
	}
}

// BillToName returns the bill-to name, or "" when no address is set.
func (inv Invoice) BillToName() string {
	if inv.BillTo == nil {
		return ""
	}
	return inv.BillTo.Name
}

// BillToZip returns the bill-to zip code, or "" when no address is set.
func (inv Invoice) BillToZip() string {
	if inv.BillTo == nil {
		return ""
	}
	return inv.BillTo.ZipCode
}

// Sample returns the placeholder invoice written by CreateBlob when the
// request carries no payload.
func Sample(identity string) Invoice {
	return Invoice{
		UserID: identity,
		BillTo: &Address{Name: identity},
		Details: []Detail{
			{
				Description: "原稿料",
				UnitCost:    NewMoney(10000),
				Quantity:    1,
				Amount:      NewMoney(10000),
			},
		},
	}
}
