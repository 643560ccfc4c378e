package dto

import (
	"factura/internal/core/apperror"
	"factura/internal/core/types"
	"factura/internal/domain/catalogs/customer"
)

// --- Request DTOs ---

type CreateCustomerRequest struct {
	Reference           string  `json:"reference" binding:"required"`
	Name                string  `json:"name" binding:"required"`
	Company             *string `json:"company,omitempty"`
	Email               *string `json:"email,omitempty"`
	Address1            *string `json:"address1,omitempty"`
	Address2            *string `json:"address2,omitempty"`
	City                *string `json:"city,omitempty"`
	State               *string `json:"state,omitempty"`
	ZipCode             *string `json:"zipCode,omitempty"`
	Country             *string `json:"country,omitempty"`
	TaxID               *string `json:"taxId,omitempty"`
	SalesTaxName        *string `json:"salesTaxName,omitempty"`
	SalesTaxPercent     *string `json:"salesTaxPercent,omitempty"`
	PaymentDueDays      int     `json:"paymentDueDays,omitempty"`
	ConsolidatedBilling bool    `json:"consolidatedBilling,omitempty"`
	Extra               *string `json:"extra,omitempty"`
}

func (r *CreateCustomerRequest) ToEntity() (*customer.Customer, error) {
	c := customer.New(r.Reference, r.Name)
	c.Company = r.Company
	c.Email = r.Email
	c.Address1 = r.Address1
	c.Address2 = r.Address2
	c.City = r.City
	c.State = r.State
	c.ZipCode = r.ZipCode
	c.Country = r.Country
	c.TaxID = r.TaxID
	c.SalesTaxName = r.SalesTaxName
	c.PaymentDueDays = r.PaymentDueDays
	c.ConsolidatedBilling = r.ConsolidatedBilling
	c.Extra = r.Extra

	if r.SalesTaxPercent != nil {
		percent, err := types.NewDecimalFromString(*r.SalesTaxPercent)
		if err != nil {
			return nil, apperror.NewValidation("invalid sales tax percent").
				WithDetail("field", "salesTaxPercent").
				WithDetail("value", *r.SalesTaxPercent)
		}
		c.SalesTaxPercent = &percent
	}

	return c, nil
}

type UpdateCustomerRequest struct {
	Reference           *string `json:"reference,omitempty"`
	Name                *string `json:"name,omitempty"`
	Company             *string `json:"company,omitempty"`
	Email               *string `json:"email,omitempty"`
	Address1            *string `json:"address1,omitempty"`
	Address2            *string `json:"address2,omitempty"`
	City                *string `json:"city,omitempty"`
	State               *string `json:"state,omitempty"`
	ZipCode             *string `json:"zipCode,omitempty"`
	Country             *string `json:"country,omitempty"`
	TaxID               *string `json:"taxId,omitempty"`
	SalesTaxName        *string `json:"salesTaxName,omitempty"`
	SalesTaxPercent     *string `json:"salesTaxPercent,omitempty"`
	PaymentDueDays      *int    `json:"paymentDueDays,omitempty"`
	ConsolidatedBilling *bool   `json:"consolidatedBilling,omitempty"`
	Extra               *string `json:"extra,omitempty"`
}

func (r *UpdateCustomerRequest) ApplyTo(c *customer.Customer) error {
	if r.Reference != nil {
		c.Reference = *r.Reference
	}
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Company != nil {
		c.Company = r.Company
	}
	if r.Email != nil {
		c.Email = r.Email
	}
	if r.Address1 != nil {
		c.Address1 = r.Address1
	}
	if r.Address2 != nil {
		c.Address2 = r.Address2
	}
	if r.City != nil {
		c.City = r.City
	}
	if r.State != nil {
		c.State = r.State
	}
	if r.ZipCode != nil {
		c.ZipCode = r.ZipCode
	}
	if r.Country != nil {
		c.Country = r.Country
	}
	if r.TaxID != nil {
		c.TaxID = r.TaxID
	}
	if r.SalesTaxName != nil {
		c.SalesTaxName = r.SalesTaxName
	}
	if r.SalesTaxPercent != nil {
		percent, err := types.NewDecimalFromString(*r.SalesTaxPercent)
		if err != nil {
			return apperror.NewValidation("invalid sales tax percent").
				WithDetail("field", "salesTaxPercent").
				WithDetail("value", *r.SalesTaxPercent)
		}
		c.SalesTaxPercent = &percent
	}
	if r.PaymentDueDays != nil {
		c.PaymentDueDays = *r.PaymentDueDays
	}
	if r.ConsolidatedBilling != nil {
		c.ConsolidatedBilling = *r.ConsolidatedBilling
	}
	if r.Extra != nil {
		c.Extra = r.Extra
	}
	return nil
}

// --- Response DTOs ---

type CustomerResponse struct {
	BaseResponse
	Reference           string  `json:"reference"`
	Name                string  `json:"name"`
	Company             *string `json:"company,omitempty"`
	Email               *string `json:"email,omitempty"`
	Address1            *string `json:"address1,omitempty"`
	Address2            *string `json:"address2,omitempty"`
	City                *string `json:"city,omitempty"`
	State               *string `json:"state,omitempty"`
	ZipCode             *string `json:"zipCode,omitempty"`
	Country             *string `json:"country,omitempty"`
	TaxID               *string `json:"taxId,omitempty"`
	SalesTaxName        *string `json:"salesTaxName,omitempty"`
	SalesTaxPercent     *string `json:"salesTaxPercent,omitempty"`
	PaymentDueDays      int     `json:"paymentDueDays"`
	ConsolidatedBilling bool    `json:"consolidatedBilling"`
	Extra               *string `json:"extra,omitempty"`
}

func FromCustomer(c *customer.Customer) *CustomerResponse {
	resp := &CustomerResponse{
		BaseResponse:        FromBaseCatalog(c.BaseCatalog),
		Reference:           c.Reference,
		Name:                c.Name,
		Company:             c.Company,
		Email:               c.Email,
		Address1:            c.Address1,
		Address2:            c.Address2,
		City:                c.City,
		State:               c.State,
		ZipCode:             c.ZipCode,
		Country:             c.Country,
		TaxID:               c.TaxID,
		SalesTaxName:        c.SalesTaxName,
		PaymentDueDays:      c.PaymentDueDays,
		ConsolidatedBilling: c.ConsolidatedBilling,
		Extra:               c.Extra,
	}

	if c.SalesTaxPercent != nil {
		formatted := types.FormatAmount(*c.SalesTaxPercent)
		resp.SalesTaxPercent = &formatted
	}

	return resp
}
