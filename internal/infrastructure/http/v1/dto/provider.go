package dto

import (
	"factura/internal/domain/catalogs/provider"
)

// --- Request DTOs ---

type CreateProviderRequest struct {
	Name               string  `json:"name" binding:"required"`
	Company            *string `json:"company,omitempty"`
	Flow               string  `json:"flow,omitempty"`
	InvoiceSeries      *string `json:"invoiceSeries,omitempty"`
	ProformaSeries     *string `json:"proformaSeries,omitempty"`
	Email              *string `json:"email,omitempty"`
	Address1           *string `json:"address1,omitempty"`
	Address2           *string `json:"address2,omitempty"`
	City               *string `json:"city,omitempty"`
	State              *string `json:"state,omitempty"`
	ZipCode            *string `json:"zipCode,omitempty"`
	Country            *string `json:"country,omitempty"`
	TaxID              *string `json:"taxId,omitempty"`
	RegistrationNumber *string `json:"registrationNumber,omitempty"`
	BankName           *string `json:"bankName,omitempty"`
	BankAccount        *string `json:"bankAccount,omitempty"`
	Extra              *string `json:"extra,omitempty"`
}

func (r *CreateProviderRequest) ToEntity() *provider.Provider {
	p := provider.New(r.Name, provider.Flow(r.Flow))
	p.Company = r.Company
	p.InvoiceSeries = r.InvoiceSeries
	p.ProformaSeries = r.ProformaSeries
	p.Email = r.Email
	p.Address1 = r.Address1
	p.Address2 = r.Address2
	p.City = r.City
	p.State = r.State
	p.ZipCode = r.ZipCode
	p.Country = r.Country
	p.TaxID = r.TaxID
	p.RegistrationNumber = r.RegistrationNumber
	p.BankName = r.BankName
	p.BankAccount = r.BankAccount
	p.Extra = r.Extra
	return p
}

type UpdateProviderRequest struct {
	Name               *string `json:"name,omitempty"`
	Company            *string `json:"company,omitempty"`
	Flow               *string `json:"flow,omitempty"`
	InvoiceSeries      *string `json:"invoiceSeries,omitempty"`
	ProformaSeries     *string `json:"proformaSeries,omitempty"`
	Email              *string `json:"email,omitempty"`
	Address1           *string `json:"address1,omitempty"`
	Address2           *string `json:"address2,omitempty"`
	City               *string `json:"city,omitempty"`
	State              *string `json:"state,omitempty"`
	ZipCode            *string `json:"zipCode,omitempty"`
	Country            *string `json:"country,omitempty"`
	TaxID              *string `json:"taxId,omitempty"`
	RegistrationNumber *string `json:"registrationNumber,omitempty"`
	BankName           *string `json:"bankName,omitempty"`
	BankAccount        *string `json:"bankAccount,omitempty"`
	Extra              *string `json:"extra,omitempty"`
}

func (r *UpdateProviderRequest) ApplyTo(p *provider.Provider) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Flow != nil {
		p.Flow = provider.Flow(*r.Flow)
	}
	if r.Company != nil {
		p.Company = r.Company
	}
	if r.InvoiceSeries != nil {
		p.InvoiceSeries = r.InvoiceSeries
	}
	if r.ProformaSeries != nil {
		p.ProformaSeries = r.ProformaSeries
	}
	if r.Email != nil {
		p.Email = r.Email
	}
	if r.Address1 != nil {
		p.Address1 = r.Address1
	}
	if r.Address2 != nil {
		p.Address2 = r.Address2
	}
	if r.City != nil {
		p.City = r.City
	}
	if r.State != nil {
		p.State = r.State
	}
	if r.ZipCode != nil {
		p.ZipCode = r.ZipCode
	}
	if r.Country != nil {
		p.Country = r.Country
	}
	if r.TaxID != nil {
		p.TaxID = r.TaxID
	}
	if r.RegistrationNumber != nil {
		p.RegistrationNumber = r.RegistrationNumber
	}
	if r.BankName != nil {
		p.BankName = r.BankName
	}
	if r.BankAccount != nil {
		p.BankAccount = r.BankAccount
	}
	if r.Extra != nil {
		p.Extra = r.Extra
	}
}

// --- Response DTOs ---

type ProviderResponse struct {
	BaseResponse
	Name               string  `json:"name"`
	Company            *string `json:"company,omitempty"`
	Flow               string  `json:"flow"`
	InvoiceSeries      *string `json:"invoiceSeries,omitempty"`
	ProformaSeries     *string `json:"proformaSeries,omitempty"`
	Email              *string `json:"email,omitempty"`
	Address1           *string `json:"address1,omitempty"`
	Address2           *string `json:"address2,omitempty"`
	City               *string `json:"city,omitempty"`
	State              *string `json:"state,omitempty"`
	ZipCode            *string `json:"zipCode,omitempty"`
	Country            *string `json:"country,omitempty"`
	TaxID              *string `json:"taxId,omitempty"`
	RegistrationNumber *string `json:"registrationNumber,omitempty"`
	BankName           *string `json:"bankName,omitempty"`
	BankAccount        *string `json:"bankAccount,omitempty"`
	Extra              *string `json:"extra,omitempty"`
}

func FromProvider(p *provider.Provider) *ProviderResponse {
	return &ProviderResponse{
		BaseResponse:       FromBaseCatalog(p.BaseCatalog),
		Name:               p.Name,
		Company:            p.Company,
		Flow:               string(p.Flow),
		InvoiceSeries:      p.InvoiceSeries,
		ProformaSeries:     p.ProformaSeries,
		Email:              p.Email,
		Address1:           p.Address1,
		Address2:           p.Address2,
		City:               p.City,
		State:              p.State,
		ZipCode:            p.ZipCode,
		Country:            p.Country,
		TaxID:              p.TaxID,
		RegistrationNumber: p.RegistrationNumber,
		BankName:           p.BankName,
		BankAccount:        p.BankAccount,
		Extra:              p.Extra,
	}
}
