package billing

import (
	"github.com/jhoicas/rechnungsverwaltung/internal/application/dto"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
)

func addressFromDTO(a dto.AddressDTO) *entity.Address {
	return &entity.Address{Street: a.Street, Number: a.Number, ZIP: a.ZIP, City: a.City, Country: a.Country}
}

func addressToDTO(a *entity.Address) dto.AddressDTO {
	if a == nil {
		return dto.AddressDTO{}
	}
	return dto.AddressDTO{Street: a.Street, Number: a.Number, ZIP: a.ZIP, City: a.City, Country: a.Country}
}

func customerToDTO(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		CustID:    c.CustID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Gender:    c.Gender,
		Address:   addressToDTO(c.Address),
	}
}

func providerToDTO(p *entity.ServiceProvider) *dto.ProviderResponse {
	out := &dto.ProviderResponse{
		UstIDNr:      p.UstIDNr,
		ProviderName: p.ProviderName,
		MobileNumber: p.MobileNumber,
		PhoneNumber:  p.PhoneNumber,
		FaxNumber:    p.FaxNumber,
		Email:        p.Email,
		Website:      p.Website,
		Address:      addressToDTO(p.Address),
		HasLogo:      p.LogoID != nil,
		CEOs:         make([]dto.CEODTO, 0, len(p.CEOs)),
		Accounts:     make([]dto.BankAccountDTO, 0, len(p.Accounts)),
	}
	for _, c := range p.CEOs {
		out.CEOs = append(out.CEOs, dto.CEODTO{TaxNumber: c.TaxNumber, Name: c.Name})
	}
	for _, a := range p.Accounts {
		out.Accounts = append(out.Accounts, dto.BankAccountDTO{IBAN: a.IBAN, BIC: a.BIC, BankName: a.BankName})
	}
	return out
}

func positionToDTO(p *entity.Position) dto.PositionResponse {
	return dto.PositionResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Area:        p.Area,
		UnitPrice:   p.UnitPrice,
		LineTotal:   p.LineTotal(),
	}
}

func invoiceToDTO(inv *entity.Invoice) *dto.InvoiceResponse {
	t := inv.Totals()
	out := &dto.InvoiceResponse{
		InvoiceNr:        inv.InvoiceNr,
		CreationDate:     inv.CreationDate.Format(dateLayout),
		CustID:           inv.CustID,
		UstIDNr:          inv.UstIDNr,
		LaborCost:        inv.LaborCost,
		VATRateLabor:     inv.VATRateLabor,
		VATRatePositions: inv.VATRatePositions,
		Positions:        make([]dto.PositionResponse, 0, len(inv.Positions)),
		Totals: dto.TotalsResponse{
			Net:      t.Net,
			VATRate:  t.VATRate,
			VAT:      t.VAT,
			Gross:    t.Gross,
			Labor:    t.Labor,
			LaborVAT: t.LaborVAT,
		},
	}
	for i := range inv.Positions {
		out.Positions = append(out.Positions, positionToDTO(&inv.Positions[i]))
	}
	return out
}
