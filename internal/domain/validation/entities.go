package validation

import (
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
)

// Address valida una dirección; prefix se antepone a los nombres de campo.
func Address(c *Checker, prefix string, a *entity.Address) {
	if a == nil {
		c.Check(false, prefix+"address", "dirección requerida")
		return
	}
	c.Check(NonEmpty(a.Street), prefix+"street", "calle requerida")
	c.Check(HouseNumber(a.Number), prefix+"number", "número de casa: 1 a 4 caracteres")
	c.Check(ZIP(a.ZIP), prefix+"zip", "código postal: 1 a 7 caracteres")
	c.Check(NonEmpty(a.City), prefix+"city", "ciudad requerida")
}

// Customer valida el alta de un cliente.
func Customer(cu *entity.Customer) error {
	var c Checker
	c.Check(CustomerNumber(cu.CustID), "cust_id", "Kundennummer: cinco dígitos entre 00001 y 99999")
	c.Check(NonEmpty(cu.LastName), "last_name", "apellido requerido")
	switch cu.Gender {
	case "", entity.GenderMale, entity.GenderFemale, entity.GenderDiverse:
	default:
		c.Check(false, "gender", "valores permitidos: m, w, d")
	}
	Address(&c, "", cu.Address)
	return c.Err()
}

// ServiceProvider valida el alta de un prestador con sus cuentas y CEOs.
func ServiceProvider(p *entity.ServiceProvider) error {
	var c Checker
	c.Check(UstIDNr(p.UstIDNr), "ust_idnr", "USt-IdNr.: 1 a 11 caracteres")
	c.Check(NonEmpty(p.ProviderName), "provider_name", "nombre requerido")
	c.Optional(p.PhoneNumber, Phone, "telnr", "teléfono inválido")
	c.Optional(p.FaxNumber, Phone, "faxnr", "fax inválido")
	c.Optional(p.MobileNumber, Mobile, "mobiltelnr", "móvil inválido")
	c.Optional(p.Email, Email, "email", "email inválido")
	Address(&c, "", p.Address)
	for _, a := range p.Accounts {
		c.Check(IBAN(a.IBAN), "accounts.iban", "IBAN: 1 a 22 caracteres")
		c.Check(BIC(a.BIC), "accounts.bic", "BIC: 1 a 12 caracteres")
	}
	for _, ceo := range p.CEOs {
		c.Check(NonEmpty(ceo.TaxNumber), "ceos.st_nr", "número fiscal requerido")
		c.Check(NonEmpty(ceo.Name), "ceos.ceo_name", "nombre del CEO requerido")
	}
	return c.Err()
}

// Position valida una partida.
func Position(p *entity.Position) error {
	var c Checker
	c.Check(NonEmpty(p.Name), "name", "nombre requerido")
	c.Check(Description(p.Description), "description", "descripción: máximo 1000 caracteres")
	c.Check(!p.Area.IsNegative(), "area", "el área no puede ser negativa")
	c.Check(!p.UnitPrice.IsNegative(), "unit_price", "el precio no puede ser negativo")
	return c.Err()
}

// Invoice valida la cabecera de una factura.
func Invoice(inv *entity.Invoice) error {
	var c Checker
	c.Check(InvoiceNumber(inv.InvoiceNr), "invoice_nr", "número de factura: cinco dígitos")
	c.Check(CustomerNumber(inv.CustID), "cust_id", "Kundennummer inválida")
	c.Check(UstIDNr(inv.UstIDNr), "ust_idnr", "USt-IdNr. inválida")
	c.Check(!inv.CreationDate.IsZero(), "creation_date", "fecha requerida")
	c.Check(!inv.LaborCost.IsNegative(), "labor_cost", "Lohnkosten no pueden ser negativos")
	c.Check(VATRate(inv.VATRateLabor), "vat_rate_labor", "IVA entre 0 y 100")
	c.Check(VATRate(inv.VATRatePositions), "vat_rate_positions", "IVA entre 0 y 100")
	return c.Err()
}
