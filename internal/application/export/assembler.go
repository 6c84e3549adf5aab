// Package export arma el documento de exportación de una factura y lo entrega como
// PDF, XML o paquete cifrado.
package export

import (
	"context"
	"strconv"

	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/exportdoc"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/repository"
)

// DateLayout fechas del documento (formato alemán).
const DateLayout = "02.01.2006"

// Assembler proyección de solo lectura: factura → exportdoc.Document.
type Assembler struct {
	invoices  repository.InvoiceRepository
	customers repository.CustomerRepository
	providers repository.ServiceProviderRepository
}

// NewAssembler construye el ensamblador.
func NewAssembler(invoices repository.InvoiceRepository, customers repository.CustomerRepository, providers repository.ServiceProviderRepository) *Assembler {
	return &Assembler{invoices: invoices, customers: customers, providers: providers}
}

// Assemble reúne factura, cliente, prestador, CEOs, partidas y cuentas.
// Una factura inexistente devuelve exportdoc.Blank(); las filas relacionadas que falten
// quedan como sección o lista vacía. Solo los errores de infraestructura se devuelven.
func (a *Assembler) Assemble(ctx context.Context, invoiceNr string) (*exportdoc.Document, error) {
	doc := exportdoc.Blank()

	inv, err := a.invoices.GetByNumber(ctx, invoiceNr)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return doc, nil
	}
	doc.Invoice = invoiceRecord(inv)

	positions, err := a.invoices.ListPositions(ctx, invoiceNr)
	if err != nil {
		return nil, err
	}
	for i := range positions {
		doc.Positions = append(doc.Positions, positionRecord(&positions[i]))
	}

	customer, err := a.customers.GetByID(ctx, inv.CustID)
	if err != nil {
		return nil, err
	}
	if customer != nil {
		doc.Customer = customerRecord(customer)
	}

	provider, err := a.providers.GetByID(ctx, inv.UstIDNr)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return doc, nil
	}
	doc.ServiceProvider = providerRecord(provider)

	ceos, err := a.providers.ListCEOs(ctx, provider.UstIDNr)
	if err != nil {
		return nil, err
	}
	for _, c := range ceos {
		doc.CEOs = append(doc.CEOs, exportdoc.Record{Fields: []exportdoc.Field{
			{Name: "ST_NR", Value: c.TaxNumber},
			{Name: "CEO_NAME", Value: c.Name},
		}})
	}

	accounts, err := a.providers.ListAccounts(ctx, provider.UstIDNr)
	if err != nil {
		return nil, err
	}
	for _, acc := range accounts {
		doc.Accounts = append(doc.Accounts, exportdoc.Record{Fields: []exportdoc.Field{
			{Name: "IBAN", Value: acc.IBAN},
			{Name: "BIC", Value: acc.BIC},
			{Name: "BANK_NAME", Value: acc.BankName},
		}})
	}
	return doc, nil
}

func invoiceRecord(inv *entity.Invoice) exportdoc.Record {
	return exportdoc.Record{Fields: []exportdoc.Field{
		{Name: "INVOICE_NR", Value: inv.InvoiceNr},
		{Name: "CREATION_DATE", Value: inv.CreationDate.Format(DateLayout)},
		{Name: "FK_CUSTID", Value: inv.CustID},
		{Name: "FK_UST_IDNR", Value: inv.UstIDNr},
		{Name: "LABOR_COST", Value: inv.LaborCost.String()},
		{Name: "VAT_RATE_LABOR", Value: inv.VATRateLabor.String()},
		{Name: "VAT_RATE_POSITIONS", Value: inv.VATRatePositions.String()},
	}}
}

func customerRecord(c *entity.Customer) exportdoc.Record {
	r := exportdoc.Record{Fields: []exportdoc.Field{
		{Name: "CUSTID", Value: c.CustID},
		{Name: "FIRST_NAME", Value: c.FirstName},
		{Name: "LAST_NAME", Value: c.LastName},
		{Name: "GENDER", Value: c.Gender},
	}}
	appendAddress(&r, c.Address)
	return r
}

func providerRecord(p *entity.ServiceProvider) exportdoc.Record {
	logo := ""
	if p.LogoID != nil {
		logo = strconv.FormatInt(*p.LogoID, 10)
	}
	r := exportdoc.Record{Fields: []exportdoc.Field{
		{Name: "UST_IDNR", Value: p.UstIDNr},
		{Name: "PROVIDER_NAME", Value: p.ProviderName},
		{Name: "MOBILTELNR", Value: p.MobileNumber},
		{Name: "TELNR", Value: p.PhoneNumber},
		{Name: "FAXNR", Value: p.FaxNumber},
		{Name: "EMAIL", Value: p.Email},
		{Name: "WEBSITE", Value: p.Website},
		{Name: "FK_LOGO_ID", Value: logo},
	}}
	appendAddress(&r, p.Address)
	return r
}

func appendAddress(r *exportdoc.Record, a *entity.Address) {
	if a == nil {
		a = &entity.Address{}
	}
	r.Fields = append(r.Fields,
		exportdoc.Field{Name: "STREET", Value: a.Street},
		exportdoc.Field{Name: "NUMBER", Value: a.Number},
		exportdoc.Field{Name: "ZIP", Value: a.ZIP},
		exportdoc.Field{Name: "CITY", Value: a.City},
		exportdoc.Field{Name: "COUNTRY", Value: a.Country},
	)
}

func positionRecord(p *entity.Position) exportdoc.Record {
	return exportdoc.Record{Fields: []exportdoc.Field{
		{Name: "POS_ID", Value: strconv.FormatInt(p.ID, 10)},
		{Name: "NAME", Value: p.Name},
		{Name: "DESCRIPTION", Value: p.Description},
		{Name: "AREA", Value: p.Area.String()},
		{Name: "UNIT_PRICE", Value: p.UnitPrice.String()},
	}}
}
