// Package exportdoc modela el documento de exportación de una factura: una foto
// desnormalizada (factura, cliente, prestador, CEOs, partidas, cuentas) independiente
// del destino (PDF, XML, ZIP cifrado).
package exportdoc

// Nombres de sección, en el orden en que se serializan.
const (
	SectionInvoice         = "invoice"
	SectionCustomer        = "customer"
	SectionServiceProvider = "service_provider"
	SectionCEOs            = "ceos"
	SectionPositions       = "positions"
	SectionAccounts        = "accounts"
)

// RootElement elemento raíz del XML de intercambio.
const RootElement = "invoice_data"

// Field par nombre/valor. Los nombres son los de las columnas (INVOICE_NR, CEO_NAME, ...).
type Field struct {
	Name  string
	Value string
}

// Record mapa plano y ordenado de campos.
type Record struct {
	Fields []Field
}

// Get devuelve el valor del campo o "" si no existe.
func (r Record) Get(name string) string {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Set reemplaza el valor si el campo existe; si no, lo añade al final.
func (r *Record) Set(name, value string) {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			r.Fields[i].Value = value
			return
		}
	}
	r.Fields = append(r.Fields, Field{Name: name, Value: value})
}

// IsEmpty true si la sección no tiene campos (fila inexistente).
func (r Record) IsEmpty() bool { return len(r.Fields) == 0 }

// Document documento de exportación. Se construye una vez y no se modifica después.
type Document struct {
	Invoice         Record
	Customer        Record
	ServiceProvider Record
	CEOs            []Record
	Positions       []Record
	Accounts        []Record
}

// Blank documento vacío: todas las secciones presentes y sin valores.
// Es el resultado de ensamblar una factura inexistente.
func Blank() *Document {
	return &Document{
		CEOs:      []Record{},
		Positions: []Record{},
		Accounts:  []Record{},
	}
}

// InvoiceNr atajo para el número de la factura ("" en un documento vacío).
func (d *Document) InvoiceNr() string {
	return d.Invoice.Get("INVOICE_NR")
}

// IsBlank true cuando la factura no existía al ensamblar.
func (d *Document) IsBlank() bool {
	return d.Invoice.IsEmpty()
}

func (d *Document) records() []namedRecord {
	return []namedRecord{
		{SectionInvoice, &d.Invoice},
		{SectionCustomer, &d.Customer},
		{SectionServiceProvider, &d.ServiceProvider},
	}
}

func (d *Document) lists() []namedList {
	return []namedList{
		{SectionCEOs, &d.CEOs},
		{SectionPositions, &d.Positions},
		{SectionAccounts, &d.Accounts},
	}
}

type namedRecord struct {
	name string
	rec  *Record
}

type namedList struct {
	name  string
	items *[]Record
}
