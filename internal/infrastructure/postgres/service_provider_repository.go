package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/rechnungsverwaltung/internal/domain"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/entity"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/repository"
)

var _ repository.ServiceProviderRepository = (*ServiceProviderRepo)(nil)

// ServiceProviderRepo prestadores de servicios con dirección, logo, cuentas y CEOs.
type ServiceProviderRepo struct {
	q Querier
}

// NewServiceProviderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewServiceProviderRepository(q Querier) *ServiceProviderRepo {
	return &ServiceProviderRepo{q: q}
}

const providerColumns = `
	s.ust_idnr, s.provider_name, s.mobiltelnr, s.telnr, s.faxnr, s.email, s.website,
	s.creation_date, COALESCE(s.fk_address_id, 0), s.fk_logo_id,
	COALESCE(a.street, ''), COALESCE(a.number, ''), COALESCE(a.zip, ''), COALESCE(a.city, ''), COALESCE(a.country, '')`

// Create inserta dirección y prestador. Cuentas y CEOs los gestiona el caso de uso.
func (r *ServiceProviderRepo) Create(ctx context.Context, p *entity.ServiceProvider) error {
	if p.Address != nil {
		id, err := insertAddress(ctx, r.q, p.Address)
		if err != nil {
			return err
		}
		p.AddressID = id
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO service_provider
			(ust_idnr, provider_name, mobiltelnr, telnr, faxnr, email, website, creation_date, fk_address_id, fk_logo_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.UstIDNr, p.ProviderName, p.MobileNumber, p.PhoneNumber, p.FaxNumber, p.Email, p.Website,
		p.CreatedAt, nullIfZero(p.AddressID), p.LogoID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert service provider: %w", err)
	}
	return nil
}

// GetByID obtiene el prestador con dirección. CEOs y cuentas van por separado.
func (r *ServiceProviderRepo) GetByID(ctx context.Context, ustIDNr string) (*entity.ServiceProvider, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+providerColumns+`
		FROM service_provider s LEFT JOIN addresses a ON a.id = s.fk_address_id
		WHERE s.ust_idnr = $1`, ustIDNr)
	p, err := scanProvider(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service provider: %w", err)
	}
	return p, nil
}

// List todos los prestadores ordenados por USt-IdNr.
func (r *ServiceProviderRepo) List(ctx context.Context) ([]*entity.ServiceProvider, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+providerColumns+`
		FROM service_provider s LEFT JOIN addresses a ON a.id = s.fk_address_id
		ORDER BY s.ust_idnr`)
	if err != nil {
		return nil, fmt.Errorf("list service providers: %w", err)
	}
	defer rows.Close()
	var list []*entity.ServiceProvider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service provider: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Delete borra cuentas, relaciones con CEOs, el prestador y su dirección.
// Las filas de ceo y bank se conservan: son registros compartidos.
func (r *ServiceProviderRepo) Delete(ctx context.Context, ustIDNr string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM account WHERE fk_ust_idnr = $1`, ustIDNr); err != nil {
		return fmt.Errorf("delete accounts: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM ref_labor_cost WHERE fk_ust_idnr = $1`, ustIDNr); err != nil {
		return fmt.Errorf("delete ceo links: %w", err)
	}
	var addressID *int64
	err := r.q.QueryRow(ctx,
		`DELETE FROM service_provider WHERE ust_idnr = $1 RETURNING fk_address_id`, ustIDNr,
	).Scan(&addressID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: el prestador tiene facturas", domain.ErrConflict)
		}
		return fmt.Errorf("delete service provider: %w", err)
	}
	if addressID != nil {
		if _, err := r.q.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, *addressID); err != nil {
			return fmt.Errorf("delete provider address: %w", err)
		}
	}
	return nil
}

// ListCEOs CEOs vinculados al prestador, ordenados por número fiscal.
func (r *ServiceProviderRepo) ListCEOs(ctx context.Context, ustIDNr string) ([]entity.CEO, error) {
	rows, err := r.q.Query(ctx, `
		SELECT ceo.st_nr, ceo.ceo_name
		FROM ref_labor_cost rel JOIN ceo ON ceo.st_nr = rel.fk_st_nr
		WHERE rel.fk_ust_idnr = $1
		ORDER BY ceo.st_nr`, ustIDNr)
	if err != nil {
		return nil, fmt.Errorf("list ceos: %w", err)
	}
	defer rows.Close()
	list := []entity.CEO{}
	for rows.Next() {
		var c entity.CEO
		if err := rows.Scan(&c.TaxNumber, &c.Name); err != nil {
			return nil, fmt.Errorf("scan ceo: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// ListAccounts cuentas del prestador con nombre del banco, ordenadas por IBAN.
func (r *ServiceProviderRepo) ListAccounts(ctx context.Context, ustIDNr string) ([]entity.BankAccount, error) {
	rows, err := r.q.Query(ctx, `
		SELECT acc.iban, acc.fk_bank_id, COALESCE(b.bank_name, ''), acc.fk_ust_idnr
		FROM account acc LEFT JOIN bank b ON b.bic = acc.fk_bank_id
		WHERE acc.fk_ust_idnr = $1
		ORDER BY acc.iban`, ustIDNr)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()
	list := []entity.BankAccount{}
	for rows.Next() {
		var a entity.BankAccount
		if err := rows.Scan(&a.IBAN, &a.BIC, &a.BankName, &a.UstIDNr); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// CreateLogo guarda la imagen y devuelve su id.
func (r *ServiceProviderRepo) CreateLogo(ctx context.Context, logo *entity.Logo) (int64, error) {
	var id int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO logos (file_name, logo_binary, mime_type, creation_date)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		logo.FileName, logo.Data, logo.MimeType, logo.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert logo: %w", err)
	}
	logo.ID = id
	return id, nil
}

// GetLogo nil, nil si no existe.
func (r *ServiceProviderRepo) GetLogo(ctx context.Context, id int64) (*entity.Logo, error) {
	var l entity.Logo
	err := r.q.QueryRow(ctx, `
		SELECT id, file_name, logo_binary, mime_type, creation_date FROM logos WHERE id = $1`, id,
	).Scan(&l.ID, &l.FileName, &l.Data, &l.MimeType, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get logo: %w", err)
	}
	return &l, nil
}

func scanProvider(row pgx.Row) (*entity.ServiceProvider, error) {
	var p entity.ServiceProvider
	var a entity.Address
	if err := row.Scan(
		&p.UstIDNr, &p.ProviderName, &p.MobileNumber, &p.PhoneNumber, &p.FaxNumber, &p.Email, &p.Website,
		&p.CreatedAt, &p.AddressID, &p.LogoID,
		&a.Street, &a.Number, &a.ZIP, &a.City, &a.Country,
	); err != nil {
		return nil, err
	}
	if p.AddressID != 0 {
		a.ID = p.AddressID
		p.Address = &a
	}
	return &p, nil
}
