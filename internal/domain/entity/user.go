package entity

import "time"

// Permisos conocidos por la aplicación (columna APP_PERM).
const (
	PermInvoicesRead   = "invoices.read"
	PermInvoicesWrite  = "invoices.write"
	PermInvoicesExport = "invoices.export"
	PermMasterData     = "master_data.write"
	PermUsersManage    = "users.manage"
)

// AllPermissions lista en orden estable de todos los permisos.
var AllPermissions = []string{
	PermInvoicesRead,
	PermInvoicesWrite,
	PermInvoicesExport,
	PermMasterData,
	PermUsersManage,
}

// User usuario de la aplicación.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Permissions  []string
	CreatedAt    time.Time
}

// Permission permiso asignable (tabla permissions).
type Permission struct {
	ID   int64
	Name string
}
