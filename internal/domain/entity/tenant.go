package entity

import "strings"

// Columnas de la tabla USUARIOS_PYMES del libro maestro (1-based, fila 1 encabezado).
const (
	ColOwners       = 1 // A: set de caller ids, serializado con comas
	ColTenantUUID   = 2 // B
	ColBusinessName = 3 // C
	ColLedgerSheet  = 4 // D: id del libro de inventario de la pyme
	ColToken        = 5 // E: token de vinculación
	ColCreatedAt    = 6 // F
	ColBusinessType = 7 // G
)

// Tenant es una pyme registrada en el directorio maestro.
// La crea el flujo de aprovisionamiento; este núcleo solo muta Owners.
type Tenant struct {
	Row          int // fila en el directorio, para persistir cambios de Owners
	Owners       OwnerSet
	UUID         string
	BusinessName string
	LedgerSheet  string
	Token        string
	CreatedAt    string
	BusinessType string
}

// TenantFromRow arma un Tenant desde los valores crudos de una fila del directorio.
func TenantFromRow(row int, values []string) Tenant {
	get := func(col int) string {
		if col-1 < len(values) {
			return values[col-1]
		}
		return ""
	}
	return Tenant{
		Row:          row,
		Owners:       ParseOwnerSet(get(ColOwners)),
		UUID:         get(ColTenantUUID),
		BusinessName: get(ColBusinessName),
		LedgerSheet:  get(ColLedgerSheet),
		Token:        get(ColToken),
		CreatedAt:    get(ColCreatedAt),
		BusinessType: get(ColBusinessType),
	}
}

// OwnerSet es el conjunto de identidades de callers vinculadas a una pyme.
// En la hoja se serializa separado por comas (un id con coma no está
// soportado por el formato actual de tokens); este tipo concentra el
// parseo/serialización para que nadie más manipule el string crudo.
// El orden de inserción se conserva al serializar, pero la pertenencia
// no depende de él y los duplicados se suprimen.
type OwnerSet struct {
	ids []string
}

// ParseOwnerSet parsea la celda cruda: ids separados por comas, con espacios
// alrededor tolerados y entradas vacías descartadas.
func ParseOwnerSet(raw string) OwnerSet {
	var set OwnerSet
	for _, part := range strings.Split(raw, ",") {
		set.Add(strings.TrimSpace(part))
	}
	return set
}

// Contains indica si el id pertenece al conjunto.
func (s OwnerSet) Contains(id string) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Add agrega el id si no está ya (idempotente). Ignora strings vacíos.
func (s *OwnerSet) Add(id string) {
	if id == "" || s.Contains(id) {
		return
	}
	s.ids = append(s.ids, id)
}

// Len cantidad de ids en el conjunto.
func (s OwnerSet) Len() int { return len(s.ids) }

// String serializa el conjunto para la celda del directorio.
func (s OwnerSet) String() string {
	return strings.Join(s.ids, ",")
}
