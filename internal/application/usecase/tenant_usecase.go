package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pymebot/inventario-bot/internal/application/dto"
	"github.com/pymebot/inventario-bot/internal/application/ports"
	"github.com/pymebot/inventario-bot/internal/domain"
	"github.com/pymebot/inventario-bot/internal/domain/entity"
	"github.com/pymebot/inventario-bot/internal/domain/repository"
	"github.com/pymebot/inventario-bot/pkg/logger"
	"github.com/pymebot/inventario-bot/pkg/markdown"
)

const (
	msgTokenInvalido = `❌ Token inválido o no encontrado\.`
	msgErrorVincular = `Error técnico al vincular cuenta\.`
)

// TenantUseCase opera el directorio maestro de pymes: resolución de
// identidad, protocolo de vinculación por token y aprovisionamiento.
type TenantUseCase struct {
	dir         repository.Table
	provisioner ports.SheetProvisioner
	log         *logger.Logger
}

// NewTenantUseCase construye el caso de uso sobre la tabla USUARIOS_PYMES.
// provisioner puede ser nil si el despliegue no expone el alta de pymes.
func NewTenantUseCase(dir repository.Table, provisioner ports.SheetProvisioner, log *logger.Logger) *TenantUseCase {
	return &TenantUseCase{dir: dir, provisioner: provisioner, log: log}
}

// ResolveByCaller busca la pyme a la que pertenece una identidad de caller.
// El id coincide si es un elemento del set de dueños de la entrada; gana la
// primera coincidencia. Si el caller no está vinculado devuelve un error que
// envuelve domain.ErrTenantNotFound.
func (uc *TenantUseCase) ResolveByCaller(ctx context.Context, callerID string) (*entity.Tenant, error) {
	owners, err := uc.dir.ColValues(ctx, entity.ColOwners)
	if err != nil {
		return nil, fmt.Errorf("leer columna de dueños: %w", err)
	}
	for i, raw := range owners {
		if i == 0 {
			continue // encabezado
		}
		if !entity.ParseOwnerSet(raw).Contains(callerID) {
			continue
		}
		row := i + 1
		values, err := uc.dir.RowValues(ctx, row)
		if err != nil {
			return nil, fmt.Errorf("leer entrada del directorio: %w", err)
		}
		t := entity.TenantFromRow(row, values)
		if t.LedgerSheet == "" {
			// Entrada a medio aprovisionar; se ignora.
			uc.log.Warn().Int("fila", row).Msg("entrada del directorio sin libro de inventario")
			continue
		}
		return &t, nil
	}
	return nil, fmt.Errorf("caller %s: %w", callerID, domain.ErrTenantNotFound)
}

// Link vincula una identidad de caller con la pyme dueña del token.
// La comparación del token es exacta y sensible a mayúsculas. Si el caller
// ya está vinculado la operación es idempotente y también responde éxito.
// Devuelve (ok, mensaje listo para el canal).
func (uc *TenantUseCase) Link(ctx context.Context, callerID, token string) (bool, string) {
	row, err := uc.dir.FindInColumn(ctx, entity.ColToken, token)
	if err == nil && row == 0 {
		err = fmt.Errorf("token %q: %w", token, domain.ErrInvalidToken)
	}
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			uc.log.Warn().Str("caller", callerID).Msg("intento de vinculación con token inválido")
			return false, msgTokenInvalido
		}
		uc.log.Error().Err(err).Msg("error buscando token en el directorio")
		return false, msgErrorVincular
	}

	raw, err := uc.dir.Cell(ctx, row, entity.ColOwners)
	if err != nil {
		uc.log.Error().Err(err).Msg("error leyendo dueños actuales")
		return false, msgErrorVincular
	}
	owners := entity.ParseOwnerSet(raw)
	if !owners.Contains(callerID) {
		owners.Add(callerID)
		if err := uc.dir.UpdateCell(ctx, row, entity.ColOwners, owners.String()); err != nil {
			uc.log.Error().Err(err).Msg("error persistiendo el nuevo dueño")
			return false, msgErrorVincular
		}
	}

	name, err := uc.dir.Cell(ctx, row, entity.ColBusinessName)
	if err != nil {
		uc.log.Error().Err(err).Msg("error leyendo nombre de la pyme")
		return false, msgErrorVincular
	}
	return true, fmt.Sprintf("✅ ¡Vinculación exitosa\\!\nBienvenido a *%s*\\.", markdown.Escape(name))
}

// CreateTenant aprovisiona una pyme nueva: copia la plantilla de inventario,
// genera el token de invitación y registra la entrada en el directorio.
func (uc *TenantUseCase) CreateTenant(ctx context.Context, name, businessType, adminID string) (*dto.CreateTenantResponse, error) {
	if uc.provisioner == nil {
		return nil, fmt.Errorf("aprovisionamiento no configurado")
	}
	if name == "" {
		return nil, fmt.Errorf("crear pyme, falta el nombre: %w", domain.ErrInvalidInput)
	}

	id := uuid.NewString()
	title := fmt.Sprintf("DB_%s_%s", name, id[:4])
	uc.log.Info().Str("pyme", name).Str("archivo", title).Msg("iniciando creación de pyme")

	sheetID, err := uc.provisioner.CopyTemplate(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("copiar plantilla: %w", err)
	}

	token := strings.ToUpper(uuid.NewString()[:6])
	err = uc.dir.AppendRow(ctx, []string{
		adminID,
		id,
		name,
		sheetID,
		token,
		time.Now().Format("2006-01-02 15:04:05"),
		businessType,
	})
	if err != nil {
		return nil, fmt.Errorf("registrar pyme en el directorio: %w", err)
	}

	uc.log.Info().Str("pyme", name).Str("sheet_id", sheetID).Msg("pyme creada")
	return &dto.CreateTenantResponse{
		Token:   token,
		SheetID: sheetID,
		URL:     "https://docs.google.com/spreadsheets/d/" + sheetID,
	}, nil
}
