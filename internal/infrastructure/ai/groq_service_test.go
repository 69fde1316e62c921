package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pymebot/inventario-bot/internal/domain/entity"
)

func decode(t *testing.T, raw string) *entity.Intent {
	t.Helper()
	var p intentPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p.toIntent()
}

func TestToIntent_CamposPresentesYAusentes(t *testing.T) {
	intent := decode(t, `{"accion":"ACTUALIZAR","producto":"Martillo","precio":30000}`)

	assert.Equal(t, entity.ActionUpdate, intent.Action)
	require.NotNil(t, intent.Product)
	assert.Equal(t, "Martillo", *intent.Product)
	require.NotNil(t, intent.Price)
	assert.Equal(t, "30000", intent.Price.String())
	assert.Nil(t, intent.Quantity, "campo omitido queda en nil, no en cero")
	assert.Nil(t, intent.Cost)
}

func TestToIntent_CeroExplicitoNoEsAusencia(t *testing.T) {
	intent := decode(t, `{"accion":"CREAR","producto":"Martillo","cantidad":0}`)

	require.NotNil(t, intent.Quantity)
	assert.Equal(t, 0, *intent.Quantity, "cantidad 0 debe sobrevivir la coerción")
}

func TestToIntent_NullEquivaleAAusente(t *testing.T) {
	intent := decode(t, `{"accion":"VENTA","producto":"thinner","cantidad":null,"precio":null}`)

	assert.Nil(t, intent.Quantity)
	assert.Nil(t, intent.Price)
}

func TestToIntent_CoercionDeTipos(t *testing.T) {
	// El modelo a veces devuelve números como strings y nombres como números.
	intent := decode(t, `{"accion":"venta","producto":450,"cantidad":"3"}`)

	assert.Equal(t, entity.ActionSale, intent.Action, "la acción se normaliza a mayúsculas")
	require.NotNil(t, intent.Product)
	assert.Equal(t, "450", *intent.Product, "un producto numérico se convierte a texto")
	require.NotNil(t, intent.Quantity)
	assert.Equal(t, 3, *intent.Quantity)
}

func TestToIntent_AccionInvalidaEsDesconocido(t *testing.T) {
	intent := decode(t, `{"accion":"BAILAR","producto":"x"}`)

	assert.Equal(t, entity.ActionUnknown, intent.Action)
}
