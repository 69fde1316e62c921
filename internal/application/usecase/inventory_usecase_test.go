package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pymebot/inventario-bot/internal/application/usecase"
	"github.com/pymebot/inventario-bot/internal/domain/entity"
	"github.com/pymebot/inventario-bot/pkg/logger"
)

var invHeader = []string{"ID", "SKU", "Nombre", "Categoria", "Stock", "Unidad", "Costo", "Precio", "Vencimiento", "Ubicacion"}

var movHeader = []string{"Fecha", "TxID", "Tipo", "SKU", "Nombre", "Cantidad", "Usuario", "Notas"}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

// buildUC arma un caso de uso de inventario sobre tablas en memoria.
func buildUC(inv, mov *memTable) *usecase.InventoryUseCase {
	return usecase.NewInventoryUseCase(inv, mov, 5, testLogger())
}

// ──────────────────────────────────────────────────────────────────────────────
// Enrutador
// ──────────────────────────────────────────────────────────────────────────────

func TestProcess_AccionDesconocida(t *testing.T) {
	inv := newMemTable(invHeader)
	mov := newMemTable(movHeader)
	uc := buildUC(inv, mov)

	resp := uc.Process(context.Background(), &entity.Intent{Action: entity.ActionUnknown}, "Ana")

	assert.Contains(t, resp, "No entendí", "DESCONOCIDO debe cortocircuitar con el mensaje de no entendido")
	assert.Equal(t, 1, inv.rowCount(), "no debe haber mutaciones")
	assert.Equal(t, 1, mov.rowCount(), "no debe haber movimientos")
}

func TestProcess_FaltaProducto(t *testing.T) {
	uc := buildUC(newMemTable(invHeader), newMemTable(movHeader))

	resp := uc.Process(context.Background(), &entity.Intent{Action: entity.ActionSale}, "Ana")

	assert.Contains(t, resp, "nombre del producto")
}

func TestProcess_FalloDelAlmacenEsErrorTecnico(t *testing.T) {
	// Una caída del backend no debe confundirse con "no encontrado":
	// el usuario recibe el mensaje genérico de error técnico.
	inv := newMemTable(invHeader, []string{"aa11", "GEN-AA11", "Thinner", "Pinturas", "10", "GALON", "0", "30000"})
	inv.failReads = true
	uc := buildUC(inv, newMemTable(movHeader))

	resp := uc.Process(context.Background(), &entity.Intent{
		Action:  entity.ActionSale,
		Product: strPtr("thinner"),
	}, "Ana")

	assert.Contains(t, resp, "error técnico")
	assert.NotContains(t, resp, "No encontré", "una caída no es un miss del resolutor")
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolutor por niveles
// ──────────────────────────────────────────────────────────────────────────────

func TestResolver_SKUGanaSobreNombreParcial(t *testing.T) {
	// La consulta coincide con el SKU de la fila 2 y como substring del
	// nombre de la fila 3: el nivel SKU siempre gana.
	inv := newMemTable(invHeader,
		[]string{"aa11", "GEN-AA11", "Cemento Gris", "Materiales", "4", "BULTO", "0", "25000"},
		[]string{"bb22", "XX-99", "Taladro gen-aa11 Pro", "Herramientas", "2", "UND", "0", "90000"},
	)
	uc := buildUC(inv, newMemTable(movHeader))

	resp := uc.Process(context.Background(), &entity.Intent{
		Action:  entity.ActionQuery,
		Product: strPtr("gen-aa11"),
	}, "Ana")

	assert.Contains(t, resp, "Cemento Gris", "debe resolver la fila del SKU exacto")
	assert.NotContains(t, resp, "Taladro")
}

func TestResolver_NombreExactoAntesQueParcial(t *testing.T) {
	inv := newMemTable(invHeader,
		[]string{"aa11", "S1", "Martillo de Bola", "Herramientas", "3", "UND", "0", "25000"},
		[]string{"bb22", "S2", "Martillo", "Herramientas", "7", "UND", "0", "15000"},
	)
	uc := buildUC(inv, newMemTable(movHeader))

	resp := uc.Process(context.Background(), &entity.Intent{
		Action:  entity.ActionQuery,
		Product: strPtr("MARTILLO"),
	}, "Ana")

	assert.Contains(t, resp, "Stock: 7", "el nombre exacto (fila 3) gana sobre el parcial (fila 2)")
}

func TestResolver_ParcialConAcentos(t *testing.T) {
	inv := newMemTable(invHeader,
		[]string{"aa11", "S1", "Pañal Pequeño Etapa 1", "Bebés", "12", "UND", "0", "800"},
	)
	uc := buildUC(inv, newMemTable(movHeader))

	resp := uc.Process(context.Background(), &entity.Intent{
		Action:  entity.ActionQuery,
		Product: strPtr("panal pequeno"),
	}, "Ana")

	assert.Contains(t, resp, "Etapa 1", "la comparación debe ignorar acentos y mayúsculas")
}

// ──────────────────────────────────────────────────────────────────────────────
// VENTA
// ──────────────────────────────────────────────────────────────────────────────

func TestVenta_DescuentaYRegistraMovimiento(t *testing.T) {
	inv := newMemTable(invHeader,
		[]string{"aa11", "GEN-AA11", "Thinner", "Pinturas", "10", "GALON", "18000", "30000"},
	)
	mov := newMemTable(movHeader)
	uc := buildUC(inv, mov)

	resp := uc.Process(context.Background(), &entity.Intent{
		Action:   entity.ActionSale,
		Product:  strPtr("thinner"),
		Quantity: intPtr(2),
	}, "Carlos")

	assert.Contains(t, resp, "Venta Registrada")
	assert.Contains(t, resp, "10 ➡ 8")

	rows := inv.snapshot()
	assert.Equal(t, "8", rows[1][4], "el stock debe quedar en 8")

	require.Equal(t, 2, mov.rowCount(), "debe haber exactamente un movimiento")
	m := mov.snapshot()[1]
	assert.Equal(t, entity.MovementSale, m[2])
	assert.Equal(t, "GEN-AA11", m[3])
	assert.Equal(t, "-2", m[5], "la venta se registra con cantidad negativa")
	assert.Equal(t, "Carlos", m[6])
}

func TestVenta_StockInsuficienteNoMuta(t *testing.T) {
	inv := newMemTable(invHeader,
		[]string{"aa11", "GEN-AA11", "Thinner", "Pinturas", "4", "GALON", "0", "30000"},
	)
	mov := newMemTable(movHeader)
	uc := buildUC(inv, mov)
	antes := inv.snapshot()

	resp := uc.Process(context.Background(), &entity.Intent{
		Action:   entity.ActionSale,
		Product:  strPtr("thinner"),
		Quantity: intPtr(6),
	}, "Ana")

	assert.Contains(t, resp, "Stock Insuficiente")
	assert.Contains(t, resp, "Tienes: 4", "debe citar el stock actual")
	assert.Contains(t, resp, "Intentas vender: 6", "debe citar la cantidad pedida")
	assert.Equal(t, antes, inv.snapshot(), "el registro debe quedar intacto")
	assert.Equal(t, 1, mov.rowCount(), "sin movimiento de auditoría")
}

func TestVenta_DosVentasSecuenciales(t *testing.T) {
	// Stock 10, dos ventas de 6: la primera pasa (10→4), la segunda se
	// rechaza por insuficiente y el stock final sigue en 4.
	inv := newMemTable(invHeader,
		[]string{"aa11", "GEN-AA11", "Thinner", "Pinturas", "10", "GALON", "0", "30000"},
	)
	uc := buildUC(inv, newMemTable(movHeader))
	intent := &entity.Intent{Action: entity.ActionSale, Product: strPtr("thinner"), Quantity: intPtr(6)}

	primera := uc.Process(context.Background(), intent, "Ana")
	segunda := uc.Process(context.Background(), intent, "Ana")

	assert.Contains(t, primera, "10 ➡ 4")
	assert.Contains(t, segunda, "Stock Insuficiente")
	assert.Equal(t, "4", inv.snapshot()[1][4])
}

// ──────────────────────────────────────────────────────────────────────────────
// COMPRA
// ──────────────────────────────────────────────────────────────────────────────

func TestCompra_IncrementaSinTope(t *testing.T) {
	inv := newMemTable(invHeader,
		[]string{"aa11", "GEN-AA11", "Cemento Argos", "Materiales", "3", "BULTO", "0", "25000"},
	)
	mov := newMemTable(movHeader)
	uc := buildUC(inv, mov)

	resp := uc.Process(context.Background(), &entity.Intent{
		Action:   entity.ActionBuy,
		Product:  strPtr("cemento"),
		Quantity: intPtr(10),
	}, "Ana")

	assert.Contains(t, resp, "Entrada Registrada")
	assert.Contains(t, resp, "3 ➡ 13")
	assert.Equal(t, "13", inv.snapshot()[1][4])

	require.Equal(t, 2, mov.rowCount())
	assert.Equal(t, entity.MovementPurchase, mov.snapshot()[1][2])
	assert.Equal(t, "10", mov.snapshot()[1][5], "la compra se registra con cantidad positiva")
}

func TestCompra_ProductoInexistente(t *testing.T) {
	inv := newMemTable(invHeader)
	mov := newMemTable(movHeader)
	uc := buildUC(inv, mov)

	resp := uc.Process(context.Background(), &entity.Intent{
		Action:   entity.ActionBuy,
		Product:  strPtr("cemento argos"),
		Quantity: intPtr(10),
	}, "Ana")

	assert.Contains(t, resp, "No encontré nada relacionado con 'cemento argos'")
	assert.Equal(t, 1, inv.rowCount(), "sin mutaciones")
	assert.Equal(t, 1, mov.rowCount())
}

// ──────────────────────────────────────────────────────────────────────────────
// CREAR
// ──────────────────────────────────────────────────────────────────────────────

func TestCrear_ConStockCeroNoGeneraMovimiento(t *testing.T) {
	inv := newMemTable(invHeader)
	mov := newMemTable(movHeader)
	uc := buildUC(inv, mov)

	resp := uc.Process(context.Background(), &entity.Intent{
		Action:   entity.ActionCreate,
		Product:  strPtr("Martillo de Bola"),
		Price:    decPtr(25000),
		Quantity: intPtr(0),
	}, "Ana")

	assert.Contains(t, resp, "Producto Creado")
	assert.Contains(t, resp, "Stock inicial: 0")

	require.Equal(t, 2, inv.rowCount(), "debe existir exactamente una fila nueva")
	fila := inv.snapshot()[1]
	assert.Len(t, fila[0], 8, "id opaco de 8 caracteres")
	assert.Regexp(t, `^GEN-[0-9A-F]{4}$`, fila[1], "SKU derivado del id")
	assert.Equal(t, "Martillo de Bola", fila[2])
	assert.Equal(t, "General", fila[3], "categoría por defecto")
	assert.Equal(t, "0", fila[4])
	assert.Equal(t, "UND", fila[5], "unidad por defecto")
	assert.Equal(t, "25000", fila[7])

	assert.Equal(t, 1, mov.rowCount(), "stock inicial 0 no deja movimiento CREACION")
}

func TestCrear_ConStockInicialRegistraCreacion(t *testing.T) {
	inv := newMemTable(invHeader)
	mov := newMemTable(movHeader)
	uc := buildUC(inv, mov)

	uc.Process(context.Background(), &entity.Intent{
		Action:     entity.ActionCreate,
		Product:    strPtr("Cable No. 12"),
		Price:      decPtr(1500),
		Quantity:   intPtr(50),
		Category:   strPtr("Eléctricos"),
		Unit:       strPtr("MTS"),
		Location:   strPtr("Estante 4"),
		Expiration: strPtr("2027-05-12"),
	}, "Ana")

	fila := inv.snapshot()[1]
	assert.Equal(t, "Eléctricos", fila[3])
	assert.Equal(t, "50", fila[4])
	assert.Equal(t, "MTS", fila[5])
	assert.Equal(t, "2027-05-12", fila[8])
	assert.Equal(t, "Estante 4", fila[9])

	require.Equal(t, 2, mov.rowCount())
	m := mov.snapshot()[1]
	assert.Equal(t, entity.MovementCreation, m[2])
	assert.Equal(t, "50", m[5])
	assert.Equal(t, "Stock Inicial", m[7])
}

func TestCrear_DuplicadoParcialNoCreaFila(t *testing.T) {
	// La detección de duplicados usa el mismo resolutor laxo: un nombre que
	// coincide parcialmente con uno existente genera advertencia y cero filas.
	inv := newMemTable(invHeader,
		[]string{"aa11", "S1", "Martillo Grande", "Herramientas", "3", "UND", "0", "25000"},
	)
	mov := newMemTable(movHeader)
	uc := buildUC(inv, mov)

	resp := uc.Process(context.Background(), &entity.Intent{
		Action:  entity.ActionCreate,
		Product: strPtr("Martillo"),
		Price:   decPtr(10000),
	}, "Ana")

	assert.Contains(t, resp, "producto similar")
	assert.Contains(t, resp, "Martillo Grande")
	assert.Equal(t, 2, inv.rowCount(), "cero filas nuevas")
	assert.Equal(t, 1, mov.rowCount())
}

// ──────────────────────────────────────────────────────────────────────────────
// CONSULTA
// ──────────────────────────────────────────────────────────────────────────────

func TestConsulta_FilaLegadaCorta(t *testing.T) {
	// Filas viejas pueden no tener todas las columnas: la consulta debe
	// responder con marcadores en vez de fallar.
	inv := newMemTable(invHeader,
		[]string{"aa11", "S1", "Bombillo"},
	)
	uc := buildUC(inv, newMemTable(movHeader))

	resp := uc.Process(context.Background(), &entity.Intent{
		Action:  entity.ActionQuery,
		Product: strPtr("bombillo"),
	}, "Ana")

	assert.Contains(t, resp, "Consulta de Inventario")
	assert.Contains(t, resp, "Stock: 0 UND")
	assert.Contains(t, resp, `Costo: $0`)
}

// ──────────────────────────────────────────────────────────────────────────────
// ACTUALIZAR
// ──────────────────────────────────────────────────────────────────────────────

func TestActualizar_SoloPrecio(t *testing.T) {
	inv := newMemTable(invHeader,
		[]string{"aa11", "S1", "Martillo", "Herramientas", "3", "UND", "10000", "25000", "", "Bodega"},
	)
	mov := newMemTable(movHeader)
	uc := buildUC(inv, mov)
	antes := inv.snapshot()

	resp := uc.Process(context.Background(), &entity.Intent{
		Action:  entity.ActionUpdate,
		Product: strPtr("Martillo"),
		Price:   decPtr(30000),
	}, "Ana")

	assert.Contains(t, resp, "Producto Actualizado")
	assert.Contains(t, resp, `Cambios: Precio: $30000`)
	assert.NotContains(t, resp, ",", "debe listar exactamente un cambio")

	despues := inv.snapshot()
	assert.Equal(t, "30000", despues[1][7], "solo cambia la celda de precio")
	antes[1][7] = "30000"
	assert.Equal(t, antes, despues, "el resto de la fila queda intacto")
	assert.Equal(t, 1, mov.rowCount(), "cambiar precio no deja movimiento")
}

func TestActualizar_StockDejaAjuste(t *testing.T) {
	inv := newMemTable(invHeader,
		[]string{"aa11", "S1", "Martillo", "Herramientas", "3", "UND", "0", "25000"},
	)
	mov := newMemTable(movHeader)
	uc := buildUC(inv, mov)

	resp := uc.Process(context.Background(), &entity.Intent{
		Action:   entity.ActionUpdate,
		Product:  strPtr("Martillo"),
		Quantity: intPtr(50),
	}, "Ana")

	assert.Contains(t, resp, "Stock: 50")
	assert.Equal(t, "50", inv.snapshot()[1][4])

	require.Equal(t, 2, mov.rowCount(), "el ajuste manual queda en el historial")
	m := mov.snapshot()[1]
	assert.Equal(t, entity.MovementAdjustment, m[2])
	assert.Equal(t, "50", m[5])
	assert.Equal(t, "Corrección Manual", m[7])
}

func TestActualizar_CeroExplicitoSiEscribe(t *testing.T) {
	// Cero no es ausencia: "poner stock en 0" debe escribir el cero.
	inv := newMemTable(invHeader,
		[]string{"aa11", "S1", "Martillo", "Herramientas", "3", "UND", "0", "25000"},
	)
	uc := buildUC(inv, newMemTable(movHeader))

	resp := uc.Process(context.Background(), &entity.Intent{
		Action:   entity.ActionUpdate,
		Product:  strPtr("Martillo"),
		Quantity: intPtr(0),
	}, "Ana")

	assert.Contains(t, resp, "Stock: 0")
	assert.Equal(t, "0", inv.snapshot()[1][4])
}

func TestActualizar_VariosCampos(t *testing.T) {
	inv := newMemTable(invHeader,
		[]string{"aa11", "S1", "Martillo", "herramientas", "3", "UND", "0", "25000"},
	)
	uc := buildUC(inv, newMemTable(movHeader))

	resp := uc.Process(context.Background(), &entity.Intent{
		Action:   entity.ActionUpdate,
		Product:  strPtr("Martillo"),
		Category: strPtr("ferretería"),
		NewSKU:   strPtr("mar-001"),
		NewName:  strPtr("Martillo de Uña"),
	}, "Ana")

	assert.Contains(t, resp, "Martillo de Uña", "el mensaje usa el nombre nuevo")
	fila := inv.snapshot()[1]
	assert.Equal(t, "MAR-001", fila[1], "el SKU se fuerza a mayúsculas")
	assert.Equal(t, "Martillo de Uña", fila[2])
	assert.Equal(t, "Ferretería", fila[3], "la categoría se escribe en título")
}

func TestActualizar_SinCamposEsNoOp(t *testing.T) {
	inv := newMemTable(invHeader,
		[]string{"aa11", "S1", "Martillo", "Herramientas", "3", "UND", "0", "25000"},
	)
	mov := newMemTable(movHeader)
	uc := buildUC(inv, mov)
	antes := inv.snapshot()

	resp := uc.Process(context.Background(), &entity.Intent{
		Action:  entity.ActionUpdate,
		Product: strPtr("Martillo"),
	}, "Ana")

	assert.Contains(t, resp, "no me dijiste qué cambiar")
	assert.Equal(t, antes, inv.snapshot(), "la fila debe quedar byte a byte igual")
	assert.Equal(t, 1, mov.rowCount())
}

// ──────────────────────────────────────────────────────────────────────────────
// Auditoría best-effort
// ──────────────────────────────────────────────────────────────────────────────

func TestVenta_FalloDelHistorialNoRevierte(t *testing.T) {
	// El historial es best-effort: si el append falla la venta ya aplicada
	// se mantiene y la respuesta sigue siendo de éxito.
	inv := newMemTable(invHeader,
		[]string{"aa11", "GEN-AA11", "Thinner", "Pinturas", "10", "GALON", "0", "30000"},
	)
	mov := newMemTable(movHeader)
	mov.failWrites = true
	uc := buildUC(inv, mov)

	resp := uc.Process(context.Background(), &entity.Intent{
		Action:   entity.ActionSale,
		Product:  strPtr("thinner"),
		Quantity: intPtr(2),
	}, "Ana")

	assert.Contains(t, resp, "Venta Registrada")
	assert.Equal(t, "8", inv.snapshot()[1][4], "la mutación del inventario queda aplicada")
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

// Cada mensaje del webhook se procesa en su propia goroutine; el único estado
// compartido permitido entre invocaciones es el almacén. Con -race este test
// delata cualquier transformador o caser compartido en la ruta de resolución
// y de actualización de categoría.
func TestProcess_ActualizacionesConcurrentes(t *testing.T) {
	inv := newMemTable(invHeader,
		[]string{"aa11", "GEN-AA11", "Thinner", "Pinturas", "10", "GALON", "0", "30000"},
	)
	uc := buildUC(inv, newMemTable(movHeader))

	const goroutines = 8
	const vueltas = 200
	respuestas := make(chan string, goroutines*vueltas)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for v := 0; v < vueltas; v++ {
				respuestas <- uc.Process(context.Background(), &entity.Intent{
					Action:   entity.ActionUpdate,
					Product:  strPtr("Thínner"),
					Category: strPtr("ferretería"),
				}, "Ana")
			}
		}()
	}
	wg.Wait()
	close(respuestas)

	for resp := range respuestas {
		require.Contains(t, resp, "Producto Actualizado", "ninguna invocación debe degradarse a error")
	}
	assert.Equal(t, "Ferretería", inv.snapshot()[1][3], "la categoría queda capitalizada")
}
