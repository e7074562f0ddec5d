package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jhoicas/costeo-api/internal/application/costing"
	"github.com/jhoicas/costeo-api/internal/application/dto"
	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/infrastructure/memory"
	"github.com/jhoicas/costeo-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/costeo-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/costeo-api/pkg/jwt"
)

var now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// lockedLocker simula otro recálculo en curso.
type lockedLocker struct{}

func (lockedLocker) Lock(context.Context, string) (func(), error) {
	return nil, domain.ErrLockNotObtained
}

// seedTaller mesa con BOM de dos componentes, una tarea con activo fijo y un item recibido.
func seedTaller(s *memory.Store) {
	from := now.Add(-48 * time.Hour)
	s.AddAssoc(entity.ProductAssoc{ProductID: "MESA", ProductIDTo: "TABLERO", ProductAssocTypeID: entity.AssocManufComponent, Quantity: dec("1"), SequenceNum: 10, FromDate: from})
	s.AddAssoc(entity.ProductAssoc{ProductID: "MESA", ProductIDTo: "PATA", ProductAssocTypeID: entity.AssocManufComponent, Quantity: dec("4"), SequenceNum: 20, FromDate: from})
	s.AddCostComponent(entity.CostComponent{ID: "C-TAB", ProductID: "TABLERO", CostComponentTypeID: "EST_STD_MAT_COST", CostUomID: "USD", Cost: dec("30"), FromDate: from})
	s.AddCostComponent(entity.CostComponent{ID: "C-PATA", ProductID: "PATA", CostComponentTypeID: "EST_STD_MAT_COST", CostUomID: "USD", Cost: dec("2.5"), FromDate: from})

	s.AddFixedAsset(entity.FixedAsset{ID: "SIERRA"})
	s.AddFixedAssetStdCost(entity.FixedAssetStdCost{FixedAssetID: "SIERRA", FixedAssetStdCostTypeID: entity.FixedAssetUsageCost, AmountUomID: "USD", Amount: dec("36"), FromDate: from})
	s.AddFixedAssetStdCost(entity.FixedAssetStdCost{FixedAssetID: "SIERRA", FixedAssetStdCostTypeID: entity.FixedAssetSetupCost, AmountUomID: "USD", Amount: dec("10"), FromDate: from})
	corte := &entity.WorkEffort{ID: "CORTE", FixedAssetID: "SIERRA", EstimatedMilliSeconds: dec("1800000"), EstimatedSetupMillis: dec("1800000"), SequenceNum: 1}
	s.SetRouting("MESA", entity.Routing{ID: "RUTA-MESA", Tasks: []*entity.WorkEffort{corte}})

	s.AddFacility(entity.Facility{ID: "BOD-1", OwnerPartyID: "ORG-1"})
	s.AddInventoryItem(entity.InventoryItem{ID: "INV-1", ProductID: "TORNILLO", FacilityID: "BOD-1", UnitCost: dec("16"), QuantityOnHandTotal: dec("50")})
}

func newCostingApp(t *testing.T, locker costing.Locker) *fiber.App {
	t.Helper()
	formulas := costing.NewFormulaRegistry()
	costing.RegisterBuiltins(formulas)
	engine := costing.NewEngine(formulas, costing.Settings{
		Now:      func() time.Time { return now },
		Log:      zerolog.Nop(),
		Decimals: 6,
	})
	store := memory.NewStore()
	seedTaller(store)
	uc := costing.NewCostingUseCase(store, locker, engine,
		costing.UseCaseConfig{DefaultCurrency: "USD", DefaultPrefix: "EST_STD"}, zerolog.Nop()).
		WithCostSheetRenderer(pdf.NewBomCostSheetGenerator(language.Spanish, 2))

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		CostingUC: uc,
		JWTSecret: testJWTSecret,
		JWTIssuer: testIssuer,
		Log:       zerolog.Nop(),
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestCostingHandler_SinToken_Retorna401(t *testing.T) {
	app := newCostingApp(t, costing.NewKeyedLocker())
	resp := call(t, app, http.MethodGet, "/api/costs/products/TABLERO", "", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCostingHandler_CostoDeProducto_AplicaValoresPorDefecto(t *testing.T) {
	app := newCostingApp(t, costing.NewKeyedLocker())
	resp := call(t, app, http.MethodGet, "/api/costs/products/TABLERO", pkgjwt.RoleConsulta, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[dto.ProductCostResponse](t, resp)
	assert.Equal(t, "USD", out.CurrencyUomID)
	assert.Equal(t, "EST_STD", out.CostComponentTypePrefix)
	assert.True(t, dec("30").Equal(out.Cost), "obtuvo %s", out.Cost)
}

func TestCostingHandler_Recalculo_CostosPersisteTotal(t *testing.T) {
	app := newCostingApp(t, costing.NewKeyedLocker())
	resp := call(t, app, http.MethodPost, "/api/costs/products/MESA/calculate", pkgjwt.RoleCostos,
		`{"currency_uom_id":"USD"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// material 40 + tarea 23
	out := decode[dto.CalculateProductCostsResponse](t, resp)
	assert.True(t, dec("63").Equal(out.TotalCost), "obtuvo %s", out.TotalCost)

	resp = call(t, app, http.MethodGet, "/api/costs/products/MESA", pkgjwt.RoleConsulta, "")
	cost := decode[dto.ProductCostResponse](t, resp)
	assert.True(t, dec("63").Equal(cost.Cost), "el costo leído debe coincidir con el recalculado")
}

func TestCostingHandler_Recalculo_ConsultaBloqueado(t *testing.T) {
	app := newCostingApp(t, costing.NewKeyedLocker())
	resp := call(t, app, http.MethodPost, "/api/costs/products/MESA/calculate", pkgjwt.RoleConsulta, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCostingHandler_Recalculo_BloqueoOcupadoRetorna409(t *testing.T) {
	app := newCostingApp(t, lockedLocker{})
	resp := call(t, app, http.MethodPost, "/api/costs/products/MESA/calculate", pkgjwt.RoleAdmin, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "LOCKED")
}

func TestCostingHandler_SimulacionBOM(t *testing.T) {
	app := newCostingApp(t, costing.NewKeyedLocker())
	resp := call(t, app, http.MethodGet, "/api/costs/products/MESA/bom-simulation?quantity=2", pkgjwt.RoleConsulta, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[dto.BomSimulationResponse](t, resp)
	require.Len(t, out.Nodes, 3)
	assert.Equal(t, "MESA", out.Nodes[0].ProductID)
	assert.True(t, dec("80").Equal(out.Nodes[0].LineCost), "obtuvo %s", out.Nodes[0].LineCost)
	assert.True(t, dec("40").Equal(out.Nodes[0].UnitCost))
	assert.Equal(t, "TABLERO", out.Nodes[1].ProductID)
	assert.True(t, dec("8").Equal(out.Nodes[2].RequiredQuantity))
}

func TestCostingHandler_SimulacionBOM_CantidadInvalida(t *testing.T) {
	app := newCostingApp(t, costing.NewKeyedLocker())
	resp := call(t, app, http.MethodGet, "/api/costs/products/MESA/bom-simulation?quantity=abc", pkgjwt.RoleConsulta, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCostingHandler_HojaDeCostoPDF(t *testing.T) {
	app := newCostingApp(t, costing.NewKeyedLocker())
	resp := call(t, app, http.MethodGet, "/api/costs/products/MESA/bom-simulation.pdf?quantity=2", pkgjwt.RoleConsulta, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "%PDF"))
}

func TestCostingHandler_TiempoEstimadoDeTarea(t *testing.T) {
	app := newCostingApp(t, costing.NewKeyedLocker())
	resp := call(t, app, http.MethodGet, "/api/costs/tasks/CORTE/estimated-time?quantity=3", pkgjwt.RoleConsulta, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[dto.TaskTimeResponse](t, resp)
	assert.True(t, dec("7200000").Equal(out.EstimatedTaskTime), "obtuvo %s", out.EstimatedTaskTime)
	assert.True(t, dec("1800000").Equal(out.SetupTime))
}

func TestCostingHandler_TareaInexistente_Retorna404(t *testing.T) {
	app := newCostingApp(t, costing.NewKeyedLocker())
	resp := call(t, app, http.MethodGet, "/api/costs/tasks/NO-EXISTE/cost", pkgjwt.RoleConsulta, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCostingHandler_CostoDeTarea(t *testing.T) {
	app := newCostingApp(t, costing.NewKeyedLocker())
	resp := call(t, app, http.MethodGet, "/api/costs/tasks/CORTE/cost?product_id=MESA&routing_id=RUTA-MESA", pkgjwt.RoleConsulta, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode[dto.TaskCostResponse](t, resp)
	assert.Equal(t, "USD", out.CurrencyUomID)
	assert.True(t, dec("23").Equal(out.TaskCost), "obtuvo %s", out.TaskCost)
	assert.Empty(t, out.CostsByType)
}

func TestCostingHandler_Recepcion_RegistraPromedio(t *testing.T) {
	app := newCostingApp(t, costing.NewKeyedLocker())
	resp := call(t, app, http.MethodPost, "/api/costs/average-cost/receipts", pkgjwt.RoleCostos,
		`{"facility_id":"BOD-1","quantity_accepted":"50","product_id":"TORNILLO","inventory_item_id":"INV-1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	out := decode[dto.AverageCostResponse](t, resp)
	assert.True(t, dec("16").Equal(out.AverageCost), "sin promedio previo usa el costo del item")
	assert.Equal(t, "ORG-1", out.OrganizationPartyID)
	assert.Equal(t, entity.AverageCostTypeSimple, out.AverageCostTypeID)
}

func TestCostingHandler_Recepcion_CantidadNoPositivaRetorna400(t *testing.T) {
	app := newCostingApp(t, costing.NewKeyedLocker())
	resp := call(t, app, http.MethodPost, "/api/costs/average-cost/receipts", pkgjwt.RoleCostos,
		`{"facility_id":"BOD-1","quantity_accepted":"0","product_id":"TORNILLO","inventory_item_id":"INV-1"}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCostingHandler_Recepcion_CuerpoInvalido(t *testing.T) {
	app := newCostingApp(t, costing.NewKeyedLocker())
	resp := call(t, app, http.MethodPost, "/api/costs/average-cost/receipts", pkgjwt.RoleAdmin, `{no-json`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
