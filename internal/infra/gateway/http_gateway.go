package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/RoyceAzure/lab/pos/internal/domain/model"
)

const defaultRequestTimeout = 15 * time.Second

// HTTPGateway IOrderGateway 的 net/http 實作
// 逾時與重試策略屬於傳輸層，這裡只設單次請求逾時，絕不自動重送
type HTTPGateway struct {
	baseURL string
	token   string
	client  *http.Client
	logger  zerolog.Logger
}

type HTTPGatewayOption func(*HTTPGateway)

func WithHTTPClient(client *http.Client) HTTPGatewayOption {
	return func(g *HTTPGateway) {
		g.client = client
	}
}

func WithToken(token string) HTTPGatewayOption {
	return func(g *HTTPGateway) {
		g.token = token
	}
}

func NewHTTPGateway(baseURL string, logger zerolog.Logger, opts ...HTTPGatewayOption) *HTTPGateway {
	g := &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultRequestTimeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// call 送出單一請求並解開回應信封
// 信封解不開一律視為傳輸層失敗；解得開則以 success 判定成敗，
// HTTP 409 用來區分 ErrConflict 與一般 ErrValidation
func (g *HTTPGateway) call(ctx context.Context, method, path string, body any, out any) (string, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("marshal request for %s: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("remote call failed")
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response of %s: %v", ErrTransport, path, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		g.logger.Error().Int("status", resp.StatusCode).Str("path", path).Msg("unparsable response body")
		return "", fmt.Errorf("%w: status %d with unparsable body", ErrTransport, resp.StatusCode)
	}

	if !envelope.Success {
		if resp.StatusCode == http.StatusConflict {
			return "", fmt.Errorf("%w: %s", ErrConflict, envelope.Message)
		}
		return "", fmt.Errorf("%w: %s", ErrValidation, envelope.Message)
	}

	// success=true 但 data 缺席時視為空結果
	if out != nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return "", fmt.Errorf("%w: decode data of %s: %v", ErrTransport, path, err)
		}
	}

	g.logger.Debug().Str("method", method).Str("path", path).Msg("remote call ok")
	return envelope.Message, nil
}

func (g *HTTPGateway) ListTables(ctx context.Context, classificationID *int) ([]model.Table, error) {
	path := "/mesa/listado/estado"
	if classificationID != nil {
		path += "?CodigoClasificacionMesa=" + url.QueryEscape(strconv.Itoa(*classificationID))
	}
	var tables []model.Table
	if _, err := g.call(ctx, http.MethodGet, path, nil, &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

func (g *HTTPGateway) GetPendingOrder(ctx context.Context, tableID int) (*model.PendingOrder, error) {
	var pending model.PendingOrder
	if _, err := g.call(ctx, http.MethodGet, "/mesa/comanda/"+strconv.Itoa(tableID), nil, &pending); err != nil {
		return nil, err
	}
	if len(pending.Products) == 0 && pending.TableID == 0 {
		// data 缺席代表該桌沒有待結訂單
		return nil, nil
	}
	return &pending, nil
}

func (g *HTTPGateway) SaveOrder(ctx context.Context, req model.SaveOrderRequest) error {
	_, err := g.call(ctx, http.MethodPost, "/venta/guardarproductosmesa", req, nil)
	return err
}

func (g *HTTPGateway) CombineTables(ctx context.Context, originTableID int, tablesToMerge []int) error {
	req := model.CombineTablesRequest{
		OriginTableID: originTableID,
		TablesToMerge: tablesToMerge,
	}
	_, err := g.call(ctx, http.MethodPost, "/mesa/combinarmesas", req, nil)
	return err
}

func (g *HTTPGateway) MoveOrder(ctx context.Context, originTableID, destinationTableID int) error {
	req := model.MoveOrderRequest{
		OriginTableID:      originTableID,
		DestinationTableID: destinationTableID,
	}
	_, err := g.call(ctx, http.MethodPost, "/mesa/moverpedido", req, nil)
	return err
}

// DeletePendingOrder 上游要求 DELETE 帶 body
func (g *HTTPGateway) DeletePendingOrder(ctx context.Context, tableID int) error {
	req := model.DeletePendingOrderRequest{TableID: tableID}
	_, err := g.call(ctx, http.MethodDelete, "/mesa/eliminar", req, nil)
	return err
}

func (g *HTTPGateway) AssignCustomer(ctx context.Context, tableID, customerID int, note string) error {
	req := model.AssignCustomerRequest{
		TableID:    tableID,
		CustomerID: customerID,
		Note:       note,
	}
	_, err := g.call(ctx, http.MethodPost, "/mesa/agregarcliente", req, nil)
	return err
}

func (g *HTTPGateway) FinalizeInvoice(ctx context.Context, req model.InvoiceRequest) (string, error) {
	return g.call(ctx, http.MethodPost, "/venta/mesa/facturar", req, nil)
}

func (g *HTTPGateway) ListProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if _, err := g.call(ctx, http.MethodGet, "/producto/listado", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (g *HTTPGateway) ListCategories(ctx context.Context) ([]model.ProductCategory, error) {
	var categories []model.ProductCategory
	if _, err := g.call(ctx, http.MethodGet, "/producto/categorias", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
