package gateway

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// MockClient synthesizes gateway responses locally so development and
// staging environments work without live credentials. It is wired in place
// of HTTPClient through configuration, never through branches inside the
// real client.
type MockClient struct {
	log *zap.Logger

	mu       sync.Mutex
	invoices map[string]*InvoiceSnapshot
}

func NewMockClient(log *zap.Logger) *MockClient {
	return &MockClient{
		log:      log.Named("gateway.mock"),
		invoices: make(map[string]*InvoiceSnapshot),
	}
}

func (c *MockClient) CreateInvoice(ctx context.Context, req InvoiceRequest) (*InvoiceSnapshot, error) {
	_ = ctx
	id := "MOCK_" + randomHex(8)
	snapshot := &InvoiceSnapshot{
		GatewayInvoiceID: id,
		Status:           "OPEN",
		BoletoURL:        fmt.Sprintf("https://staging-gateway.example/boletos/%s", id),
		PixQRCode:        mockPixPayload(req.AmountCents),
		PixQRCodeURL:     fmt.Sprintf("https://staging-gateway.example/pix/%s", id),
	}

	c.mu.Lock()
	c.invoices[id] = snapshot
	c.mu.Unlock()

	c.log.Info("mock gateway invoice created", zap.String("gateway_invoice_id", id))
	return snapshot, nil
}

func (c *MockClient) CancelInvoice(ctx context.Context, gatewayInvoiceID string) error {
	_ = ctx
	c.mu.Lock()
	if snapshot, ok := c.invoices[gatewayInvoiceID]; ok {
		snapshot.Status = "CANCELLED"
	}
	c.mu.Unlock()

	c.log.Info("mock gateway invoice cancelled", zap.String("gateway_invoice_id", gatewayInvoiceID))
	return nil
}

func (c *MockClient) GetInvoice(ctx context.Context, gatewayInvoiceID string) (*InvoiceSnapshot, error) {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot, ok := c.invoices[gatewayInvoiceID]
	if !ok {
		return nil, nil
	}
	copied := *snapshot
	return &copied, nil
}

func mockPixPayload(amountCents int64) string {
	return fmt.Sprintf("00020126580014BR.GOV.BCB.PIX52040000530398654%010d5802BR6304", amountCents)
}

func randomHex(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
