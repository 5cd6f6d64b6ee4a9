package billing

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatoora-app/invoicing-api/internal/application/dto"
	"github.com/fatoora-app/invoicing-api/internal/domain"
	"github.com/fatoora-app/invoicing-api/internal/domain/entity"
	"github.com/fatoora-app/invoicing-api/internal/domain/repository"
	"github.com/fatoora-app/invoicing-api/internal/infrastructure/qr"
	infrazatca "github.com/fatoora-app/invoicing-api/internal/infrastructure/zatca"
)

// ── fakes ──

type fakeInvoiceRepo struct {
	rows    map[string]*entity.Invoice
	nextSeq int64
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{rows: map[string]*entity.Invoice{}}
}

func (r *fakeInvoiceRepo) Create(inv *entity.Invoice) error {
	cp := *inv
	r.rows[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) Update(inv *entity.Invoice) error {
	if _, ok := r.rows[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *inv
	r.rows[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) UpdateArtifacts(id, xmlData, qrDataURI string) error {
	row, ok := r.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	row.XMLData = xmlData
	row.QRCodeDataURI = qrDataURI
	return nil
}

func (r *fakeInvoiceRepo) UpdateReportingResponse(id, response string) error {
	row, ok := r.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	row.ReportingResponse = response
	return nil
}

func (r *fakeInvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (r *fakeInvoiceRepo) List() ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, row := range r.rows {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeInvoiceRepo) Delete(id string) error {
	delete(r.rows, id)
	return nil
}

func (r *fakeInvoiceRepo) NextNumber() (int64, error) {
	r.nextSeq++
	return r.nextSeq, nil
}

type fakeClientRepo struct {
	rows map[string]*entity.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{rows: map[string]*entity.Client{}}
}

func (r *fakeClientRepo) Create(c *entity.Client) error {
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *fakeClientRepo) Update(c *entity.Client) error {
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *fakeClientRepo) GetByID(id string) (*entity.Client, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (r *fakeClientRepo) FindByNameAndPhone(name, phone string) (*entity.Client, error) {
	for _, row := range r.rows {
		if row.Name == name && row.Phone == phone {
			cp := *row
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeClientRepo) List() ([]*entity.Client, error) { return nil, nil }
func (r *fakeClientRepo) Delete(id string) error          { delete(r.rows, id); return nil }

type fakeSettingsRepo struct {
	profile *entity.SellerProfile
}

func (r *fakeSettingsRepo) Get() (*entity.SellerProfile, error)  { return r.profile, nil }
func (r *fakeSettingsRepo) Upsert(p *entity.SellerProfile) error { r.profile = p; return nil }

// fakeTxRunner executes the callback against the shared fakes and restores a
// pre-transaction snapshot when the callback fails, mimicking a rollback.
type fakeTxRunner struct {
	invoices   *fakeInvoiceRepo
	clients    *fakeClientRepo
	rolledBack bool
}

func (r *fakeTxRunner) RunBilling(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
) error) error {
	invSnapshot := map[string]*entity.Invoice{}
	for k, v := range r.invoices.rows {
		cp := *v
		invSnapshot[k] = &cp
	}
	clientSnapshot := map[string]*entity.Client{}
	for k, v := range r.clients.rows {
		cp := *v
		clientSnapshot[k] = &cp
	}

	if err := fn(r.invoices, r.clients); err != nil {
		r.invoices.rows = invSnapshot
		r.clients.rows = clientSnapshot
		r.rolledBack = true
		return err
	}
	return nil
}

type fakeRasterizer struct {
	lastPayload string
	fail        bool
}

func (r *fakeRasterizer) Rasterize(payload string, opts qr.Options) (*qr.Result, error) {
	r.lastPayload = payload
	if r.fail {
		return nil, &qr.RasterizationError{Err: errors.New("boom")}
	}
	return &qr.Result{
		PNG:     []byte("png-bytes"),
		DataURI: "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes")),
	}, nil
}

type fakeFileStore struct {
	saved int
}

func (s *fakeFileStore) SaveQRImage(png []byte) (string, error) {
	s.saved++
	return fmt.Sprintf("qrcodes/qr_%d.png", s.saved), nil
}

type fakeReporter struct {
	configured bool
	response   string
	submitted  string
}

func (r *fakeReporter) Configured() bool { return r.configured }

func (r *fakeReporter) Submit(ctx context.Context, xmlData string) (string, error) {
	r.submitted = xmlData
	return r.response, nil
}

type billingFixture struct {
	uc         *InvoiceUseCase
	invoices   *fakeInvoiceRepo
	clients    *fakeClientRepo
	settings   *fakeSettingsRepo
	runner     *fakeTxRunner
	rasterizer *fakeRasterizer
	files      *fakeFileStore
	reporter   *fakeReporter
}

func newBillingFixture(t *testing.T) *billingFixture {
	t.Helper()
	invoices := newFakeInvoiceRepo()
	clients := newFakeClientRepo()
	settings := &fakeSettingsRepo{profile: &entity.SellerProfile{
		Name:      "Al Amal Trading Est",
		VATNumber: "310123456789103",
	}}
	runner := &fakeTxRunner{invoices: invoices, clients: clients}
	rasterizer := &fakeRasterizer{}
	files := &fakeFileStore{}
	reporter := &fakeReporter{}

	uc := NewInvoiceUseCase(runner, invoices, clients, settings, infrazatca.NewXMLBuilderService(), rasterizer, files, reporter)
	uc.now = func() time.Time {
		return time.Date(2024, 1, 15, 10, 30, 0, 0, time.FixedZone("AST", 3*3600))
	}
	return &billingFixture{
		uc: uc, invoices: invoices, clients: clients, settings: settings,
		runner: runner, rasterizer: rasterizer, files: files, reporter: reporter,
	}
}

func validRequest() dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		InvoiceType: entity.InvoiceTypeSimplified,
		PaymentType: entity.PaymentTypeCash,
		ClientName:  "Mohammed",
		ClientPhone: "0501234567",
		Items: []dto.LineItemInput{
			{Name: "Oil change", Price: decimal.NewFromFloat(120.50)},
			{Name: "Brake pads", Price: decimal.NewFromFloat(79.50)},
		},
		VATRate: decimal.NewFromInt(15),
	}
}

// ── tests ──

func TestCreateInvoice_ComputesTotals(t *testing.T) {
	f := newBillingFixture(t)

	resp, err := f.uc.CreateInvoice(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(200)), "subtotal is the sum of line prices, got %s", resp.Subtotal)
	assert.True(t, resp.VATAmount.Equal(decimal.NewFromInt(30)), "vat = subtotal * 15 / 100, got %s", resp.VATAmount)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(230)), "total = subtotal + vat, got %s", resp.Total)
	assert.Equal(t, "INV-0001", resp.Number)
}

func TestCreateInvoice_FractionalVATRate(t *testing.T) {
	f := newBillingFixture(t)

	in := validRequest()
	in.Items = []dto.LineItemInput{{Name: "Consulting", Price: decimal.NewFromInt(100)}}
	in.VATRate = decimal.NewFromFloat(7.5)

	resp, err := f.uc.CreateInvoice(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, resp.VATAmount.Equal(decimal.NewFromFloat(7.5)), "got %s", resp.VATAmount)
	assert.True(t, resp.Total.Equal(decimal.NewFromFloat(107.5)), "got %s", resp.Total)
}

func TestCreateInvoice_PersistsArtifacts(t *testing.T) {
	f := newBillingFixture(t)

	resp, err := f.uc.CreateInvoice(context.Background(), validRequest())
	require.NoError(t, err)

	stored, err := f.invoices.GetByID(resp.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Contains(t, stored.XMLData, "<cbc:ID>INV-0001</cbc:ID>")
	assert.Contains(t, stored.XMLData, "<cbc:InvoiceTypeCode>388</cbc:InvoiceTypeCode>")
	assert.Contains(t, stored.QRCodeDataURI, "data:image/png;base64,")
	assert.Equal(t, 1, f.files.saved, "QR image must be written to the public store")
}

func TestCreateInvoice_QRPayloadUsesFinalizationInstant(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.uc.CreateInvoice(context.Background(), validRequest())
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(f.rasterizer.lastPayload)
	require.NoError(t, err, "rasterizer receives the base64 TLV payload")

	fields := map[byte]string{}
	for i := 0; i < len(raw); {
		tag, length := raw[i], int(raw[i+1])
		fields[tag] = string(raw[i+2 : i+2+length])
		i += 2 + length
	}
	assert.Equal(t, "Al Amal Trading Est", fields[1])
	assert.Equal(t, "310123456789103", fields[2])
	assert.Equal(t, "2024-01-15T10:30:00+03:00", fields[3], "timestamp is the finalization instant")
	assert.Equal(t, "230.00", fields[4], "tag 4 carries the VAT-inclusive total")
	assert.Equal(t, "30.00", fields[5])
}

func TestCreateInvoice_RasterizationFailureRollsBack(t *testing.T) {
	f := newBillingFixture(t)
	f.rasterizer.fail = true

	_, err := f.uc.CreateInvoice(context.Background(), validRequest())
	require.Error(t, err)
	var rerr *qr.RasterizationError
	assert.ErrorAs(t, err, &rerr)

	assert.True(t, f.runner.rolledBack, "the transaction must be rolled back")
	assert.Empty(t, f.invoices.rows, "no invoice row survives a failed finalization")
	assert.Empty(t, f.clients.rows, "the client created in the same transaction is rolled back too")
}

func TestCreateInvoice_FindsOrCreatesClient(t *testing.T) {
	f := newBillingFixture(t)

	first, err := f.uc.CreateInvoice(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, f.clients.rows, 1, "an unknown client is created on the fly")

	second, err := f.uc.CreateInvoice(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Len(t, f.clients.rows, 1, "the same name and phone reuse the existing client")
	assert.Equal(t, first.ClientID, second.ClientID)
}

func TestCreateInvoice_UnknownClientID(t *testing.T) {
	f := newBillingFixture(t)

	in := validRequest()
	in.ClientID = "missing-id"

	_, err := f.uc.CreateInvoice(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateInvoice_ValidatesInput(t *testing.T) {
	f := newBillingFixture(t)

	in := validRequest()
	in.Items = nil
	_, err := f.uc.CreateInvoice(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = validRequest()
	in.InvoiceType = "proforma"
	_, err = f.uc.CreateInvoice(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = validRequest()
	in.VATRate = decimal.NewFromInt(-1)
	_, err = f.uc.CreateInvoice(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateInvoice_SequentialNumbers(t *testing.T) {
	f := newBillingFixture(t)

	for i, want := range []string{"INV-0001", "INV-0002", "INV-0003"} {
		resp, err := f.uc.CreateInvoice(context.Background(), validRequest())
		require.NoError(t, err, "invoice %d", i+1)
		assert.Equal(t, want, resp.Number)
	}
}

func TestUpdateInvoice_RecomputesAndKeepsNumber(t *testing.T) {
	f := newBillingFixture(t)

	created, err := f.uc.CreateInvoice(context.Background(), validRequest())
	require.NoError(t, err)

	in := validRequest()
	in.Items = []dto.LineItemInput{{Name: "Full service", Price: decimal.NewFromInt(500)}}

	updated, err := f.uc.UpdateInvoice(context.Background(), created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, created.Number, updated.Number, "the allocated number never changes")
	assert.True(t, updated.Total.Equal(decimal.NewFromInt(575)), "got %s", updated.Total)
	assert.Contains(t, updated.XMLData, "<cbc:PayableAmount>575.00</cbc:PayableAmount>")
}

func TestUpdateInvoice_NotFound(t *testing.T) {
	f := newBillingFixture(t)

	_, err := f.uc.UpdateInvoice(context.Background(), "missing", validRequest())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReportInvoice_RequiresConfiguration(t *testing.T) {
	f := newBillingFixture(t)
	f.reporter.configured = false

	created, err := f.uc.CreateInvoice(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = f.uc.ReportInvoice(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestReportInvoice_StoresResponse(t *testing.T) {
	f := newBillingFixture(t)
	f.reporter.configured = true
	f.reporter.response = `{"status":"REPORTED"}`

	created, err := f.uc.CreateInvoice(context.Background(), validRequest())
	require.NoError(t, err)

	resp, err := f.uc.ReportInvoice(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, `{"status":"REPORTED"}`, resp)
	assert.Contains(t, f.reporter.submitted, "<Invoice>")

	stored, _ := f.invoices.GetByID(created.ID)
	assert.Equal(t, `{"status":"REPORTED"}`, stored.ReportingResponse)
}

func TestDeleteInvoice(t *testing.T) {
	f := newBillingFixture(t)

	created, err := f.uc.CreateInvoice(context.Background(), validRequest())
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteInvoice(context.Background(), created.ID))
	assert.ErrorIs(t, f.uc.DeleteInvoice(context.Background(), created.ID), domain.ErrNotFound)
}
