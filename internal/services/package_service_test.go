package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"encomendas_backend/internal/imageprocessor"
	"encomendas_backend/internal/messaging"
	"encomendas_backend/internal/metrics"
	"encomendas_backend/internal/models"
	"encomendas_backend/internal/services/dto"
	"encomendas_backend/internal/utils"
	"encomendas_backend/pkg/apperrors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type packageFixture struct {
	svc         *packageService
	residents   *fakeResidentRepo
	packages    *fakePackageRepo
	storage     *memoryStorage
	messenger   *fakeMessenger
	publisher   *fakePublisher
	metrics     *metrics.Metrics
	condominium *models.Condominium
}

func newPackageFixture(t *testing.T) *packageFixture {
	t.Helper()
	residents := &fakeResidentRepo{residents: []models.Resident{
		{BaseModel: models.BaseModel{ID: "r-maria"}, FullName: "Maria Silva", Block: "B", Apartment: "12", IsActive: true, CondominiumID: testCondo, Phone: strPtr("+5511999990000")},
		{BaseModel: models.BaseModel{ID: "r-joao"}, FullName: "João Souza", Block: "A", Apartment: "101", IsActive: true, CondominiumID: testCondo},
	}}
	condominium := &models.Condominium{BaseModel: models.BaseModel{ID: testCondo}, Name: "Residencial Ipê", GroupLabel: "Torre", UnitLabel: "Unidade"}

	f := &packageFixture{
		residents:   residents,
		packages:    &fakePackageRepo{residents: residents},
		storage:     newMemoryStorage(),
		messenger:   &fakeMessenger{},
		publisher:   &fakePublisher{},
		metrics:     metrics.New(prometheus.NewRegistry()),
		condominium: condominium,
	}
	svc := NewPackageService(PackageServiceConfig{
		PackageRepo:     f.packages,
		ResidentRepo:    residents,
		CondominiumRepo: &fakeCondominiumRepo{condominiums: map[string]*models.Condominium{testCondo: condominium}},
		Storage:         f.storage,
		Bucket:          "package-photos",
		Processor:       imageprocessor.NewProcessor(0),
		Messenger:       f.messenger,
		Publisher:       f.publisher,
		Metrics:         f.metrics,
	}).(*packageService)
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 15, 30, 0, 0, utils.SaoPaulo) }
	f.svc = svc
	return f
}

// advance сдвигает часы сервиса
func (f *packageFixture) advance(d time.Duration) {
	now := f.svc.now().Add(d)
	f.svc.now = func() time.Time { return now }
}

func (f *packageFixture) register(t *testing.T, residentID *string, suggestion string) *dto.RegisterPackageResponse {
	t.Helper()
	resp, err := f.svc.RegisterPackage(context.Background(), nil, &dto.RegisterPackageInput{
		Request: dto.RegisterPackageRequest{
			ResidentID:   residentID,
			Notes:        strPtr("  caixa grande "),
			AISuggestion: suggestion,
			MatchScore:   105,
		},
		Photo:         testPNG(t),
		CondominiumID: testCondo,
		ReceivedBy:    "staff-1",
	})
	require.NoError(t, err)
	return resp
}

func TestPackageService_RegisterNotifiesResident(t *testing.T) {
	f := newPackageFixture(t)

	resp := f.register(t, strPtr("r-maria"), `{"carrier": "Correios", "sensitive_regions": [{"label": "cpf", "x": 0, "y": 0, "width": 500, "height": 500}]}`)

	pkg := resp.Package
	assert.Equal(t, "pkg-1", pkg.ID)
	assert.Equal(t, models.PackageStatusPending, pkg.Status)
	require.NotNil(t, pkg.Carrier)
	assert.Equal(t, "Correios", *pkg.Carrier, "carrier falls back to the suggestion")
	require.NotNil(t, pkg.Notes)
	assert.Equal(t, "caixa grande", *pkg.Notes)
	assert.True(t, strings.HasPrefix(pkg.PhotoURL, testCondo+"/encomenda_"))
	require.NotNil(t, pkg.PublicPhotoURL)
	assert.True(t, strings.HasPrefix(*pkg.PublicPhotoURL, testCondo+"/public/redacted_encomenda_"))
	assert.Contains(t, resp.Package.PhotoSignedURL, "expires=3600")
	assert.Len(t, f.storage.keys(), 2)

	assert.True(t, resp.NotificationSent)
	assert.Equal(t, "SM-arrival", resp.NotificationSID)
	require.Len(t, f.messenger.arrivals, 1)
	assert.Equal(t, "Portaria", f.messenger.arrivals[0].RegisteredBy)
	assert.Equal(t, "Maria Silva", f.messenger.arrivals[0].ResidentName)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, dto.EventPackageRegistered, f.publisher.events[0].Type)
	assert.Equal(t, testCondo, f.publisher.events[0].CondominiumID)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.PackagesRegistered))
}

func TestPackageService_RegisterSurvivesMessagingFailure(t *testing.T) {
	f := newPackageFixture(t)
	f.messenger.err = errors.New("Twilio error [400]: invalid number")

	resp := f.register(t, strPtr("r-maria"), "")

	assert.False(t, resp.NotificationSent)
	assert.Len(t, f.packages.packages, 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.MessagesSent.WithLabelValues(messaging.KindArrival, "failed")))
}

func TestPackageService_RegisterWithoutPhoneOrResident(t *testing.T) {
	f := newPackageFixture(t)

	resp := f.register(t, strPtr("r-joao"), "")
	assert.False(t, resp.NotificationSent)

	resp = f.register(t, nil, "")
	assert.Nil(t, resp.Package.ResidentID)
	require.NotNil(t, resp.Package.PublicPhotoURL)
	assert.Contains(t, *resp.Package.PublicPhotoURL, "/public/blurred_encomenda_")

	assert.Empty(t, f.messenger.arrivals)
}

func TestPackageService_RegisterErrors(t *testing.T) {
	f := newPackageFixture(t)

	_, err := f.svc.RegisterPackage(context.Background(), nil, &dto.RegisterPackageInput{
		Request:       dto.RegisterPackageRequest{ResidentID: strPtr("nobody")},
		Photo:         testPNG(t),
		CondominiumID: testCondo,
	})
	assert.ErrorIs(t, err, apperrors.ErrResidentNotFound)

	_, err = f.svc.RegisterPackage(context.Background(), nil, &dto.RegisterPackageInput{
		Photo:         []byte("garbage"),
		CondominiumID: testCondo,
	})
	assert.ErrorIs(t, err, apperrors.ErrImageInvalid)

	f.packages.createErr = errors.New("insert failed")
	_, err = f.svc.RegisterPackage(context.Background(), nil, &dto.RegisterPackageInput{
		Photo:         testPNG(t),
		CondominiumID: testCondo,
	})
	require.Error(t, err)
	assert.Empty(t, f.storage.keys(), "uploaded photos are removed when the insert fails")
}

func TestPackageService_ConfirmPickup(t *testing.T) {
	f := newPackageFixture(t)
	registered := f.register(t, strPtr("r-maria"), "")

	resp, err := f.svc.ConfirmPickup(context.Background(), nil, testCondo, registered.Package.ID, &dto.ConfirmPickupRequest{SignatureData: "data:image/png;base64,AAAA"})
	require.NoError(t, err)

	assert.Equal(t, models.PackageStatusPickedUp, resp.Package.Status)
	require.NotNil(t, resp.Package.PickedUpBy)
	assert.Equal(t, "Maria Silva", *resp.Package.PickedUpBy)
	assert.True(t, resp.ConfirmationSent)
	assert.True(t, f.packages.packages[0].PickupConfirmationSent)
	require.Len(t, f.messenger.pickups, 1)
	assert.Equal(t, f.svc.now(), f.messenger.pickups[0].PickedUpAt)

	_, err = f.svc.ConfirmPickup(context.Background(), nil, testCondo, registered.Package.ID, &dto.ConfirmPickupRequest{SignatureData: "again"})
	assert.ErrorIs(t, err, apperrors.ErrPackageAlreadyPickedUp)

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, dto.EventPackagePickedUp, f.publisher.events[1].Type)
}

func TestPackageService_ConfirmPickupValidation(t *testing.T) {
	f := newPackageFixture(t)
	registered := f.register(t, nil, "")

	_, err := f.svc.ConfirmPickup(context.Background(), nil, testCondo, registered.Package.ID, &dto.ConfirmPickupRequest{SignatureData: "   "})
	assert.ErrorIs(t, err, apperrors.ErrSignatureRequired)

	_, err = f.svc.ConfirmPickup(context.Background(), nil, testCondo, "missing", &dto.ConfirmPickupRequest{SignatureData: "sig"})
	assert.ErrorIs(t, err, apperrors.ErrPackageNotFound)

	resp, err := f.svc.ConfirmPickup(context.Background(), nil, testCondo, registered.Package.ID, &dto.ConfirmPickupRequest{SignatureData: "sig"})
	require.NoError(t, err)
	assert.Equal(t, "Morador", *resp.Package.PickedUpBy)
	assert.False(t, resp.ConfirmationSent)
}

func TestPackageService_RetryPickupConfirmations(t *testing.T) {
	f := newPackageFixture(t)
	registered := f.register(t, strPtr("r-maria"), "")

	f.messenger.err = errors.New("temporarily down")
	resp, err := f.svc.ConfirmPickup(context.Background(), nil, testCondo, registered.Package.ID, &dto.ConfirmPickupRequest{SignatureData: "sig"})
	require.NoError(t, err)
	assert.False(t, resp.ConfirmationSent)

	assert.Equal(t, 1, f.packages.packages[0].ConfirmationAttempts)

	f.messenger.err = nil
	// сразу после неудачи повтор ждет
	sent, err := f.svc.RetryPickupConfirmations(context.Background(), nil, 10)
	require.NoError(t, err)
	assert.Zero(t, sent)

	f.advance(confirmationRetryDelay)
	sent, err = f.svc.RetryPickupConfirmations(context.Background(), nil, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.True(t, f.packages.packages[0].PickupConfirmationSent)

	sent, err = f.svc.RetryPickupConfirmations(context.Background(), nil, 10)
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestPackageService_RetryStopsAfterMaxAttempts(t *testing.T) {
	f := newPackageFixture(t)
	stuck := f.register(t, strPtr("r-maria"), "")

	f.messenger.err = errors.New("21211 invalid 'To' phone number")
	_, err := f.svc.ConfirmPickup(context.Background(), nil, testCondo, stuck.Package.ID, &dto.ConfirmPickupRequest{SignatureData: "sig"})
	require.NoError(t, err)

	for i := 1; i < maxConfirmationAttempts; i++ {
		f.advance(confirmationRetryDelay)
		sent, err := f.svc.RetryPickupConfirmations(context.Background(), nil, 1)
		require.NoError(t, err)
		assert.Zero(t, sent)
	}
	assert.Equal(t, maxConfirmationAttempts, f.packages.packages[0].ConfirmationAttempts)
	calls := len(f.messenger.pickups)

	// посылка исчерпала попытки и не занимает пачку размером 1
	fresh := f.register(t, strPtr("r-maria"), "")
	_, err = f.svc.ConfirmPickup(context.Background(), nil, testCondo, fresh.Package.ID, &dto.ConfirmPickupRequest{SignatureData: "sig"})
	require.NoError(t, err)

	f.messenger.err = nil
	f.advance(confirmationRetryDelay)
	sent, err := f.svc.RetryPickupConfirmations(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, calls+2, len(f.messenger.pickups), "no further calls for the exhausted package")
	assert.True(t, f.packages.packages[1].PickupConfirmationSent)
	assert.False(t, f.packages.packages[0].PickupConfirmationSent)
}

func TestPackageService_ListAndStats(t *testing.T) {
	f := newPackageFixture(t)
	f.register(t, strPtr("r-maria"), "")
	f.register(t, strPtr("r-joao"), "")

	list, err := f.svc.ListPackages(context.Background(), nil, testCondo, &dto.PackageListQuery{Status: "pending", From: "2024-03-10", To: "2024-03-10"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, 20, list.PageSize)
	assert.NotEmpty(t, list.Packages[0].PhotoSignedURL)

	_, err = f.svc.ListPackages(context.Background(), nil, testCondo, &dto.PackageListQuery{From: "10/03/2024"})
	assert.Error(t, err)

	stats, err := f.svc.GetStats(context.Background(), nil, testCondo)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(2), stats.ReceivedToday)
}

func TestPackageService_ExportReport(t *testing.T) {
	f := newPackageFixture(t)
	f.register(t, strPtr("r-maria"), `{"carrier": "Jadlog"}`)

	data, err := f.svc.ExportReport(context.Background(), nil, testCondo, &dto.ReportQuery{From: "2024-03-01", To: "2024-03-31"})
	require.NoError(t, err)

	xlsx, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer xlsx.Close()

	rows, err := xlsx.GetRows(reportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Torre", rows[0][2])
	assert.Equal(t, "Unidade", rows[0][3])
	assert.Equal(t, "10/03/2024, 15:30", rows[1][0])
	assert.Equal(t, "Maria Silva", rows[1][1])
	assert.Equal(t, "Jadlog", rows[1][4])
	assert.Equal(t, "Aguardando", rows[1][5])

	_, err = f.svc.ExportReport(context.Background(), nil, testCondo, &dto.ReportQuery{From: "2024-03-31", To: "2024-03-01"})
	assert.Error(t, err)
}
