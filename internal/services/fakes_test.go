package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"encomendas_backend/internal/labelreader"
	"encomendas_backend/internal/messaging"
	"encomendas_backend/internal/models"
	"encomendas_backend/internal/repositories"
	"encomendas_backend/internal/services/dto"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testCondo = "11111111-1111-1111-1111-111111111111"

func strPtr(s string) *string { return &s }

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: uint8(y * 8), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// --- repositories ---

type fakeResidentRepo struct {
	residents []models.Resident
	nextID    int
	findCalls int
	failWith  error
}

func (r *fakeResidentRepo) Create(_ *gorm.DB, resident *models.Resident) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.nextID++
	resident.ID = fmt.Sprintf("res-%d", r.nextID)
	r.residents = append(r.residents, *resident)
	return nil
}

func (r *fakeResidentRepo) CreateBatch(db *gorm.DB, residents []models.Resident) error {
	for i := range residents {
		if err := r.Create(db, &residents[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeResidentRepo) FindByID(_ *gorm.DB, condominiumID, id string) (*models.Resident, error) {
	for _, res := range r.residents {
		if res.ID == id && res.CondominiumID == condominiumID {
			cp := res
			return &cp, nil
		}
	}
	return nil, repositories.ErrResidentNotFound
}

func (r *fakeResidentRepo) FindActiveByCondominium(_ *gorm.DB, condominiumID string) ([]models.Resident, error) {
	r.findCalls++
	var out []models.Resident
	for _, res := range r.residents {
		if res.CondominiumID == condominiumID && res.IsActive {
			out = append(out, res)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r *fakeResidentRepo) List(_ *gorm.DB, condominiumID string, filter repositories.ResidentFilter) ([]models.Resident, int64, error) {
	var out []models.Resident
	for _, res := range r.residents {
		if res.CondominiumID != condominiumID || (!filter.IncludeInactive && !res.IsActive) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(res.FullName), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, res)
	}
	total := int64(len(out))
	if filter.Offset < len(out) {
		out = out[filter.Offset:]
	} else {
		out = nil
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (r *fakeResidentRepo) FindUnitsByCondominium(_ *gorm.DB, condominiumID string) ([]models.Resident, error) {
	var out []models.Resident
	for _, res := range r.residents {
		if res.CondominiumID == condominiumID {
			out = append(out, models.Resident{FullName: res.FullName, Block: res.Block, Apartment: res.Apartment})
		}
	}
	return out, nil
}

func (r *fakeResidentRepo) Update(_ *gorm.DB, resident *models.Resident) error {
	for i := range r.residents {
		if r.residents[i].ID == resident.ID {
			r.residents[i] = *resident
			return nil
		}
	}
	return repositories.ErrResidentNotFound
}

func (r *fakeResidentRepo) Deactivate(_ *gorm.DB, condominiumID, id string) error {
	for i := range r.residents {
		if r.residents[i].ID == id && r.residents[i].CondominiumID == condominiumID {
			r.residents[i].IsActive = false
			return nil
		}
	}
	return repositories.ErrResidentNotFound
}

type fakePackageRepo struct {
	residents *fakeResidentRepo
	packages  []models.Package
	createErr error
	nextID    int
}

func (r *fakePackageRepo) withResident(pkg models.Package) models.Package {
	if pkg.ResidentID != nil && r.residents != nil {
		if res, err := r.residents.FindByID(nil, pkg.CondominiumID, *pkg.ResidentID); err == nil {
			pkg.Resident = res
		}
	}
	return pkg
}

func (r *fakePackageRepo) Create(_ *gorm.DB, pkg *models.Package) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	pkg.ID = fmt.Sprintf("pkg-%d", r.nextID)
	stored := *pkg
	stored.Resident = nil
	r.packages = append(r.packages, stored)
	return nil
}

func (r *fakePackageRepo) FindByID(_ *gorm.DB, condominiumID, id string) (*models.Package, error) {
	for _, p := range r.packages {
		if p.ID == id && p.CondominiumID == condominiumID {
			cp := r.withResident(p)
			return &cp, nil
		}
	}
	return nil, repositories.ErrPackageNotFound
}

func (r *fakePackageRepo) List(_ *gorm.DB, condominiumID string, filter repositories.PackageFilter) ([]models.Package, int64, error) {
	var out []models.Package
	for _, p := range r.packages {
		if p.CondominiumID != condominiumID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.From != nil && p.ReceivedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !p.ReceivedAt.Before(*filter.To) {
			continue
		}
		out = append(out, r.withResident(p))
	}
	return out, int64(len(out)), nil
}

func (r *fakePackageRepo) MarkPickedUp(_ *gorm.DB, condominiumID, id string, update repositories.PickupUpdate) error {
	for i := range r.packages {
		p := &r.packages[i]
		if p.ID == id && p.CondominiumID == condominiumID && p.Status == models.PackageStatusPending {
			p.Status = models.PackageStatusPickedUp
			at, by, sig := update.PickedUpAt, update.PickedUpBy, update.SignatureData
			p.PickedUpAt, p.PickedUpBy, p.SignatureData = &at, &by, &sig
			return nil
		}
	}
	return repositories.ErrPackageNotPending
}

func (r *fakePackageRepo) SetPickupConfirmationSent(_ *gorm.DB, id string, sent bool) error {
	for i := range r.packages {
		if r.packages[i].ID == id {
			r.packages[i].PickupConfirmationSent = sent
		}
	}
	return nil
}

func (r *fakePackageRepo) RecordConfirmationFailure(_ *gorm.DB, id string, at time.Time) error {
	for i := range r.packages {
		if r.packages[i].ID == id {
			r.packages[i].ConfirmationAttempts++
			t := at
			r.packages[i].LastAttemptAt = &t
		}
	}
	return nil
}

func (r *fakePackageRepo) FindPendingConfirmations(_ *gorm.DB, filter repositories.ConfirmationFilter) ([]models.Package, error) {
	var out []models.Package
	for _, p := range r.packages {
		p = r.withResident(p)
		if p.Status != models.PackageStatusPickedUp || p.PickupConfirmationSent || !p.Resident.HasPhone() {
			continue
		}
		if p.ConfirmationAttempts >= filter.MaxAttempts {
			continue
		}
		if p.LastAttemptAt != nil && p.LastAttemptAt.After(filter.RetryBefore) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ConfirmationAttempts < out[j].ConfirmationAttempts })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakePackageRepo) GetStats(_ *gorm.DB, condominiumID string, dayStart time.Time) (*repositories.PackageStats, error) {
	var stats repositories.PackageStats
	for _, p := range r.packages {
		if p.CondominiumID != condominiumID {
			continue
		}
		stats.Total++
		if p.Status == models.PackageStatusPending {
			stats.Pending++
		}
		if !p.ReceivedAt.Before(dayStart) {
			stats.ReceivedToday++
		}
	}
	return &stats, nil
}

type fakeCondominiumRepo struct {
	condominiums map[string]*models.Condominium
}

func (r *fakeCondominiumRepo) Create(_ *gorm.DB, c *models.Condominium) error {
	r.condominiums[c.ID] = c
	return nil
}

func (r *fakeCondominiumRepo) FindByID(_ *gorm.DB, id string) (*models.Condominium, error) {
	c, ok := r.condominiums[id]
	if !ok {
		return nil, repositories.ErrCondominiumNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCondominiumRepo) UpdateLabels(_ *gorm.DB, id, groupLabel, unitLabel string) error {
	c, ok := r.condominiums[id]
	if !ok {
		return repositories.ErrCondominiumNotFound
	}
	c.GroupLabel, c.UnitLabel = groupLabel, unitLabel
	return nil
}

// --- infrastructure ---

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	saveErr error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (s *memoryStorage) Save(_ context.Context, path string, reader io.Reader, _ string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = data
	return nil
}

func (s *memoryStorage) Get(_ context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return io.NopCloser(bytes.NewReader(s.objects[path])), nil
}

func (s *memoryStorage) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	return nil
}

func (s *memoryStorage) Exists(_ context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[path]
	return ok, nil
}

func (s *memoryStorage) GetURL(_ context.Context, path string) (string, error) {
	return "https://cdn.test/" + path, nil
}

func (s *memoryStorage) GetSignedURL(_ context.Context, path string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://cdn.test/%s?expires=%d", path, int(expiry.Seconds())), nil
}

func (s *memoryStorage) GetSize(_ context.Context, path string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.objects[path])), nil
}

func (s *memoryStorage) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type fakeMessenger struct {
	arrivals []messaging.ArrivalNotice
	pickups  []messaging.PickupNotice
	err      error
}

func (m *fakeMessenger) SendArrival(_ context.Context, notice messaging.ArrivalNotice) (string, error) {
	m.arrivals = append(m.arrivals, notice)
	if m.err != nil {
		return "", m.err
	}
	return "SM-arrival", nil
}

func (m *fakeMessenger) SendPickupConfirmation(_ context.Context, notice messaging.PickupNotice) (string, error) {
	m.pickups = append(m.pickups, notice)
	if m.err != nil {
		return "", m.err
	}
	return "SM-pickup", nil
}

type fakePublisher struct {
	events []dto.PackageEvent
}

func (p *fakePublisher) Publish(event dto.PackageEvent) {
	p.events = append(p.events, event)
}

type fakeReader struct {
	reading *labelreader.Reading
	err     error
	got     []byte
}

func (r *fakeReader) ReadLabel(_ context.Context, jpeg []byte) (*labelreader.Reading, error) {
	r.got = jpeg
	if r.err != nil {
		return nil, r.err
	}
	return r.reading, nil
}

// countingCache - кэш в памяти, считает инвалидации
type countingCache struct {
	data          map[string][]models.Resident
	invalidations int
}

func newCountingCache() *countingCache {
	return &countingCache{data: make(map[string][]models.Resident)}
}

func (c *countingCache) Get(_ context.Context, condominiumID string) ([]models.Resident, bool, error) {
	r, ok := c.data[condominiumID]
	return r, ok, nil
}

func (c *countingCache) Set(_ context.Context, condominiumID string, residents []models.Resident) error {
	c.data[condominiumID] = residents
	return nil
}

func (c *countingCache) Invalidate(_ context.Context, condominiumID string) error {
	c.invalidations++
	delete(c.data, condominiumID)
	return nil
}
