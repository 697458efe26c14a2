package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/operman-code/petme/internal/adapter/repository/memory"
	"github.com/operman-code/petme/internal/listing/domain"
	"github.com/operman-code/petme/internal/platform/logger"
	"github.com/stretchr/testify/mock"
)

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type MockMailer struct{ mock.Mock }

func (m *MockMailer) SendContactRequest(ctx context.Context, req *domain.ContactRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockMailer) SendListingCreated(ctx context.Context, toEmail, petName string) error {
	args := m.Called(ctx, toEmail, petName)
	return args.Error(0)
}

// fakeImageStore records uploads and can be told to fail after n successes.
type fakeImageStore struct {
	mu       sync.Mutex
	stored   map[string][]byte
	failFrom int
	uploads  int
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{stored: make(map[string][]byte), failFrom: -1}
}

func (s *fakeImageStore) Upload(_ context.Context, fileName, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFrom >= 0 && s.uploads >= s.failFrom {
		return "", errors.New("bucket offline")
	}
	s.uploads++
	ref := fmt.Sprintf("/uploads/%d-%s", s.uploads, fileName)
	s.stored[ref] = data
	return ref, nil
}

func (s *fakeImageStore) Remove(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stored, ref)
	return nil
}

func (s *fakeImageStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stored)
}

// pngBytes is a minimal PNG signature, enough for content sniffing.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func pngUpload(name string) Upload {
	return Upload{FileName: name, ContentType: "image/png", Data: pngBytes}
}

func f64(v float64) *float64 { return &v }

func rexDraft() domain.Draft {
	return domain.Draft{
		Name:        "Rex",
		Species:     domain.SpeciesDog,
		Age:         f64(2),
		AgeUnit:     domain.AgeUnitYears,
		Gender:      domain.GenderMale,
		Price:       f64(100),
		Description: "Friendly good boy",
		Location:    "Austin",
	}
}

func randomDraft() domain.Draft {
	return domain.Draft{
		Name:        gofakeit.PetName(),
		Species:     domain.SpeciesCat,
		Breed:       gofakeit.Word(),
		Age:         f64(float64(gofakeit.Number(0, 20))),
		Gender:      domain.GenderFemale,
		Price:       f64(gofakeit.Price(0, 500)),
		Description: gofakeit.Sentence(10),
		Location:    gofakeit.City(),
	}
}

type fixture struct {
	repo      *memory.ListingRepository
	users     *memory.UserRepository
	images    *fakeImageStore
	publisher *MockPublisher
	mailer    *MockMailer
	notifier  *Notifier
	listings  *ListingUsecase
	queries   *QueryUsecase
	contacts  *ContactUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNop()
	f := &fixture{
		repo:      memory.NewListingRepository(),
		users:     memory.NewUserRepository(),
		images:    newFakeImageStore(),
		publisher: &MockPublisher{},
		mailer:    &MockMailer{},
	}
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.mailer.On("SendListingCreated", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.mailer.On("SendContactRequest", mock.Anything, mock.Anything).Return(nil).Maybe()

	f.notifier = NewNotifier(f.publisher, f.mailer, log)
	photos := NewPhotoUsecase(f.images, log)
	f.listings = NewListingUsecase(f.repo, f.users, photos, f.notifier, nil, log)
	f.queries = NewQueryUsecase(f.repo, f.users, nil, log)
	f.contacts = NewContactUsecase(f.repo, f.users, f.notifier, nil, log)

	for _, u := range []domain.OwnerProfile{
		{ID: "owner-1", Name: "Jane Doe", Email: "jane@example.com", Phone: "555-0100", Location: "Austin, TX", Bio: "Dog lover"},
		{ID: "owner-2", Name: "Sam Roe", Email: "sam@example.com", Location: "Boston, MA"},
	} {
		f.users.Put(u)
	}
	t.Cleanup(f.notifier.Wait)
	return f
}

func (f *fixture) create(t *testing.T, owner string, d domain.Draft) *domain.Listing {
	t.Helper()
	l, err := f.listings.Create(context.Background(), owner, CreateInput{Draft: d, ImageRefs: []string{"/uploads/seed.jpg"}})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return l
}
