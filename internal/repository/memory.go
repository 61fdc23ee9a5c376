package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/adoption-portal/internal/domain"
)

// In-memory implementations back tests and DSN-less development runs. They
// uphold the same atomicity contracts as the Postgres implementations: the
// per-user open-record constraint and status compare-and-set are serialized
// under the store mutex.

// MemoryUserRepository is a map-backed UserRepository.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewMemoryUserRepository constructs an empty store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]domain.User)}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicate
		}
	}
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			found := user
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) List(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// MemoryPetRepository is a map-backed PetRepository.
type MemoryPetRepository struct {
	mu     sync.RWMutex
	pets   map[int64]domain.Pet
	nextID int64
}

// NewMemoryPetRepository constructs an empty store.
func NewMemoryPetRepository() *MemoryPetRepository {
	return &MemoryPetRepository{pets: make(map[int64]domain.Pet)}
}

func (r *MemoryPetRepository) Create(ctx context.Context, pet *domain.Pet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now().UTC()
	pet.ID = r.nextID
	pet.CreatedAt = now
	pet.UpdatedAt = now
	r.pets[pet.ID] = *pet
	return nil
}

func (r *MemoryPetRepository) Update(ctx context.Context, pet *domain.Pet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.pets[pet.ID]
	if !ok {
		return ErrNotFound
	}
	pet.CreatedAt = existing.CreatedAt
	pet.UpdatedAt = time.Now().UTC()
	r.pets[pet.ID] = *pet
	return nil
}

func (r *MemoryPetRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pets[id]; !ok {
		return ErrNotFound
	}
	delete(r.pets, id)
	return nil
}

func (r *MemoryPetRepository) GetByID(ctx context.Context, id int64) (*domain.Pet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	pet, ok := r.pets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &pet, nil
}

func (r *MemoryPetRepository) ListWithFilter(ctx context.Context, filter PetFilter) ([]domain.Pet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Pet
	for _, pet := range r.pets {
		if filter.Species != nil && !strings.EqualFold(pet.Species, *filter.Species) {
			continue
		}
		if filter.Breed != nil && !strings.EqualFold(pet.Breed, *filter.Breed) {
			continue
		}
		if filter.Status != nil && pet.Status != *filter.Status {
			continue
		}
		result = append(result, pet)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *MemoryPetRepository) UpdateStatusIf(ctx context.Context, id int64, from, to domain.PetStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	pet, ok := r.pets[id]
	if !ok {
		return ErrNotFound
	}
	if pet.Status != from {
		return ErrStatusConflict
	}
	pet.Status = to
	pet.UpdatedAt = time.Now().UTC()
	r.pets[id] = pet
	return nil
}

func (r *MemoryPetRepository) SetStatus(ctx context.Context, id int64, to domain.PetStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	pet, ok := r.pets[id]
	if !ok {
		return ErrNotFound
	}
	pet.Status = to
	pet.UpdatedAt = time.Now().UTC()
	r.pets[id] = pet
	return nil
}

// MemoryApplicationRepository is a map-backed ApplicationRepository.
type MemoryApplicationRepository struct {
	mu      sync.RWMutex
	records map[string]domain.ApplicationRecord
}

// NewMemoryApplicationRepository constructs an empty store.
func NewMemoryApplicationRepository() *MemoryApplicationRepository {
	return &MemoryApplicationRepository{records: make(map[string]domain.ApplicationRecord)}
}

func (r *MemoryApplicationRepository) CreateSubmitted(ctx context.Context, record *domain.ApplicationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.UserID == record.UserID && existing.Status.NonTerminal() {
			return ErrOpenRecordExists
		}
	}
	record.ID = uuid.NewString()
	record.Status = domain.ApplicationStatusSubmitted
	r.records[record.ID] = cloneRecord(*record)
	return nil
}

func (r *MemoryApplicationRepository) GetByID(ctx context.Context, id string) (*domain.ApplicationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	found := cloneRecord(record)
	return &found, nil
}

func (r *MemoryApplicationRepository) GetSubmittedByUser(ctx context.Context, userID string) (*domain.ApplicationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, record := range r.records {
		if record.UserID == userID && record.Status == domain.ApplicationStatusSubmitted {
			found := cloneRecord(record)
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryApplicationRepository) ListByUser(ctx context.Context, userID string) ([]domain.ApplicationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.ApplicationRecord
	for _, record := range r.records {
		if record.UserID == userID {
			result = append(result, cloneRecord(record))
		}
	}
	sortBySubmittedAt(result)
	return result, nil
}

func (r *MemoryApplicationRepository) ListByStatus(ctx context.Context, status domain.ApplicationStatus) ([]domain.ApplicationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.ApplicationRecord
	for _, record := range r.records {
		if record.Status == status {
			result = append(result, cloneRecord(record))
		}
	}
	sortBySubmittedAt(result)
	return result, nil
}

func (r *MemoryApplicationRepository) AttachPet(ctx context.Context, id string, petID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return ErrNotFound
	}
	if record.Status != domain.ApplicationStatusSubmitted {
		return ErrStatusConflict
	}
	record.PetID = &petID
	r.records[id] = record
	return nil
}

func (r *MemoryApplicationRepository) MarkReviewed(ctx context.Context, id string, status domain.ApplicationStatus, reviewedAt time.Time, reviewerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return ErrNotFound
	}
	if record.Status != domain.ApplicationStatusSubmitted {
		return ErrStatusConflict
	}
	record.Status = status
	record.ReviewedAt = &reviewedAt
	record.ReviewerID = &reviewerID
	r.records[id] = record
	return nil
}

func cloneRecord(record domain.ApplicationRecord) domain.ApplicationRecord {
	responses := make(map[int64]string, len(record.Responses))
	for id, answer := range record.Responses {
		responses[id] = answer
	}
	record.Responses = responses
	return record
}

func sortBySubmittedAt(records []domain.ApplicationRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].SubmittedAt.Before(records[j].SubmittedAt)
	})
}

// MemoryQuestionRepository is a map-backed QuestionRepository. The id counter
// only moves forward, so deleted ids are never reassigned.
type MemoryQuestionRepository struct {
	mu        sync.RWMutex
	questions map[int64]domain.Question
	nextID    int64
}

// NewMemoryQuestionRepository constructs an empty store.
func NewMemoryQuestionRepository() *MemoryQuestionRepository {
	return &MemoryQuestionRepository{questions: make(map[int64]domain.Question)}
}

func (r *MemoryQuestionRepository) Create(ctx context.Context, question *domain.Question) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createLocked(question)
	return nil
}

func (r *MemoryQuestionRepository) createLocked(question *domain.Question) {
	r.nextID++
	question.ID = r.nextID
	question.CreatedAt = time.Now().UTC()
	r.questions[question.ID] = cloneQuestion(*question)
}

func (r *MemoryQuestionRepository) Update(ctx context.Context, question *domain.Question) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.questions[question.ID]
	if !ok {
		return ErrNotFound
	}
	question.CreatedAt = existing.CreatedAt
	r.questions[question.ID] = cloneQuestion(*question)
	return nil
}

func (r *MemoryQuestionRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.questions[id]; !ok {
		return ErrNotFound
	}
	delete(r.questions, id)
	return nil
}

func (r *MemoryQuestionRepository) GetByID(ctx context.Context, id int64) (*domain.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	question, ok := r.questions[id]
	if !ok {
		return nil, ErrNotFound
	}
	found := cloneQuestion(question)
	return &found, nil
}

func (r *MemoryQuestionRepository) List(ctx context.Context) ([]domain.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Question, 0, len(r.questions))
	for _, question := range r.questions {
		result = append(result, cloneQuestion(question))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Position != result[j].Position {
			return result[i].Position < result[j].Position
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *MemoryQuestionRepository) ReplaceAll(ctx context.Context, questions []*domain.Question) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions = make(map[int64]domain.Question, len(questions))
	for _, question := range questions {
		r.createLocked(question)
	}
	return nil
}

func cloneQuestion(question domain.Question) domain.Question {
	question.Options = append([]string(nil), question.Options...)
	return question
}
