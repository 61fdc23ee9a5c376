package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/adoption-portal/internal/domain"
)

func TestMemoryApplicationOneSubmittedPerUser(t *testing.T) {
	repo := NewMemoryApplicationRepository()
	ctx := context.Background()

	first := &domain.ApplicationRecord{UserID: "u1", SubmittedAt: time.Now()}
	require.NoError(t, repo.CreateSubmitted(ctx, first))

	second := &domain.ApplicationRecord{UserID: "u1", SubmittedAt: time.Now()}
	assert.ErrorIs(t, repo.CreateSubmitted(ctx, second), ErrOpenRecordExists)

	// A terminal record frees the slot.
	require.NoError(t, repo.MarkReviewed(ctx, first.ID, domain.ApplicationStatusRejected, time.Now(), "staff-1"))
	require.NoError(t, repo.CreateSubmitted(ctx, second))
}

func TestMemoryApplicationConcurrentCreates(t *testing.T) {
	repo := NewMemoryApplicationRepository()
	ctx := context.Background()

	const attempts = 32
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.CreateSubmitted(ctx, &domain.ApplicationRecord{UserID: "u1", SubmittedAt: time.Now()})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
		} else {
			assert.ErrorIs(t, err, ErrOpenRecordExists)
		}
	}
	assert.Equal(t, 1, created)
}

func TestMemoryApplicationMarkReviewedIsTerminal(t *testing.T) {
	repo := NewMemoryApplicationRepository()
	ctx := context.Background()

	record := &domain.ApplicationRecord{UserID: "u1", SubmittedAt: time.Now()}
	require.NoError(t, repo.CreateSubmitted(ctx, record))
	require.NoError(t, repo.MarkReviewed(ctx, record.ID, domain.ApplicationStatusApproved, time.Now(), "staff-1"))

	assert.ErrorIs(t, repo.MarkReviewed(ctx, record.ID, domain.ApplicationStatusRejected, time.Now(), "staff-2"), ErrStatusConflict)
	assert.ErrorIs(t, repo.AttachPet(ctx, record.ID, 1), ErrStatusConflict)

	stored, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusApproved, stored.Status)
	require.NotNil(t, stored.ReviewerID)
	assert.Equal(t, "staff-1", *stored.ReviewerID)
}

func TestMemoryApplicationReturnsCopies(t *testing.T) {
	repo := NewMemoryApplicationRepository()
	ctx := context.Background()

	record := &domain.ApplicationRecord{UserID: "u1", Responses: map[int64]string{1: "yes"}, SubmittedAt: time.Now()}
	require.NoError(t, repo.CreateSubmitted(ctx, record))

	got, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	got.Responses[1] = "mutated"

	again, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "yes", again.Responses[1])
}

func TestMemoryPetUpdateStatusIfRace(t *testing.T) {
	repo := NewMemoryPetRepository()
	ctx := context.Background()

	pet := &domain.Pet{Name: "Rex", Species: "dog", Breed: "mixed", Status: domain.PetStatusAvailable}
	require.NoError(t, repo.Create(ctx, pet))

	const contenders = 32
	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.UpdateStatusIf(ctx, pet.ID, domain.PetStatusAvailable, domain.PetStatusPending)
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrStatusConflict)
		}
	}
	assert.Equal(t, 1, won)

	assert.ErrorIs(t, repo.UpdateStatusIf(ctx, 999, domain.PetStatusAvailable, domain.PetStatusPending), ErrNotFound)
}

func TestMemoryQuestionIDsMonotonic(t *testing.T) {
	repo := NewMemoryQuestionRepository()
	ctx := context.Background()

	q1 := &domain.Question{Text: "A", Kind: domain.QuestionKindText, Position: 1}
	require.NoError(t, repo.Create(ctx, q1))
	require.NoError(t, repo.Delete(ctx, q1.ID))

	q2 := &domain.Question{Text: "B", Kind: domain.QuestionKindText, Position: 1}
	require.NoError(t, repo.Create(ctx, q2))
	assert.Greater(t, q2.ID, q1.ID)

	require.NoError(t, repo.ReplaceAll(ctx, []*domain.Question{
		{Text: "C", Kind: domain.QuestionKindText, Position: 1},
	}))
	questions, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Greater(t, questions[0].ID, q2.ID)
}

func TestMemoryUserEmailUniqueness(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user := &domain.User{Email: "jamie@example.com", Role: domain.RoleUser}
	require.NoError(t, repo.Create(ctx, user))

	dup := &domain.User{Email: "JAMIE@example.com", Role: domain.RoleUser}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicate)

	found, err := repo.GetByEmail(ctx, "Jamie@Example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestMemoryReposHonorContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	users := NewMemoryUserRepository()
	assert.Error(t, users.Create(ctx, &domain.User{Email: "x@example.com"}))

	pets := NewMemoryPetRepository()
	_, err := pets.ListWithFilter(ctx, PetFilter{})
	assert.Error(t, err)

	applications := NewMemoryApplicationRepository()
	_, err = applications.GetSubmittedByUser(ctx, "u1")
	assert.Error(t, err)
}
