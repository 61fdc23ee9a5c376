package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/adoption-portal/internal/domain"
	"github.com/spec-kit/adoption-portal/internal/repository"
	apperrors "github.com/spec-kit/adoption-portal/pkg/util"
)

func newCatalogFixture() (*CatalogService, *domain.User, *domain.User) {
	svc := NewCatalogService(repository.NewMemoryQuestionRepository())
	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	user := &domain.User{ID: "user-1", Role: domain.RoleUser}
	return svc, admin, user
}

func TestCatalogMutationRequiresAdmin(t *testing.T) {
	svc, admin, user := newCatalogFixture()
	ctx := context.Background()
	input := QuestionInput{Text: "Why adopt?", Kind: domain.QuestionKindText, Required: true}

	_, err := svc.AddQuestion(ctx, user, input)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.CodeOf(err))

	staff := &domain.User{ID: "staff-1", Role: domain.RoleStaff}
	_, err = svc.AddQuestion(ctx, staff, input)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.CodeOf(err))

	question, err := svc.AddQuestion(ctx, admin, input)
	require.NoError(t, err)
	assert.Equal(t, int64(1), question.ID)

	// Any authenticated caller may read.
	questions, err := svc.ListQuestions(ctx, user)
	require.NoError(t, err)
	assert.Len(t, questions, 1)

	_, err = svc.ListQuestions(ctx, nil)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHENTICATED", apperrors.CodeOf(err))
}

func TestQuestionValidation(t *testing.T) {
	svc, admin, _ := newCatalogFixture()
	ctx := context.Background()

	cases := []struct {
		name  string
		input QuestionInput
	}{
		{"empty text", QuestionInput{Text: "  ", Kind: domain.QuestionKindText}},
		{"unknown kind", QuestionInput{Text: "Q", Kind: domain.QuestionKind("NUMBER")}},
		{"choice without options", QuestionInput{Text: "Q", Kind: domain.QuestionKindMultipleChoice}},
		{"text with options", QuestionInput{Text: "Q", Kind: domain.QuestionKindText, Options: []string{"a"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddQuestion(ctx, admin, tc.input)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION", apperrors.CodeOf(err))
		})
	}
}

func TestQuestionIDsNeverReused(t *testing.T) {
	svc, admin, _ := newCatalogFixture()
	ctx := context.Background()

	first, err := svc.AddQuestion(ctx, admin, QuestionInput{Text: "First", Kind: domain.QuestionKindText})
	require.NoError(t, err)
	require.NoError(t, svc.RemoveQuestion(ctx, admin, first.ID))

	second, err := svc.AddQuestion(ctx, admin, QuestionInput{Text: "Second", Kind: domain.QuestionKindText})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}

func TestReplaceQuestionnaire(t *testing.T) {
	svc, admin, user := newCatalogFixture()
	ctx := context.Background()

	_, err := svc.AddQuestion(ctx, admin, QuestionInput{Text: "Old", Kind: domain.QuestionKindText, Position: 1})
	require.NoError(t, err)

	replaced, err := svc.ReplaceQuestionnaire(ctx, admin, []QuestionInput{
		{Text: "New A", Kind: domain.QuestionKindText},
		{Text: "New B", Kind: domain.QuestionKindMultipleChoice, Options: []string{"yes", "no"}},
	})
	require.NoError(t, err)
	require.Len(t, replaced, 2)
	assert.Equal(t, 1, replaced[0].Position)
	assert.Equal(t, 2, replaced[1].Position)

	questions, err := svc.ListQuestions(ctx, user)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "New A", questions[0].Text)

	// Replacement still advances the id counter past the removed entries.
	assert.Greater(t, questions[0].ID, int64(1))
}

func TestListQuestionsOrderedByPosition(t *testing.T) {
	svc, admin, user := newCatalogFixture()
	ctx := context.Background()

	_, err := svc.AddQuestion(ctx, admin, QuestionInput{Text: "Third", Kind: domain.QuestionKindText, Position: 3})
	require.NoError(t, err)
	_, err = svc.AddQuestion(ctx, admin, QuestionInput{Text: "First", Kind: domain.QuestionKindText, Position: 1})
	require.NoError(t, err)
	_, err = svc.AddQuestion(ctx, admin, QuestionInput{Text: "Second", Kind: domain.QuestionKindText, Position: 2})
	require.NoError(t, err)

	questions, err := svc.ListQuestions(ctx, user)
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, "First", questions[0].Text)
	assert.Equal(t, "Second", questions[1].Text)
	assert.Equal(t, "Third", questions[2].Text)
}
