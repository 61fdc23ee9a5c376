package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/adoption-portal/internal/auth"
	"github.com/spec-kit/adoption-portal/internal/domain"
	"github.com/spec-kit/adoption-portal/internal/repository"
)

// SeedDependencies bundles the repositories the demo seeder writes to.
type SeedDependencies struct {
	UserRepo     repository.UserRepository
	PetRepo      repository.PetRepository
	QuestionRepo repository.QuestionRepository
}

// SeedDemoData loads a small demo dataset: staff accounts, a starter
// questionnaire, and a few adoptable pets. It is a no-op when any users
// already exist, so restarting a seeded server never duplicates rows.
func SeedDemoData(ctx context.Context, bcryptCost int, deps SeedDependencies, logger *zap.Logger) error {
	existing, err := deps.UserRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("demo seed skipped, users already present", zap.Int("users", len(existing)))
		return nil
	}

	hash, err := auth.HashPassword("changeme", bcryptCost)
	if err != nil {
		return err
	}
	users := []*domain.User{
		{Email: "admin@demo.local", PasswordHash: hash, FullName: "Demo Admin", Role: domain.RoleAdmin, Approved: true},
		{Email: "staff@demo.local", PasswordHash: hash, FullName: "Demo Staff", Role: domain.RoleStaff, Approved: true},
		{Email: "adopter@demo.local", PasswordHash: hash, FullName: "Demo Adopter", Role: domain.RoleUser},
	}
	for _, user := range users {
		if err := deps.UserRepo.Create(ctx, user); err != nil {
			return err
		}
	}

	questions := []*domain.Question{
		{Text: "Why do you want to adopt a pet?", Kind: domain.QuestionKindText, Required: true, Position: 1},
		{Text: "What type of home do you live in?", Kind: domain.QuestionKindMultipleChoice, Options: []string{"house", "apartment", "farm"}, Required: true, Position: 2},
		{Text: "Do you have other pets?", Kind: domain.QuestionKindMultipleChoice, Options: []string{"yes", "no"}, Required: true, Position: 3},
		{Text: "Anything else we should know?", Kind: domain.QuestionKindText, Position: 4},
	}
	for _, question := range questions {
		if err := deps.QuestionRepo.Create(ctx, question); err != nil {
			return err
		}
	}

	pets := []*domain.Pet{
		{Name: "Buddy", Species: "dog", Breed: "labrador", Age: 3, Description: "Friendly and house-trained.", Status: domain.PetStatusAvailable},
		{Name: "Luna", Species: "cat", Breed: "tabby", Age: 2, Description: "Quiet, loves windowsills.", Status: domain.PetStatusAvailable},
		{Name: "Max", Species: "dog", Breed: "beagle", Age: 5, Description: "Needs a yard to sniff around.", Status: domain.PetStatusAvailable},
		{Name: "Coco", Species: "rabbit", Breed: "lop", Age: 1, Description: "Indoor rabbit, litter-trained.", Status: domain.PetStatusAvailable},
	}
	for _, pet := range pets {
		if err := deps.PetRepo.Create(ctx, pet); err != nil {
			return err
		}
	}

	logger.Info("demo data seeded",
		zap.Int("users", len(users)),
		zap.Int("questions", len(questions)),
		zap.Int("pets", len(pets)))
	return nil
}
