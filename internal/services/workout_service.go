package services

import (
	"context"
	"fmt"

	"github.com/juhum/We-Go-Jim/internal/models"
)

// WorkoutService covers workout plan submission/retrieval, personal records
// and trainer rosters on top of the two gateways.
type WorkoutService struct {
	identity CredentialGateway
	storage  StorageService
}

func NewWorkoutService(identity CredentialGateway, storage StorageService) *WorkoutService {
	return &WorkoutService{identity: identity, storage: storage}
}

// SubmitPlan overwrites the target user's whole plan. The target is resolved
// from the given email; existence is not verified beyond what the lookup
// returns.
func (s *WorkoutService) SubmitPlan(ctx context.Context, targetEmail string, plan []models.DayWorkout) error {
	sub, err := s.identity.LookupAttribute(ctx, targetEmail, "sub")
	if err != nil {
		return ErrUserNotFound
	}

	if err := s.storage.PutWorkoutPlan(ctx, sub, plan); err != nil {
		return fmt.Errorf("save workout plan: %w", err)
	}
	return nil
}

func (s *WorkoutService) GetUserData(ctx context.Context, sub string) (*models.UserDocument, error) {
	return s.storage.GetUserData(ctx, sub)
}

func (s *WorkoutService) GetRecords(ctx context.Context, sub string) (*models.RecordsDocument, error) {
	return s.storage.GetUserRecords(ctx, sub)
}

func (s *WorkoutService) UpdateRecords(ctx context.Context, sub string, records []models.LiftRecord) error {
	if err := s.storage.PutUserRecords(ctx, sub, records); err != nil {
		return fmt.Errorf("save records: %w", err)
	}
	return nil
}

func (s *WorkoutService) ListStudents(ctx context.Context, trainerSub string) ([]string, error) {
	return s.storage.GetStudentList(ctx, trainerSub)
}

func (s *WorkoutService) AddStudent(ctx context.Context, trainerSub, studentEmail string) error {
	sub, err := s.identity.LookupAttribute(ctx, studentEmail, "sub")
	if err != nil {
		return ErrUserNotFound
	}

	if err := s.storage.AddStudent(ctx, trainerSub, sub); err != nil {
		return fmt.Errorf("add student: %w", err)
	}
	return nil
}
