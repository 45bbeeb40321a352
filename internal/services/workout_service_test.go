package services

import (
	"context"
	"errors"
	"testing"

	"github.com/juhum/We-Go-Jim/internal/models"
)

type recordingStorage struct {
	stubStorage
	putPlanCalls int
	lastPlanSub  string
	lastPlan     []models.DayWorkout
	putPlanErr   error
	addedPairs   [][2]string
}

func (s *recordingStorage) PutWorkoutPlan(_ context.Context, sub string, plan []models.DayWorkout) error {
	s.putPlanCalls++
	s.lastPlanSub = sub
	s.lastPlan = plan
	return s.putPlanErr
}

func (s *recordingStorage) AddStudent(_ context.Context, trainerSub, studentSub string) error {
	s.addedPairs = append(s.addedPairs, [2]string{trainerSub, studentSub})
	return nil
}

func TestSubmitPlanResolvesTargetByEmail(t *testing.T) {
	gateway := &stubGateway{attributes: map[string]string{"sub": "sub-9"}}
	storage := &recordingStorage{}
	svc := NewWorkoutService(gateway, storage)

	plan := []models.DayWorkout{{DayName: "Monday"}}
	if err := svc.SubmitPlan(context.Background(), "target@x.com", plan); err != nil {
		t.Fatalf("SubmitPlan: %v", err)
	}
	if storage.lastPlanSub != "sub-9" {
		t.Errorf("Expected plan written for resolved sub-9, got %s", storage.lastPlanSub)
	}
}

func TestSubmitPlanUnknownTarget(t *testing.T) {
	gateway := &stubGateway{attrErr: ErrUserNotFound}
	storage := &recordingStorage{}
	svc := NewWorkoutService(gateway, storage)

	err := svc.SubmitPlan(context.Background(), "ghost@x.com", nil)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Expected ErrUserNotFound, got %v", err)
	}
	if storage.putPlanCalls != 0 {
		t.Errorf("Expected no storage write for unknown target")
	}
}

func TestSubmitPlanStorageFailure(t *testing.T) {
	gateway := &stubGateway{attributes: map[string]string{"sub": "sub-9"}}
	storage := &recordingStorage{putPlanErr: errors.New("bucket unreachable")}
	svc := NewWorkoutService(gateway, storage)

	err := svc.SubmitPlan(context.Background(), "target@x.com", nil)
	if err == nil || errors.Is(err, ErrUserNotFound) {
		t.Fatalf("Expected a storage error, got %v", err)
	}
}

func TestAddStudentResolvesEmail(t *testing.T) {
	gateway := &stubGateway{attributes: map[string]string{"sub": "sub-5"}}
	storage := &recordingStorage{}
	svc := NewWorkoutService(gateway, storage)

	if err := svc.AddStudent(context.Background(), "sub-t", "student@x.com"); err != nil {
		t.Fatalf("AddStudent: %v", err)
	}
	if len(storage.addedPairs) != 1 || storage.addedPairs[0] != [2]string{"sub-t", "sub-5"} {
		t.Errorf("Expected roster write sub-t/sub-5, got %v", storage.addedPairs)
	}
}
