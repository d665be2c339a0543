package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/phrazzld/studyplan-api/internal/domain/planner"
	"github.com/phrazzld/studyplan-api/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockGoalService is a testify mock of service.GoalService
type MockGoalService struct {
	mock.Mock
}

var _ service.GoalService = (*MockGoalService)(nil)

// SaveGoal is a mock implementation of service.GoalService.SaveGoal
func (m *MockGoalService) SaveGoal(ctx context.Context, userID uuid.UUID, req service.SaveGoalRequest) (*domain.Goal, error) {
	args := m.Called(ctx, userID, req)
	goal, _ := args.Get(0).(*domain.Goal)
	return goal, args.Error(1)
}

// GetActiveGoal is a mock implementation of service.GoalService.GetActiveGoal
func (m *MockGoalService) GetActiveGoal(ctx context.Context, userID uuid.UUID) (*domain.Goal, error) {
	args := m.Called(ctx, userID)
	goal, _ := args.Get(0).(*domain.Goal)
	return goal, args.Error(1)
}

// MockPlanService is a testify mock of service.PlanService
type MockPlanService struct {
	mock.Mock
}

var _ service.PlanService = (*MockPlanService)(nil)

// GeneratePlan is a mock implementation of service.PlanService.GeneratePlan
func (m *MockPlanService) GeneratePlan(
	ctx context.Context,
	userID uuid.UUID,
	req service.GenerateRequest,
) (*service.GenerateResult, error) {
	args := m.Called(ctx, userID, req)
	res, _ := args.Get(0).(*service.GenerateResult)
	return res, args.Error(1)
}

// ParseDescription is a mock implementation of service.PlanService.ParseDescription
func (m *MockPlanService) ParseDescription(ctx context.Context, description string) (planner.DescriptionSource, error) {
	args := m.Called(ctx, description)
	src, _ := args.Get(0).(planner.DescriptionSource)
	return src, args.Error(1)
}

// CreateManualPlan is a mock implementation of service.PlanService.CreateManualPlan
func (m *MockPlanService) CreateManualPlan(
	ctx context.Context,
	userID uuid.UUID,
	req service.ManualPlanRequest,
) (*domain.StudyPlan, error) {
	args := m.Called(ctx, userID, req)
	plan, _ := args.Get(0).(*domain.StudyPlan)
	return plan, args.Error(1)
}

// GetActivePlan is a mock implementation of service.PlanService.GetActivePlan
func (m *MockPlanService) GetActivePlan(ctx context.Context, userID uuid.UUID) (*service.PlanView, error) {
	args := m.Called(ctx, userID)
	view, _ := args.Get(0).(*service.PlanView)
	return view, args.Error(1)
}

// AbandonActivePlan is a mock implementation of service.PlanService.AbandonActivePlan
func (m *MockPlanService) AbandonActivePlan(ctx context.Context, userID uuid.UUID) (*domain.StudyPlan, error) {
	args := m.Called(ctx, userID)
	plan, _ := args.Get(0).(*domain.StudyPlan)
	return plan, args.Error(1)
}

// CompletePlan is a mock implementation of service.PlanService.CompletePlan
func (m *MockPlanService) CompletePlan(ctx context.Context, userID, planID uuid.UUID) (*domain.StudyPlan, error) {
	args := m.Called(ctx, userID, planID)
	plan, _ := args.Get(0).(*domain.StudyPlan)
	return plan, args.Error(1)
}

// AddManualTask is a mock implementation of service.PlanService.AddManualTask
func (m *MockPlanService) AddManualTask(
	ctx context.Context,
	userID, planID uuid.UUID,
	req service.ManualTaskRequest,
) (*domain.PlanTask, error) {
	args := m.Called(ctx, userID, planID, req)
	task, _ := args.Get(0).(*domain.PlanTask)
	return task, args.Error(1)
}

// MockTaskService is a testify mock of service.TaskService
type MockTaskService struct {
	mock.Mock
}

var _ service.TaskService = (*MockTaskService)(nil)

// RescheduleOverdue is a mock implementation of service.TaskService.RescheduleOverdue
func (m *MockTaskService) RescheduleOverdue(ctx context.Context, userID, planID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID, planID)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

// CompleteTask is a mock implementation of service.TaskService.CompleteTask
func (m *MockTaskService) CompleteTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	actualMinutes *int,
) (*domain.PlanTask, error) {
	args := m.Called(ctx, userID, taskID, actualMinutes)
	task, _ := args.Get(0).(*domain.PlanTask)
	return task, args.Error(1)
}

// ResetTask is a mock implementation of service.TaskService.ResetTask
func (m *MockTaskService) ResetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.PlanTask, error) {
	args := m.Called(ctx, userID, taskID)
	task, _ := args.Get(0).(*domain.PlanTask)
	return task, args.Error(1)
}

// SkipTask is a mock implementation of service.TaskService.SkipTask
func (m *MockTaskService) SkipTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.PlanTask, error) {
	args := m.Called(ctx, userID, taskID)
	task, _ := args.Get(0).(*domain.PlanTask)
	return task, args.Error(1)
}

// RescheduleTask is a mock implementation of service.TaskService.RescheduleTask
func (m *MockTaskService) RescheduleTask(
	ctx context.Context,
	userID, taskID uuid.UUID,
	date time.Time,
) (*domain.PlanTask, error) {
	args := m.Called(ctx, userID, taskID, date)
	task, _ := args.Get(0).(*domain.PlanTask)
	return task, args.Error(1)
}

// ListTasks is a mock implementation of service.TaskService.ListTasks
func (m *MockTaskService) ListTasks(
	ctx context.Context,
	userID, planID uuid.UUID,
	r service.TaskRange,
) ([]domain.PlanTask, error) {
	args := m.Called(ctx, userID, planID, r)
	tasks, _ := args.Get(0).([]domain.PlanTask)
	return tasks, args.Error(1)
}

// MockStatusService is a testify mock of service.StatusService
type MockStatusService struct {
	mock.Mock
}

var _ service.StatusService = (*MockStatusService)(nil)

// GetStatus is a mock implementation of service.StatusService.GetStatus
func (m *MockStatusService) GetStatus(ctx context.Context, userID uuid.UUID) (*service.Status, error) {
	args := m.Called(ctx, userID)
	status, _ := args.Get(0).(*service.Status)
	return status, args.Error(1)
}

// MockCurriculumService is a testify mock of service.CurriculumService
type MockCurriculumService struct {
	mock.Mock
}

var _ service.CurriculumService = (*MockCurriculumService)(nil)

// Index is a mock implementation of service.CurriculumService.Index
func (m *MockCurriculumService) Index(ctx context.Context, userID uuid.UUID) (*domain.CurriculumIndex, error) {
	args := m.Called(ctx, userID)
	index, _ := args.Get(0).(*domain.CurriculumIndex)
	return index, args.Error(1)
}

// AddSubject is a mock implementation of service.CurriculumService.AddSubject
func (m *MockCurriculumService) AddSubject(ctx context.Context, userID uuid.UUID, name string) (*domain.Subject, error) {
	args := m.Called(ctx, userID, name)
	subject, _ := args.Get(0).(*domain.Subject)
	return subject, args.Error(1)
}

// AddItem is a mock implementation of service.CurriculumService.AddItem
func (m *MockCurriculumService) AddItem(
	ctx context.Context,
	userID uuid.UUID,
	req service.AddItemRequest,
) (*domain.CurriculumItem, error) {
	args := m.Called(ctx, userID, req)
	item, _ := args.Get(0).(*domain.CurriculumItem)
	return item, args.Error(1)
}

// SetItemFlags is a mock implementation of service.CurriculumService.SetItemFlags
func (m *MockCurriculumService) SetItemFlags(
	ctx context.Context,
	userID, itemID uuid.UUID,
	flags domain.Flags,
) (*domain.CurriculumItem, error) {
	args := m.Called(ctx, userID, itemID, flags)
	item, _ := args.Get(0).(*domain.CurriculumItem)
	return item, args.Error(1)
}
