package mocks

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/domain"
	"github.com/phrazzld/studyplan-api/internal/store"
)

// Memory is an in-memory implementation of every store plus a Transactor.
// InTx snapshots the data and restores it when the function fails, so tests can
// assert that failed operations leave nothing behind.
type Memory struct {
	mu       sync.Mutex
	goals    map[uuid.UUID]domain.Goal
	plans    map[uuid.UUID]domain.StudyPlan
	tasks    map[uuid.UUID]domain.PlanTask
	subjects map[uuid.UUID]domain.Subject
	items    map[uuid.UUID]domain.CurriculumItem

	// Fail makes the named operation return the error, e.g. "tasks.CreateBatch".
	Fail map[string]error

	// TxCount counts InTx calls.
	TxCount int
}

// NewMemory creates an empty Memory.
func NewMemory() *Memory {
	return &Memory{
		goals:    make(map[uuid.UUID]domain.Goal),
		plans:    make(map[uuid.UUID]domain.StudyPlan),
		tasks:    make(map[uuid.UUID]domain.PlanTask),
		subjects: make(map[uuid.UUID]domain.Subject),
		items:    make(map[uuid.UUID]domain.CurriculumItem),
		Fail:     make(map[string]error),
	}
}

// Goals returns the goal store view.
func (m *Memory) Goals() store.GoalStore { return memGoals{m} }

// Plans returns the plan store view.
func (m *Memory) Plans() store.PlanStore { return memPlans{m} }

// Tasks returns the plan task store view.
func (m *Memory) Tasks() store.PlanTaskStore { return memTasks{m} }

// Curriculum returns the curriculum store view.
func (m *Memory) Curriculum() store.CurriculumStore { return memCurriculum{m} }

var _ store.Transactor = (*Memory)(nil)

// InTx implements store.Transactor. fn receives a nil *sql.Tx; the WithTx
// methods of the memory stores ignore it.
func (m *Memory) InTx(ctx context.Context, fn store.TxFn) error {
	m.mu.Lock()
	m.TxCount++
	if err := m.Fail["tx"]; err != nil {
		m.mu.Unlock()
		return err
	}
	snap := m.snapshot()
	m.mu.Unlock()

	if err := fn(ctx, nil); err != nil {
		m.mu.Lock()
		m.restore(snap)
		m.mu.Unlock()
		return err
	}
	return nil
}

type memSnapshot struct {
	goals    map[uuid.UUID]domain.Goal
	plans    map[uuid.UUID]domain.StudyPlan
	tasks    map[uuid.UUID]domain.PlanTask
	subjects map[uuid.UUID]domain.Subject
	items    map[uuid.UUID]domain.CurriculumItem
}

func (m *Memory) snapshot() memSnapshot {
	return memSnapshot{
		goals:    copyMap(m.goals),
		plans:    copyMap(m.plans),
		tasks:    copyMap(m.tasks),
		subjects: copyMap(m.subjects),
		items:    copyMap(m.items),
	}
}

func (m *Memory) restore(s memSnapshot) {
	m.goals, m.plans, m.tasks, m.subjects, m.items = s.goals, s.plans, s.tasks, s.subjects, s.items
}

func copyMap[V any](in map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// fail must be called with mu held.
func (m *Memory) fail(op string) error {
	return m.Fail[op]
}

// Seeding and inspection helpers

// PutGoal stores goal as is.
func (m *Memory) PutGoal(goal domain.Goal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals[goal.ID] = goal
}

// PutPlan stores plan as is.
func (m *Memory) PutPlan(plan domain.StudyPlan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[plan.ID] = plan
}

// PutTask stores task as is.
func (m *Memory) PutTask(task domain.PlanTask) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = task
}

// AddSubject creates a subject for userID and returns it.
func (m *Memory) AddSubject(userID uuid.UUID, name string) domain.Subject {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := domain.Subject{ID: uuid.New(), UserID: userID, Name: name}
	m.subjects[s.ID] = s
	return s
}

// AddItem creates a curriculum item and returns it.
func (m *Memory) AddItem(item domain.CurriculumItem) domain.CurriculumItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	m.items[item.ID] = item
	return item
}

// AllTasks returns every task of planID ordered like PlanTaskStore.Find.
func (m *Memory) AllTasks(planID uuid.UUID) []domain.PlanTask {
	tasks, _ := memTasks{m}.Find(context.Background(), store.TaskFilter{PlanID: planID})
	return tasks
}

// AllPlans returns every plan of userID ordered by creation time.
func (m *Memory) AllPlans(userID uuid.UUID) []domain.StudyPlan {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.StudyPlan
	for _, p := range m.plans {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// AllGoals returns every goal of userID.
func (m *Memory) AllGoals(userID uuid.UUID) []domain.Goal {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Goal
	for _, g := range m.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out
}

// memGoals implements store.GoalStore.
type memGoals struct{ m *Memory }

func (s memGoals) Create(_ context.Context, goal *domain.Goal) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("goals.Create"); err != nil {
		return err
	}
	if err := goal.Validate(); err != nil {
		return err
	}
	if goal.Active {
		for _, g := range s.m.goals {
			if g.UserID == goal.UserID && g.Active {
				return fmt.Errorf("%w: active goal", store.ErrDuplicate)
			}
		}
	}
	s.m.goals[goal.ID] = *goal
	return nil
}

func (s memGoals) GetByID(_ context.Context, id uuid.UUID) (*domain.Goal, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("goals.GetByID"); err != nil {
		return nil, err
	}
	g, ok := s.m.goals[id]
	if !ok {
		return nil, store.ErrGoalNotFound
	}
	return &g, nil
}

func (s memGoals) GetActive(_ context.Context, userID uuid.UUID) (*domain.Goal, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("goals.GetActive"); err != nil {
		return nil, err
	}
	for _, g := range s.m.goals {
		if g.UserID == userID && g.Active {
			return &g, nil
		}
	}
	return nil, store.ErrGoalNotFound
}

func (s memGoals) DeactivateAllForUser(_ context.Context, userID uuid.UUID) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("goals.DeactivateAllForUser"); err != nil {
		return err
	}
	for id, g := range s.m.goals {
		if g.UserID == userID && g.Active {
			g.Active = false
			g.UpdatedAt = time.Now().UTC()
			s.m.goals[id] = g
		}
	}
	return nil
}

func (s memGoals) WithTx(*sql.Tx) store.GoalStore { return s }

// memPlans implements store.PlanStore.
type memPlans struct{ m *Memory }

func (s memPlans) activeConflict(plan *domain.StudyPlan) bool {
	if !plan.IsActive() {
		return false
	}
	for _, p := range s.m.plans {
		if p.ID != plan.ID && p.UserID == plan.UserID && p.IsActive() {
			return true
		}
	}
	return false
}

func (s memPlans) Create(_ context.Context, plan *domain.StudyPlan) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("plans.Create"); err != nil {
		return err
	}
	if err := plan.Validate(); err != nil {
		return err
	}
	if s.activeConflict(plan) {
		return store.ErrActivePlanExists
	}
	s.m.plans[plan.ID] = *plan
	return nil
}

func (s memPlans) GetByID(_ context.Context, id uuid.UUID) (*domain.StudyPlan, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("plans.GetByID"); err != nil {
		return nil, err
	}
	p, ok := s.m.plans[id]
	if !ok {
		return nil, store.ErrPlanNotFound
	}
	return &p, nil
}

func (s memPlans) GetActiveForUser(_ context.Context, userID uuid.UUID) (*domain.StudyPlan, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("plans.GetActiveForUser"); err != nil {
		return nil, err
	}
	for _, p := range s.m.plans {
		if p.UserID == userID && p.IsActive() {
			return &p, nil
		}
	}
	return nil, store.ErrPlanNotFound
}

func (s memPlans) Update(_ context.Context, plan *domain.StudyPlan) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("plans.Update"); err != nil {
		return err
	}
	if err := plan.Validate(); err != nil {
		return err
	}
	if _, ok := s.m.plans[plan.ID]; !ok {
		return store.ErrPlanNotFound
	}
	if s.activeConflict(plan) {
		return store.ErrActivePlanExists
	}
	plan.UpdatedAt = time.Now().UTC()
	s.m.plans[plan.ID] = *plan
	return nil
}

func (s memPlans) WithTx(*sql.Tx) store.PlanStore { return s }

// memTasks implements store.PlanTaskStore.
type memTasks struct{ m *Memory }

func (s memTasks) CreateBatch(_ context.Context, tasks []*domain.PlanTask) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("tasks.CreateBatch"); err != nil {
		return err
	}
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return err
		}
		if _, ok := s.m.plans[t.PlanID]; !ok {
			return store.ErrPlanNotFound
		}
	}
	for _, t := range tasks {
		s.m.tasks[t.ID] = *t
	}
	return nil
}

func (s memTasks) GetByID(_ context.Context, id uuid.UUID) (*domain.PlanTask, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("tasks.GetByID"); err != nil {
		return nil, err
	}
	t, ok := s.m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return &t, nil
}

func (s memTasks) Find(_ context.Context, filter store.TaskFilter) ([]domain.PlanTask, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("tasks.Find"); err != nil {
		return nil, err
	}
	out := []domain.PlanTask{}
	for _, t := range s.m.tasks {
		if filter.Matches(&t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.ScheduledDate.Equal(b.ScheduledDate) {
			return a.ScheduledDate.Before(b.ScheduledDate)
		}
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex < b.OrderIndex
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return out, nil
}

func (s memTasks) Update(_ context.Context, task *domain.PlanTask) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("tasks.Update"); err != nil {
		return err
	}
	if err := task.Validate(); err != nil {
		return err
	}
	if _, ok := s.m.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	s.m.tasks[task.ID] = *task
	return nil
}

func (s memTasks) RescheduleOverdue(_ context.Context, planID uuid.UUID, today time.Time) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("tasks.RescheduleOverdue"); err != nil {
		return 0, err
	}
	today = domain.DateOf(today, time.UTC)
	var n int64
	for id, t := range s.m.tasks {
		if t.PlanID == planID && t.IsOverdue(today) {
			t.ScheduledDate = today
			t.UpdatedAt = time.Now().UTC()
			s.m.tasks[id] = t
			n++
		}
	}
	return n, nil
}

func (s memTasks) DeletePendingFrom(_ context.Context, planID uuid.UUID, from time.Time) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("tasks.DeletePendingFrom"); err != nil {
		return 0, err
	}
	from = domain.DateOf(from, time.UTC)
	var n int64
	for id, t := range s.m.tasks {
		if t.PlanID == planID && t.Status == domain.TaskStatusPending && !t.ScheduledDate.Before(from) {
			delete(s.m.tasks, id)
			n++
		}
	}
	return n, nil
}

func (s memTasks) WithTx(*sql.Tx) store.PlanTaskStore { return s }

// memCurriculum implements store.CurriculumStore.
type memCurriculum struct{ m *Memory }

func (s memCurriculum) CreateSubject(_ context.Context, subject *domain.Subject) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("curriculum.CreateSubject"); err != nil {
		return err
	}
	for _, sub := range s.m.subjects {
		if sub.UserID == subject.UserID && sub.Name == subject.Name {
			return fmt.Errorf("%w: subject %q", store.ErrDuplicate, subject.Name)
		}
	}
	s.m.subjects[subject.ID] = *subject
	return nil
}

func (s memCurriculum) CreateItem(_ context.Context, item *domain.CurriculumItem) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("curriculum.CreateItem"); err != nil {
		return err
	}
	if _, ok := s.m.subjects[item.SubjectID]; !ok {
		return store.ErrSubjectNotFound
	}
	s.m.items[item.ID] = *item
	return nil
}

func (s memCurriculum) ListSubjects(_ context.Context, userID uuid.UUID) ([]domain.Subject, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("curriculum.ListSubjects"); err != nil {
		return nil, err
	}
	out := []domain.Subject{}
	for _, sub := range s.m.subjects {
		if sub.UserID == userID {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s memCurriculum) ListItems(_ context.Context, userID uuid.UUID) ([]domain.CurriculumItem, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("curriculum.ListItems"); err != nil {
		return nil, err
	}
	out := []domain.CurriculumItem{}
	for _, item := range s.m.items {
		if sub, ok := s.m.subjects[item.SubjectID]; ok && sub.UserID == userID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubjectID != out[j].SubjectID {
			return out[i].SubjectID.String() < out[j].SubjectID.String()
		}
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Title < out[j].Title
	})
	return out, nil
}

func (s memCurriculum) GetItem(_ context.Context, userID, itemID uuid.UUID) (*domain.CurriculumItem, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("curriculum.GetItem"); err != nil {
		return nil, err
	}
	item, ok := s.m.items[itemID]
	if !ok {
		return nil, store.ErrItemNotFound
	}
	if sub, ok := s.m.subjects[item.SubjectID]; !ok || sub.UserID != userID {
		return nil, store.ErrItemNotFound
	}
	return &item, nil
}

func (s memCurriculum) UpdateItemFlags(_ context.Context, item *domain.CurriculumItem) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := s.m.fail("curriculum.UpdateItemFlags"); err != nil {
		return err
	}
	stored, ok := s.m.items[item.ID]
	if !ok {
		return store.ErrItemNotFound
	}
	stored.Studied, stored.Reviewed, stored.Solved = item.Studied, item.Reviewed, item.Solved
	s.m.items[item.ID] = stored
	return nil
}
