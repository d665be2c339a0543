package planner

import (
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/studyplan-api/internal/domain"
)

// Allocation errors
var (
	ErrUnknownBudget      = errors.New("unknown allocation budget")
	ErrInvalidDailyBudget = errors.New("daily minute budget must be greater than zero")
)

// Budget bounds how much work a calendar day receives. It is a closed set:
// MinuteBudget or CountBudget.
type Budget interface {
	isBudget()
}

// MinuteBudget fills each day up to DailyMinutes within a fixed horizon that ends
// the day before the deadline.
type MinuteBudget struct {
	DailyMinutes      int
	DaysUntilDeadline int
}

func (MinuteBudget) isBudget() {}

// AvailableDays is max(1, DaysUntilDeadline-1). The deadline day itself gets no work.
func (b MinuteBudget) AvailableDays() int {
	if b.DaysUntilDeadline-1 < 1 {
		return 1
	}
	return b.DaysUntilDeadline - 1
}

// CountBudget spreads units evenly over AvailableDays with at most MaxPerDay per
// day. It has no hard horizon and never drops units.
type CountBudget struct {
	AvailableDays int
	MaxPerDay     int
}

func (CountBudget) isBudget() {}

// TasksPerDay is clamp(ceil(total/AvailableDays), 1, MaxPerDay).
func (b CountBudget) TasksPerDay(total int) int {
	days := b.AvailableDays
	if days < 1 {
		days = 1
	}
	maxPerDay := b.MaxPerDay
	if maxPerDay < 1 {
		maxPerDay = NewDefaultParams().MaxTasksPerDay
	}

	perDay := (total + days - 1) / days
	if perDay < 1 {
		perDay = 1
	}
	if perDay > maxPerDay {
		perDay = maxPerDay
	}
	return perDay
}

// Assignment places one unit on a date. OrderIndex is zero based per date, in
// insertion order.
type Assignment struct {
	Date       time.Time
	Unit       WorkUnit
	OrderIndex int
}

// Allocation is the result of Allocate.
type Allocation struct {
	Assignments []Assignment
	// Dropped holds units that did not fit before the horizon ran out. They are
	// not scheduled anywhere.
	Dropped []WorkUnit
}

// LastDate returns the date of the final assignment, or false when nothing was placed.
func (a Allocation) LastDate() (time.Time, bool) {
	if len(a.Assignments) == 0 {
		return time.Time{}, false
	}
	return a.Assignments[len(a.Assignments)-1].Date, true
}

// Allocate bin-packs units into consecutive calendar days starting at start,
// in a single greedy pass that keeps the unit order.
func Allocate(units []WorkUnit, budget Budget, start time.Time) (Allocation, error) {
	start = domain.DateOf(start, time.UTC)

	switch b := budget.(type) {
	case MinuteBudget:
		return allocateMinutes(units, b, start)
	case CountBudget:
		return allocateCount(units, b, start), nil
	default:
		return Allocation{}, fmt.Errorf("%w: %T", ErrUnknownBudget, budget)
	}
}

// allocateMinutes keeps appending to the current day while the load stays within
// the budget and otherwise moves to the next day. A unit longer than the whole
// budget is placed alone on a fresh day, so a day exceeds the budget only by one
// oversized unit, never by a combination.
func allocateMinutes(units []WorkUnit, b MinuteBudget, start time.Time) (Allocation, error) {
	if b.DailyMinutes <= 0 {
		return Allocation{}, ErrInvalidDailyBudget
	}

	days := b.AvailableDays()
	out := Allocation{Assignments: make([]Assignment, 0, len(units))}
	day, load, order := 0, 0, 0

	for i, unit := range units {
		if load > 0 && load+unit.DurationMinutes > b.DailyMinutes {
			day++
			load, order = 0, 0
		}
		if day >= days {
			out.Dropped = append(out.Dropped, units[i:]...)
			break
		}

		out.Assignments = append(out.Assignments, Assignment{
			Date:       domain.AddDays(start, day),
			Unit:       unit,
			OrderIndex: order,
		})
		load += unit.DurationMinutes
		order++
	}

	return out, nil
}

func allocateCount(units []WorkUnit, b CountBudget, start time.Time) Allocation {
	perDay := b.TasksPerDay(len(units))
	out := Allocation{Assignments: make([]Assignment, 0, len(units))}
	day, count := 0, 0

	for _, unit := range units {
		for count >= perDay {
			day++
			count = 0
		}
		out.Assignments = append(out.Assignments, Assignment{
			Date:       domain.AddDays(start, day),
			Unit:       unit,
			OrderIndex: count,
		})
		count++
	}

	return out
}
